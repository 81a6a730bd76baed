package tui

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"votd/internal/notice"
	"votd/internal/settings"
)

// themeEnv forces the TUI palette regardless of the saved theme: light|dark|system.
const themeEnv = "VOTD_TUI_THEME"

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorText       = ac("235", "252")
	colorMuted      = ac("240", "245")
	colorBorder     = ac("250", "240")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")

	colorSuccess = ac("28", "42")
	colorError   = ac("160", "203")
	colorInfo    = ac("25", "75")
)

// palette is the set of styles for one settings record; the accent comes from settings.
type palette struct {
	accent lipgloss.Color

	title    lipgloss.Style
	date     lipgloss.Style
	card     lipgloss.Style
	muted    lipgloss.Style
	ref      lipgloss.Style
	passage  lipgloss.Style
	selected lipgloss.Style
	input    lipgloss.Style
}

func newPalette(s settings.Settings) palette {
	accent := lipgloss.Color(s.Accent)
	if !settings.ValidAccent(s.Accent) {
		accent = lipgloss.Color(settings.DefaultAccent)
	}
	// Terminals can't change the font, so size maps to breathing room around the card.
	pad := (settings.ClampFontSize(s.FontSize) - settings.MinFontSize) / 4

	return palette{
		accent: accent,
		title:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		date:   faintIfDark(lipgloss.NewStyle().Foreground(colorMuted)),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(pad/2, 1+pad),
		muted:    styleMuted(),
		ref:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		passage:  lipgloss.NewStyle().Foreground(colorText),
		selected: lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg),
		input:    lipgloss.NewStyle().Foreground(colorText),
	}
}

func (st palette) status(k notice.Kind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch k {
	case notice.KindSuccess:
		return base.Foreground(colorSuccess)
	case notice.KindError:
		return base.Foreground(colorError)
	default:
		return base.Foreground(colorInfo)
	}
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile honors CLICOLOR, which can disable colors inside a TUI, so
// only NO_COLOR is respected here and TERM/COLORTERM may raise the detected profile.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference tells Lip Gloss which AdaptiveColor variant to use.
//
// Priority: VOTD_TUI_THEME, then the saved theme, then (for "system") COLORFGBG and
// the macOS appearance. Background probing is left alone: it can block on some terminals.
func applyThemePreference(mode settings.ThemeMode) {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(themeEnv))); settings.ValidTheme(v) {
		mode = settings.ThemeMode(v)
	}
	switch mode {
	case settings.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case settings.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		if dark, ok := detectDarkBackground(); ok {
			lipgloss.SetHasDarkBackground(dark)
		}
	}
}

func detectDarkBackground() (dark bool, ok bool) {
	// COLORFGBG is usually "fg;bg"; xterm colors 0-6 are dark.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	if runtime.GOOS == "darwin" {
		return macOSHasDarkAppearance()
	}
	return false, false
}

func macOSHasDarkAppearance() (dark bool, ok bool) {
	// Prints "Dark" in dark mode; exits 1 in light mode (key missing).
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").CombinedOutput()
	if ctx.Err() != nil {
		return false, false
	}
	if err == nil {
		return strings.Contains(strings.ToLower(string(out)), "dark"), true
	}
	if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
		return false, true
	}
	return false, false
}

// markdownStyleName keeps glamour's palette aligned with Lip Gloss's background choice.
func markdownStyleName() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
