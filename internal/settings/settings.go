// Package settings owns the user's display preferences: their domains, validation,
// the merge-over-defaults load path and persistence under the "votd.settings" key.
package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"votd/internal/verse"
)

// Key is the storage key of the persisted settings record.
const Key = "votd.settings"

const (
	MinFontSize     = 12
	MaxFontSize     = 32
	DefaultFontSize = 18
	DefaultAccent   = "#0ea5e9"
)

type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Themes lists the theme modes in display order.
func Themes() []ThemeMode {
	return []ThemeMode{ThemeLight, ThemeDark, ThemeSystem}
}

// Settings is a validated preference record. Values of this type handed out by this
// package are always inside their domains.
type Settings struct {
	Translation  verse.Translation `json:"translation" validate:"translation"`
	Theme        ThemeMode         `json:"theme" validate:"oneof=light dark system"`
	Accent       string            `json:"accent" validate:"rgbhex"`
	FontSize     int               `json:"fontSize" validate:"min=12,max=32"`
	ShowRefFirst bool              `json:"showRefFirst"`
}

// Defaults returns the record used on first run and after a reset.
func Defaults() Settings {
	return Settings{
		Translation:  verse.DefaultTranslation,
		Theme:        ThemeSystem,
		Accent:       DefaultAccent,
		FontSize:     DefaultFontSize,
		ShowRefFirst: true,
	}
}

// Raw is a merged but unvalidated record, as read from storage or user input.
// FontSize is a float so that non-integers can be seen (and rejected) by validation.
type Raw struct {
	Translation  string
	Theme        string
	Accent       string
	FontSize     float64
	ShowRefFirst bool

	// badType names fields whose stored JSON had the wrong type.
	badType map[string]bool
}

// RawDefaults is Defaults() in Raw form.
func RawDefaults() Raw {
	return Defaults().Raw()
}

// Raw converts s back to the unvalidated form.
func (s Settings) Raw() Raw {
	return Raw{
		Translation:  string(s.Translation),
		Theme:        string(s.Theme),
		Accent:       s.Accent,
		FontSize:     float64(s.FontSize),
		ShowRefFirst: s.ShowRefFirst,
	}
}

// FromInput builds a Raw from form-style string input.
func FromInput(translation, theme, accent, fontSize string, showRefFirst bool) Raw {
	return Raw{
		Translation:  strings.TrimSpace(translation),
		Theme:        strings.TrimSpace(theme),
		Accent:       strings.TrimSpace(accent),
		FontSize:     ParseFontSize(fontSize),
		ShowRefFirst: showRefFirst,
	}
}

// ParseFontSize reads a font size typed by the user. Unparsable input is NaN, which
// fails validation.
func ParseFontSize(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// ErrInvalidSetting is wrapped by every FieldError.
var ErrInvalidSetting = errors.New("invalid setting")

// FieldError describes one field outside its domain.
type FieldError struct {
	Field string
	Value any
}

func (e FieldError) Error() string {
	return fmt.Sprintf("invalid setting %s: %v", e.Field, e.Value)
}

func (e FieldError) Unwrap() error { return ErrInvalidSetting }

// Message is the user-facing text for the field.
func (e FieldError) Message() string {
	switch e.Field {
	case "translation":
		return "Invalid translation selected"
	case "theme":
		return "Invalid theme selected"
	case "accent":
		return "Invalid accent color"
	case "fontSize":
		return fmt.Sprintf("Font size must be between %d and %d", MinFontSize, MaxFontSize)
	case "showRefFirst":
		return "Invalid reference placement"
	}
	return "Invalid setting"
}

// ValidationError lists every invalid field of a rejected record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	out := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f)
	}
	return out
}

// Normalize validates each field of r independently and substitutes the default for
// every invalid one. The returned Settings is always valid; the errors say what was replaced.
func Normalize(r Raw) (Settings, []FieldError) {
	def := Defaults()
	out := def
	var bad []FieldError

	if !r.badType["translation"] && ValidTranslation(r.Translation) {
		out.Translation = verse.Translation(r.Translation)
	} else {
		bad = append(bad, FieldError{Field: "translation", Value: r.Translation})
	}
	if !r.badType["theme"] && ValidTheme(r.Theme) {
		out.Theme = ThemeMode(r.Theme)
	} else {
		bad = append(bad, FieldError{Field: "theme", Value: r.Theme})
	}
	if !r.badType["accent"] && ValidAccent(r.Accent) {
		out.Accent = r.Accent
	} else {
		bad = append(bad, FieldError{Field: "accent", Value: r.Accent})
	}
	if !r.badType["fontSize"] && ValidFontSize(r.FontSize) {
		out.FontSize = int(r.FontSize)
	} else {
		bad = append(bad, FieldError{Field: "fontSize", Value: r.FontSize})
	}
	if !r.badType["showRefFirst"] {
		out.ShowRefFirst = r.ShowRefFirst
	} else {
		bad = append(bad, FieldError{Field: "showRefFirst", Value: r.ShowRefFirst})
	}
	return out, bad
}

// Strict is Normalize without fallback: any invalid field rejects the whole record.
// Explicit saves go through Strict; reads go through Normalize.
func Strict(r Raw) (Settings, error) {
	s, bad := Normalize(r)
	if len(bad) > 0 {
		return Settings{}, &ValidationError{Fields: bad}
	}
	return s, nil
}

// ClampFontSize bounds n to the renderable range.
func ClampFontSize(n int) int {
	return max(MinFontSize, min(MaxFontSize, n))
}
