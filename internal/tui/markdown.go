package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

var (
	mdRendererMu sync.Mutex
	// Renderers are cached by style, accent and wrap width. WithAutoStyle is avoided
	// because it can block on terminal background queries.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders md with a fixed light or dark palette tinted by accent.
// On any renderer error the source text is returned unchanged.
func RenderMarkdown(md string, width int, styleName, accent string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	key := styleName + ":" + accent + ":" + strconv.Itoa(width)

	// Renderers keep per-render state, so one render runs at a time.
	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()

	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(markdownStyleConfig(styleName, accent)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(styleName, accent string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	if strings.EqualFold(strings.TrimSpace(styleName), "light") {
		cfg = styles.LightStyleConfig
	} else {
		cfg = styles.DarkStyleConfig
	}
	zero := uint(0)
	cfg.Document.Margin = &zero

	if accent != "" {
		cfg.Strong.Color = mdStrPtr(accent)
		cfg.BlockQuote.Color = nil
	}
	// Some default styles render quotes faint, which is hard to read for the verse itself.
	cfg.BlockQuote.Faint = mdBoolPtr(false)
	cfg.Emph.Color = nil
	return cfg
}

func mdStrPtr(s string) *string { return &s }
func mdBoolPtr(b bool) *bool    { return &b }
