package cli

import (
	"fmt"
	"io"
	"strings"

	"votd/internal/daily"
	"votd/internal/settings"
	"votd/internal/tui"
	"votd/internal/verse"

	"github.com/spf13/cobra"
)

func newTodayCmd(app *App) *cobra.Command {
	var date string
	var offset int
	var renderMD bool
	var width int

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the verse of the day",
		Example: strings.TrimSpace(`
votd today
votd today --date 2026-12-25 --format text
votd today --format text --render
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			day := e.now
			if s := strings.TrimSpace(date); s != "" {
				d, err := daily.ParseDate(s, day.Location())
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", s))
				}
				day = d
			}

			off := e.session.Offset()
			if cmd.Flags().Changed("offset") {
				off = offset
			}
			v, err := e.render(day, off)
			if err != nil {
				return writeErr(cmd, err)
			}
			if v.Notice != nil {
				writeNotice(cmd, *v.Notice)
			}

			if renderMD {
				style := "dark"
				if v.Theme == settings.ThemeLight {
					style = "light"
				}
				_, err := io.WriteString(cmd.OutOrStdout(), tui.RenderMarkdown(v.Markdown(), width, style, v.Accent)+"\n")
				return err
			}
			return writeOut(cmd, app, v)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Show the verse for this day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Shuffle offset to apply instead of the session's")
	cmd.Flags().BoolVar(&renderMD, "render", false, "Render the card for the terminal (implies text output)")
	cmd.Flags().IntVar(&width, "width", 72, "Wrap width for --render")
	return cmd
}

// randomVerse is one catalog entry picked at random.
type randomVerse struct {
	Ref         string            `json:"ref"`
	Passage     string            `json:"text"`
	Translation verse.Translation `json:"translation"`
}

func (r randomVerse) Text() string {
	return fmt.Sprintf("%s (%s)\n%s", r.Ref, r.Translation, r.Passage)
}

func newRandomCmd(app *App) *cobra.Command {
	var translation string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random verse from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			t, err := pickTranslation(translation, e.settings.Current().Translation)
			if err != nil {
				return writeErr(cmd, err)
			}
			rec, err := e.catalog.Random(nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, randomVerse{Ref: rec.Ref, Passage: rec.DisplayText(t), Translation: t})
		},
	}

	cmd.Flags().StringVar(&translation, "translation", "", "Translation code (default: saved setting)")
	return cmd
}

// pickTranslation resolves a --translation flag, falling back to def when empty.
func pickTranslation(raw string, def verse.Translation) (verse.Translation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	t, ok := verse.ParseTranslation(raw)
	if !ok {
		return "", fmt.Errorf("invalid translation: %s (expected KJV|ASV|WEB)", raw)
	}
	return t, nil
}
