package cli

import (
	"errors"
	"fmt"
	"strings"

	"votd/internal/notice"
	"votd/internal/settings"

	"github.com/spf13/cobra"
)

// settingsView is settings.Settings with a text rendering.
type settingsView settings.Settings

func (s settingsView) Text() string {
	return fmt.Sprintf("translation: %s\ntheme: %s\naccent: %s\nfontSize: %d\nshowRefFirst: %t",
		s.Translation, s.Theme, s.Accent, s.FontSize, s.ShowRefFirst)
}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display settings",
	}
	cmd.AddCommand(newSettingsGetCmd(app))
	cmd.AddCommand(newSettingsSetCmd(app))
	cmd.AddCommand(newSettingsResetCmd(app))
	return cmd
}

func newSettingsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			cur, bad := e.settings.Reload()
			for _, fe := range bad {
				app.log().Warn("stored setting replaced by default", "field", fe.Field, "value", fe.Value)
			}
			return writeOut(cmd, app, settingsView(cur))
		},
	}
}

func newSettingsSetCmd(app *App) *cobra.Command {
	var (
		translation  string
		theme        string
		accent       string
		fontSize     string
		showRefFirst bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Long: strings.TrimSpace(`
Only the flags you pass change. The whole record is validated before anything is
written: one invalid value rejects the save.
`),
		Example: strings.TrimSpace(`
votd settings set --translation WEB
votd settings set --theme dark --accent "#22c55e" --font-size 22
votd settings set --show-ref-first=false
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			raw := e.settings.Current().Raw()
			f := cmd.Flags()
			if f.Changed("translation") {
				raw.Translation = strings.TrimSpace(translation)
			}
			if f.Changed("theme") {
				raw.Theme = strings.TrimSpace(theme)
			}
			if f.Changed("accent") {
				raw.Accent = strings.TrimSpace(accent)
			}
			if f.Changed("font-size") {
				raw.FontSize = settings.ParseFontSize(fontSize)
			}
			if f.Changed("show-ref-first") {
				raw.ShowRefFirst = showRefFirst
			}

			saved, n, err := e.settings.SaveRaw(raw)
			if err != nil {
				return writeErr(cmd, errors.New(n.Text))
			}
			return finishSave(cmd, app, saved, n)
		},
	}

	cmd.Flags().StringVar(&translation, "translation", "", "Translation code (KJV|ASV|WEB)")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme (light|dark|system)")
	cmd.Flags().StringVar(&accent, "accent", "", "Accent color (#rrggbb)")
	cmd.Flags().StringVar(&fontSize, "font-size", "", "Font size in px (12-32)")
	cmd.Flags().BoolVar(&showRefFirst, "show-ref-first", true, "Show the reference above the passage")
	return cmd
}

func newSettingsResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			n := e.settings.Reset()
			return finishSave(cmd, app, e.settings.Current(), n)
		},
	}
}

// finishSave reports a save: a failed write exits non-zero even though the value was valid.
func finishSave(cmd *cobra.Command, app *App, cur settings.Settings, n notice.Notice) error {
	if n.Kind == notice.KindError {
		return writeErr(cmd, errors.New(n.Text))
	}
	writeNotice(cmd, n)
	return writeOut(cmd, app, settingsView(cur))
}
