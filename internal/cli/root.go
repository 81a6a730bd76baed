package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"votd/internal/format"
	"votd/internal/logging"
	"votd/internal/notice"
	"votd/internal/render"
	"votd/internal/session"
	"votd/internal/settings"
	"votd/internal/share"
	"votd/internal/store"
	"votd/internal/tui"
	"votd/internal/verse"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigDir  string
	Storage    string
	Catalog    string
	Format     string
	PrettyJSON bool
	LogLevel   string
	LogFormat  string
	ShareCmd   string

	// Now is the clock every command renders against; tests pin it.
	Now func() time.Time

	logger *slog.Logger
	// clipboard replaces the system/terminal clipboards (tests).
	clipboard share.Clipboard
}

func NewRootCmd() *cobra.Command {
	// Real environment variables win over .env entries.
	_ = godotenv.Load()
	return newRootCmd(&App{Now: time.Now})
}

func newRootCmd(app *App) *cobra.Command {
	if app.Now == nil {
		app.Now = time.Now
	}

	cmd := &cobra.Command{
		Use:          "votd",
		Short:        "Verse of the Day: CLI + TUI + local web page",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  votd

  # Today's verse as text
  votd today --format text

  # A specific day (shortcut for: votd today --date 2026-12-25)
  votd 2026-12-25

  # Serve the web page
  votd web --addr 127.0.0.1:3336
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (expected json|edn|text)", app.Format))
		}
		app.logger = logging.Init(logging.Config{Level: app.LogLevel, Format: app.LogFormat})
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("VOTD_CONFIG_DIR", ""), "Directory holding settings and session state (default ~/.votd)")
	cmd.PersistentFlags().StringVar(&app.Storage, "storage", envOr("VOTD_STORAGE", store.BackendFile), "Settings storage backend (file|sqlite)")
	cmd.PersistentFlags().StringVar(&app.Catalog, "catalog", envOr("VOTD_CATALOG", ""), "Verse catalog JSON file (default: bundled catalog)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("VOTD_FORMAT", "json"), "Output format (json|edn|text)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("VOTD_LOG_LEVEL", "warn"), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFormat, "log-format", envOr("VOTD_LOG_FORMAT", "text"), "Log format (text|json)")
	cmd.PersistentFlags().StringVar(&app.ShareCmd, "share-cmd", envOr("VOTD_SHARE_CMD", ""), "Command the verse is piped to when sharing (default: copy)")

	cmd.AddCommand(newTodayCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newShuffleCmd(app))
	cmd.AddCommand(newCopyCmd(app))
	cmd.AddCommand(newShareCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newRandomCmd(app))
	cmd.AddCommand(newWebCmd(app))

	return cmd
}

// env is what one command invocation works against. Close releases the profile store.
type env struct {
	app      *App
	catalog  *verse.Catalog
	profile  *store.Profile
	settings *settings.Manager
	session  *session.Session
	ctl      *render.Controller
	now      time.Time
}

func (e *env) Close() error { return e.profile.Close() }

func openEnv(app *App) (*env, error) {
	cat, err := verse.Load(app.Catalog)
	if err != nil {
		return nil, err
	}
	prof, err := store.Open(app.Storage, app.ConfigDir)
	if err != nil {
		return nil, err
	}
	sessKV, err := store.SessionFile(app.ConfigDir)
	if err != nil {
		_ = prof.Close()
		return nil, err
	}
	e := &env{
		app:      app,
		catalog:  cat,
		profile:  prof,
		settings: settings.NewManager(settings.NewStore(prof), app.log()),
		session:  session.New(sessKV),
		ctl:      render.New(cat),
		now:      app.Now(),
	}
	// A command run on a new day starts from that day's own verse.
	if rolled, err := e.session.Resume(e.now); err != nil {
		app.log().Warn("resume session", "err", err)
	} else if rolled {
		app.log().Debug("session rolled over", "date", e.now.Format(time.DateOnly))
	}
	return e, nil
}

// render renders date with the saved settings and the given shuffle offset.
func (e *env) render(date time.Time, offset int) (render.View, error) {
	v, err := e.ctl.Render(date, e.settings.Current(), offset)
	if err != nil {
		return v, err
	}
	if v.Fallback {
		e.app.log().Error("render verse", "err", v.Err, "date", v.DateKey)
	}
	return v, nil
}

func (app *App) log() *slog.Logger {
	if app.logger == nil {
		return slog.Default()
	}
	return app.logger
}

func (app *App) shareService() *share.Service {
	s := share.NewTerminalService(app.ShareCmd)
	if app.clipboard != nil {
		s.Primary, s.Fallback = app.clipboard, nil
	}
	s.Logger = app.log()
	return s
}

func runTUI(cmd *cobra.Command, app *App) error {
	e, err := openEnv(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return tui.Run(ctx, tui.Options{
		Catalog:  e.catalog,
		Settings: e.settings,
		Session:  e.session,
		Share:    app.shareService(),
		Logger:   app.log(),
		Now:      app.Now,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envelope is the JSON/EDN output shape: {"data": ..., "_hints": [...]}.
type envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`
}

func writeOut(cmd *cobra.Command, app *App, data any, hints ...string) error {
	if strings.EqualFold(strings.TrimSpace(app.Format), format.Text) {
		if _, ok := data.(format.Texter); ok {
			return format.Write(cmd.OutOrStdout(), data, app.Format, app.PrettyJSON)
		}
	}
	return format.Write(cmd.OutOrStdout(), envelope{Data: data, Hints: hints}, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// writeNotice prints a toast-style notice to stderr, keeping stdout for results.
func writeNotice(cmd *cobra.Command, n notice.Notice) {
	if strings.TrimSpace(n.Text) == "" {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), n.Text)
}
