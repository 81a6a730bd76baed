// Package tui is the interactive terminal surface: today's card, shuffle, search,
// copy/share and settings keys, with the midnight rollover running in the background.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"votd/internal/schedule"
	"votd/internal/session"
	"votd/internal/settings"
	"votd/internal/share"
	"votd/internal/verse"
)

type Options struct {
	Catalog  *verse.Catalog
	Settings *settings.Manager
	Session  *session.Session
	Share    *share.Service
	Logger   *slog.Logger
	Now      func() time.Time
	// ShareURL is passed to share targets along with the verse.
	ShareURL string
}

func Run(ctx context.Context, opts Options) error {
	if opts.Catalog == nil || opts.Catalog.Len() == 0 {
		return verse.ErrCatalogUnavailable
	}
	if opts.Settings == nil || opts.Session == nil {
		return errors.New("tui: settings and session are required")
	}
	if opts.Share == nil {
		opts.Share = share.NewTerminalService("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	applyColorProfilePreference()
	applyThemePreference(opts.Settings.Current().Theme)

	send := &sender{}
	m := newModel(opts, send)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	send.set(p)

	sess := opts.Session
	roll := schedule.NewRollover(schedule.RolloverOpts{
		Action: func(at time.Time) error {
			if err := sess.Rollover(at); err != nil {
				return err
			}
			send.Send(rolloverMsg{at: at})
			return nil
		},
		Now:    opts.Now,
		Logger: opts.Logger,
	})
	roll.Start()
	defer roll.Stop()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
