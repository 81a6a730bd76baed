package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"votd/internal/metrics"
	"votd/internal/store"
	"votd/internal/verse"
	"votd/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool
	var secure bool
	var sessionTTL time.Duration

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the verse page, settings page and JSON API",
		Long: strings.TrimSpace(`
Serve the verse of the day from a local HTTP server.

- / shows today's card with copy, share, shuffle and search
- /settings edits the saved settings (shared with the CLI and TUI)
- /api/... exposes the same operations as JSON
- /metrics exposes Prometheus metrics

Each browser gets its own shuffle state; settings are shared.
`),
		Example: strings.TrimSpace(`
# Serve on localhost and open a browser
votd web

# Serve on all interfaces with the SQLite settings store
votd --storage sqlite web --addr :3336 --open=false
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			cat, err := verse.Load(app.Catalog)
			if err != nil {
				return writeErr(cmd, err)
			}
			prof, err := store.Open(app.Storage, app.ConfigDir)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer prof.Close()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:          listenAddr,
				Catalog:       cat,
				Profile:       prof,
				Logger:        app.log(),
				Metrics:       metrics.New(),
				Now:           app.Now,
				SessionTTL:    sessionTTL,
				SecureCookies: secure,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"addr":      actualAddr,
				"url":       url,
				"storage":   prof.Backend,
				"profile":   prof.Path,
				"opened":    opened,
				"openError": openErr,
				"startedAt": app.Now().UTC().Format(time.RFC3339Nano),
			}, hints...)

			fmt.Fprintf(cmd.ErrOrStderr(), "votd web running at %s (storage=%s)\n", url, prof.Backend)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("VOTD_ADDR", "127.0.0.1:3336"), "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the page in your default browser")
	cmd.Flags().BoolVar(&secure, "secure-cookies", false, "Mark the session cookie Secure (when served behind TLS)")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 24*time.Hour, "How long an idle browser session is kept")
	return cmd
}
