package cli

import (
	"context"
	"errors"
	"time"

	"votd/internal/notice"
	"votd/internal/render"
	"votd/internal/share"

	"github.com/spf13/cobra"
)

const shareTimeout = 2 * time.Minute

type shareResult struct {
	Ref     string `json:"ref"`
	Payload string `json:"payload"`
	Shared  bool   `json:"shared"`
	Notice  string `json:"notice,omitempty"`
}

func (r shareResult) Text() string { return r.Notice }

func newCopyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy the current verse to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, done, err := currentView(cmd, app)
			if err != nil {
				return err
			}
			defer done()

			n := app.shareService().Copy(v.Ref, v.Passage, v.Translation)
			return writeShareResult(cmd, app, v, n, true)
		},
	}
}

func newShareCmd(app *App) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share the current verse (via --share-cmd, or by copying it)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, done, err := currentView(cmd, app)
			if err != nil {
				return err
			}
			defer done()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, shareTimeout)
			defer cancel()

			n, ok := app.shareService().Share(ctx, v.Ref, v.Passage, v.Translation, url)
			return writeShareResult(cmd, app, v, n, ok)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Link to pass along with the verse")
	return cmd
}

// currentView renders what `votd today` would show right now.
func currentView(cmd *cobra.Command, app *App) (render.View, func(), error) {
	e, err := openEnv(app)
	if err != nil {
		return render.View{}, nil, writeErr(cmd, err)
	}
	v, err := e.render(e.now, e.session.Offset())
	if err != nil {
		_ = e.Close()
		return render.View{}, nil, writeErr(cmd, err)
	}
	return v, func() { _ = e.Close() }, nil
}

func writeShareResult(cmd *cobra.Command, app *App, v render.View, n notice.Notice, ok bool) error {
	if !ok {
		// Cancelled: nothing to report.
		return nil
	}
	if n.Kind == notice.KindError {
		return writeErr(cmd, errors.New(n.Text))
	}
	return writeOut(cmd, app, shareResult{
		Ref:     v.Ref,
		Payload: share.Payload(v.Ref, v.Translation, v.Passage),
		Shared:  true,
		Notice:  n.Text,
	})
}
