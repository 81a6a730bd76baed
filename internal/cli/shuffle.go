package cli

import (
	"strings"

	"votd/internal/notice"

	"github.com/spf13/cobra"
)

func newShuffleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Show a different verse for the rest of today",
		Long: strings.TrimSpace(`
Shuffle advances this session's offset by one. The offset is cleared at midnight and
on the first command of a new day.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			off, err := e.session.Shuffle()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeShuffled(cmd, e, off, notice.Info("Showing different verse"))
		},
	}
	cmd.AddCommand(newShuffleResetCmd(app))
	cmd.AddCommand(newShuffleSelectCmd(app))
	return cmd
}

func newShuffleResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Go back to today's verse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			if err := e.session.ClearOffset(); err != nil {
				return writeErr(cmd, err)
			}
			return writeShuffled(cmd, e, 0, notice.Notice{})
		},
	}
}

func newShuffleSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "select <ref>",
		Short:   "Show a specific verse for the rest of today",
		Example: `votd shuffle select "Psalm 23:1"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			ref := strings.TrimSpace(strings.Join(args, " "))
			idx := e.catalog.IndexOf(ref)
			if idx < 0 {
				return writeErr(cmd, errNotFound("verse", ref))
			}
			off, err := e.session.Select(e.now, idx, e.catalog.Len())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeShuffled(cmd, e, off, notice.Success("Showing "+ref))
		},
	}
}

func writeShuffled(cmd *cobra.Command, e *env, offset int, n notice.Notice) error {
	v, err := e.render(e.now, offset)
	if err != nil {
		return writeErr(cmd, err)
	}
	writeNotice(cmd, n)
	return writeOut(cmd, e.app, v)
}
