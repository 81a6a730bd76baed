package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(app *App) *cobra.Command {
	var translation string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by reference or text",
		Long: strings.TrimSpace(`
Search matches the query (case-insensitive substring) against each verse's reference
and its text in the chosen translation. Results keep catalog order.
`),
		Example: strings.TrimSpace(`
votd search shepherd
votd search "john 3" --translation WEB --format text
`),
		Args: cobra.ArbitraryArgs,
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
			hits := e.ctl.Search(strings.Join(args, " "), t)

			var hints []string
			if len(hits.Results) > 0 {
				hints = append(hints, "votd shuffle select "+hits.Results[0].Ref)
			}
			return writeOut(cmd, app, hits, hints...)
		},
	}

	cmd.Flags().StringVar(&translation, "translation", "", "Translation to search (default: saved setting)")
	return cmd
}
