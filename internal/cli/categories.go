package cli

import (
	"fmt"
	"strings"

	"votd/internal/verse"

	"github.com/spf13/cobra"
)

type categorySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type categoryList []categorySummary

func (l categoryList) Text() string {
	var b strings.Builder
	for _, c := range l {
		fmt.Fprintf(&b, "%s (%d)\n", c.Name, c.Count)
	}
	return b.String()
}

type categoryVerses struct {
	Name        string            `json:"name"`
	Translation verse.Translation `json:"translation"`
	Verses      []verse.Record    `json:"verses"`
}

func (c categoryVerses) Text() string {
	var b strings.Builder
	for i, rec := range c.Verses {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n  %s\n", rec.Ref, rec.DisplayText(c.Translation))
	}
	return b.String()
}

func newCategoriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories [name]",
		Short: "List verse categories, or the verses in one",
		Example: strings.TrimSpace(`
votd categories
votd categories peace --format text
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			if len(args) == 0 {
				out := categoryList{}
				for _, name := range e.catalog.Categories() {
					out = append(out, categorySummary{Name: name, Count: len(e.catalog.ByCategory(name))})
				}
				return writeOut(cmd, app, out)
			}

			name := strings.ToLower(strings.TrimSpace(args[0]))
			recs := e.catalog.ByCategory(name)
			if len(recs) == 0 {
				return writeErr(cmd, errNotFound("category", name))
			}
			return writeOut(cmd, app, categoryVerses{
				Name:        name,
				Translation: e.settings.Current().Translation,
				Verses:      recs,
			})
		},
	}
}
