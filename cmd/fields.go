package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/essence/internal/census"
	"github.com/agentic-research/essence/internal/source"
)

func newFieldsCmd(a *app) *cobra.Command {
	var (
		sqlitePath string
		where      string
		together   string
	)

	cmd := &cobra.Command{
		Use:   "fields [FILE]",
		Short: "Report how often each field path is present and filled across records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.loadRecords(cmd, args, 0, sqlitePath, where)
			if err != nil {
				return err
			}
			c := census.Build(source.Values(records))

			if together != "" {
				paths := strings.Split(together, ",")
				ids := make([]any, 0)
				for _, i := range c.Together(paths...).ToArray() {
					ids = append(ids, records[i].ID)
				}
				return a.print(cmd.OutOrStdout(), map[string]any{
					"paths":   paths,
					"records": ids,
				})
			}

			fields := c.Fields()
			out := make([]any, len(fields))
			for i, f := range fields {
				out[i] = map[string]any{
					"path":     f.Path,
					"present":  f.Present,
					"filled":   f.Filled,
					"distinct": f.Distinct,
					"coverage": f.Coverage,
				}
			}
			return a.print(cmd.OutOrStdout(), map[string]any{
				"records": c.Records(),
				"fields":  out,
			})
		},
	}

	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Read records from a SQLite results table")
	cmd.Flags().StringVar(&where, "where", "", "Keep only records matching an expression")
	cmd.Flags().StringVar(&together, "together", "", "Comma-separated paths; list the records where all are filled")
	return cmd
}
