package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/essence/internal/data"
	"github.com/agentic-research/essence/internal/source"
)

func newImportCmd(a *app) *cobra.Command {
	var idPath string

	cmd := &cobra.Command{
		Use:   "import DB [FILE]",
		Short: "Store the elements of a list or map document as records of a SQLite results table",
		Long: `Store every element of a JSON or YAML list (or map) as one record of a
SQLite results table readable with --sqlite.

Record ids are the list index or map key unless --id names a path whose value
is used instead. Existing records with the same id are replaced.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDoc(cmd, args, 1)
			if err != nil {
				return err
			}
			entries, ok := data.Entries(doc)
			if !ok {
				return fmt.Errorf("input is a %T, not a list or map of records", doc)
			}

			w, err := source.NewWriter(args[0], a.log)
			if err != nil {
				return err
			}
			for _, e := range entries {
				id := e.Key
				if idPath != "" {
					v := data.Lookup(idPath, e.Value, nil)
					if data.IsBlank(v) {
						_ = w.Close()
						return fmt.Errorf("record %s: %s is blank", e.Key, idPath)
					}
					id = fmt.Sprint(v)
				}
				if err := w.Add(source.Record{ID: id, Value: e.Value}); err != nil {
					_ = w.Close()
					return err
				}
			}
			if err := w.Close(); err != nil {
				return err
			}
			a.log.Info("imported records", zap.String("db", args[0]), zap.Int("count", len(entries)))
			return a.print(cmd.OutOrStdout(), map[string]any{"db": args[0], "records": len(entries)})
		},
	}

	cmd.Flags().StringVar(&idPath, "id", "", "Path of the value used as record id")
	return cmd
}
