package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentic-research/essence/internal/arr"
	"github.com/agentic-research/essence/internal/data"
)

var errNotFound = errors.New("no value")

func newLookupCmd(a *app) *cobra.Command {
	var (
		defaultValue string
		strict       bool
		sqlitePath   string
		where        string
	)

	cmd := &cobra.Command{
		Use:   "lookup PATH [FILE]",
		Short: "Resolve a dot-notation path (a.*.b) against a document or record set",
		Long: `Resolve a dot-notation path against a JSON or YAML document.

A "*" segment fans out over every element of a list or map and returns a list.
Missing or null values resolve to --default, or fail when no default is given.
With --sqlite the path is resolved against every record of the results table.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var def any
			if cmd.Flags().Changed("default") {
				def = defaultValue
			}
			resolve := func(doc any) any {
				if strict {
					return arr.LookupStrict(path, doc, def)
				}
				return data.Lookup(path, doc, def)
			}

			if sqlitePath != "" || where != "" {
				records, err := a.loadRecords(cmd, args, 1, sqlitePath, where)
				if err != nil {
					return err
				}
				out := make([]any, 0, len(records))
				for _, r := range records {
					out = append(out, map[string]any{"id": r.ID, "value": resolve(r.Value)})
				}
				return a.print(cmd.OutOrStdout(), out)
			}

			doc, err := a.loadDoc(cmd, args, 1)
			if err != nil {
				return err
			}
			v := resolve(doc)
			if v == nil {
				return fmt.Errorf("%s: %w", path, errNotFound)
			}
			return a.print(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().StringVarP(&defaultValue, "default", "d", "", "Value returned when the path resolves to nothing")
	cmd.Flags().BoolVar(&strict, "strict", false, "Only walk maps and lists; treat * as a literal key")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Resolve against every record of a SQLite results table")
	cmd.Flags().StringVar(&where, "where", "", `Keep only records matching an expression, e.g. 'filled("item.id")'`)
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query SELECTOR [FILE]",
		Short: "Evaluate a JSONPath selector ($.a[*].b) against a document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDoc(cmd, args, 1)
			if err != nil {
				return err
			}
			matches, err := data.Query(args[0], doc)
			if err != nil {
				return err
			}
			if matches == nil {
				matches = []any{}
			}
			return a.print(cmd.OutOrStdout(), matches)
		},
	}
}

func newFlattenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "flatten [FILE]",
		Short: "Collapse a document into dot-notation keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDoc(cmd, args, 0)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), arr.DotFlatten(doc))
		},
	}
}

func newPartitionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "partition N [FILE]",
		Short: "Split a top-level list into N near-equal groups",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid group count %q", args[0])
			}
			doc, err := a.loadDoc(cmd, args, 1)
			if err != nil {
				return err
			}
			items, ok := data.Elements(doc)
			if !ok {
				return fmt.Errorf("input is a %T, not a list", doc)
			}
			groups := arr.Partition(items, n)
			out := make([]any, len(groups))
			for i, g := range groups {
				out[i] = append([]any{}, g...)
			}
			return a.print(cmd.OutOrStdout(), out)
		},
	}
}
