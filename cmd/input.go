package cmd

import (
	"fmt"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/essence/internal/data"
	"github.com/agentic-research/essence/internal/source"
)

// dirFS opens the directory holding path and returns it with the base name.
func dirFS(path string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return osfs.New(filepath.Dir(abs)), filepath.Base(abs), nil
}

// loadDoc decodes the document named by args[i], or stdin when it is
// absent or "-".
func (a *app) loadDoc(cmd *cobra.Command, args []string, i int) (any, error) {
	if i >= len(args) || args[i] == "-" {
		return source.NewLoader(nil, a.log).Read(cmd.InOrStdin(), source.FormatAuto)
	}
	fs, name, err := dirFS(args[i])
	if err != nil {
		return nil, err
	}
	return source.NewLoader(fs, a.log).Load(name)
}

// loadRecords returns the records of a SQLite results table when dbPath is
// set, else the elements of the document named by args[i]. Records failing
// where are dropped.
func (a *app) loadRecords(cmd *cobra.Command, args []string, i int, dbPath, where string) ([]source.Record, error) {
	var filter *source.Filter
	if where != "" {
		f, err := source.NewFilter(where)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	var records []source.Record
	keep := func(r source.Record) error {
		if filter != nil {
			ok, err := filter.Match(r.Value)
			if err != nil {
				return fmt.Errorf("record %s: %w", r.ID, err)
			}
			if !ok {
				a.log.Debug("record filtered out", zap.String("id", r.ID))
				return nil
			}
		}
		records = append(records, r)
		return nil
	}

	if dbPath != "" {
		if err := source.StreamSQLite(dbPath, keep); err != nil {
			return nil, err
		}
		return records, nil
	}

	doc, err := a.loadDoc(cmd, args, i)
	if err != nil {
		return nil, err
	}
	entries, ok := data.Entries(doc)
	if !ok {
		return nil, fmt.Errorf("input is a %T, not a list or map of records", doc)
	}
	for _, e := range entries {
		if err := keep(source.Record{ID: e.Key, Value: e.Value}); err != nil {
			return nil, err
		}
	}
	return records, nil
}
