package source

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/essence/internal/data"
)

// Record is one row of a results table: its id and decoded JSON value.
type Record struct {
	ID    string
	Value any
}

// StreamSQLite iterates over all records in a SQLite database, calling fn for each one.
// Only one parsed record is alive at a time, keeping memory usage constant.
func StreamSQLite(dbPath string, fn func(Record) error) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT id, record FROM results ORDER BY rowid")
	if err != nil {
		return fmt.Errorf("query results: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		parsed, err := data.DecodeJSON([]byte(raw))
		if err != nil {
			return fmt.Errorf("parse record %s: %w", id, err)
		}
		if err := fn(Record{ID: id, Value: parsed}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}

// LoadSQLite reads every record from the results table.
// Prefer StreamSQLite for large datasets.
func LoadSQLite(dbPath string) ([]Record, error) {
	var records []Record
	err := StreamSQLite(dbPath, func(r Record) error {
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Values strips record ids.
func Values(records []Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r.Value
	}
	return out
}
