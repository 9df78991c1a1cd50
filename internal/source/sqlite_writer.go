package source

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const defaultBatchSize = 10000

// Writer bulk-loads records into a results table (id TEXT, record TEXT)
// readable by StreamSQLite. Inserts are batched into transactions.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmt      *sql.Stmt
	batchSize int
	count     int
	total     int
	log       *zap.Logger
	mu        sync.Mutex
}

// NewWriter opens dbPath and creates the results table if needed.
func NewWriter(dbPath string, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS results (id TEXT PRIMARY KEY, record TEXT NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{db: db, batchSize: defaultBatchSize, log: log}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	w.stmt, err = w.tx.Prepare(`INSERT OR REPLACE INTO results (id, record) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	return nil
}

func (w *Writer) commitTx() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Add writes r as JSON. A record with an existing id replaces it.
func (w *Writer) Add(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.stmt.Exec(r.ID, oj.JSON(r.Value, &ojg.Options{Sort: true})); err != nil {
		return fmt.Errorf("insert record %s: %w", r.ID, err)
	}
	w.total++
	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return err
		}
		if err := w.beginTx(); err != nil {
			return err
		}
		w.log.Debug("committed batch", zap.Int("records", w.total))
		w.count = 0
	}
	return nil
}

// Close commits pending records and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	w.log.Debug("sqlite load complete", zap.Int("records", w.total))
	return w.db.Close()
}
