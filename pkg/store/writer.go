// Package store persists the index tables into a SQLite artifact and reads
// them back. A build writes into a temporary sibling of the artifact and only
// renames it into place after every table committed, so readers never see a
// partial index.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/index"
	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultBatchSize is the number of rows committed per transaction.
const DefaultBatchSize = 5000

// ErrWriteFailure means the storage layer rejected a write.
var ErrWriteFailure = errors.New("write failure")

// WriteError wraps a storage error with the table being written.
// It matches ErrWriteFailure under errors.Is.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%v: %v", ErrWriteFailure, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrWriteFailure, e.Table, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWriteFailure, e.Err}
}

// KV is a row of the kv table.
type KV struct {
	Key   string
	Value string
}

// Writer owns the database being built. It is not safe for concurrent use.
type Writer struct {
	db        *sql.DB
	path      string
	tmp       string
	batchSize int
	strategy  index.Strategy
	rows      map[string]int
}

// Create opens a fresh temporary database next to path. Nothing at path is
// touched until Commit.
func Create(path string, batchSize int) (*Writer, error) {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, &WriteError{Err: fmt.Errorf("failed to create output directory: %w", err)}
	}
	tmp := utils.TempSibling(path)
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return nil, &WriteError{Err: fmt.Errorf("failed to remove stale %s: %w", tmp, err)}
	}

	db, err := sql.Open("sqlite3", tmp)
	if err != nil {
		return nil, &WriteError{Err: fmt.Errorf("failed to open %s: %w", tmp, err)}
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	w := NewWriter(db, batchSize)
	w.path = path
	w.tmp = tmp

	// The temporary file is thrown away on failure, so skip the journal.
	for _, pragma := range []string{"PRAGMA journal_mode = OFF", "PRAGMA synchronous = OFF"} {
		if _, err := db.Exec(pragma); err != nil {
			w.Abort()
			return nil, &WriteError{Err: fmt.Errorf("failed to apply %q: %w", pragma, err)}
		}
	}
	log.Debugf("Writing artifact into %s", tmp)
	return w, nil
}

// NewWriter wraps an open database without any file handling.
// Commit then only finalizes the schema.
func NewWriter(db *sql.DB, batchSize int) *Writer {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Writer{db: db, batchSize: batchSize, rows: make(map[string]int)}
}

// CreateSchema creates the base tables and those of the fuzzy strategy.
func (w *Writer) CreateSchema(strategy index.Strategy) error {
	w.strategy = strategy
	for _, stmt := range schemaFor(strategy) {
		if _, err := w.db.Exec(stmt); err != nil {
			return &WriteError{Err: fmt.Errorf("failed to create schema: %w", err)}
		}
	}
	return nil
}

// WriteWords fills the words table.
func (w *Writer) WriteWords(entries []index.WordEntry) error {
	return w.insert(TableWords,
		`INSERT INTO words (word_lower, word_lower_reversed, frequency_rank, word, hidden) VALUES (?, ?, ?, ?, ?)`,
		len(entries), func(i int) []any {
			e := entries[i]
			return []any{e.Lower, e.Reversed, e.Rank, e.Display, boolToInt(e.Hidden)}
		})
}

// WriteSuffixes fills the words_by_suffix table.
func (w *Writer) WriteSuffixes(entries []index.SuffixEntry) error {
	return w.insert(TableSuffixes,
		`INSERT INTO words_by_suffix (word_lower_reversed, frequency_rank, word, word_lower, hidden) VALUES (?, ?, ?, ?, ?)`,
		len(entries), func(i int) []any {
			e := entries[i]
			return []any{e.Reversed, e.Rank, e.Display, e.Lower, boolToInt(e.Hidden)}
		})
}

// WritePrefixes fills the prefixes table.
func (w *Writer) WritePrefixes(entries []index.PrefixEntry) error {
	return w.insert(TablePrefixes,
		`INSERT INTO prefixes (prefix_lower, word, frequency_rank, hidden) VALUES (?, ?, ?, ?)`,
		len(entries), func(i int) []any {
			e := entries[i]
			return []any{e.Prefix, e.Display, e.Rank, boolToInt(e.Hidden)}
		})
}

// WriteFuzzy writes whichever fuzzy index was built.
func (w *Writer) WriteFuzzy(fi index.FuzzyIndex) error {
	switch f := fi.(type) {
	case *index.DeleteDictionary:
		return w.WriteDeletes(f.Entries())
	case *index.BKTree:
		return w.WriteBKTree(f)
	}
	return &WriteError{Err: fmt.Errorf("unsupported fuzzy index %T", fi)}
}

// WriteDeletes fills the symspell_deletes table. Rows repeating a
// (hash, word) key are ignored.
func (w *Writer) WriteDeletes(entries []index.DeleteEntry) error {
	return w.insert(TableDeletes,
		`INSERT OR IGNORE INTO symspell_deletes (delete_hash, word_lower, frequency_rank, word) VALUES (?, ?, ?, ?)`,
		len(entries), func(i int) []any {
			e := entries[i]
			return []any{e.Hash, e.Lower, e.Rank, e.Display}
		})
}

// WriteBKTree fills bk_nodes and bk_edges.
func (w *Writer) WriteBKTree(tree *index.BKTree) error {
	return w.WriteBKRows(tree.Nodes(), tree.Edges())
}

// WriteBKRows writes BK-tree rows as given.
func (w *Writer) WriteBKRows(nodes []index.BKNode, edges []index.BKEdge) error {
	err := w.insert(TableBKNodes,
		`INSERT INTO bk_nodes (node_id, word, word_lower, frequency_rank, hidden) VALUES (?, ?, ?, ?, ?)`,
		len(nodes), func(i int) []any {
			n := nodes[i]
			return []any{n.ID, n.Display, n.Lower, n.Rank, boolToInt(n.Hidden)}
		})
	if err != nil {
		return err
	}
	return w.insert(TableBKEdges,
		`INSERT INTO bk_edges (parent_id, child_id, distance) VALUES (?, ?, ?)`,
		len(edges), func(i int) []any {
			e := edges[i]
			return []any{e.Parent, e.Child, e.Distance}
		})
}

// WriteKV fills the kv table.
func (w *Writer) WriteKV(pairs []KV) error {
	return w.insert(TableKV,
		`INSERT INTO kv (key, value) VALUES (?, ?)`,
		len(pairs), func(i int) []any {
			return []any{pairs[i].Key, pairs[i].Value}
		})
}

// Rows returns how many rows were written per table so far.
func (w *Writer) Rows() map[string]int {
	out := make(map[string]int, len(w.rows))
	for k, v := range w.rows {
		out[k] = v
	}
	return out
}

// insert writes n rows, committing every batchSize rows.
func (w *Writer) insert(table, query string, n int, args func(i int) []any) error {
	for start := 0; start < n; start += w.batchSize {
		end := min(start+w.batchSize, n)
		if err := w.insertBatch(query, start, end, args); err != nil {
			return &WriteError{Table: table, Err: err}
		}
	}
	w.rows[table] += n
	log.Debugf("Wrote %d rows to %s", n, table)
	return nil
}

func (w *Writer) insertBatch(query string, start, end int, args func(i int) []any) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	for i := start; i < end; i++ {
		if _, err := stmt.Exec(args(i)...); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to close statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Commit builds the secondary indexes, closes the database and, for writers
// made by Create, moves the temporary file over the artifact path.
func (w *Writer) Commit() error {
	for _, stmt := range indexesFor(w.strategy) {
		if _, err := w.db.Exec(stmt); err != nil {
			w.Abort()
			return &WriteError{Err: fmt.Errorf("failed to create index: %w", err)}
		}
	}
	if err := w.db.Close(); err != nil {
		w.removeTemp()
		return &WriteError{Err: fmt.Errorf("failed to close database: %w", err)}
	}
	if w.tmp == "" {
		return nil
	}
	if err := syncFile(w.tmp); err != nil {
		w.removeTemp()
		return &WriteError{Err: err}
	}
	if err := os.Rename(w.tmp, w.path); err != nil {
		w.removeTemp()
		return &WriteError{Err: fmt.Errorf("failed to move artifact into place: %w", err)}
	}
	log.Debugf("Artifact committed to %s", w.path)
	return nil
}

// Abort closes the database and discards the temporary file.
// The previous artifact, if any, stays in place.
func (w *Writer) Abort() {
	if err := w.db.Close(); err != nil {
		log.Debugf("Closing aborted database: %v", err)
	}
	w.removeTemp()
}

func (w *Writer) removeTemp() {
	if w.tmp == "" {
		return
	}
	if err := os.Remove(w.tmp); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to remove temporary artifact %s: %v", w.tmp, err)
	}
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to reopen %s: %w", path, err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	return nil
}
