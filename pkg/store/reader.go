package store

import (
	"database/sql"
	"fmt"

	"github.com/bastiangx/wordindex/pkg/index"
)

// Reader gives read-only access to a committed artifact.
type Reader struct {
	db *sql.DB
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string
	Rows  int64
}

// Open opens the artifact at path read-only.
func Open(path string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Reader{db: db}, nil
}

// NewReader wraps an open database.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// HasTable reports whether the artifact contains the named table.
func (r *Reader) HasTable(name string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return n > 0, nil
}

// Words returns the words table in rank order.
func (r *Reader) Words() ([]index.WordEntry, error) {
	rows, err := r.db.Query(`SELECT word_lower, word_lower_reversed, frequency_rank, word, hidden FROM words ORDER BY frequency_rank, word_lower`)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var out []index.WordEntry
	for rows.Next() {
		var e index.WordEntry
		if err := rows.Scan(&e.Lower, &e.Reversed, &e.Rank, &e.Display, &e.Hidden); err != nil {
			return nil, fmt.Errorf("failed to scan words: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Suffixes returns the words_by_suffix table in rank order.
func (r *Reader) Suffixes() ([]index.SuffixEntry, error) {
	rows, err := r.db.Query(`SELECT word_lower_reversed, frequency_rank, word, word_lower, hidden FROM words_by_suffix ORDER BY frequency_rank, word_lower_reversed`)
	if err != nil {
		return nil, fmt.Errorf("failed to query words_by_suffix: %w", err)
	}
	defer rows.Close()

	var out []index.SuffixEntry
	for rows.Next() {
		var e index.SuffixEntry
		if err := rows.Scan(&e.Reversed, &e.Rank, &e.Display, &e.Lower, &e.Hidden); err != nil {
			return nil, fmt.Errorf("failed to scan words_by_suffix: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prefixes returns the prefixes table ordered by prefix, then rank.
func (r *Reader) Prefixes() ([]index.PrefixEntry, error) {
	rows, err := r.db.Query(`SELECT prefix_lower, word, frequency_rank, hidden FROM prefixes ORDER BY prefix_lower, frequency_rank`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prefixes: %w", err)
	}
	defer rows.Close()

	var out []index.PrefixEntry
	for rows.Next() {
		var e index.PrefixEntry
		if err := rows.Scan(&e.Prefix, &e.Display, &e.Rank, &e.Hidden); err != nil {
			return nil, fmt.Errorf("failed to scan prefixes: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeletesByHash returns the delete rows stored under one hash, best rank
// first. Key is not stored in the artifact and stays empty.
func (r *Reader) DeletesByHash(hash int64) ([]index.DeleteEntry, error) {
	rows, err := r.db.Query(`SELECT delete_hash, word_lower, frequency_rank, word FROM symspell_deletes WHERE delete_hash = ? ORDER BY frequency_rank`, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query symspell_deletes: %w", err)
	}
	defer rows.Close()

	var out []index.DeleteEntry
	for rows.Next() {
		var e index.DeleteEntry
		if err := rows.Scan(&e.Hash, &e.Lower, &e.Rank, &e.Display); err != nil {
			return nil, fmt.Errorf("failed to scan symspell_deletes: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BKNodes returns every BK-tree node in ID order.
func (r *Reader) BKNodes() ([]index.BKNode, error) {
	rows, err := r.db.Query(`SELECT node_id, word, word_lower, frequency_rank, hidden FROM bk_nodes ORDER BY node_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bk_nodes: %w", err)
	}
	defer rows.Close()

	var out []index.BKNode
	for rows.Next() {
		var n index.BKNode
		if err := rows.Scan(&n.ID, &n.Display, &n.Lower, &n.Rank, &n.Hidden); err != nil {
			return nil, fmt.Errorf("failed to scan bk_nodes: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// BKEdges returns every BK-tree edge ordered by parent and distance.
func (r *Reader) BKEdges() ([]index.BKEdge, error) {
	rows, err := r.db.Query(`SELECT parent_id, child_id, distance FROM bk_edges ORDER BY parent_id, distance`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bk_edges: %w", err)
	}
	defer rows.Close()

	var out []index.BKEdge
	for rows.Next() {
		var e index.BKEdge
		if err := rows.Scan(&e.Parent, &e.Child, &e.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan bk_edges: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// KV returns the kv table as a map.
func (r *Reader) KV() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("failed to query kv: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan kv: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// TableCounts returns row counts for every artifact table that exists.
func (r *Reader) TableCounts() ([]TableCount, error) {
	var out []TableCount
	for _, table := range []string{TableWords, TableSuffixes, TablePrefixes, TableDeletes, TableBKNodes, TableBKEdges, TableKV} {
		ok, err := r.HasTable(table)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var n int64
		// table comes from the fixed list above.
		if err := r.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		out = append(out, TableCount{Table: table, Rows: n})
	}
	return out, nil
}
