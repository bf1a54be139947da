package store

import "github.com/bastiangx/wordindex/pkg/index"

// Table names of the artifact.
const (
	TableWords    = "words"
	TableSuffixes = "words_by_suffix"
	TablePrefixes = "prefixes"
	TableDeletes  = "symspell_deletes"
	TableBKNodes  = "bk_nodes"
	TableBKEdges  = "bk_edges"
	TableKV       = "kv"
)

// Metadata keys written to kv next to the letter distributions.
const (
	MetaFuzzyStrategy   = "fuzzy_strategy"
	MetaMaxEditDistance = "max_edit_distance"
	MetaPrefixCap       = "prefix_cap"
	MetaWordCount       = "word_count"
)

var baseSchema = []string{
	`CREATE TABLE words (
		word_lower TEXT NOT NULL,
		word_lower_reversed TEXT NOT NULL,
		frequency_rank INTEGER NOT NULL,
		word TEXT NOT NULL,
		hidden INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (word_lower, frequency_rank)
	) WITHOUT ROWID`,
	`CREATE TABLE words_by_suffix (
		word_lower_reversed TEXT NOT NULL,
		frequency_rank INTEGER NOT NULL,
		word TEXT NOT NULL,
		word_lower TEXT NOT NULL,
		hidden INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (word_lower_reversed, frequency_rank)
	) WITHOUT ROWID`,
	`CREATE TABLE prefixes (
		prefix_lower TEXT NOT NULL,
		word TEXT NOT NULL,
		frequency_rank INTEGER NOT NULL,
		hidden INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (prefix_lower, frequency_rank)
	) WITHOUT ROWID`,
	`CREATE TABLE kv (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	) WITHOUT ROWID`,
}

var symSpellSchema = []string{
	`CREATE TABLE symspell_deletes (
		delete_hash INTEGER NOT NULL,
		word_lower TEXT NOT NULL,
		frequency_rank INTEGER NOT NULL,
		word TEXT NOT NULL,
		PRIMARY KEY (delete_hash, word_lower)
	) WITHOUT ROWID`,
}

var bkTreeSchema = []string{
	`CREATE TABLE bk_nodes (
		node_id INTEGER NOT NULL PRIMARY KEY,
		word TEXT NOT NULL,
		word_lower TEXT NOT NULL,
		frequency_rank INTEGER NOT NULL,
		hidden INTEGER NOT NULL DEFAULT 0
	) WITHOUT ROWID`,
	`CREATE TABLE bk_edges (
		parent_id INTEGER NOT NULL,
		child_id INTEGER NOT NULL,
		distance INTEGER NOT NULL,
		PRIMARY KEY (parent_id, child_id)
	) WITHOUT ROWID`,
}

// Secondary indexes are created after the bulk load.
var symSpellIndexes = []string{
	`CREATE INDEX idx_symspell_covering ON symspell_deletes (delete_hash, frequency_rank, word)`,
}

var bkTreeIndexes = []string{
	`CREATE INDEX idx_bk_edges_parent_distance ON bk_edges (parent_id, distance)`,
}

func schemaFor(strategy index.Strategy) []string {
	stmts := append([]string{}, baseSchema...)
	switch strategy {
	case index.StrategySymSpell:
		stmts = append(stmts, symSpellSchema...)
	case index.StrategyBKTree:
		stmts = append(stmts, bkTreeSchema...)
	}
	return stmts
}

func indexesFor(strategy index.Strategy) []string {
	switch strategy {
	case index.StrategySymSpell:
		return symSpellIndexes
	case index.StrategyBKTree:
		return bkTreeIndexes
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
