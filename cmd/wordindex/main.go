// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordindex command, which builds the static lexical
index used by the keyboard's autocomplete and autocorrect engine.

A build reads a legitimacy list, an optional hidden list and a ranked or
frequency-annotated word source, keeps the words that are legitimate or
hidden, ranks them and writes one SQLite artifact holding the exact, suffix,
prefix and fuzzy lookup tables plus the letter distributions of an auxiliary
text corpus.

# Usage

Build with the config file in the working directory (wordindex.toml):

	wordindex build

Build with an explicit config and a BK-tree instead of the delete dictionary:

	wordindex build --config corpus/wordindex.toml --fuzzy bktree -d

Check a shipped artifact and print its table sizes:

	wordindex verify Keyboard/words.db
	wordindex stats Keyboard/words.db

# Configuration

Paths and tunables come from a TOML (or YAML) file. Write the defaults with:

	wordindex config init wordindex.toml

	[inputs]
	legitimate = "corpus/legitimate_words.txt"
	hidden = "corpus/hidden_words.txt"
	source = "corpus/word_frequencies.txt"
	source_format = "auto"
	corpus = "corpus/big.txt"

	[index]
	fuzzy = "symspell"
	prefix_cap = 20
	max_edit_distance = 2

Flags given to build override the file.

# Source formats

The source is either one word per line, best first, or word<TAB>count lines.
With source_format = "auto" the first non-blank line decides: a TAB selects
the frequency format. Frequency lines that do not parse are skipped with a
warning.

# Artifact

The database is built next to the target under a temporary name and renamed
over it once every table committed. An interrupted or failed build leaves the
previous artifact untouched. Exactly one fuzzy layout is stored, named by the
fuzzy_strategy row of the kv table:

	symspell  symspell_deletes(delete_hash, word_lower, frequency_rank, word)
	bktree    bk_nodes(node_id, ...) and bk_edges(parent_id, child_id, distance)
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
	AppName = "wordindex"
	gh      = "https://github.com/bastiangx/wordindex"
)

var (
	cfgFile   string
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:           AppName,
	Short:         "Builds the keyboard's lexical index",
	Long:          `wordindex filters and ranks a word source, then writes the exact, suffix, prefix and fuzzy lookup tables of the keyboard into one SQLite artifact.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			log.SetLevel(log.DebugLevel)
			log.SetReportTimestamp(true)
		} else {
			log.SetLevel(log.InfoLevel)
			log.SetReportTimestamp(false)
		}
	},
}

// errChecksFailed makes verify exit non-zero without a second log line.
var errChecksFailed = errors.New("artifact checks failed")

// sigHandler cancels the returned context on SIGINT or SIGTERM so that a
// running build can discard its temporary artifact before exiting.
func sigHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			fmt.Fprintf(os.Stderr, "\nInterrupted, discarding partial build...\n")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./wordindex.toml when present)")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug mode")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// main only wires signals to the command tree and turns errors into exit codes.
func main() {
	ctx, cancel := sigHandler()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errChecksFailed) {
			log.Error("wordindex failed", "err", err)
		}
		cancel()
		os.Exit(1)
	}
}
