package main

import (
	"fmt"
	"os"
	"time"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/config"
	"github.com/bastiangx/wordindex/pkg/pipeline"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// defaultConfigFile is picked up from the working directory when --config is not given.
const defaultConfigFile = "wordindex.toml"

// buildFlags mirror the config keys they override.
var buildFlags struct {
	legit     string
	hidden    string
	source    string
	format    string
	corpus    string
	out       string
	wordsOut  string
	snapshot  string
	fuzzy     string
	prefixCap int
	maxEdits  int
	workers   int
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the index artifact",
	Long:  "Loads the inputs, ranks the vocabulary, builds every lookup table and atomically replaces the artifact.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyBuildFlags(cmd, cfg)
		log.Debug("Build config",
			"source", cfg.Inputs.Source,
			"format", cfg.Inputs.SourceFormat,
			"database", cfg.Output.Database,
			"fuzzy", cfg.Index.Fuzzy)

		res, err := pipeline.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		printSummary(res)
		return nil
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildFlags.legit, "legit", "", "legitimacy word list")
	f.StringVar(&buildFlags.hidden, "hidden", "", "hidden word list")
	f.StringVar(&buildFlags.source, "source", "", "ranked or frequency word source")
	f.StringVar(&buildFlags.format, "format", "", "source format: auto, ordinal or frequency")
	f.StringVar(&buildFlags.corpus, "corpus", "", "auxiliary text corpus for letter distributions")
	f.StringVar(&buildFlags.out, "out", "", "artifact path")
	f.StringVar(&buildFlags.wordsOut, "words-out", "", "ranked word list output")
	f.StringVar(&buildFlags.snapshot, "snapshot", "", "msgpack snapshot output")
	f.StringVar(&buildFlags.fuzzy, "fuzzy", "", "fuzzy index: symspell or bktree")
	f.IntVar(&buildFlags.prefixCap, "prefix-cap", 0, "visible completions kept per prefix")
	f.IntVar(&buildFlags.maxEdits, "max-edits", 0, "delete budget of the symspell index")
	f.IntVar(&buildFlags.workers, "workers", 0, "delete generation workers (0 for all CPUs)")
}

// loadConfig reads --config, else ./wordindex.toml, else the defaults.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" && utils.FileExists(defaultConfigFile) {
		path = defaultConfigFile
	}
	if path == "" {
		log.Debug("No config file, using defaults")
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(path))
	return cfg, nil
}

func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("legit") {
		cfg.Inputs.Legitimate = buildFlags.legit
	}
	if changed("hidden") {
		cfg.Inputs.Hidden = buildFlags.hidden
	}
	if changed("source") {
		cfg.Inputs.Source = buildFlags.source
	}
	if changed("format") {
		cfg.Inputs.SourceFormat = buildFlags.format
	}
	if changed("corpus") {
		cfg.Inputs.Corpus = buildFlags.corpus
	}
	if changed("out") {
		cfg.Output.Database = buildFlags.out
	}
	if changed("words-out") {
		cfg.Output.WordList = buildFlags.wordsOut
	}
	if changed("snapshot") {
		cfg.Output.Snapshot = buildFlags.snapshot
	}
	if changed("fuzzy") {
		cfg.Index.Fuzzy = buildFlags.fuzzy
	}
	if changed("prefix-cap") {
		cfg.Index.PrefixCap = buildFlags.prefixCap
	}
	if changed("max-edits") {
		cfg.Index.MaxEditDistance = buildFlags.maxEdits
	}
	if changed("workers") {
		cfg.Index.Workers = buildFlags.workers
	}
}

// printSummary writes a short styled report to stdout.
func printSummary(res *pipeline.Result) {
	title := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	key := lipgloss.NewStyle().Faint(true)

	fmt.Fprintln(os.Stdout, title.Render("wordindex build"))
	line := func(k string, v any) {
		fmt.Fprintf(os.Stdout, "  %s %v\n", key.Render(fmt.Sprintf("%-12s", k)), v)
	}
	line("artifact", res.Database)
	line("format", res.Format)
	line("fuzzy", res.Strategy)
	line("words", res.Ranking.Retained)
	line("hidden", res.Ranking.Hidden)
	line("rejected", res.Ranking.Rejected)
	line("duplicates", res.Ranking.Duplicates)
	line("malformed", res.Malformed)
	line("tokens", res.Distribution.Tokens)
	line("elapsed", res.Elapsed.Round(time.Millisecond))
}
