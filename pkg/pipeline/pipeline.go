// Package pipeline runs a complete index build: load the inputs, rank the
// vocabulary, derive every lookup table and commit them as one artifact.
//
// The letter-distribution scan starts right away since it only reads the
// auxiliary corpus. The table builders start once ranking is done and share
// the ranked slice read-only. Nothing is written before every builder
// succeeded, so a failed build leaves the previous artifact in place.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bastiangx/wordindex/internal/logger"
	"github.com/bastiangx/wordindex/pkg/config"
	"github.com/bastiangx/wordindex/pkg/index"
	"github.com/bastiangx/wordindex/pkg/lexicon"
	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/bastiangx/wordindex/pkg/store"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
)

// Result describes a finished build.
type Result struct {
	Database     string
	Strategy     index.Strategy
	Format       lexicon.SourceFormat
	Ranking      rank.Stats
	Malformed    int
	Rows         map[string]int
	Distribution index.Distribution
	Elapsed      time.Duration
}

// tables holds everything the builders produce.
type tables struct {
	words    []rank.Word
	exact    []index.WordEntry
	suffixes []index.SuffixEntry
	prefixes []index.PrefixEntry
	fuzzy    index.FuzzyIndex
	dist     index.Distribution
}

// Pipeline builds one artifact from one configuration.
type Pipeline struct {
	cfg *config.Config
	log *log.Logger
}

// New returns a pipeline for cfg. The config is validated by Run.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, log: logger.New("pipeline")}
}

// Run builds with cfg using a fresh Pipeline.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	return New(cfg).Run(ctx)
}

// Run executes the build and returns what was written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	format, err := lexicon.ParseFormat(p.cfg.Inputs.SourceFormat)
	if err != nil {
		return nil, err
	}
	strategy, err := index.ParseStrategy(p.cfg.Index.Fuzzy)
	if err != nil {
		return nil, err
	}

	res := &Result{Database: p.cfg.Output.Database, Strategy: strategy}
	t, err := p.build(ctx, format, strategy, res)
	if err != nil {
		return nil, err
	}
	if err := p.write(ctx, t, res); err != nil {
		return nil, err
	}
	if err := p.export(t); err != nil {
		return nil, err
	}

	res.Distribution = t.dist
	res.Elapsed = time.Since(start)
	p.log.Info("Build complete", "words", len(t.words), "strategy", strategy, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// build loads the inputs and runs every builder.
func (p *Pipeline) build(ctx context.Context, format lexicon.SourceFormat, strategy index.Strategy, res *Result) (*tables, error) {
	t := &tables{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dist, err := index.LoadDistribution(p.cfg.Inputs.Corpus)
		if err != nil {
			return err
		}
		t.dist = dist
		return nil
	})

	g.Go(func() error {
		src, legit, hidden, err := p.load(format)
		if err != nil {
			return err
		}
		res.Format = src.Format
		res.Malformed = len(src.Skipped)

		words, stats, err := rank.Rank(src, legit, hidden)
		res.Ranking = stats
		if err != nil {
			return err
		}
		t.words = words
		p.log.Info("Ranked vocabulary", "words", stats.Retained, "hidden", stats.Hidden, "rejected", stats.Rejected)

		if err := gctx.Err(); err != nil {
			return err
		}
		fuzzy, err := index.NewFuzzyIndex(strategy, index.FuzzyOptions{
			MaxEdits: p.cfg.Index.MaxEditDistance,
			Workers:  p.cfg.Index.Workers,
		})
		if err != nil {
			return err
		}
		t.fuzzy = fuzzy

		g.Go(func() error {
			t.exact = index.BuildWords(words)
			t.suffixes = index.BuildSuffixes(words)
			return nil
		})
		g.Go(func() error {
			t.prefixes = index.NewPrefixBuilder(p.cfg.Index.PrefixCap).Build(words)
			return nil
		})
		g.Go(func() error {
			return fuzzy.Build(gctx, words)
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// load reads every required input before anything is built.
func (p *Pipeline) load(format lexicon.SourceFormat) (*lexicon.Source, mapset.Set[string], mapset.Set[string], error) {
	legit, err := lexicon.LoadWordSet(p.cfg.Inputs.Legitimate)
	if err != nil {
		return nil, nil, nil, err
	}
	hidden, err := lexicon.LoadOptionalWordSet(p.cfg.Inputs.Hidden)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := lexicon.LoadSource(p.cfg.Inputs.Source, format)
	if err != nil {
		return nil, nil, nil, err
	}
	p.log.Debug("Inputs loaded", "legitimate", legit.Cardinality(), "hidden", hidden.Cardinality(), "source", len(src.Entries), "format", src.Format)
	return src, legit, hidden, nil
}

// write commits every table into the artifact.
func (p *Pipeline) write(ctx context.Context, t *tables, res *Result) error {
	w, err := store.Create(p.cfg.Output.Database, p.cfg.Store.BatchSize)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			w.Abort()
		}
	}()

	steps := []func() error{
		func() error { return w.CreateSchema(t.fuzzy.Strategy()) },
		func() error { return w.WriteWords(t.exact) },
		func() error { return w.WriteSuffixes(t.suffixes) },
		func() error { return w.WritePrefixes(t.prefixes) },
		func() error { return w.WriteFuzzy(t.fuzzy) },
		func() error { return w.WriteKV(p.kvRows(t)) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}

	res.Rows = w.Rows()
	committed = true
	if err := w.Commit(); err != nil {
		return err
	}
	p.log.Debug("Artifact written", "path", p.cfg.Output.Database)
	return nil
}

func (p *Pipeline) kvRows(t *tables) []store.KV {
	maxEdits := p.cfg.Index.MaxEditDistance
	if dd, ok := t.fuzzy.(*index.DeleteDictionary); ok {
		maxEdits = dd.MaxEdits
	}
	return []store.KV{
		{Key: index.InitialDistributionKey, Value: t.dist.InitialCSV()},
		{Key: index.GeneralDistributionKey, Value: t.dist.GeneralCSV()},
		{Key: store.MetaFuzzyStrategy, Value: string(t.fuzzy.Strategy())},
		{Key: store.MetaMaxEditDistance, Value: strconv.Itoa(maxEdits)},
		{Key: store.MetaPrefixCap, Value: strconv.Itoa(p.cfg.Index.PrefixCap)},
		{Key: store.MetaWordCount, Value: strconv.Itoa(len(t.words))},
	}
}
