/*
Package config manages the TOML (or YAML) build configuration for wordindex.

Every path and tunable the pipeline needs is spelled out here instead of being
baked into the build:

	[inputs]
	legitimate = "corpus/legitimate_words.txt"
	hidden = "corpus/hidden_words.txt"
	source = "corpus/word_frequencies.txt"
	source_format = "auto"
	corpus = "corpus/big.txt"

	[output]
	database = "Keyboard/words.db"
	word_list = "corpus/words.txt"

	[index]
	fuzzy = "symspell"
	prefix_cap = 20
	max_edit_distance = 2

Relative paths are resolved against the directory holding the config file.
*/
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/charmbracelet/log"
)

// Source formats accepted in inputs.source_format.
const (
	FormatAuto      = "auto"
	FormatOrdinal   = "ordinal"
	FormatFrequency = "frequency"
)

// Fuzzy strategies accepted in index.fuzzy.
const (
	FuzzySymSpell = "symspell"
	FuzzyBKTree   = "bktree"
)

// Config holds the entire config structure
type Config struct {
	Inputs InputsConfig `toml:"inputs" yaml:"inputs"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Index  IndexConfig  `toml:"index" yaml:"index"`
	Store  StoreConfig  `toml:"store" yaml:"store"`
}

// InputsConfig lists the source files of a build.
type InputsConfig struct {
	Legitimate   string `toml:"legitimate" yaml:"legitimate"`
	Hidden       string `toml:"hidden" yaml:"hidden"`
	Source       string `toml:"source" yaml:"source"`
	SourceFormat string `toml:"source_format" yaml:"source_format"`
	Corpus       string `toml:"corpus" yaml:"corpus"`
}

// OutputConfig lists the artifacts a build produces.
// WordList and Snapshot are optional and skipped when empty.
type OutputConfig struct {
	Database string `toml:"database" yaml:"database"`
	WordList string `toml:"word_list" yaml:"word_list"`
	Snapshot string `toml:"snapshot" yaml:"snapshot"`
}

// IndexConfig holds the index builder tunables.
type IndexConfig struct {
	Fuzzy           string `toml:"fuzzy" yaml:"fuzzy"`
	PrefixCap       int    `toml:"prefix_cap" yaml:"prefix_cap"`
	MaxEditDistance int    `toml:"max_edit_distance" yaml:"max_edit_distance"`
	Workers         int    `toml:"workers" yaml:"workers"`
}

// StoreConfig holds writer options.
type StoreConfig struct {
	BatchSize int `toml:"batch_size" yaml:"batch_size"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Inputs: InputsConfig{
			Legitimate:   "corpus/legitimate_words.txt",
			Hidden:       "corpus/hidden_words.txt",
			Source:       "corpus/word_frequencies.txt",
			SourceFormat: FormatAuto,
			Corpus:       "corpus/big.txt",
		},
		Output: OutputConfig{
			Database: "Keyboard/words.db",
			WordList: "corpus/words.txt",
		},
		Index: IndexConfig{
			Fuzzy:           FuzzySymSpell,
			PrefixCap:       20,
			MaxEditDistance: 2,
			Workers:         0,
		},
		Store: StoreConfig{
			BatchSize: 5000,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config at %s: %w", configPath, err)
		}
		log.Debugf("Created default config file at: %s", configPath)
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads a config file on top of the defaults.
// .yaml and .yml files are decoded as YAML, everything else as TOML.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := utils.LoadYAMLFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
	default:
		if err := utils.LoadTOMLFile(configPath, config); err != nil {
			recovered, perr := tryPartialParse(configPath)
			if perr != nil {
				return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
			}
			config = recovered
		}
	}

	config.resolvePaths(filepath.Dir(configPath))
	return config, nil
}

// tryPartialParse keeps whichever sections of a broken TOML file still decode.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		return nil, err
	}

	if section, ok := utils.ExtractSection(tempConfig, "inputs"); ok {
		extractInputsConfig(section, &config.Inputs)
	}
	if section, ok := utils.ExtractSection(tempConfig, "output"); ok {
		extractOutputConfig(section, &config.Output)
	}
	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "store"); ok {
		if val, ok := utils.ExtractInt64(section, "batch_size"); ok {
			config.Store.BatchSize = val
		}
	}
	return config, nil
}

func extractInputsConfig(data map[string]any, in *InputsConfig) {
	if val, ok := utils.ExtractString(data, "legitimate"); ok {
		in.Legitimate = val
	}
	if val, ok := utils.ExtractString(data, "hidden"); ok {
		in.Hidden = val
	}
	if val, ok := utils.ExtractString(data, "source"); ok {
		in.Source = val
	}
	if val, ok := utils.ExtractString(data, "source_format"); ok {
		in.SourceFormat = val
	}
	if val, ok := utils.ExtractString(data, "corpus"); ok {
		in.Corpus = val
	}
}

func extractOutputConfig(data map[string]any, out *OutputConfig) {
	if val, ok := utils.ExtractString(data, "database"); ok {
		out.Database = val
	}
	if val, ok := utils.ExtractString(data, "word_list"); ok {
		out.WordList = val
	}
	if val, ok := utils.ExtractString(data, "snapshot"); ok {
		out.Snapshot = val
	}
}

func extractIndexConfig(data map[string]any, idx *IndexConfig) {
	if val, ok := utils.ExtractString(data, "fuzzy"); ok {
		idx.Fuzzy = val
	}
	if val, ok := utils.ExtractInt64(data, "prefix_cap"); ok {
		idx.PrefixCap = val
	}
	if val, ok := utils.ExtractInt64(data, "max_edit_distance"); ok {
		idx.MaxEditDistance = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		idx.Workers = val
	}
}

func (c *Config) resolvePaths(baseDir string) {
	c.Inputs.Legitimate = utils.ResolveRelative(baseDir, c.Inputs.Legitimate)
	c.Inputs.Hidden = utils.ResolveRelative(baseDir, c.Inputs.Hidden)
	c.Inputs.Source = utils.ResolveRelative(baseDir, c.Inputs.Source)
	c.Inputs.Corpus = utils.ResolveRelative(baseDir, c.Inputs.Corpus)
	c.Output.Database = utils.ResolveRelative(baseDir, c.Output.Database)
	c.Output.WordList = utils.ResolveRelative(baseDir, c.Output.WordList)
	c.Output.Snapshot = utils.ResolveRelative(baseDir, c.Output.Snapshot)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Inputs.Legitimate == "" {
		return fmt.Errorf("inputs.legitimate is required")
	}
	if c.Inputs.Source == "" {
		return fmt.Errorf("inputs.source is required")
	}
	switch c.Inputs.SourceFormat {
	case FormatAuto, FormatOrdinal, FormatFrequency:
	default:
		return fmt.Errorf("inputs.source_format must be one of auto, ordinal, frequency (got %q)", c.Inputs.SourceFormat)
	}
	if c.Output.Database == "" {
		return fmt.Errorf("output.database is required")
	}
	switch c.Index.Fuzzy {
	case FuzzySymSpell, FuzzyBKTree:
	default:
		return fmt.Errorf("index.fuzzy must be symspell or bktree (got %q)", c.Index.Fuzzy)
	}
	if c.Index.PrefixCap < 1 {
		return fmt.Errorf("index.prefix_cap must be at least 1 (got %d)", c.Index.PrefixCap)
	}
	if c.Index.MaxEditDistance < 0 {
		return fmt.Errorf("index.max_edit_distance must not be negative (got %d)", c.Index.MaxEditDistance)
	}
	if c.Index.Workers < 0 {
		return fmt.Errorf("index.workers must not be negative (got %d)", c.Index.Workers)
	}
	if c.Store.BatchSize < 1 {
		return fmt.Errorf("store.batch_size must be at least 1 (got %d)", c.Store.BatchSize)
	}
	return nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	return utils.GetAbsolutePath(configPath)
}
