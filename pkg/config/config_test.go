package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FuzzySymSpell, cfg.Index.Fuzzy)
	assert.Equal(t, 20, cfg.Index.PrefixCap)
	assert.Equal(t, 2, cfg.Index.MaxEditDistance)
	assert.Equal(t, 5000, cfg.Store.BatchSize)
	assert.Equal(t, FormatAuto, cfg.Inputs.SourceFormat)
}

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "wordindex.toml", `
[inputs]
legitimate = "lists/legit.txt"
source = "/abs/source.txt"

[index]
fuzzy = "bktree"
prefix_cap = 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lists/legit.txt"), cfg.Inputs.Legitimate)
	assert.Equal(t, "/abs/source.txt", cfg.Inputs.Source)
	assert.Equal(t, FuzzyBKTree, cfg.Index.Fuzzy)
	assert.Equal(t, 5, cfg.Index.PrefixCap)
	// untouched keys keep their defaults
	assert.Equal(t, 2, cfg.Index.MaxEditDistance)
	assert.Equal(t, filepath.Join(dir, "Keyboard/words.db"), cfg.Output.Database)
	assert.Empty(t, cfg.Output.Snapshot)
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "wordindex.yaml", `
inputs:
  source_format: frequency
output:
  database: out/words.db
  snapshot: out/words.msgpack
index:
  max_edit_distance: 1
store:
  batch_size: 100
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, FormatFrequency, cfg.Inputs.SourceFormat)
	assert.Equal(t, filepath.Join(dir, "out/words.db"), cfg.Output.Database)
	assert.Equal(t, filepath.Join(dir, "out/words.msgpack"), cfg.Output.Snapshot)
	assert.Equal(t, 1, cfg.Index.MaxEditDistance)
	assert.Equal(t, 100, cfg.Store.BatchSize)
}

func TestLoadConfigRecoversPartialTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.toml", `
[index]
fuzzy = "bktree"
prefix_cap = "twenty"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, FuzzyBKTree, cfg.Index.Fuzzy)
	assert.Equal(t, 20, cfg.Index.PrefixCap)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "wordindex.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(dir, "conf", "corpus/legitimate_words.txt"), cfg.Inputs.Legitimate)

	again, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing legitimate", func(c *Config) { c.Inputs.Legitimate = "" }},
		{"missing source", func(c *Config) { c.Inputs.Source = "" }},
		{"bad format", func(c *Config) { c.Inputs.SourceFormat = "csv" }},
		{"missing database", func(c *Config) { c.Output.Database = "" }},
		{"bad fuzzy", func(c *Config) { c.Index.Fuzzy = "trigram" }},
		{"zero cap", func(c *Config) { c.Index.PrefixCap = 0 }},
		{"negative edits", func(c *Config) { c.Index.MaxEditDistance = -1 }},
		{"negative workers", func(c *Config) { c.Index.Workers = -2 }},
		{"zero batch", func(c *Config) { c.Store.BatchSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
