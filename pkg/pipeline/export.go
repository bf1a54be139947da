package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/index"
	"github.com/bastiangx/wordindex/pkg/rank"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the msgpack form of a ranked vocabulary.
type Snapshot struct {
	Version  int            `msgpack:"v"`
	Strategy string         `msgpack:"f"`
	Words    []SnapshotWord `msgpack:"w"`
}

// SnapshotWord is one ranked entry. Rank is implied by position + 1.
type SnapshotWord struct {
	Word   string `msgpack:"w"`
	Hidden bool   `msgpack:"h,omitempty"`
}

// NewSnapshot captures words in rank order.
func NewSnapshot(words []rank.Word, strategy index.Strategy) *Snapshot {
	snap := &Snapshot{
		Version:  SnapshotVersion,
		Strategy: string(strategy),
		Words:    make([]SnapshotWord, len(words)),
	}
	for i, w := range words {
		snap.Words[i] = SnapshotWord{Word: w.Display, Hidden: w.Hidden}
	}
	return snap
}

// Ranked turns the snapshot back into ranked words.
func (s *Snapshot) Ranked() []rank.Word {
	words := make([]rank.Word, len(s.Words))
	for i, w := range s.Words {
		words[i] = rank.Word{
			Lower:   utils.NormalizeWord(w.Word),
			Display: w.Word,
			Rank:    i + 1,
			Hidden:  w.Hidden,
		}
	}
	return words
}

// WriteSnapshot encodes snap to w.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot and rejects unknown versions.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return &snap, nil
}

// LoadSnapshot reads the snapshot file at path.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// WriteWordList writes one display word per line in rank order.
func WriteWordList(w io.Writer, words []rank.Word) error {
	for _, word := range words {
		if _, err := io.WriteString(w, word.Display+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// export writes the optional side outputs after the artifact is committed.
func (p *Pipeline) export(t *tables) error {
	if path := p.cfg.Output.WordList; path != "" {
		err := utils.WriteFileAtomic(path, func(w io.Writer) error {
			return WriteWordList(w, t.words)
		})
		if err != nil {
			return fmt.Errorf("failed to write word list: %w", err)
		}
		p.log.Debug("Word list written", "path", path, "words", len(t.words))
	}
	if path := p.cfg.Output.Snapshot; path != "" {
		snap := NewSnapshot(t.words, t.fuzzy.Strategy())
		err := utils.WriteFileAtomic(path, func(w io.Writer) error {
			return WriteSnapshot(w, snap)
		})
		if err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		p.log.Debug("Snapshot written", "path", path)
	}
	return nil
}
