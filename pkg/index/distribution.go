package index

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/bastiangx/wordindex/pkg/lexicon"
	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
)

// Keys of the distribution rows in the kv table.
const (
	InitialDistributionKey = "initial_distribution"
	GeneralDistributionKey = "general_distribution"
)

// Distribution holds letter histograms of a reference text, indexed a..z.
// Initial counts the first surviving letter of each token, General every
// surviving letter. Tokens is the number of tokens with at least one letter.
type Distribution struct {
	Initial [26]int64
	General [26]int64
	Tokens  int64
}

// InitialCSV renders Initial as comma-joined decimals.
func (d *Distribution) InitialCSV() string {
	return joinCounts(d.Initial)
}

// GeneralCSV renders General as comma-joined decimals.
func (d *Distribution) GeneralCSV() string {
	return joinCounts(d.General)
}

func joinCounts(counts [26]int64) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return strings.Join(parts, ",")
}

// ParseCounts reads a 26-element comma-joined histogram back.
func ParseCounts(s string) ([26]int64, error) {
	var counts [26]int64
	parts := strings.Split(s, ",")
	if len(parts) != len(counts) {
		return counts, errors.New("distribution must have 26 comma-separated counts")
	}
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return counts, err
		}
		counts[i] = n
	}
	return counts, nil
}

// tokenizer folds runes into a Distribution. Tokens are runs of non-space
// runes; inside a token only a-z survive after lowercasing.
type tokenizer struct {
	dist      *Distribution
	hasLetter bool
}

func (t *tokenizer) feed(r rune) {
	if unicode.IsSpace(r) {
		t.hasLetter = false
		return
	}
	idx := utils.LetterIndex(unicode.ToLower(r))
	if idx < 0 {
		return
	}
	if !t.hasLetter {
		t.hasLetter = true
		t.dist.Initial[idx]++
		t.dist.Tokens++
	}
	t.dist.General[idx]++
}

// CountBytes builds a Distribution from UTF-8 text held in memory.
func CountBytes(data []byte) Distribution {
	var dist Distribution
	tok := tokenizer{dist: &dist}
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		tok.feed(r)
		data = data[size:]
	}
	return dist
}

// ScanDistribution builds a Distribution from a stream.
func ScanDistribution(r io.Reader) (Distribution, error) {
	var dist Distribution
	tok := tokenizer{dist: &dist}
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		c, _, err := br.ReadRune()
		if err == io.EOF {
			return dist, nil
		}
		if err != nil {
			return dist, err
		}
		tok.feed(c)
	}
}

// LoadDistribution memory-maps the corpus at path and counts it. An empty
// path gives an all-zero distribution; a named file that cannot be read is
// lexicon.ErrMissingInputFile.
func LoadDistribution(path string) (Distribution, error) {
	if path == "" {
		log.Debug("No auxiliary corpus configured, letter distributions stay zero")
		return Distribution{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Distribution{}, &lexicon.InputError{Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Distribution{}, &lexicon.InputError{Path: path, Err: err}
	}
	if info.Size() == 0 {
		return Distribution{}, nil
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		// Some filesystems refuse mappings; stream instead.
		log.Debugf("mmap of %s failed (%v), streaming instead", path, err)
		dist, serr := ScanDistribution(file)
		if serr != nil {
			return Distribution{}, &lexicon.InputError{Path: path, Err: serr}
		}
		return dist, nil
	}
	defer mapped.Unmap()

	dist := CountBytes(mapped)
	log.Debugf("Letter distribution from %s: %d tokens", path, dist.Tokens)
	return dist, nil
}
