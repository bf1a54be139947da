// Package lexicon reads the raw inputs of an index build: the legitimacy list,
// the hidden-word list and the ranked or frequency-counted word source.
package lexicon

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bastiangx/wordindex/internal/utils"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
)

const (
	maxLineSize   = 1024 * 1024
	byteOrderMark = "\ufeff"
)

// Entry is one usable line of the word source.
type Entry struct {
	Word      string // as written in the source, trimmed
	Lower     string
	Ordinal   int // 1-based line number
	Frequency int64
}

// Source is a loaded word source in file order.
type Source struct {
	Path    string
	Format  SourceFormat
	Entries []Entry
	Skipped []*LineError
}

// LoadWordSet reads one word per line into a lowercase set.
// Blank lines are ignored.
func LoadWordSet(path string) (mapset.Set[string], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	defer file.Close()

	set, err := ReadWordSet(file)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	log.Debugf("Loaded %d words from %s", set.Cardinality(), path)
	return set, nil
}

// ReadWordSet is LoadWordSet over an arbitrary reader.
func ReadWordSet(r io.Reader) (mapset.Set[string], error) {
	set := mapset.NewThreadUnsafeSet[string]()
	scanner := newLineScanner(r)
	for scanner.Scan() {
		word := utils.NormalizeWord(strings.TrimPrefix(scanner.Text(), byteOrderMark))
		if word != "" {
			set.Add(word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadOptionalWordSet is LoadWordSet, except that an empty path yields an
// empty set. A named file that cannot be read is still an error.
func LoadOptionalWordSet(path string) (mapset.Set[string], error) {
	if path == "" {
		return mapset.NewThreadUnsafeSet[string](), nil
	}
	return LoadWordSet(path)
}

// LoadSource reads the ranked word source. FormatAuto detects the format first.
func LoadSource(path string, format SourceFormat) (*Source, error) {
	if format == FormatAuto {
		detected, err := DetectSourceFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	defer file.Close()

	src, err := ReadSource(file, format)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	src.Path = path

	if len(src.Skipped) > 0 {
		log.Warnf("Skipped %d malformed lines in %s", len(src.Skipped), path)
	}
	log.Debugf("Loaded %d source entries from %s (%s)", len(src.Entries), path, format)
	return src, nil
}

// ReadSource parses a source stream in the given format.
// FormatAuto is not accepted here; the caller must have resolved it.
func ReadSource(r io.Reader, format SourceFormat) (*Source, error) {
	src := &Source{Format: format}
	scanner := newLineScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, byteOrderMark)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry Entry
		var lineErr *LineError
		switch format {
		case FormatFrequency:
			entry, lineErr = parseFrequencyLine(line, lineNo)
		default:
			entry = Entry{Word: strings.TrimSpace(line)}
		}
		if lineErr != nil {
			log.Debug("skipping source line", "err", lineErr)
			src.Skipped = append(src.Skipped, lineErr)
			continue
		}

		entry.Ordinal = lineNo
		entry.Lower = strings.ToLower(entry.Word)
		src.Entries = append(src.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return src, nil
}

func parseFrequencyLine(line string, lineNo int) (Entry, *LineError) {
	word, count, found := strings.Cut(line, "\t")
	if !found {
		return Entry{}, &LineError{Line: lineNo, Text: line, Reason: "no tab separator"}
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return Entry{}, &LineError{Line: lineNo, Text: line, Reason: "empty word"}
	}
	freq, err := strconv.ParseInt(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return Entry{}, &LineError{Line: lineNo, Text: line, Reason: "frequency is not an integer"}
	}
	return Entry{Word: word, Frequency: freq}, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}
