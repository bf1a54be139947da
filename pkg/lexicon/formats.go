package lexicon

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SourceFormat selects how the ranked word source is read and ranked.
type SourceFormat int

const (
	FormatAuto      SourceFormat = iota // detect from the first non-blank line
	FormatOrdinal                       // one word per line, best first
	FormatFrequency                     // word<TAB>count per line
)

// FormatInfo contains metadata about a source format
type FormatInfo struct {
	Format      SourceFormat
	Name        string
	Description string
}

var supportedFormats = map[SourceFormat]FormatInfo{
	FormatAuto: {
		Format:      FormatAuto,
		Name:        "auto",
		Description: "Detect from content",
	},
	FormatOrdinal: {
		Format:      FormatOrdinal,
		Name:        "ordinal",
		Description: "Frequency-sorted word list, ranked by line position",
	},
	FormatFrequency: {
		Format:      FormatFrequency,
		Name:        "frequency",
		Description: "Tab-separated word and frequency count, ranked by count",
	},
}

func (f SourceFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Name
	}
	return fmt.Sprintf("SourceFormat(%d)", int(f))
}

// ParseFormat maps a config name (auto, ordinal, frequency) to a SourceFormat.
func ParseFormat(name string) (SourceFormat, error) {
	for format, info := range supportedFormats {
		if strings.EqualFold(info.Name, strings.TrimSpace(name)) {
			return format, nil
		}
	}
	return FormatAuto, fmt.Errorf("unknown source format %q", name)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format SourceFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// DetectSourceFormat peeks at the first non-blank line of a source file.
// A TAB on that line selects FormatFrequency, anything else FormatOrdinal.
func DetectSourceFormat(path string) (SourceFormat, error) {
	file, err := os.Open(path)
	if err != nil {
		return FormatAuto, &InputError{Path: path, Err: err}
	}
	defer file.Close()

	scanner := newLineScanner(file)
	for scanner.Scan() {
		line := strings.TrimPrefix(scanner.Text(), byteOrderMark)
		if strings.TrimSpace(line) == "" {
			continue
		}
		format := detectLine(line)
		log.Debugf("Source %s detected as %s", path, format)
		return format, nil
	}
	if err := scanner.Err(); err != nil {
		return FormatAuto, &InputError{Path: path, Err: err}
	}
	// Empty file: either reading yields nothing.
	return FormatOrdinal, nil
}

func detectLine(line string) SourceFormat {
	if strings.Contains(line, "\t") {
		return FormatFrequency
	}
	return FormatOrdinal
}
