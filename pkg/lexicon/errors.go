package lexicon

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInputFile means a required input is absent or unreadable.
	ErrMissingInputFile = errors.New("missing input file")

	// ErrMalformedInputLine marks a frequency line that is not word<TAB>integer.
	// Such lines are dropped; the error never aborts a load.
	ErrMalformedInputLine = errors.New("malformed input line")
)

// InputError reports an input file that could not be opened or read.
// It matches both ErrMissingInputFile and the underlying cause under errors.Is.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrMissingInputFile, e.Path, e.Err)
}

func (e *InputError) Unwrap() []error {
	return []error{ErrMissingInputFile, e.Err}
}

// LineError describes one skipped source line.
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v at line %d (%s): %q", ErrMalformedInputLine, e.Line, e.Reason, e.Text)
}

func (e *LineError) Unwrap() error {
	return ErrMalformedInputLine
}
