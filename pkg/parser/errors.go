package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTimestamp means a relevant line had a timestamp slice
	// that did not parse with the configured layout.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrTruncatedEvent means a two-line event lost its continuation line.
	ErrTruncatedEvent = errors.New("truncated event")

	// ErrUnparseableLine means a line carried a recognized marker but not
	// the expected structure.
	ErrUnparseableLine = errors.New("unparseable line")
)

// ParseError describes why a single line produced no event.
type ParseError struct {
	// Kind is one of the sentinel errors above.
	Kind error

	Source  string
	LineNum int

	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.LineNum, e.Kind)
	}
	return fmt.Sprintf("%s:%d: %v", e.Source, e.LineNum, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for the error kind, used in logs and metrics.
func (e *ParseError) KindName() string {
	switch e.Kind {
	case ErrMalformedTimestamp:
		return "malformed_timestamp"
	case ErrTruncatedEvent:
		return "truncated_event"
	case ErrUnparseableLine:
		return "unparseable_line"
	default:
		return "unknown"
	}
}

func lineError(kind error, line LogLine, cause error) *ParseError {
	return &ParseError{
		Kind:    kind,
		Source:  line.Source,
		LineNum: line.LineNum,
		Err:     cause,
	}
}

func unparseable(line LogLine, format string, args ...any) *ParseError {
	return lineError(ErrUnparseableLine, line, fmt.Errorf("%w: "+format, append([]any{ErrUnparseableLine}, args...)...))
}
