package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// FileOptions controls per-file parsing behavior.
type FileOptions struct {
	// AbortOnMalformedTimestamp stops reading a file at its first malformed
	// timestamp. Events already parsed from the file are kept.
	AbortOnMalformedTimestamp bool
}

// FileResult is everything parsed from one log file.
type FileResult struct {
	Source    string
	FileIndex int

	// Events are in line order.
	Events []Event

	// Diagnostics are the lines that produced no event.
	Diagnostics []*ParseError

	LinesRead int

	// Aborted is set when AbortOnMalformedTimestamp cut the file short.
	Aborted bool
}

// Span returns the earliest and latest event timestamps, or zero times if
// the file has no events.
func (r *FileResult) Span() (first, last time.Time) {
	for i := range r.Events {
		ts := r.Events[i].Timestamp
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	return first, last
}

// ParseFile reads a log file line by line through lp.
func ParseFile(ctx context.Context, path string, fileIndex int, lp LineParser, opts FileOptions) (*FileResult, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	return ParseReader(ctx, f, path, fileIndex, lp, opts)
}

// ParseReader reads lines from r through lp. Per-line failures are collected
// as diagnostics; only read errors and context cancellation are returned.
func ParseReader(ctx context.Context, r io.Reader, source string, fileIndex int, lp LineParser, opts FileOptions) (*FileResult, error) {
	result := &FileResult{
		Source:    source,
		FileIndex: fileIndex,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.LinesRead++
		line := LogLine{
			Content:   scanner.Text(),
			Source:    source,
			LineNum:   result.LinesRead,
			FileIndex: fileIndex,
		}

		ev, ok, err := lp.Feed(line)
		if err != nil {
			pe := asParseError(err, line)
			result.Diagnostics = append(result.Diagnostics, pe)
			if opts.AbortOnMalformedTimestamp && pe.Kind == ErrMalformedTimestamp {
				result.Aborted = true
				break
			}
			continue
		}
		if ok {
			result.Events = append(result.Events, ev)
		}
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("reading %s: %w", source, err)
	}

	if err := lp.Flush(); err != nil {
		result.Diagnostics = append(result.Diagnostics, asParseError(err, LogLine{Source: source}))
	}

	return result, nil
}

func asParseError(err error, line LogLine) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return lineError(ErrUnparseableLine, line, err)
}
