package output

import (
	"context"
	"io"
	"time"
)

// Formatter renders analysis results in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds busy entities, interval counts and file lists.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// Location is the time zone timestamps are printed in; nil means UTC.
	Location *time.Location
}
