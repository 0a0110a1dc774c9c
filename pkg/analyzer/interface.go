package analyzer

import (
	"context"

	"github.com/ccollicutt/translog/pkg/parser"
)

// ReportEngine consumes the merged event stream of one report and produces
// its findings. Each report type (lifecycle, detail, request) implements this
// interface.
type ReportEngine interface {
	// Name returns the report name.
	Name() string

	// Type returns the report type.
	Type() ReportType

	// NewParser returns a fresh line parser for one log file. Parsers may
	// hold per-file state, so one is created for every file.
	NewParser() parser.LineParser

	// Process handles a single event. Events arrive in total order.
	Process(ctx context.Context, ev *parser.Event) error

	// Finalize completes analysis and returns the report.
	// Called after all events have been processed.
	Finalize(ctx context.Context) (*ReportResult, error)

	// Reset clears internal state for reuse.
	Reset()
}
