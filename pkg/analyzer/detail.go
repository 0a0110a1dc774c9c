package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/ccollicutt/translog/pkg/anomaly"
	"github.com/ccollicutt/translog/pkg/config"
	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/parser"
)

// DetailEngine implements ReportEngine for self-contained detail events,
// which carry their own duration.
type DetailEngine struct {
	name        string
	description string
	format      parser.DetailFormat
	ts          *parser.TimestampExtractor
	threshold   time.Duration
	limit       int

	events []parser.Event
}

// NewDetailEngine creates a detail engine from a validated report config.
func NewDetailEngine(report *config.ReportConfig, ts *parser.TimestampExtractor) (*DetailEngine, error) {
	if report.ReportTypeEnum() != config.ReportTypeDetail {
		return nil, fmt.Errorf("report %q is not a detail report", report.Name)
	}

	return &DetailEngine{
		name:        report.Name,
		description: report.Description,
		format: parser.DetailFormat{
			LevelMarker:    report.LevelMarker,
			HeaderSuffix:   report.HeaderSuffix,
			DetailMarker:   report.DetailMarker,
			DocumentMarker: report.DocumentMarker,
			UnitSuffix:     report.UnitSuffix,
			TookMarker:     report.TookMarker,
		},
		ts:        ts,
		threshold: report.Threshold,
		limit:     report.Limit,
	}, nil
}

// Name returns the report name.
func (e *DetailEngine) Name() string {
	return e.name
}

// Type returns the report type.
func (e *DetailEngine) Type() ReportType {
	return ReportTypeDetail
}

// NewParser returns a detail parser. It is stateful across lines, so every
// file needs its own.
func (e *DetailEngine) NewParser() parser.LineParser {
	return parser.NewDetailParser(e.format, e.ts)
}

// Process handles a single event.
func (e *DetailEngine) Process(_ context.Context, ev *parser.Event) error {
	if ev.Kind == parser.KindDetail {
		e.events = append(e.events, *ev)
	}
	return nil
}

// Finalize filters slow events and tallies categories.
func (e *DetailEngine) Finalize(_ context.Context) (*ReportResult, error) {
	slow := anomaly.FilterSlowDetails(e.events, e.threshold.Milliseconds())

	latencies := make([]int64, 0, len(e.events))
	for i := range e.events {
		latencies = append(latencies, e.events[i].Millis())
	}

	return &ReportResult{
		ReportName:  e.name,
		ReportType:  ReportTypeDetail,
		Description: e.description,
		Detail: &DetailSummary{
			Total:      len(e.events),
			Categories: correlate.Tally(correlate.CountCategories(e.events)),
			Slow:       limitList(slow, e.limit),
			SlowTotal:  len(slow),
			Threshold:  e.threshold,
		},
		latencies: latencies,
	}, nil
}

// Reset clears internal state.
func (e *DetailEngine) Reset() {
	e.events = nil
}
