package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ccollicutt/translog/pkg/config"
	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/interval"
	"github.com/ccollicutt/translog/pkg/parser"
)

// RequestEngine implements ReportEngine for outbound request lines. It
// tallies requests by type and counts them over time.
type RequestEngine struct {
	name        string
	description string
	format      parser.RequestFormat
	ts          *parser.TimestampExtractor
	interval    time.Duration

	events []parser.Event
}

// NewRequestEngine creates a request engine from a validated report config.
func NewRequestEngine(report *config.ReportConfig, ts *parser.TimestampExtractor) (*RequestEngine, error) {
	if report.ReportTypeEnum() != config.ReportTypeRequest {
		return nil, fmt.Errorf("report %q is not a request report", report.Name)
	}

	return &RequestEngine{
		name:        report.Name,
		description: report.Description,
		format: parser.RequestFormat{
			LevelMarker:     report.LevelMarker,
			Marker:          report.RequestMarker,
			ResourceRequest: report.ResourceRequest,
			ResourceMarker:  report.ResourceMarker,
		},
		ts:       ts,
		interval: report.Interval,
	}, nil
}

// Name returns the report name.
func (e *RequestEngine) Name() string {
	return e.name
}

// Type returns the report type.
func (e *RequestEngine) Type() ReportType {
	return ReportTypeRequest
}

// NewParser returns a request line parser.
func (e *RequestEngine) NewParser() parser.LineParser {
	return parser.NewRequestParser(e.format, e.ts)
}

// Process handles a single event.
func (e *RequestEngine) Process(_ context.Context, ev *parser.Event) error {
	if ev.Kind == parser.KindRequest {
		e.events = append(e.events, *ev)
	}
	return nil
}

// Finalize tallies and buckets the collected requests.
func (e *RequestEngine) Finalize(_ context.Context) (*ReportResult, error) {
	var buckets map[string][]interval.Bucket
	if e.interval > 0 {
		var err error
		buckets, err = interval.BucketizeByCategory(e.events, e.interval)
		if err != nil {
			return nil, fmt.Errorf("bucketing requests: %w", err)
		}
	}

	return &ReportResult{
		ReportName:  e.name,
		ReportType:  ReportTypeRequest,
		Description: e.description,
		Request: &RequestSummary{
			Total:     len(e.events),
			Types:     correlate.Tally(correlate.CountCategories(e.events)),
			Buckets:   buckets,
			Resources: resourceStats(e.events),
			Interval:  e.interval,
		},
	}, nil
}

func resourceStats(events []parser.Event) []ResourceStats {
	byType := map[string]*ResourceStats{}
	for i := range events {
		n, ok := events[i].ResourceCount()
		if !ok {
			continue
		}
		rs := byType[events[i].Category]
		if rs == nil {
			rs = &ResourceStats{Type: events[i].Category}
			byType[rs.Type] = rs
		}
		rs.Requests++
		rs.Total += n
		rs.Max = max(rs.Max, n)
	}

	out := make([]ResourceStats, 0, len(byType))
	for _, rs := range byType {
		out = append(out, *rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Reset clears internal state.
func (e *RequestEngine) Reset() {
	e.events = nil
}
