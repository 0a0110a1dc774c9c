package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/ccollicutt/translog/pkg/anomaly"
	"github.com/ccollicutt/translog/pkg/config"
	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/interval"
	"github.com/ccollicutt/translog/pkg/parser"
)

// LifecycleEngine implements ReportEngine for transition start/end lines.
// It correlates starts with ends per entity, flags long-running and
// unfinished transitions, and counts starts over time.
type LifecycleEngine struct {
	name        string
	description string
	format      parser.LifecycleFormat
	ts          *parser.TimestampExtractor

	threshold           time.Duration
	positionalThreshold time.Duration
	interval            time.Duration
	busyMin             int
	limit               int

	// State
	events          []parser.Event
	checksStarted   int
	checksCompleted int
}

// NewLifecycleEngine creates a lifecycle engine from a validated report config.
func NewLifecycleEngine(report *config.ReportConfig, ts *parser.TimestampExtractor) (*LifecycleEngine, error) {
	if report.ReportTypeEnum() != config.ReportTypeLifecycle {
		return nil, fmt.Errorf("report %q is not a lifecycle report", report.Name)
	}

	return &LifecycleEngine{
		name:        report.Name,
		description: report.Description,
		format: parser.LifecycleFormat{
			LevelMarker:    report.LevelMarker,
			Component:      report.Component,
			Phrase:         report.Phrase,
			Separator:      report.Separator,
			StartedStatus:  report.StartedStatus,
			CheckMarker:    report.CheckMarker,
			CheckCompleted: report.CheckCompleted,
		},
		ts:                  ts,
		threshold:           report.Threshold,
		positionalThreshold: report.PositionalThreshold,
		interval:            report.Interval,
		busyMin:             report.BusyEntityMin,
		limit:               report.Limit,
	}, nil
}

// Name returns the report name.
func (e *LifecycleEngine) Name() string {
	return e.name
}

// Type returns the report type.
func (e *LifecycleEngine) Type() ReportType {
	return ReportTypeLifecycle
}

// NewParser returns a lifecycle line parser.
func (e *LifecycleEngine) NewParser() parser.LineParser {
	return parser.NewLifecycleParser(e.format, e.ts)
}

// Process handles a single event.
func (e *LifecycleEngine) Process(_ context.Context, ev *parser.Event) error {
	switch ev.Kind {
	case parser.KindStart, parser.KindEnd:
		e.events = append(e.events, *ev)
	case parser.KindCheckStart:
		e.checksStarted++
	case parser.KindCheckEnd:
		e.checksCompleted++
	}
	return nil
}

// Finalize correlates the collected events and builds the summary.
func (e *LifecycleEngine) Finalize(_ context.Context) (*ReportResult, error) {
	res := correlate.Correlate(e.events)

	var starts []parser.Event
	for i := range e.events {
		if e.events[i].Kind == parser.KindStart {
			starts = append(starts, e.events[i])
		}
	}

	var buckets []interval.Bucket
	if e.interval > 0 {
		var err error
		buckets, err = interval.BucketizeEvents(starts, e.interval)
		if err != nil {
			return nil, fmt.Errorf("bucketing starts: %w", err)
		}
	}

	long := anomaly.FindLongRunning(res.AllPairs(), e.threshold.Milliseconds())
	positional := anomaly.FindLongRunningPositional(res, e.positionalThreshold.Milliseconds())

	summary := &LifecycleSummary{
		Starts:                     res.Starts,
		Ends:                       res.Ends,
		Dangling:                   res.Dangling,
		Orphans:                    res.OrphanCount(),
		ChecksStarted:              e.checksStarted,
		ChecksCompleted:            e.checksCompleted,
		Categories:                 correlate.Tally(res.CategoryStarts),
		DanglingEntities:           correlate.DanglingByEntity(res),
		BusyEntities:               correlate.BusyEntities(res, e.busyMin),
		LongRunning:                limitList(long, e.limit),
		LongRunningTotal:           len(long),
		LongRunningPositional:      limitList(positional, e.limit),
		LongRunningPositionalTotal: len(positional),
		StartBuckets:               buckets,
		Threshold:                  e.threshold,
		PositionalThreshold:        e.positionalThreshold,
		Interval:                   e.interval,
	}

	pairs := res.AllPairs()
	latencies := make([]int64, 0, len(pairs))
	for _, p := range pairs {
		latencies = append(latencies, p.DurationMillis())
	}

	return &ReportResult{
		ReportName:  e.name,
		ReportType:  ReportTypeLifecycle,
		Description: e.description,
		Lifecycle:   summary,
		latencies:   latencies,
	}, nil
}

// Reset clears internal state.
func (e *LifecycleEngine) Reset() {
	e.events = nil
	e.checksStarted = 0
	e.checksCompleted = 0
}

// limitList truncates items to limit entries; limit <= 0 keeps everything.
func limitList(items []anomaly.LongRunning, limit int) []anomaly.LongRunning {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
