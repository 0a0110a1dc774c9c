package output

import (
	"time"

	"github.com/ccollicutt/translog/pkg/analyzer"
	"github.com/ccollicutt/translog/pkg/anomaly"
	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/interval"
	"github.com/ccollicutt/translog/pkg/parser"
)

var baseTime = time.Date(2025, 12, 12, 10, 0, 0, 0, time.UTC)

func startEvent(id, category string, offset time.Duration, line int) parser.Event {
	return parser.Event{
		Timestamp: baseTime.Add(offset),
		EntityID:  id,
		Category:  category,
		Kind:      parser.KindStart,
		Source:    "server.log",
		LineNum:   line,
	}
}

// createTestResult returns a run with one lifecycle report (one dangling
// start, one long-running transition) and one clean request report.
func createTestResult() *analyzer.AnalysisResult {
	lifecycle := &analyzer.ReportResult{
		ReportName:  "transitions",
		ReportType:  analyzer.ReportTypeLifecycle,
		Description: "Document lifecycle transitions",
		Files:       []string{"server.log"},
		Lifecycle: &analyzer.LifecycleSummary{
			Starts:   1502,
			Ends:     1501,
			Dangling: 1,
			Categories: []correlate.CategoryCount{
				{Category: "Sign", Count: 1500},
				{Category: "Approve", Count: 2},
			},
			DanglingEntities: []correlate.EntityDangling{{
				EntityID: "G2",
				Starts:   []parser.Event{startEvent("G2", "Approve", time.Second, 2)},
			}},
			BusyEntities: []correlate.BusyEntity{{EntityID: "G1", Transitions: 12, Categories: []string{"Sign", "Approve"}}},
			LongRunning: []anomaly.LongRunning{{
				EntityID:       "G1",
				Start:          startEvent("G1", "Sign", 0, 1),
				DurationMillis: 7500,
			}},
			LongRunningTotal:    1,
			StartBuckets:        []interval.Bucket{{Start: baseTime, End: baseTime.Add(5 * time.Minute), Count: 1502}},
			Threshold:           6 * time.Second,
			PositionalThreshold: 6 * time.Second,
			Interval:            5 * time.Minute,
		},
		Stats: analyzer.ReportStats{
			LinesRead:   4000,
			Events:      3003,
			ParseErrors: map[string]int{"malformed_timestamp": 2},
			Span:        correlate.Span{First: baseTime, Last: baseTime.Add(time.Hour)},
		},
	}

	request := &analyzer.ReportResult{
		ReportName: "requests",
		ReportType: analyzer.ReportTypeRequest,
		Files:      []string{"poib.log"},
		Request: &analyzer.RequestSummary{
			Total: 3,
			Types: []correlate.CategoryCount{{Category: "checkAccess", Count: 3}},
			Buckets: map[string][]interval.Bucket{
				"checkAccess": {{Start: baseTime, End: baseTime.Add(5 * time.Minute), Count: 3}},
			},
			Resources: []analyzer.ResourceStats{
				{Type: "getAllowedResources", Requests: 2, Total: 1200, Max: 1100},
			},
			Interval: 5 * time.Minute,
		},
		Stats: analyzer.ReportStats{LinesRead: 10, Events: 3},
	}

	return &analyzer.AnalysisResult{
		RunID:   "run-1",
		Results: []*analyzer.ReportResult{lifecycle, request},
		Metadata: analyzer.AnalysisMetadata{
			Sources:        []string{"server.log", "poib.log"},
			StartTime:      baseTime,
			EndTime:        baseTime.Add(1500 * time.Millisecond),
			LinesProcessed: 4010,
		},
	}
}

func createTestReport() *Report {
	return NewReport(createTestResult(), "translog.yaml", time.UTC)
}
