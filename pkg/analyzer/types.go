// Package analyzer runs configured reports over workflow engine logs.
package analyzer

import (
	"time"

	"github.com/ccollicutt/translog/pkg/anomaly"
	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/interval"
)

// ReportType enumerates report kinds.
type ReportType string

const (
	ReportTypeLifecycle ReportType = "lifecycle"
	ReportTypeDetail    ReportType = "detail"
	ReportTypeRequest   ReportType = "request"
)

// ReportResult contains findings from one report.
type ReportResult struct {
	// ReportName is the name of the report that produced these results.
	ReportName string

	ReportType ReportType

	// Description is the report's description, if any.
	Description string

	// Exactly one of these is set, matching ReportType.
	Lifecycle *LifecycleSummary
	Detail    *DetailSummary
	Request   *RequestSummary

	// Files are the log files discovered for the report.
	Files []string

	// FileFailures are files that could not be read to the end.
	FileFailures []FileFailure

	Stats ReportStats

	// latencies holds transition durations for the metrics histogram.
	latencies []int64
}

// ReportStats contains execution statistics for a report.
type ReportStats struct {
	LinesRead int

	// Events is the number of events fed to the engine.
	Events int

	// ParseErrors counts skipped lines by error kind.
	ParseErrors map[string]int

	// Span covers the timestamps of every processed event.
	Span correlate.Span

	StartTime time.Time
	EndTime   time.Time
}

// FileFailure records a file that failed to parse.
type FileFailure struct {
	Source string
	Error  string
}

// HasIssues returns true if the report found anything worth acting on.
func (r *ReportResult) HasIssues() bool {
	return r.IssueCount() > 0
}

// IssueCount counts dangling transitions, long-running transitions and
// file failures.
func (r *ReportResult) IssueCount() int {
	n := len(r.FileFailures)
	switch {
	case r.Lifecycle != nil:
		n += r.Lifecycle.Dangling + r.Lifecycle.LongRunningTotal
	case r.Detail != nil:
		n += r.Detail.SlowTotal
	}
	return n
}

// LifecycleSummary is the result of a lifecycle report.
type LifecycleSummary struct {
	Starts   int
	Ends     int
	Dangling int
	Orphans  int

	ChecksStarted   int
	ChecksCompleted int

	// Categories tallies start events per transition name.
	Categories []correlate.CategoryCount

	DanglingEntities []correlate.EntityDangling
	BusyEntities     []correlate.BusyEntity

	// LongRunning is category-aware, built from matched pairs.
	LongRunning      []anomaly.LongRunning
	LongRunningTotal int

	// LongRunningPositional pairs consecutive timeline entries instead.
	LongRunningPositional      []anomaly.LongRunning
	LongRunningPositionalTotal int

	// StartBuckets counts start events per interval.
	StartBuckets []interval.Bucket

	Threshold           time.Duration
	PositionalThreshold time.Duration
	Interval            time.Duration
}

// DetailSummary is the result of a detail report.
type DetailSummary struct {
	Total      int
	Categories []correlate.CategoryCount

	// Slow lists events above the threshold, longest first.
	Slow      []anomaly.LongRunning
	SlowTotal int

	Threshold time.Duration
}

// RequestSummary is the result of a request report.
type RequestSummary struct {
	Total int
	Types []correlate.CategoryCount

	// Buckets counts requests per interval, keyed by request type.
	Buckets map[string][]interval.Bucket

	// Resources summarizes resource listing requests, ordered by type.
	Resources []ResourceStats

	Interval time.Duration
}

// ResourceStats counts the resources listed by one request type.
type ResourceStats struct {
	Type     string
	Requests int
	Total    int
	Max      int
}
