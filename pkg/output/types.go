// Package output provides formatting and output generation for analysis results.
package output

import (
	"sort"
	"time"

	"github.com/ccollicutt/translog/pkg/analyzer"
	"github.com/ccollicutt/translog/pkg/anomaly"
	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/interval"
)

// Report is the complete analysis output.
type Report struct {
	// RunID identifies the analysis run.
	RunID string `json:"run_id"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Results contains one section per report.
	Results []*Section `json:"results"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	ReportsChecked    int `json:"reports_checked"`
	ReportsWithIssues int `json:"reports_with_issues"`
	TotalIssues       int `json:"total_issues"`
	LinesProcessed    int `json:"lines_processed"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the log files that were analyzed.
	Sources []string `json:"sources"`

	// TimeRange is the time filter that was applied, if any.
	TimeRange *TimeRange `json:"time_range,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"-"`

	DurationMillis int64 `json:"duration_ms"`
}

// TimeRange represents a time window for filtering.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Section is the output of one report.
type Section struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	Description  string        `json:"description,omitempty"`
	Issues       int           `json:"issues"`
	Files        []string      `json:"files"`
	FileFailures []FileFailure `json:"file_failures,omitempty"`
	Stats        Stats         `json:"stats"`

	Lifecycle *LifecycleSection `json:"lifecycle,omitempty"`
	Detail    *DetailSection    `json:"detail,omitempty"`
	Request   *RequestSection   `json:"request,omitempty"`
}

// FileFailure is a file that could not be read to the end.
type FileFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Stats are per-report processing counters.
type Stats struct {
	LinesRead   int            `json:"lines_read"`
	Events      int            `json:"events"`
	ParseErrors map[string]int `json:"parse_errors,omitempty"`
	FirstEvent  *time.Time     `json:"first_event,omitempty"`
	LastEvent   *time.Time     `json:"last_event,omitempty"`
}

// Bucket is an interval count with a readable label.
type Bucket struct {
	Label string `json:"label"`
	interval.Bucket
}

// LifecycleSection holds transition lifecycle findings.
type LifecycleSection struct {
	Starts          int `json:"starts"`
	Ends            int `json:"ends"`
	Dangling        int `json:"dangling"`
	Orphans         int `json:"orphan_ends"`
	ChecksStarted   int `json:"checks_started"`
	ChecksCompleted int `json:"checks_completed"`

	ThresholdMillis           int64 `json:"threshold_ms"`
	PositionalThresholdMillis int64 `json:"positional_threshold_ms"`
	IntervalMillis            int64 `json:"interval_ms,omitempty"`

	Categories       []correlate.CategoryCount  `json:"categories"`
	DanglingEntities []correlate.EntityDangling `json:"dangling_entities,omitempty"`
	BusyEntities     []correlate.BusyEntity     `json:"busy_entities,omitempty"`

	LongRunning                []anomaly.LongRunning `json:"long_running,omitempty"`
	LongRunningTotal           int                   `json:"long_running_total"`
	LongRunningPositional      []anomaly.LongRunning `json:"long_running_positional,omitempty"`
	LongRunningPositionalTotal int                   `json:"long_running_positional_total"`

	StartBuckets []Bucket `json:"start_buckets,omitempty"`
}

// DetailSection holds self-reported transition timings.
type DetailSection struct {
	Total           int                       `json:"total"`
	ThresholdMillis int64                     `json:"threshold_ms"`
	Categories      []correlate.CategoryCount `json:"categories"`
	Slow            []anomaly.LongRunning     `json:"slow,omitempty"`
	SlowTotal       int                       `json:"slow_total"`
}

// RequestSection holds outbound request counts.
type RequestSection struct {
	Total          int                       `json:"total"`
	IntervalMillis int64                     `json:"interval_ms,omitempty"`
	Types          []correlate.CategoryCount `json:"types"`
	Buckets        map[string][]Bucket       `json:"buckets,omitempty"`
	Resources      []ResourceUsage           `json:"resources,omitempty"`
}

// ResourceUsage is the number of resources listed by one request type.
type ResourceUsage struct {
	Type     string `json:"type"`
	Requests int    `json:"requests"`
	Total    int    `json:"total"`
	Max      int    `json:"max"`
}

// NewReport creates a Report from analysis results. Bucket labels are
// rendered in loc; nil means UTC.
func NewReport(result *analyzer.AnalysisResult, configFile string, loc *time.Location) *Report {
	duration := result.Metadata.EndTime.Sub(result.Metadata.StartTime)
	report := &Report{
		RunID:   result.RunID,
		Results: make([]*Section, 0, len(result.Results)),
		Metadata: Metadata{
			ConfigFile:     configFile,
			Sources:        result.Metadata.Sources,
			AnalyzedAt:     result.Metadata.EndTime,
			Duration:       duration,
			DurationMillis: duration.Milliseconds(),
		},
		Summary: Summary{
			ReportsChecked:    len(result.Results),
			ReportsWithIssues: result.ReportsWithIssues(),
			TotalIssues:       result.TotalIssues(),
			LinesProcessed:    result.Metadata.LinesProcessed,
		},
	}

	if result.Metadata.TimeRange != nil {
		report.Metadata.TimeRange = &TimeRange{
			Start: result.Metadata.TimeRange.Start,
			End:   result.Metadata.TimeRange.End,
		}
	}

	for _, rr := range result.Results {
		report.Results = append(report.Results, newSection(rr, loc))
	}

	return report
}

// HasIssues returns true if any issues were detected.
func (r *Report) HasIssues() bool {
	return r.Summary.TotalIssues > 0
}

func newSection(rr *analyzer.ReportResult, loc *time.Location) *Section {
	s := &Section{
		Name:        rr.ReportName,
		Type:        string(rr.ReportType),
		Description: rr.Description,
		Issues:      rr.IssueCount(),
		Files:       rr.Files,
		Stats: Stats{
			LinesRead:   rr.Stats.LinesRead,
			Events:      rr.Stats.Events,
			ParseErrors: rr.Stats.ParseErrors,
		},
	}
	if len(s.Stats.ParseErrors) == 0 {
		s.Stats.ParseErrors = nil
	}
	if span := rr.Stats.Span; !span.First.IsZero() {
		s.Stats.FirstEvent = &span.First
		s.Stats.LastEvent = &span.Last
	}
	for _, ff := range rr.FileFailures {
		s.FileFailures = append(s.FileFailures, FileFailure{Source: ff.Source, Error: ff.Error})
	}

	switch {
	case rr.Lifecycle != nil:
		lc := rr.Lifecycle
		s.Lifecycle = &LifecycleSection{
			Starts:                     lc.Starts,
			Ends:                       lc.Ends,
			Dangling:                   lc.Dangling,
			Orphans:                    lc.Orphans,
			ChecksStarted:              lc.ChecksStarted,
			ChecksCompleted:            lc.ChecksCompleted,
			ThresholdMillis:            lc.Threshold.Milliseconds(),
			PositionalThresholdMillis:  lc.PositionalThreshold.Milliseconds(),
			IntervalMillis:             lc.Interval.Milliseconds(),
			Categories:                 lc.Categories,
			DanglingEntities:           lc.DanglingEntities,
			BusyEntities:               lc.BusyEntities,
			LongRunning:                lc.LongRunning,
			LongRunningTotal:           lc.LongRunningTotal,
			LongRunningPositional:      lc.LongRunningPositional,
			LongRunningPositionalTotal: lc.LongRunningPositionalTotal,
			StartBuckets:               labelBuckets(lc.StartBuckets, loc),
		}
	case rr.Detail != nil:
		d := rr.Detail
		s.Detail = &DetailSection{
			Total:           d.Total,
			ThresholdMillis: d.Threshold.Milliseconds(),
			Categories:      d.Categories,
			Slow:            d.Slow,
			SlowTotal:       d.SlowTotal,
		}
	case rr.Request != nil:
		rq := rr.Request
		s.Request = &RequestSection{
			Total:          rq.Total,
			IntervalMillis: rq.Interval.Milliseconds(),
			Types:          rq.Types,
		}
		for _, rs := range rq.Resources {
			s.Request.Resources = append(s.Request.Resources, ResourceUsage(rs))
		}
		if len(rq.Buckets) > 0 {
			s.Request.Buckets = make(map[string][]Bucket, len(rq.Buckets))
			for name, buckets := range rq.Buckets {
				s.Request.Buckets[name] = labelBuckets(buckets, loc)
			}
		}
	}

	return s
}

func labelBuckets(buckets []interval.Bucket, loc *time.Location) []Bucket {
	if len(buckets) == 0 {
		return nil
	}
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, Bucket{Label: b.Label(loc), Bucket: b})
	}
	return out
}

// sortedKeys returns map keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
