package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/translog/pkg/config"
	"github.com/ccollicutt/translog/pkg/metrics"
	"github.com/ccollicutt/translog/pkg/parser"
)

// Analyzer orchestrates log analysis across multiple reports.
type Analyzer struct {
	cfg  *config.Config
	jobs []reportJob

	// Options
	logger       *slog.Logger
	metrics      *metrics.Metrics
	workers      int
	fileTimeout  time.Duration
	timeRange    *TimeRange
	reportFilter map[string]bool // nil means all reports
}

type reportJob struct {
	engine ReportEngine
	report *config.ReportConfig
}

// TimeRange defines a time window for filtering events.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the window, bounds included.
func (tr *TimeRange) Contains(ts time.Time) bool {
	return !ts.Before(tr.Start) && !ts.After(tr.End)
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithTimeRange limits analysis to events within the given time range.
func WithTimeRange(start, end time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.timeRange = &TimeRange{Start: start, End: end}
	}
}

// WithReportFilter limits analysis to the specified reports.
func WithReportFilter(reports []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(reports) > 0 {
			a.reportFilter = make(map[string]bool)
			for _, r := range reports {
				a.reportFilter[r] = true
			}
		}
	}
}

// WithLogger sets the logger for progress and warnings.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records run statistics into m.
func WithMetrics(m *metrics.Metrics) AnalyzerOption {
	return func(a *Analyzer) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithWorkers overrides the configured number of files parsed concurrently.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithFileTimeout overrides the configured per-file parse budget.
func WithFileTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.fileTimeout = d
		}
	}
}

// NewAnalyzer creates a new analyzer from a validated configuration.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		cfg:         cfg,
		jobs:        make([]reportJob, 0, len(cfg.Reports)),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:     cfg.Workers,
		fileTimeout: cfg.FileTimeout,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	if a.workers <= 0 {
		a.workers = config.DefaultWorkers
	}

	ts := parser.NewTimestampExtractor(cfg.TimestampFormat.Layout, cfg.TimestampFormat.CompiledLocation())

	for i := range cfg.Reports {
		report := &cfg.Reports[i]

		// Skip if report filter is active and this report isn't included
		if a.reportFilter != nil && !a.reportFilter[report.Name] {
			continue
		}

		engine, err := createEngine(report, ts)
		if err != nil {
			return nil, fmt.Errorf("creating engine for report %q: %w", report.Name, err)
		}
		a.jobs = append(a.jobs, reportJob{engine: engine, report: report})
	}

	if len(a.jobs) == 0 {
		return nil, errors.New("no reports to execute (check --report filter)")
	}

	return a, nil
}

// createEngine creates the appropriate report engine based on report type.
func createEngine(report *config.ReportConfig, ts *parser.TimestampExtractor) (ReportEngine, error) {
	switch report.ReportTypeEnum() {
	case config.ReportTypeLifecycle:
		return NewLifecycleEngine(report, ts)
	case config.ReportTypeDetail:
		return NewDetailEngine(report, ts)
	case config.ReportTypeRequest:
		return NewRequestEngine(report, ts)
	default:
		return nil, fmt.Errorf("unknown report type: %s", report.Type)
	}
}

// Metrics returns the collectors the analyzer records into.
func (a *Analyzer) Metrics() *metrics.Metrics {
	return a.metrics
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// RunID uniquely identifies this analysis run.
	RunID string

	// Results contains findings from each report.
	Results []*ReportResult

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string

	// Sources lists the log files that were analyzed, across all reports.
	Sources []string

	// TimeRange is the time filter applied, if any.
	TimeRange *TimeRange

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time

	// LinesProcessed is the total number of log lines read.
	LinesProcessed int
}

// TotalIssues returns the total number of issues across all reports.
func (r *AnalysisResult) TotalIssues() int {
	total := 0
	for _, result := range r.Results {
		total += result.IssueCount()
	}
	return total
}

// ReportsWithIssues returns the count of reports that found issues.
func (r *AnalysisResult) ReportsWithIssues() int {
	count := 0
	for _, result := range r.Results {
		if result.HasIssues() {
			count++
		}
	}
	return count
}

// Analyze discovers, parses and analyzes the log files of every report.
func (a *Analyzer) Analyze(ctx context.Context) (*AnalysisResult, error) {
	result := &AnalysisResult{
		RunID:   uuid.NewString(),
		Results: make([]*ReportResult, 0, len(a.jobs)),
		Metadata: AnalysisMetadata{
			TimeRange: a.timeRange,
			StartTime: time.Now(),
		},
	}

	logger := a.logger.With("run_id", result.RunID)
	sourcesMap := make(map[string]bool)

	for _, job := range a.jobs {
		rr, err := a.runReport(ctx, logger.With("report", job.engine.Name()), job)
		if err != nil {
			return nil, fmt.Errorf("report %q: %w", job.engine.Name(), err)
		}

		for _, f := range rr.Files {
			if !sourcesMap[f] {
				sourcesMap[f] = true
				result.Metadata.Sources = append(result.Metadata.Sources, f)
			}
		}
		result.Metadata.LinesProcessed += rr.Stats.LinesRead
		result.Results = append(result.Results, rr)
	}

	result.Metadata.EndTime = time.Now()
	logger.Info("analysis complete",
		"reports", len(result.Results),
		"issues", result.TotalIssues(),
		"duration", result.Metadata.EndTime.Sub(result.Metadata.StartTime))

	return result, nil
}

// runReport executes one report: discover, parse files in parallel, merge
// into one ordered stream, then feed the engine.
func (a *Analyzer) runReport(ctx context.Context, logger *slog.Logger, job reportJob) (*ReportResult, error) {
	start := time.Now()
	name := job.engine.Name()

	sources := a.existingSources(logger, a.cfg.SourcesFor(job.report))
	files, err := parser.Discover(sources, job.report.FilePrefix, a.cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("discovering log files: %w", err)
	}
	logger.Debug("discovered log files", "files", len(files), "prefix", job.report.FilePrefix)

	parsed, failures, err := a.parseFiles(ctx, logger, job.engine, files)
	if err != nil {
		return nil, err
	}

	stats := ReportStats{
		ParseErrors: make(map[string]int),
		StartTime:   start,
	}
	runs := make([][]parser.Event, 0, len(parsed))
	for _, fr := range parsed {
		if fr == nil {
			continue
		}
		stats.LinesRead += fr.LinesRead
		for _, d := range fr.Diagnostics {
			stats.ParseErrors[d.KindName()]++
			a.metrics.ParseErrors.WithLabelValues(name, d.KindName()).Inc()
			logger.Debug("skipped line", "source", d.Source, "line", d.LineNum, "kind", d.KindName(), "error", d.Err)
		}
		runs = append(runs, fr.Events)
		a.metrics.LinesRead.WithLabelValues(name).Add(float64(fr.LinesRead))
	}

	job.engine.Reset()
	for _, ev := range parser.MergeEvents(runs...) {
		if a.timeRange != nil && !a.timeRange.Contains(ev.Timestamp) {
			continue
		}
		if err := job.engine.Process(ctx, &ev); err != nil {
			return nil, fmt.Errorf("processing event from %s:%d: %w", ev.Source, ev.LineNum, err)
		}
		stats.Events++
		stats.Span.Extend(ev.Timestamp)
		a.metrics.Events.WithLabelValues(name, string(ev.Kind)).Inc()
	}

	rr, err := job.engine.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("finalizing: %w", err)
	}

	for _, ms := range rr.latencies {
		a.metrics.TransitionLatency.WithLabelValues(name).Observe(float64(ms))
	}
	if rr.Lifecycle != nil {
		a.metrics.Dangling.WithLabelValues(name).Set(float64(rr.Lifecycle.Dangling))
	}

	stats.EndTime = time.Now()
	rr.Files = files
	rr.FileFailures = failures
	rr.Stats = stats

	logger.Info("report complete",
		"files", len(files),
		"failed_files", len(failures),
		"events", stats.Events,
		"issues", rr.IssueCount())

	return rr, nil
}

// parseFiles parses files concurrently, bounded by the worker count. The
// returned slice is indexed like files; failed files leave a nil entry and a
// FileFailure. Only cancellation of ctx aborts the whole report.
func (a *Analyzer) parseFiles(ctx context.Context, logger *slog.Logger, engine ReportEngine, files []string) ([]*parser.FileResult, []FileFailure, error) {
	name := engine.Name()
	opts := parser.FileOptions{
		AbortOnMalformedTimestamp: a.cfg.OnMalformedTimestamp == config.MalformedSkipFile,
	}

	results := make([]*parser.FileResult, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			fctx, cancel := gctx, context.CancelFunc(func() {})
			if a.fileTimeout > 0 {
				fctx, cancel = context.WithTimeout(gctx, a.fileTimeout)
			}
			defer cancel()

			fr, err := parser.ParseFile(fctx, path, i, engine.NewParser(), opts)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				errs[i] = err
				return nil
			}

			parser.SortEvents(fr.Events)
			results[i] = fr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var failures []FileFailure
	for i, path := range files {
		switch {
		case errs[i] != nil:
			failures = append(failures, FileFailure{Source: path, Error: errs[i].Error()})
			a.metrics.Files.WithLabelValues(name, "failed").Inc()
			logger.Warn("failed to parse log file", "source", path, "error", errs[i])
		case results[i].Aborted:
			failures = append(failures, FileFailure{
				Source: path,
				Error:  fmt.Sprintf("stopped at line %d: malformed timestamp", results[i].LinesRead),
			})
			a.metrics.Files.WithLabelValues(name, "aborted").Inc()
			logger.Warn("stopped reading log file at malformed timestamp",
				"source", path, "line", results[i].LinesRead)
		default:
			a.metrics.Files.WithLabelValues(name, "ok").Inc()
		}
	}

	return results, failures, nil
}

// existingSources drops sources that match nothing on disk, logging a
// warning for each. Invalid glob patterns are passed through so discovery
// can report them.
func (a *Analyzer) existingSources(logger *slog.Logger, sources []string) []string {
	kept := make([]string, 0, len(sources))
	for _, src := range sources {
		matches, err := filepath.Glob(src)
		if err != nil || len(matches) > 0 {
			kept = append(kept, src)
			continue
		}
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			logger.Warn("log source not found", "source", src)
			continue
		}
		kept = append(kept, src)
	}
	return kept
}
