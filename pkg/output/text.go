package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/translog/pkg/anomaly"
	"github.com/ccollicutt/translog/pkg/correlate"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	tw := &errWriter{w: w}
	if f.opts.Quiet {
		f.formatQuiet(report, tw)
	} else {
		f.formatFull(report, tw)
	}
	return tw.err
}

func (f *TextFormatter) formatQuiet(report *Report, w *errWriter) {
	w.printf("translog: %d reports checked, %d with issues, %s total issues\n",
		report.Summary.ReportsChecked,
		report.Summary.ReportsWithIssues,
		count(report.Summary.TotalIssues))
}

func (f *TextFormatter) formatFull(report *Report, w *errWriter) {
	w.printf("=== translog Analysis Report ===\n\n")

	for _, section := range report.Results {
		f.formatSection(section, w)
	}

	w.printf("---\n")
	w.printf("Summary: %d reports checked, %d reports with issues, %s total issues\n",
		report.Summary.ReportsChecked,
		report.Summary.ReportsWithIssues,
		count(report.Summary.TotalIssues))

	if f.opts.Verbose {
		w.printf("Lines processed: %s\n", count(report.Summary.LinesProcessed))
		w.printf("Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
		w.printf("Run ID: %s\n", report.RunID)
	}
}

func (f *TextFormatter) formatSection(s *Section, w *errWriter) {
	w.printf("[%s] %s\n", strings.ToUpper(s.Type), s.Name)

	if s.Description != "" && f.opts.Verbose {
		w.printf("  %s\n", s.Description)
	}

	w.printf("  Files: %d, lines: %s, events: %s\n",
		len(s.Files), count(s.Stats.LinesRead), count(s.Stats.Events))
	if s.Stats.FirstEvent != nil {
		w.printf("  Log span: %s .. %s\n", f.ts(*s.Stats.FirstEvent), f.ts(*s.Stats.LastEvent))
	}

	switch {
	case s.Lifecycle != nil:
		f.formatLifecycle(s.Lifecycle, w)
	case s.Detail != nil:
		f.formatDetail(s.Detail, w)
	case s.Request != nil:
		f.formatRequest(s.Request, w)
	}

	if len(s.Stats.ParseErrors) > 0 {
		parts := make([]string, 0, len(s.Stats.ParseErrors))
		for _, kind := range sortedKeys(s.Stats.ParseErrors) {
			parts = append(parts, fmt.Sprintf("%s=%s", kind, count(s.Stats.ParseErrors[kind])))
		}
		w.printf("  Skipped lines: %s\n", strings.Join(parts, ", "))
	}

	if len(s.FileFailures) > 0 {
		w.printf("  Failed files: %d\n", len(s.FileFailures))
		for _, ff := range s.FileFailures {
			w.printf("  - %s: %s\n", ff.Source, ff.Error)
		}
	}

	if f.opts.Verbose {
		for _, file := range s.Files {
			w.printf("    source: %s\n", file)
		}
	}

	w.printf("\n")
}

func (f *TextFormatter) formatLifecycle(lc *LifecycleSection, w *errWriter) {
	w.printf("  Transitions: %s started, %s completed, %s dangling, %s orphan ends\n",
		count(lc.Starts), count(lc.Ends), count(lc.Dangling), count(lc.Orphans))
	if lc.ChecksStarted > 0 || lc.ChecksCompleted > 0 {
		w.printf("  Checks: %s started, %s completed\n",
			count(lc.ChecksStarted), count(lc.ChecksCompleted))
	}

	f.formatTally("By transition", lc.Categories, w)

	if len(lc.DanglingEntities) > 0 {
		w.printf("  Dangling:\n")
		for _, d := range lc.DanglingEntities {
			for _, ev := range d.Starts {
				w.printf("  - %s: %s started at %s (%s:%d)\n",
					d.EntityID, ev.Category, f.ts(ev.Timestamp), ev.Source, ev.LineNum)
			}
		}
	}

	f.formatLongRunning(fmt.Sprintf("Long-running (> %s)", millis(lc.ThresholdMillis)),
		lc.LongRunning, lc.LongRunningTotal, w)
	f.formatLongRunning(fmt.Sprintf("Long-running by consecutive entries (> %s)", millis(lc.PositionalThresholdMillis)),
		lc.LongRunningPositional, lc.LongRunningPositionalTotal, w)

	if !f.opts.Verbose {
		return
	}

	if len(lc.BusyEntities) > 0 {
		w.printf("  Busy entities:\n")
		for _, b := range lc.BusyEntities {
			w.printf("  - %s: %s transitions (%s)\n",
				b.EntityID, count(b.Transitions), strings.Join(b.Categories, ", "))
		}
	}
	f.formatBuckets(fmt.Sprintf("Starts per %s", millis(lc.IntervalMillis)), lc.StartBuckets, w)
}

func (f *TextFormatter) formatDetail(d *DetailSection, w *errWriter) {
	w.printf("  Events: %s, slow (> %s): %s\n",
		count(d.Total), millis(d.ThresholdMillis), count(d.SlowTotal))
	f.formatTally("By transition", d.Categories, w)
	f.formatLongRunning("Slow", d.Slow, d.SlowTotal, w)
}

func (f *TextFormatter) formatRequest(rq *RequestSection, w *errWriter) {
	w.printf("  Requests: %s\n", count(rq.Total))
	f.formatTally("By type", rq.Types, w)

	if len(rq.Resources) > 0 {
		w.printf("  Resources listed:\n")
		for _, r := range rq.Resources {
			w.printf("    %-40s %s requests, %s total, max %s\n",
				r.Type, count(r.Requests), count(r.Total), count(r.Max))
		}
	}

	if !f.opts.Verbose {
		return
	}
	for _, name := range sortedKeys(rq.Buckets) {
		f.formatBuckets(fmt.Sprintf("%s per %s", name, millis(rq.IntervalMillis)), rq.Buckets[name], w)
	}
}

func (f *TextFormatter) formatTally(title string, tally []correlate.CategoryCount, w *errWriter) {
	if len(tally) == 0 {
		return
	}
	w.printf("  %s:\n", title)
	for _, c := range tally {
		w.printf("    %-40s %10s\n", c.Category, count(c.Count))
	}
}

func (f *TextFormatter) formatLongRunning(title string, items []anomaly.LongRunning, total int, w *errWriter) {
	if total == 0 {
		return
	}
	w.printf("  %s: %s\n", title, count(total))
	for _, lr := range items {
		w.printf("  - %s %s: %s, started at %s\n",
			lr.EntityID, lr.Start.Category, millis(lr.DurationMillis), f.ts(lr.Start.Timestamp))
		if f.opts.Verbose {
			w.printf("    Source: %s:%d\n", lr.Start.Source, lr.Start.LineNum)
		}
	}
	if len(items) < total {
		w.printf("  ... %s more\n", count(total-len(items)))
	}
}

func (f *TextFormatter) formatBuckets(title string, buckets []Bucket, w *errWriter) {
	if len(buckets) == 0 {
		return
	}
	w.printf("  %s:\n", title)
	for _, b := range buckets {
		w.printf("    %s %10s\n", b.Bucket.Label(f.opts.Location), count(b.Count))
	}
}

func (f *TextFormatter) ts(t time.Time) string {
	return t.In(f.opts.Location).Format(timestampLayout)
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func millis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
