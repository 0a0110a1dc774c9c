package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// QuietReport is the JSON document written in quiet mode.
type QuietReport struct {
	RunID     string  `json:"run_id"`
	HasIssues bool    `json:"has_issues"`
	Summary   Summary `json:"summary"`

	// FailedFiles lists every file that could not be read to the end,
	// across reports.
	FailedFiles []string `json:"failed_files,omitempty"`
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(quietReport(report))
	}

	return encoder.Encode(report)
}

func quietReport(report *Report) QuietReport {
	q := QuietReport{
		RunID:     report.RunID,
		HasIssues: report.HasIssues(),
		Summary:   report.Summary,
	}
	seen := map[string]bool{}
	for _, s := range report.Results {
		for _, ff := range s.FileFailures {
			if !seen[ff.Source] {
				seen[ff.Source] = true
				q.FailedFiles = append(q.FailedFiles, ff.Source)
			}
		}
	}
	return q
}
