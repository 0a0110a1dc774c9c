package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/translog/pkg/analyzer"
	"github.com/ccollicutt/translog/pkg/config"
	"github.com/ccollicutt/translog/pkg/output"
	"github.com/ccollicutt/translog/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output      string
	TimeRange   string
	Reports     []string
	Verbose     bool
	Quiet       bool
	LogLevel    string
	Workers     int
	MetricsFile string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <config-file>",
		Short: "Analyze workflow engine logs",
		Long: `Analyze log files according to the reports defined in the configuration file.

Reports:
  - lifecycle: match transition starts with their ends per document, list
    transitions that never finished and those that ran too long
  - detail: list transitions whose logged duration exceeds a threshold
  - request: count outbound requests by type and time interval

Exit codes:
  0 - No issues found
  1 - Dangling or long-running transitions, or unreadable files
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.TimeRange, "time-range", "", "Limit analysis to a window: a duration back from now (e.g. 2h) or START,END")
	cmd.Flags().StringSliceVar(&opts.Reports, "report", nil, "Run specific report(s) only (can be repeated)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show busy entities, interval counts and sources")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "warn", "Log level on stderr (debug|info|warn|error)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Files parsed concurrently (overrides config)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(cmd.ErrOrStderr(), opts.LogLevel)
	if err != nil {
		return err
	}
	if _, err := config.ParseWebhookTrigger(opts.WebhookTrigger); err != nil {
		return fmt.Errorf("--webhook-trigger: %w", err)
	}

	// Load configuration
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	loc := cfg.TimestampFormat.CompiledLocation()

	analyzerOpts := []analyzer.AnalyzerOption{
		analyzer.WithLogger(logger),
		analyzer.WithWorkers(opts.Workers),
	}

	if opts.TimeRange != "" {
		start, end, err := parseTimeRange(opts.TimeRange, loc, time.Now())
		if err != nil {
			return fmt.Errorf("invalid time-range %q: %w", opts.TimeRange, err)
		}
		analyzerOpts = append(analyzerOpts, analyzer.WithTimeRange(start, end))
	}

	if len(opts.Reports) > 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithReportFilter(opts.Reports))
	}

	formatter, err := createFormatter(opts, loc)
	if err != nil {
		return err
	}

	a, err := analyzer.NewAnalyzer(cfg, analyzerOpts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, configPath, loc)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, logger, cfg, opts, report)

	if opts.MetricsFile != "" {
		if err := a.Metrics().WriteTextfile(opts.MetricsFile); err != nil {
			return err
		}
	}

	// Set exit code based on results
	if report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// timeRangeLayouts are accepted for absolute time range bounds.
var timeRangeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimeRange accepts either a duration counted back from now or two
// comma-separated timestamps interpreted in loc.
func parseTimeRange(s string, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	if from, to, ok := strings.Cut(s, ","); ok {
		start, err := parseBound(strings.TrimSpace(from), loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := parseBound(strings.TrimSpace(to), loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, errors.New("end is before start")
		}
		return start, end, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if d <= 0 {
		return time.Time{}, time.Time{}, errors.New("duration must be positive")
	}
	return now.Add(-d), now, nil
}

func parseBound(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeRangeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func createFormatter(opts *AnalyzeOptions, loc *time.Location) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose:  opts.Verbose,
		Quiet:    opts.Quiet,
		Location: loc,
	}

	switch opts.Output {
	case "text":
		return output.NewTextFormatter(formatOpts), nil
	case "json":
		return output.NewJSONFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged but don't fail the analysis.
func sendWebhooks(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, report.HasIssues()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
			Retries: wh.Retries,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			logger.Info("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			logger.Warn("webhook failed", "webhook", name, "attempts", resp.Attempts, "error", resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		// runAnalyze has already rejected unknown triggers
		trigger, err := config.ParseWebhookTrigger(opts.WebhookTrigger)
		if err != nil {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on trigger and issues.
func shouldFireWebhook(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasIssues
	}
}
