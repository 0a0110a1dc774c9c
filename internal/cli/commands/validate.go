package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/translog/pkg/config"
	"github.com/ccollicutt/translog/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a translog configuration file without running analysis.

Checks:
  - YAML syntax
  - Required fields and report types
  - Timestamp layout and location
  - Webhook endpoints
  - Log file discovery per report (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Log sources: %d\n", len(cfg.LogSources))
	fmt.Fprintf(out, "  Reports:     %d\n", len(cfg.Reports))
	fmt.Fprintf(out, "  Timestamps:  %q in %s\n", cfg.TimestampFormat.Layout, cfg.TimestampFormat.CompiledLocation())

	fmt.Fprintf(out, "\nReports:\n")
	for i := range cfg.Reports {
		report := &cfg.Reports[i]
		fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, report.Type, report.Name)
		if report.Description != "" {
			fmt.Fprintf(out, "     %s\n", report.Description)
		}

		// Discovery problems are warnings only
		files, err := parser.Discover(cfg.SourcesFor(report), report.FilePrefix, cfg.Exclude)
		switch {
		case err != nil:
			fmt.Fprintf(out, "     Warning: %v\n", err)
		case len(files) == 0:
			fmt.Fprintf(out, "     Warning: no files with prefix %q\n", report.FilePrefix)
		default:
			fmt.Fprintf(out, "     Log files matched: %d\n", len(files))
			for _, f := range files {
				fmt.Fprintf(out, "       - %s\n", f)
			}
		}
	}

	return nil
}
