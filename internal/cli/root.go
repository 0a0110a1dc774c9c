// Package cli provides the command-line interface for translog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/translog/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	commands.ExitCode = 0
	if err := NewRootCommand().Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "translog",
		Short: "Correlate and time workflow engine transitions from logs",
		Long: `translog is a batch analyzer for workflow engine logs.

It reports:
  - Transitions that started but never finished, per document
  - Transitions that ran longer than a threshold
  - Self-reported transition timings above a threshold
  - Transition and outbound request counts per time interval

Point it at log directories, describe the reports in a YAML file and
read what the engine was doing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
