package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "lockstale",
		Short: "Lock closed GitHub issues and pull requests after a period of inactivity",
		Long: `Searches a repository for closed, unlocked issues and pull requests and
locks the conversation on every one idle for longer than the configured
number of days, while leaving a buffer of API quota for other automation.

Runs as a GitHub Action (inputs from INPUT_* variables, outputs to
$GITHUB_OUTPUT) or from a terminal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, opts)
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addSweepFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdHistory())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
