package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/format"
	"github.com/spiffcs/lockstale/internal/history"
)

// NewCmdHistory creates the history command with subcommands.
func NewCmdHistory() *cobra.Command {
	var limit int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past sweeps",
		Long:  `Show the most recent sweeps recorded on this machine, oldest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit, outputFormat)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", constants.DefaultHistoryLimit, "Number of runs to show (0 for all)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")

	cmd.AddCommand(newCmdHistoryClear())
	cmd.AddCommand(newCmdHistoryPath())

	return cmd
}

// newCmdHistoryClear creates the history clear subcommand.
func newCmdHistoryClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the run history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.NewStore()
			if err != nil {
				return fmt.Errorf("failed to access history: %w", err)
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
}

// newCmdHistoryPath creates the history path subcommand.
func newCmdHistoryPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the history file location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.NewStore()
			if err != nil {
				return fmt.Errorf("failed to access history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	}
}

func runHistory(cmd *cobra.Command, limit int, outputFormat string) error {
	store, err := history.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access history: %w", err)
	}
	records := store.Recent(limit)

	w := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		if records == nil {
			records = []history.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "table", "":
		printHistory(w, records, time.Now())
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be table or json)", outputFormat)
	}
}

func printHistory(w io.Writer, records []history.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	header := color.New(color.Bold)
	header.Fprintf(w, "%-8s %-28s %-9s %7s %7s %5s %6s %8s\n",
		"WHEN", "REPOSITORY", "STATE", "ISSUES", "PRS", "FAIL", "CORE", "TOOK")

	anyDryRun := false
	for _, r := range records {
		state := r.State
		if r.DryRun {
			state += "*"
			anyDryRun = true
		}
		fmt.Fprintf(w, "%-8s %s %-9s %7d %7d %5d %6d %8s\n",
			format.FormatAge(now.Sub(r.Timestamp)),
			format.Fit(r.Repository, 28),
			state,
			r.LockedIssues,
			r.LockedPRs,
			r.Failed,
			r.CoreRemaining,
			format.FormatElapsed(time.Duration(r.DurationMs)*time.Millisecond),
		)
		if r.Error != "" {
			fmt.Fprintf(w, "         %s\n", color.RedString(r.Error))
		}
	}
	if anyDryRun {
		fmt.Fprintln(w, "\n* dry run")
	}
}
