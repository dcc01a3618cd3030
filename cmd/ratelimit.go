package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/lockstale/config"
	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/model"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	var apiURL string
	var buffer int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long: `Display the current GitHub API rate limit status for the core, search and
GraphQL resources, and whether a sweep would start with the given buffer.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRateLimitStatus(cmd, apiURL, buffer)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", constants.DefaultAPIURL, "GitHub REST API URL")
	cmd.Flags().IntVar(&buffer, "buffer", constants.DefaultRateLimitBuffer, "Buffer to compare the core quota against")

	return cmd
}

func runRateLimitStatus(cmd *cobra.Command, apiURL string, buffer int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	token := cfg.GetGitHubToken()
	if token == "" {
		return fmt.Errorf("GitHub token not configured. Set the GITHUB_TOKEN environment variable")
	}

	client, err := ghclient.NewClient(cmd.Context(), token, ghclient.WithBaseURL(apiURL))
	if err != nil {
		return err
	}

	var statuses []model.QuotaStatus
	for _, resource := range []string{constants.ResourceCore, constants.ResourceSearch, constants.ResourceGraphQL} {
		q, err := client.RateLimit(cmd.Context(), resource)
		if err != nil {
			return fmt.Errorf("failed to get rate limits: %w", err)
		}
		statuses = append(statuses, q)
	}

	printRateLimits(cmd.OutOrStdout(), statuses, buffer, time.Now())
	return nil
}

func printRateLimits(w io.Writer, statuses []model.QuotaStatus, buffer int, now time.Time) {
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintln(w)

	for _, q := range statuses {
		resetIn := q.ResetAt.Sub(now).Round(time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		fmt.Fprintf(w, "%-8s %d/%d remaining (resets in %s)\n", q.Resource+":", q.Remaining, q.Limit, resetIn)

		if q.Resource == constants.ResourceCore && q.AtOrBelow(buffer) {
			fmt.Fprintf(w, "\nA sweep would be skipped: core quota is at or below the buffer of %d.\n", buffer)
		}
	}
}
