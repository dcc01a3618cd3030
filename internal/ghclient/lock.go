package ghclient

import (
	"context"
	"errors"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/lockstale/internal/model"
)

// LockThread locks the conversation on an issue or pull request. Pull
// requests share the issues endpoint. The lock_reason field is sent only
// when reason is non-empty.
func (c *Client) LockThread(ctx context.Context, repo model.Repository, number int, reason model.LockReason) error {
	opts := &gh.LockIssueOptions{}
	if !reason.IsNone() {
		opts.LockReason = string(reason)
	}

	_, err := c.client.Issues.Lock(ctx, repo.Owner, repo.Name, number, opts)
	return err
}

// ErrorMessage extracts the API's message from an error when there is one,
// falling back to err.Error().
func ErrorMessage(err error) string {
	var apiErr *gh.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
