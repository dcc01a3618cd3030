// Package ghclient provides GitHub API client functionality.
package ghclient

import (
	"context"

	"github.com/spiffcs/lockstale/internal/model"
)

// QuotaReader reads remaining request quota for a rate limit resource.
type QuotaReader interface {
	RateLimit(ctx context.Context, resource string) (model.QuotaStatus, error)
}

// ThreadSearcher fetches pages of closed, unlocked threads.
type ThreadSearcher interface {
	SearchThreads(ctx context.Context, repo model.Repository, cursor string) (*model.ThreadPage, error)
}

// ThreadLocker applies a lock to a single thread.
type ThreadLocker interface {
	LockThread(ctx context.Context, repo model.Repository, number int, reason model.LockReason) error
}

// API is everything a sweep needs from GitHub.
// This interface enables mocking the GitHub client in unit tests.
type API interface {
	QuotaReader
	ThreadSearcher
	ThreadLocker
}

// Ensure Client implements API interface.
var _ API = (*Client)(nil)
