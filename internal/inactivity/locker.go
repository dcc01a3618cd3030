// Package inactivity decides which threads have been idle long enough to
// lock and locks them.
package inactivity

import (
	"context"
	"fmt"

	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/model"
)

// ThreadLocker locks one thread in the repository being swept.
type ThreadLocker interface {
	Lock(ctx context.Context, number int, reason model.LockReason) error
}

// Locker issues lock requests against a single repository.
type Locker struct {
	api  ghclient.ThreadLocker
	repo model.Repository
}

// NewLocker creates a Locker for repo.
func NewLocker(api ghclient.ThreadLocker, repo model.Repository) *Locker {
	return &Locker{api: api, repo: repo}
}

// Lock locks thread number with reason. A failure is logged with the API's
// message and returned so the caller can leave the thread out of its manifest.
func (l *Locker) Lock(ctx context.Context, number int, reason model.LockReason) error {
	log.Trace("locking thread", "repo", l.repo.FullName(), "number", number, "reason", reason.Display())

	if err := l.api.LockThread(ctx, l.repo, number, reason); err != nil {
		log.Error(fmt.Sprintf("Failed to lock issue/PR #%d: %s", number, ghclient.ErrorMessage(err)))
		return fmt.Errorf("failed to lock #%d: %w", number, err)
	}
	return nil
}
