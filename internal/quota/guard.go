// Package quota checks how much of the GitHub request budget is left.
package quota

import (
	"context"
	"time"

	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/model"
)

// Guard reads remaining quota before the sweep spends any of it.
type Guard struct {
	api ghclient.QuotaReader
}

// NewGuard creates a Guard backed by api.
func NewGuard(api ghclient.QuotaReader) *Guard {
	return &Guard{api: api}
}

// Check returns the quota for resource ("core" when empty). A failed query
// is logged and reported as a zero status, which every caller treats as
// exhausted.
func (g *Guard) Check(ctx context.Context, resource string) model.QuotaStatus {
	if resource == "" {
		resource = constants.ResourceCore
	}

	q, err := g.api.RateLimit(ctx, resource)
	if err != nil {
		log.Error("failed to check rate limit", "resource", resource, "error", err)
		return model.NewQuotaStatus(resource, 0, 0, time.Time{})
	}

	log.Info("rate limit",
		"resource", q.Resource,
		"remaining", q.Remaining,
		"limit", q.Limit,
		"resets", q.ResetHuman)
	return q
}

// Exhausted checks resource and reports whether its remaining quota is at or
// below buffer.
func (g *Guard) Exhausted(ctx context.Context, resource string, buffer int) (model.QuotaStatus, bool) {
	q := g.Check(ctx, resource)
	return q, q.AtOrBelow(buffer)
}
