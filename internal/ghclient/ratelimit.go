package ghclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/model"
)

// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
var ErrRateLimited = errors.New("rate limited")

// RateLimitState tracks rate limit information observed on responses.
type RateLimitState struct {
	mu        sync.RWMutex
	limited   bool
	resetAt   time.Time
	resources map[string]model.QuotaStatus
}

// IsLimited returns true if we are currently rate limited.
func (s *RateLimitState) IsLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.limited {
		return false
	}

	// Check if rate limit has reset
	if time.Now().After(s.resetAt) {
		return false
	}

	return true
}

// SetLimited sets the rate limit state.
func (s *RateLimitState) SetLimited(limited bool, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = limited
	s.resetAt = resetAt
}

// Update records the headers seen for one resource.
func (s *RateLimitState) Update(resource string, remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resources == nil {
		s.resources = make(map[string]model.QuotaStatus)
	}
	s.resources[resource] = model.NewQuotaStatus(resource, limit, remaining, resetAt)
}

// Last returns the most recently observed status for a resource.
func (s *RateLimitState) Last(resource string) (model.QuotaStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.resources[resource]
	return q, ok
}

// RateLimits fetches the current GitHub API rate limit status for all resources.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// RateLimit returns the quota for a single resource ("core", "search" or
// "graphql"). An empty resource means "core".
func (c *Client) RateLimit(ctx context.Context, resource string) (model.QuotaStatus, error) {
	if resource == "" {
		resource = constants.ResourceCore
	}

	limits, err := c.RateLimits(ctx)
	if err != nil {
		return model.QuotaStatus{}, err
	}

	rate, err := pickRate(limits, resource)
	if err != nil {
		return model.QuotaStatus{}, err
	}

	return model.NewQuotaStatus(resource, rate.Limit, rate.Remaining, rate.Reset.Time), nil
}

func pickRate(limits *gh.RateLimits, resource string) (*gh.Rate, error) {
	var rate *gh.Rate
	switch resource {
	case constants.ResourceCore:
		rate = limits.Core
	case constants.ResourceSearch:
		rate = limits.Search
	case constants.ResourceGraphQL:
		rate = limits.GraphQL
	default:
		return nil, fmt.Errorf("unknown rate limit resource %q", resource)
	}
	if rate == nil {
		return nil, fmt.Errorf("rate limit response has no %q resource", resource)
	}
	return rate, nil
}
