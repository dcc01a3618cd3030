// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the lockstale application.
package constants

import "time"

// Sweep defaults
const (
	// DefaultRateLimitBuffer is the number of requests left untouched for
	// other automation sharing the same token.
	DefaultRateLimitBuffer = 100

	// DefaultInactiveDays is how long a closed thread must be idle before
	// it is locked.
	DefaultInactiveDays = 90

	// DefaultLockReason is applied when no reason is configured.
	DefaultLockReason = "resolved"
)

// GitHub API constants
const (
	// DefaultAPIURL is the REST base URL for github.com.
	DefaultAPIURL = "https://api.github.com/"

	// SearchPageSize is the number of threads requested per search page
	// (the GraphQL maximum).
	SearchPageSize = 100

	// ResourceCore is the rate limit bucket for REST calls such as locking.
	ResourceCore = "core"

	// ResourceSearch is the rate limit bucket for the REST search API.
	ResourceSearch = "search"

	// ResourceGraphQL is the rate limit bucket for GraphQL queries,
	// which is what the thread search uses.
	ResourceGraphQL = "graphql"

	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged by the transport.
	RateLimitLowWatermark = 100
)

// Time constants
const (
	// Day is the length of one inactivity day.
	Day = 24 * time.Hour

	// TUIUpdateInterval is the minimum time between TUI progress updates.
	TUIUpdateInterval = 50 * time.Millisecond
)

// History constants
const (
	// MaxHistoryRecords is the number of runs retained in the history file.
	MaxHistoryRecords = 1000

	// DefaultHistoryLimit is how many runs `lockstale history` prints.
	DefaultHistoryLimit = 20
)
