// Package model contains domain types for the lockstale application.
// These types are independent of any external GitHub library.
package model

import (
	"fmt"
	"time"
)

// ThreadKind is the discriminant GitHub returns as __typename for a search result.
type ThreadKind string

const (
	KindIssue       ThreadKind = "Issue"
	KindPullRequest ThreadKind = "PullRequest"
)

// Thread is a closed, unlocked issue or pull request returned by the
// repository search. Threads exist only for the duration of one run.
type Thread struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	Kind      ThreadKind `json:"kind"`
	Locked    bool       `json:"locked"`
}

// ThreadPage is one page of search results.
type ThreadPage struct {
	Threads     []Thread
	HasNextPage bool
	EndCursor   string
}

// LockRecord is a manifest entry for a thread that was actually locked.
type LockRecord struct {
	Number int    `json:"number"`
	Title  string `json:"title"`

	// InactiveDays is kept for summaries only and never leaves the process
	// as part of a manifest.
	InactiveDays float64 `json:"-"`
}

// QuotaStatus is a snapshot of one GitHub rate limit resource.
// A zero value means "unknown" and is treated as exhausted.
type QuotaStatus struct {
	Resource   string    `json:"resource"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"resetAt"`
	ResetHuman string    `json:"resetHuman"`
}

// NewQuotaStatus builds a QuotaStatus and derives its human-readable reset time.
func NewQuotaStatus(resource string, limit, remaining int, resetAt time.Time) QuotaStatus {
	return QuotaStatus{
		Resource:   resource,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		ResetHuman: HumanResetTime(resetAt),
	}
}

// HumanResetTime formats a reset time for log and summary messages.
func HumanResetTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC1123)
}

// AtOrBelow reports whether the remaining quota has reached the buffer.
func (q QuotaStatus) AtOrBelow(buffer int) bool {
	return q.Remaining <= buffer
}

// Repository identifies the repository being swept.
type Repository struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether no repository was configured.
func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// Validate checks that both parts of the repository are present.
func (r Repository) Validate() error {
	if r.IsZero() {
		return fmt.Errorf("no repository configured")
	}
	if r.Owner == "" || r.Name == "" {
		return fmt.Errorf("repository must be in owner/name form, got %q", r.FullName())
	}
	return nil
}

func (r Repository) String() string {
	return r.FullName()
}
