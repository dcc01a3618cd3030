package model

import (
	"fmt"
	"strings"
)

// LockReason is the reason GitHub shows on a locked conversation.
// See: https://docs.github.com/en/rest/issues/issues#lock-an-issue
type LockReason string

const (
	LockReasonNone      LockReason = ""
	LockReasonOffTopic  LockReason = "off-topic"
	LockReasonTooHeated LockReason = "too heated"
	LockReasonResolved  LockReason = "resolved"
	LockReasonSpam      LockReason = "spam"
)

// AllLockReasons contains every non-empty reason GitHub accepts.
var AllLockReasons = []LockReason{
	LockReasonOffTopic,
	LockReasonTooHeated,
	LockReasonResolved,
	LockReasonSpam,
}

// ParseLockReason validates a lock reason. The empty string is valid and
// means the lock request carries no reason.
func ParseLockReason(s string) (LockReason, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LockReasonNone, nil
	}
	for _, r := range AllLockReasons {
		if string(r) == s {
			return r, nil
		}
	}
	return LockReasonNone, fmt.Errorf("invalid lock reason %q (must be one of: %s, or empty)", s, joinReasons())
}

// IsNone reports whether the request should omit the reason field.
func (r LockReason) IsNone() bool {
	return r == LockReasonNone
}

// Display returns the reason for summaries.
func (r LockReason) Display() string {
	if r.IsNone() {
		return "none"
	}
	return string(r)
}

func joinReasons() string {
	parts := make([]string, len(AllLockReasons))
	for i, r := range AllLockReasons {
		parts[i] = fmt.Sprintf("%q", r)
	}
	return strings.Join(parts, ", ")
}

// Category is one of the two thread lists the sweep processes independently.
type Category string

const (
	CategoryIssues       Category = "issues"
	CategoryPullRequests Category = "pull-requests"
)

// AllCategories lists categories in processing and reporting order.
var AllCategories = []Category{CategoryIssues, CategoryPullRequests}

// OutputKey returns the name the category's manifest is published under.
func (c Category) OutputKey() string {
	switch c {
	case CategoryIssues:
		return "locked-issues"
	case CategoryPullRequests:
		return "locked-prs"
	default:
		return "locked-" + string(c)
	}
}

// Noun returns the capitalised singular used in log lines ("Issue #12 ...").
func (c Category) Noun() string {
	switch c {
	case CategoryIssues:
		return "Issue"
	case CategoryPullRequests:
		return "Pull request"
	default:
		return "Thread"
	}
}

// Display returns a human-friendly plural.
func (c Category) Display() string {
	switch c {
	case CategoryIssues:
		return "Issues"
	case CategoryPullRequests:
		return "Pull requests"
	default:
		return string(c)
	}
}
