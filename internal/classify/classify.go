// Package classify splits fetched threads by kind.
package classify

import "github.com/spiffcs/lockstale/internal/model"

// Partition is the result of Split. Every input thread lands in exactly one
// of the three slices, in its original order.
type Partition struct {
	Issues       []model.Thread
	PullRequests []model.Thread
	Unrecognized []model.Thread
}

// Total returns the number of threads across all three slices.
func (p Partition) Total() int {
	return len(p.Issues) + len(p.PullRequests) + len(p.Unrecognized)
}

// ForCategory returns the slice processed under c.
func (p Partition) ForCategory(c model.Category) []model.Thread {
	switch c {
	case model.CategoryIssues:
		return p.Issues
	case model.CategoryPullRequests:
		return p.PullRequests
	default:
		return nil
	}
}

// Split partitions threads by Kind. It does not modify threads.
func Split(threads []model.Thread) Partition {
	p := Partition{
		Issues:       []model.Thread{},
		PullRequests: []model.Thread{},
	}
	for _, t := range threads {
		switch t.Kind {
		case model.KindIssue:
			p.Issues = append(p.Issues, t)
		case model.KindPullRequest:
			p.PullRequests = append(p.PullRequests, t)
		default:
			p.Unrecognized = append(p.Unrecognized, t)
		}
	}
	return p
}
