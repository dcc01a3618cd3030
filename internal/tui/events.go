package tui

import "github.com/spiffcs/lockstale/internal/model"

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskQuota        TaskID = iota // Admission quota check
	TaskFetch                      // Paging through the repository search
	TaskClassify                   // Splitting threads into issues and pull requests
	TaskIssues                     // Locking stale issues
	TaskPullRequests               // Locking stale pull requests
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional message (e.g., "12/30" for progress)
	Count    int     // Count of items (e.g., threads fetched)
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports that the quota buffer was reached and work stopped
// early.
type RateLimitEvent struct {
	Quota  model.QuotaStatus
	Buffer int
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
