package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spiffcs/lockstale/internal/model"
)

func TestTaskID(t *testing.T) {
	// Verify task IDs are distinct
	ids := []TaskID{TaskQuota, TaskFetch, TaskClassify, TaskIssues, TaskPullRequests}
	seen := make(map[TaskID]bool)

	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate task ID: %d", id)
		}
		seen[id] = true
	}
}

func TestTaskStatus(t *testing.T) {
	// Verify statuses are distinct
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}
	seen := make(map[TaskStatus]bool)

	for _, status := range statuses {
		if seen[status] {
			t.Errorf("duplicate status: %d", status)
		}
		seen[status] = true
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskFetch, "Searching closed threads")

	if task.ID != TaskFetch {
		t.Errorf("expected ID %d, got %d", TaskFetch, task.ID)
	}
	if task.Name != "Searching closed threads" {
		t.Errorf("expected name 'Searching closed threads', got %q", task.Name)
	}
	if task.Status != StatusPending {
		t.Errorf("expected status %d, got %d", StatusPending, task.Status)
	}
}

func TestTaskEvent(t *testing.T) {
	event := TaskEvent{
		Task:     TaskIssues,
		Status:   StatusRunning,
		Message:  "10/20",
		Count:    10,
		Progress: 0.5,
	}

	// Verify it implements Event interface
	var _ Event = event

	if event.Task != TaskIssues {
		t.Errorf("expected task %d, got %d", TaskIssues, event.Task)
	}
	if event.Progress != 0.5 {
		t.Errorf("expected progress 0.5, got %f", event.Progress)
	}
}

func TestDoneEvent(t *testing.T) {
	event := DoneEvent{}

	// Verify it implements Event interface
	var _ Event = event
}

func TestSendEvent(t *testing.T) {
	ch := make(chan Event, 1)

	event := TaskEvent{Task: TaskQuota, Status: StatusComplete}
	SendEvent(ch, event)

	select {
	case received := <-ch:
		if te, ok := received.(TaskEvent); ok {
			if te.Task != TaskQuota {
				t.Errorf("expected task %d, got %d", TaskQuota, te.Task)
			}
		} else {
			t.Error("expected TaskEvent type")
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestSendEventNilChannel(t *testing.T) {
	// Should not panic with nil channel
	SendEvent(nil, TaskEvent{})
}

func TestSendTaskEvent(t *testing.T) {
	ch := make(chan Event, 1)

	SendTaskEvent(ch, TaskPullRequests, StatusRunning,
		WithMessage("processing"),
		WithCount(42),
		WithProgress(0.75),
	)

	select {
	case received := <-ch:
		te, ok := received.(TaskEvent)
		if !ok {
			t.Fatal("expected TaskEvent type")
		}
		if te.Task != TaskPullRequests {
			t.Errorf("expected task %d, got %d", TaskPullRequests, te.Task)
		}
		if te.Message != "processing" {
			t.Errorf("expected message 'processing', got %q", te.Message)
		}
		if te.Count != 42 {
			t.Errorf("expected count 42, got %d", te.Count)
		}
		if te.Progress != 0.75 {
			t.Errorf("expected progress 0.75, got %f", te.Progress)
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestSendTaskEventFinalStatusWaitsForRoom(t *testing.T) {
	ch := make(chan Event, 1)
	SendTaskEvent(ch, TaskIssues, StatusRunning, WithProgress(0.5))

	// channel is full, so a further running update is dropped
	SendTaskEvent(ch, TaskIssues, StatusRunning, WithProgress(0.6))

	go func() {
		time.Sleep(20 * time.Millisecond)
		<-ch
	}()
	SendTaskEvent(ch, TaskIssues, StatusComplete, WithMessage("locked 3 of 5"))

	select {
	case received := <-ch:
		te := received.(TaskEvent)
		if te.Status != StatusComplete || te.Message != "locked 3 of 5" {
			t.Errorf("got %+v, want the completed event", te)
		}
	case <-time.After(settleTimeout):
		t.Fatal("completed event was not delivered")
	}
}

func TestWithError(t *testing.T) {
	ch := make(chan Event, 1)
	testErr := errors.New("test error")

	SendTaskEvent(ch, TaskFetch, StatusError, WithError(testErr))

	select {
	case received := <-ch:
		te, ok := received.(TaskEvent)
		if !ok {
			t.Fatal("expected TaskEvent type")
		}
		if te.Error != testErr {
			t.Errorf("expected error %v, got %v", testErr, te.Error)
		}
	default:
		t.Error("expected event in channel")
	}
}

func TestShouldUseTUI(t *testing.T) {
	// Just verify it returns a boolean and doesn't panic
	// The actual result depends on the environment (TTY, CI vars)
	result := ShouldUseTUI()
	_ = result // Use the result to avoid compiler warning
}

func TestStatusIcon(t *testing.T) {
	// Test that StatusIcon returns non-empty strings for all statuses
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}

	for _, status := range statuses {
		icon := StatusIcon(status, ">")
		if icon == "" {
			t.Errorf("StatusIcon returned empty string for status %d", status)
		}
	}
}

func TestTaskViewSkipped(t *testing.T) {
	task := NewTask(TaskFetch, "Search closed threads")
	task.Status = StatusSkipped
	task.Message = "stale message"

	got := task.View(">", progress.New())
	if !strings.Contains(got, "skipped") {
		t.Errorf("skipped task view = %q, want it to say skipped", got)
	}
	if strings.Contains(got, "stale message") {
		t.Errorf("skipped task view = %q, should not show the message", got)
	}
}

func TestModelUpdateTask(t *testing.T) {
	ch := make(chan Event)
	m := NewModel(ch, WithRepository("octo/hello"))

	updated, _ := m.Update(TaskEvent{Task: TaskFetch, Status: StatusRunning, Count: 200})
	got := updated.(Model)

	for _, task := range got.tasks {
		if task.ID != TaskFetch {
			continue
		}
		if task.Status != StatusRunning || task.Count != 200 {
			t.Errorf("fetch task = %+v", task)
		}
	}
}

func TestModelRateLimitEvent(t *testing.T) {
	ch := make(chan Event)
	m := NewModel(ch, WithRepository("octo/hello"), WithDryRun(true))

	q := model.NewQuotaStatus("graphql", 5000, 40, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	updated, _ := m.Update(RateLimitEvent{Quota: q, Buffer: 100})
	view := updated.(Model).View()

	for _, want := range []string{"octo/hello", "dry run", "Rate limit buffer reached", "Fri, 01 Mar 2024 12:30:00 UTC"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelDone(t *testing.T) {
	m := NewModel(make(chan Event))
	updated, cmd := m.Update(DoneEvent{})
	if !updated.(Model).done {
		t.Error("expected model to be done")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if strings.Contains(updated.(Model).View(), "Ctrl+C") {
		t.Error("cancel hint should disappear when done")
	}
}

func TestTaskView(t *testing.T) {
	prog := NewModel(make(chan Event)).progress

	tests := []struct {
		name string
		task Task
		want string
	}{
		{"pending", NewTask(TaskIssues, "Locking issues"), "Locking issues"},
		{"message", Task{ID: TaskIssues, Name: "Locking issues", Status: StatusComplete, Message: "3 locked"}, "3 locked"},
		{"count", Task{ID: TaskFetch, Name: "Searching", Status: StatusComplete, Count: 120}, "(120)"},
		{"progress", Task{ID: TaskIssues, Name: "Locking issues", Status: StatusRunning, Progress: 0.5, Message: "5/10"}, "50%"},
		{"error", Task{ID: TaskFetch, Name: "Searching", Status: StatusError, Error: errors.New("boom")}, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.View(">", prog); !strings.Contains(got, tt.want) {
				t.Errorf("View() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
