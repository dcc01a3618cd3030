package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/lockstale/internal/model"
)

// Model is the Bubble Tea model for the TUI progress display.
type Model struct {
	tasks       []Task
	spinner     spinner.Model
	progress    progress.Model
	events      <-chan Event
	done        bool
	repository  string
	dryRun      bool
	windowWidth int
	quotaHit    bool
	quota       model.QuotaStatus
	buffer      int
}

// doneMsg signals that all events have been processed.
type doneMsg struct{}

// ModelOption is a functional option for configuring a Model.
type ModelOption func(*Model)

// WithTasks sets the tasks to display in the TUI.
func WithTasks(tasks []Task) ModelOption {
	return func(m *Model) {
		m.tasks = tasks
	}
}

// WithRepository shows the repository being swept above the tasks.
func WithRepository(name string) ModelOption {
	return func(m *Model) {
		m.repository = name
	}
}

// WithDryRun marks the display as a dry run.
func WithDryRun(dryRun bool) ModelOption {
	return func(m *Model) {
		m.dryRun = dryRun
	}
}

// DefaultTasks returns the task list for a sweep.
func DefaultTasks() []Task {
	return []Task{
		NewTask(TaskQuota, "Checking rate limit"),
		NewTask(TaskFetch, "Searching closed threads"),
		NewTask(TaskClassify, "Classifying"),
		NewTask(TaskIssues, "Locking issues"),
		NewTask(TaskPullRequests, "Locking pull requests"),
	}
}

// NewModel creates a new TUI model.
func NewModel(events <-chan Event, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	p := progress.New(
		progress.WithScaledGradient(progressFrom, progressTo),
		progress.WithWidth(25),
		progress.WithoutPercentage(),
	)

	m := Model{
		tasks:    DefaultTasks(),
		spinner:  s,
		progress: p,
		events:   events,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.events),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case TaskEvent:
		var cmd tea.Cmd
		m, cmd = m.updateTask(msg)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case RateLimitEvent:
		m.quotaHit = true
		m.quota = msg.Quota
		m.buffer = msg.Buffer
		return m, waitForEvent(m.events)

	case DoneEvent:
		m.done = true
		return m, tea.Quit

	case doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// updateTask updates a task based on a TaskEvent.
func (m Model) updateTask(e TaskEvent) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for i := range m.tasks {
		if m.tasks[i].ID == e.Task {
			m.tasks[i].Status = e.Status
			if e.Message != "" {
				m.tasks[i].Message = e.Message
			}
			if e.Count > 0 {
				m.tasks[i].Count = e.Count
			}
			if e.Progress > 0 {
				m.tasks[i].Progress = e.Progress
				cmd = m.progress.SetPercent(e.Progress)
			}
			if e.Error != nil {
				m.tasks[i].Error = e.Error
			}
			break
		}
	}
	return m, cmd
}

// View renders the model.
func (m Model) View() string {
	var s strings.Builder

	if m.repository != "" {
		s.WriteString(fmt.Sprintf("  Sweeping %s", repoStyle.Render(m.repository)))
		if m.dryRun {
			s.WriteString(" " + dryRunStyle.Render("(dry run)"))
		}
		s.WriteString("\n\n")
	}

	for _, task := range m.tasks {
		s.WriteString(task.View(m.spinner.View(), m.progress) + "\n")
	}

	if m.quotaHit {
		s.WriteString(quotaStyle.Render(fmt.Sprintf("\n  Rate limit buffer reached (%d remaining, buffer %d), resets %s\n",
			m.quota.Remaining, m.buffer, m.quota.ResetHuman)))
	}

	// Only show cancel hint while running
	if !m.done {
		s.WriteString(footerStyle.Render("\n  Press Ctrl+C to cancel"))
	}
	s.WriteString("\n")

	return s.String()
}

// waitForEvent creates a command that waits for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return event
	}
}
