package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the display readable on light terminals.
var (
	colorMuted   = lipgloss.AdaptiveColor{Light: "245", Dark: "240"}
	colorText    = lipgloss.AdaptiveColor{Light: "236", Dark: "252"}
	colorDetail  = lipgloss.AdaptiveColor{Light: "242", Dark: "244"}
	colorLocked  = lipgloss.AdaptiveColor{Light: "#6d28d9", Dark: "#a78bfa"}
	colorFailure = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	colorQuota   = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	colorRepo    = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#93c5fd"}

	// progress bar gradient, locked shade first
	progressFrom = "#a78bfa"
	progressTo   = "#4c1d95"
)

var (
	iconPending  = lipgloss.NewStyle().Foreground(colorMuted).Render("○")
	iconComplete = lipgloss.NewStyle().Foreground(colorLocked).Render("●")
	iconError    = lipgloss.NewStyle().Foreground(colorFailure).Render("✗")
	iconSkipped  = lipgloss.NewStyle().Foreground(colorMuted).Render("–")

	taskNameStyle = lipgloss.NewStyle().Foreground(colorText)
	taskDimStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	messageStyle  = lipgloss.NewStyle().Foreground(colorDetail)
	errorStyle    = lipgloss.NewStyle().Foreground(colorFailure)
	spinnerStyle  = lipgloss.NewStyle().Foreground(colorLocked)

	// skipped tasks say why instead of staying blank
	skippedStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	repoStyle = lipgloss.NewStyle().
			Foreground(colorRepo).
			Bold(true)

	quotaStyle = lipgloss.NewStyle().
			Foreground(colorQuota).
			Bold(true)

	dryRunStyle = lipgloss.NewStyle().
			Foreground(colorQuota).
			Italic(true)
)

// StatusIcon returns the icon for a task status. Running tasks show the
// current spinner frame.
func StatusIcon(status TaskStatus, spinnerFrame string) string {
	switch status {
	case StatusRunning:
		return spinnerStyle.Render(spinnerFrame)
	case StatusComplete:
		return iconComplete
	case StatusError:
		return iconError
	case StatusSkipped:
		return iconSkipped
	default:
		return iconPending
	}
}
