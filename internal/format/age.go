package format

import (
	"fmt"
	"math"
	"time"
)

// FormatAge formats a duration as a human-readable age string.
// Uses compact format: "now", "5m", "2h", "3d", "2w", "3mo", "1y".
func FormatAge(d time.Duration) string {
	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	switch {
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", days/7)
	case days < 365:
		return fmt.Sprintf("%dmo", days/30)
	default:
		return fmt.Sprintf("%dy", days/365)
	}
}

// FormatDays renders a fractional day count for tables, e.g. "31.5d".
// One decimal is kept below 10 days, none above.
func FormatDays(days float64) string {
	if days < 10 {
		return fmt.Sprintf("%.1fd", math.Floor(days*10)/10)
	}
	return fmt.Sprintf("%dd", int(days))
}

// FormatElapsed prints a run duration rounded for humans, e.g. "1.2s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
