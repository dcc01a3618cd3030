// Package duration provides parsing for human-readable day counts.
package duration

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDays is the longest threshold ParseDays accepts, one hundred years.
const MaxDays = 36500

// daysPerUnit maps a unit suffix to its length in whole days.
var daysPerUnit = map[string]int{
	"d": 1, "day": 1, "days": 1,
	"w": 7, "wk": 7, "wks": 7, "week": 7, "weeks": 7,
	"mo": 30, "month": 30, "months": 30,
	"y": 365, "yr": 365, "yrs": 365, "year": 365, "years": 365,
}

// ParseDays parses an inactivity threshold such as "90", "90d", "12w",
// "3mo" or "1y" into whole days. A bare number is taken as days.
func ParseDays(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty duration (use e.g. 90, 30d, 12w, 3mo)")
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
		}
		if n > MaxDays {
			return 0, tooLong(s)
		}
		return n, nil
	}

	var n int
	var unit string
	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g. 90, 30d, 12w, 3mo)", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
	}

	mult, ok := daysPerUnit[unit]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
	if n > MaxDays/mult {
		return 0, tooLong(s)
	}
	return n * mult, nil
}

func tooLong(s string) error {
	return fmt.Errorf("invalid duration %q: longer than %d days", s, MaxDays)
}
