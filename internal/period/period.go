// Package period formats and parses the monthly grouping keys used by
// summaries ("2025-12").
package period

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month returns the period key for a date, like "2025-12".
func Month(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(monthLayout)
}

// Parse parses a period key back into the first instant of the month.
func Parse(key string) (time.Time, error) {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q: %w", key, err)
	}
	return t, nil
}
