package sqlite

import (
	"fmt"
	"time"
)

// dayFormat is how snapshot and detection dates are stored. Crawls operate on
// calendar days, never finer.
const dayFormat = "2006-01-02"

// formatDay renders a timestamp as a stored calendar day in UTC.
func formatDay(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

// parseDay parses a stored calendar day.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseDay(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(dayFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
