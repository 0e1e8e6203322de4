package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbook/internal/domain"
)

// Layouts without a zone are read in the server location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a valid timestamp", domain.ErrInvalidInput, value)
}

// parseDate returns midnight of the calendar day named by value, in loc.
// A full timestamp is first converted to loc and truncated to its day.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return d, nil
	}
	t, err := parseTimestamp(value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a valid date", domain.ErrInvalidInput, value)
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}
