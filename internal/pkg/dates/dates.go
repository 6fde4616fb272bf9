// Package dates normalizes the date inputs accepted at the API boundary.
// Bare dates are anchored to noon UTC so that calendar arithmetic never
// crosses a day boundary from timezone conversion alone.
package dates

import (
	"time"

	"github.com/obraplan/obraplan/internal/pkg/apperr"
)

const dateOnly = "2006-01-02"

// Parse accepts either a bare YYYY-MM-DD date or an RFC3339 timestamp.
// Bare dates are returned anchored at 12:00 UTC.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(dateOnly, s); err == nil {
		return Normalize(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid date %q, want YYYY-MM-DD or RFC3339", s)
	}
	return t.UTC(), nil
}

// Normalize anchors t to 12:00 UTC on its calendar day.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

// ParseOptional parses s when non-empty, otherwise returns nil.
func ParseOptional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
