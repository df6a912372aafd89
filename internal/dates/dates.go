package dates

import (
	"fmt"
	"strings"
	"time"
)

// DayFormat is the serialized form of an activity date.
const DayFormat = "2006-01-02"

// layouts are tried in order by Parse. The four source feeds disagree on
// date shape; this set covers every layout they export.
var layouts = []string{
	DayFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// FormatError reports a date value no accepted layout could parse.
// Record-level: callers drop the offending row and continue.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Value)
}

// Parse converts a raw date value into a calendar date (UTC, zero clock).
// Any clock component in the raw value is truncated away.
func Parse(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, &FormatError{Value: raw}
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, &FormatError{Value: raw}
}

// YearMonth returns the YYYY-MM label for a date.
func YearMonth(t time.Time) string {
	return t.Format("2006-01")
}

// Window is a rolling retention window of whole calendar months anchored
// on the run's reference instant, not on anything observed in the data.
type Window struct {
	Months    int       // whole months to retain; 0 keeps the reference month only
	Reference time.Time // run start, or a configured override
}

// Cutoff returns the window's inclusive lower bound: the first of the
// reference month moved back Months calendar months. Normalizing the day
// to the 1st before the subtraction avoids end-of-month arithmetic.
func (w Window) Cutoff() time.Time {
	first := time.Date(w.Reference.Year(), w.Reference.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -w.Months, 0)
}

// Contains reports whether a date falls inside the window. The lower
// bound is inclusive and there is no upper bound, so future-dated
// records are retained.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Cutoff())
}
