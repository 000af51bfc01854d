package schedule

import (
	"errors"
	"time"
)

var ErrInvalidTime = errors.New("invalid time format")

// Window is the half-open time interval [Start, End) a class or request occupies.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow computes the window starting at start and spanning durationMin minutes.
func NewWindow(start time.Time, durationMin int) Window {
	return Window{
		Start: start,
		End:   start.Add(time.Duration(durationMin) * time.Minute),
	}
}

// ParseTime parses an RFC3339 instant. This is the only time representation
// accepted on the wire.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return t.UTC(), nil
}

// Overlaps reports whether two half-open windows intersect:
// a.Start < b.End && b.Start < a.End. Back-to-back windows do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Contains reports whether t falls within [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
