package collector

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for window boundaries
const DateLayout = "2006-01-02"

// ErrInvalidRange means the start date falls after the end date.
// Detected before any network call.
var ErrInvalidRange = errors.New("start date is after end date")

// DateWindow is a UTC calendar-day interval. Both endpoints are
// inclusive: a replay uploaded any time during the end date is inside
// the window.
type DateWindow struct {
	Start time.Time // 00:00:00 UTC of the first day
	End   time.Time // 00:00:00 UTC of the last day
}

// ParseWindow builds a window from two YYYY-MM-DD strings
func ParseWindow(startDate, endDate string) (DateWindow, error) {
	start, err := time.ParseInLocation(DateLayout, startDate, time.UTC)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", startDate)
	}
	end, err := time.ParseInLocation(DateLayout, endDate, time.UTC)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", endDate)
	}
	if start.After(end) {
		return DateWindow{}, fmt.Errorf("%s > %s: %w", startDate, endDate, ErrInvalidRange)
	}
	return DateWindow{Start: start, End: end}, nil
}

// DefaultRange returns the default window boundaries for a given
// instant: the seven days up to and including today UTC. The caller
// supplies the clock so tests can pin it.
func DefaultRange(now time.Time) (startDate, endDate string) {
	today := now.UTC()
	return today.AddDate(0, 0, -7).Format(DateLayout), today.Format(DateLayout)
}

// StartUnix is the inclusive lower bound in unix seconds
func (w DateWindow) StartUnix() int64 {
	return w.Start.Unix()
}

// EndExclusiveUnix is the exclusive upper bound in unix seconds:
// midnight after the last day of the window
func (w DateWindow) EndExclusiveUnix() int64 {
	return w.End.AddDate(0, 0, 1).Unix()
}

// Contains reports whether a unix timestamp falls inside the window
func (w DateWindow) Contains(ts int64) bool {
	return ts >= w.StartUnix() && ts < w.EndExclusiveUnix()
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}
