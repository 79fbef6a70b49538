package schedule

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical day key format
const DateKeyLayout = "2006-01-02"

// Direction moves the selected day
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// ParseDirection accepts "next"/"prev" (and "previous")
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "next":
		return Next, nil
	case "prev", "previous":
		return Prev, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// DateKey returns the YYYY-MM-DD key of t read in t's own location. It
// never converts to UTC, so late-evening local times keep their local day.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a key as a calendar day in loc
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", key)
	}
	return Day(t), nil
}

// Day normalises t to noon of its calendar day. Noon exists on every day
// in every zone, so DST transitions never push the result onto another day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// Shift moves t one calendar day in dir
func Shift(t time.Time, dir Direction) time.Time {
	return Day(t).AddDate(0, 0, int(dir))
}
