package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/tendwell/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// Calendar is the single source of "today" for the whole engine. Every
// component that compares dates must share one Calendar so that streaks and the
// chapter throttle agree on where midnight is.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar returns a calendar in loc driven by the wall clock.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc, now: time.Now}
}

// NewCalendarForTimezone resolves timezone with LoadLocation.
func NewCalendarForTimezone(timezone string) (*Calendar, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return NewCalendar(loc), nil
}

// WithClock returns a copy of the calendar that reads the time from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

func (c *Calendar) Location() *time.Location { return c.loc }

// Now returns the current instant in the calendar's location.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns midnight of the current calendar day.
func (c *Calendar) Today() time.Time {
	return c.StartOfDay(c.Now())
}

// StartOfDay truncates t to midnight in the calendar's location.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// SameDay reports whether a and b fall on the same calendar day.
func (c *Calendar) SameDay(a, b time.Time) bool {
	return c.StartOfDay(a).Equal(c.StartOfDay(b))
}

// DaysBetween returns the number of calendar days from a to b (negative when b
// is before a). It counts date changes, so a 23 or 25 hour DST day is still one.
func (c *Calendar) DaysBetween(a, b time.Time) int {
	a, b = a.In(c.loc), b.In(c.loc)
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / constants.Day)
}

// StartOfWeek returns midnight of the Sunday that begins t's week.
func (c *Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// SameWeek reports whether a and b fall in the same Sunday-first calendar week.
func (c *Calendar) SameWeek(a, b time.Time) bool {
	return c.StartOfWeek(a).Equal(c.StartOfWeek(b))
}

// Tomorrow returns midnight of the next calendar day.
func (c *Calendar) Tomorrow() time.Time {
	return c.Today().AddDate(0, 0, 1)
}

// FormatDate renders t as YYYY-MM-DD in the calendar's location.
func (c *Calendar) FormatDate(t time.Time) string {
	return t.In(c.loc).Format(constants.DateFormat)
}
