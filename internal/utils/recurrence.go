package utils

import (
	"time"

	"github.com/julianstephens/tendwell/internal/models"
)

// IsActiveOn determines if a habit is eligible to be completed on the given
// day based on its frequency. It is a pure function of the habit's last
// completion and day; nothing is cached on the habit.
func IsActiveOn(cal *Calendar, habit models.Habit, day time.Time) bool {
	switch habit.Frequency.Kind {
	case models.FrequencyDaily:
		return true
	case models.FrequencyWeekdays:
		wd := day.In(cal.Location()).Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case models.FrequencyWeekends:
		wd := day.In(cal.Location()).Weekday()
		return wd == time.Saturday || wd == time.Sunday
	case models.FrequencyWeekly:
		if habit.LastCompletedDate == nil {
			return true
		}
		return !cal.SameWeek(*habit.LastCompletedDate, day)
	case models.FrequencyCustom:
		if habit.LastCompletedDate == nil {
			return true
		}
		return cal.DaysBetween(*habit.LastCompletedDate, day) >= habit.Frequency.Days
	default:
		return false
	}
}

// ContinuesStreak reports whether completing on day, with the previous
// completion on last, extends the streak. Consecutive calendar days always do;
// for weekday habits a Friday followed by the next Monday does too, since the
// weekend is not eligible.
func ContinuesStreak(cal *Calendar, freq models.Frequency, last, day time.Time) bool {
	gap := cal.DaysBetween(last, day)
	if gap == 1 {
		return true
	}
	if freq.Kind == models.FrequencyWeekdays && gap == 3 {
		return last.In(cal.Location()).Weekday() == time.Friday &&
			day.In(cal.Location()).Weekday() == time.Monday
	}
	return false
}
