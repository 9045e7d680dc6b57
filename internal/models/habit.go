package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type HabitCategory string

const (
	CategoryHealth       HabitCategory = "health"
	CategoryMindfulness  HabitCategory = "mindfulness"
	CategoryLearning     HabitCategory = "learning"
	CategoryProductivity HabitCategory = "productivity"
	CategoryFitness      HabitCategory = "fitness"
	CategorySocial       HabitCategory = "social"
	CategoryCreativity   HabitCategory = "creativity"
)

// Categories lists every supported category in display order.
var Categories = []HabitCategory{
	CategoryHealth,
	CategoryMindfulness,
	CategoryLearning,
	CategoryProductivity,
	CategoryFitness,
	CategorySocial,
	CategoryCreativity,
}

type HabitUnit string

const (
	UnitMinutes   HabitUnit = "minutes"
	UnitPages     HabitUnit = "pages"
	UnitExercises HabitUnit = "exercises"
	UnitTimes     HabitUnit = "times"
	UnitHours     HabitUnit = "hours"
	UnitWords     HabitUnit = "words"
)

// Units lists every supported unit of measure.
var Units = []HabitUnit{UnitMinutes, UnitPages, UnitExercises, UnitTimes, UnitHours, UnitWords}

type FrequencyKind string

const (
	FrequencyDaily    FrequencyKind = "daily"
	FrequencyWeekdays FrequencyKind = "weekdays"
	FrequencyWeekends FrequencyKind = "weekends"
	FrequencyWeekly   FrequencyKind = "weekly"
	FrequencyCustom   FrequencyKind = "custom"
)

// Frequency is the recurrence policy of a habit. Days is only meaningful for
// FrequencyCustom: the habit becomes eligible again once Days calendar days
// have passed since the last completion.
type Frequency struct {
	Kind FrequencyKind `json:"kind"`
	Days int           `json:"days,omitempty"`
}

func Daily() Frequency         { return Frequency{Kind: FrequencyDaily} }
func Weekdays() Frequency      { return Frequency{Kind: FrequencyWeekdays} }
func Weekends() Frequency      { return Frequency{Kind: FrequencyWeekends} }
func Weekly() Frequency        { return Frequency{Kind: FrequencyWeekly} }
func Custom(days int) Frequency { return Frequency{Kind: FrequencyCustom, Days: days} }

func (f Frequency) String() string {
	if f.Kind == FrequencyCustom {
		return fmt.Sprintf("every %d days", f.Days)
	}
	return string(f.Kind)
}

// Valid reports whether the frequency is one of the supported variants.
func (f Frequency) Valid() bool {
	switch f.Kind {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekends, FrequencyWeekly:
		return true
	case FrequencyCustom:
		return f.Days >= 1
	default:
		return false
	}
}

// ParseFrequency accepts "daily", "weekdays", "weekends", "weekly" and
// "custom:N" (or "every-N-days").
func ParseFrequency(s string) (Frequency, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch FrequencyKind(s) {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekends, FrequencyWeekly:
		return Frequency{Kind: FrequencyKind(s)}, nil
	}

	var num string
	switch {
	case strings.HasPrefix(s, "custom:"):
		num = strings.TrimPrefix(s, "custom:")
	case strings.HasPrefix(s, "every-") && strings.HasSuffix(s, "-days"):
		num = strings.TrimSuffix(strings.TrimPrefix(s, "every-"), "-days")
	default:
		return Frequency{}, fmt.Errorf("invalid frequency: %s", s)
	}

	days, err := strconv.Atoi(num)
	if err != nil || days < 1 {
		return Frequency{}, fmt.Errorf("invalid custom frequency interval: %s", num)
	}
	return Custom(days), nil
}

// HabitDefinition is the immutable template a habit is created from.
type HabitDefinition struct {
	Key               string        `json:"key,omitempty"`
	Title             string        `json:"title"`
	Emoji             string        `json:"emoji"`
	Category          HabitCategory `json:"category"`
	Frequency         Frequency     `json:"frequency"`
	Unit              HabitUnit     `json:"unit"`
	TargetAmount      int           `json:"target_amount"`
	GemsPerCompletion int           `json:"gems_per_completion"`
}

// Habit is a definition plus the user's progression on it.
type Habit struct {
	ID string `json:"id"`
	HabitDefinition

	TotalProgress      int         `json:"total_progress"`
	CurrentStreak      int         `json:"current_streak"`
	BestStreak         int         `json:"best_streak"`
	CompletedDates     []time.Time `json:"completed_dates"`
	LastCompletedDate  *time.Time  `json:"last_completed_date,omitempty"`
	RewardedMilestones int         `json:"rewarded_milestones"`
	CreatedAt          time.Time   `json:"created_at"`
}

// HabitMilestone is a cumulative-progress threshold with a one-time reward.
type HabitMilestone struct {
	Target    int    `json:"target"`
	Title     string `json:"title"`
	GemReward int    `json:"gem_reward"`
}
