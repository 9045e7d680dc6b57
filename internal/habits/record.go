package habits

import (
	"time"

	"github.com/julianstephens/tendwell/internal/models"
)

// record is the persisted form of a habit. Timestamps are Unix epoch seconds.
type record struct {
	ID string `json:"id"`
	models.HabitDefinition

	TotalProgress      int     `json:"total_progress"`
	CurrentStreak      int     `json:"current_streak"`
	BestStreak         int     `json:"best_streak"`
	CompletedDates     []int64 `json:"completed_dates"`
	LastCompletedDate  *int64  `json:"last_completed_date,omitempty"`
	RewardedMilestones int     `json:"rewarded_milestones"`
	CreatedAt          int64   `json:"created_at"`
}

func toRecord(h *models.Habit) record {
	r := record{
		ID:                 h.ID,
		HabitDefinition:    h.HabitDefinition,
		TotalProgress:      h.TotalProgress,
		CurrentStreak:      h.CurrentStreak,
		BestStreak:         h.BestStreak,
		CompletedDates:     make([]int64, len(h.CompletedDates)),
		RewardedMilestones: h.RewardedMilestones,
		CreatedAt:          h.CreatedAt.Unix(),
	}
	for i, d := range h.CompletedDates {
		r.CompletedDates[i] = d.Unix()
	}
	if h.LastCompletedDate != nil {
		last := h.LastCompletedDate.Unix()
		r.LastCompletedDate = &last
	}
	return r
}

func (r record) habit(loc *time.Location) *models.Habit {
	h := &models.Habit{
		ID:                 r.ID,
		HabitDefinition:    r.HabitDefinition,
		TotalProgress:      r.TotalProgress,
		CurrentStreak:      r.CurrentStreak,
		BestStreak:         r.BestStreak,
		RewardedMilestones: r.RewardedMilestones,
		CreatedAt:          time.Unix(r.CreatedAt, 0).In(loc),
	}
	for _, d := range r.CompletedDates {
		h.CompletedDates = append(h.CompletedDates, time.Unix(d, 0).In(loc))
	}
	if r.LastCompletedDate != nil {
		last := time.Unix(*r.LastCompletedDate, 0).In(loc)
		h.LastCompletedDate = &last
	}
	return h
}

// resetProgress keeps the definition and forgets everything earned.
func resetProgress(h *models.Habit) {
	h.TotalProgress = 0
	h.CurrentStreak = 0
	h.BestStreak = 0
	h.CompletedDates = nil
	h.LastCompletedDate = nil
	h.RewardedMilestones = 0
}

func clone(h *models.Habit) models.Habit {
	out := *h
	out.CompletedDates = append([]time.Time(nil), h.CompletedDates...)
	if h.LastCompletedDate != nil {
		last := *h.LastCompletedDate
		out.LastCompletedDate = &last
	}
	return out
}
