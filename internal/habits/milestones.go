package habits

import "github.com/julianstephens/tendwell/internal/models"

var milestoneTable = map[models.HabitUnit][]models.HabitMilestone{
	models.UnitMinutes: {
		{Target: 60, Title: "First Hour", GemReward: 10},
		{Target: 300, Title: "Five Hours", GemReward: 25},
		{Target: 600, Title: "Ten Hours", GemReward: 50},
		{Target: 1500, Title: "Day and a Night", GemReward: 100},
		{Target: 3000, Title: "Fifty Hours", GemReward: 200},
		{Target: 6000, Title: "Hundred Hours", GemReward: 400},
	},
	models.UnitHours: {
		{Target: 10, Title: "Ten Hours", GemReward: 25},
		{Target: 50, Title: "Fifty Hours", GemReward: 100},
		{Target: 100, Title: "Hundred Hours", GemReward: 200},
		{Target: 500, Title: "Five Hundred Hours", GemReward: 500},
	},
	models.UnitPages: {
		{Target: 50, Title: "First Chapter", GemReward: 10},
		{Target: 250, Title: "Novella", GemReward: 30},
		{Target: 1000, Title: "Bookshelf", GemReward: 100},
		{Target: 5000, Title: "Library", GemReward: 300},
	},
	models.UnitExercises: {
		{Target: 25, Title: "Warmed Up", GemReward: 10},
		{Target: 100, Title: "Century", GemReward: 30},
		{Target: 500, Title: "Iron Will", GemReward: 100},
		{Target: 2000, Title: "Unstoppable", GemReward: 300},
	},
	models.UnitTimes: {
		{Target: 7, Title: "One Week", GemReward: 10},
		{Target: 30, Title: "One Month", GemReward: 30},
		{Target: 100, Title: "Hundred Days", GemReward: 100},
		{Target: 365, Title: "Full Year", GemReward: 365},
	},
	models.UnitWords: {
		{Target: 1000, Title: "First Thousand", GemReward: 10},
		{Target: 10000, Title: "Short Story", GemReward: 50},
		{Target: 50000, Title: "Novel Draft", GemReward: 200},
		{Target: 100000, Title: "Manuscript", GemReward: 400},
	},
}

// MilestonesFor returns the ordered milestones of unit. The slice is a copy.
func MilestonesFor(unit models.HabitUnit) []models.HabitMilestone {
	return append([]models.HabitMilestone(nil), milestoneTable[unit]...)
}

// Achieved returns every milestone the habit's total progress has reached.
func Achieved(h models.Habit) []models.HabitMilestone {
	var out []models.HabitMilestone
	for _, m := range milestoneTable[h.Unit] {
		if h.TotalProgress >= m.Target {
			out = append(out, m)
		}
	}
	return out
}

// NewlyReached returns the milestones reached but not yet rewarded, in order.
// RewardedMilestones is a watermark into the unit's table, so a completion
// that jumps over several thresholds reports all of them.
func NewlyReached(h models.Habit) []models.HabitMilestone {
	table := milestoneTable[h.Unit]
	var out []models.HabitMilestone
	for i := max(h.RewardedMilestones, 0); i < len(table); i++ {
		if h.TotalProgress < table[i].Target {
			break
		}
		out = append(out, table[i])
	}
	return out
}

// NextMilestone returns the first milestone not yet reached.
func NextMilestone(h models.Habit) (models.HabitMilestone, bool) {
	for _, m := range milestoneTable[h.Unit] {
		if h.TotalProgress < m.Target {
			return m, true
		}
	}
	return models.HabitMilestone{}, false
}
