package habits

import "github.com/julianstephens/tendwell/internal/models"

// Catalog is the set of predefined habits users can pick from.
var Catalog = []models.HabitDefinition{
	{Key: "meditate", Title: "Meditate", Emoji: "🧘", Category: models.CategoryMindfulness, Frequency: models.Daily(), Unit: models.UnitMinutes, TargetAmount: 10, GemsPerCompletion: 5},
	{Key: "read", Title: "Read a book", Emoji: "📖", Category: models.CategoryLearning, Frequency: models.Daily(), Unit: models.UnitPages, TargetAmount: 10, GemsPerCompletion: 5},
	{Key: "walk", Title: "Go for a walk", Emoji: "🚶", Category: models.CategoryHealth, Frequency: models.Daily(), Unit: models.UnitMinutes, TargetAmount: 30, GemsPerCompletion: 5},
	{Key: "journal", Title: "Journal", Emoji: "📝", Category: models.CategoryMindfulness, Frequency: models.Daily(), Unit: models.UnitWords, TargetAmount: 200, GemsPerCompletion: 5},
	{Key: "deep-work", Title: "Deep work block", Emoji: "🎯", Category: models.CategoryProductivity, Frequency: models.Weekdays(), Unit: models.UnitHours, TargetAmount: 2, GemsPerCompletion: 10},
	{Key: "pushups", Title: "Push-ups", Emoji: "💪", Category: models.CategoryFitness, Frequency: models.Daily(), Unit: models.UnitExercises, TargetAmount: 20, GemsPerCompletion: 5},
	{Key: "workout", Title: "Workout", Emoji: "🏋️", Category: models.CategoryFitness, Frequency: models.Custom(2), Unit: models.UnitMinutes, TargetAmount: 45, GemsPerCompletion: 10},
	{Key: "call-friend", Title: "Call a friend", Emoji: "📞", Category: models.CategorySocial, Frequency: models.Weekly(), Unit: models.UnitTimes, TargetAmount: 1, GemsPerCompletion: 15},
	{Key: "sketch", Title: "Sketch", Emoji: "🎨", Category: models.CategoryCreativity, Frequency: models.Weekends(), Unit: models.UnitMinutes, TargetAmount: 20, GemsPerCompletion: 5},
	{Key: "language", Title: "Practice a language", Emoji: "🗣️", Category: models.CategoryLearning, Frequency: models.Daily(), Unit: models.UnitMinutes, TargetAmount: 15, GemsPerCompletion: 5},
	{Key: "water", Title: "Drink water", Emoji: "💧", Category: models.CategoryHealth, Frequency: models.Daily(), Unit: models.UnitTimes, TargetAmount: 1, GemsPerCompletion: 2},
	{Key: "screen-free-evening", Title: "Screen-free evening", Emoji: "🌙", Category: models.CategoryMindfulness, Frequency: models.Daily(), Unit: models.UnitTimes, TargetAmount: 1, GemsPerCompletion: 10},
}

// StarterSet names the catalog entries created on first run.
var StarterSet = []string{"meditate", "read", "walk"}

// CatalogEntry looks up a catalog definition by key.
func CatalogEntry(key string) (models.HabitDefinition, bool) {
	for _, def := range Catalog {
		if def.Key == key {
			return def, true
		}
	}
	return models.HabitDefinition{}, false
}
