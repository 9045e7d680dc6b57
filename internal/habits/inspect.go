package habits

import (
	"time"

	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/models"
	"github.com/julianstephens/tendwell/internal/storage"
)

// Inspect reads every stored habit without repairing anything. Keys whose
// record cannot be decoded are returned in unreadable.
func Inspect(store storage.Provider) (habits []models.Habit, unreadable []string, err error) {
	keys, err := store.Keys(constants.KeyHabitPrefix)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range keys {
		var r record
		err := storage.GetRecord(store, key, &r)
		switch {
		case storage.IsCorrupt(err), err == nil && r.ID == "":
			unreadable = append(unreadable, key)
		case storage.IsNotFound(err):
		case err != nil:
			return nil, nil, err
		default:
			habits = append(habits, *r.habit(time.UTC))
		}
	}
	return habits, unreadable, nil
}
