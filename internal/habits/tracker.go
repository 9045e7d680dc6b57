// Package habits tracks recurring habits, their streaks and milestones.
package habits

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/tendwell/internal/constants"
	apperrors "github.com/julianstephens/tendwell/internal/errors"
	"github.com/julianstephens/tendwell/internal/logger"
	"github.com/julianstephens/tendwell/internal/models"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
	"github.com/julianstephens/tendwell/internal/validation"
)

// Completion is the outcome of Tracker.Complete.
type Completion struct {
	Habit models.Habit
	// Recorded is false when the habit had already been completed today and
	// nothing changed.
	Recorded   bool
	Progress   int
	Gems       int
	Milestones []models.HabitMilestone
}

// MilestoneGems sums the rewards of the milestones reached by this completion.
func (c Completion) MilestoneGems() int {
	total := 0
	for _, m := range c.Milestones {
		total = utils.AddCapped(total, m.GemReward)
	}
	return total
}

// TotalGems is everything the completion earns.
func (c Completion) TotalGems() int {
	return utils.AddCapped(max(c.Gems, 0), c.MilestoneGems())
}

type Options struct {
	// SeedStarterSet creates the starter habits when none are stored.
	SeedStarterSet bool
}

type Tracker struct {
	mu        sync.Mutex
	store     storage.Provider
	cal       *utils.Calendar
	validator *validation.Validator
	habits    map[string]*models.Habit
	log       *log.Logger
}

// New loads every stored habit. Records that cannot be decoded are dropped;
// records with inconsistent progress keep their definition and start over.
// When the store itself fails the tracker is returned empty with the error.
func New(store storage.Provider, cal *utils.Calendar, opts Options) (*Tracker, error) {
	t := &Tracker{
		store:     store,
		cal:       cal,
		validator: validation.New(),
		habits:    make(map[string]*models.Habit),
		log:       logger.Component("habits"),
	}

	dropped, err := t.load()
	if err != nil {
		return t, err
	}
	if opts.SeedStarterSet && len(t.habits) == 0 {
		return t, t.seed(dropped > 0)
	}
	return t, nil
}

func (t *Tracker) load() (int, error) {
	keys, err := t.store.Keys(constants.KeyHabitPrefix)
	if err != nil {
		return 0, apperrors.Persist("load", constants.KeyHabitPrefix, err)
	}

	dropped := 0
	for _, key := range keys {
		var r record
		err := storage.GetRecord(t.store, key, &r)
		if err == nil && r.ID == "" {
			err = fmt.Errorf("%w: %s: missing id", apperrors.ErrCorrupt, key)
		}
		if err == nil {
			if def := t.validator.ValidateDefinition(r.HabitDefinition); def.HasConflicts() {
				err = fmt.Errorf("%w: %s: %v", apperrors.ErrCorrupt, key, def.Err())
			}
		}
		if err != nil {
			if !storage.IsCorrupt(err) && !storage.IsNotFound(err) {
				return dropped, apperrors.Persist("load", key, err)
			}
			t.log.Warn("Dropping unreadable habit record", "key", key, "error", err)
			_ = t.store.Remove(key)
			dropped++
			continue
		}

		h := r.habit(t.cal.Location())
		if progress := t.validator.ValidateProgress(*h); progress.HasConflicts() {
			t.log.Warn("Resetting habit progress", "id", h.ID, "error", progress.Err())
			resetProgress(h)
		}
		t.habits[h.ID] = h
	}
	return dropped, nil
}

// seed adds the starter set once per installation. force re-seeds after the
// stored habits were lost to corruption.
func (t *Tracker) seed(force bool) error {
	if !force {
		if _, err := t.store.Get(constants.KeyHabitsSeeded); err == nil {
			return nil
		} else if !storage.IsNotFound(err) {
			return apperrors.Persist("load", constants.KeyHabitsSeeded, err)
		}
	}

	values := make(map[string]string, len(StarterSet)+1)
	for _, key := range StarterSet {
		def, ok := CatalogEntry(key)
		if !ok {
			continue
		}
		h := t.newHabit(def)
		raw, err := storage.EncodeRecord(toRecord(h))
		if err != nil {
			return err
		}
		t.habits[h.ID] = h
		values[constants.KeyHabitPrefix+h.ID] = raw
	}
	values[constants.KeyHabitsSeeded] = "true"

	t.log.Info("Seeded starter habits", "count", len(StarterSet))
	return apperrors.Persist("seed", constants.KeyHabitPrefix, t.store.SetMany(values))
}

func (t *Tracker) newHabit(def models.HabitDefinition) *models.Habit {
	return &models.Habit{
		ID:              uuid.NewString(),
		HabitDefinition: def,
		CreatedAt:       t.cal.Now(),
	}
}

func (t *Tracker) save(h *models.Habit) error {
	key := constants.KeyHabitPrefix + h.ID
	if err := storage.SetRecord(t.store, key, toRecord(h)); err != nil {
		t.log.Error("Failed to persist habit", "id", h.ID, "error", err)
		return apperrors.Persist("save", key, err)
	}
	return nil
}

// Add creates a habit from def.
func (t *Tracker) Add(def models.HabitDefinition) (models.Habit, error) {
	def.Title = strings.TrimSpace(def.Title)
	if result := t.validator.ValidateDefinition(def); result.HasConflicts() {
		return models.Habit{}, fmt.Errorf("invalid habit: %w", result.Err())
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.newHabit(def)
	t.habits[h.ID] = h
	t.log.Info("Added habit", "id", h.ID, "title", h.Title)
	return clone(h), t.save(h)
}

// AddFromCatalog creates a habit from the catalog entry named key.
func (t *Tracker) AddFromCatalog(key string) (models.Habit, error) {
	def, ok := CatalogEntry(key)
	if !ok {
		return models.Habit{}, fmt.Errorf("unknown catalog habit: %s", key)
	}
	return t.Add(def)
}

// Remove deletes a habit and its history. Unknown ids are ignored.
func (t *Tracker) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.habits[id]; !ok {
		t.log.Debug("Remove of unknown habit ignored", "id", id)
		return nil
	}
	delete(t.habits, id)
	t.log.Info("Removed habit", "id", id)

	key := constants.KeyHabitPrefix + id
	return apperrors.Persist("remove", key, t.store.Remove(key))
}

// Complete records a completion of amount times the habit's target for today.
// A habit already completed today is left untouched and Recorded is false.
// Amounts below one count as one and amounts above MaxCompletionAmount are
// capped.
func (t *Tracker) Complete(id string, amount int) (Completion, error) {
	amount = min(max(amount, 1), constants.MaxCompletionAmount)

	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.habits[id]
	if !ok {
		return Completion{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
	}

	now := t.cal.Now()
	if h.LastCompletedDate != nil && t.cal.SameDay(*h.LastCompletedDate, now) {
		t.log.Debug("Habit already completed today", "id", id)
		return Completion{Habit: clone(h)}, nil
	}

	progress := utils.MulCapped(amount, h.TargetAmount)
	h.TotalProgress = utils.AddCapped(h.TotalProgress, progress)
	if h.LastCompletedDate != nil && utils.ContinuesStreak(t.cal, h.Frequency, *h.LastCompletedDate, now) {
		h.CurrentStreak++
	} else {
		h.CurrentStreak = 1
	}
	h.BestStreak = max(h.BestStreak, h.CurrentStreak)
	h.CompletedDates = append(h.CompletedDates, now)
	h.LastCompletedDate = &now

	reached := NewlyReached(*h)
	h.RewardedMilestones += len(reached)

	t.log.Info("Completed habit", "id", id, "progress", h.TotalProgress, "streak", h.CurrentStreak, "milestones", len(reached))

	completion := Completion{
		Habit:      clone(h),
		Recorded:   true,
		Progress:   progress,
		Gems:       h.GemsPerCompletion,
		Milestones: reached,
	}
	return completion, t.save(h)
}

func (t *Tracker) Get(id string) (models.Habit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.habits[id]
	if !ok {
		return models.Habit{}, false
	}
	return clone(h), true
}

// List returns every habit, oldest first.
func (t *Tracker) List() []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Habit, 0, len(t.habits))
	for _, h := range t.habits {
		out = append(out, clone(h))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IsActiveToday evaluates the habit's frequency against today.
func (t *Tracker) IsActiveToday(h models.Habit) bool {
	return utils.IsActiveOn(t.cal, h, t.cal.Now())
}

// ActiveToday returns the habits eligible today.
func (t *Tracker) ActiveToday() []models.Habit {
	var out []models.Habit
	for _, h := range t.List() {
		if t.IsActiveToday(h) {
			out = append(out, h)
		}
	}
	return out
}

// IsCompletedToday reports whether the habit has a completion today.
func (t *Tracker) IsCompletedToday(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.habits[id]
	return ok && h.LastCompletedDate != nil && t.cal.SameDay(*h.LastCompletedDate, t.cal.Now())
}

// Resolve finds a habit by id, id prefix or case-insensitive title.
func (t *Tracker) Resolve(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, fmt.Errorf("empty habit reference: %w", apperrors.ErrNotFound)
	}
	var matches []models.Habit
	for _, h := range t.List() {
		if h.ID == ref {
			return h, nil
		}
		if strings.HasPrefix(h.ID, ref) || strings.EqualFold(h.Title, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, apperrors.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("habit %q is ambiguous (%d matches)", ref, len(matches))
	}
}
