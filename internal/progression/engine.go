// Package progression is the entry point to the engine. It sequences the
// habit tracker, the chapter gate and the gem ledger so that every user
// action results in at most one ledger mutation.
package progression

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/tendwell/internal/chapters"
	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/habits"
	"github.com/julianstephens/tendwell/internal/ledger"
	"github.com/julianstephens/tendwell/internal/levels"
	"github.com/julianstephens/tendwell/internal/logger"
	"github.com/julianstephens/tendwell/internal/models"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
)

type Config struct {
	Store    storage.Provider
	Calendar *utils.Calendar
	Settings models.Settings
	// Bus receives every engine event. A new bus is created when nil.
	Bus *events.Bus
	// Content is the seed chapter list. The bundled content is used when nil.
	Content []models.Chapter
}

type Engine struct {
	mu       sync.Mutex
	cal      *utils.Calendar
	bus      *events.Bus
	settings models.Settings
	ledger   *ledger.Ledger
	habits   *habits.Tracker
	chapters *chapters.Gate
	log      *log.Logger
}

// New builds every component on top of cfg.Store. Load failures of individual
// components are joined into the returned error; the engine is usable in
// memory either way as long as it is non-nil.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("progression: no store configured")
	}
	cal := cfg.Calendar
	if cal == nil {
		var err error
		if cal, err = utils.NewCalendarForTimezone(cfg.Settings.Timezone); err != nil {
			return nil, err
		}
	}
	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	content := cfg.Content
	if content == nil {
		var err error
		if content, err = chapters.BundledContent(); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		cal:      cal,
		bus:      bus,
		settings: cfg.Settings,
		log:      logger.Component("progression"),
	}

	var errs []error
	var err error
	e.ledger, err = ledger.New(cfg.Store, bus, cfg.Settings.LevelPolicy)
	errs = append(errs, err)
	e.habits, err = habits.New(cfg.Store, cal, habits.Options{SeedStarterSet: cfg.Settings.SeedStarterSet})
	errs = append(errs, err)
	e.chapters, err = chapters.New(cfg.Store, cal, bus, content)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		e.log.Warn("Engine started with storage errors", "error", err)
		return e, err
	}
	return e, nil
}

func (e *Engine) Bus() *events.Bus          { return e.bus }
func (e *Engine) Calendar() *utils.Calendar { return e.cal }
func (e *Engine) Settings() models.Settings { return e.settings }
func (e *Engine) Ledger() *ledger.Ledger    { return e.ledger }
func (e *Engine) Habits() *habits.Tracker   { return e.habits }
func (e *Engine) Chapters() *chapters.Gate  { return e.chapters }

type HabitResult struct {
	Completion habits.Completion
	// Change is the ledger mutation, zero when the completion was a no-op.
	Change ledger.Change
}

// CompleteHabit completes a habit and credits the completion gems together
// with any milestone rewards in a single ledger credit.
func (e *Engine) CompleteHabit(id string, amount int) (HabitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	completion, err := e.habits.Complete(id, amount)
	if !completion.Recorded {
		return HabitResult{Completion: completion}, err
	}
	result := HabitResult{Completion: completion}

	h := completion.Habit
	change, creditErr := e.ledger.Credit(completion.TotalGems(), "Habit: "+h.Title)
	result.Change = change

	milestones := make([]string, 0, len(completion.Milestones))
	for _, m := range completion.Milestones {
		milestones = append(milestones, m.Title)
	}
	e.bus.Publish(events.HabitCompleted{
		HabitID:         h.ID,
		Title:           h.Title,
		Streak:          h.CurrentStreak,
		MilestoneReward: completion.MilestoneGems(),
		Milestones:      milestones,
	})
	return result, errors.Join(err, creditErr)
}

type ChapterResult struct {
	Outcome chapters.Outcome
	Change  ledger.Change
}

// CompleteChapter completes a chapter through the gate and credits its reward.
func (e *Engine) CompleteChapter(id string) (ChapterResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	outcome, err := e.chapters.Complete(id)
	if !outcome.Completed {
		return ChapterResult{Outcome: outcome}, err
	}

	change, creditErr := e.ledger.Credit(outcome.Reward, "Chapter: "+outcome.Chapter.Title)
	e.bus.Publish(events.ChapterCompleted{ChapterID: outcome.Chapter.ID, Reward: outcome.Reward})
	if outcome.Unlocked != "" {
		e.bus.Publish(events.ChapterUnlocked{ChapterID: outcome.Unlocked})
	}
	return ChapterResult{Outcome: outcome, Change: change}, errors.Join(err, creditErr)
}

// RecordPenaltyEvent debits gems when the app-blocking side reports a relapse.
// A non-positive amount uses the configured default penalty.
func (e *Engine) RecordPenaltyEvent(amount int, reason string) (ledger.Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount <= 0 {
		amount = e.settings.PenaltyGems
	}
	if reason == "" {
		reason = "Penalty"
	}
	e.log.Info("Recording penalty", "amount", amount, "reason", reason)
	return e.ledger.Debit(amount, reason)
}

// Deduct removes gems outside the penalty flow. Silent deductions publish no
// events and always bring the level down with the balance.
func (e *Engine) Deduct(amount int, reason string, silent bool) (ledger.Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if silent {
		return e.ledger.DebitSilent(amount, reason)
	}
	return e.ledger.Debit(amount, reason)
}

type RefreshResult struct {
	ActiveHabits []models.Habit
	Unlocked     string
}

// Refresh is the foreground / day-rollover tick. Habit eligibility is computed
// on read, so this only needs to catch up on chapter unlocks.
func (e *Engine) Refresh() (RefreshResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlocked, err := e.chapters.UnlockNext()
	return RefreshResult{
		ActiveHabits: e.habits.ActiveToday(),
		Unlocked:     unlocked,
	}, err
}

type HabitStatus struct {
	Habit          models.Habit
	ActiveToday    bool
	CompletedToday bool
	NextMilestone  *models.HabitMilestone
}

type Status struct {
	Now               time.Time
	Balance           int
	Level             levels.Level
	Progress          float64
	NextThreshold     int
	Habits            []HabitStatus
	ChaptersCompleted int
	ChaptersTotal     int
	ChapterThrottled  bool
	NextChapterAt     time.Time
	LevelPolicy       string
}

// Status collects everything a UI needs to render the current state.
func (e *Engine) Status() Status {
	snap := e.ledger.Snapshot()
	s := Status{
		Now:         e.cal.Now(),
		Balance:     snap.Balance,
		Level:       levels.Info(snap.Level),
		Progress:    snap.Progress,
		LevelPolicy: string(e.ledger.Policy()),
	}
	if snap.Level < levels.MaxLevel {
		s.NextThreshold = levels.XPRequiredFor(snap.Level + 1)
	}

	for _, h := range e.habits.List() {
		hs := HabitStatus{
			Habit:          h,
			ActiveToday:    e.habits.IsActiveToday(h),
			CompletedToday: e.habits.IsCompletedToday(h.ID),
		}
		if m, ok := habits.NextMilestone(h); ok {
			hs.NextMilestone = &m
		}
		s.Habits = append(s.Habits, hs)
	}

	s.ChaptersCompleted, s.ChaptersTotal = e.chapters.Progress()
	s.NextChapterAt, s.ChapterThrottled = e.chapters.NextUnlockAt()
	return s
}
