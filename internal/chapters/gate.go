// Package chapters gates sequential content: chapters unlock one after the
// other and at most one new chapter can be completed per calendar day.
package chapters

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/tendwell/internal/constants"
	apperrors "github.com/julianstephens/tendwell/internal/errors"
	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/logger"
	"github.com/julianstephens/tendwell/internal/models"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
	"github.com/julianstephens/tendwell/internal/validation"
)

// Outcome is the result of Gate.Complete.
type Outcome struct {
	Chapter models.Chapter
	// Completed is false when the call was a no-op; Reason says why.
	Completed bool
	Reason    string
	Reward    int
	// Unlocked is the id of the chapter unlocked by this completion, if any.
	Unlocked string
}

const (
	ReasonUnknown   = "unknown chapter"
	ReasonLocked    = "chapter is locked"
	ReasonCompleted = "chapter already completed"
	ReasonThrottled = "a chapter was already completed today"
)

type Gate struct {
	mu          sync.Mutex
	store       storage.Provider
	cal         *utils.Calendar
	pub         events.Publisher
	validator   *validation.Validator
	seed        []models.Chapter
	chapters    []models.Chapter
	completions map[string]time.Time
	log         *log.Logger
}

// New loads chapter progress for the seed content. Stored progress is matched
// to the seed by chapter id. Unreadable or inconsistent state is replaced by
// the seed state. A store that cannot be read leaves the gate in seed state and
// returns the error.
func New(store storage.Provider, cal *utils.Calendar, pub events.Publisher, seed []models.Chapter) (*Gate, error) {
	if pub == nil {
		pub = events.Discard
	}
	g := &Gate{
		store:     store,
		cal:       cal,
		pub:       pub,
		validator: validation.New(),
		seed:      seed,
		log:       logger.Component("chapters"),
	}
	g.resetToSeed()
	return g, g.load()
}

func (g *Gate) resetToSeed() {
	g.chapters = append([]models.Chapter(nil), g.seed...)
	g.completions = make(map[string]time.Time)
}

func (g *Gate) load() error {
	var stored []models.Chapter
	listErr := storage.GetRecord(g.store, constants.KeyChapters, &stored)
	var raw map[string]int64
	recordErr := storage.GetRecord(g.store, constants.KeyChapterCompletions, &raw)

	for _, err := range []error{listErr, recordErr} {
		if err != nil && !storage.IsNotFound(err) && !storage.IsCorrupt(err) {
			return apperrors.Persist("load", constants.KeyChapters, err)
		}
	}

	switch {
	case storage.IsNotFound(listErr):
		g.log.Debug("No stored chapter progress, starting from seed")
		return g.persist()
	case storage.IsCorrupt(listErr), storage.IsCorrupt(recordErr):
		g.log.Warn("Chapter progress unreadable, resetting to seed", "list_error", listErr, "record_error", recordErr)
		return g.persist()
	}

	g.chapters = g.reconcile(stored)
	for id, ts := range raw {
		g.completions[id] = time.Unix(ts, 0).In(g.cal.Location())
	}

	if result := g.validator.ValidateChapters(g.chapters); result.HasConflicts() {
		g.log.Warn("Chapter progress inconsistent, resetting to seed", "error", result.Err())
		g.resetToSeed()
		return g.persist()
	}
	return nil
}

// reconcile applies stored progress to the seed by id. Stored chapters that no
// longer exist in the content are dropped; new content starts locked.
func (g *Gate) reconcile(stored []models.Chapter) []models.Chapter {
	state := make(map[string]models.Chapter, len(stored))
	for _, c := range stored {
		state[c.ID] = c
	}

	out := append([]models.Chapter(nil), g.seed...)
	for i := range out {
		if s, ok := state[out[i].ID]; ok {
			out[i].IsUnlocked = s.IsUnlocked || i == 0
			out[i].IsCompleted = s.IsCompleted
		}
	}
	return out
}

// persist writes the chapter list and the completion record in one batch.
// Callers hold g.mu or own g exclusively.
func (g *Gate) persist() error {
	list, err := storage.EncodeRecord(g.chapters)
	if err != nil {
		return err
	}
	raw := make(map[string]int64, len(g.completions))
	for id, ts := range g.completions {
		raw[id] = ts.Unix()
	}
	record, err := storage.EncodeRecord(raw)
	if err != nil {
		return err
	}

	err = g.store.SetMany(map[string]string{
		constants.KeyChapters:           list,
		constants.KeyChapterCompletions: record,
	})
	if err != nil {
		g.log.Error("Failed to persist chapter progress", "error", err)
		return apperrors.Persist("save", constants.KeyChapters, err)
	}
	return nil
}

func (g *Gate) indexOf(id string) int {
	for i := range g.chapters {
		if g.chapters[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Gate) completedTodayLocked() bool {
	now := g.cal.Now()
	for _, ts := range g.completions {
		if g.cal.SameDay(ts, now) {
			return true
		}
	}
	return false
}

// CanAccess reports whether the chapter may be opened now. Completed chapters
// are always open for review; other unlocked chapters only while no chapter
// has been completed today.
func (g *Gate) CanAccess(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.indexOf(id)
	switch {
	case i < 0, !g.chapters[i].IsUnlocked:
		return false
	case g.chapters[i].IsCompleted:
		return true
	default:
		return !g.completedTodayLocked()
	}
}

// Complete marks the chapter completed, records today in the completion
// record and unlocks the next chapter. Both are durable when Complete returns.
// The unlock is reported in Outcome.Unlocked and not published, so the caller
// can announce it after the completion itself.
// Calls that are not allowed right now return an Outcome with Completed false.
func (g *Gate) Complete(id string) (Outcome, error) {
	g.mu.Lock()

	i := g.indexOf(id)
	var reason string
	switch {
	case i < 0:
		reason = ReasonUnknown
	case g.chapters[i].IsCompleted:
		reason = ReasonCompleted
	case !g.chapters[i].IsUnlocked:
		reason = ReasonLocked
	case g.completedTodayLocked():
		reason = ReasonThrottled
	}
	if reason != "" {
		out := Outcome{Reason: reason}
		if i >= 0 {
			out.Chapter = g.chapters[i]
		}
		g.mu.Unlock()
		g.log.Info("Chapter completion ignored", "id", id, "reason", reason)
		return out, nil
	}

	g.chapters[i].IsCompleted = true
	g.completions[id] = g.cal.Now()
	out := Outcome{Completed: true, Reward: g.chapters[i].GemsReward}
	if next := i + 1; next < len(g.chapters) && !g.chapters[next].IsUnlocked {
		g.chapters[next].IsUnlocked = true
		out.Unlocked = g.chapters[next].ID
	}
	out.Chapter = g.chapters[i]
	err := g.persist()
	g.mu.Unlock()

	g.log.Info("Completed chapter", "id", id, "reward", out.Reward, "unlocked", out.Unlocked)
	return out, err
}

// UnlockNext unlocks the chapter after the highest completed one. It returns
// the id it unlocked, or "" when there was nothing to do.
func (g *Gate) UnlockNext() (string, error) {
	g.mu.Lock()

	last := -1
	for i := range g.chapters {
		if g.chapters[i].IsCompleted {
			last = i
		}
	}
	next := last + 1
	if last < 0 || next >= len(g.chapters) || g.chapters[next].IsUnlocked {
		g.mu.Unlock()
		return "", nil
	}

	g.chapters[next].IsUnlocked = true
	id := g.chapters[next].ID
	err := g.persist()
	g.mu.Unlock()

	g.log.Info("Unlocked chapter", "id", id)
	g.pub.Publish(events.ChapterUnlocked{ChapterID: id})
	return id, err
}

// IsCompletedToday reports whether any chapter was completed today.
func (g *Gate) IsCompletedToday() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.completedTodayLocked()
}

// NextUnlockAt returns when the daily throttle lifts, and false when it is not
// active.
func (g *Gate) NextUnlockAt() (time.Time, bool) {
	if !g.IsCompletedToday() {
		return time.Time{}, false
	}
	return g.cal.Tomorrow(), true
}

// Get returns the chapter with id.
func (g *Gate) Get(id string) (models.Chapter, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i := g.indexOf(id); i >= 0 {
		return g.chapters[i], true
	}
	return models.Chapter{}, false
}

// List returns all chapters in order.
func (g *Gate) List() []models.Chapter {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Chapter(nil), g.chapters...)
}

// CompletedOn returns when the chapter was last completed.
func (g *Gate) CompletedOn(id string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ts, ok := g.completions[id]
	return ts, ok
}

// Progress returns how many chapters are completed out of the total.
func (g *Gate) Progress() (completed, total int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.chapters {
		if c.IsCompleted {
			completed++
		}
	}
	return completed, len(g.chapters)
}

// Resolve finds a chapter by id or by 1-based position.
func (g *Gate) Resolve(ref string) (models.Chapter, error) {
	if c, ok := g.Get(ref); ok {
		return c, nil
	}
	var pos int
	if _, err := fmt.Sscanf(ref, "%d", &pos); err == nil {
		list := g.List()
		if pos >= 1 && pos <= len(list) {
			return list[pos-1], nil
		}
	}
	return models.Chapter{}, fmt.Errorf("chapter %q: %w", ref, apperrors.ErrNotFound)
}
