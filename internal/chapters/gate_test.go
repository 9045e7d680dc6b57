package chapters

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/tendwell/internal/constants"
	apperrors "github.com/julianstephens/tendwell/internal/errors"
	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/models"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) SetMany(map[string]string) error { return errors.New("read-only filesystem") }

const testContent = `{"version":1,"chapters":[
	{"id":"one","title":"One","gems_reward":10},
	{"id":"two","title":"Two","gems_reward":20},
	{"id":"three","title":"Three","gems_reward":30},
	{"id":"four","title":"Four","gems_reward":40}
]}`

func testSeed(t *testing.T) []models.Chapter {
	t.Helper()
	seed, err := ParseContent([]byte(testContent))
	if err != nil {
		t.Fatalf("ParseContent() failed: %v", err)
	}
	return seed
}

type fixture struct {
	store storage.Provider
	clock *clock
	cal   *utils.Calendar
	rec   *events.Recorder
	seed  []models.Chapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{now: time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)}
	return &fixture{
		store: storage.NewMemoryStore(),
		clock: clk,
		cal:   utils.NewCalendar(time.UTC).WithClock(clk.Now),
		rec:   &events.Recorder{},
		seed:  testSeed(t),
	}
}

func (f *fixture) gate(t *testing.T) *Gate {
	t.Helper()
	g, err := New(f.store, f.cal, f.rec, f.seed)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return g
}

func (f *fixture) nextDay() { f.clock.now = f.clock.now.AddDate(0, 0, 1) }

func unlockedPrefix(chapters []models.Chapter) bool {
	locked := false
	for _, c := range chapters {
		if locked && c.IsUnlocked {
			return false
		}
		if !c.IsUnlocked {
			locked = true
		}
	}
	return true
}

func TestSeedState(t *testing.T) {
	g := newFixture(t).gate(t)
	list := g.List()
	if !list[0].IsUnlocked || list[1].IsUnlocked {
		t.Errorf("seed state = %+v, want only the first chapter unlocked", list)
	}
	if !g.CanAccess("one") || g.CanAccess("two") || g.CanAccess("missing") {
		t.Error("CanAccess() does not match seed state")
	}
}

func TestCompleteUnlocksNextAndThrottles(t *testing.T) {
	f := newFixture(t)
	g := f.gate(t)

	out, err := g.Complete("one")
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if !out.Completed || out.Reward != 10 || out.Unlocked != "two" {
		t.Fatalf("Complete(one) = %+v", out)
	}
	// The caller announces the unlock after the completion.
	if got := f.rec.OfType(events.TypeChapterUnlocked); len(got) != 0 {
		t.Errorf("Complete published unlock events %v, want none", got)
	}

	// The next chapter is unlocked but the daily gate is closed.
	if g.CanAccess("two") {
		t.Error("CanAccess(two) = true on the same day")
	}
	if !g.CanAccess("one") {
		t.Error("completed chapter should stay open for review")
	}
	out, _ = g.Complete("two")
	if out.Completed || out.Reason != ReasonThrottled {
		t.Errorf("second completion same day = %+v, want throttled no-op", out)
	}
	if !g.IsCompletedToday() {
		t.Error("IsCompletedToday() = false")
	}
	if at, ok := g.NextUnlockAt(); !ok || !at.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NextUnlockAt() = %v, %v, want next midnight", at, ok)
	}

	f.nextDay()
	if !g.CanAccess("two") {
		t.Error("CanAccess(two) = false on the next day")
	}
	if _, ok := g.NextUnlockAt(); ok {
		t.Error("NextUnlockAt() active on the next day")
	}
	out, _ = g.Complete("two")
	if !out.Completed || out.Unlocked != "three" {
		t.Errorf("Complete(two) next day = %+v", out)
	}
	if !unlockedPrefix(g.List()) {
		t.Errorf("unlocked chapters are not a prefix: %+v", g.List())
	}
}

func TestCompleteNoOps(t *testing.T) {
	f := newFixture(t)
	g := f.gate(t)

	tests := []struct {
		id     string
		reason string
	}{
		{"missing", ReasonUnknown},
		{"three", ReasonLocked},
	}
	for _, tt := range tests {
		out, err := g.Complete(tt.id)
		if err != nil || out.Completed || out.Reason != tt.reason {
			t.Errorf("Complete(%s) = %+v, %v, want no-op %q", tt.id, out, err, tt.reason)
		}
	}

	g.Complete("one")
	f.nextDay()
	out, _ := g.Complete("one")
	if out.Completed || out.Reason != ReasonCompleted || out.Reward != 0 {
		t.Errorf("repeat Complete(one) = %+v, want no-op", out)
	}
	if !g.CanAccess("two") {
		t.Error("a rejected repeat completion must not close the daily gate")
	}
}

func TestLastChapter(t *testing.T) {
	f := newFixture(t)
	g := f.gate(t)
	for _, id := range []string{"one", "two", "three", "four"} {
		if out, _ := g.Complete(id); !out.Completed {
			t.Fatalf("Complete(%s) = %+v", id, out)
		}
		f.nextDay()
	}
	if done, total := g.Progress(); done != 4 || total != 4 {
		t.Errorf("Progress() = %d/%d, want 4/4", done, total)
	}
	if id, err := g.UnlockNext(); id != "" || err != nil {
		t.Errorf("UnlockNext() after the last chapter = %q, %v", id, err)
	}
}

func TestThrottleSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	f.gate(t).Complete("one")

	reloaded := f.gate(t)
	if !reloaded.IsCompletedToday() {
		t.Fatal("daily completion lost across restart")
	}
	if out, _ := reloaded.Complete("two"); out.Completed {
		t.Error("completion after restart bypassed the daily gate")
	}
	if c, _ := reloaded.Get("one"); !c.IsCompleted {
		t.Error("completed flag lost across restart")
	}
	if _, ok := reloaded.CompletedOn("one"); !ok {
		t.Error("completion record lost across restart")
	}
}

func TestUnlockNext(t *testing.T) {
	f := newFixture(t)

	// Chapter one completed but two still locked, as left by an interrupted
	// older version.
	state := testSeed(t)
	state[0].IsCompleted = true
	storage.SetRecord(f.store, constants.KeyChapters, state)
	storage.SetRecord(f.store, constants.KeyChapterCompletions, map[string]int64{})

	g := f.gate(t)
	id, err := g.UnlockNext()
	if err != nil || id != "two" {
		t.Fatalf("UnlockNext() = %q, %v, want two", id, err)
	}
	if id, _ := g.UnlockNext(); id != "" {
		t.Errorf("second UnlockNext() = %q, want no-op", id)
	}
	if n := len(f.rec.OfType(events.TypeChapterUnlocked)); n != 1 {
		t.Errorf("published %d unlock events, want 1", n)
	}
}

func TestLoadResetsCorruptState(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(storage.Provider)
	}{
		{"undecodable list", func(p storage.Provider) {
			p.Set(constants.KeyChapters, "{{{")
		}},
		{"undecodable record", func(p storage.Provider) {
			storage.SetRecord(p, constants.KeyChapters, []models.Chapter{{ID: "one", IsUnlocked: true, IsCompleted: true}})
			p.Set(constants.KeyChapterCompletions, "nope")
		}},
		{"unlock gap", func(p storage.Provider) {
			storage.SetRecord(p, constants.KeyChapters, []models.Chapter{
				{ID: "one", IsUnlocked: true},
				{ID: "three", IsUnlocked: true, IsCompleted: true},
			})
			storage.SetRecord(p, constants.KeyChapterCompletions, map[string]int64{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.prepare(f.store)

			g := f.gate(t)
			list := g.List()
			if !list[0].IsUnlocked || list[0].IsCompleted || list[1].IsUnlocked {
				t.Errorf("state after corrupt load = %+v, want seed", list)
			}
			if g.IsCompletedToday() {
				t.Error("completion record survived a reset")
			}
			var stored []models.Chapter
			if err := storage.GetRecord(f.store, constants.KeyChapters, &stored); err != nil || len(stored) != 4 {
				t.Errorf("seed state not persisted: %v, %d chapters", err, len(stored))
			}
		})
	}
}

func TestReconcileAppendedContent(t *testing.T) {
	f := newFixture(t)
	f.seed = f.seed[:2]
	g := f.gate(t)
	g.Complete("one")
	f.nextDay()
	g.Complete("two")
	f.nextDay()

	// A content update appends two chapters.
	f.seed = testSeed(t)
	g = f.gate(t)
	list := g.List()
	if len(list) != 4 || !list[1].IsCompleted || list[2].IsUnlocked {
		t.Fatalf("reconciled state = %+v", list)
	}
	if id, _ := g.UnlockNext(); id != "three" {
		t.Errorf("UnlockNext() after content update = %q, want three", id)
	}
}

func TestPersistenceFailureKeepsSessionState(t *testing.T) {
	f := newFixture(t)
	f.store = failingStore{storage.NewMemoryStore()}

	g, err := New(f.store, f.cal, f.rec, f.seed)
	if !apperrors.IsPersistence(err) {
		t.Fatalf("New() error = %v, want persistence error for the seed write", err)
	}
	out, err := g.Complete("one")
	if !apperrors.IsPersistence(err) {
		t.Errorf("Complete() error = %v, want persistence error", err)
	}
	if !out.Completed || !g.IsCompletedToday() {
		t.Error("in-memory completion lost after a persistence failure")
	}
}

func TestResolve(t *testing.T) {
	g := newFixture(t).gate(t)

	for ref, want := range map[string]string{"two": "two", "3": "three", "1": "one"} {
		c, err := g.Resolve(ref)
		if err != nil || c.ID != want {
			t.Errorf("Resolve(%q) = %s, %v, want %s", ref, c.ID, err, want)
		}
	}
	for _, ref := range []string{"0", "9", "nine"} {
		if _, err := g.Resolve(ref); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", ref, err)
		}
	}
}

func TestBundledContent(t *testing.T) {
	seed, err := BundledContent()
	if err != nil {
		t.Fatalf("BundledContent() failed: %v", err)
	}
	if len(seed) < 2 || !seed[0].IsUnlocked || seed[1].IsUnlocked {
		t.Errorf("bundled seed state unexpected: %+v", seed)
	}
	seen := make(map[string]bool)
	for i, c := range seed {
		if c.Index != i || c.ID == "" || seen[c.ID] {
			t.Errorf("bundled chapter %d malformed: %+v", i, c)
		}
		seen[c.ID] = true
	}
}

func TestParseContentErrors(t *testing.T) {
	for _, doc := range []string{"", "{", `{"chapters":[]}`} {
		if _, err := ParseContent([]byte(doc)); err == nil {
			t.Errorf("ParseContent(%q) should fail", doc)
		}
	}
}
