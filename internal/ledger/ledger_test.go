package ledger

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/julianstephens/tendwell/internal/constants"
	apperrors "github.com/julianstephens/tendwell/internal/errors"
	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/storage"
)

type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) SetMany(map[string]string) error { return errors.New("disk full") }

func newTestLedger(t *testing.T, store storage.Provider, policy constants.LevelPolicy) (*Ledger, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	l, err := New(store, rec, policy)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return l, rec
}

func TestCreditLevelUp(t *testing.T) {
	l, rec := newTestLedger(t, storage.NewMemoryStore(), constants.LevelPolicyDerived)

	change, err := l.Credit(100, "chapter")
	if err != nil {
		t.Fatalf("Credit() failed: %v", err)
	}
	if change.Balance != 100 || l.Level() != 2 {
		t.Errorf("after Credit(100): balance=%d level=%d, want 100 and 2", change.Balance, l.Level())
	}

	levelEvents := rec.OfType(events.TypeLevelChanged)
	if len(levelEvents) != 1 || levelEvents[0] != (events.LevelChanged{Old: 1, New: 2}) {
		t.Errorf("level events = %v, want [(1,2)]", levelEvents)
	}
	balanceEvents := rec.OfType(events.TypeBalanceChanged)
	want := events.BalanceChanged{Kind: events.Credit, Amount: 100, Reason: "chapter", Total: 100}
	if len(balanceEvents) != 1 || balanceEvents[0] != want {
		t.Errorf("balance events = %v, want [%v]", balanceEvents, want)
	}
}

func TestCreditSkipsLevels(t *testing.T) {
	l, rec := newTestLedger(t, storage.NewMemoryStore(), constants.LevelPolicyDerived)

	l.Credit(850, "bulk")

	levelEvents := rec.OfType(events.TypeLevelChanged)
	if len(levelEvents) != 1 || levelEvents[0] != (events.LevelChanged{Old: 1, New: 5}) {
		t.Errorf("level events = %v, want a single (1,5)", levelEvents)
	}
}

func TestCreditNegativeClamps(t *testing.T) {
	l, _ := newTestLedger(t, storage.NewMemoryStore(), constants.LevelPolicyDerived)
	l.Credit(30, "start")

	change, _ := l.Credit(-20, "bogus")
	if change.Applied != 0 || l.Balance() != 30 {
		t.Errorf("Credit(-20): applied=%d balance=%d, want 0 and 30", change.Applied, l.Balance())
	}
}

func TestDebitClampsAtZero(t *testing.T) {
	tests := []struct {
		start  int
		debit  int
		want   int
		wantOK int
	}{
		{start: 50, debit: 20, want: 30, wantOK: 20},
		{start: 50, debit: 50, want: 0, wantOK: 50},
		{start: 50, debit: 80, want: 0, wantOK: 50},
		{start: 0, debit: 5, want: 0, wantOK: 0},
		{start: 10, debit: -5, want: 10, wantOK: 0},
	}

	for _, tt := range tests {
		l, rec := newTestLedger(t, storage.NewMemoryStore(), constants.LevelPolicyDerived)
		l.Credit(tt.start, "seed")
		rec.Reset()

		change, err := l.Debit(tt.debit, "penalty")
		if err != nil {
			t.Fatalf("Debit() failed: %v", err)
		}
		if change.Balance != tt.want || change.Applied != tt.wantOK {
			t.Errorf("Debit(%d) from %d = balance %d applied %d, want %d and %d",
				tt.debit, tt.start, change.Balance, change.Applied, tt.want, tt.wantOK)
		}
		got := rec.OfType(events.TypeBalanceChanged)
		if len(got) != 1 || got[0].(events.BalanceChanged).Amount != tt.wantOK {
			t.Errorf("Debit(%d) from %d published %v", tt.debit, tt.start, got)
		}
	}
}

func TestDebitLevelPolicy(t *testing.T) {
	t.Run("derived lowers level", func(t *testing.T) {
		l, rec := newTestLedger(t, storage.NewMemoryStore(), constants.LevelPolicyDerived)
		l.Credit(250, "seed")
		rec.Reset()

		l.Debit(200, "penalty")
		if l.Level() != 1 {
			t.Errorf("level = %d, want 1", l.Level())
		}
		got := rec.OfType(events.TypeLevelChanged)
		if len(got) != 1 || got[0] != (events.LevelChanged{Old: 3, New: 1}) {
			t.Errorf("level events = %v, want [(3,1)]", got)
		}
	})

	t.Run("sticky keeps level", func(t *testing.T) {
		l, rec := newTestLedger(t, storage.NewMemoryStore(), constants.LevelPolicySticky)
		l.Credit(250, "seed")
		rec.Reset()

		l.Debit(200, "penalty")
		if l.Level() != 3 {
			t.Errorf("level = %d, want 3", l.Level())
		}
		if got := rec.OfType(events.TypeLevelChanged); len(got) != 0 {
			t.Errorf("level events = %v, want none", got)
		}

		// A later credit below the kept level must not fire a drop.
		l.Credit(10, "habit")
		if got := rec.OfType(events.TypeLevelChanged); len(got) != 0 {
			t.Errorf("level events after credit = %v, want none", got)
		}
	})
}

func TestDebitSilent(t *testing.T) {
	for _, policy := range []constants.LevelPolicy{constants.LevelPolicyDerived, constants.LevelPolicySticky} {
		t.Run(string(policy), func(t *testing.T) {
			l, rec := newTestLedger(t, storage.NewMemoryStore(), policy)
			l.Credit(450, "seed")
			rec.Reset()

			change, err := l.DebitSilent(300, "reset")
			if err != nil {
				t.Fatalf("DebitSilent() failed: %v", err)
			}
			if change.Balance != 150 || change.OldLevel != 4 || change.NewLevel != 2 {
				t.Errorf("DebitSilent = %+v, want balance 150 level 4->2", change)
			}
			if got := rec.Events(); len(got) != 0 {
				t.Errorf("DebitSilent published %v, want nothing", got)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("balance survives restart", func(t *testing.T) {
		store := storage.NewMemoryStore()
		l, _ := newTestLedger(t, store, constants.LevelPolicyDerived)
		l.Credit(420, "seed")

		reloaded, _ := newTestLedger(t, store, constants.LevelPolicyDerived)
		if reloaded.Balance() != 420 || reloaded.Level() != 4 {
			t.Errorf("reloaded balance=%d level=%d, want 420 and 4", reloaded.Balance(), reloaded.Level())
		}
	})

	t.Run("derived ignores stored level", func(t *testing.T) {
		store := storage.NewMemoryStore()
		store.Set(constants.KeyGemBalance, "150")
		store.Set(constants.KeyGemLevel, "7")

		l, _ := newTestLedger(t, store, constants.LevelPolicyDerived)
		if l.Level() != 2 {
			t.Errorf("level = %d, want 2", l.Level())
		}
	})

	t.Run("sticky keeps higher stored level", func(t *testing.T) {
		store := storage.NewMemoryStore()
		store.Set(constants.KeyGemBalance, "150")
		store.Set(constants.KeyGemLevel, "7")

		l, _ := newTestLedger(t, store, constants.LevelPolicySticky)
		if l.Level() != 7 {
			t.Errorf("level = %d, want 7", l.Level())
		}
	})

	t.Run("sticky clamps stored level", func(t *testing.T) {
		store := storage.NewMemoryStore()
		store.Set(constants.KeyGemLevel, "40")

		l, _ := newTestLedger(t, store, constants.LevelPolicySticky)
		if l.Level() != 9 {
			t.Errorf("level = %d, want 9", l.Level())
		}
	})

	t.Run("corrupt balance starts at zero", func(t *testing.T) {
		store := storage.NewMemoryStore()
		store.Set(constants.KeyGemBalance, "lots")

		l, _ := newTestLedger(t, store, constants.LevelPolicyDerived)
		if l.Balance() != 0 || l.Level() != 1 {
			t.Errorf("balance=%d level=%d, want 0 and 1", l.Balance(), l.Level())
		}
	})
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	l, rec := newTestLedger(t, failingStore{storage.NewMemoryStore()}, constants.LevelPolicyDerived)

	change, err := l.Credit(120, "habit")
	if !apperrors.IsPersistence(err) {
		t.Fatalf("Credit() error = %v, want a persistence error", err)
	}
	if change.Balance != 120 || l.Balance() != 120 {
		t.Errorf("balance = %d, want 120 kept in memory", l.Balance())
	}
	if len(rec.OfType(events.TypeBalanceChanged)) != 1 {
		t.Error("Credit() should still publish after a persistence failure")
	}
}

func TestSnapshot(t *testing.T) {
	l, _ := newTestLedger(t, storage.NewMemoryStore(), constants.LevelPolicyDerived)
	l.Credit(150, "seed")

	got := l.Snapshot()
	if got.Balance != 150 || got.Level != 2 || got.Progress != 0.5 {
		t.Errorf("Snapshot() = %+v, want balance 150 level 2 progress 0.5", got)
	}
}

func TestCreditStopsAtMaxInt(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(constants.KeyGemBalance, strconv.Itoa(math.MaxInt-5))
	l, rec := newTestLedger(t, store, constants.LevelPolicyDerived)

	change, err := l.Credit(100, "habit")
	if err != nil {
		t.Fatalf("Credit() failed: %v", err)
	}
	if change.Balance != math.MaxInt || change.Applied != 5 {
		t.Errorf("Credit(100) near the limit: balance=%d applied=%d, want MaxInt and 5", change.Balance, change.Applied)
	}

	change, _ = l.Credit(math.MaxInt, "habit")
	if l.Balance() != math.MaxInt || change.Applied != 0 {
		t.Errorf("Credit at the limit: balance=%d applied=%d, want MaxInt and 0", l.Balance(), change.Applied)
	}
	if n := len(rec.OfType(events.TypeBalanceChanged)); n != 1 {
		t.Errorf("published %d balance events, want 1", n)
	}

	change, _ = l.Debit(10, "penalty")
	if change.Applied != 10 || l.Balance() != math.MaxInt-10 {
		t.Errorf("Debit(10) from MaxInt: applied=%d balance=%d", change.Applied, l.Balance())
	}
}

func TestCreditZeroIsNotAMutation(t *testing.T) {
	store := storage.NewMemoryStore()
	l, rec := newTestLedger(t, store, constants.LevelPolicyDerived)

	change, err := l.Credit(0, "habit without gems")
	if err != nil {
		t.Fatalf("Credit(0) failed: %v", err)
	}
	if change.Applied != 0 || change.Balance != 0 || change.LevelChanged() {
		t.Errorf("Credit(0) = %+v", change)
	}
	if len(rec.Events()) != 0 {
		t.Errorf("Credit(0) published %v", rec.Events())
	}
	if _, err := store.Get(constants.KeyGemBalance); !storage.IsNotFound(err) {
		t.Errorf("Credit(0) wrote the balance: %v", err)
	}
}
