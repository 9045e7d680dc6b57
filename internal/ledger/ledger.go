// Package ledger holds the gem balance and the level derived from it.
package ledger

import (
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/tendwell/internal/constants"
	apperrors "github.com/julianstephens/tendwell/internal/errors"
	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/levels"
	"github.com/julianstephens/tendwell/internal/logger"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
)

// Change describes the effect of one ledger mutation.
type Change struct {
	Requested int
	Applied   int
	Balance   int
	OldLevel  int
	NewLevel  int
}

// LevelChanged reports whether the mutation moved the level.
func (c Change) LevelChanged() bool { return c.OldLevel != c.NewLevel }

// Snapshot is a consistent read of the ledger.
type Snapshot struct {
	Balance  int
	Level    int
	Progress float64
}

type Ledger struct {
	mu      sync.Mutex
	store   storage.Provider
	pub     events.Publisher
	policy  constants.LevelPolicy
	balance int
	level   int
	log     *log.Logger
}

// New loads the ledger from store. A missing or corrupt balance starts at
// zero. When the store cannot be read at all the ledger is still returned,
// empty, together with the error.
func New(store storage.Provider, pub events.Publisher, policy constants.LevelPolicy) (*Ledger, error) {
	if pub == nil {
		pub = events.Discard
	}
	if policy == "" {
		policy = constants.DefaultLevelPolicy
	}
	l := &Ledger{
		store:  store,
		pub:    pub,
		policy: policy,
		level:  levels.MinLevel,
		log:    logger.Component("ledger"),
	}
	return l, l.load()
}

func (l *Ledger) load() error {
	balance, err := storage.GetInt(l.store, constants.KeyGemBalance)
	switch {
	case err == nil:
	case storage.IsNotFound(err):
		balance = 0
	case storage.IsCorrupt(err):
		l.log.Warn("Discarding unreadable gem balance", "error", err)
		balance = 0
	default:
		return apperrors.Persist("load", constants.KeyGemBalance, err)
	}
	if balance < 0 {
		balance = 0
	}
	l.balance = balance

	derived := levels.LevelFor(balance)
	l.level = derived
	if l.policy != constants.LevelPolicySticky {
		return nil
	}

	stored, err := storage.GetInt(l.store, constants.KeyGemLevel)
	switch {
	case err == nil:
		if stored = levels.Clamp(stored); stored > derived {
			l.level = stored
		}
	case storage.IsNotFound(err):
	case storage.IsCorrupt(err):
		l.log.Warn("Re-deriving unreadable level", "error", err)
	default:
		return apperrors.Persist("load", constants.KeyGemLevel, err)
	}
	return nil
}

// Credit adds amount to the balance. Negative amounts count as zero and the
// balance stops at math.MaxInt. A credit that adds nothing is not a mutation:
// it is neither persisted nor published.
func (l *Ledger) Credit(amount int, reason string) (Change, error) {
	amount = max(amount, 0)

	l.mu.Lock()
	change := Change{Requested: amount, OldLevel: l.level}
	next := utils.AddCapped(l.balance, amount)
	change.Applied = next - l.balance
	if change.Applied == 0 {
		change.Balance, change.NewLevel = l.balance, l.level
		l.mu.Unlock()
		return change, nil
	}
	l.balance = next
	if lv := levels.LevelFor(l.balance); lv > l.level {
		l.level = lv
	}
	change.Balance, change.NewLevel = l.balance, l.level
	err := l.persist()
	l.mu.Unlock()

	l.log.Debug("Credited gems", "amount", change.Applied, "reason", reason, "balance", change.Balance)
	l.pub.Publish(events.BalanceChanged{Kind: events.Credit, Amount: change.Applied, Reason: reason, Total: change.Balance})
	l.publishLevel(change)
	return change, err
}

// Debit subtracts amount, never going below zero. Whether the level can drop
// depends on the level policy.
func (l *Ledger) Debit(amount int, reason string) (Change, error) {
	change, err := l.debit(amount, l.policy == constants.LevelPolicyDerived)

	l.log.Debug("Debited gems", "amount", change.Applied, "reason", reason, "balance", change.Balance)
	l.pub.Publish(events.BalanceChanged{Kind: events.Debit, Amount: change.Applied, Reason: reason, Total: change.Balance})
	l.publishLevel(change)
	return change, err
}

// DebitSilent subtracts amount like Debit but publishes nothing. The level is
// always lowered to match the new balance.
func (l *Ledger) DebitSilent(amount int, reason string) (Change, error) {
	change, err := l.debit(amount, true)
	l.log.Debug("Silently debited gems", "amount", change.Applied, "reason", reason, "balance", change.Balance)
	return change, err
}

func (l *Ledger) debit(amount int, rederive bool) (Change, error) {
	amount = max(amount, 0)

	l.mu.Lock()
	defer l.mu.Unlock()

	change := Change{Requested: amount, Applied: min(amount, l.balance), OldLevel: l.level}
	l.balance -= change.Applied
	if next := levels.LevelFor(l.balance); rederive && next < l.level {
		l.level = next
	}
	change.Balance, change.NewLevel = l.balance, l.level
	return change, l.persist()
}

// persist writes balance and level together. Callers hold l.mu.
func (l *Ledger) persist() error {
	err := l.store.SetMany(map[string]string{
		constants.KeyGemBalance: strconv.Itoa(l.balance),
		constants.KeyGemLevel:   strconv.Itoa(l.level),
	})
	if err != nil {
		l.log.Error("Failed to persist ledger", "error", err)
		return apperrors.Persist("save", constants.KeyGemBalance, err)
	}
	return nil
}

func (l *Ledger) publishLevel(c Change) {
	if !c.LevelChanged() {
		return
	}
	l.log.Info("Level changed", "old", c.OldLevel, "new", c.NewLevel)
	l.pub.Publish(events.LevelChanged{Old: c.OldLevel, New: c.NewLevel})
}

func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

func (l *Ledger) Level() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Ledger) Policy() constants.LevelPolicy {
	return l.policy
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Balance:  l.balance,
		Level:    l.level,
		Progress: levels.ProgressToNext(l.level, l.balance),
	}
}
