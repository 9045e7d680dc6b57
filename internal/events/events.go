package events

import "fmt"

// Type identifies an engine event.
type Type string

const (
	TypeBalanceChanged   Type = "balance_changed"
	TypeLevelChanged     Type = "level_changed"
	TypeHabitCompleted   Type = "habit_completed"
	TypeChapterCompleted Type = "chapter_completed"
	TypeChapterUnlocked  Type = "chapter_unlocked"
)

// Event is anything published on a Bus.
type Event interface {
	Type() Type
}

// ChangeKind tells credits and debits apart on BalanceChanged.
type ChangeKind string

const (
	Credit ChangeKind = "credit"
	Debit  ChangeKind = "debit"
)

// BalanceChanged is published after every credit and public debit.
// Amount is the amount actually applied, so a clamped debit reports less than
// was requested.
type BalanceChanged struct {
	Kind   ChangeKind
	Amount int
	Reason string
	Total  int
}

func (BalanceChanged) Type() Type { return TypeBalanceChanged }

func (e BalanceChanged) String() string {
	sign := "+"
	if e.Kind == Debit {
		sign = "-"
	}
	return fmt.Sprintf("%s%d gems (%s), balance %d", sign, e.Amount, e.Reason, e.Total)
}

type LevelChanged struct {
	Old int
	New int
}

func (LevelChanged) Type() Type { return TypeLevelChanged }

// Up reports whether the level rose.
func (e LevelChanged) Up() bool { return e.New > e.Old }

type HabitCompleted struct {
	HabitID string
	Title   string
	Streak  int
	// MilestoneReward is the bonus credited for milestones reached by this
	// completion, zero when none were.
	MilestoneReward int
	Milestones      []string
}

func (HabitCompleted) Type() Type { return TypeHabitCompleted }

type ChapterCompleted struct {
	ChapterID string
	Reward    int
}

func (ChapterCompleted) Type() Type { return TypeChapterCompleted }

type ChapterUnlocked struct {
	ChapterID string
}

func (ChapterUnlocked) Type() Type { return TypeChapterUnlocked }
