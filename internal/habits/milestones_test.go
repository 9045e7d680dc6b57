package habits

import (
	"testing"

	"github.com/julianstephens/tendwell/internal/models"
)

func TestMilestoneTablesAreOrdered(t *testing.T) {
	for _, unit := range models.Units {
		table := MilestonesFor(unit)
		if len(table) == 0 {
			t.Errorf("unit %s has no milestones", unit)
			continue
		}
		for i := 1; i < len(table); i++ {
			if table[i].Target <= table[i-1].Target {
				t.Errorf("unit %s milestones not strictly increasing at %d", unit, i)
			}
		}
	}
}

func TestMinutesStartAtOneHour(t *testing.T) {
	if first := MilestonesFor(models.UnitMinutes)[0]; first.Target != 60 {
		t.Errorf("first minutes milestone = %d, want 60", first.Target)
	}
}

func TestAchievedAndNewlyReached(t *testing.T) {
	h := models.Habit{HabitDefinition: models.HabitDefinition{Unit: models.UnitMinutes}, TotalProgress: 650}

	if got := len(Achieved(h)); got != 3 {
		t.Errorf("Achieved() = %d milestones, want 3", got)
	}
	if got := len(NewlyReached(h)); got != 3 {
		t.Errorf("NewlyReached() with no watermark = %d, want 3", got)
	}

	h.RewardedMilestones = 2
	got := NewlyReached(h)
	if len(got) != 1 || got[0].Target != 600 {
		t.Errorf("NewlyReached() past watermark = %v, want [600]", got)
	}

	h.RewardedMilestones = 3
	if got := NewlyReached(h); len(got) != 0 {
		t.Errorf("NewlyReached() fully rewarded = %v, want none", got)
	}

	next, ok := NextMilestone(h)
	if !ok || next.Target != 1500 {
		t.Errorf("NextMilestone() = %v, %v, want 1500", next, ok)
	}
}

func TestMilestonesForReturnsCopy(t *testing.T) {
	table := MilestonesFor(models.UnitPages)
	table[0].GemReward = 9999
	if MilestonesFor(models.UnitPages)[0].GemReward == 9999 {
		t.Error("MilestonesFor() exposed the shared table")
	}
}

func TestCatalogIsValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Catalog {
		if seen[def.Key] {
			t.Errorf("duplicate catalog key %s", def.Key)
		}
		seen[def.Key] = true
		if def.TargetAmount <= 0 || !def.Frequency.Valid() {
			t.Errorf("catalog entry %s is invalid", def.Key)
		}
	}
	for _, key := range StarterSet {
		if _, ok := CatalogEntry(key); !ok {
			t.Errorf("starter habit %s missing from catalog", key)
		}
	}
}
