package settings

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/tendwell/internal/cli"
	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return &cli.Context{Store: store}
}

func TestSettingsShow(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsShowCmd{}).Run(ctx); err != nil {
		t.Errorf("settings show failed: %v", err)
	}
}

func TestSettingsSet(t *testing.T) {
	ctx := setupTestDB(t)

	tz := "Europe/Berlin"
	policy := "sticky"
	penalty := 12
	seed := false
	cmd := &SettingsSetCmd{Timezone: &tz, LevelPolicy: &policy, PenaltyGems: &penalty, SeedStarterSet: &seed}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	got, err := storage.GetSettings(ctx.Store)
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if got.Timezone != tz {
		t.Errorf("Timezone = %q, want %q", got.Timezone, tz)
	}
	if got.LevelPolicy != constants.LevelPolicySticky {
		t.Errorf("LevelPolicy = %q, want sticky", got.LevelPolicy)
	}
	if got.PenaltyGems != penalty {
		t.Errorf("PenaltyGems = %d, want %d", got.PenaltyGems, penalty)
	}
	if got.SeedStarterSet {
		t.Error("SeedStarterSet should be false")
	}
}

func TestSettingsSetRejectsInvalidValues(t *testing.T) {
	ctx := setupTestDB(t)

	tz := "Mars/Olympus_Mons"
	if err := (&SettingsSetCmd{Timezone: &tz}).Run(ctx); err == nil {
		t.Error("expected error for invalid timezone")
	}

	penalty := -1
	if err := (&SettingsSetCmd{PenaltyGems: &penalty}).Run(ctx); err == nil {
		t.Error("expected error for negative penalty")
	}

	got, err := storage.GetSettings(ctx.Store)
	if err != nil {
		t.Fatal(err)
	}
	if got.Timezone != constants.DefaultTimezone || got.PenaltyGems != constants.DefaultPenaltyGems {
		t.Errorf("settings changed by rejected update: %+v", got)
	}
}

func TestSettingsSetNoChanges(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsSetCmd{}).Run(ctx); err != nil {
		t.Errorf("settings set without flags failed: %v", err)
	}
}
