package system

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/tendwell/internal/cli"
	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store}, store
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)

	// Missing backups is a warning, not a failure
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_HealthyAfterUse(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)
	engine, err := ctx.Engine()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Habits().AddFromCatalog("journal"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.CompleteHabit(engine.Habits().List()[0].ID, 1); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor failed after normal use: %v", err)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	if _, err := store.GetDB().Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to clear schema version: %v", err)
	}
	if _, err := store.GetDB().Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to set schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail on a schema from the future")
	}
}

func TestDoctorCmd_CorruptData(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"unparseable balance", map[string]string{constants.KeyGemBalance: "lots"}},
		{"level out of range", map[string]string{constants.KeyGemBalance: "0", constants.KeyGemLevel: "42"}},
		{"level ahead of balance", map[string]string{constants.KeyGemBalance: "0", constants.KeyGemLevel: "3"}},
		{"unreadable habit", map[string]string{constants.KeyHabitPrefix + "x": "{"}},
		{"chapter unlock gap", map[string]string{constants.KeyChapters: `[{"id":"a","index":0,"is_unlocked":true},{"id":"b","index":1,"is_unlocked":false},{"id":"c","index":2,"is_unlocked":true}]`}},
		{"invalid timezone", map[string]string{constants.KeySettingsPrefix + constants.SettingTimezone: "Nowhere/Special"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestDoctorDB(t)
			if err := ctx.Store.SetMany(tt.values); err != nil {
				t.Fatal(err)
			}
			if err := (&DoctorCmd{}).Run(ctx); err == nil {
				t.Error("doctor should report the problem")
			}
		})
	}
}

func TestDoctorCmd_MemoryStore(t *testing.T) {
	ctx := &cli.Context{Store: storage.NewMemoryStore()}
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor failed on memory store: %v", err)
	}
}
