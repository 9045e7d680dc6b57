package sqlite

import (
	"path/filepath"
	"reflect"
	"testing"

	apperrors "github.com/julianstephens/tendwell/internal/errors"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "config", "tendwell.db")
	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestStoreKeyValue(t *testing.T) {
	store, _ := setupTestStore(t)

	if _, err := store.Get("gems/balance"); err != apperrors.ErrNotFound {
		t.Fatalf("Get on fresh store: error = %v, want ErrNotFound", err)
	}

	if err := store.Set("gems/balance", "10"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("gems/balance", "25"); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}
	if got, _ := store.Get("gems/balance"); got != "25" {
		t.Errorf("Get = %q, want %q", got, "25")
	}

	if err := store.SetMany(map[string]string{
		"chapters/list":        "[]",
		"chapters/completions": "{}",
		"chapter":              "x",
	}); err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}

	keys, err := store.Keys("chapters/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	want := []string{"chapters/completions", "chapters/list"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}

	if err := store.Remove("chapter"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Get("chapter"); err != apperrors.ErrNotFound {
		t.Errorf("Get after Remove: error = %v, want ErrNotFound", err)
	}
}

func TestStoreKeysPrefixIsLiteral(t *testing.T) {
	store, _ := setupTestStore(t)

	store.Set("habits/a", "1")
	store.Set("habits_b", "2")
	store.Set("habitsXc", "3")

	keys, err := store.Keys("habits/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"habits/a"}) {
		t.Errorf("Keys = %v, want only habits/a", keys)
	}
}

func TestStoreDurableAcrossReopen(t *testing.T) {
	store, dbPath := setupTestStore(t)

	if err := store.Set("gems/level", "3"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	store.Close()

	reopened := NewStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	if got, err := reopened.Get("gems/level"); err != nil || got != "3" {
		t.Errorf("Get after reopen = (%q, %v), want (\"3\", nil)", got, err)
	}
}

func TestStoreLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("Load should fail when the database file does not exist")
	}
}

func TestStoreNotLoaded(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never.db"))
	if _, err := store.Get("k"); err == nil {
		t.Error("Get on an unopened store should fail")
	}
	if err := store.Set("k", "v"); err == nil {
		t.Error("Set on an unopened store should fail")
	}
}

func TestStoreSchemaVersion(t *testing.T) {
	store, _ := setupTestStore(t)

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("SchemaVersion = (%d, %d), want an up-to-date schema", current, latest)
	}

	applied, err := store.Migrate(nil)
	if err != nil || applied != 0 {
		t.Errorf("Migrate on an up-to-date store = (%d, %v), want (0, nil)", applied, err)
	}
}
