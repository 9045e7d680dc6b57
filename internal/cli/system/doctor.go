package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tendwell/internal/backup"
	"github.com/julianstephens/tendwell/internal/cli"
	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/habits"
	"github.com/julianstephens/tendwell/internal/levels"
	"github.com/julianstephens/tendwell/internal/models"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
	"github.com/julianstephens/tendwell/internal/validation"
)

// errSkipped marks a check that does not apply to the configured store.
var errSkipped = errors.New("not applicable")

type check struct {
	name string
	// needsStore checks are skipped when the store cannot be loaded.
	needsStore bool
	// warnOnly checks never fail the run.
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Store reachable", run: checkStoreReachable},
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Settings", needsStore: true, run: checkSettings},
	{name: "Gem ledger", needsStore: true, run: checkLedger},
	{name: "Habit records", needsStore: true, run: checkHabits},
	{name: "Chapter progress", needsStore: true, run: checkChapters},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone() }},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := true

	for _, c := range checks {
		if c.needsStore && !storeReachable {
			fmt.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			fmt.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Store reachable" {
				storeReachable = false
			}
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, err := ctx.Store.Keys(constants.KeySettingsPrefix); err != nil {
		return fmt.Errorf("failed to query store: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return fmt.Errorf("%w: store has no schema", errSkipped)
	}

	current, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if !backup.Supported(path) {
		return fmt.Errorf("%w: store is not a local file", errSkipped)
	}

	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, create one with 'tendwell backup create'")
	}
	if age := time.Since(backups[0].Timestamp); age > 7*constants.Day {
		return fmt.Errorf("latest backup is %d days old", int(age/constants.Day))
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := storage.GetSettings(ctx.Store)
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting: %s", settings.Timezone)
	}
	return nil
}

func checkLedger(ctx *cli.Context) error {
	balance, err := storage.GetInt(ctx.Store, constants.KeyGemBalance)
	if storage.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	if balance < 0 {
		return fmt.Errorf("balance is negative: %d", balance)
	}

	level, err := storage.GetInt(ctx.Store, constants.KeyGemLevel)
	if storage.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}
	if level != levels.Clamp(level) {
		return fmt.Errorf("level %d is outside %d..%d", level, levels.MinLevel, levels.MaxLevel)
	}

	settings, err := storage.GetSettings(ctx.Store)
	if err != nil {
		return err
	}
	derived := levels.LevelFor(balance)
	switch {
	case settings.LevelPolicy == constants.LevelPolicyDerived && level != derived:
		return fmt.Errorf("level %d does not match balance %d (expected %d)", level, balance, derived)
	case level < derived:
		return fmt.Errorf("level %d is below the level earned by balance %d", level, balance)
	}
	return nil
}

func checkHabits(ctx *cli.Context) error {
	list, unreadable, err := habits.Inspect(ctx.Store)
	if err != nil {
		return err
	}
	if len(unreadable) > 0 {
		return fmt.Errorf("%d unreadable habit record(s): %v", len(unreadable), unreadable)
	}

	v := validation.New()
	for _, h := range list {
		if result := v.ValidateDefinition(h.HabitDefinition); result.HasConflicts() {
			return fmt.Errorf("habit %s: %w", h.ID, result.Err())
		}
		if result := v.ValidateProgress(h); result.HasConflicts() {
			return fmt.Errorf("habit %s: %w", h.ID, result.Err())
		}
	}
	result := v.ValidateHabits(list)
	return result.Err()
}

func checkChapters(ctx *cli.Context) error {
	var list []models.Chapter
	err := storage.GetRecord(ctx.Store, constants.KeyChapters, &list)
	if storage.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	result := validation.New().ValidateChapters(list)
	return result.Err()
}

func checkClockTimezone() error {
	// Check if system time is reasonable
	now := time.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
