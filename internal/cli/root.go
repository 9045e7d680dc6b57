package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/tendwell/internal/backup"
	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/logger"
	"github.com/julianstephens/tendwell/internal/notifier"
	"github.com/julianstephens/tendwell/internal/progression"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
)

type Context struct {
	Store storage.Provider
	// Timezone overrides the timezone setting when non-empty.
	Timezone string
	// Now replaces the wall clock. Tests pin it to a fixed time.
	Now func() time.Time
	// Notifier also receives engine events when set.
	Notifier *notifier.Notifier

	engine *progression.Engine
}

// Engine builds the progression engine on first use. Engine events are
// printed as notifications and pending chapter unlocks are applied before the
// engine is handed out.
func (c *Context) Engine() (*progression.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}

	settings, err := storage.GetSettings(c.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if c.Timezone != "" {
		settings.Timezone = c.Timezone
	}
	cal, err := utils.NewCalendarForTimezone(settings.Timezone)
	if err != nil {
		return nil, err
	}
	if c.Now != nil {
		cal = cal.WithClock(c.Now)
	}

	bus := events.NewBus()
	bus.Subscribe(PrintEvent)
	if c.Notifier != nil {
		bus.Subscribe(c.Notifier.Handler(Notification))
	}

	engine, err := progression.New(progression.Config{
		Store:    c.Store,
		Calendar: cal,
		Settings: settings,
		Bus:      bus,
	})
	if engine == nil {
		return nil, err
	}
	if err != nil {
		// The engine still works on its in-memory state; changes may not stick.
		fmt.Fprintf(os.Stderr, "Warning: some progress could not be loaded: %v\n", err)
	}
	if _, err := engine.Refresh(); err != nil {
		logger.Warn("Refresh failed", "error", err)
	}
	logger.Debug("Engine ready", "timezone", cal.Location(), "policy", settings.LevelPolicy)

	c.engine = engine
	return engine, nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if !backup.Supported(path) {
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}
