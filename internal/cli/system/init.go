package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tendwell/internal/backup"
	"github.com/julianstephens/tendwell/internal/cli"
	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Reset all progress before initialization."`
	Source string `help:"Store path or connection string to copy progress from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	if c.Force {
		// Server stores cannot be deleted, so their keys are cleared instead.
		if err := clearKeys(ctx.Store); err != nil {
			return fmt.Errorf("failed to clear existing progress: %w", err)
		}
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying progress from: %s\n", c.Source)
		n, err := c.copyFrom(ctx, c.Source)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Printf("Copied %d keys.\n", n)
	}

	// Settings are written explicitly so that the file shows what is in effect.
	keys, err := ctx.Store.Keys(constants.KeySettingsPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		settings, err := storage.GetSettings(ctx.Store)
		if err != nil {
			return err
		}
		if err := storage.SaveSettings(ctx.Store, settings); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if !backup.Supported(path) {
		return nil
	}
	// Don't delete if it's the source (user error protection)
	if c.Source != "" {
		absPath, _ := filepath.Abs(path)
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == absPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing store: %w", err)
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
	}
	fmt.Printf("Deleted existing store at: %s\n", path)
	return nil
}

func clearKeys(p storage.Provider) error {
	keys, err := p.Keys("")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := p.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

// copyFrom copies every key of the source store in one atomic write.
func (c *InitCmd) copyFrom(ctx *cli.Context, source string) (int, error) {
	src, err := storage.Open(source)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	keys, err := src.Keys("")
	if err != nil {
		return 0, fmt.Errorf("failed to list source keys: %w", err)
	}
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := src.Get(key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s from source: %w", key, err)
		}
		values[key] = v
	}
	if len(values) == 0 {
		return 0, nil
	}
	if err := ctx.Store.SetMany(values); err != nil {
		return 0, fmt.Errorf("failed to write to destination: %w", err)
	}
	return len(values), nil
}
