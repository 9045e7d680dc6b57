package system

import (
	"fmt"

	"github.com/julianstephens/tendwell/internal/cli"
	"github.com/julianstephens/tendwell/internal/logger"
	"github.com/julianstephens/tendwell/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		fmt.Println("This store has no schema to migrate.")
		return nil
	}

	count, err := m.Migrate(logger.Component("migrate"))
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("Successfully applied %d migration(s).\n", count)
	}
	return nil
}
