package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tendwell/internal/cli"
	"github.com/julianstephens/tendwell/internal/cli/backups"
	"github.com/julianstephens/tendwell/internal/cli/settings"
	"github.com/julianstephens/tendwell/internal/cli/system"
	"github.com/julianstephens/tendwell/internal/constants"
	apperrors "github.com/julianstephens/tendwell/internal/errors"
	"github.com/julianstephens/tendwell/internal/logger"
	"github.com/julianstephens/tendwell/internal/notifier"
	"github.com/julianstephens/tendwell/internal/storage"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Store path (.db for SQLite, .json for a JSON file), a PostgreSQL connection string, or 'keyring' to use the connection string saved in the OS keyring. Credentials must NOT be embedded in the connection string." env:"TENDWELL_CONFIG" default:"${default_config}"`
	Timezone string `help:"Override the timezone setting for this run." env:"TENDWELL_TIMEZONE"`
	Debug    bool   `help:"Print debug logs to stderr."`
	NoNotify bool   `help:"Do not forward notifications to the desktop tray." env:"TENDWELL_NO_NOTIFY"`

	Init     system.InitCmd       `cmd:"" help:"Initialize tendwell storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Status   cli.StatusCmd        `cmd:"" help:"Show level, gems and today's progress." default:"1"`
	Habit    cli.HabitCmd         `cmd:"" help:"Manage and complete habits."`
	Chapter  cli.ChapterCmd       `cmd:"" help:"Read chapters, one a day."`
	Penalty  cli.PenaltyCmd       `cmd:"" help:"Record a relapse and deduct gems."`
	Gems     cli.GemsCmd          `cmd:"" help:"Adjust the gem balance."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups of a local store."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habits, gems and one chapter a day"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	appCtx := &cli.Context{Timezone: CLI.Timezone}
	if !CLI.NoNotify {
		appCtx.Notifier = notifier.New()
	}
	command := ctx.Command()

	// Keyring commands manage the connection string and need no store.
	if !strings.HasPrefix(command, "keyring") {
		store, err := storage.Open(CLI.Config)
		apperrors.Fatal(err)
		appCtx.Store = store

		// Init handles its own loading
		if !strings.HasPrefix(command, "init") {
			apperrors.Fatal(store.Load())
		}
	}

	err := ctx.Run(appCtx)
	if appCtx.Store != nil {
		_ = appCtx.Store.Close()
	}
	apperrors.Fatal(err)
}

// logDir keeps logs next to a local store and under the user config
// directory otherwise.
func logDir(config string) string {
	if config == storage.KeyringConfig || strings.Contains(config, "://") || strings.Contains(config, "host=") {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		return filepath.Join(dir, constants.AppName)
	}
	if strings.HasPrefix(config, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			config = filepath.Join(home, config[1:])
		}
	}
	return filepath.Dir(config)
}
