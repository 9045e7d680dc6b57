package settings

import (
	"fmt"

	"github.com/julianstephens/tendwell/internal/cli"
	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/storage"
	"github.com/julianstephens/tendwell/internal/utils"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Update settings."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := storage.GetSettings(ctx.Store)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	fmt.Println("Current Settings:")
	fmt.Printf("  Timezone:          %s\n", settings.Timezone)
	fmt.Printf("  Level Policy:      %s\n", settings.LevelPolicy)
	fmt.Printf("  Penalty Gems:      %d\n", settings.PenaltyGems)
	fmt.Printf("  Seed Starter Set:  %v\n", settings.SeedStarterSet)
	return nil
}

type SettingsSetCmd struct {
	Timezone       *string `help:"IANA timezone name, or Local for the system timezone."`
	LevelPolicy    *string `help:"How levels react to penalties: derived or sticky." enum:"derived,sticky"`
	PenaltyGems    *int    `help:"Gems deducted per penalty event when no amount is given."`
	SeedStarterSet *bool   `help:"Create the starter habits on first run."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	settings, err := storage.GetSettings(ctx.Store)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.LevelPolicy != nil {
		settings.LevelPolicy = constants.LevelPolicy(*c.LevelPolicy)
		updated = true
	}
	if c.PenaltyGems != nil {
		if *c.PenaltyGems < 0 {
			return fmt.Errorf("penalty gems must not be negative")
		}
		settings.PenaltyGems = *c.PenaltyGems
		updated = true
	}
	if c.SeedStarterSet != nil {
		settings.SeedStarterSet = *c.SeedStarterSet
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}
	if err := storage.SaveSettings(ctx.Store, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
