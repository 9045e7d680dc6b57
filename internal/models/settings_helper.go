package models

import (
	"fmt"

	"github.com/julianstephens/tendwell/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Missing keys keep their default value; unknown keys are ignored.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingLevelPolicy:
			policy := constants.LevelPolicy(value)
			if policy != constants.LevelPolicyDerived && policy != constants.LevelPolicySticky {
				return Settings{}, fmt.Errorf("parsing level_policy: unknown policy %q", value)
			}
			settings.LevelPolicy = policy
		case constants.SettingPenaltyGems:
			if _, err := fmt.Sscanf(value, "%d", &settings.PenaltyGems); err != nil {
				return Settings{}, fmt.Errorf("parsing penalty_gems: %w", err)
			}
			if settings.PenaltyGems < 0 {
				return Settings{}, fmt.Errorf("parsing penalty_gems: must not be negative")
			}
		case constants.SettingSeedStarterSet:
			settings.SeedStarterSet = value == "true"
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:       settings.Timezone,
		constants.SettingLevelPolicy:    string(settings.LevelPolicy),
		constants.SettingPenaltyGems:    fmt.Sprintf("%d", settings.PenaltyGems),
		constants.SettingSeedStarterSet: fmt.Sprintf("%v", settings.SeedStarterSet),
	}
}

// DefaultSettings returns the settings a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		Timezone:       constants.DefaultTimezone,
		LevelPolicy:    constants.DefaultLevelPolicy,
		PenaltyGems:    constants.DefaultPenaltyGems,
		SeedStarterSet: constants.DefaultSeedStarterSet,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.LevelPolicy == "" {
		settings.LevelPolicy = constants.DefaultLevelPolicy
	}
	if settings.PenaltyGems < 0 {
		settings.PenaltyGems = constants.DefaultPenaltyGems
	}
}
