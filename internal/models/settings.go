package models

import "github.com/julianstephens/tendwell/internal/constants"

// Settings represents application-wide settings
type Settings struct {
	Timezone       string                `json:"timezone"`         // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	LevelPolicy    constants.LevelPolicy `json:"level_policy"`     // how levels react to balance decreases
	PenaltyGems    int                   `json:"penalty_gems"`     // default gems deducted per relapse event
	SeedStarterSet bool                  `json:"seed_starter_set"` // seed starter habits on first run
}
