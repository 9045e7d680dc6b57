package constants

// LevelPolicy controls how the level reacts to balance decreases.
type LevelPolicy string

const (
	// LevelPolicyDerived re-derives the level from the balance after every mutation.
	LevelPolicyDerived LevelPolicy = "derived"
	// LevelPolicySticky only lets levels drop through corrective (silent) debits.
	LevelPolicySticky LevelPolicy = "sticky"
)

const (
	// Setting keys
	SettingTimezone       = "timezone"
	SettingLevelPolicy    = "level_policy"
	SettingPenaltyGems    = "penalty_gems"
	SettingSeedStarterSet = "seed_starter_set"

	// Default Settings Values
	DefaultTimezone       = "Local" // Use system local timezone by default
	DefaultLevelPolicy    = LevelPolicyDerived
	DefaultPenaltyGems    = 5
	DefaultSeedStarterSet = true
)
