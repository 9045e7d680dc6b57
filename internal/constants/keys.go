package constants

// Storage keys. Every piece of engine state lives under one of these keys (or
// prefixes) in the key/value store.
const (
	KeyGemBalance         = "gems/balance"
	KeyGemLevel           = "gems/level"
	KeyHabitPrefix        = "habits/"
	KeyHabitsSeeded       = "habits-seeded"
	KeyChapters           = "chapters/list"
	KeyChapterCompletions = "chapters/completions"
	KeySettingsPrefix     = "settings/"
)
