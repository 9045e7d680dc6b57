// Package levels maps cumulative gems to a bounded level.
package levels

const (
	MinLevel = 1
	MaxLevel = 9

	baseXP = 100
)

// Level describes how a level is presented.
type Level struct {
	Number int
	Title  string
	// Gradient holds the start and end colours of the level badge.
	Gradient  [2]string
	Threshold int
}

var table = [MaxLevel]struct {
	title    string
	gradient [2]string
}{
	{"Seedling", [2]string{"#A8E063", "#56AB2F"}},
	{"Sprout", [2]string{"#96E6A1", "#4CA1AF"}},
	{"Sapling", [2]string{"#43CEA2", "#185A9D"}},
	{"Grove", [2]string{"#56CCF2", "#2F80ED"}},
	{"Canopy", [2]string{"#8E2DE2", "#4A00E0"}},
	{"Orchard", [2]string{"#F7971E", "#FFD200"}},
	{"Woodland", [2]string{"#F953C6", "#B91D73"}},
	{"Old Growth", [2]string{"#EB5757", "#000000"}},
	{"Evergreen", [2]string{"#FFD700", "#FF8C00"}},
}

// Clamp forces level into [MinLevel, MaxLevel].
func Clamp(level int) int {
	switch {
	case level < MinLevel:
		return MinLevel
	case level > MaxLevel:
		return MaxLevel
	default:
		return level
	}
}

// XPRequiredFor returns the cumulative gems needed to reach level: 0 for
// level 1 and below, then 100 doubling per level.
func XPRequiredFor(level int) int {
	if level <= MinLevel {
		return 0
	}
	return baseXP << (Clamp(level) - 2)
}

// LevelFor returns the highest level whose threshold xp meets.
func LevelFor(xp int) int {
	level := MinLevel
	for l := MinLevel + 1; l <= MaxLevel; l++ {
		if xp < XPRequiredFor(l) {
			break
		}
		level = l
	}
	return level
}

// ProgressToNext returns how far xp is between level and the next one, in
// [0, 1]. The last level always reports 1.
func ProgressToNext(level, xp int) float64 {
	level = Clamp(level)
	if level == MaxLevel {
		return 1
	}
	lo, hi := XPRequiredFor(level), XPRequiredFor(level+1)
	p := float64(xp-lo) / float64(hi-lo)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Info returns the presentation data for level, clamped to the valid range.
func Info(level int) Level {
	level = Clamp(level)
	row := table[level-1]
	return Level{
		Number:    level,
		Title:     row.title,
		Gradient:  row.gradient,
		Threshold: XPRequiredFor(level),
	}
}

// All returns every level in order.
func All() []Level {
	out := make([]Level, 0, MaxLevel)
	for l := MinLevel; l <= MaxLevel; l++ {
		out = append(out, Info(l))
	}
	return out
}
