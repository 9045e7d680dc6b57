package models

// Chapter is one unit of sequential content. Title, Summary and GemsReward come
// from the bundled content document; IsUnlocked and IsCompleted are progression
// state.
type Chapter struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	GemsReward  int    `json:"gems_reward"`
	IsUnlocked  bool   `json:"is_unlocked"`
	IsCompleted bool   `json:"is_completed"`
}
