package chapters

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/tendwell/internal/models"
)

//go:embed content/chapters.json
var contentFS embed.FS

type contentDoc struct {
	Version  int `json:"version"`
	Chapters []struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Summary    string `json:"summary"`
		GemsReward int    `json:"gems_reward"`
	} `json:"chapters"`
}

// ParseContent turns a content document into the seed chapter list: ordered,
// first chapter unlocked, nothing completed.
func ParseContent(data []byte) ([]models.Chapter, error) {
	var doc contentDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse chapter content: %w", err)
	}
	if len(doc.Chapters) == 0 {
		return nil, fmt.Errorf("chapter content has no chapters")
	}

	seed := make([]models.Chapter, len(doc.Chapters))
	for i, c := range doc.Chapters {
		seed[i] = models.Chapter{
			ID:         c.ID,
			Index:      i,
			Title:      c.Title,
			Summary:    c.Summary,
			GemsReward: max(c.GemsReward, 0),
			IsUnlocked: i == 0,
		}
	}
	return seed, nil
}

// BundledContent returns the seed chapters shipped with the binary.
func BundledContent() ([]models.Chapter, error) {
	data, err := contentFS.ReadFile("content/chapters.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled chapters: %w", err)
	}
	return ParseContent(data)
}
