package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingTitle        ConflictType = "missing_title"
	ConflictInvalidCategory     ConflictType = "invalid_category"
	ConflictInvalidFrequency    ConflictType = "invalid_frequency"
	ConflictInvalidUnit         ConflictType = "invalid_unit"
	ConflictInvalidTarget       ConflictType = "invalid_target"
	ConflictNegativeGems        ConflictType = "negative_gems"
	ConflictExcessiveGems       ConflictType = "excessive_gems"
	ConflictInvalidProgress     ConflictType = "invalid_progress"
	ConflictDuplicateHabitTitle ConflictType = "duplicate_habit_title"
	ConflictMissingChapterID    ConflictType = "missing_chapter_id"
	ConflictDuplicateChapterID  ConflictType = "duplicate_chapter_id"
	ConflictChapterOrder        ConflictType = "chapter_order"
	ConflictUnlockGap           ConflictType = "unlock_gap"
	ConflictCompletedLocked     ConflictType = "completed_locked"
)

// Conflict represents one detected problem.
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Titles or ids involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Has reports whether a conflict of type t was found.
func (vr *ValidationResult) Has(t ConflictType) bool {
	return slices.ContainsFunc(vr.Conflicts, func(c Conflict) bool { return c.Type == t })
}

// Err returns the report as an error, or nil when nothing was found.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	descriptions := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		descriptions = append(descriptions, c.Description)
	}
	return fmt.Errorf("%s", strings.Join(descriptions, "; "))
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var report strings.Builder
	report.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&report, "- %s\n", conflict.Description)
	}
	return report.String()
}

func (vr *ValidationResult) add(t ConflictType, items []string, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		Items:       items,
	})
}

// Validator checks habit definitions, habit records and chapter lists.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateDefinition checks a single habit template.
func (v *Validator) ValidateDefinition(def models.HabitDefinition) ValidationResult {
	result := ValidationResult{}
	name := def.Title
	if strings.TrimSpace(def.Title) == "" {
		name = "(untitled)"
		result.add(ConflictMissingTitle, nil, "Habit has no title")
	}
	items := []string{name}

	if !slices.Contains(models.Categories, def.Category) {
		result.add(ConflictInvalidCategory, items, "Habit \"%s\" has unknown category %q", name, def.Category)
	}
	if !def.Frequency.Valid() {
		result.add(ConflictInvalidFrequency, items, "Habit \"%s\" has invalid frequency %q", name, def.Frequency)
	}
	if !slices.Contains(models.Units, def.Unit) {
		result.add(ConflictInvalidUnit, items, "Habit \"%s\" has unknown unit %q", name, def.Unit)
	}
	if def.TargetAmount <= 0 || def.TargetAmount > constants.MaxTargetAmount {
		result.add(ConflictInvalidTarget, items, "Habit \"%s\" needs a target amount between 1 and %d, got %d", name, constants.MaxTargetAmount, def.TargetAmount)
	}
	if def.GemsPerCompletion < 0 {
		result.add(ConflictNegativeGems, items, "Habit \"%s\" awards negative gems: %d", name, def.GemsPerCompletion)
	} else if def.GemsPerCompletion > constants.MaxGemsPerCompletion {
		result.add(ConflictExcessiveGems, items, "Habit \"%s\" awards more than %d gems: %d", name, constants.MaxGemsPerCompletion, def.GemsPerCompletion)
	}
	return result
}

// ValidateProgress checks the mutable part of a habit record. A record that
// fails here keeps its definition but loses its progress.
func (v *Validator) ValidateProgress(h models.Habit) ValidationResult {
	result := ValidationResult{}
	items := []string{h.ID}

	switch {
	case h.TotalProgress < 0, h.CurrentStreak < 0, h.BestStreak < 0, h.RewardedMilestones < 0:
		result.add(ConflictInvalidProgress, items, "Habit %s has negative progress counters", h.ID)
	case h.CurrentStreak > h.BestStreak:
		result.add(ConflictInvalidProgress, items, "Habit %s has a current streak above its best streak", h.ID)
	case len(h.CompletedDates) > 0 && h.LastCompletedDate == nil:
		result.add(ConflictInvalidProgress, items, "Habit %s has completions but no last completion date", h.ID)
	}
	return result
}

// ValidateHabits checks a whole habit list for duplicates.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{}

	byTitle := make(map[string][]string)
	var titles []string
	for _, h := range habits {
		key := strings.ToLower(strings.TrimSpace(h.Title))
		if key == "" {
			continue
		}
		if _, seen := byTitle[key]; !seen {
			titles = append(titles, key)
		}
		byTitle[key] = append(byTitle[key], h.ID)
	}
	for _, title := range titles {
		if ids := byTitle[title]; len(ids) > 1 {
			result.add(ConflictDuplicateHabitTitle, ids, "Duplicate habit title: \"%s\" (IDs: %v)", title, ids)
		}
	}
	return result
}

// ValidateChapters checks the ordering and unlock invariants of a chapter
// list: ids are unique, indexes follow list order, unlocked chapters form a
// prefix that starts with the first chapter, and only unlocked chapters are
// completed.
func (v *Validator) ValidateChapters(chapters []models.Chapter) ValidationResult {
	result := ValidationResult{}
	seen := make(map[string]bool, len(chapters))
	lockedFrom := -1

	for i, c := range chapters {
		if c.ID == "" {
			result.add(ConflictMissingChapterID, nil, "Chapter at position %d has no id", i)
		} else if seen[c.ID] {
			result.add(ConflictDuplicateChapterID, []string{c.ID}, "Duplicate chapter id: %s", c.ID)
		}
		seen[c.ID] = true

		if c.Index != i {
			result.add(ConflictChapterOrder, []string{c.ID}, "Chapter %s has index %d at position %d", c.ID, c.Index, i)
		}
		if c.IsCompleted && !c.IsUnlocked {
			result.add(ConflictCompletedLocked, []string{c.ID}, "Chapter %s is completed but locked", c.ID)
		}

		if !c.IsUnlocked {
			if lockedFrom < 0 {
				lockedFrom = i
			}
			continue
		}
		if i == 0 {
			continue
		}
		if lockedFrom >= 0 {
			result.add(ConflictUnlockGap, []string{c.ID}, "Chapter %s is unlocked after locked chapter at position %d", c.ID, lockedFrom)
		} else if !chapters[i-1].IsCompleted {
			result.add(ConflictUnlockGap, []string{c.ID}, "Chapter %s is unlocked before the previous chapter was completed", c.ID)
		}
	}

	if len(chapters) > 0 && !chapters[0].IsUnlocked {
		result.add(ConflictUnlockGap, []string{chapters[0].ID}, "First chapter %s is locked", chapters[0].ID)
	}
	return result
}
