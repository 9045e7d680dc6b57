package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/tendwell/internal/constants"
	apperrors "github.com/julianstephens/tendwell/internal/errors"
	"github.com/julianstephens/tendwell/internal/habits"
	"github.com/julianstephens/tendwell/internal/models"
)

type HabitCmd struct {
	Catalog HabitCatalogCmd `cmd:"" help:"Show the predefined habits."`
	Add     HabitAddCmd     `cmd:"" help:"Add a habit from the catalog or from scratch."`
	List    HabitListCmd    `cmd:"" help:"List habits with streaks and milestones."`
	Today   HabitTodayCmd   `cmd:"" help:"Show today's habits." default:"1"`
	Done    HabitDoneCmd    `cmd:"" help:"Complete a habit for today."`
	Remove  HabitRemoveCmd  `cmd:"" help:"Remove a habit and its history."`
}

type HabitCatalogCmd struct{}

func (c *HabitCatalogCmd) Run(ctx *Context) error {
	fmt.Println("Habit catalog:")
	fmt.Println()
	for _, def := range habits.Catalog {
		fmt.Printf("  %-20s %s %-22s %-14s %d %s, %d gems\n",
			def.Key, def.Emoji, def.Title, def.Frequency, def.TargetAmount, def.Unit, def.GemsPerCompletion)
	}
	fmt.Println()
	fmt.Println("Add one with: tendwell habit add <key>")
	return nil
}

type HabitAddCmd struct {
	Key string `arg:"" optional:"" help:"Catalog key (see 'habit catalog'). Omit to define a custom habit."`

	Title     string `help:"Title of a custom habit."`
	Emoji     string `help:"Emoji shown next to the habit." default:"⭐"`
	Category  string `help:"Category (health, mindfulness, learning, productivity, fitness, social, creativity)." default:"health"`
	Frequency string `help:"daily, weekdays, weekends, weekly or custom:N." default:"daily"`
	Unit      string `help:"Unit of measure (minutes, pages, exercises, times, hours, words)." default:"times"`
	Target    int    `help:"Amount per completion." default:"1"`
	Gems      int    `help:"Gems per completion." default:"5"`
}

func (c *HabitAddCmd) definition() (models.HabitDefinition, error) {
	if c.Title == "" {
		return models.HabitDefinition{}, errors.New("either a catalog key or --title is required")
	}
	freq, err := models.ParseFrequency(c.Frequency)
	if err != nil {
		return models.HabitDefinition{}, err
	}
	return models.HabitDefinition{
		Title:             c.Title,
		Emoji:             c.Emoji,
		Category:          models.HabitCategory(strings.ToLower(c.Category)),
		Frequency:         freq,
		Unit:              models.HabitUnit(strings.ToLower(c.Unit)),
		TargetAmount:      c.Target,
		GemsPerCompletion: c.Gems,
	}, nil
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	var habit models.Habit
	if c.Key != "" {
		habit, err = engine.Habits().AddFromCatalog(c.Key)
	} else {
		var def models.HabitDefinition
		if def, err = c.definition(); err != nil {
			return err
		}
		habit, err = engine.Habits().Add(def)
	}
	if habit.ID == "" {
		return err
	}
	if err != nil {
		return fmt.Errorf("habit added but not saved: %w", err)
	}

	fmt.Printf("Added habit: %s %s (%s)\n", habit.Emoji, habit.Title, shortID(habit.ID))
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	list := engine.Habits().List()
	if len(list) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, h := range list {
		fmt.Printf("%s %s %s\n", h.Emoji, h.Title, dimStyle.Render("("+shortID(h.ID)+", "+h.Frequency.String()+")"))
		fmt.Printf("    streak %d (best %d), total %d %s\n", h.CurrentStreak, h.BestStreak, h.TotalProgress, h.Unit)
		if m, ok := habits.NextMilestone(h); ok {
			fmt.Printf("    next milestone: %s at %d %s (+%d gems)\n", m.Title, m.Target, h.Unit, m.GemReward)
		} else {
			fmt.Println("    all milestones reached")
		}
	}
	return nil
}

type HabitTodayCmd struct {
	All bool `help:"Include habits that are not scheduled today."`
}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	tracker := engine.Habits()
	cal := engine.Calendar()
	fmt.Printf("Habits for %s:\n\n", cal.FormatDate(cal.Now()))

	active, done := 0, 0
	for _, h := range tracker.List() {
		scheduled := tracker.IsActiveToday(h)
		if !scheduled && !c.All {
			continue
		}
		status := "[ ]"
		if tracker.IsCompletedToday(h.ID) {
			status = doneStyle.Render("[x]")
			done++
		}
		line := fmt.Sprintf("%s %s %s  %d %s, %d gems", status, h.Emoji, h.Title, h.TargetAmount, h.Unit, h.GemsPerCompletion)
		if !scheduled {
			line = dimStyle.Render(line + " (not today)")
		} else {
			active++
		}
		fmt.Println(line)
	}

	fmt.Printf("\nCompleted: %d/%d\n", done, active)
	return nil
}

type HabitDoneCmd struct {
	Habit  string `arg:"" help:"Habit id, id prefix or title."`
	Amount int    `help:"How many times the target was done." default:"1"`
}

func (c *HabitDoneCmd) Run(ctx *Context) error {
	if c.Amount < 1 || c.Amount > constants.MaxCompletionAmount {
		return fmt.Errorf("amount must be between 1 and %d, got %d", constants.MaxCompletionAmount, c.Amount)
	}
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	habit, err := engine.Habits().Resolve(c.Habit)
	if err != nil {
		return err
	}

	result, err := engine.CompleteHabit(habit.ID, c.Amount)
	if !result.Completion.Recorded {
		if err != nil {
			return err
		}
		fmt.Printf("%s was already completed today.\n", habit.Title)
		return nil
	}
	if apperrors.IsPersistence(err) {
		return fmt.Errorf("completion recorded for this session only: %w", err)
	}
	return err
}

type HabitRemoveCmd struct {
	Habit string `arg:"" help:"Habit id, id prefix or title."`
}

func (c *HabitRemoveCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	habit, err := engine.Habits().Resolve(c.Habit)
	if err != nil {
		return err
	}
	if err := engine.Habits().Remove(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Removed habit: %s\n", habit.Title)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
