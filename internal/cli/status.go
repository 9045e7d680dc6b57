package cli

import (
	"fmt"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	s := engine.Status()
	fmt.Printf("%s  💎 %d gems\n", LevelBadge(s.Level), s.Balance)
	if s.NextThreshold > 0 {
		fmt.Printf("%s  %d/%d to level %d\n", ProgressBar(s.Progress, 24), s.Balance, s.NextThreshold, s.Level.Number+1)
	} else {
		fmt.Printf("%s  max level\n", ProgressBar(1, 24))
	}
	fmt.Println()

	active, done := 0, 0
	for _, hs := range s.Habits {
		if !hs.ActiveToday {
			continue
		}
		active++
		if hs.CompletedToday {
			done++
		}
	}
	fmt.Printf("Habits today:  %d/%d done\n", done, active)
	fmt.Printf("Chapters:      %d/%d completed\n", s.ChaptersCompleted, s.ChaptersTotal)
	if s.ChapterThrottled {
		fmt.Printf("               next chapter %s\n", s.NextChapterAt.Format("Mon Jan 2"))
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("Level policy: %s", s.LevelPolicy)))
	return nil
}
