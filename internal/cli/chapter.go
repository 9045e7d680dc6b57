package cli

import (
	"fmt"

	"github.com/julianstephens/tendwell/internal/chapters"
)

type ChapterCmd struct {
	List ChapterListCmd `cmd:"" help:"List chapters and their state." default:"1"`
	Open ChapterOpenCmd `cmd:"" help:"Open a chapter."`
	Done ChapterDoneCmd `cmd:"" help:"Complete a chapter."`
}

type ChapterListCmd struct{}

func (c *ChapterListCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	gate := engine.Chapters()
	for i, ch := range gate.List() {
		marker := "🔒"
		switch {
		case ch.IsCompleted:
			marker = doneStyle.Render("✓")
		case ch.IsUnlocked:
			marker = "▶"
		}
		line := fmt.Sprintf("%2d. %s %s", i+1, marker, ch.Title)
		if !ch.IsUnlocked {
			line = dimStyle.Render(line)
		}
		fmt.Printf("%s  %s\n", line, dimStyle.Render(fmt.Sprintf("(%d gems)", ch.GemsReward)))
	}

	done, total := gate.Progress()
	fmt.Printf("\nCompleted: %d/%d\n", done, total)
	if at, throttled := gate.NextUnlockAt(); throttled {
		fmt.Printf("Next chapter available %s\n", at.Format("Mon Jan 2 15:04"))
	}
	return nil
}

type ChapterOpenCmd struct {
	Chapter string `arg:"" help:"Chapter id or number."`
}

func (c *ChapterOpenCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	gate := engine.Chapters()
	ch, err := gate.Resolve(c.Chapter)
	if err != nil {
		return err
	}
	if !gate.CanAccess(ch.ID) {
		if !ch.IsUnlocked {
			return fmt.Errorf("%s is locked, complete the previous chapter first", ch.Title)
		}
		at, _ := gate.NextUnlockAt()
		return fmt.Errorf("you already finished a chapter today, come back %s", at.Format("Mon Jan 2"))
	}

	fmt.Println(noticeStyle.Render(ch.Title))
	if ch.Summary != "" {
		fmt.Println()
		fmt.Println(ch.Summary)
	}
	fmt.Println()
	if ch.IsCompleted {
		if on, ok := gate.CompletedOn(ch.ID); ok {
			fmt.Printf("Completed on %s\n", engine.Calendar().FormatDate(on))
		}
	} else {
		fmt.Printf("Finish with: tendwell chapter done %s  (+%d gems)\n", ch.ID, ch.GemsReward)
	}
	return nil
}

type ChapterDoneCmd struct {
	Chapter string `arg:"" help:"Chapter id or number."`
}

func (c *ChapterDoneCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	ch, err := engine.Chapters().Resolve(c.Chapter)
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	result, err := engine.CompleteChapter(ch.ID)
	if !result.Outcome.Completed {
		if err != nil {
			return err
		}
		switch result.Outcome.Reason {
		case chapters.ReasonThrottled:
			at, _ := engine.Chapters().NextUnlockAt()
			fmt.Printf("One chapter a day. %s opens %s.\n", ch.Title, at.Format("Mon Jan 2"))
		default:
			fmt.Printf("Nothing to do: %s.\n", result.Outcome.Reason)
		}
		return nil
	}
	return err
}
