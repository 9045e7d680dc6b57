package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/levels"
)

var (
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	barFilled = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// LevelBadge renders "Lv N Title" on the level's gradient start color.
func LevelBadge(l levels.Level) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color(l.Gradient[0])).
		Padding(0, 1).
		Bold(true).
		Render(fmt.Sprintf("Lv %d %s", l.Number, l.Title))
}

// ProgressBar renders fraction (0..1) as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	return barFilled.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", width-filled))
}

// Notification formats an engine event as plain text.
func Notification(e events.Event) string {
	switch ev := e.(type) {
	case events.BalanceChanged:
		return "💎 " + ev.String()
	case events.LevelChanged:
		l := levels.Info(ev.New)
		if ev.Up() {
			return fmt.Sprintf("⬆️  Level up! Lv %d %s", l.Number, l.Title)
		}
		return fmt.Sprintf("⬇️  Level dropped to Lv %d %s", l.Number, l.Title)
	case events.HabitCompleted:
		msg := fmt.Sprintf("✓ %s done, streak %d", ev.Title, ev.Streak)
		if len(ev.Milestones) > 0 {
			msg += fmt.Sprintf(" | milestone %s (+%d gems)", strings.Join(ev.Milestones, ", "), ev.MilestoneReward)
		}
		return msg
	case events.ChapterCompleted:
		return fmt.Sprintf("📘 Chapter %s completed (+%d gems)", ev.ChapterID, ev.Reward)
	case events.ChapterUnlocked:
		return fmt.Sprintf("🔓 Chapter %s unlocked", ev.ChapterID)
	default:
		return string(e.Type())
	}
}

// PrintEvent is the bus handler every command subscribes.
func PrintEvent(e events.Event) {
	fmt.Println(noticeStyle.Render(Notification(e)))
}
