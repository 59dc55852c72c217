package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arendt-dev/focusdeck/internal/store"
)

type weekModel struct {
	store  *store.Store
	width  int
	height int

	offset int // weeks back from the current week (0 = current)
	cursor int // day of week, 0 = Monday
	blocks []store.TimeBlock
}

func newWeekModel(s *store.Store) weekModel {
	return weekModel{store: s}
}

func (w *weekModel) setSize(width, height int) {
	w.width = width
	w.height = height
}

type weekDataMsg struct {
	blocks []store.TimeBlock
}

type gotoDayMsg struct {
	date string
}

func (w weekModel) refresh() tea.Cmd {
	from, to := w.weekRange()
	return func() tea.Msg {
		blocks, _ := w.store.ListBlocksForRange(
			from.Format("2006-01-02"), to.Format("2006-01-02"))
		return weekDataMsg{blocks: blocks}
	}
}

// weekRange is the Monday..Sunday span of the selected week, local time.
func (w weekModel) weekRange() (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	weekday := today.Weekday()
	if weekday == time.Sunday {
		weekday = 7
	}
	monday := today.AddDate(0, 0, -int(weekday-time.Monday)-7*w.offset)
	return monday, monday.AddDate(0, 0, 6)
}

func (w weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case weekDataMsg:
		w.blocks = msg.blocks
		return w, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			w.offset++
			return w, w.refresh()
		case key.Matches(msg, keys.Right):
			if w.offset > 0 {
				w.offset--
			}
			return w, w.refresh()
		case key.Matches(msg, keys.Up):
			if w.cursor > 0 {
				w.cursor--
			}
		case key.Matches(msg, keys.Down):
			if w.cursor < 6 {
				w.cursor++
			}
		case key.Matches(msg, keys.Today):
			w.offset = 0
			return w, w.refresh()
		case key.Matches(msg, keys.Enter):
			monday, _ := w.weekRange()
			day := monday.AddDate(0, 0, w.cursor)
			return w, func() tea.Msg {
				return gotoDayMsg{date: day.Format("2006-01-02")}
			}
		}
	}
	return w, nil
}

func (w weekModel) view() string {
	width := w.width - 4
	monday, sunday := w.weekRange()

	title := titleStyle.Render("Week")
	rangeLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		monday.Format("Jan 02"), sunday.Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", rangeLabel)

	today := time.Now().Format("2006-01-02")

	var rows []string
	rows = append(rows, header, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %12s %12s %10s",
		"Day", "Blocks", "Scheduled", "Completed", "Skipped")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(width-6, 58))))

	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		date := day.Format("2006-01-02")

		count, scheduled, completed, skipped := 0, 0, 0, 0
		for _, b := range w.blocks {
			if b.Date != date {
				continue
			}
			count++
			scheduled += b.DurationMinutes
			switch b.Status {
			case store.StatusCompleted:
				completed += b.DurationMinutes
			case store.StatusSkipped:
				skipped += b.DurationMinutes
			}
		}

		label := day.Format("Mon 02")
		if date == today {
			label += " ●"
		}
		line := fmt.Sprintf("%-12s %8d %12s %12s %10s",
			label, count, formatMinutes(scheduled), formatMinutes(completed), formatMinutes(skipped))

		style := normalItemStyle
		cursor := "  "
		if i == w.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+line))
	}

	rows = append(rows, "", mutedStyle.Render("  enter: open day  ←/→: week  t: this week"))
	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
