package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arendt-dev/focusdeck/internal/store"
)

type statsModel struct {
	store  *store.Store
	width  int
	height int

	offset int // 7-day blocks back from today (0 = current)
	blocks []store.TimeBlock

	chart barchart.Model
}

func newStatsModel(s *store.Store) statsModel {
	return statsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type statsDataMsg struct {
	blocks []store.TimeBlock
}

func (s statsModel) refresh() tea.Cmd {
	from, to := s.dateRange()
	return func() tea.Msg {
		blocks, _ := s.store.ListBlocksForRange(
			from.Format("2006-01-02"), to.Add(-24*time.Hour).Format("2006-01-02"))
		return statsDataMsg{blocks: blocks}
	}
}

func (s statsModel) dateRange() (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	end := today.AddDate(0, 0, 1-7*s.offset)
	return end.AddDate(0, 0, -7), end
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		s.blocks = msg.blocks
		s.buildChart()
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			s.offset++
			return s, s.refresh()
		case key.Matches(msg, keys.Right):
			if s.offset > 0 {
				s.offset--
			}
			return s, s.refresh()
		case key.Matches(msg, keys.Today):
			s.offset = 0
			return s, s.refresh()
		}
	}
	return s, nil
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	from, to := s.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("Mon 02")

		completed, skipped := 0, 0
		for _, b := range s.blocks {
			if b.Date != dateStr || b.IsBreak() {
				continue
			}
			switch b.Status {
			case store.StatusCompleted:
				completed += b.DurationMinutes
			case store.StatusSkipped:
				skipped += b.DurationMinutes
			}
		}

		var values []barchart.BarValue
		if completed > 0 {
			values = append(values, barchart.BarValue{
				Name:  "completed",
				Value: float64(completed),
				Style: lipgloss.NewStyle().Foreground(colorSuccess),
			})
		}
		if skipped > 0 {
			values = append(values, barchart.BarValue{
				Name:  "skipped",
				Value: float64(skipped),
				Style: lipgloss.NewStyle().Foreground(colorSubtle),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	from, to := s.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Focus Minutes"), "  ", dateLabel)

	legend := lipgloss.JoinHorizontal(lipgloss.Bottom,
		successStyle.Render("■ completed"), "  ",
		mutedStyle.Render("■ skipped"),
	)

	table := s.renderTotals(w)
	nav := mutedStyle.Render("  ←/→: navigate  t: current week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", s.chart.View(), "", legend, "", table, "", nav,
		),
	)
}

func (s statsModel) renderTotals(w int) string {
	completed, skipped, scheduled, breaks := 0, 0, 0, 0
	for _, b := range s.blocks {
		if b.IsBreak() {
			breaks += b.DurationMinutes
			continue
		}
		switch b.Status {
		case store.StatusCompleted:
			completed += b.DurationMinutes
		case store.StatusSkipped:
			skipped += b.DurationMinutes
		default:
			scheduled += b.DurationMinutes
		}
	}
	if completed+skipped+scheduled+breaks == 0 {
		return mutedStyle.Render("  No blocks in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s", "Status", "Minutes")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 24))))
	rows = append(rows, fmt.Sprintf("  %-12s %10s", "Completed", formatMinutes(completed)))
	rows = append(rows, fmt.Sprintf("  %-12s %10s", "Skipped", formatMinutes(skipped)))
	rows = append(rows, fmt.Sprintf("  %-12s %10s", "Scheduled", formatMinutes(scheduled)))
	rows = append(rows, fmt.Sprintf("  %-12s %10s", "Breaks", formatMinutes(breaks)))
	return strings.Join(rows, "\n")
}
