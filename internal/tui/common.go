package tui

import (
	"fmt"
	"time"

	"github.com/arendt-dev/focusdeck/internal/schedule"
	"github.com/arendt-dev/focusdeck/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewBoards viewState = iota
	viewDay
	viewWeek
	viewStats
	viewSettings
)

var viewNames = []string{"Boards", "Day", "Week", "Stats", "Settings"}

// --- Messages ---

type tickMsg time.Time

type sweepMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type sessionStartedMsg struct {
	block *store.TimeBlock
}

type sessionEndedMsg struct{}

type sessionCompletedMsg struct{}

type blockChangedMsg struct{}

type cardChangedMsg struct{}

type reminderMsg struct {
	reminder *schedule.Reminder
}

type settingsSavedMsg struct{}

// --- Helpers ---

func formatCountdown(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	m := secs / 60
	s := secs % 60
	if m >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", m/60, m%60, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

func formatMinutes(mins int) string {
	if mins >= 60 && mins%60 == 0 {
		return fmt.Sprintf("%dh", mins/60)
	}
	return fmt.Sprintf("%dm", mins)
}

func formatRelativeTime(t time.Time) string {
	mins := int(time.Since(t).Minutes())
	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 24*60:
		return fmt.Sprintf("%dh ago", mins/60)
	default:
		return fmt.Sprintf("%dd ago", mins/(24*60))
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
