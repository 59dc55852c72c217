package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/arendt-dev/focusdeck/internal/schedule"
	"github.com/arendt-dev/focusdeck/internal/session"
	"github.com/arendt-dev/focusdeck/internal/store"
)

// zenModel is the full-screen countdown shown while a session runs.
// It reads the live session off the manager on every render, so ticks
// only need to trigger a redraw.
type zenModel struct {
	store  *store.Store
	mgr    *session.Manager
	sched  *schedule.Scheduler
	width  int
	height int

	// Session journal: quick notes jotted mid-session, attached to
	// the card and shown on it afterwards.
	noteActive bool
	noteForm   *huh.Form
	noteText   *string
	logs       []store.SessionLog
}

func newZenModel(s *store.Store, mgr *session.Manager, sched *schedule.Scheduler) zenModel {
	text := ""
	return zenModel{store: s, mgr: mgr, sched: sched, noteText: &text}
}

func (z *zenModel) setSize(w, h int) {
	z.width = w
	z.height = h
}

type zenExitMsg struct{}

func (z zenModel) update(msg tea.Msg) (zenModel, tea.Cmd) {
	if z.noteActive && z.noteForm != nil {
		return z.updateNoteForm(msg)
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return z, nil
	}
	return z.updateKey(k)
}

func (z zenModel) updateKey(msg tea.KeyMsg) (zenModel, tea.Cmd) {
	s := z.mgr.Active()
	if s == nil {
		return z, func() tea.Msg { return zenExitMsg{} }
	}

	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Zen):
		return z, func() tea.Msg { return zenExitMsg{} }

	case key.Matches(msg, keys.New):
		return z.showNoteForm(s.CardID)

	case key.Matches(msg, keys.Pause):
		var err error
		if s.IsRunning {
			err = z.mgr.Pause()
		} else {
			err = z.mgr.Resume()
		}
		if err != nil {
			return z, statusCmd(fmt.Sprintf("Session error: %v", err), true)
		}
		return z, nil

	case key.Matches(msg, keys.Extend):
		if err := z.mgr.Extend(5 * 60); err != nil {
			return z, statusCmd(fmt.Sprintf("Extend error: %v", err), true)
		}
		return z, nil

	case key.Matches(msg, keys.Stop):
		if err := z.mgr.End(); err != nil {
			return z, statusCmd(fmt.Sprintf("Stop error: %v", err), true)
		}
		return z, func() tea.Msg { return sessionEndedMsg{} }

	case key.Matches(msg, keys.Complete):
		return z, z.complete()
	}
	return z, nil
}

func (z zenModel) showNoteForm(cardID string) (zenModel, tea.Cmd) {
	*z.noteText = ""
	logs, err := z.store.ListSessionLogsForCard(cardID)
	if err != nil {
		return z, statusCmd(fmt.Sprintf("Notes error: %v", err), true)
	}
	z.logs = logs

	z.noteForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Session note").Value(z.noteText),
		),
	).WithShowHelp(true).WithShowErrors(true)

	z.noteActive = true
	return z, z.noteForm.Init()
}

func (z zenModel) updateNoteForm(msg tea.Msg) (zenModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			z.noteActive = false
			z.noteForm = nil
			return z, nil
		}
	}

	form, cmd := z.noteForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		z.noteForm = f
	}

	if z.noteForm.State == huh.StateCompleted {
		z.noteActive = false
		text := strings.TrimSpace(*z.noteText)
		s := z.mgr.Active()
		if text == "" || s == nil {
			return z, nil
		}
		if _, err := z.store.CreateSessionLog(s.CardID, text); err != nil {
			return z, statusCmd(fmt.Sprintf("Note error: %v", err), true)
		}
		return z, statusCmd("Note saved", false)
	}

	return z, cmd
}

// complete ends the session and marks its block done. The block hook
// then drags the card into the board's done column.
func (z zenModel) complete() tea.Cmd {
	s := z.mgr.Active()
	if s == nil {
		return func() tea.Msg { return zenExitMsg{} }
	}
	blockID := s.TimeBlockID
	return func() tea.Msg {
		if err := z.mgr.End(); err != nil {
			return statusMsg{text: fmt.Sprintf("Complete error: %v", err), isError: true}
		}
		if blockID != "" {
			if err := z.sched.CompleteBlock(blockID); err != nil {
				return statusMsg{text: fmt.Sprintf("Complete error: %v", err), isError: true}
			}
		}
		return sessionCompletedMsg{}
	}
}

func (z zenModel) view() string {
	s := z.mgr.Active()
	if s == nil {
		return ""
	}

	if z.noteActive && z.noteForm != nil {
		return z.renderNoteForm()
	}

	remaining := z.mgr.RemainingNow()
	countdown := formatCountdown(int64(remaining))
	done := z.mgr.Completed()

	style := timerRunningStyle
	state := "focusing"
	switch {
	case done:
		style = timerDoneStyle
		state = "time's up"
	case !s.IsRunning:
		style = timerPausedStyle
		state = "paused"
	}

	title := titleStyle.Render(s.CardTitle)
	board := subtitleStyle.Render(s.BoardName)
	clock := style.Render(bigCountdown(countdown))
	status := subtitleStyle.Render(state)
	bar := z.progressBar(s, remaining)

	hint := "space: pause  n: note  e: +5m  c: complete  x: stop  esc: leave zen"
	if done {
		hint = "c: complete  n: note  e: +5m  x: stop  esc: leave zen"
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title, board, "", clock, "", bar, status, "", mutedStyle.Render(hint),
	)

	return lipgloss.Place(z.width, z.height, lipgloss.Center, lipgloss.Center, content)
}

func (z zenModel) renderNoteForm() string {
	rows := []string{titleStyle.Render("Session notes"), ""}
	for i, l := range z.logs {
		if i == 5 {
			break
		}
		line := mutedStyle.Render("  · "+formatRelativeTime(l.CreatedAt)+"  ") +
			normalItemStyle.Render(truncate(l.Content, 48))
		rows = append(rows, line)
	}
	if len(z.logs) > 0 {
		rows = append(rows, "")
	}
	rows = append(rows, z.noteForm.View())

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.Place(z.width, z.height, lipgloss.Center, lipgloss.Center, content)
}

func (z zenModel) progressBar(s *store.FocusSession, remaining int) string {
	width := min(40, max(10, z.width/3))
	total := s.TotalSeconds
	filled := 0
	if total > 0 {
		filled = width * (total - remaining) / total
	}
	if filled > width {
		filled = width
	}
	bar := highlightStyle.Render(repeatRune('█', filled)) +
		mutedStyle.Render(repeatRune('░', width-filled))
	return bar
}

func repeatRune(r rune, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}

// bigCountdown blows the mm:ss string up with block digits.
func bigCountdown(s string) string {
	lines := make([]string, 5)
	for _, r := range s {
		glyph, ok := bigDigits[r]
		if !ok {
			glyph = bigDigits[' ']
		}
		for i := 0; i < 5; i++ {
			lines[i] += glyph[i] + " "
		}
	}
	var out string
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

var bigDigits = map[rune][5]string{
	'0': {"█████", "█   █", "█   █", "█   █", "█████"},
	'1': {"   █ ", "  ██ ", "   █ ", "   █ ", "  ███"},
	'2': {"█████", "    █", "█████", "█    ", "█████"},
	'3': {"█████", "    █", " ████", "    █", "█████"},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "█████", "    █", "█████"},
	'6': {"█████", "█    ", "█████", "█   █", "█████"},
	'7': {"█████", "    █", "   █ ", "  █  ", "  █  "},
	'8': {"█████", "█   █", "█████", "█   █", "█████"},
	'9': {"█████", "█   █", "█████", "    █", "█████"},
	':': {"     ", "  ▀  ", "     ", "  ▀  ", "     "},
	' ': {"     ", "     ", "     ", "     ", "     "},
}
