package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arendt-dev/focusdeck/internal/schedule"
	"github.com/arendt-dev/focusdeck/internal/session"
	"github.com/arendt-dev/focusdeck/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	sched  *schedule.Scheduler
	mgr    *session.Manager
	ringer *session.Ringer

	width  int
	height int

	activeView viewState
	showHelp   bool
	zenMode    bool

	boards   boardsModel
	day      dayModel
	week     weekModel
	stats    statsModel
	settings settingsModel
	zen      zenModel

	help      help.Model
	status    string
	statusErr bool
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
}

func NewApp(s *store.Store) (App, error) {
	sched := schedule.New(s)
	mgr := session.NewManager(s)
	if err := mgr.Load(); err != nil {
		return App{}, fmt.Errorf("restoring session: %w", err)
	}

	// Completing a block drags its card into the board's done column.
	sched.OnStatusChange = func(b store.TimeBlock) {
		if b.Status != store.StatusCompleted || b.CardID == "" {
			return
		}
		card, err := s.GetCard(b.CardID)
		if err != nil || card == nil {
			return
		}
		page, err := s.GetPage(card.PageID)
		if err != nil || page == nil {
			return
		}
		if done := store.DoneColumnID(page); done != "" && card.ColumnID != done {
			_ = s.MoveCardToColumn(card.ID, done)
		}
	}

	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		sched:      sched,
		mgr:        mgr,
		ringer:     session.NewRinger(nil),
		activeView: viewBoards,
		boards:     newBoardsModel(s, sched),
		day:        newDayModel(s, sched, mgr),
		week:       newWeekModel(s),
		stats:      newStatsModel(s),
		settings:   newSettingsModel(s),
		zen:        newZenModel(s, mgr, sched),
		help:       h,
	}, nil
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.boards.refresh(),
		a.day.refresh(),
		tickCmd(),
		sweepCmd(),
	}
	if a.mgr.Active() != nil {
		a.zenMode = true
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func sweepCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return sweepMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.boards.setSize(a.width, contentHeight)
		a.day.setSize(a.width, contentHeight)
		a.week.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.zen.setSize(a.width, a.height)
		return a, nil

	case tea.KeyMsg:
		if a.zenMode {
			var cmd tea.Cmd
			a.zen, cmd = a.zen.update(msg)
			return a, cmd
		}

		// If a child view is capturing input (form or picker), delegate first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Zen):
			if a.mgr.Active() != nil {
				a.zenMode = true
			}
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewBoards
			return a, a.boards.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewDay
			return a, a.day.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewWeek
			return a, a.week.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		if a.mgr.Tick() {
			a.setStatus("Session complete", false)
			if cfg, err := a.store.GetFocusSettings(); err == nil && cfg.AudioEnabled {
				a.ringer.Start(2 * time.Second)
			}
			a.zenMode = true
		}
		return a, tea.Batch(cmds...)

	case sweepMsg:
		cmds = append(cmds, sweepCmd(), a.runSweep())
		return a, tea.Batch(cmds...)

	case reminderMsg:
		r := msg.reminder
		a.setStatus(fmt.Sprintf("Reminder: %s (%s) is scheduled now", r.Card.Title, r.BoardName), false)
		return a, nil

	case zenExitMsg:
		a.zenMode = false
		return a, a.day.refresh()

	case sessionStartedMsg:
		a.zenMode = true
		a.setStatus(fmt.Sprintf("Focusing: %s", formatMinutes(msg.block.DurationMinutes)), false)
		a.ringer.Stop()
		return a, nil

	case sessionEndedMsg:
		a.zenMode = false
		a.ringer.Stop()
		return a, tea.Batch(a.day.refresh(), a.boards.refresh())

	case sessionCompletedMsg:
		a.zenMode = false
		a.ringer.Stop()
		a.setStatus("Block completed", false)
		return a, tea.Batch(a.day.refresh(), a.boards.refresh())

	case blockChangedMsg:
		return a, a.day.refresh()

	case gotoDayMsg:
		a.activeView = viewDay
		a.day.date = msg.date
		a.day.hourCursor, a.day.blockCursor = 0, 0
		return a, a.day.refresh()

	case cardChangedMsg:
		return a, a.boards.refresh()

	case settingsSavedMsg:
		a.setStatus("Settings saved", false)
		return a, a.day.refresh()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil
	}

	// Remaining messages are internal to whichever model owns the
	// input focus (huh form machinery and the like).
	if a.zenMode {
		var cmd tea.Cmd
		a.zen, cmd = a.zen.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

// runSweep marks elapsed blocks skipped and surfaces a reminder for
// the block occupying the current minute, if one is due.
func (a App) runSweep() tea.Cmd {
	mgr, sched := a.mgr, a.sched
	return func() tea.Msg {
		today := schedule.DateOf(time.Now())
		if err := sched.MarkSkippedBlocks(today); err != nil {
			return statusMsg{text: fmt.Sprintf("Sweep error: %v", err), isError: true}
		}
		var cardID, blockID string
		if s := mgr.Active(); s != nil {
			cardID, blockID = s.CardID, s.TimeBlockID
		}
		r, err := sched.DueReminder(cardID, blockID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Reminder error: %v", err), isError: true}
		}
		if r != nil {
			return reminderMsg{reminder: r}
		}
		return blockChangedMsg{}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewBoards:
		a.boards, cmd = a.boards.update(msg)
	case viewDay:
		a.day, cmd = a.day.update(msg)
	case viewWeek:
		a.week, cmd = a.week.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewBoards:
		return a.boards.capturing()
	case viewDay:
		return a.day.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewBoards:
		return a.boards.refresh()
	case viewDay:
		return a.day.refresh()
	case viewWeek:
		return a.week.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.zenMode {
		return a.zen.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewBoards:
		content = a.boards.view()
	case viewDay:
		content = a.day.view()
	case viewWeek:
		content = a.week.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusdeck")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Session badge in footer
	sessionInfo := ""
	if s := a.mgr.Active(); s != nil {
		rem := formatCountdown(int64(a.mgr.RemainingNow()))
		label := " ● " + rem + " " + truncate(s.CardTitle, 20)
		if s.IsRunning {
			sessionInfo = successStyle.Render(label)
		} else {
			sessionInfo = warningStyle.Render(" ⏸ " + rem + " " + truncate(s.CardTitle, 20))
		}
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
