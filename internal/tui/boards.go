package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/arendt-dev/focusdeck/internal/schedule"
	"github.com/arendt-dev/focusdeck/internal/store"
)

var defaultColumns = []string{"To Do", "Doing", "Done"}

type boardsModel struct {
	store  *store.Store
	sched  *schedule.Scheduler
	width  int
	height int

	boards []store.Page
	cursor int

	viewingBoard bool
	board        *store.Page
	cards        []store.KanbanCard
	cardLogs     map[string][]store.SessionLog
	cardCursor   int

	formActive bool
	form       *huh.Form
	formType   string // "board", "rename_board", "card", "edit_card"

	// Form field pointers (survive value copies)
	formTitle  *string
	formDesc   *string
	formColumn *string

	editingID string // entity being edited by the form
}

func newBoardsModel(s *store.Store, sched *schedule.Scheduler) boardsModel {
	title, desc, col := "", "", ""
	return boardsModel{
		store:      s,
		sched:      sched,
		formTitle:  &title,
		formDesc:   &desc,
		formColumn: &col,
	}
}

func (b *boardsModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

func (b boardsModel) capturing() bool {
	return b.formActive
}

type boardsDataMsg struct {
	boards []store.Page
}

type boardCardsMsg struct {
	board *store.Page
	cards []store.KanbanCard
	logs  map[string][]store.SessionLog
}

func (b boardsModel) refresh() tea.Cmd {
	if b.viewingBoard && b.board != nil {
		return b.refreshCards(b.board.ID)
	}
	return func() tea.Msg {
		boards, _ := b.store.ListBoards()
		return boardsDataMsg{boards: boards}
	}
}

func (b boardsModel) refreshCards(boardID string) tea.Cmd {
	return func() tea.Msg {
		page, err := b.store.GetPage(boardID)
		if err != nil || page == nil {
			return boardsDataMsg{}
		}
		cards, _ := b.store.ListCardsForPage(boardID)
		logs := map[string][]store.SessionLog{}
		for _, c := range cards {
			if ls, err := b.store.ListSessionLogsForCard(c.ID); err == nil && len(ls) > 0 {
				logs[c.ID] = ls
			}
		}
		return boardCardsMsg{board: page, cards: orderCards(page, cards), logs: logs}
	}
}

// orderCards flattens cards column by column, in column order, so a
// single cursor can walk the whole board.
func orderCards(page *store.Page, cards []store.KanbanCard) []store.KanbanCard {
	var out []store.KanbanCard
	for _, col := range page.Columns {
		for _, c := range cards {
			if c.ColumnID == col.ID && c.ParentID == nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func (b boardsModel) update(msg tea.Msg) (boardsModel, tea.Cmd) {
	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}

	switch msg := msg.(type) {
	case boardsDataMsg:
		b.boards = msg.boards
		if b.cursor >= len(b.boards) {
			b.cursor = max(0, len(b.boards)-1)
		}
		return b, nil

	case boardCardsMsg:
		if msg.board == nil {
			b.viewingBoard = false
			return b, b.refresh()
		}
		b.board = msg.board
		b.cards = msg.cards
		b.cardLogs = msg.logs
		if b.cardCursor >= len(b.cards) {
			b.cardCursor = max(0, len(b.cards)-1)
		}
		return b, nil

	case tea.KeyMsg:
		if b.viewingBoard {
			return b.updateBoardView(msg)
		}
		return b.updateBoardList(msg)
	}
	return b, nil
}

func (b boardsModel) updateBoardList(msg tea.KeyMsg) (boardsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(msg, keys.Down):
		if b.cursor < len(b.boards)-1 {
			b.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(b.boards) > 0 {
			b.viewingBoard = true
			b.cardCursor = 0
			return b, b.refreshCards(b.boards[b.cursor].ID)
		}
	case key.Matches(msg, keys.New):
		return b.showNewBoardForm()
	case key.Matches(msg, keys.Delete):
		if len(b.boards) > 0 {
			if err := b.store.DeletePage(b.boards[b.cursor].ID); err != nil {
				return b, statusCmd(fmt.Sprintf("Delete error: %v", err), true)
			}
			return b, b.refresh()
		}
	case msg.String() == "r":
		if len(b.boards) > 0 {
			return b.showRenameBoardForm()
		}
	}
	return b, nil
}

func (b boardsModel) updateBoardView(msg tea.KeyMsg) (boardsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		b.viewingBoard = false
		b.board = nil
		return b, b.refresh()
	case key.Matches(msg, keys.Up):
		if b.cardCursor > 0 {
			b.cardCursor--
		}
	case key.Matches(msg, keys.Down):
		if b.cardCursor < len(b.cards)-1 {
			b.cardCursor++
		}
	case key.Matches(msg, keys.New):
		return b.showNewCardForm()
	case key.Matches(msg, keys.Enter):
		if len(b.cards) > 0 {
			return b.showEditCardForm()
		}
	case key.Matches(msg, keys.Move):
		if len(b.cards) > 0 {
			return b, b.moveCard(b.cards[b.cardCursor])
		}
	case key.Matches(msg, keys.Delete):
		if len(b.cards) > 0 {
			if err := b.store.DeleteCard(b.cards[b.cardCursor].ID); err != nil {
				return b, statusCmd(fmt.Sprintf("Delete error: %v", err), true)
			}
			return b, b.refreshCards(b.board.ID)
		}
	case key.Matches(msg, keys.Start):
		if len(b.cards) > 0 {
			return b, b.quickSchedule(b.cards[b.cardCursor])
		}
	}
	return b, nil
}

// moveCard advances the card to the next column. Landing in the done
// column completes any scheduled blocks still bound to the card.
func (b boardsModel) moveCard(card store.KanbanCard) tea.Cmd {
	board := b.board
	return func() tea.Msg {
		idx := -1
		for i, col := range board.Columns {
			if col.ID == card.ColumnID {
				idx = i
				break
			}
		}
		if idx < 0 || idx >= len(board.Columns)-1 {
			return statusMsg{text: "Card is in the last column"}
		}
		target := board.Columns[idx+1]
		if err := b.store.MoveCardToColumn(card.ID, target.ID); err != nil {
			return statusMsg{text: fmt.Sprintf("Move error: %v", err), isError: true}
		}
		if target.ID == store.DoneColumnID(board) {
			blocks, _ := b.store.ListBlocksForCard(card.ID)
			for _, blk := range blocks {
				if blk.Status == store.StatusScheduled {
					if err := b.sched.CompleteBlock(blk.ID); err != nil {
						return statusMsg{text: fmt.Sprintf("Complete error: %v", err), isError: true}
					}
				}
			}
		}
		return cardChangedMsg{}
	}
}

// quickSchedule drops the card into the first hour of today with room
// for a default-length block.
func (b boardsModel) quickSchedule(card store.KanbanCard) tea.Cmd {
	return func() tea.Msg {
		cfg, err := b.store.GetFocusSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		today := schedule.DateOf(time.Now())
		hour, err := b.sched.FindAvailableHour(today, cfg.DayStartHour, cfg.DayEndHour, cfg.WorkMinutes)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Schedule error: %v", err), isError: true}
		}
		if _, err := b.sched.CreateBlock(card.ID, card.PageID, today, hour, cfg.WorkMinutes); err != nil {
			return statusMsg{text: fmt.Sprintf("Schedule error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Scheduled %q at %s", truncate(card.Title, 24), formatHour(hour))}
	}
}

func (b boardsModel) showNewBoardForm() (boardsModel, tea.Cmd) {
	*b.formTitle = ""
	b.formType = "board"

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Board Name").Value(b.formTitle),
		),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b boardsModel) showRenameBoardForm() (boardsModel, tea.Cmd) {
	board := b.boards[b.cursor]
	*b.formTitle = board.Title
	b.formType = "rename_board"
	b.editingID = board.ID

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Board Name").Value(b.formTitle),
		),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b boardsModel) showNewCardForm() (boardsModel, tea.Cmd) {
	*b.formTitle = ""
	*b.formDesc = ""
	*b.formColumn = b.board.Columns[0].ID
	b.formType = "card"

	colOptions := make([]huh.Option[string], len(b.board.Columns))
	for i, col := range b.board.Columns {
		colOptions[i] = huh.NewOption(col.Title, col.ID)
	}

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Card Title").Value(b.formTitle),
			huh.NewInput().Title("Description").Value(b.formDesc),
			huh.NewSelect[string]().Title("Column").Options(colOptions...).Value(b.formColumn),
		),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b boardsModel) showEditCardForm() (boardsModel, tea.Cmd) {
	card := b.cards[b.cardCursor]
	*b.formTitle = card.Title
	*b.formDesc = card.Description
	b.formType = "edit_card"
	b.editingID = card.ID

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Card Title").Value(b.formTitle),
			huh.NewInput().Title("Description").Value(b.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b boardsModel) updateForm(msg tea.Msg) (boardsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}

	if b.form.State == huh.StateCompleted {
		b.formActive = false
		switch b.formType {
		case "board":
			if *b.formTitle != "" {
				cols := make([]store.KanbanColumn, len(defaultColumns))
				for i, name := range defaultColumns {
					cols[i] = store.KanbanColumn{ID: uuid.NewString(), Title: name, Order: i}
				}
				b.store.CreatePage(*b.formTitle, nil, store.PageKanban, cols)
			}
			return b, b.refresh()
		case "rename_board":
			if *b.formTitle != "" {
				b.store.UpdatePageTitle(b.editingID, *b.formTitle)
			}
			return b, b.refresh()
		case "card":
			if *b.formTitle != "" && b.board != nil {
				b.store.CreateCard(b.board.ID, *b.formColumn, *b.formTitle, *b.formDesc)
			}
			return b, b.refreshCards(b.board.ID)
		case "edit_card":
			if *b.formTitle != "" {
				b.store.UpdateCard(b.editingID, *b.formTitle, *b.formDesc)
			}
			return b, b.refreshCards(b.board.ID)
		}
	}

	return b, cmd
}

func (b boardsModel) view() string {
	if b.formActive && b.form != nil {
		title := titleStyle.Render("New Board")
		switch b.formType {
		case "rename_board":
			title = titleStyle.Render("Rename Board")
		case "card":
			title = titleStyle.Render("New Card")
		case "edit_card":
			title = titleStyle.Render("Edit Card")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", b.form.View())
		return panelStyle.Width(b.width - 4).Render(content)
	}

	if b.viewingBoard && b.board != nil {
		return b.renderBoard()
	}
	return b.renderBoardList()
}

func (b boardsModel) renderBoardList() string {
	w := b.width - 4
	title := titleStyle.Render("Boards")

	if len(b.boards) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No boards yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	for i, board := range b.boards {
		cursor := "  "
		style := normalItemStyle
		if i == b.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+board.Title))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: open  n: new  r: rename  d: delete"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (b boardsModel) renderBoard() string {
	w := b.width - 4
	done := store.DoneColumnID(b.board)

	colWidth := max(18, (w-2)/max(1, len(b.board.Columns))-2)

	var cols []string
	for _, col := range b.board.Columns {
		header := titleStyle.Render(truncate(col.Title, colWidth))
		if col.ID == done {
			header = successStyle.Bold(true).Render(truncate(col.Title, colWidth))
		}
		rows := []string{header, ""}
		for i, card := range b.cards {
			if card.ColumnID != col.ID {
				continue
			}
			cursor := "  "
			style := normalItemStyle
			if i == b.cardCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(cursor+truncate(card.Title, colWidth-2)))
		}
		cols = append(cols, lipgloss.NewStyle().Width(colWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	hint := mutedStyle.Render("  n: card  enter: edit  m: move  s: schedule today  d: delete  esc: back")

	rows := []string{titleStyle.Render(b.board.Title), "", board}
	if notes := b.renderCardNotes(); notes != "" {
		rows = append(rows, "", notes)
	}
	rows = append(rows, "", hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderCardNotes shows the selected card's session notes, newest
// first, the way the zen journal recorded them.
func (b boardsModel) renderCardNotes() string {
	if len(b.cards) == 0 {
		return ""
	}
	card := b.cards[b.cardCursor]
	logs := b.cardLogs[card.ID]
	if len(logs) == 0 {
		return ""
	}

	rows := []string{subtitleStyle.Render(fmt.Sprintf("Session notes (%d)", len(logs)))}
	for i, l := range logs {
		if i == 3 {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(logs)-i)))
			break
		}
		rows = append(rows, mutedStyle.Render("  · "+formatRelativeTime(l.CreatedAt)+"  ")+
			normalItemStyle.Render(truncate(l.Content, 56)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
