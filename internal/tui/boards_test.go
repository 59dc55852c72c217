package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arendt-dev/focusdeck/internal/schedule"
	"github.com/arendt-dev/focusdeck/internal/store"
)

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func escKeyMsg() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEsc}
}

// ============================================================
// Boards view error handling
// ============================================================

func TestBoardDeleteErrorSurfaced(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	page, err := s.CreatePage("Work", nil, store.PageKanban, []store.KanbanColumn{
		{ID: "todo", Title: "To Do", Order: 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	b := newBoardsModel(s, schedule.New(s))
	b.boards = []store.Page{*page}

	s.Close() // every write from here on fails

	_, cmd := b.updateBoardList(keyMsg('d'))
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

func TestCardDeleteErrorSurfaced(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	page, err := s.CreatePage("Work", nil, store.PageKanban, []store.KanbanColumn{
		{ID: "todo", Title: "To Do", Order: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	card, err := s.CreateCard(page.ID, "todo", "Task", "")
	if err != nil {
		t.Fatal(err)
	}

	b := newBoardsModel(s, schedule.New(s))
	b.viewingBoard = true
	b.board = page
	b.cards = []store.KanbanCard{*card}

	s.Close()

	_, cmd := b.updateBoardView(keyMsg('d'))
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}
