package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedWorkspace(t *testing.T, s *store.Store) (*store.Page, *store.KanbanCard, *store.TimeBlock) {
	t.Helper()
	cols := []store.KanbanColumn{
		{ID: "todo", Title: "To Do", Order: 0},
		{ID: "done", Title: "Done", Order: 1},
	}
	page, err := s.CreatePage("Work", nil, store.PageKanban, cols)
	if err != nil {
		t.Fatal(err)
	}
	card, err := s.CreateCard(page.ID, "todo", "Write report", "quarterly numbers")
	if err != nil {
		t.Fatal(err)
	}
	block, err := s.InsertBlock(&store.TimeBlock{
		CardID: card.ID, PageID: page.ID, Kind: store.KindTask,
		Date: "2026-09-01", StartHour: 9, DurationMinutes: 25,
		Status: store.StatusScheduled,
	})
	if err != nil {
		t.Fatal(err)
	}
	return page, card, block
}

// ============================================================
// Snapshot / WriteFile
// ============================================================

func TestSnapshotContainsEverything(t *testing.T) {
	s := newTestStore(t)
	page, card, block := seedWorkspace(t, s)
	s.DeleteBlock(block.ID)

	ws, err := Snapshot(s)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Version != Version {
		t.Fatalf("expected version %d, got %d", Version, ws.Version)
	}
	if len(ws.Pages) != 1 || ws.Pages[0].ID != page.ID {
		t.Fatalf("pages: %+v", ws.Pages)
	}
	if len(ws.KanbanCards) != 1 || ws.KanbanCards[0].ID != card.ID {
		t.Fatalf("cards: %+v", ws.KanbanCards)
	}
	if len(ws.TimeBlocks) != 0 {
		t.Fatalf("deleted block should not be exported: %+v", ws.TimeBlocks)
	}
	if len(ws.Deletions) != 1 || ws.Deletions[0].EntityType != "timeBlock" {
		t.Fatalf("deletions: %+v", ws.Deletions)
	}
	if ws.FocusSettings == nil || ws.FocusSettings.WorkMinutes == 0 {
		t.Fatalf("settings missing: %+v", ws.FocusSettings)
	}
}

func TestWriteFileProducesValidJSON(t *testing.T) {
	s := newTestStore(t)
	seedWorkspace(t, s)

	path := filepath.Join(t.TempDir(), "export.json")
	if err := WriteFile(s, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		t.Fatalf("exported file is not valid workspace JSON: %v", err)
	}
	if ws.Version != Version || len(ws.Pages) != 1 {
		t.Fatalf("unexpected round trip: %+v", ws)
	}
}

// ============================================================
// Merge
// ============================================================

func TestMergeIntoEmptyStore(t *testing.T) {
	src := newTestStore(t)
	page, card, block := seedWorkspace(t, src)
	ws, err := Snapshot(src)
	if err != nil {
		t.Fatal(err)
	}

	dst := newTestStore(t)
	res, err := Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if res.PagesAdded != 1 || res.CardsAdded != 1 || res.BlocksAdded != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	gotPage, _ := dst.GetPage(page.ID)
	if gotPage == nil || gotPage.Title != "Work" || len(gotPage.Columns) != 2 {
		t.Fatalf("page did not survive merge: %+v", gotPage)
	}
	gotCard, _ := dst.GetCard(card.ID)
	if gotCard == nil || gotCard.Description != "quarterly numbers" {
		t.Fatalf("card did not survive merge: %+v", gotCard)
	}
	gotBlock, _ := dst.GetBlock(block.ID)
	if gotBlock == nil || gotBlock.Kind != store.KindTask || gotBlock.DurationMinutes != 25 {
		t.Fatalf("block did not survive merge: %+v", gotBlock)
	}
}

func TestMergeRejectsUnknownVersion(t *testing.T) {
	dst := newTestStore(t)
	_, err := Merge(dst, &Workspace{Version: 99})
	if err == nil {
		t.Fatal("expected version error")
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	dst := newTestStore(t)
	page, card, _ := seedWorkspace(t, dst)

	older := card.UpdatedAt.Add(-time.Hour)
	newer := card.UpdatedAt.Add(time.Hour)

	ws := &Workspace{
		Version: Version,
		KanbanCards: []jsonCard{
			{
				ID: card.ID, PageID: page.ID, ColumnID: "todo",
				Title: "Stale title", CreatedAt: card.CreatedAt, UpdatedAt: older,
			},
		},
	}
	res, err := Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if res.CardsUpdated != 0 {
		t.Fatalf("stale import should be skipped: %+v", res)
	}
	got, _ := dst.GetCard(card.ID)
	if got.Title != "Write report" {
		t.Fatalf("local newer copy must win, got %q", got.Title)
	}

	ws.KanbanCards[0].Title = "Fresh title"
	ws.KanbanCards[0].UpdatedAt = newer
	res, err = Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if res.CardsUpdated != 1 {
		t.Fatalf("newer import should update: %+v", res)
	}
	got, _ = dst.GetCard(card.ID)
	if got.Title != "Fresh title" {
		t.Fatalf("import newer copy must win, got %q", got.Title)
	}
}

// A local tombstone newer than the imported copy suppresses
// resurrection of the deleted entity.
func TestMergeTombstoneSuppressesResurrection(t *testing.T) {
	dst := newTestStore(t)
	page, card, _ := seedWorkspace(t, dst)

	snapshotUpdated := card.UpdatedAt
	if err := dst.DeleteCard(card.ID); err != nil {
		t.Fatal(err)
	}

	ws := &Workspace{
		Version: Version,
		KanbanCards: []jsonCard{
			{
				ID: card.ID, PageID: page.ID, ColumnID: "todo",
				Title: "Zombie", CreatedAt: card.CreatedAt,
				UpdatedAt: snapshotUpdated.Add(-time.Minute),
			},
		},
	}
	res, err := Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if res.CardsAdded != 0 || res.CardsUpdated != 0 {
		t.Fatalf("tombstoned card should not merge: %+v", res)
	}
	if got, _ := dst.GetCard(card.ID); got != nil {
		t.Fatalf("deleted card resurrected: %+v", got)
	}
}

// An imported deletion removes the local entity when the local copy
// predates the deletion, and the tombstone is retained for later
// merges.
func TestMergeAppliesImportedDeletion(t *testing.T) {
	dst := newTestStore(t)
	_, card, _ := seedWorkspace(t, dst)

	ws := &Workspace{
		Version: Version,
		Deletions: []jsonDeletion{
			{EntityType: "kanbanCard", EntityID: card.ID, DeletedAt: card.UpdatedAt.Add(time.Hour)},
		},
	}
	res, err := Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if res.DeletionsApplied != 1 {
		t.Fatalf("expected 1 deletion applied, got %+v", res)
	}
	if got, _ := dst.GetCard(card.ID); got != nil {
		t.Fatal("card should be deleted by import")
	}

	dels, _ := dst.ListDeletions()
	found := false
	for _, d := range dels {
		if d.EntityType == "kanbanCard" && d.EntityID == card.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("import tombstone should be retained")
	}
}

func TestMergeSkipsDeletionOfNewerLocal(t *testing.T) {
	dst := newTestStore(t)
	_, card, _ := seedWorkspace(t, dst)

	ws := &Workspace{
		Version: Version,
		Deletions: []jsonDeletion{
			{EntityType: "kanbanCard", EntityID: card.ID, DeletedAt: card.UpdatedAt.Add(-time.Hour)},
		},
	}
	res, err := Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if res.DeletionsApplied != 0 {
		t.Fatalf("stale deletion should not apply, got %+v", res)
	}
	if got, _ := dst.GetCard(card.ID); got == nil {
		t.Fatal("locally newer card must survive a stale deletion")
	}
}

func TestMergeImportsSettings(t *testing.T) {
	dst := newTestStore(t)

	ws := &Workspace{
		Version: Version,
		FocusSettings: &jsonSettings{
			WorkMinutes: 45, BreakMinutes: 5, AudioEnabled: false,
			DayStartHour: 6, DayEndHour: 22,
			DurationPresets:         []int{20, 45},
			ReminderIntervalMinutes: 15,
		},
	}
	res, err := Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if !res.SettingsImported {
		t.Fatal("expected settings import")
	}
	cfg, _ := dst.GetFocusSettings()
	if cfg.WorkMinutes != 45 || cfg.DayEndHour != 22 || cfg.AudioEnabled {
		t.Fatalf("settings mismatch: %+v", cfg)
	}
}

func TestMergeIdempotent(t *testing.T) {
	src := newTestStore(t)
	seedWorkspace(t, src)
	ws, _ := Snapshot(src)

	dst := newTestStore(t)
	if _, err := Merge(dst, ws); err != nil {
		t.Fatal(err)
	}
	res, err := Merge(dst, ws)
	if err != nil {
		t.Fatal(err)
	}
	if res.PagesAdded+res.PagesUpdated+res.CardsAdded+res.CardsUpdated+res.BlocksAdded+res.BlocksUpdated != 0 {
		t.Fatalf("second merge of the same snapshot must be a no-op: %+v", res)
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	src := newTestStore(t)
	page, _, _ := seedWorkspace(t, src)

	path := filepath.Join(t.TempDir(), "export.json")
	if err := WriteFile(src, path); err != nil {
		t.Fatal(err)
	}

	dst := newTestStore(t)
	res, err := ReadFile(dst, path)
	if err != nil {
		t.Fatal(err)
	}
	if res.PagesAdded != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	got, _ := dst.GetPage(page.ID)
	if got == nil || got.Title != "Work" {
		t.Fatalf("page did not round trip: %+v", got)
	}
}
