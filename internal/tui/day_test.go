package tui

import (
	"strings"
	"testing"

	"github.com/arendt-dev/focusdeck/internal/schedule"
	"github.com/arendt-dev/focusdeck/internal/session"
	"github.com/arendt-dev/focusdeck/internal/store"
)

func newTestDayModel(t *testing.T) (dayModel, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return newDayModel(s, schedule.New(s), session.NewManager(s)), s
}

// ============================================================
// Day view data handling
// ============================================================

func TestDayDataKeepsCardTitles(t *testing.T) {
	d, _ := newTestDayModel(t)
	d.date = "2026-09-01"

	block := store.TimeBlock{
		ID: "b1", CardID: "c1", Kind: store.KindTask,
		Date: d.date, StartHour: 9, DurationMinutes: 30,
		Status: store.StatusScheduled,
	}
	d, _ = d.update(dayDataMsg{
		date:   d.date,
		cfg:    store.DefaultFocusSettings(),
		blocks: []store.TimeBlock{block},
		titles: map[string]string{"c1": "Write chapter"},
	})

	layout := d.hourLayout(9)
	if len(layout) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(layout))
	}
	label := d.blockLabel(layout[0])
	if !strings.Contains(label, "Write chapter") {
		t.Fatalf("card title missing from label: %q", label)
	}
	if strings.Contains(label, "(deleted card)") {
		t.Fatalf("live card rendered as deleted: %q", label)
	}
}

func TestDayDataIgnoresStaleDate(t *testing.T) {
	d, _ := newTestDayModel(t)
	d.date = "2026-09-01"

	d, _ = d.update(dayDataMsg{
		date:   "2026-08-30",
		titles: map[string]string{"c1": "Old"},
	})
	if len(d.cardTitles) != 0 {
		t.Fatalf("stale load should be dropped, got %v", d.cardTitles)
	}
}

// Opening a past date sweeps its still-scheduled blocks, since the
// minute sweep only ever covers today.
func TestDayRefreshSweepsPastDate(t *testing.T) {
	d, s := newTestDayModel(t)
	const past = "2020-01-06"

	blk, err := s.InsertBlock(&store.TimeBlock{
		CardID: "c1", PageID: "p1", Kind: store.KindTask,
		Date: past, StartHour: 9, DurationMinutes: 30,
		Status: store.StatusScheduled,
	})
	if err != nil {
		t.Fatal(err)
	}

	d.date = past
	msg := d.refresh()()
	data, ok := msg.(dayDataMsg)
	if !ok {
		t.Fatalf("expected dayDataMsg, got %T: %v", msg, msg)
	}
	if len(data.blocks) != 1 || data.blocks[0].Status != store.StatusSkipped {
		t.Fatalf("expected skipped block in view data, got %+v", data.blocks)
	}
	got, _ := s.GetBlock(blk.ID)
	if got.Status != store.StatusSkipped {
		t.Fatalf("expected stored block skipped, got %s", got.Status)
	}
}

func TestDayRefreshLeavesFutureDateAlone(t *testing.T) {
	d, s := newTestDayModel(t)
	const future = "2099-01-06"

	blk, err := s.InsertBlock(&store.TimeBlock{
		CardID: "c1", PageID: "p1", Kind: store.KindTask,
		Date: future, StartHour: 9, DurationMinutes: 30,
		Status: store.StatusScheduled,
	})
	if err != nil {
		t.Fatal(err)
	}

	d.date = future
	d.refresh()()
	got, _ := s.GetBlock(blk.ID)
	if got.Status != store.StatusScheduled {
		t.Fatalf("future block must stay scheduled, got %s", got.Status)
	}
}
