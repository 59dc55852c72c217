package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

// newTestScheduler pins the clock to 2026-09-01 14:20 local.
func newTestScheduler(t *testing.T) (*Scheduler, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := func() time.Time {
		return time.Date(2026, 9, 1, 14, 20, 0, 0, time.Local)
	}
	return NewWithClock(s, clock), s
}

const (
	today    = "2026-09-01"
	tomorrow = "2026-09-02"
)

// ============================================================
// Creating blocks
// ============================================================

func TestCreateBlockValidation(t *testing.T) {
	sc, _ := newTestScheduler(t)

	for _, dur := range []int{0, -5, 61} {
		if _, err := sc.CreateBlock("c1", "p1", today, 9, dur); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("duration %d: expected ErrInvalidDuration, got %v", dur, err)
		}
	}
}

func TestCreateBlockCapacityError(t *testing.T) {
	sc, _ := newTestScheduler(t)

	if _, err := sc.CreateBlock("c1", "p1", tomorrow, 9, 40); err != nil {
		t.Fatal(err)
	}
	_, err := sc.CreateBlock("c2", "p1", tomorrow, 9, 30)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Requested != 30 || capErr.Available != 20 {
		t.Fatalf("unexpected capacity error: %+v", capErr)
	}
}

func TestCreateBlockAppendsOrder(t *testing.T) {
	sc, _ := newTestScheduler(t)

	b1, _ := sc.CreateBlock("c1", "p1", tomorrow, 9, 20)
	b2, _ := sc.CreateBlock("c2", "p1", tomorrow, 9, 20)
	if b1.Order != 0 || b2.Order != 1 {
		t.Fatalf("expected orders 0,1 got %d,%d", b1.Order, b2.Order)
	}
}

// Scheduling into the current hour of an empty slot reserves the
// minutes already gone as a leading gap.
func TestCreateBlockCurrentHourStartsNow(t *testing.T) {
	sc, _ := newTestScheduler(t)

	b, err := sc.CreateBlock("c1", "p1", today, 14, 25)
	if err != nil {
		t.Fatal(err)
	}
	if b.StartMinute != 20 {
		t.Fatalf("expected start minute 20, got %d", b.StartMinute)
	}

	// A second block in the now-occupied slot stacks instead.
	b2, err := sc.CreateBlock("c2", "p1", today, 14, 10)
	if err != nil {
		t.Fatal(err)
	}
	if b2.StartMinute != 0 {
		t.Fatalf("expected no hint on second block, got %d", b2.StartMinute)
	}
}

func TestCreateBlockOtherHourNoHint(t *testing.T) {
	sc, _ := newTestScheduler(t)
	b, err := sc.CreateBlock("c1", "p1", today, 16, 25)
	if err != nil {
		t.Fatal(err)
	}
	if b.StartMinute != 0 {
		t.Fatalf("expected start minute 0, got %d", b.StartMinute)
	}
}

func TestCreateBreakBlock(t *testing.T) {
	sc, _ := newTestScheduler(t)
	b, err := sc.CreateBreakBlock(tomorrow, 9, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsBreak() || b.CardID != "" {
		t.Fatalf("unexpected break block: %+v", b)
	}
}

// ============================================================
// Reorder and move
// ============================================================

func TestReorderBlocksInHour(t *testing.T) {
	sc, s := newTestScheduler(t)

	b1, _ := sc.CreateBlock("c1", "p1", tomorrow, 9, 10)
	b2, _ := sc.CreateBlock("c2", "p1", tomorrow, 9, 10)
	b3, _ := sc.CreateBlock("c3", "p1", tomorrow, 9, 10)

	if err := sc.ReorderBlocksInHour([]string{b3.ID, b1.ID, b2.ID}); err != nil {
		t.Fatal(err)
	}

	blocks, _ := s.ListBlocksForSlot(tomorrow, 9)
	if blocks[0].ID != b3.ID || blocks[1].ID != b1.ID || blocks[2].ID != b2.ID {
		t.Fatalf("unexpected order: %s %s %s", blocks[0].ID, blocks[1].ID, blocks[2].ID)
	}
}

func TestMoveBlockToHourAppends(t *testing.T) {
	sc, s := newTestScheduler(t)

	sc.CreateBlock("c1", "p1", tomorrow, 10, 20)
	b, _ := sc.CreateBlock("c2", "p1", tomorrow, 9, 20)

	if err := sc.MoveBlockToHour(b.ID, 10, tomorrow); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetBlock(b.ID)
	if got.StartHour != 10 || got.Order != 1 {
		t.Fatalf("expected hour 10 ord 1, got %d %d", got.StartHour, got.Order)
	}
}

// ============================================================
// FindAvailableHour
// ============================================================

func TestFindAvailableHourPrefersCurrentHour(t *testing.T) {
	sc, _ := newTestScheduler(t)
	// 14:20, current hour has 40 free minutes.
	h, err := sc.FindAvailableHour(today, 8, 18, 25)
	if err != nil {
		t.Fatal(err)
	}
	if h != 14 {
		t.Fatalf("expected 14, got %d", h)
	}
}

func TestFindAvailableHourSkipsFullCurrent(t *testing.T) {
	sc, _ := newTestScheduler(t)
	// Only 40 minutes remain of the current hour at 14:20.
	h, err := sc.FindAvailableHour(today, 8, 18, 50)
	if err != nil {
		t.Fatal(err)
	}
	if h != 15 {
		t.Fatalf("expected 15, got %d", h)
	}
}

func TestFindAvailableHourScansForward(t *testing.T) {
	sc, _ := newTestScheduler(t)
	sc.CreateBlock("c1", "p1", tomorrow, 8, 60)
	sc.CreateBlock("c2", "p1", tomorrow, 9, 60)

	h, err := sc.FindAvailableHour(tomorrow, 8, 18, 30)
	if err != nil {
		t.Fatal(err)
	}
	if h != 10 {
		t.Fatalf("expected 10, got %d", h)
	}
}

func TestFindAvailableHourFallsBackWhenFull(t *testing.T) {
	sc, _ := newTestScheduler(t)
	for h := 8; h < 11; h++ {
		sc.CreateBlock("c", "p", tomorrow, h, 60)
	}
	h, err := sc.FindAvailableHour(tomorrow, 8, 11, 30)
	if err != nil {
		t.Fatal(err)
	}
	if h != 8 {
		t.Fatalf("expected fallback to day start, got %d", h)
	}
}

// ============================================================
// SessionSeconds
// ============================================================

// A 30-minute block laid out 14:00-14:30, started at 14:20, leaves a
// 10-minute session.
func TestSessionSecondsCappedToWindow(t *testing.T) {
	sc, s := newTestScheduler(t)

	b, err := s.InsertBlock(&store.TimeBlock{
		CardID: "c1", PageID: "p1", Kind: store.KindTask,
		Date: today, StartHour: 14, DurationMinutes: 30,
		Status: store.StatusScheduled,
	})
	if err != nil {
		t.Fatal(err)
	}

	secs, err := sc.SessionSeconds(*b)
	if err != nil {
		t.Fatal(err)
	}
	if secs != 600 {
		t.Fatalf("expected 600 capped seconds, got %d", secs)
	}
}

func TestSessionSecondsFullDuration(t *testing.T) {
	sc, _ := newTestScheduler(t)

	// Created at 14:20 into the current hour: window is [20,45).
	b, err := sc.CreateBlock("c1", "p1", today, 14, 25)
	if err != nil {
		t.Fatal(err)
	}
	secs, err := sc.SessionSeconds(*b)
	if err != nil {
		t.Fatal(err)
	}
	if secs != 25*60 {
		t.Fatalf("expected 1500, got %d", secs)
	}
}

func TestSessionSecondsWindowElapsed(t *testing.T) {
	sc, s := newTestScheduler(t)

	b, _ := s.InsertBlock(&store.TimeBlock{
		CardID: "c1", PageID: "p1", Kind: store.KindTask,
		Date: today, StartHour: 14, DurationMinutes: 15,
		Status: store.StatusScheduled,
	})
	// Window [0,15) is long gone at 14:20.
	if _, err := sc.SessionSeconds(*b); !errors.Is(err, ErrWindowElapsed) {
		t.Fatalf("expected ErrWindowElapsed, got %v", err)
	}
}

func TestSessionSecondsBreakBlock(t *testing.T) {
	sc, _ := newTestScheduler(t)
	b, _ := sc.CreateBreakBlock(today, 15, 10)
	if _, err := sc.SessionSeconds(*b); !errors.Is(err, ErrBreakBlock) {
		t.Fatalf("expected ErrBreakBlock, got %v", err)
	}
}

func TestSessionSecondsStaleBlock(t *testing.T) {
	sc, _ := newTestScheduler(t)
	b, _ := sc.CreateBlock("c1", "p1", today, 15, 20)
	sc.DeleteBlock(b.ID)
	if _, err := sc.SessionSeconds(*b); !errors.Is(err, ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound, got %v", err)
	}
}

// ============================================================
// Status transitions
// ============================================================

func TestCompleteBlockForwardOnly(t *testing.T) {
	sc, s := newTestScheduler(t)

	var fired []store.TimeBlock
	sc.OnStatusChange = func(b store.TimeBlock) { fired = append(fired, b) }

	b, _ := sc.CreateBlock("c1", "p1", tomorrow, 9, 20)
	if err := sc.CompleteBlock(b.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetBlock(b.ID)
	if got.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if len(fired) != 1 || fired[0].Status != store.StatusCompleted {
		t.Fatalf("expected one hook fire, got %v", fired)
	}

	// Completing again (or a missing block) is a no-op.
	if err := sc.CompleteBlock(b.ID); err != nil {
		t.Fatal(err)
	}
	if err := sc.CompleteBlock("nope"); err != nil {
		t.Fatal(err)
	}
	if len(fired) != 1 {
		t.Fatalf("hook should not re-fire, got %d", len(fired))
	}
}

func TestRescheduleBlockResetsStatus(t *testing.T) {
	sc, s := newTestScheduler(t)

	b, _ := sc.CreateBlock("c1", "p1", tomorrow, 9, 20)
	s.UpdateBlockStatus(b.ID, store.StatusSkipped)
	stale, _ := s.GetBlock(b.ID)

	fresh, err := sc.RescheduleBlock(*stale, tomorrow, 11, 20)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ID == b.ID {
		t.Fatal("reschedule should mint a new block")
	}
	if fresh.Status != store.StatusScheduled || fresh.StartHour != 11 {
		t.Fatalf("unexpected fresh block: %+v", fresh)
	}
	if old, _ := s.GetBlock(b.ID); old != nil {
		t.Fatal("old block should be deleted")
	}
	if fresh.CardID != "c1" {
		t.Fatal("card binding should survive reschedule")
	}
}

func TestRescheduleBreakKeepsKind(t *testing.T) {
	sc, _ := newTestScheduler(t)
	b, _ := sc.CreateBreakBlock(tomorrow, 9, 10)
	fresh, err := sc.RescheduleBlock(*b, tomorrow, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh.IsBreak() {
		t.Fatal("break kind should survive reschedule")
	}
}

// ============================================================
// Sweep
// ============================================================

func TestMarkSkippedBlocksPastHours(t *testing.T) {
	sc, s := newTestScheduler(t)

	past, _ := s.InsertBlock(&store.TimeBlock{
		Kind: store.KindTask, Date: today, StartHour: 9,
		DurationMinutes: 30, Status: store.StatusScheduled,
	})
	future, _ := sc.CreateBlock("c1", "p1", today, 16, 30)

	if err := sc.MarkSkippedBlocks(today); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.GetBlock(past.ID); got.Status != store.StatusSkipped {
		t.Fatalf("past block: expected skipped, got %s", got.Status)
	}
	if got, _ := s.GetBlock(future.ID); got.Status != store.StatusScheduled {
		t.Fatalf("future block: expected scheduled, got %s", got.Status)
	}
}

// Within the current hour only blocks whose effective window has fully
// elapsed are demoted.
func TestMarkSkippedBlocksCurrentHourPartial(t *testing.T) {
	sc, s := newTestScheduler(t)

	done, _ := s.InsertBlock(&store.TimeBlock{
		Kind: store.KindTask, Date: today, StartHour: 14,
		DurationMinutes: 15, Status: store.StatusScheduled, Order: 0,
	})
	running, _ := s.InsertBlock(&store.TimeBlock{
		Kind: store.KindTask, Date: today, StartHour: 14,
		DurationMinutes: 30, Status: store.StatusScheduled, Order: 1,
	})

	// Layout at 14:20: done [0,15) elapsed, running [15,45) still live.
	if err := sc.MarkSkippedBlocks(today); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.GetBlock(done.ID); got.Status != store.StatusSkipped {
		t.Fatalf("elapsed block: expected skipped, got %s", got.Status)
	}
	if got, _ := s.GetBlock(running.ID); got.Status != store.StatusScheduled {
		t.Fatalf("live block: expected scheduled, got %s", got.Status)
	}
}

func TestMarkSkippedBlocksPastDateWholesale(t *testing.T) {
	sc, s := newTestScheduler(t)

	b, _ := s.InsertBlock(&store.TimeBlock{
		Kind: store.KindTask, Date: "2026-08-31", StartHour: 23,
		DurationMinutes: 30, Status: store.StatusScheduled,
	})
	if err := sc.MarkSkippedBlocks("2026-08-31"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetBlock(b.ID); got.Status != store.StatusSkipped {
		t.Fatalf("expected skipped, got %s", got.Status)
	}
}

func TestMarkSkippedBlocksFutureDateNoop(t *testing.T) {
	sc, s := newTestScheduler(t)

	b, _ := s.InsertBlock(&store.TimeBlock{
		Kind: store.KindTask, Date: tomorrow, StartHour: 9,
		DurationMinutes: 30, Status: store.StatusScheduled,
	})
	if err := sc.MarkSkippedBlocks(tomorrow); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetBlock(b.ID); got.Status != store.StatusScheduled {
		t.Fatalf("future date should be untouched, got %s", got.Status)
	}
}

func TestMarkSkippedBlocksIdempotent(t *testing.T) {
	sc, s := newTestScheduler(t)

	completed, _ := s.InsertBlock(&store.TimeBlock{
		Kind: store.KindTask, Date: today, StartHour: 9,
		DurationMinutes: 30, Status: store.StatusCompleted,
	})
	elapsed, _ := s.InsertBlock(&store.TimeBlock{
		Kind: store.KindTask, Date: today, StartHour: 9,
		DurationMinutes: 20, Status: store.StatusScheduled, Order: 1,
	})

	var fires int
	sc.OnStatusChange = func(store.TimeBlock) { fires++ }

	if err := sc.MarkSkippedBlocks(today); err != nil {
		t.Fatal(err)
	}
	if err := sc.MarkSkippedBlocks(today); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.GetBlock(completed.ID); got.Status != store.StatusCompleted {
		t.Fatalf("completed block must stay completed, got %s", got.Status)
	}
	if got, _ := s.GetBlock(elapsed.ID); got.Status != store.StatusSkipped {
		t.Fatalf("expected skipped, got %s", got.Status)
	}
	if fires != 1 {
		t.Fatalf("second sweep must not re-fire the hook, got %d fires", fires)
	}
}
