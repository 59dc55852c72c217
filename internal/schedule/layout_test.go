package schedule

import (
	"testing"
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

func block(id string, startMinute, duration, order int) store.TimeBlock {
	return store.TimeBlock{
		ID:              id,
		Kind:            store.KindTask,
		Date:            "2026-09-01",
		StartHour:       14,
		StartMinute:     startMinute,
		DurationMinutes: duration,
		Status:          store.StatusScheduled,
		Order:           order,
	}
}

// ============================================================
// EffectiveLayout
// ============================================================

func TestEffectiveLayoutStacksInOrder(t *testing.T) {
	blocks := []store.TimeBlock{
		block("b", 0, 15, 1),
		block("a", 0, 20, 0),
		block("c", 0, 10, 2),
	}
	layout := EffectiveLayout(blocks)

	want := []struct {
		id         string
		start, end int
	}{
		{"a", 0, 20},
		{"b", 20, 35},
		{"c", 35, 45},
	}
	for i, w := range want {
		p := layout[i]
		if p.Block.ID != w.id || p.StartMinute != w.start || p.EndMinute != w.end {
			t.Fatalf("placement %d: got %s [%d,%d), want %s [%d,%d)",
				i, p.Block.ID, p.StartMinute, p.EndMinute, w.id, w.start, w.end)
		}
	}
}

func TestEffectiveLayoutLeadingGap(t *testing.T) {
	layout := EffectiveLayout([]store.TimeBlock{block("a", 15, 30, 0)})
	if layout[0].StartMinute != 15 || layout[0].EndMinute != 45 {
		t.Fatalf("got [%d,%d), want [15,45)", layout[0].StartMinute, layout[0].EndMinute)
	}
}

// A later block's start hint is honored when it exceeds the cursor,
// and ignored when the cursor has already passed it.
func TestEffectiveLayoutMidHints(t *testing.T) {
	blocks := []store.TimeBlock{
		block("a", 0, 20, 0),
		block("b", 30, 10, 1),
		block("c", 25, 15, 2),
	}
	layout := EffectiveLayout(blocks)

	if layout[0].StartMinute != 0 || layout[0].EndMinute != 20 {
		t.Fatalf("a: got [%d,%d)", layout[0].StartMinute, layout[0].EndMinute)
	}
	// b's hint 30 > cursor 20: gap honored.
	if layout[1].StartMinute != 30 || layout[1].EndMinute != 40 {
		t.Fatalf("b: got [%d,%d), want [30,40)", layout[1].StartMinute, layout[1].EndMinute)
	}
	// c's hint 25 < cursor 40: ignored, stacks after b.
	if layout[2].StartMinute != 40 || layout[2].EndMinute != 55 {
		t.Fatalf("c: got [%d,%d), want [40,55)", layout[2].StartMinute, layout[2].EndMinute)
	}
}

func TestEffectiveLayoutNeverOverlaps(t *testing.T) {
	blocks := []store.TimeBlock{
		block("a", 10, 25, 0),
		block("b", 5, 20, 1),
		block("c", 50, 10, 2),
		block("d", 0, 5, 3),
	}
	layout := EffectiveLayout(blocks)
	for i := 1; i < len(layout); i++ {
		if layout[i].StartMinute < layout[i-1].EndMinute {
			t.Fatalf("windows overlap: %v then %v", layout[i-1], layout[i])
		}
	}
}

func TestEffectiveLayoutEmpty(t *testing.T) {
	if got := EffectiveLayout(nil); len(got) != 0 {
		t.Fatalf("expected empty layout, got %v", got)
	}
	if got := EffectiveEnd(nil); got != 0 {
		t.Fatalf("expected end 0, got %d", got)
	}
}

func TestEffectiveLayoutDoesNotMutateInput(t *testing.T) {
	blocks := []store.TimeBlock{
		block("b", 0, 10, 1),
		block("a", 0, 10, 0),
	}
	EffectiveLayout(blocks)
	if blocks[0].ID != "b" {
		t.Fatal("input slice was reordered")
	}
}

// ============================================================
// Capacity
// ============================================================

func TestRemainingCapacityOtherHour(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 45, 0, 0, time.Local)
	blocks := []store.TimeBlock{block("a", 0, 20, 0), block("b", 0, 15, 1)}

	if got := RemainingCapacity(blocks, "2026-09-01", 14, now); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := RemainingCapacity(nil, "2026-09-01", 14, now); got != 60 {
		t.Fatalf("expected 60 for empty slot, got %d", got)
	}
}

func TestRemainingCapacityCurrentHourClamp(t *testing.T) {
	now := time.Date(2026, 9, 1, 14, 50, 0, 0, time.Local)
	blocks := []store.TimeBlock{block("a", 0, 30, 0)}

	// Blocks end at :30 but it is already :50.
	if got := RemainingCapacity(blocks, "2026-09-01", 14, now); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}

	// The same slot on another date is not clamped.
	if got := RemainingCapacity(blocks, "2026-09-02", 14, now); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}

func TestRemainingCapacityNeverNegative(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	blocks := []store.TimeBlock{block("a", 30, 45, 0)}
	// Effective end 75 overflows the hour.
	if got := RemainingCapacity(blocks, "2026-09-01", 14, now); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

// Capacity conservation: leading gap plus block time plus remaining
// capacity accounts for the whole hour.
func TestCapacityConservation(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	blocks := []store.TimeBlock{
		block("a", 10, 20, 0),
		block("b", 0, 15, 1),
	}
	layout := EffectiveLayout(blocks)

	used := 0
	for _, p := range layout {
		used += p.EndMinute - p.StartMinute
	}
	gaps := layout[0].StartMinute
	for i := 1; i < len(layout); i++ {
		gaps += layout[i].StartMinute - layout[i-1].EndMinute
	}
	free := RemainingCapacity(blocks, "2026-09-01", 14, now)

	if used+gaps+free != 60 {
		t.Fatalf("hour does not add up: used=%d gaps=%d free=%d", used, gaps, free)
	}
}

// ============================================================
// ActiveBlockAt
// ============================================================

func TestActiveBlockAt(t *testing.T) {
	blocks := []store.TimeBlock{
		block("a", 0, 20, 0),
		block("b", 30, 10, 1),
	}

	if got := ActiveBlockAt(blocks, 5); got == nil || got.ID != "a" {
		t.Fatalf("minute 5: got %v, want a", got)
	}
	// Gap between a and b.
	if got := ActiveBlockAt(blocks, 25); got != nil {
		t.Fatalf("minute 25: expected nil in gap, got %v", got)
	}
	if got := ActiveBlockAt(blocks, 30); got == nil || got.ID != "b" {
		t.Fatalf("minute 30: got %v, want b", got)
	}
	// End minute is exclusive.
	if got := ActiveBlockAt(blocks, 40); got != nil {
		t.Fatalf("minute 40: expected nil past end, got %v", got)
	}
}

func TestActiveBlockAtIgnoresNonScheduled(t *testing.T) {
	skipped := block("a", 0, 30, 0)
	skipped.Status = store.StatusSkipped
	if got := ActiveBlockAt([]store.TimeBlock{skipped}, 10); got != nil {
		t.Fatalf("expected nil for skipped block, got %v", got)
	}
}

// ============================================================
// BlockWindow
// ============================================================

func TestBlockWindowAbsolute(t *testing.T) {
	a := block("a", 0, 20, 0)
	b := block("b", 30, 10, 1)
	siblings := []store.TimeBlock{a, b}

	start, end, ok := BlockWindow(siblings, b)
	if !ok {
		t.Fatal("expected ok")
	}
	wantStart := time.Date(2026, 9, 1, 14, 30, 0, 0, time.Local)
	wantEnd := time.Date(2026, 9, 1, 14, 40, 0, 0, time.Local)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("got [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestBlockWindowStaleBlock(t *testing.T) {
	siblings := []store.TimeBlock{block("a", 0, 20, 0)}
	if _, _, ok := BlockWindow(siblings, block("gone", 0, 10, 5)); ok {
		t.Fatal("expected ok=false for a block missing from its siblings")
	}
}
