// Package schedule contains the time-block scheduling core: the pure
// capacity/layout engine and the operations that create, move and
// sweep blocks against it.
package schedule

import (
	"sort"
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

// Placement is a block resolved to the minute window it actually
// occupies within its hour.
type Placement struct {
	Block       store.TimeBlock
	StartMinute int
	EndMinute   int
}

// EffectiveLayout stacks the blocks of one (date, hour) slot into
// non-overlapping minute windows. Blocks are taken in ascending order;
// a block's StartMinute is honored only where it exceeds the stacking
// cursor, so a gap can appear before the first block (or after an
// explicit hint) but windows never overlap.
func EffectiveLayout(blocks []store.TimeBlock) []Placement {
	sorted := make([]store.TimeBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	pos := 0
	if len(sorted) > 0 && sorted[0].StartMinute > 0 {
		pos = sorted[0].StartMinute
	}

	placements := make([]Placement, 0, len(sorted))
	for _, b := range sorted {
		start := pos
		if b.StartMinute > start {
			start = b.StartMinute
		}
		end := start + b.DurationMinutes
		placements = append(placements, Placement{Block: b, StartMinute: start, EndMinute: end})
		pos = end
	}
	return placements
}

// EffectiveEnd returns how many minutes of the hour the slot's blocks
// consume, including leading gaps.
func EffectiveEnd(blocks []store.TimeBlock) int {
	placements := EffectiveLayout(blocks)
	if len(placements) == 0 {
		return 0
	}
	return placements[len(placements)-1].EndMinute
}

// RemainingCapacity returns the free minutes left in a slot. For the
// current wall-clock hour the next start is clamped to now's minute,
// so the result never offers time that has already passed.
func RemainingCapacity(blocks []store.TimeBlock, date string, hour int, now time.Time) int {
	nextStart := EffectiveEnd(blocks)
	if date == DateOf(now) && hour == now.Hour() {
		if m := now.Minute(); m > nextStart {
			nextStart = m
		}
	}
	if nextStart >= 60 {
		return 0
	}
	return 60 - nextStart
}

// ActiveBlockAt returns the scheduled block whose effective window
// contains the given minute, or nil. Windows never overlap, so at
// most one block can match.
func ActiveBlockAt(blocks []store.TimeBlock, minute int) *store.TimeBlock {
	for _, p := range EffectiveLayout(blocks) {
		if minute >= p.StartMinute && minute < p.EndMinute {
			if p.Block.Status == store.StatusScheduled {
				b := p.Block
				return &b
			}
			return nil
		}
	}
	return nil
}

// BlockWindow resolves one block's absolute wall-clock window from its
// sibling set. ok is false when the block is not among the siblings
// (stale id), which callers treat as a benign no-op.
func BlockWindow(siblings []store.TimeBlock, block store.TimeBlock) (start, end time.Time, ok bool) {
	day, err := time.ParseInLocation("2006-01-02", block.Date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	for _, p := range EffectiveLayout(siblings) {
		if p.Block.ID == block.ID {
			base := day.Add(time.Duration(block.StartHour) * time.Hour)
			start = base.Add(time.Duration(p.StartMinute) * time.Minute)
			end = base.Add(time.Duration(p.EndMinute) * time.Minute)
			return start, end, true
		}
	}
	return time.Time{}, time.Time{}, false
}

// DateOf formats a time as the local calendar date used as the slot
// partition key.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
