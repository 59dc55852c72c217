package schedule

import (
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

// Scheduler applies scheduling operations against the time-block
// store, validating them with the layout engine. Construct one at
// startup and inject it; every wall-clock read goes through the now
// field so tests can pin time.
type Scheduler struct {
	store *store.Store
	now   func() time.Time

	// OnStatusChange, when set, is invoked after a block transitions
	// status (completed or skipped). The view layer uses it to move
	// cards and surface toasts; the core never calls into UI directly.
	OnStatusChange func(store.TimeBlock)
}

func New(s *store.Store) *Scheduler {
	return NewWithClock(s, time.Now)
}

func NewWithClock(s *store.Store, now func() time.Time) *Scheduler {
	return &Scheduler{store: s, now: now}
}

// CreateBlock schedules a task card into a (date, hour) slot.
func (sc *Scheduler) CreateBlock(cardID, pageID, date string, startHour, durationMinutes int) (*store.TimeBlock, error) {
	return sc.createBlock(store.KindTask, cardID, pageID, date, startHour, durationMinutes)
}

// CreateBreakBlock schedules a non-task placeholder. Breaks occupy
// capacity but are never offered for sessions or reminders.
func (sc *Scheduler) CreateBreakBlock(date string, startHour, durationMinutes int) (*store.TimeBlock, error) {
	return sc.createBlock(store.KindBreak, "", "", date, startHour, durationMinutes)
}

func (sc *Scheduler) createBlock(kind store.BlockKind, cardID, pageID, date string, startHour, durationMinutes int) (*store.TimeBlock, error) {
	if durationMinutes <= 0 || durationMinutes > 60 {
		return nil, ErrInvalidDuration
	}

	existing, err := sc.store.ListBlocksForSlot(date, startHour)
	if err != nil {
		return nil, err
	}

	now := sc.now()
	capacity := RemainingCapacity(existing, date, startHour, now)
	if durationMinutes > capacity {
		return nil, &CapacityError{Requested: durationMinutes, Available: capacity}
	}

	maxOrder := -1
	for _, b := range existing {
		if b.Order > maxOrder {
			maxOrder = b.Order
		}
	}

	// Scheduling into the current hour of an empty slot starts the
	// block "now", reserving a leading gap. Otherwise blocks stack
	// from the top of the hour via the effective layout.
	startMinute := 0
	if date == DateOf(now) && startHour == now.Hour() && len(existing) == 0 {
		startMinute = now.Minute()
	}

	block := &store.TimeBlock{
		CardID:          cardID,
		PageID:          pageID,
		Kind:            kind,
		Date:            date,
		StartHour:       startHour,
		StartMinute:     startMinute,
		DurationMinutes: durationMinutes,
		Status:          store.StatusScheduled,
		Order:           maxOrder + 1,
	}
	return sc.store.InsertBlock(block)
}

// DeleteBlock removes a block unconditionally. Order gaps left behind
// are harmless; only relative order matters.
func (sc *Scheduler) DeleteBlock(id string) error {
	return sc.store.DeleteBlock(id)
}

// ReorderBlocksInHour rewrites the order of a slot wholesale after a
// drag reorder. All ids must belong to the same (date, hour) slot.
func (sc *Scheduler) ReorderBlocksInHour(orderedIDs []string) error {
	for i, id := range orderedIDs {
		if err := sc.store.UpdateBlockOrder(id, i); err != nil {
			return err
		}
	}
	return nil
}

// MoveBlockToHour reassigns a block to another hour of the same date,
// appending it to the destination order. Capacity is not re-checked
// here: callers performing a drag-move must pre-check
// RemainingCapacity against the block's duration and reject the drop
// when insufficient.
func (sc *Scheduler) MoveBlockToHour(blockID string, newHour int, date string) error {
	target, err := sc.store.ListBlocksForSlot(date, newHour)
	if err != nil {
		return err
	}
	maxOrder := -1
	for _, b := range target {
		if b.Order > maxOrder {
			maxOrder = b.Order
		}
	}
	return sc.store.UpdateBlockSlot(blockID, newHour, maxOrder+1)
}

// RemainingCapacity reports the free minutes of a slot relative to
// the current wall clock.
func (sc *Scheduler) RemainingCapacity(date string, hour int) (int, error) {
	blocks, err := sc.store.ListBlocksForSlot(date, hour)
	if err != nil {
		return 0, err
	}
	return RemainingCapacity(blocks, date, hour, sc.now()), nil
}

// FindAvailableHour picks the hour a new block should land in: the
// current hour when it is inside the working day and has capacity,
// else the first later hour with capacity. Falls back to dayStartHour
// even when full; the subsequent create surfaces the capacity error.
func (sc *Scheduler) FindAvailableHour(date string, dayStartHour, dayEndHour, minCapacity int) (int, error) {
	blocks, err := sc.store.ListBlocksForDate(date)
	if err != nil {
		return 0, err
	}

	now := sc.now()
	isToday := date == DateOf(now)
	currentHour := -1
	if isToday {
		currentHour = now.Hour()
	}

	byHour := make(map[int][]store.TimeBlock)
	for _, b := range blocks {
		byHour[b.StartHour] = append(byHour[b.StartHour], b)
	}
	capacityAt := func(h int) int {
		return RemainingCapacity(byHour[h], date, h, now)
	}

	if isToday && currentHour >= dayStartHour && currentHour < dayEndHour && capacityAt(currentHour) >= minCapacity {
		return currentHour, nil
	}
	for h := dayStartHour; h < dayEndHour; h++ {
		if isToday && h < currentHour {
			continue
		}
		if capacityAt(h) >= minCapacity {
			return h, nil
		}
	}
	return dayStartHour, nil
}

// BlockWindowFor resolves a block's absolute effective window against
// its current siblings. ok is false for stale ids.
func (sc *Scheduler) BlockWindowFor(block store.TimeBlock) (start, end time.Time, ok bool, err error) {
	siblings, err := sc.store.ListBlocksForSlot(block.Date, block.StartHour)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	start, end, ok = BlockWindow(siblings, block)
	return start, end, ok, nil
}

// SessionSeconds returns the countdown duration for starting a session
// from a block: the block's duration capped so the session can never
// run past the block's effective end, even when started late.
func (sc *Scheduler) SessionSeconds(block store.TimeBlock) (int, error) {
	if block.IsBreak() {
		return 0, ErrBreakBlock
	}
	_, end, ok, err := sc.BlockWindowFor(block)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrBlockNotFound
	}
	now := sc.now()
	untilEnd := int(end.Sub(now).Seconds())
	capped := block.DurationMinutes * 60
	if untilEnd < capped {
		capped = untilEnd
	}
	if capped <= 0 {
		return 0, ErrWindowElapsed
	}
	return capped, nil
}

// CompleteBlock transitions a scheduled block to completed. Completed
// and skipped blocks are left untouched; status moves forward only.
func (sc *Scheduler) CompleteBlock(id string) error {
	block, err := sc.store.GetBlock(id)
	if err != nil {
		return err
	}
	if block == nil || block.Status != store.StatusScheduled {
		return nil
	}
	if err := sc.store.UpdateBlockStatus(id, store.StatusCompleted); err != nil {
		return err
	}
	block.Status = store.StatusCompleted
	if sc.OnStatusChange != nil {
		sc.OnStatusChange(*block)
	}
	return nil
}

// RescheduleBlock moves a block to a new slot as delete + recreate,
// resetting it to scheduled. Skipped blocks get a fresh chance this
// way rather than through an in-place status reversal.
func (sc *Scheduler) RescheduleBlock(block store.TimeBlock, date string, startHour, durationMinutes int) (*store.TimeBlock, error) {
	if err := sc.store.DeleteBlock(block.ID); err != nil {
		return nil, err
	}
	return sc.createBlock(block.Kind, block.CardID, block.PageID, date, startHour, durationMinutes)
}

// MarkSkippedBlocks demotes elapsed scheduled blocks to skipped.
// Past hours (or every hour of a past date) are skipped wholesale;
// for the current hour only blocks whose effective window has fully
// elapsed are demoted. Idempotent, safe to run every sweep tick.
func (sc *Scheduler) MarkSkippedBlocks(date string) error {
	now := sc.now()
	today := DateOf(now)

	var currentHour int
	switch {
	case date == today:
		currentHour = now.Hour()
	case date < today:
		currentHour = 24
	default:
		return nil
	}

	blocks, err := sc.store.ListBlocksForDate(date)
	if err != nil {
		return err
	}

	byHour := make(map[int][]store.TimeBlock)
	for _, b := range blocks {
		byHour[b.StartHour] = append(byHour[b.StartHour], b)
	}

	for hour, hourBlocks := range byHour {
		switch {
		case hour < currentHour:
			for _, b := range hourBlocks {
				if b.Status == store.StatusScheduled {
					if err := sc.skip(b); err != nil {
						return err
					}
				}
			}
		case hour == currentHour && date == today:
			for _, p := range EffectiveLayout(hourBlocks) {
				if p.Block.Status == store.StatusScheduled && p.EndMinute <= now.Minute() {
					if err := sc.skip(p.Block); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (sc *Scheduler) skip(b store.TimeBlock) error {
	if err := sc.store.UpdateBlockStatus(b.ID, store.StatusSkipped); err != nil {
		return err
	}
	b.Status = store.StatusSkipped
	if sc.OnStatusChange != nil {
		sc.OnStatusChange(b)
	}
	return nil
}
