package schedule

import (
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

// reminderRetention bounds the persisted notification log; reminders
// only ever target the current hour, so anything older is dead weight.
const reminderRetention = 2 * time.Hour

// Reminder is an unstarted scheduled block that is due a nudge,
// joined with its card and board for display.
type Reminder struct {
	Block     store.TimeBlock
	Card      store.KanbanCard
	BoardName string
}

// DueReminder finds the block occupying the current minute of the
// current hour and returns it as a reminder when it is a task block
// with no session bound to it and the configured interval has passed
// since it was last notified. Returns nil when nothing is due.
// Notification timestamps persist so a reload does not re-notify
// within the same interval.
func (sc *Scheduler) DueReminder(activeCardID, activeBlockID string) (*Reminder, error) {
	settings, err := sc.store.GetFocusSettings()
	if err != nil {
		return nil, err
	}
	if settings.ReminderIntervalMinutes <= 0 {
		return nil, nil
	}

	now := sc.now()
	blocks, err := sc.store.ListBlocksForSlot(DateOf(now), now.Hour())
	if err != nil {
		return nil, err
	}

	block := ActiveBlockAt(blocks, now.Minute())
	if block == nil || block.IsBreak() {
		return nil, nil
	}
	if block.CardID == activeCardID || block.ID == activeBlockID {
		return nil, nil
	}

	last, err := sc.store.LastNotified(block.ID)
	if err != nil {
		return nil, err
	}
	interval := time.Duration(settings.ReminderIntervalMinutes) * time.Minute
	if last > 0 && now.Sub(time.UnixMilli(last)) < interval {
		return nil, nil
	}

	card, err := sc.store.GetCard(block.CardID)
	if err != nil {
		return nil, err
	}
	page, err := sc.store.GetPage(block.PageID)
	if err != nil {
		return nil, err
	}
	if card == nil || page == nil {
		// Stale references; nothing to remind about.
		return nil, nil
	}

	if err := sc.store.MarkNotified(block.ID, now.UnixMilli()); err != nil {
		return nil, err
	}
	cutoff := now.Add(-reminderRetention).UnixMilli()
	if err := sc.store.PruneReminderLog(cutoff); err != nil {
		return nil, err
	}

	boardName := page.Title
	if boardName == "" {
		boardName = "Untitled Board"
	}
	return &Reminder{Block: *block, Card: *card, BoardName: boardName}, nil
}
