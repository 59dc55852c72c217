package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arendt-dev/focusdeck/internal/schedule"
	"github.com/arendt-dev/focusdeck/internal/session"
	"github.com/arendt-dev/focusdeck/internal/store"
)

type dayPicker int

const (
	pickNone dayPicker = iota
	pickTask
	pickDuration
)

type dayModel struct {
	store *store.Store
	sched *schedule.Scheduler
	mgr   *session.Manager

	width  int
	height int

	date       string
	cfg        store.FocusSettings
	blocks     []store.TimeBlock
	cardTitles map[string]string

	hourCursor  int // index into the day's hour range
	blockCursor int // index within the selected hour's layout

	picker       dayPicker
	pickerCursor int
	eligible     []store.EligibleCard
	pendingCard  *store.EligibleCard
}

func newDayModel(s *store.Store, sched *schedule.Scheduler, mgr *session.Manager) dayModel {
	return dayModel{
		store:      s,
		sched:      sched,
		mgr:        mgr,
		date:       schedule.DateOf(time.Now()),
		cfg:        store.DefaultFocusSettings(),
		cardTitles: map[string]string{},
	}
}

func (d *dayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dayModel) capturing() bool {
	return d.picker != pickNone
}

type dayDataMsg struct {
	date   string
	cfg    store.FocusSettings
	blocks []store.TimeBlock
	titles map[string]string
}

type eligibleCardsMsg struct {
	cards []store.EligibleCard
}

func (d dayModel) refresh() tea.Cmd {
	date := d.date
	return func() tea.Msg {
		cfg, err := d.store.GetFocusSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		// The minute sweep only covers today; a past date opened here
		// may still hold blocks the app never got to mark.
		if date <= schedule.DateOf(time.Now()) {
			if err := d.sched.MarkSkippedBlocks(date); err != nil {
				return statusMsg{text: fmt.Sprintf("Sweep error: %v", err), isError: true}
			}
		}
		blocks, err := d.store.ListBlocksForDate(date)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		titles := map[string]string{}
		for _, b := range blocks {
			if b.CardID == "" {
				continue
			}
			if _, ok := titles[b.CardID]; ok {
				continue
			}
			if card, err := d.store.GetCard(b.CardID); err == nil && card != nil {
				titles[b.CardID] = card.Title
			}
		}
		return dayDataMsg{date: date, cfg: cfg, blocks: blocks, titles: titles}
	}
}

func (d dayModel) hours() []int {
	var out []int
	for h := d.cfg.DayStartHour; h <= d.cfg.DayEndHour; h++ {
		out = append(out, h)
	}
	return out
}

func (d dayModel) selectedHour() int {
	hrs := d.hours()
	if len(hrs) == 0 {
		return d.cfg.DayStartHour
	}
	if d.hourCursor >= len(hrs) {
		return hrs[len(hrs)-1]
	}
	return hrs[d.hourCursor]
}

// hourLayout is the effective layout of the selected hour, in the
// order blocks actually occupy minutes.
func (d dayModel) hourLayout(hour int) []schedule.Placement {
	var slot []store.TimeBlock
	for _, b := range d.blocks {
		if b.StartHour == hour {
			slot = append(slot, b)
		}
	}
	return schedule.EffectiveLayout(slot)
}

func (d dayModel) selectedBlock() *store.TimeBlock {
	layout := d.hourLayout(d.selectedHour())
	if len(layout) == 0 {
		return nil
	}
	i := d.blockCursor
	if i >= len(layout) {
		i = len(layout) - 1
	}
	b := layout[i].Block
	return &b
}

func (d dayModel) update(msg tea.Msg) (dayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dayDataMsg:
		if msg.date != d.date {
			return d, nil // stale load from a day we already left
		}
		d.cfg = msg.cfg
		d.blocks = msg.blocks
		d.cardTitles = msg.titles
		d.clampCursors()
		return d, nil

	case eligibleCardsMsg:
		d.eligible = msg.cards
		d.picker = pickTask
		d.pickerCursor = 0
		return d, nil

	case tea.KeyMsg:
		if d.picker != pickNone {
			return d.updatePicker(msg)
		}
		return d.updateBrowse(msg)
	}
	return d, nil
}

func (d *dayModel) clampCursors() {
	hrs := d.hours()
	if d.hourCursor >= len(hrs) {
		d.hourCursor = max(0, len(hrs)-1)
	}
	layout := d.hourLayout(d.selectedHour())
	if d.blockCursor >= len(layout) {
		d.blockCursor = max(0, len(layout)-1)
	}
}

func (d dayModel) updateBrowse(msg tea.KeyMsg) (dayModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.hourCursor > 0 {
			d.hourCursor--
			d.blockCursor = 0
		}
	case key.Matches(msg, keys.Down):
		if d.hourCursor < len(d.hours())-1 {
			d.hourCursor++
			d.blockCursor = 0
		}
	case key.Matches(msg, keys.Left):
		if d.blockCursor > 0 {
			d.blockCursor--
		}
	case key.Matches(msg, keys.Right):
		if d.blockCursor < len(d.hourLayout(d.selectedHour()))-1 {
			d.blockCursor++
		}
	case key.Matches(msg, keys.PrevDay):
		return d.gotoDay(-1)
	case key.Matches(msg, keys.NextDay):
		return d.gotoDay(1)
	case key.Matches(msg, keys.Today):
		d.date = schedule.DateOf(time.Now())
		d.hourCursor, d.blockCursor = 0, 0
		return d, d.refresh()
	case key.Matches(msg, keys.New):
		return d, d.loadEligible()
	case key.Matches(msg, keys.Break):
		return d, d.createBreak()
	case key.Matches(msg, keys.Delete):
		if b := d.selectedBlock(); b != nil {
			if err := d.sched.DeleteBlock(b.ID); err != nil {
				return d, statusCmd(fmt.Sprintf("Delete error: %v", err), true)
			}
			return d, d.refresh()
		}
	case key.Matches(msg, keys.Start):
		if b := d.selectedBlock(); b != nil {
			return d, d.startSession(*b)
		}
	case key.Matches(msg, keys.Complete):
		if b := d.selectedBlock(); b != nil {
			if err := d.sched.CompleteBlock(b.ID); err != nil {
				return d, statusCmd(fmt.Sprintf("Complete error: %v", err), true)
			}
			return d, d.refresh()
		}
	case key.Matches(msg, keys.Enter):
		if b := d.selectedBlock(); b != nil {
			return d, d.rescheduleBlock(*b)
		}
	case key.Matches(msg, keys.MoveUp):
		if b := d.selectedBlock(); b != nil {
			return d, d.moveBlock(*b, -1)
		}
	case key.Matches(msg, keys.MoveDown):
		if b := d.selectedBlock(); b != nil {
			return d, d.moveBlock(*b, 1)
		}
	default:
		switch msg.String() {
		case "<":
			return d, d.shiftOrder(-1)
		case ">":
			return d, d.shiftOrder(1)
		}
	}
	return d, nil
}

func (d dayModel) gotoDay(delta int) (dayModel, tea.Cmd) {
	t, err := time.ParseInLocation("2006-01-02", d.date, time.Local)
	if err != nil {
		t = time.Now()
	}
	d.date = schedule.DateOf(t.AddDate(0, 0, delta))
	d.hourCursor, d.blockCursor = 0, 0
	return d, d.refresh()
}

// loadEligible lists schedulable cards, never-scheduled ones first.
func (d dayModel) loadEligible() tea.Cmd {
	return func() tea.Msg {
		all, err := d.store.EligibleCards()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		if len(all) == 0 {
			return statusMsg{text: "No schedulable cards; add one on a board first"}
		}
		fresh, err := d.store.UnscheduledCards()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		seen := make(map[string]bool, len(fresh))
		for _, c := range fresh {
			seen[c.Card.ID] = true
		}
		cards := fresh
		for _, c := range all {
			if !seen[c.Card.ID] {
				cards = append(cards, c)
			}
		}
		return eligibleCardsMsg{cards: cards}
	}
}

func (d dayModel) createBreak() tea.Cmd {
	date, hour, mins := d.date, d.selectedHour(), d.cfg.BreakMinutes
	return func() tea.Msg {
		if _, err := d.sched.CreateBreakBlock(date, hour, mins); err != nil {
			return scheduleErrStatus(err)
		}
		return blockChangedMsg{}
	}
}

func (d dayModel) startSession(block store.TimeBlock) tea.Cmd {
	return func() tea.Msg {
		secs, err := d.sched.SessionSeconds(block)
		switch {
		case errors.Is(err, schedule.ErrWindowElapsed):
			return statusMsg{text: "Block window already ended; press enter to reschedule", isError: true}
		case errors.Is(err, schedule.ErrBreakBlock):
			return statusMsg{text: "Breaks have no sessions"}
		case err != nil:
			return statusMsg{text: fmt.Sprintf("Start error: %v", err), isError: true}
		}

		card, err := d.store.GetCard(block.CardID)
		if err != nil || card == nil {
			return statusMsg{text: "Card for this block no longer exists", isError: true}
		}
		boardName := ""
		if page, err := d.store.GetPage(card.PageID); err == nil && page != nil {
			boardName = page.Title
		}

		err = d.mgr.Start(session.StartParams{
			CardID:          card.ID,
			CardTitle:       card.Title,
			BoardName:       boardName,
			PageID:          card.PageID,
			TimeBlockID:     block.ID,
			DurationSeconds: secs,
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Start error: %v", err), isError: true}
		}
		return sessionStartedMsg{block: &block}
	}
}

// rescheduleBlock drops the block into the next hour with room for it,
// scanning today from the configured day start.
func (d dayModel) rescheduleBlock(block store.TimeBlock) tea.Cmd {
	cfg := d.cfg
	return func() tea.Msg {
		today := schedule.DateOf(time.Now())
		hour, err := d.sched.FindAvailableHour(today, cfg.DayStartHour, cfg.DayEndHour, block.DurationMinutes)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Reschedule error: %v", err), isError: true}
		}
		if _, err := d.sched.RescheduleBlock(block, today, hour, block.DurationMinutes); err != nil {
			return scheduleErrStatus(err)
		}
		return statusMsg{text: fmt.Sprintf("Rescheduled to %s", formatHour(hour))}
	}
}

func (d dayModel) moveBlock(block store.TimeBlock, delta int) tea.Cmd {
	cfg, date := d.cfg, d.date
	return func() tea.Msg {
		target := block.StartHour + delta
		if target < cfg.DayStartHour || target > cfg.DayEndHour {
			return statusMsg{text: "Already at the edge of the day"}
		}
		free, err := d.sched.RemainingCapacity(date, target)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Move error: %v", err), isError: true}
		}
		if free < block.DurationMinutes {
			return statusMsg{text: fmt.Sprintf("Only %s free at %s", formatMinutes(free), formatHour(target)), isError: true}
		}
		if err := d.sched.MoveBlockToHour(block.ID, target, date); err != nil {
			return statusMsg{text: fmt.Sprintf("Move error: %v", err), isError: true}
		}
		return blockChangedMsg{}
	}
}

// shiftOrder swaps the selected block with its layout neighbor and
// persists the new ordering for the whole hour.
func (d dayModel) shiftOrder(delta int) tea.Cmd {
	layout := d.hourLayout(d.selectedHour())
	i := d.blockCursor
	j := i + delta
	if i >= len(layout) || j < 0 || j >= len(layout) {
		return nil
	}
	ids := make([]string, len(layout))
	for k, p := range layout {
		ids[k] = p.Block.ID
	}
	ids[i], ids[j] = ids[j], ids[i]
	d.blockCursor = j
	return func() tea.Msg {
		if err := d.sched.ReorderBlocksInHour(ids); err != nil {
			return statusMsg{text: fmt.Sprintf("Reorder error: %v", err), isError: true}
		}
		return blockChangedMsg{}
	}
}

func (d dayModel) updatePicker(msg tea.KeyMsg) (dayModel, tea.Cmd) {
	limit := len(d.eligible)
	if d.picker == pickDuration {
		limit = len(d.cfg.DurationPresets)
	}

	switch {
	case key.Matches(msg, keys.Back):
		d.picker = pickNone
		d.pendingCard = nil
		return d, nil
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < limit-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		if d.picker == pickTask {
			if d.pickerCursor < len(d.eligible) {
				card := d.eligible[d.pickerCursor]
				d.pendingCard = &card
				d.picker = pickDuration
				d.pickerCursor = 0
			}
			return d, nil
		}
		if d.pendingCard != nil && d.pickerCursor < len(d.cfg.DurationPresets) {
			card := *d.pendingCard
			mins := d.cfg.DurationPresets[d.pickerCursor]
			d.picker = pickNone
			d.pendingCard = nil
			return d, d.createBlock(card, mins)
		}
	}
	return d, nil
}

func (d dayModel) createBlock(card store.EligibleCard, mins int) tea.Cmd {
	date, hour := d.date, d.selectedHour()
	return func() tea.Msg {
		if _, err := d.sched.CreateBlock(card.Card.ID, card.PageID, date, hour, mins); err != nil {
			return scheduleErrStatus(err)
		}
		return blockChangedMsg{}
	}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

func scheduleErrStatus(err error) tea.Msg {
	var capErr *schedule.CapacityError
	if errors.As(err, &capErr) {
		return statusMsg{text: capErr.Error(), isError: true}
	}
	return statusMsg{text: fmt.Sprintf("Schedule error: %v", err), isError: true}
}

func (d dayModel) view() string {
	if d.picker != pickNone {
		return d.renderPicker()
	}

	w := d.width - 4
	now := time.Now()
	today := schedule.DateOf(now)

	dateLabel := d.date
	if d.date == today {
		dateLabel += "  (today)"
	}
	title := titleStyle.Render("Day · " + dateLabel)

	var rows []string
	rows = append(rows, title, "")

	for i, hour := range d.hours() {
		layout := d.hourLayout(hour)

		free := 60
		if len(layout) > 0 {
			free = max(0, 60-layout[len(layout)-1].EndMinute)
		}
		if d.date == today && hour == now.Hour() {
			free = schedule.RemainingCapacity(slotBlocks(d.blocks, hour), d.date, hour, now)
		}

		header := fmt.Sprintf("%-6s", formatHour(hour))
		if i == d.hourCursor {
			header = selectedItemStyle.Render("> " + header)
		} else {
			header = mutedStyle.Render("  " + header)
		}
		header += subtitleStyle.Render(fmt.Sprintf("  %s free", formatMinutes(free)))
		rows = append(rows, header)

		for j, p := range layout {
			label := d.blockLabel(p)
			style := normalItemStyle
			switch p.Block.Status {
			case store.StatusCompleted:
				style = successStyle
			case store.StatusSkipped:
				style = mutedStyle
			}
			if p.Block.IsBreak() {
				style = breakStyle
			}
			marker := "    "
			if i == d.hourCursor && j == d.blockCursor {
				marker = "  ▸ "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(marker+label))
		}
	}

	rows = append(rows, "",
		mutedStyle.Render("  n: schedule  b: break  s: start  c: complete  d: delete  enter: reschedule"),
		mutedStyle.Render("  ←/→: pick block  </>: reorder  J/K: move hour  [/]: day  t: today"),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func slotBlocks(blocks []store.TimeBlock, hour int) []store.TimeBlock {
	var out []store.TimeBlock
	for _, b := range blocks {
		if b.StartHour == hour {
			out = append(out, b)
		}
	}
	return out
}

func (d dayModel) blockLabel(p schedule.Placement) string {
	name := "Break"
	if !p.Block.IsBreak() {
		name = d.cardTitles[p.Block.CardID]
		if name == "" {
			name = "(deleted card)"
		}
	}
	label := fmt.Sprintf(":%02d–:%02d  %s (%s)",
		p.StartMinute, p.EndMinute, truncate(name, 32), formatMinutes(p.Block.DurationMinutes))
	switch p.Block.Status {
	case store.StatusCompleted:
		label += "  ✓"
	case store.StatusSkipped:
		label += "  skipped"
	}
	return label
}

func (d dayModel) renderPicker() string {
	w := d.width - 4
	var rows []string

	if d.picker == pickTask {
		rows = append(rows, titleStyle.Render("Schedule at "+formatHour(d.selectedHour())), "")
		for i, c := range d.eligible {
			cursor := "  "
			style := normalItemStyle
			if i == d.pickerCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			line := fmt.Sprintf("%s%s", cursor, truncate(c.Card.Title, 36))
			line += subtitleStyle.Render(fmt.Sprintf("  %s / %s", c.BoardName, c.ColumnName))
			rows = append(rows, style.Render(line))
		}
	} else {
		name := ""
		if d.pendingCard != nil {
			name = d.pendingCard.Card.Title
		}
		rows = append(rows, titleStyle.Render("Duration for "+truncate(name, 36)), "")
		for i, mins := range d.cfg.DurationPresets {
			cursor := "  "
			style := normalItemStyle
			if i == d.pickerCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(cursor+formatMinutes(mins)))
		}
	}

	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
