package store

import "time"

type PageType string

const (
	PageDocument PageType = "document"
	PageKanban   PageType = "kanban"
)

type Page struct {
	ID           string
	Title        string
	ParentID     *string
	PageType     PageType
	Icon         string
	Content      string // opaque editor blocks, stored as JSON
	Columns      []KanbanColumn
	DoneColumnID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type KanbanColumn struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

type KanbanCard struct {
	ID          string
	PageID      string
	ColumnID    string
	ParentID    *string
	Title       string
	Description string
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionLog is a note jotted down during a focus session, attached
// to the card the session ran against.
type SessionLog struct {
	ID        string
	CardID    string
	Content   string
	CreatedAt time.Time
}

// BlockKind distinguishes real task blocks from break placeholders.
// Breaks occupy schedule capacity but are never offered for sessions
// or reminders.
type BlockKind string

const (
	KindTask  BlockKind = "task"
	KindBreak BlockKind = "break"
)

type BlockStatus string

const (
	StatusScheduled BlockStatus = "scheduled"
	StatusCompleted BlockStatus = "completed"
	StatusSkipped   BlockStatus = "skipped"
)

// TimeBlock is a scheduled occupation of part of an hour on a given
// date. StartMinute is a hint honored only to create a leading gap;
// the actual minute window is derived by the layout engine.
type TimeBlock struct {
	ID              string
	CardID          string
	PageID          string
	Kind            BlockKind
	Date            string // YYYY-MM-DD, local
	StartHour       int
	StartMinute     int
	DurationMinutes int
	Status          BlockStatus
	Order           int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (b TimeBlock) IsBreak() bool {
	return b.Kind == KindBreak
}

type FocusSettings struct {
	WorkMinutes             int
	BreakMinutes            int
	AudioEnabled            bool
	DayStartHour            int
	DayEndHour              int
	DurationPresets         []int
	ReminderIntervalMinutes int
}

// FocusSession is the persisted snapshot of the single active
// countdown. Remaining time is never stored; it is derived from
// TotalSeconds, ElapsedBeforePause, StartedAtMS and the wall clock.
type FocusSession struct {
	CardID             string
	CardTitle          string
	BoardName          string
	PageID             string
	TimeBlockID        string
	TotalSeconds       int
	StartedAtMS        int64 // epoch ms of last resume; 0 while paused
	ElapsedBeforePause int   // seconds consumed in prior running intervals
	IsRunning          bool
}

type Deletion struct {
	EntityType string
	EntityID   string
	DeletedAt  time.Time
}
