// Package export reads and writes the versioned workspace JSON used
// to move data between devices. Imports merge last-write-wins by
// updatedAt, with tombstones suppressing resurrection of deleted
// entities.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

const Version = 1

type Workspace struct {
	Version       int            `json:"version"`
	ExportedAt    string         `json:"exportedAt"`
	Pages         []jsonPage     `json:"pages"`
	KanbanCards   []jsonCard     `json:"kanbanCards"`
	TimeBlocks    []jsonBlock    `json:"timeBlocks"`
	Deletions     []jsonDeletion `json:"deletions"`
	FocusSettings *jsonSettings  `json:"focusSettings,omitempty"`
}

type jsonPage struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	ParentID     *string              `json:"parentId"`
	PageType     string               `json:"pageType"`
	Icon         string               `json:"icon,omitempty"`
	Content      json.RawMessage      `json:"content"`
	Columns      []store.KanbanColumn `json:"columns"`
	DoneColumnID string               `json:"doneColumnId,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type jsonCard struct {
	ID          string    `json:"id"`
	PageID      string    `json:"pageId"`
	ColumnID    string    `json:"columnId"`
	ParentID    *string   `json:"parentId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type jsonBlock struct {
	ID              string    `json:"id"`
	CardID          string    `json:"cardId,omitempty"`
	PageID          string    `json:"pageId,omitempty"`
	Kind            string    `json:"kind"`
	Date            string    `json:"date"`
	StartHour       int       `json:"startHour"`
	StartMinute     int       `json:"startMinute"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Order           int       `json:"order"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type jsonDeletion struct {
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	DeletedAt  time.Time `json:"deletedAt"`
}

type jsonSettings struct {
	WorkMinutes             int   `json:"workMinutes"`
	BreakMinutes            int   `json:"breakMinutes"`
	AudioEnabled            bool  `json:"audioEnabled"`
	DayStartHour            int   `json:"dayStartHour"`
	DayEndHour              int   `json:"dayEndHour"`
	DurationPresets         []int `json:"durationPresets"`
	ReminderIntervalMinutes int   `json:"reminderIntervalMinutes"`
}

// Snapshot assembles the full workspace for export.
func Snapshot(s *store.Store) (*Workspace, error) {
	pages, err := s.ListPages()
	if err != nil {
		return nil, fmt.Errorf("export pages: %w", err)
	}
	var cards []store.KanbanCard
	for _, p := range pages {
		pc, err := s.ListCardsForPage(p.ID)
		if err != nil {
			return nil, fmt.Errorf("export cards: %w", err)
		}
		cards = append(cards, pc...)
	}
	blocks, err := s.ListAllBlocks()
	if err != nil {
		return nil, fmt.Errorf("export time blocks: %w", err)
	}
	deletions, err := s.ListDeletions()
	if err != nil {
		return nil, fmt.Errorf("export deletions: %w", err)
	}
	settings, err := s.GetFocusSettings()
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}

	ws := &Workspace{
		Version:    Version,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		FocusSettings: &jsonSettings{
			WorkMinutes:             settings.WorkMinutes,
			BreakMinutes:            settings.BreakMinutes,
			AudioEnabled:            settings.AudioEnabled,
			DayStartHour:            settings.DayStartHour,
			DayEndHour:              settings.DayEndHour,
			DurationPresets:         settings.DurationPresets,
			ReminderIntervalMinutes: settings.ReminderIntervalMinutes,
		},
	}
	for _, p := range pages {
		content := json.RawMessage(p.Content)
		if len(content) == 0 {
			content = json.RawMessage("[]")
		}
		cols := p.Columns
		if cols == nil {
			cols = []store.KanbanColumn{}
		}
		ws.Pages = append(ws.Pages, jsonPage{
			ID: p.ID, Title: p.Title, ParentID: p.ParentID, PageType: string(p.PageType),
			Icon: p.Icon, Content: content, Columns: cols, DoneColumnID: p.DoneColumnID,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		})
	}
	for _, c := range cards {
		ws.KanbanCards = append(ws.KanbanCards, jsonCard{
			ID: c.ID, PageID: c.PageID, ColumnID: c.ColumnID, ParentID: c.ParentID,
			Title: c.Title, Description: c.Description, Order: c.Order,
			CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
		})
	}
	for _, b := range blocks {
		ws.TimeBlocks = append(ws.TimeBlocks, jsonBlock{
			ID: b.ID, CardID: b.CardID, PageID: b.PageID, Kind: string(b.Kind),
			Date: b.Date, StartHour: b.StartHour, StartMinute: b.StartMinute,
			DurationMinutes: b.DurationMinutes, Status: string(b.Status), Order: b.Order,
			CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
		})
	}
	for _, d := range deletions {
		ws.Deletions = append(ws.Deletions, jsonDeletion{
			EntityType: d.EntityType, EntityID: d.EntityID, DeletedAt: d.DeletedAt,
		})
	}
	return ws, nil
}

// WriteFile exports the workspace as indented JSON.
func WriteFile(s *store.Store, path string) error {
	ws, err := Snapshot(s)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}
