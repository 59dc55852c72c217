package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateCard(pageID, columnID, title, description string) (*KanbanCard, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	var maxOrd sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(ord) FROM kanban_cards WHERE page_id = ? AND column_id = ?`,
		pageID, columnID,
	).Scan(&maxOrd)
	if err != nil {
		return nil, fmt.Errorf("card order: %w", err)
	}
	ord := 0
	if maxOrd.Valid {
		ord = int(maxOrd.Int64) + 1
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO kanban_cards (id, page_id, column_id, title, description, ord, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, pageID, columnID, title, description, ord, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert card: %w", err)
	}
	return s.GetCard(id)
}

// GetCard returns nil, nil when the card does not exist.
func (s *Store) GetCard(id string) (*KanbanCard, error) {
	cards, err := s.queryCards(
		`SELECT id, page_id, column_id, parent_id, title, description, ord, created_at, updated_at
		 FROM kanban_cards WHERE id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", id, err)
	}
	if len(cards) == 0 {
		return nil, nil
	}
	return &cards[0], nil
}

func (s *Store) ListCardsForPage(pageID string) ([]KanbanCard, error) {
	return s.queryCards(
		`SELECT id, page_id, column_id, parent_id, title, description, ord, created_at, updated_at
		 FROM kanban_cards WHERE page_id = ? ORDER BY column_id, ord`, pageID,
	)
}

func (s *Store) MoveCardToColumn(id, columnID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE kanban_cards SET column_id = ?, updated_at = ? WHERE id = ?`,
		columnID, now, id,
	)
	return err
}

func (s *Store) UpdateCard(id, title, description string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE kanban_cards SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		title, description, now, id,
	)
	return err
}

func (s *Store) PutCard(c *KanbanCard) error {
	_, err := s.db.Exec(
		`INSERT INTO kanban_cards (id, page_id, column_id, parent_id, title, description, ord, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			page_id = excluded.page_id, column_id = excluded.column_id,
			parent_id = excluded.parent_id, title = excluded.title,
			description = excluded.description, ord = excluded.ord,
			updated_at = excluded.updated_at`,
		c.ID, c.PageID, c.ColumnID, c.ParentID, c.Title, c.Description, c.Order,
		c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteCard removes the card, cascades to its time blocks, and
// records a tombstone.
func (s *Store) DeleteCard(id string) error {
	if err := s.DeleteBlocksForCard(id); err != nil {
		return err
	}
	if err := s.DeleteSessionLogsForCard(id); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM kanban_cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	return s.RecordDeletion("kanbanCard", id)
}

// EligibleCard is a schedulable card joined with its board context.
type EligibleCard struct {
	Card       KanbanCard
	BoardName  string
	ColumnName string
	PageID     string
}

// EligibleCards returns top-level cards on kanban boards that are not
// in the board's done column.
func (s *Store) EligibleCards() ([]EligibleCard, error) {
	boards, err := s.queryPages(`SELECT id, title, parent_id, page_type, icon, content, columns, done_column_id, created_at, updated_at
		FROM pages WHERE page_type = 'kanban' ORDER BY title`)
	if err != nil {
		return nil, err
	}

	var results []EligibleCard
	for i := range boards {
		page := &boards[i]
		doneCol := DoneColumnID(page)
		cards, err := s.ListCardsForPage(page.ID)
		if err != nil {
			return nil, err
		}
		boardName := page.Title
		if boardName == "" {
			boardName = "Untitled Board"
		}
		for _, c := range cards {
			if c.ParentID != nil || c.ColumnID == doneCol {
				continue
			}
			colName := "Unknown"
			for _, col := range page.Columns {
				if col.ID == c.ColumnID {
					colName = col.Title
					break
				}
			}
			results = append(results, EligibleCard{
				Card:       c,
				BoardName:  boardName,
				ColumnName: colName,
				PageID:     page.ID,
			})
		}
	}
	return results, nil
}

// UnscheduledCards filters EligibleCards down to cards with no time
// block at all.
func (s *Store) UnscheduledCards() ([]EligibleCard, error) {
	eligible, err := s.EligibleCards()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT DISTINCT card_id FROM time_blocks`)
	if err != nil {
		return nil, fmt.Errorf("scheduled card ids: %w", err)
	}
	defer rows.Close()

	scheduled := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		scheduled[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []EligibleCard
	for _, ec := range eligible {
		if !scheduled[ec.Card.ID] {
			out = append(out, ec)
		}
	}
	return out, nil
}

func (s *Store) queryCards(query string, args ...any) ([]KanbanCard, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []KanbanCard
	for rows.Next() {
		var c KanbanCard
		var parentID sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.PageID, &c.ColumnID, &parentID, &c.Title,
			&c.Description, &c.Order, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			c.ParentID = &parentID.String
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
