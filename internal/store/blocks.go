package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const blockColumns = `id, card_id, page_id, kind, date, start_hour, start_minute, duration_minutes, status, ord, created_at, updated_at`

// InsertBlock persists a new block. ID and timestamps are assigned
// here; validation (capacity, duration) belongs to the scheduler.
func (s *Store) InsertBlock(b *TimeBlock) (*TimeBlock, error) {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	nowStr := now.Format(time.RFC3339)

	_, err := s.db.Exec(
		`INSERT INTO time_blocks (`+blockColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CardID, b.PageID, string(b.Kind), b.Date, b.StartHour, b.StartMinute,
		b.DurationMinutes, string(b.Status), b.Order, nowStr, nowStr,
	)
	if err != nil {
		return nil, fmt.Errorf("insert time block: %w", err)
	}
	return b, nil
}

// GetBlock returns nil, nil when the block does not exist.
func (s *Store) GetBlock(id string) (*TimeBlock, error) {
	blocks, err := s.queryBlocks(`SELECT `+blockColumns+` FROM time_blocks WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get time block %s: %w", id, err)
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	return &blocks[0], nil
}

func (s *Store) ListBlocksForDate(date string) ([]TimeBlock, error) {
	return s.queryBlocks(
		`SELECT `+blockColumns+` FROM time_blocks WHERE date = ? ORDER BY start_hour, ord`, date,
	)
}

func (s *Store) ListBlocksForSlot(date string, hour int) ([]TimeBlock, error) {
	return s.queryBlocks(
		`SELECT `+blockColumns+` FROM time_blocks WHERE date = ? AND start_hour = ? ORDER BY ord`,
		date, hour,
	)
}

// ListBlocksForRange returns blocks with from <= date < to.
func (s *Store) ListBlocksForRange(from, to string) ([]TimeBlock, error) {
	return s.queryBlocks(
		`SELECT `+blockColumns+` FROM time_blocks WHERE date >= ? AND date < ? ORDER BY date, start_hour, ord`,
		from, to,
	)
}

func (s *Store) ListAllBlocks() ([]TimeBlock, error) {
	return s.queryBlocks(`SELECT ` + blockColumns + ` FROM time_blocks ORDER BY date, start_hour, ord`)
}

func (s *Store) ListBlocksForCard(cardID string) ([]TimeBlock, error) {
	return s.queryBlocks(
		`SELECT `+blockColumns+` FROM time_blocks WHERE card_id = ? ORDER BY date, start_hour, ord`, cardID,
	)
}

func (s *Store) UpdateBlockStatus(id string, status BlockStatus) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE time_blocks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now, id,
	)
	return err
}

func (s *Store) UpdateBlockOrder(id string, order int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE time_blocks SET ord = ?, updated_at = ? WHERE id = ?`,
		order, now, id,
	)
	return err
}

// UpdateBlockSlot moves the block to another hour. The start-minute
// hint is dropped: it only describes a gap in the hour the block was
// created in.
func (s *Store) UpdateBlockSlot(id string, hour, order int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE time_blocks SET start_hour = ?, ord = ?, start_minute = 0, updated_at = ? WHERE id = ?`,
		hour, order, now, id,
	)
	return err
}

func (s *Store) PutBlock(b *TimeBlock) error {
	_, err := s.db.Exec(
		`INSERT INTO time_blocks (`+blockColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			card_id = excluded.card_id, page_id = excluded.page_id,
			kind = excluded.kind, date = excluded.date,
			start_hour = excluded.start_hour, start_minute = excluded.start_minute,
			duration_minutes = excluded.duration_minutes, status = excluded.status,
			ord = excluded.ord, updated_at = excluded.updated_at`,
		b.ID, b.CardID, b.PageID, string(b.Kind), b.Date, b.StartHour, b.StartMinute,
		b.DurationMinutes, string(b.Status), b.Order,
		b.CreatedAt.UTC().Format(time.RFC3339), b.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) DeleteBlock(id string) error {
	if _, err := s.db.Exec(`DELETE FROM time_blocks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete time block %s: %w", id, err)
	}
	return s.RecordDeletion("timeBlock", id)
}

// DeleteBlocksForCard removes every block referencing the card.
// Used as cascade cleanup when a card is deleted.
func (s *Store) DeleteBlocksForCard(cardID string) error {
	blocks, err := s.ListBlocksForCard(cardID)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if err := s.DeleteBlock(b.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) queryBlocks(query string, args ...any) ([]TimeBlock, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time blocks: %w", err)
	}
	defer rows.Close()

	var blocks []TimeBlock
	for rows.Next() {
		var b TimeBlock
		var kind, status, createdAt, updatedAt string
		if err := rows.Scan(&b.ID, &b.CardID, &b.PageID, &kind, &b.Date, &b.StartHour,
			&b.StartMinute, &b.DurationMinutes, &status, &b.Order, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		b.Kind = BlockKind(kind)
		b.Status = BlockStatus(status)
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
