package store

import (
	"database/sql"
	"fmt"
)

// LastNotified returns the epoch-ms timestamp the block was last
// reminded at, or 0 if never.
func (s *Store) LastNotified(blockID string) (int64, error) {
	var ts int64
	err := s.db.QueryRow(`SELECT notified_at FROM reminder_log WHERE block_id = ?`, blockID).Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("last notified %s: %w", blockID, err)
	}
	return ts, nil
}

func (s *Store) MarkNotified(blockID string, atMS int64) error {
	_, err := s.db.Exec(
		`INSERT INTO reminder_log (block_id, notified_at) VALUES (?, ?)
		 ON CONFLICT(block_id) DO UPDATE SET notified_at = excluded.notified_at`,
		blockID, atMS,
	)
	return err
}

// PruneReminderLog drops entries older than the cutoff. Keeps the log
// bounded; reminders only ever target the current hour.
func (s *Store) PruneReminderLog(beforeMS int64) error {
	_, err := s.db.Exec(`DELETE FROM reminder_log WHERE notified_at < ?`, beforeMS)
	return err
}
