package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSessionLog records a note against the card. Empty content is
// the caller's problem; the store accepts whatever it is handed.
func (s *Store) CreateSessionLog(cardID, content string) (*SessionLog, error) {
	log := &SessionLog{
		ID:        uuid.NewString(),
		CardID:    cardID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO session_logs (id, card_id, content, created_at) VALUES (?, ?, ?, ?)`,
		log.ID, log.CardID, log.Content, log.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session log: %w", err)
	}
	return log, nil
}

// ListSessionLogsForCard returns the card's notes newest first.
func (s *Store) ListSessionLogsForCard(cardID string) ([]SessionLog, error) {
	rows, err := s.db.Query(
		`SELECT id, card_id, content, created_at FROM session_logs WHERE card_id = ? ORDER BY created_at DESC, rowid DESC`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session logs for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var logs []SessionLog
	for rows.Next() {
		var l SessionLog
		var created string
		if err := rows.Scan(&l.ID, &l.CardID, &l.Content, &created); err != nil {
			return nil, err
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, created)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteSessionLogsForCard removes every note attached to the card.
func (s *Store) DeleteSessionLogsForCard(cardID string) error {
	if _, err := s.db.Exec(`DELETE FROM session_logs WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("delete session logs for card %s: %w", cardID, err)
	}
	return nil
}
