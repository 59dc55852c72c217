package store

import (
	"database/sql"
	"fmt"
)

// SaveSession persists the single active session snapshot, replacing
// any previous one.
func (s *Store) SaveSession(sess *FocusSession) error {
	running := 0
	if sess.IsRunning {
		running = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO focus_session (id, card_id, card_title, board_name, page_id, time_block_id,
			total_seconds, started_at_ms, elapsed_before_pause, is_running)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			card_id = excluded.card_id, card_title = excluded.card_title,
			board_name = excluded.board_name, page_id = excluded.page_id,
			time_block_id = excluded.time_block_id, total_seconds = excluded.total_seconds,
			started_at_ms = excluded.started_at_ms,
			elapsed_before_pause = excluded.elapsed_before_pause,
			is_running = excluded.is_running`,
		sess.CardID, sess.CardTitle, sess.BoardName, sess.PageID, sess.TimeBlockID,
		sess.TotalSeconds, sess.StartedAtMS, sess.ElapsedBeforePause, running,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns nil, nil when no session is persisted.
func (s *Store) LoadSession() (*FocusSession, error) {
	sess := &FocusSession{}
	var running int
	err := s.db.QueryRow(
		`SELECT card_id, card_title, board_name, page_id, time_block_id,
			total_seconds, started_at_ms, elapsed_before_pause, is_running
		 FROM focus_session WHERE id = 1`,
	).Scan(&sess.CardID, &sess.CardTitle, &sess.BoardName, &sess.PageID, &sess.TimeBlockID,
		&sess.TotalSeconds, &sess.StartedAtMS, &sess.ElapsedBeforePause, &running)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess.IsRunning = running == 1
	return sess, nil
}

func (s *Store) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM focus_session WHERE id = 1`)
	return err
}
