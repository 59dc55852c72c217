package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS pages (
		id              TEXT PRIMARY KEY,
		title           TEXT NOT NULL DEFAULT '',
		parent_id       TEXT,
		page_type       TEXT NOT NULL DEFAULT 'document',
		icon            TEXT NOT NULL DEFAULT '',
		content         TEXT NOT NULL DEFAULT '[]',
		columns         TEXT NOT NULL DEFAULT '[]',
		done_column_id  TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_parent ON pages(parent_id);

	CREATE TABLE IF NOT EXISTS kanban_cards (
		id          TEXT PRIMARY KEY,
		page_id     TEXT NOT NULL,
		column_id   TEXT NOT NULL,
		parent_id   TEXT,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		ord         INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cards_page   ON kanban_cards(page_id);
	CREATE INDEX IF NOT EXISTS idx_cards_column ON kanban_cards(column_id);

	CREATE TABLE IF NOT EXISTS time_blocks (
		id               TEXT PRIMARY KEY,
		card_id          TEXT NOT NULL DEFAULT '',
		page_id          TEXT NOT NULL DEFAULT '',
		kind             TEXT NOT NULL DEFAULT 'task',
		date             TEXT NOT NULL,
		start_hour       INTEGER NOT NULL,
		start_minute     INTEGER NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL,
		status           TEXT NOT NULL DEFAULT 'scheduled',
		ord              INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blocks_slot ON time_blocks(date, start_hour);
	CREATE INDEX IF NOT EXISTS idx_blocks_card ON time_blocks(card_id);

	CREATE TABLE IF NOT EXISTS focus_session (
		id                   INTEGER PRIMARY KEY CHECK (id = 1),
		card_id              TEXT NOT NULL,
		card_title           TEXT NOT NULL,
		board_name           TEXT NOT NULL,
		page_id              TEXT NOT NULL,
		time_block_id        TEXT NOT NULL DEFAULT '',
		total_seconds        INTEGER NOT NULL,
		started_at_ms        INTEGER NOT NULL DEFAULT 0,
		elapsed_before_pause INTEGER NOT NULL DEFAULT 0,
		is_running           INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS session_logs (
		id         TEXT PRIMARY KEY,
		card_id    TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_session_logs_card ON session_logs(card_id);

	CREATE TABLE IF NOT EXISTS reminder_log (
		block_id    TEXT PRIMARY KEY,
		notified_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deletions (
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		deleted_at  TEXT NOT NULL,
		PRIMARY KEY (entity_type, entity_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('work_minutes',              '60'),
		('break_minutes',             '10'),
		('audio_enabled',             'true'),
		('day_start_hour',            '8'),
		('day_end_hour',              '18'),
		('duration_presets',          '25,40,60'),
		('reminder_interval_minutes', '5');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/focusdeck/focusdeck.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focusdeck", "focusdeck.db"), nil
}
