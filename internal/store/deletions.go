package store

import (
	"fmt"
	"time"
)

// RecordDeletion writes a tombstone so export/import merges cannot
// resurrect a deleted entity.
func (s *Store) RecordDeletion(entityType, entityID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO deletions (entity_type, entity_id, deleted_at) VALUES (?, ?, ?)
		 ON CONFLICT(entity_type, entity_id) DO UPDATE SET deleted_at = excluded.deleted_at`,
		entityType, entityID, now,
	)
	if err != nil {
		return fmt.Errorf("record deletion %s:%s: %w", entityType, entityID, err)
	}
	return nil
}

func (s *Store) PutDeletion(d Deletion) error {
	_, err := s.db.Exec(
		`INSERT INTO deletions (entity_type, entity_id, deleted_at) VALUES (?, ?, ?)
		 ON CONFLICT(entity_type, entity_id) DO UPDATE SET deleted_at = excluded.deleted_at`,
		d.EntityType, d.EntityID, d.DeletedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) ListDeletions() ([]Deletion, error) {
	rows, err := s.db.Query(`SELECT entity_type, entity_id, deleted_at FROM deletions`)
	if err != nil {
		return nil, fmt.Errorf("list deletions: %w", err)
	}
	defer rows.Close()

	var deletions []Deletion
	for rows.Next() {
		var d Deletion
		var deletedAt string
		if err := rows.Scan(&d.EntityType, &d.EntityID, &deletedAt); err != nil {
			return nil, err
		}
		d.DeletedAt, _ = time.Parse(time.RFC3339, deletedAt)
		deletions = append(deletions, d)
	}
	return deletions, rows.Err()
}
