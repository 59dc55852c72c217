package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreatePage(title string, parentID *string, pageType PageType, columns []KanbanColumn) (*Page, error) {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	colJSON, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("marshal columns: %w", err)
	}
	if columns == nil {
		colJSON = []byte("[]")
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO pages (id, title, parent_id, page_type, columns, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, title, parentID, string(pageType), string(colJSON), nowStr, nowStr,
	)
	if err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	return s.GetPage(id)
}

// GetPage returns nil, nil when the page does not exist; stale ids are
// a benign condition for callers.
func (s *Store) GetPage(id string) (*Page, error) {
	row := s.db.QueryRow(
		`SELECT id, title, parent_id, page_type, icon, content, columns, done_column_id, created_at, updated_at
		 FROM pages WHERE id = ?`, id,
	)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) ListPages() ([]Page, error) {
	return s.queryPages(`SELECT id, title, parent_id, page_type, icon, content, columns, done_column_id, created_at, updated_at
		FROM pages ORDER BY title`)
}

// ListBoards returns kanban pages that have at least one column.
func (s *Store) ListBoards() ([]Page, error) {
	pages, err := s.queryPages(`SELECT id, title, parent_id, page_type, icon, content, columns, done_column_id, created_at, updated_at
		FROM pages WHERE page_type = 'kanban' ORDER BY title`)
	if err != nil {
		return nil, err
	}
	var boards []Page
	for _, p := range pages {
		if len(p.Columns) > 0 {
			boards = append(boards, p)
		}
	}
	return boards, nil
}

func (s *Store) UpdatePageTitle(id, title string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`UPDATE pages SET title = ?, updated_at = ? WHERE id = ?`, title, now, id)
	return err
}

func (s *Store) PutPage(p *Page) error {
	colJSON, err := json.Marshal(p.Columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	if p.Columns == nil {
		colJSON = []byte("[]")
	}
	_, err = s.db.Exec(
		`INSERT INTO pages (id, title, parent_id, page_type, icon, content, columns, done_column_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, parent_id = excluded.parent_id,
			page_type = excluded.page_type, icon = excluded.icon,
			content = excluded.content, columns = excluded.columns,
			done_column_id = excluded.done_column_id, updated_at = excluded.updated_at`,
		p.ID, p.Title, p.ParentID, string(p.PageType), p.Icon, p.Content,
		string(colJSON), p.DoneColumnID,
		p.CreatedAt.UTC().Format(time.RFC3339), p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// DeletePage removes the page, its cards and their time blocks, and
// records tombstones so an import cannot resurrect them.
func (s *Store) DeletePage(id string) error {
	cards, err := s.ListCardsForPage(id)
	if err != nil {
		return err
	}
	for _, c := range cards {
		if err := s.DeleteCard(c.ID); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(`DELETE FROM pages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	return s.RecordDeletion("page", id)
}

// DoneColumnID resolves the column treated as "done" for a board:
// the explicit setting when present, else the right-most column.
func DoneColumnID(p *Page) string {
	if p.DoneColumnID != "" {
		return p.DoneColumnID
	}
	if len(p.Columns) == 0 {
		return ""
	}
	cols := make([]KanbanColumn, len(p.Columns))
	copy(cols, p.Columns)
	sort.Slice(cols, func(i, j int) bool { return cols[i].Order > cols[j].Order })
	return cols[0].ID
}

func scanPage(row *sql.Row) (*Page, error) {
	p := &Page{}
	var parentID sql.NullString
	var pageType, colJSON, createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Title, &parentID, &pageType, &p.Icon, &p.Content,
		&colJSON, &p.DoneColumnID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		p.ParentID = &parentID.String
	}
	p.PageType = PageType(pageType)
	if err := json.Unmarshal([]byte(colJSON), &p.Columns); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (s *Store) queryPages(query string, args ...any) ([]Page, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		var parentID sql.NullString
		var pageType, colJSON, createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Title, &parentID, &pageType, &p.Icon, &p.Content,
			&colJSON, &p.DoneColumnID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			p.ParentID = &parentID.String
		}
		p.PageType = PageType(pageType)
		if err := json.Unmarshal([]byte(colJSON), &p.Columns); err != nil {
			return nil, fmt.Errorf("unmarshal columns: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
