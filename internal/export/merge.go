package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

type ImportResult struct {
	PagesAdded       int
	PagesUpdated     int
	CardsAdded       int
	CardsUpdated     int
	BlocksAdded      int
	BlocksUpdated    int
	DeletionsApplied int
	SettingsImported bool
}

// ReadFile imports a workspace export and merges it into the store.
func ReadFile(s *store.Store, path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	return Merge(s, &ws)
}

// Merge applies a workspace snapshot last-write-wins. An entity is
// taken from the import only when its updatedAt is newer than the
// local copy and no local tombstone postdates it. Import tombstones
// delete local entities updated before the deletion and are retained
// so later merges stay consistent.
func Merge(s *store.Store, ws *Workspace) (*ImportResult, error) {
	if ws.Version != Version {
		return nil, fmt.Errorf("unsupported export version: %d", ws.Version)
	}

	res := &ImportResult{}

	localDeletions, err := s.ListDeletions()
	if err != nil {
		return nil, err
	}
	deletedAt := make(map[string]time.Time, len(localDeletions))
	for _, d := range localDeletions {
		deletedAt[d.EntityType+":"+d.EntityID] = d.DeletedAt
	}
	tombstoned := func(entityType, id string, updatedAt time.Time) bool {
		at, ok := deletedAt[entityType+":"+id]
		return ok && at.After(updatedAt)
	}

	for _, jp := range ws.Pages {
		if tombstoned("page", jp.ID, jp.UpdatedAt) {
			continue
		}
		local, err := s.GetPage(jp.ID)
		if err != nil {
			return nil, err
		}
		if local != nil && !jp.UpdatedAt.After(local.UpdatedAt) {
			continue
		}
		content := string(jp.Content)
		if content == "" {
			content = "[]"
		}
		page := &store.Page{
			ID: jp.ID, Title: jp.Title, ParentID: jp.ParentID,
			PageType: store.PageType(jp.PageType), Icon: jp.Icon, Content: content,
			Columns: jp.Columns, DoneColumnID: jp.DoneColumnID,
			CreatedAt: jp.CreatedAt, UpdatedAt: jp.UpdatedAt,
		}
		if err := s.PutPage(page); err != nil {
			return nil, err
		}
		if local == nil {
			res.PagesAdded++
		} else {
			res.PagesUpdated++
		}
	}

	for _, jc := range ws.KanbanCards {
		if tombstoned("kanbanCard", jc.ID, jc.UpdatedAt) {
			continue
		}
		local, err := s.GetCard(jc.ID)
		if err != nil {
			return nil, err
		}
		if local != nil && !jc.UpdatedAt.After(local.UpdatedAt) {
			continue
		}
		card := &store.KanbanCard{
			ID: jc.ID, PageID: jc.PageID, ColumnID: jc.ColumnID, ParentID: jc.ParentID,
			Title: jc.Title, Description: jc.Description, Order: jc.Order,
			CreatedAt: jc.CreatedAt, UpdatedAt: jc.UpdatedAt,
		}
		if err := s.PutCard(card); err != nil {
			return nil, err
		}
		if local == nil {
			res.CardsAdded++
		} else {
			res.CardsUpdated++
		}
	}

	for _, jb := range ws.TimeBlocks {
		if tombstoned("timeBlock", jb.ID, jb.UpdatedAt) {
			continue
		}
		local, err := s.GetBlock(jb.ID)
		if err != nil {
			return nil, err
		}
		if local != nil && !jb.UpdatedAt.After(local.UpdatedAt) {
			continue
		}
		kind := store.BlockKind(jb.Kind)
		if kind == "" {
			kind = store.KindTask
		}
		block := &store.TimeBlock{
			ID: jb.ID, CardID: jb.CardID, PageID: jb.PageID, Kind: kind,
			Date: jb.Date, StartHour: jb.StartHour, StartMinute: jb.StartMinute,
			DurationMinutes: jb.DurationMinutes, Status: store.BlockStatus(jb.Status),
			Order: jb.Order, CreatedAt: jb.CreatedAt, UpdatedAt: jb.UpdatedAt,
		}
		if err := s.PutBlock(block); err != nil {
			return nil, err
		}
		if local == nil {
			res.BlocksAdded++
		} else {
			res.BlocksUpdated++
		}
	}

	for _, jd := range ws.Deletions {
		applied, err := applyDeletion(s, jd)
		if err != nil {
			return nil, err
		}
		if applied {
			res.DeletionsApplied++
		}
		// Keep the import tombstone (with its original timestamp) so
		// future merges suppress stale copies the same way.
		if err := s.PutDeletion(store.Deletion{
			EntityType: jd.EntityType, EntityID: jd.EntityID, DeletedAt: jd.DeletedAt,
		}); err != nil {
			return nil, err
		}
	}

	if ws.FocusSettings != nil {
		fs := store.FocusSettings{
			WorkMinutes:             ws.FocusSettings.WorkMinutes,
			BreakMinutes:            ws.FocusSettings.BreakMinutes,
			AudioEnabled:            ws.FocusSettings.AudioEnabled,
			DayStartHour:            ws.FocusSettings.DayStartHour,
			DayEndHour:              ws.FocusSettings.DayEndHour,
			DurationPresets:         ws.FocusSettings.DurationPresets,
			ReminderIntervalMinutes: ws.FocusSettings.ReminderIntervalMinutes,
		}
		if err := s.PutFocusSettings(fs); err != nil {
			return nil, err
		}
		res.SettingsImported = true
	}

	return res, nil
}

func applyDeletion(s *store.Store, jd jsonDeletion) (bool, error) {
	switch jd.EntityType {
	case "page":
		local, err := s.GetPage(jd.EntityID)
		if err != nil {
			return false, err
		}
		if local == nil || local.UpdatedAt.After(jd.DeletedAt) {
			return false, nil
		}
		return true, s.DeletePage(jd.EntityID)
	case "kanbanCard":
		local, err := s.GetCard(jd.EntityID)
		if err != nil {
			return false, err
		}
		if local == nil || local.UpdatedAt.After(jd.DeletedAt) {
			return false, nil
		}
		return true, s.DeleteCard(jd.EntityID)
	case "timeBlock":
		local, err := s.GetBlock(jd.EntityID)
		if err != nil {
			return false, err
		}
		if local == nil || local.UpdatedAt.After(jd.DeletedAt) {
			return false, nil
		}
		return true, s.DeleteBlock(jd.EntityID)
	}
	return false, nil
}
