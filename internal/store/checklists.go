package store

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"cmms/internal/models"
)

// decodeItems parses the JSON-encoded items column. Rows written by older
// clients hold a bare array of description strings; those are normalized
// into structured items so nothing above the gateway sees the loose shape.
func decodeItems(raw string) ([]models.ChecklistItem, error) {
	if strings.TrimSpace(raw) == "" {
		return []models.ChecklistItem{}, nil
	}
	var items []models.ChecklistItem
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		if items == nil {
			items = []models.ChecklistItem{}
		}
		return items, nil
	}
	var legacy []string
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return nil, err
	}
	items = make([]models.ChecklistItem, 0, len(legacy))
	for i, desc := range legacy {
		items = append(items, models.ChecklistItem{
			ID:          strconv.Itoa(i + 1),
			Description: desc,
		})
	}
	return items, nil
}

// LoadChecklists returns every checklist with items decoded.
func (s *Store) LoadChecklists() ([]models.Checklist, error) {
	rows, err := s.db.Query(`SELECT id, title, description, department, frequency, status,
		items, assigned_to, assigned_to_name, created_by, started_at, completed_at, created_at
		FROM checklists`)
	if err != nil {
		return []models.Checklist{}, &LoadError{Collection: "checklists", Err: err}
	}
	defer rows.Close()

	lists := []models.Checklist{}
	for rows.Next() {
		var c models.Checklist
		var items, createdAt string
		var assignedTo, assignedToName, createdBy, startedAt, completedAt sql.NullString
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Department, &c.Frequency,
			&c.Status, &items, &assignedTo, &assignedToName, &createdBy,
			&startedAt, &completedAt, &createdAt); err != nil {
			return []models.Checklist{}, &LoadError{Collection: "checklists", Err: err}
		}
		c.Items, err = decodeItems(items)
		if err != nil {
			return []models.Checklist{}, &LoadError{Collection: "checklists", Err: err}
		}
		if assignedTo.Valid && assignedTo.String != "" {
			c.AssignedTo = &models.Assignee{ID: assignedTo.String, Name: assignedToName.String}
		}
		c.CreatedBy = createdBy.String
		c.StartedAt = parseTimePtr(startedAt)
		c.CompletedAt = parseTimePtr(completedAt)
		if t, err := parseTime(createdAt); err == nil {
			c.CreatedAt = t
		}
		lists = append(lists, c)
	}
	if err := rows.Err(); err != nil {
		return []models.Checklist{}, &LoadError{Collection: "checklists", Err: err}
	}
	return lists, nil
}

// SaveChecklist upserts a checklist. Items are serialized to a JSON text
// column and must round-trip element-wise through LoadChecklists.
func (s *Store) SaveChecklist(c *models.Checklist) error {
	if strings.TrimSpace(c.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	c.Title = strings.TrimSpace(c.Title)
	c.ID = ensureID(c.ID)
	if c.Department == "" {
		c.Department = "General"
	}
	if c.Frequency == "" {
		c.Frequency = "daily"
	}
	if c.Status == "" {
		c.Status = models.ChecklistPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	items := c.Items
	if items == nil {
		items = []models.ChecklistItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "checklists", Err: err}
	}

	var assignedTo, assignedToName any
	if c.AssignedTo != nil {
		assignedTo, assignedToName = c.AssignedTo.ID, c.AssignedTo.Name
	}

	_, err = s.db.Exec(`INSERT INTO checklists
		(id, title, description, department, frequency, status, items,
		 assigned_to, assigned_to_name, created_by, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, description=excluded.description,
			department=excluded.department, frequency=excluded.frequency,
			status=excluded.status, items=excluded.items,
			assigned_to=excluded.assigned_to, assigned_to_name=excluded.assigned_to_name,
			started_at=excluded.started_at, completed_at=excluded.completed_at`,
		c.ID, c.Title, c.Description, c.Department, c.Frequency, c.Status,
		string(itemsJSON), assignedTo, assignedToName, nullIfEmpty(c.CreatedBy),
		fmtTimePtr(c.StartedAt), fmtTimePtr(c.CompletedAt), fmtTime(c.CreatedAt))
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "checklists", Err: err}
	}
	return nil
}

// DeleteChecklist removes a checklist by id.
func (s *Store) DeleteChecklist(id string) error {
	if _, err := s.db.Exec("DELETE FROM checklists WHERE id = ?", id); err != nil {
		return &PersistenceError{Op: "delete", Collection: "checklists", Err: err}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
