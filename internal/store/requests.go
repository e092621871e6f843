package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"cmms/internal/models"
)

// LoadRequests returns every maintenance request.
func (s *Store) LoadRequests() ([]models.MaintenanceRequest, error) {
	rows, err := s.db.Query(`SELECT id, title, description, department, priority, status,
		requested_by, requested_by_name, assigned_to, assigned_to_name, image_urls,
		created_at, updated_at FROM maintenance_requests`)
	if err != nil {
		return []models.MaintenanceRequest{}, &LoadError{Collection: "maintenance_requests", Err: err}
	}
	defer rows.Close()

	reqs := []models.MaintenanceRequest{}
	for rows.Next() {
		var r models.MaintenanceRequest
		var createdAt string
		var requestedBy, requestedByName, assignedTo, assignedToName, imageURLs, updatedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Department, &r.Priority,
			&r.Status, &requestedBy, &requestedByName, &assignedTo, &assignedToName,
			&imageURLs, &createdAt, &updatedAt); err != nil {
			return []models.MaintenanceRequest{}, &LoadError{Collection: "maintenance_requests", Err: err}
		}
		r.RequestedBy = requestedBy.String
		r.RequestedByName = requestedByName.String
		if assignedTo.Valid && assignedTo.String != "" {
			r.AssignedTo = &models.Assignee{ID: assignedTo.String, Name: assignedToName.String}
		}
		if imageURLs.Valid && imageURLs.String != "" {
			if err := json.Unmarshal([]byte(imageURLs.String), &r.ImageURLs); err != nil {
				r.ImageURLs = nil
			}
		}
		if t, err := parseTime(createdAt); err == nil {
			r.CreatedAt = t
		}
		r.UpdatedAt = parseTimePtr(updatedAt)
		reqs = append(reqs, r)
	}
	if err := rows.Err(); err != nil {
		return []models.MaintenanceRequest{}, &LoadError{Collection: "maintenance_requests", Err: err}
	}
	return reqs, nil
}

// SaveRequest upserts a maintenance request.
func (s *Store) SaveRequest(r *models.MaintenanceRequest) error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(r.Department) == "" {
		return &ValidationError{Field: "department", Message: "is required"}
	}
	r.ID = ensureID(r.ID)
	if r.Priority == "" {
		r.Priority = "medium"
	}
	if r.Status == "" {
		r.Status = models.RequestOpen
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	urls := r.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	urlsJSON, err := json.Marshal(urls)
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "maintenance_requests", Err: err}
	}

	var assignedTo, assignedToName any
	if r.AssignedTo != nil {
		assignedTo, assignedToName = r.AssignedTo.ID, r.AssignedTo.Name
	}

	_, err = s.db.Exec(`INSERT INTO maintenance_requests
		(id, title, description, department, priority, status,
		 requested_by, requested_by_name, assigned_to, assigned_to_name,
		 image_urls, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, description=excluded.description,
			department=excluded.department, priority=excluded.priority,
			status=excluded.status, assigned_to=excluded.assigned_to,
			assigned_to_name=excluded.assigned_to_name,
			image_urls=excluded.image_urls, updated_at=excluded.updated_at`,
		r.ID, r.Title, r.Description, r.Department, r.Priority, r.Status,
		nullIfEmpty(r.RequestedBy), nullIfEmpty(r.RequestedByName),
		assignedTo, assignedToName, string(urlsJSON),
		fmtTime(r.CreatedAt), fmtTimePtr(r.UpdatedAt))
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "maintenance_requests", Err: err}
	}
	return nil
}

// DeleteRequest removes a maintenance request by id.
func (s *Store) DeleteRequest(id string) error {
	if _, err := s.db.Exec("DELETE FROM maintenance_requests WHERE id = ?", id); err != nil {
		return &PersistenceError{Op: "delete", Collection: "maintenance_requests", Err: err}
	}
	return nil
}
