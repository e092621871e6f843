package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"cmms/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := New(db)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return s
}

func TestUserRoundTrip(t *testing.T) {
	s := setupStore(t)

	last := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	u := models.User{
		Name:         "Dana Fields",
		Initials:     "DF",
		Role:         models.RoleAuthorized,
		Department:   "Powder Coat",
		Permissions:  []string{"create_checklists", "assign_checklists"},
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		LastLogin:    &last,
	}
	if err := s.SaveUser(&u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if u.ID == "" {
		t.Fatal("SaveUser did not mint an id")
	}

	users, err := s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("Expected 1 user, got %d", len(users))
	}
	got := users[0]
	if got.Name != u.Name || got.Initials != u.Initials || got.Role != u.Role || got.Department != u.Department {
		t.Errorf("Round-trip mismatch: %+v", got)
	}
	if len(got.Permissions) != 2 || got.Permissions[0] != "create_checklists" {
		t.Errorf("Permissions not preserved: %v", got.Permissions)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(last) {
		t.Errorf("LastLogin not preserved: %v", got.LastLogin)
	}
}

func TestSaveUserValidation(t *testing.T) {
	s := setupStore(t)

	err := s.SaveUser(&models.User{Initials: "XX", Role: models.RoleEmployee})
	if err == nil {
		t.Fatal("Expected validation error for missing name")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if ve.Field != "name" {
		t.Errorf("Expected name field error, got %q", ve.Field)
	}
}

func TestChecklistRoundTripItems(t *testing.T) {
	s := setupStore(t)

	at := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	c := models.Checklist{
		Title:      "Press brake startup",
		Department: "Cut Shop",
		Frequency:  "daily",
		Status:     models.ChecklistInProgress,
		Items: []models.ChecklistItem{
			{ID: "1", Description: "Check hydraulic pressure", Completed: true, CompletedBy: "DF", CompletedAt: &at},
			{ID: "2", Description: "Verify guards", NonCompliant: true, NonComplianceReason: "Left guard cracked"},
			{ID: "3", Description: "Grease rails"},
		},
		AssignedTo: &models.Assignee{ID: "u1", Name: "Dana Fields"},
		CreatedAt:  time.Now(),
	}
	if err := s.SaveChecklist(&c); err != nil {
		t.Fatalf("SaveChecklist: %v", err)
	}

	lists, err := s.LoadChecklists()
	if err != nil {
		t.Fatalf("LoadChecklists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("Expected 1 checklist, got %d", len(lists))
	}
	got := lists[0]
	if len(got.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(got.Items))
	}
	for i, want := range c.Items {
		item := got.Items[i]
		if item.ID != want.ID || item.Description != want.Description ||
			item.Completed != want.Completed || item.NonCompliant != want.NonCompliant ||
			item.NonComplianceReason != want.NonComplianceReason || item.CompletedBy != want.CompletedBy {
			t.Errorf("Item %d mismatch: got %+v want %+v", i, item, want)
		}
	}
	if got.Items[0].CompletedAt == nil || !got.Items[0].CompletedAt.Equal(at) {
		t.Errorf("Item completion time not preserved: %v", got.Items[0].CompletedAt)
	}
	if got.AssignedTo == nil || got.AssignedTo.Name != "Dana Fields" {
		t.Errorf("Assignee not preserved: %+v", got.AssignedTo)
	}
}

func TestChecklistUnassignedLoadsNil(t *testing.T) {
	s := setupStore(t)

	c := models.Checklist{Title: "Forklift walkaround", Department: "Maintenance", CreatedAt: time.Now()}
	if err := s.SaveChecklist(&c); err != nil {
		t.Fatalf("SaveChecklist: %v", err)
	}
	lists, err := s.LoadChecklists()
	if err != nil {
		t.Fatalf("LoadChecklists: %v", err)
	}
	if lists[0].AssignedTo != nil {
		t.Errorf("Expected nil assignee, got %+v", lists[0].AssignedTo)
	}
}

func TestLegacyStringItemsNormalized(t *testing.T) {
	s := setupStore(t)

	_, err := s.DB().Exec(`INSERT INTO checklists (id, title, department, frequency, status, items, created_at)
		VALUES ('cl-legacy', 'Old checklist', 'Weld Shop', 'weekly', 'pending', ?, ?)`,
		`["Sweep floor","Empty scrap bins"]`, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Seed legacy row: %v", err)
	}

	lists, err := s.LoadChecklists()
	if err != nil {
		t.Fatalf("LoadChecklists: %v", err)
	}
	got := lists[0]
	if len(got.Items) != 2 {
		t.Fatalf("Expected 2 normalized items, got %d", len(got.Items))
	}
	if got.Items[0].ID != "1" || got.Items[0].Description != "Sweep floor" {
		t.Errorf("Legacy item not normalized: %+v", got.Items[0])
	}
	if got.Items[1].ID != "2" || got.Items[1].Completed {
		t.Errorf("Legacy item not normalized: %+v", got.Items[1])
	}
}

func TestMessageThreadIDMinting(t *testing.T) {
	s := setupStore(t)

	m := models.Message{Subject: "Line 3 down", Content: "Conveyor jammed", From: "Bob Builder", To: []string{"Alice Admin"}}
	if err := s.SaveMessage(&m); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if m.ThreadID != m.ID {
		t.Errorf("New message should start its own thread: id=%s thread=%s", m.ID, m.ThreadID)
	}

	reply := models.Message{Subject: "Line 3 down", Content: "On my way", From: "Alice Admin", To: []string{"Bob Builder"}, ThreadID: m.ThreadID}
	if err := s.SaveMessage(&reply); err != nil {
		t.Fatalf("SaveMessage reply: %v", err)
	}
	if reply.ThreadID != m.ThreadID {
		t.Errorf("Reply changed thread id: %s", reply.ThreadID)
	}

	msgs, err := s.LoadMessages()
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
}

func TestRequestRoundTrip(t *testing.T) {
	s := setupStore(t)

	r := models.MaintenanceRequest{
		Title:       "Replace spindle bearing",
		Description: "Grinding noise at speed",
		Department:  "Final Assembly",
		Priority:    "high",
		Status:      models.RequestOpen,
		ImageURLs:   []string{"/files/1-bearing.jpg"},
		CreatedAt:   time.Now(),
	}
	if err := s.SaveRequest(&r); err != nil {
		t.Fatalf("SaveRequest: %v", err)
	}
	reqs, err := s.LoadRequests()
	if err != nil {
		t.Fatalf("LoadRequests: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Title != r.Title || reqs[0].Priority != "high" {
		t.Fatalf("Round-trip mismatch: %+v", reqs)
	}
	if len(reqs[0].ImageURLs) != 1 || reqs[0].ImageURLs[0] != "/files/1-bearing.jpg" {
		t.Errorf("Image URLs not preserved: %v", reqs[0].ImageURLs)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	s := setupStore(t)

	c := models.Checklist{Title: "Doomed", Department: "Quality Control", CreatedAt: time.Now()}
	if err := s.SaveChecklist(&c); err != nil {
		t.Fatalf("SaveChecklist: %v", err)
	}
	if err := s.DeleteChecklist(c.ID); err != nil {
		t.Fatalf("DeleteChecklist: %v", err)
	}
	lists, err := s.LoadChecklists()
	if err != nil {
		t.Fatalf("LoadChecklists: %v", err)
	}
	if len(lists) != 0 {
		t.Errorf("Expected no checklists after delete, got %d", len(lists))
	}
}

func TestSeedCreatesAdminOnce(t *testing.T) {
	s := setupStore(t)

	s.Seed()
	s.Seed()
	users, err := s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	admins := 0
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("Expected exactly 1 seeded admin, got %d", admins)
	}
}
