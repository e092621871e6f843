// Package testutil provides shared fixtures for store, state and handler
// tests: an in-memory gateway, canned users, and authenticated requests.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"cmms/internal/models"
	"cmms/internal/store"
)

// SetupStore opens an in-memory SQLite gateway with the schema migrated.
func SetupStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := store.New(db)
	if err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}
	return s
}

// HashPassword bcrypts a password at the cheapest cost; test fixtures do not
// need production work factors.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

// AdminUser returns a persisted admin fixture with the password "admin-pass".
func AdminUser(t *testing.T, s *store.Store) models.User {
	t.Helper()
	u := models.User{
		Name:         "Alice Admin",
		Initials:     "AA",
		Role:         models.RoleAdmin,
		Department:   "Maintenance",
		PasswordHash: HashPassword(t, "admin-pass"),
		CreatedAt:    time.Now(),
	}
	if err := s.SaveUser(&u); err != nil {
		t.Fatalf("Failed to save admin fixture: %v", err)
	}
	return u
}

// EmployeeUser returns a persisted employee fixture with the password
// "employee-pass" and no permission grants.
func EmployeeUser(t *testing.T, s *store.Store) models.User {
	t.Helper()
	u := models.User{
		Name:         "Bob Builder",
		Initials:     "BB",
		Role:         models.RoleEmployee,
		Department:   "Weld Shop",
		PasswordHash: HashPassword(t, "employee-pass"),
		CreatedAt:    time.Now(),
	}
	if err := s.SaveUser(&u); err != nil {
		t.Fatalf("Failed to save employee fixture: %v", err)
	}
	return u
}

// AuthorizedUser returns a persisted authorized-role fixture with the
// password "authorized-pass".
func AuthorizedUser(t *testing.T, s *store.Store) models.User {
	t.Helper()
	u := models.User{
		Name:         "Carol Crew",
		Initials:     "CC",
		Role:         models.RoleAuthorized,
		Department:   "Final Assembly",
		PasswordHash: HashPassword(t, "authorized-pass"),
		CreatedAt:    time.Now(),
	}
	if err := s.SaveUser(&u); err != nil {
		t.Fatalf("Failed to save authorized fixture: %v", err)
	}
	return u
}

// Checklist returns an unsaved two-item checklist fixture.
func Checklist(title, department string) models.Checklist {
	return models.Checklist{
		Title:      title,
		Department: department,
		Frequency:  "daily",
		Status:     models.ChecklistPending,
		Items: []models.ChecklistItem{
			{ID: "1", Description: "Check oil level"},
			{ID: "2", Description: "Inspect belts"},
		},
		CreatedAt: time.Now(),
	}
}

// Request returns an unsaved maintenance request fixture.
func Request(title, department, priority string) models.MaintenanceRequest {
	return models.MaintenanceRequest{
		Title:       title,
		Description: "Fixture request",
		Department:  department,
		Priority:    priority,
		Status:      models.RequestOpen,
		CreatedAt:   time.Now(),
	}
}

// AuthedRequest builds an HTTP request carrying the session cookie.
func AuthedRequest(method, path string, body []byte, token string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "cmms_session", Value: token})
	}
	return r
}

// AuthedJSONRequest marshals body and builds an authenticated request.
func AuthedJSONRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	return AuthedRequest(method, path, data, token)
}

// AssertStatus checks the recorded HTTP status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeEnvelope unwraps the standard response envelope into v.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v. Body: %s", err, w.Body.String())
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("Failed to re-marshal data: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
}
