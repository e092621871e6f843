package session

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cmms/internal/models"
)

func testUsers(t *testing.T) []models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return []models.User{
		{ID: "u1", Name: "Alice Admin", Initials: "AA", Role: models.RoleAdmin, PasswordHash: string(hash)},
		{ID: "u2", Name: "Bob Builder", Initials: "BB", Role: models.RoleEmployee, PasswordHash: string(hash)},
	}
}

func TestLoginByNameAndInitials(t *testing.T) {
	m := NewManager(time.Hour)
	users := testUsers(t)

	tests := []string{"Alice Admin", "alice admin", "AA", "aa", "  AA  "}
	for _, username := range tests {
		s, err := m.Login(users, username, "secret")
		if err != nil {
			t.Errorf("Login(%q) failed: %v", username, err)
			continue
		}
		if s.User.ID != "u1" {
			t.Errorf("Login(%q) matched wrong user: %s", username, s.User.ID)
		}
		if s.View != DefaultView || s.Department != AllDepartments {
			t.Errorf("Fresh session not on defaults: view=%s dept=%s", s.View, s.Department)
		}
	}
}

func TestLoginErrorsDistinguishUserFromPassword(t *testing.T) {
	m := NewManager(time.Hour)
	users := testUsers(t)

	if _, err := m.Login(users, "Nobody", "secret"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if _, err := m.Login(users, "Alice Admin", "wrong"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("Expected ErrIncorrectPassword, got %v", err)
	}
}

func TestViewHistoryStack(t *testing.T) {
	m := NewManager(time.Hour)
	s, err := m.Login(testUsers(t), "AA", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	m.SetView(s.Token, "checklists")
	m.SetView(s.Token, "requests")

	// Re-activating the current view must not grow the stack.
	m.SetView(s.Token, "requests")

	view, err := m.Back(s.Token)
	if err != nil || view != "checklists" {
		t.Errorf("Back 1: got %q, %v", view, err)
	}
	view, _ = m.Back(s.Token)
	if view != DefaultView {
		t.Errorf("Back 2: got %q, want %q", view, DefaultView)
	}
	// Exhausted stack keeps falling back to the default view.
	view, _ = m.Back(s.Token)
	if view != DefaultView {
		t.Errorf("Back on empty stack: got %q", view)
	}
}

func TestSetDepartment(t *testing.T) {
	m := NewManager(time.Hour)
	s, _ := m.Login(testUsers(t), "AA", "secret")

	m.SetDepartment(s.Token, "Weld Shop")
	got, _ := m.Get(s.Token)
	if got.Department != "Weld Shop" {
		t.Errorf("Department = %q", got.Department)
	}

	m.SetDepartment(s.Token, "")
	got, _ = m.Get(s.Token)
	if got.Department != AllDepartments {
		t.Errorf("Empty department should reset to sentinel: %q", got.Department)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	m := NewManager(time.Hour)
	s, _ := m.Login(testUsers(t), "AA", "secret")

	m.Logout(s.Token)
	if _, err := m.Get(s.Token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession after logout, got %v", err)
	}
}

func TestExpiredSessionDropped(t *testing.T) {
	m := NewManager(time.Millisecond)
	s, _ := m.Login(testUsers(t), "AA", "secret")

	time.Sleep(5 * time.Millisecond)
	if _, err := m.Get(s.Token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession for expired token, got %v", err)
	}
}

func TestRefreshUserUpdatesLiveSessions(t *testing.T) {
	m := NewManager(time.Hour)
	users := testUsers(t)
	s, _ := m.Login(users, "AA", "secret")

	updated := users[0]
	updated.Department = "Final Assembly"
	m.RefreshUser(updated)

	got, _ := m.Get(s.Token)
	if got.User.Department != "Final Assembly" {
		t.Errorf("Session user not refreshed: %+v", got.User)
	}
}

func TestDropUserEvictsSessions(t *testing.T) {
	m := NewManager(time.Hour)
	s, _ := m.Login(testUsers(t), "BB", "secret")

	m.DropUser("u2")
	if _, err := m.Get(s.Token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected eviction after DropUser, got %v", err)
	}
}
