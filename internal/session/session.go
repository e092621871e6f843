// Package session holds per-client session and navigation state: the
// authenticated user, the active view, the selected department filter, and
// the view-history stack. Sessions live only in memory.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cmms/internal/models"
)

const (
	// DefaultView is the landing view every session starts on and falls
	// back to.
	DefaultView = "dashboard"
	// AllDepartments is the department filter's bypass sentinel.
	AllDepartments = "All"
)

var (
	// ErrUserNotFound means no user matched the login name.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword means the user matched but the password did
	// not. Distinct from ErrUserNotFound so the caller can say which.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrNoSession means the token is unknown or expired.
	ErrNoSession = errors.New("no session")
)

// Session is a snapshot of one client's session state.
type Session struct {
	Token      string        `json:"-"`
	User       models.User   `json:"user"`
	View       string        `json:"view"`
	Department string        `json:"department"`
	History    []string      `json:"-"`
	ExpiresAt  time.Time     `json:"-"`
}

type live struct {
	sess Session
}

// Manager owns the session table.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*live
}

// NewManager creates a session manager; sessions expire after ttl.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{ttl: ttl, sessions: make(map[string]*live)}
}

// Login matches username against each user's display name or initials,
// case-insensitive, then verifies the password against the user's bcrypt
// hash. A matched user with a wrong password reports ErrIncorrectPassword,
// never ErrUserNotFound.
func (m *Manager) Login(users []models.User, username, password string) (Session, error) {
	var match *models.User
	want := strings.ToLower(strings.TrimSpace(username))
	for i := range users {
		if strings.ToLower(users[i].Name) == want || strings.ToLower(users[i].Initials) == want {
			match = &users[i]
			break
		}
	}
	if match == nil {
		return Session{}, ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(match.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrIncorrectPassword
	}

	s := Session{
		Token:      generateToken(),
		User:       *match,
		View:       DefaultView,
		Department: AllDepartments,
		ExpiresAt:  time.Now().Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[s.Token] = &live{sess: s}
	m.mu.Unlock()
	return s, nil
}

// Get returns a snapshot of the session for the token. Expired sessions are
// dropped on access.
func (m *Manager) Get(token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrNoSession
	}
	if time.Now().After(l.sess.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, ErrNoSession
	}
	out := l.sess
	out.History = append([]string(nil), l.sess.History...)
	return out, nil
}

// Logout drops the session; the next login starts fresh on the default
// view with the department filter reset.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// SetView activates a view, pushing the previous one onto the history
// stack. Re-activating the current view is a no-op.
func (m *Manager) SetView(token, view string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.sessions[token]
	if !ok {
		return ErrNoSession
	}
	if view == l.sess.View {
		return nil
	}
	l.sess.History = append(l.sess.History, l.sess.View)
	l.sess.View = view
	return nil
}

// Back pops the history stack and returns the now-active view, falling
// back to the default view when the stack is exhausted.
func (m *Manager) Back(token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.sessions[token]
	if !ok {
		return "", ErrNoSession
	}
	if n := len(l.sess.History); n > 0 {
		l.sess.View = l.sess.History[n-1]
		l.sess.History = l.sess.History[:n-1]
	} else {
		l.sess.View = DefaultView
	}
	return l.sess.View, nil
}

// SetDepartment selects the department filter for the session.
func (m *Manager) SetDepartment(token, department string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.sessions[token]
	if !ok {
		return ErrNoSession
	}
	if department == "" {
		department = AllDepartments
	}
	l.sess.Department = department
	return nil
}

// RefreshUser updates the cached user on every session belonging to the
// given user id, keeping role changes visible without relogin.
func (m *Manager) RefreshUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.sessions {
		if l.sess.User.ID == u.ID {
			l.sess.User = u
		}
	}
}

// DropUser evicts every session belonging to a deleted user.
func (m *Manager) DropUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, l := range m.sessions {
		if l.sess.User.ID == userID {
			delete(m.sessions, tok)
		}
	}
}

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
