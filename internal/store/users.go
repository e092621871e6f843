package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"cmms/internal/models"
)

// LoadUsers returns every user. On a failed read it returns an empty slice
// together with a LoadError so the caller can degrade to offline mode.
func (s *Store) LoadUsers() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT id, name, initials, role, department, permissions,
		password_hash, created_at, last_login FROM app_users`)
	if err != nil {
		return []models.User{}, &LoadError{Collection: "app_users", Err: err}
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var perms, createdAt string
		var lastLogin sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Initials, &u.Role, &u.Department,
			&perms, &u.PasswordHash, &createdAt, &lastLogin); err != nil {
			return []models.User{}, &LoadError{Collection: "app_users", Err: err}
		}
		if err := json.Unmarshal([]byte(perms), &u.Permissions); err != nil {
			u.Permissions = nil
		}
		if t, err := parseTime(createdAt); err == nil {
			u.CreatedAt = t
		}
		u.LastLogin = parseTimePtr(lastLogin)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return []models.User{}, &LoadError{Collection: "app_users", Err: err}
	}
	return users, nil
}

// SaveUser upserts a user. A missing or malformed id is replaced with a
// minted UUID on the passed struct before the write.
func (s *Store) SaveUser(u *models.User) error {
	if strings.TrimSpace(u.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if strings.TrimSpace(u.Initials) == "" {
		return &ValidationError{Field: "initials", Message: "is required"}
	}
	u.ID = ensureID(u.ID)
	if u.Role == "" {
		u.Role = models.RoleEmployee
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "app_users", Err: err}
	}

	_, err = s.db.Exec(`INSERT INTO app_users
		(id, name, initials, role, department, permissions, password_hash, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, initials=excluded.initials, role=excluded.role,
			department=excluded.department, permissions=excluded.permissions,
			password_hash=excluded.password_hash, last_login=excluded.last_login`,
		u.ID, u.Name, u.Initials, u.Role, u.Department, string(permsJSON),
		u.PasswordHash, fmtTime(u.CreatedAt), fmtTimePtr(u.LastLogin))
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "app_users", Err: err}
	}
	return nil
}

// DeleteUser removes a user by id.
func (s *Store) DeleteUser(id string) error {
	if _, err := s.db.Exec("DELETE FROM app_users WHERE id = ?", id); err != nil {
		return &PersistenceError{Op: "delete", Collection: "app_users", Err: err}
	}
	return nil
}
