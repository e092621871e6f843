package state

import (
	"log"
	"time"

	"cmms/internal/models"
)

func (a *App) findUser(id string) (int, bool) {
	for i := range a.users {
		if a.users[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// AddUser persists and adds a new user.
func (a *App) AddUser(u models.User) (models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.gw.SaveUser(&u)
	a.notify(err, "User created", "Error saving user")
	if err != nil {
		return models.User{}, err
	}
	a.users = append(a.users, u)
	return u, nil
}

// UpdateUser persists a replacement of the user. An empty password hash on
// the incoming record keeps the stored credential.
func (a *App) UpdateUser(u models.User) (models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.findUser(u.ID)
	if !ok {
		return models.User{}, ErrNotFound
	}
	if u.PasswordHash == "" {
		u.PasswordHash = a.users[i].PasswordHash
	}
	err := a.gw.SaveUser(&u)
	a.notify(err, "User updated", "Error saving user")
	if err != nil {
		return models.User{}, err
	}
	a.users[i] = u
	return u, nil
}

// SetUserPassword stores a new credential hash for the user. The hash is
// produced by the caller (bcrypt); plaintext never reaches this layer.
func (a *App) SetUserPassword(id, hash string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.findUser(id)
	if !ok {
		return ErrNotFound
	}
	u := a.users[i]
	u.PasswordHash = hash
	err := a.gw.SaveUser(&u)
	a.notify(err, "Password updated", "Error saving user")
	if err != nil {
		return err
	}
	a.users[i] = u
	return nil
}

// RecordLogin stamps the user's last login time.
func (a *App) RecordLogin(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.findUser(id)
	if !ok {
		return
	}
	u := a.users[i]
	now := time.Now()
	u.LastLogin = &now
	// Best effort; a failed stamp is not worth a user-facing error.
	if err := a.gw.SaveUser(&u); err != nil {
		log.Printf("state: last-login stamp for %s: %v", u.Initials, err)
		return
	}
	a.users[i] = u
}

// DeleteUser removes a user from the store and from memory.
func (a *App) DeleteUser(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.findUser(id); !ok {
		return ErrNotFound
	}
	err := a.gw.DeleteUser(id)
	a.notify(err, "User deleted", "Error deleting user")
	if err != nil {
		return err
	}
	kept := a.users[:0]
	for _, u := range a.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	a.users = kept
	return nil
}
