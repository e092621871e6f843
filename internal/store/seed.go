package store

import (
	"log"

	"golang.org/x/crypto/bcrypt"

	"cmms/internal/models"
)

// Seed ensures a fresh database has an admin account to log in with.
func (s *Store) Seed() {
	var count int
	s.db.QueryRow("SELECT COUNT(*) FROM app_users WHERE role = 'admin'").Scan(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("seed: hash admin password: %v", err)
		return
	}
	admin := models.User{
		Name:         "Administrator",
		Initials:     "ADM",
		Role:         models.RoleAdmin,
		Department:   "Maintenance",
		PasswordHash: string(hash),
	}
	if err := s.SaveUser(&admin); err != nil {
		log.Printf("seed: create admin: %v", err)
	}
}
