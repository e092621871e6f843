package store

import (
	"encoding/json"
	"strings"
	"time"

	"cmms/internal/models"
)

// LoadMessages returns every message in the store.
func (s *Store) LoadMessages() ([]models.Message, error) {
	rows, err := s.db.Query(`SELECT id, subject, content, sender, recipients, thread_id,
		read, type, image_url, created_at FROM messages`)
	if err != nil {
		return []models.Message{}, &LoadError{Collection: "messages", Err: err}
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		var recipients, createdAt string
		var read int
		if err := rows.Scan(&m.ID, &m.Subject, &m.Content, &m.From, &recipients,
			&m.ThreadID, &read, &m.Type, &m.ImageURL, &createdAt); err != nil {
			return []models.Message{}, &LoadError{Collection: "messages", Err: err}
		}
		if err := json.Unmarshal([]byte(recipients), &m.To); err != nil {
			m.To = nil
		}
		m.Read = read != 0
		if t, err := parseTime(createdAt); err == nil {
			m.CreatedAt = t
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return []models.Message{}, &LoadError{Collection: "messages", Err: err}
	}
	return msgs, nil
}

// SaveMessage upserts a message. A message without a thread id starts its
// own conversation, so the minted id doubles as the thread id.
func (s *Store) SaveMessage(m *models.Message) error {
	if strings.TrimSpace(m.Subject) == "" {
		return &ValidationError{Field: "subject", Message: "is required"}
	}
	m.ID = ensureID(m.ID)
	if m.ThreadID == "" {
		m.ThreadID = m.ID
	}
	if m.Type == "" {
		m.Type = models.MessageGeneral
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	to := m.To
	if to == nil {
		to = []string{}
	}
	toJSON, err := json.Marshal(to)
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "messages", Err: err}
	}

	read := 0
	if m.Read {
		read = 1
	}
	_, err = s.db.Exec(`INSERT INTO messages
		(id, subject, content, sender, recipients, thread_id, read, type, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject=excluded.subject, content=excluded.content,
			recipients=excluded.recipients, read=excluded.read,
			image_url=excluded.image_url`,
		m.ID, m.Subject, m.Content, m.From, string(toJSON), m.ThreadID,
		read, m.Type, m.ImageURL, fmtTime(m.CreatedAt))
	if err != nil {
		return &PersistenceError{Op: "save", Collection: "messages", Err: err}
	}
	return nil
}

// DeleteMessage removes a message by id.
func (s *Store) DeleteMessage(id string) error {
	if _, err := s.db.Exec("DELETE FROM messages WHERE id = ?", id); err != nil {
		return &PersistenceError{Op: "delete", Collection: "messages", Err: err}
	}
	return nil
}
