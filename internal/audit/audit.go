// Package audit records who did what to which record. The audit log backs
// the recent-activity feed.
package audit

import (
	"database/sql"
	"log"

	"cmms/internal/websocket"
)

// Action constants.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionStart    = "START"
	ActionComplete = "COMPLETE"
	ActionAssign   = "ASSIGN"
	ActionLogin    = "LOGIN"
	ActionLogout   = "LOGOUT"
	ActionExport   = "EXPORT"
)

// Entry is a single audit log record.
type Entry struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Module    string `json:"module"`
	RecordID  string `json:"record_id"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

// Log writes an audit entry and broadcasts the change to connected clients.
// Failures are logged, never propagated; auditing must not fail a mutation.
func Log(db *sql.DB, hub *websocket.Hub, username, action, module, recordID, summary string) {
	_, err := db.Exec("INSERT INTO audit_log (username, action, module, record_id, summary) VALUES (?, ?, ?, ?, ?)",
		username, action, module, recordID, summary)
	if err != nil {
		log.Printf("audit log error: %v", err)
	}
	if hub != nil {
		hub.Broadcast(websocket.Event{
			Type:   module + "_" + action,
			ID:     recordID,
			Action: action,
		})
	}
}

// Recent returns the latest audit entries, newest first.
func Recent(db *sql.DB, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Query(`SELECT id, username, action, module, record_id, summary, created_at
		FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Module, &e.RecordID, &e.Summary, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
