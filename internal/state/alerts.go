package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"cmms/internal/models"
)

// frequencyWindow is how long a checklist may sit unfinished before it
// counts as overdue.
func frequencyWindow(frequency string) time.Duration {
	switch frequency {
	case "weekly":
		return 7 * 24 * time.Hour
	case "monthly":
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// GenerateAlerts scans checklists and requests for actionable conditions
// and appends alerts for any not already raised. Alerts live only in
// memory; they are regenerated after a reload.
func (a *App) GenerateAlerts(now time.Time) []models.Alert {
	a.mu.Lock()
	defer a.mu.Unlock()

	raised := map[string]bool{}
	for _, al := range a.alerts {
		raised[al.Type+"/"+al.RelatedID] = true
	}

	var created []models.Alert
	add := func(al models.Alert) {
		if raised[al.Type+"/"+al.RelatedID] {
			return
		}
		al.ID = uuid.NewString()
		al.CreatedAt = now
		a.alerts = append(a.alerts, al)
		created = append(created, al)
	}

	for _, c := range a.checklists {
		if c.Status == models.ChecklistCompleted {
			continue
		}
		if now.Sub(c.CreatedAt) > frequencyWindow(c.Frequency) {
			add(models.Alert{
				Title:       "Overdue: " + c.Title,
				Message:     fmt.Sprintf("%s checklist in %s has not been completed", c.Frequency, c.Department),
				Type:        models.AlertOverdue,
				RelatedID:   c.ID,
				RelatedType: "checklist",
			})
		}
	}

	for _, r := range a.requests {
		if r.Status == models.RequestCompleted || r.Priority != "high" {
			continue
		}
		severity := models.AlertUrgent
		if now.Sub(r.CreatedAt) > 3*24*time.Hour {
			severity = models.AlertCritical
		}
		add(models.Alert{
			Title:       "High priority: " + r.Title,
			Message:     fmt.Sprintf("open high-priority request in %s", r.Department),
			Type:        severity,
			RelatedID:   r.ID,
			RelatedType: "request",
		})
	}

	return created
}

// MarkAlertRead sets the alert's read flag.
func (a *App) MarkAlertRead(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.alerts {
		if a.alerts[i].ID == id {
			a.alerts[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}
