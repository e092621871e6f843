package state

import (
	"testing"
	"time"

	"cmms/internal/models"
	"cmms/internal/testutil"
)

func TestGenerateAlertsOverdueChecklist(t *testing.T) {
	app := setupState(t)

	fresh := testutil.Checklist("Fresh", "Weld Shop")
	fresh.CreatedAt = time.Now()
	app.AddChecklist(fresh)

	stale := testutil.Checklist("Stale", "Cut Shop")
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)
	app.AddChecklist(stale)

	created := app.GenerateAlerts(time.Now())
	if len(created) != 1 {
		t.Fatalf("Expected 1 alert, got %d: %+v", len(created), created)
	}
	al := created[0]
	if al.Type != models.AlertOverdue {
		t.Errorf("Expected overdue alert, got %s", al.Type)
	}
	if al.RelatedType != "checklist" {
		t.Errorf("Expected checklist relation, got %s", al.RelatedType)
	}
}

func TestGenerateAlertsDedupes(t *testing.T) {
	app := setupState(t)

	stale := testutil.Checklist("Stale", "Cut Shop")
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)
	app.AddChecklist(stale)

	first := app.GenerateAlerts(time.Now())
	second := app.GenerateAlerts(time.Now())
	if len(first) != 1 || len(second) != 0 {
		t.Errorf("Expected dedupe on second pass: first=%d second=%d", len(first), len(second))
	}
	if len(app.Alerts()) != 1 {
		t.Errorf("Expected 1 alert total, got %d", len(app.Alerts()))
	}
}

func TestGenerateAlertsHighPriorityEscalates(t *testing.T) {
	app := setupState(t)

	recent := testutil.Request("Pump leak", "Maintenance", "high")
	recent.CreatedAt = time.Now().Add(-2 * time.Hour)
	app.AddRequest(recent)

	old := testutil.Request("Crane fault", "Final Assembly", "high")
	old.CreatedAt = time.Now().Add(-4 * 24 * time.Hour)
	app.AddRequest(old)

	low := testutil.Request("Squeaky door", "Quality Control", "low")
	app.AddRequest(low)

	created := app.GenerateAlerts(time.Now())
	if len(created) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(created))
	}
	severities := map[string]string{}
	for _, al := range created {
		severities[al.Title] = al.Type
	}
	if severities["High priority: Pump leak"] != models.AlertUrgent {
		t.Errorf("Recent request should be urgent: %v", severities)
	}
	if severities["High priority: Crane fault"] != models.AlertCritical {
		t.Errorf("Aged request should be critical: %v", severities)
	}
}

func TestMarkAlertRead(t *testing.T) {
	app := setupState(t)

	stale := testutil.Checklist("Stale", "Cut Shop")
	stale.CreatedAt = time.Now().Add(-48 * time.Hour)
	app.AddChecklist(stale)
	created := app.GenerateAlerts(time.Now())

	if err := app.MarkAlertRead(created[0].ID); err != nil {
		t.Fatalf("MarkAlertRead: %v", err)
	}
	if !app.Alerts()[0].Read {
		t.Error("Alert not marked read")
	}
}
