package views

import (
	"testing"
	"time"

	"cmms/internal/models"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		completed int
		want      int
	}{
		{"no items", 0, 0, 0},
		{"none done", 4, 0, 0},
		{"half done", 4, 2, 50},
		{"third done rounds", 3, 1, 33},
		{"two thirds rounds", 3, 2, 67},
		{"all done", 5, 5, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.Checklist{}
			for i := 0; i < tt.total; i++ {
				c.Items = append(c.Items, models.ChecklistItem{Completed: i < tt.completed})
			}
			if got := Progress(c); got != tt.want {
				t.Errorf("Progress = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProgressIgnoresNonCompliant(t *testing.T) {
	c := models.Checklist{Items: []models.ChecklistItem{
		{Completed: true},
		{NonCompliant: true, NonComplianceReason: "broken"},
	}}
	if got := Progress(c); got != 50 {
		t.Errorf("Non-compliant item should not count as completed: got %d", got)
	}
}

func TestFilterChecklists(t *testing.T) {
	lists := []models.Checklist{
		{Title: "A", Department: "Weld Shop", Frequency: "daily", Status: models.ChecklistPending},
		{Title: "B", Department: "Weld Shop", Frequency: "weekly", Status: models.ChecklistCompleted},
		{Title: "C", Department: "Cut Shop", Frequency: "daily", Status: models.ChecklistPending},
	}

	got := FilterChecklists(lists, "Weld Shop", "", "")
	if len(got) != 2 {
		t.Errorf("Department filter: expected 2, got %d", len(got))
	}
	got = FilterChecklists(lists, "Weld Shop", "daily", "")
	if len(got) != 1 || got[0].Title != "A" {
		t.Errorf("Combined filter: %+v", got)
	}
	got = FilterChecklists(lists, All, All, All)
	if len(got) != 3 {
		t.Errorf("All sentinel should bypass: got %d", len(got))
	}
	got = FilterChecklists(lists, "", "", models.ChecklistPending)
	if len(got) != 2 {
		t.Errorf("Status filter: expected 2, got %d", len(got))
	}
}

func TestFilterRequests(t *testing.T) {
	reqs := []models.MaintenanceRequest{
		{Title: "A", Department: "Maintenance", Priority: "high", Status: models.RequestOpen},
		{Title: "B", Department: "Maintenance", Priority: "low", Status: models.RequestCompleted},
	}
	got := FilterRequests(reqs, "Maintenance", "high", "")
	if len(got) != 1 || got[0].Title != "A" {
		t.Errorf("FilterRequests: %+v", got)
	}
}

func TestUnreadMessagesExcludesOwn(t *testing.T) {
	msgs := []models.Message{
		{From: "Alice", Read: false},
		{From: "Bob", Read: false},
		{From: "Bob", Read: true},
	}
	if got := UnreadMessages(msgs, "Bob"); got != 1 {
		t.Errorf("Expected 1 unread for Bob, got %d", got)
	}
	if got := UnreadMessages(msgs, "Carol"); got != 2 {
		t.Errorf("Expected 2 unread for Carol, got %d", got)
	}
}

func TestConversationsGrouping(t *testing.T) {
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		{ID: "m3", ThreadID: "t1", Subject: "Re: Pump", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "m1", ThreadID: "t1", Subject: "Pump", CreatedAt: base},
		{ID: "m2", ThreadID: "t1", Subject: "Re: Pump", CreatedAt: base.Add(time.Hour)},
		{ID: "m4", ThreadID: "t2", Subject: "Crane", CreatedAt: base.Add(30 * time.Minute)},
	}

	convs := Conversations(msgs)
	if len(convs) != 2 {
		t.Fatalf("Expected 2 conversations, got %d", len(convs))
	}

	// Most recently active thread first.
	if convs[0].ThreadID != "t1" {
		t.Errorf("Expected t1 first, got %s", convs[0].ThreadID)
	}
	// Subject comes from the earliest message.
	if convs[0].Subject != "Pump" {
		t.Errorf("Expected subject from first message, got %q", convs[0].Subject)
	}
	// Messages ordered ascending within the thread.
	ids := []string{}
	for _, m := range convs[0].Messages {
		ids = append(ids, m.ID)
	}
	if ids[0] != "m1" || ids[1] != "m2" || ids[2] != "m3" {
		t.Errorf("Thread not in ascending order: %v", ids)
	}
}

func TestStats(t *testing.T) {
	lists := []models.Checklist{
		{Status: models.ChecklistPending},
		{Status: models.ChecklistInProgress},
		{Status: models.ChecklistCompleted},
		{Status: models.ChecklistCompleted},
	}
	reqs := []models.MaintenanceRequest{
		{Status: models.RequestOpen},
		{Status: models.RequestInProgress},
		{Status: models.RequestCompleted},
	}
	msgs := []models.Message{{From: "Alice"}, {From: "Bob"}}
	alerts := []models.Alert{{Read: false}, {Read: true}}

	s := Stats(lists, reqs, msgs, alerts, "Bob")
	if s.PendingChecklists != 1 || s.InProgressChecklists != 1 || s.CompletedChecklists != 2 {
		t.Errorf("Checklist counters wrong: %+v", s)
	}
	if s.OpenRequests != 2 {
		t.Errorf("Expected 2 open requests, got %d", s.OpenRequests)
	}
	if s.UnreadMessages != 1 {
		t.Errorf("Expected 1 unread message, got %d", s.UnreadMessages)
	}
	if s.UnreadAlerts != 1 {
		t.Errorf("Expected 1 unread alert, got %d", s.UnreadAlerts)
	}
}
