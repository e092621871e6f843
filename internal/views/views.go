// Package views contains the derived view computations: pure functions over
// the state store's collections, recomputed on every read and never
// persisted, so they cannot drift from the source data.
package views

import (
	"math"
	"sort"

	"cmms/internal/models"
)

// All is the filter sentinel that bypasses a criterion.
const All = "All"

func matches(value, filter string) bool {
	return filter == "" || filter == All || value == filter
}

// FilterChecklists applies department, frequency and status criteria,
// AND-combined; the All sentinel (or empty string) bypasses a criterion.
func FilterChecklists(lists []models.Checklist, department, frequency, status string) []models.Checklist {
	out := []models.Checklist{}
	for _, c := range lists {
		if matches(c.Department, department) && matches(c.Frequency, frequency) && matches(c.Status, status) {
			out = append(out, c)
		}
	}
	return out
}

// FilterRequests applies department, priority and status criteria.
func FilterRequests(reqs []models.MaintenanceRequest, department, priority, status string) []models.MaintenanceRequest {
	out := []models.MaintenanceRequest{}
	for _, r := range reqs {
		if matches(r.Department, department) && matches(r.Priority, priority) && matches(r.Status, status) {
			out = append(out, r)
		}
	}
	return out
}

// Progress returns the checklist's completion percentage, rounded for
// display. A checklist with no items is 0%, not a division error.
func Progress(c models.Checklist) int {
	if len(c.Items) == 0 {
		return 0
	}
	done := 0
	for _, item := range c.Items {
		if item.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(c.Items)) * 100))
}

// UnreadMessages counts unread messages, excluding those the viewer sent.
func UnreadMessages(msgs []models.Message, viewer string) int {
	n := 0
	for _, m := range msgs {
		if !m.Read && m.From != viewer {
			n++
		}
	}
	return n
}

// UnreadAlerts counts unread alerts.
func UnreadAlerts(alerts []models.Alert) int {
	n := 0
	for _, a := range alerts {
		if !a.Read {
			n++
		}
	}
	return n
}

// Conversations groups messages by thread id. Within a conversation the
// messages are ordered by creation time ascending and the subject is the
// first message's subject; conversations themselves are ordered most
// recently active first.
func Conversations(msgs []models.Message) []models.Conversation {
	byThread := map[string][]models.Message{}
	for _, m := range msgs {
		byThread[m.ThreadID] = append(byThread[m.ThreadID], m)
	}

	out := []models.Conversation{}
	for id, group := range byThread {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		out = append(out, models.Conversation{
			ThreadID: id,
			Subject:  group[0].Subject,
			Messages: group,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a := out[i].Messages[len(out[i].Messages)-1].CreatedAt
		b := out[j].Messages[len(out[j].Messages)-1].CreatedAt
		return a.After(b)
	})
	return out
}

// DashboardStats summarizes the collections for the landing view.
type DashboardStats struct {
	PendingChecklists    int `json:"pending_checklists"`
	InProgressChecklists int `json:"in_progress_checklists"`
	CompletedChecklists  int `json:"completed_checklists"`
	OpenRequests         int `json:"open_requests"`
	UnreadMessages       int `json:"unread_messages"`
	UnreadAlerts         int `json:"unread_alerts"`
}

// Stats computes the dashboard counters for the given viewer.
func Stats(lists []models.Checklist, reqs []models.MaintenanceRequest, msgs []models.Message, alerts []models.Alert, viewer string) DashboardStats {
	var s DashboardStats
	for _, c := range lists {
		switch c.Status {
		case models.ChecklistPending:
			s.PendingChecklists++
		case models.ChecklistInProgress:
			s.InProgressChecklists++
		case models.ChecklistCompleted:
			s.CompletedChecklists++
		}
	}
	for _, r := range reqs {
		if r.Status != models.RequestCompleted {
			s.OpenRequests++
		}
	}
	s.UnreadMessages = UnreadMessages(msgs, viewer)
	s.UnreadAlerts = UnreadAlerts(alerts)
	return s
}
