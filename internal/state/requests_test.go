package state

import (
	"errors"
	"testing"
	"time"

	"cmms/internal/models"
	"cmms/internal/testutil"
)

func TestSetRequestStatusStampsUpdatedAt(t *testing.T) {
	app := setupState(t)
	r, err := app.AddRequest(testutil.Request("Hoist chain worn", "Weld Shop", "high"))
	if err != nil {
		t.Fatalf("AddRequest: %v", err)
	}

	got, err := app.SetRequestStatus(r.ID, models.RequestInProgress, operator())
	if err != nil {
		t.Fatalf("SetRequestStatus: %v", err)
	}
	if got.Status != models.RequestInProgress || got.UpdatedAt == nil {
		t.Errorf("Status change not recorded: %+v", got)
	}
}

func TestSetRequestStatusRejectsEmployee(t *testing.T) {
	app := setupState(t)
	r, _ := app.AddRequest(testutil.Request("Hoist chain worn", "Weld Shop", "high"))

	if _, err := app.SetRequestStatus(r.ID, models.RequestInProgress, employee()); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("Expected ErrNotAllowed, got %v", err)
	}
}

func TestUpdateRequestPreservesRequester(t *testing.T) {
	app := setupState(t)
	req := testutil.Request("Hoist chain worn", "Weld Shop", "high")
	req.RequestedBy = "emp-1"
	req.RequestedByName = "Bob Builder"
	r, err := app.AddRequest(req)
	if err != nil {
		t.Fatalf("AddRequest: %v", err)
	}

	// A full replacement arriving without requester or creation fields
	// must not reset them, in memory or in the store.
	repl := r
	repl.Description = "Chain stretched past tolerance"
	repl.CreatedAt = time.Time{}
	repl.RequestedBy = ""
	repl.RequestedByName = ""
	updated, err := app.UpdateRequest(repl)
	if err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}
	if updated.RequestedBy != "emp-1" || updated.RequestedByName != "Bob Builder" {
		t.Errorf("Requester restamped: %q/%q", updated.RequestedBy, updated.RequestedByName)
	}
	if !updated.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("CreatedAt restamped: got %v, want %v", updated.CreatedAt, r.CreatedAt)
	}

	stored, err := app.gw.LoadRequests()
	if err != nil {
		t.Fatalf("LoadRequests: %v", err)
	}
	if stored[0].RequestedBy != "emp-1" || !stored[0].CreatedAt.Equal(updated.CreatedAt) {
		t.Errorf("Memory and store disagree: %+v", stored[0])
	}
}

func TestDeleteRequestRemovesFromMemory(t *testing.T) {
	app := setupState(t)
	r, _ := app.AddRequest(testutil.Request("Hoist chain worn", "Weld Shop", "high"))

	if err := app.DeleteRequest(r.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
	if len(app.Requests()) != 0 {
		t.Errorf("Request survived delete")
	}
	if err := app.DeleteRequest(r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
