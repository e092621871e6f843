package state

import (
	"time"

	"cmms/internal/models"
)

func (a *App) findRequest(id string) (int, bool) {
	for i := range a.requests {
		if a.requests[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// AddRequest persists and adds a new maintenance request.
func (a *App) AddRequest(r models.MaintenanceRequest) (models.MaintenanceRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r.Status == "" {
		r.Status = models.RequestOpen
	}
	err := a.gw.SaveRequest(&r)
	a.notify(err, "Maintenance request submitted!", "Error saving request")
	if err != nil {
		return models.MaintenanceRequest{}, err
	}
	a.requests = append(a.requests, r)
	return r, nil
}

// UpdateRequest persists a full replacement of the request. The requester
// and creation time are carried forward from the current entry; the upsert
// never rewrites them.
func (a *App) UpdateRequest(r models.MaintenanceRequest) (models.MaintenanceRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.findRequest(r.ID)
	if !ok {
		return models.MaintenanceRequest{}, ErrNotFound
	}
	cur := a.requests[i]
	r.CreatedAt = cur.CreatedAt
	r.RequestedBy = cur.RequestedBy
	r.RequestedByName = cur.RequestedByName
	now := time.Now()
	r.UpdatedAt = &now
	err := a.gw.SaveRequest(&r)
	a.notify(err, "Request updated", "Error saving request")
	if err != nil {
		return models.MaintenanceRequest{}, err
	}
	a.requests[i] = r
	return r, nil
}

// SetRequestStatus moves a request through open/in-progress/completed.
// Unlike checklists there is no guard; any authorized actor may set it.
func (a *App) SetRequestStatus(id, status string, actor *models.User) (models.MaintenanceRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == nil || !actor.CanOperate() {
		return models.MaintenanceRequest{}, ErrNotAllowed
	}
	i, ok := a.findRequest(id)
	if !ok {
		return models.MaintenanceRequest{}, ErrNotFound
	}
	r := a.requests[i]
	r.Status = status
	now := time.Now()
	r.UpdatedAt = &now

	err := a.gw.SaveRequest(&r)
	a.notify(err, "Request status updated", "Error saving request")
	if err != nil {
		return models.MaintenanceRequest{}, err
	}
	a.requests[i] = r
	return r, nil
}

// AssignRequest sets or clears the request's assignee.
func (a *App) AssignRequest(id string, assignee *models.Assignee) (models.MaintenanceRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.findRequest(id)
	if !ok {
		return models.MaintenanceRequest{}, ErrNotFound
	}
	r := a.requests[i]
	r.AssignedTo = assignee
	now := time.Now()
	r.UpdatedAt = &now

	err := a.gw.SaveRequest(&r)
	a.notify(err, "Request assigned", "Error saving request")
	if err != nil {
		return models.MaintenanceRequest{}, err
	}
	a.requests[i] = r
	return r, nil
}

// DeleteRequest removes a request from the store and from memory.
func (a *App) DeleteRequest(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.findRequest(id); !ok {
		return ErrNotFound
	}
	err := a.gw.DeleteRequest(id)
	a.notify(err, "Request deleted", "Error deleting request")
	if err != nil {
		return err
	}
	kept := a.requests[:0]
	for _, r := range a.requests {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	a.requests = kept
	return nil
}
