package state

import (
	"time"

	"cmms/internal/models"
)

func (a *App) findChecklist(id string) (int, bool) {
	for i := range a.checklists {
		if a.checklists[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// commitChecklist replaces the checklist matching c.ID in place, preserving
// the order and identity of every other entry, or appends a new one.
func (a *App) commitChecklist(c models.Checklist) {
	if i, ok := a.findChecklist(c.ID); ok {
		a.checklists[i] = c
		return
	}
	a.checklists = append(a.checklists, c)
}

// AddChecklist persists and adds a new checklist.
func (a *App) AddChecklist(c models.Checklist) (models.Checklist, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c.Status == "" {
		c.Status = models.ChecklistPending
	}
	err := a.gw.SaveChecklist(&c)
	a.notify(err, "Checklist created", "Error saving checklist")
	if err != nil {
		return models.Checklist{}, err
	}
	a.commitChecklist(c)
	return c, nil
}

// UpdateChecklist persists a full replacement of the checklist. Status may
// not move backwards, and incoming items must satisfy the same invariants
// the toggles maintain: never both completed and non-compliant, and a
// non-compliance mark always carries a reason. Creation fields are carried
// forward from the current entry; the upsert never rewrites them.
func (a *App) UpdateChecklist(c models.Checklist) (models.Checklist, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.findChecklist(c.ID)
	if !ok {
		return models.Checklist{}, ErrNotFound
	}
	cur := a.checklists[i]
	if statusRank(c.Status) < statusRank(cur.Status) {
		return models.Checklist{}, ErrNotAllowed
	}
	for _, item := range c.Items {
		if item.Completed && item.NonCompliant {
			return models.Checklist{}, ErrItemConflict
		}
		if item.NonCompliant && item.NonComplianceReason == "" {
			return models.Checklist{}, ErrReasonRequired
		}
	}
	c.CreatedAt = cur.CreatedAt
	c.CreatedBy = cur.CreatedBy
	err := a.gw.SaveChecklist(&c)
	a.notify(err, "Checklist updated", "Error saving checklist")
	if err != nil {
		return models.Checklist{}, err
	}
	a.commitChecklist(c)
	return c, nil
}

// DeleteChecklist removes a checklist from the store and from memory.
func (a *App) DeleteChecklist(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.findChecklist(id); !ok {
		return ErrNotFound
	}
	err := a.gw.DeleteChecklist(id)
	a.notify(err, "Checklist deleted", "Error deleting checklist")
	if err != nil {
		return err
	}
	kept := a.checklists[:0]
	for _, c := range a.checklists {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	a.checklists = kept
	return nil
}

// StartChecklist moves a pending checklist to in-progress and assigns it to
// the acting user. Only admin and authorized roles may start one.
func (a *App) StartChecklist(id string, actor *models.User) (models.Checklist, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == nil || !actor.CanOperate() {
		return models.Checklist{}, ErrNotAllowed
	}
	i, ok := a.findChecklist(id)
	if !ok {
		return models.Checklist{}, ErrNotFound
	}
	c := a.checklists[i]
	if c.Status != models.ChecklistPending {
		return models.Checklist{}, ErrNotAllowed
	}
	now := time.Now()
	c.Status = models.ChecklistInProgress
	c.StartedAt = &now
	c.AssignedTo = &models.Assignee{ID: actor.ID, Name: actor.Name}

	err := a.gw.SaveChecklist(&c)
	a.notify(err, "Checklist started", "Error saving checklist")
	if err != nil {
		return models.Checklist{}, err
	}
	a.checklists[i] = c
	return c, nil
}

// CompleteChecklist moves an in-progress checklist to completed. The guard
// is re-checked at the moment of the action: every item must be completed
// or non-compliant with a reason, otherwise nothing changes.
func (a *App) CompleteChecklist(id string, actor *models.User) (models.Checklist, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == nil || !actor.CanOperate() {
		return models.Checklist{}, ErrNotAllowed
	}
	i, ok := a.findChecklist(id)
	if !ok {
		return models.Checklist{}, ErrNotFound
	}
	c := a.checklists[i]
	if c.Status != models.ChecklistInProgress {
		return models.Checklist{}, ErrNotAllowed
	}
	for _, item := range c.Items {
		if !item.Resolved() {
			return models.Checklist{}, ErrItemsUnresolved
		}
	}
	now := time.Now()
	c.Status = models.ChecklistCompleted
	c.CompletedAt = &now

	err := a.gw.SaveChecklist(&c)
	a.notify(err, "Checklist completed!", "Error saving checklist")
	if err != nil {
		return models.Checklist{}, err
	}
	a.checklists[i] = c
	return c, nil
}

// ToggleItem flips an item's completed flag. Completing an item stamps the
// actor's initials and the time and clears any non-compliance mark; the two
// flags are never simultaneously true.
func (a *App) ToggleItem(checklistID, itemID string, actor *models.User) (models.Checklist, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == nil || !actor.CanOperate() {
		return models.Checklist{}, ErrNotAllowed
	}
	i, ok := a.findChecklist(checklistID)
	if !ok {
		return models.Checklist{}, ErrNotFound
	}
	c := a.checklists[i]
	if c.Status == models.ChecklistCompleted {
		return models.Checklist{}, ErrNotAllowed
	}
	items := make([]models.ChecklistItem, len(c.Items))
	copy(items, c.Items)
	found := false
	for j := range items {
		if items[j].ID != itemID {
			continue
		}
		found = true
		if items[j].Completed {
			items[j].Completed = false
			items[j].CompletedBy = ""
			items[j].CompletedAt = nil
		} else {
			now := time.Now()
			items[j].Completed = true
			items[j].CompletedBy = actor.Initials
			items[j].CompletedAt = &now
			items[j].NonCompliant = false
			items[j].NonComplianceReason = ""
		}
	}
	if !found {
		return models.Checklist{}, ErrNotFound
	}
	c.Items = items

	err := a.gw.SaveChecklist(&c)
	a.notify(err, "Checklist item updated", "Error saving checklist")
	if err != nil {
		return models.Checklist{}, err
	}
	a.checklists[i] = c
	return c, nil
}

// ToggleNonCompliance flips an item's non-compliance mark. Setting it
// requires a justification and clears the completed flag; clearing it also
// discards the reason.
func (a *App) ToggleNonCompliance(checklistID, itemID, reason string, actor *models.User) (models.Checklist, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == nil || !actor.CanOperate() {
		return models.Checklist{}, ErrNotAllowed
	}
	i, ok := a.findChecklist(checklistID)
	if !ok {
		return models.Checklist{}, ErrNotFound
	}
	c := a.checklists[i]
	if c.Status == models.ChecklistCompleted {
		return models.Checklist{}, ErrNotAllowed
	}
	items := make([]models.ChecklistItem, len(c.Items))
	copy(items, c.Items)
	found := false
	for j := range items {
		if items[j].ID != itemID {
			continue
		}
		found = true
		if items[j].NonCompliant {
			items[j].NonCompliant = false
			items[j].NonComplianceReason = ""
		} else {
			if reason == "" {
				return models.Checklist{}, ErrReasonRequired
			}
			items[j].NonCompliant = true
			items[j].NonComplianceReason = reason
			items[j].Completed = false
			items[j].CompletedBy = ""
			items[j].CompletedAt = nil
		}
	}
	if !found {
		return models.Checklist{}, ErrNotFound
	}
	c.Items = items

	err := a.gw.SaveChecklist(&c)
	a.notify(err, "Checklist item updated", "Error saving checklist")
	if err != nil {
		return models.Checklist{}, err
	}
	a.checklists[i] = c
	return c, nil
}

// AssignChecklist sets or clears the checklist's assignee.
func (a *App) AssignChecklist(id string, assignee *models.Assignee) (models.Checklist, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.findChecklist(id)
	if !ok {
		return models.Checklist{}, ErrNotFound
	}
	c := a.checklists[i]
	c.AssignedTo = assignee

	err := a.gw.SaveChecklist(&c)
	a.notify(err, "Checklist assigned", "Error saving checklist")
	if err != nil {
		return models.Checklist{}, err
	}
	a.checklists[i] = c
	return c, nil
}
