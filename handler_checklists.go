package main

import (
	"net/http"
	"strconv"

	"cmms/internal/audit"
	"cmms/internal/models"
	"cmms/internal/response"
	"cmms/internal/validation"
	"cmms/internal/views"
)

// handleListChecklists returns checklists filtered by the query's
// department/frequency/status criteria. An absent criterion (or "All")
// bypasses that filter; the session's selected department is the default.
func (app *App) handleListChecklists(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	q := r.URL.Query()
	department := q.Get("department")
	if department == "" {
		department = sess.Department
	}
	lists := views.FilterChecklists(app.State.Checklists(), department, q.Get("frequency"), q.Get("status"))

	type withProgress struct {
		models.Checklist
		Progress int `json:"progress"`
	}
	out := make([]withProgress, 0, len(lists))
	for _, c := range lists {
		out = append(out, withProgress{Checklist: c, Progress: views.Progress(c)})
	}
	response.JSONMeta(w, out, len(out), 1, len(out))
}

func (app *App) handleGetChecklist(w http.ResponseWriter, r *http.Request, id string) {
	for _, c := range app.State.Checklists() {
		if c.ID == id {
			response.JSON(w, c)
			return
		}
	}
	response.Err(w, "Not found", 404)
}

type checklistPayload struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Department  string                 `json:"department"`
	Frequency   string                 `json:"frequency"`
	Items       []models.ChecklistItem `json:"items"`
}

func validateChecklistPayload(p checklistPayload) error {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", p.Title)
	validation.ValidateEnum(ve, "frequency", p.Frequency, validation.ValidFrequencies)
	validation.ValidateMaxLength(ve, "description", p.Description, validation.MaxStringLength)
	for _, item := range p.Items {
		validation.RequireField(ve, "items.description", item.Description)
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (app *App) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("create_checklists") {
		response.Err(w, "Not allowed", 403)
		return
	}

	var p checklistPayload
	if err := response.DecodeBody(r, &p); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if err := validateChecklistPayload(p); err != nil {
		writeErr(w, err)
		return
	}

	created, err := app.State.AddChecklist(models.Checklist{
		Title:       p.Title,
		Description: p.Description,
		Department:  p.Department,
		Frequency:   p.Frequency,
		Items:       normalizeItemIDs(p.Items),
		CreatedBy:   sess.User.ID,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionCreate, "checklists", created.ID, "Created checklist "+created.Title)
	w.WriteHeader(201)
	response.JSON(w, created)
}

func (app *App) handleUpdateChecklist(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("create_checklists") {
		response.Err(w, "Not allowed", 403)
		return
	}

	var c models.Checklist
	if err := response.DecodeBody(r, &c); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if err := validateChecklistPayload(checklistPayload{
		Title:       c.Title,
		Description: c.Description,
		Department:  c.Department,
		Frequency:   c.Frequency,
		Items:       c.Items,
	}); err != nil {
		writeErr(w, err)
		return
	}
	c.ID = id
	c.Items = normalizeItemIDs(c.Items)

	updated, err := app.State.UpdateChecklist(c)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionUpdate, "checklists", id, "Updated checklist "+updated.Title)
	response.JSON(w, updated)
}

func (app *App) handleDeleteChecklist(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("delete_checklists") {
		response.Err(w, "Not allowed", 403)
		return
	}

	if err := app.State.DeleteChecklist(id); err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionDelete, "checklists", id, "Deleted checklist")
	response.JSON(w, map[string]string{"status": "deleted"})
}

func (app *App) handleStartChecklist(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	c, err := app.State.StartChecklist(id, &sess.User)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionStart, "checklists", id, "Started checklist "+c.Title)
	response.JSON(w, c)
}

func (app *App) handleCompleteChecklist(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	c, err := app.State.CompleteChecklist(id, &sess.User)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionComplete, "checklists", id, "Completed checklist "+c.Title)
	response.JSON(w, c)
}

func (app *App) handleAssignChecklist(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("assign_checklists") {
		response.Err(w, "Not allowed", 403)
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var assignee *models.Assignee
	if req.UserID != "" {
		for _, u := range app.State.Users() {
			if u.ID == req.UserID {
				assignee = &models.Assignee{ID: u.ID, Name: u.Name}
				break
			}
		}
		if assignee == nil {
			response.Err(w, "Assignee not found", 404)
			return
		}
	}

	c, err := app.State.AssignChecklist(id, assignee)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionAssign, "checklists", id, "Assigned checklist "+c.Title)
	response.JSON(w, c)
}

func (app *App) handleToggleItem(w http.ResponseWriter, r *http.Request, checklistID, itemID string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	c, err := app.State.ToggleItem(checklistID, itemID, &sess.User)
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, c)
}

func (app *App) handleToggleNonCompliance(w http.ResponseWriter, r *http.Request, checklistID, itemID string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	c, err := app.State.ToggleNonCompliance(checklistID, itemID, req.Reason, &sess.User)
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, c)
}

// normalizeItemIDs gives sequential ids to items arriving without one, so
// item ids are always unique within their checklist.
func normalizeItemIDs(items []models.ChecklistItem) []models.ChecklistItem {
	next := 1
	used := map[string]bool{}
	for _, item := range items {
		if item.ID != "" {
			used[item.ID] = true
		}
	}
	out := make([]models.ChecklistItem, len(items))
	for i, item := range items {
		if item.ID == "" {
			for used[strconv.Itoa(next)] {
				next++
			}
			item.ID = strconv.Itoa(next)
			used[item.ID] = true
		}
		out[i] = item
	}
	return out
}
