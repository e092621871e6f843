package main

import (
	"net/http"

	"cmms/internal/audit"
	"cmms/internal/models"
	"cmms/internal/response"
	"cmms/internal/validation"
	"cmms/internal/views"
)

func (app *App) handleListRequests(w http.ResponseWriter, r *http.Request) {
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
	reqs := views.FilterRequests(app.State.Requests(), department, q.Get("priority"), q.Get("status"))
	response.JSONMeta(w, reqs, len(reqs), 1, len(reqs))
}

type requestPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Department  string   `json:"department"`
	Priority    string   `json:"priority"`
	ImageURLs   []string `json:"image_urls"`
}

func validateRequestPayload(p requestPayload) error {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "title", p.Title)
	validation.RequireField(ve, "department", p.Department)
	validation.ValidateEnum(ve, "priority", p.Priority, validation.ValidRequestPriorities)
	validation.ValidateMaxLength(ve, "description", p.Description, validation.MaxStringLength)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (app *App) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var p requestPayload
	if err := response.DecodeBody(r, &p); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if err := validateRequestPayload(p); err != nil {
		writeErr(w, err)
		return
	}

	created, err := app.State.AddRequest(models.MaintenanceRequest{
		Title:           p.Title,
		Description:     p.Description,
		Department:      p.Department,
		Priority:        p.Priority,
		RequestedBy:     sess.User.ID,
		RequestedByName: sess.User.Name,
		ImageURLs:       p.ImageURLs,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionCreate, "requests", created.ID, "Filed request "+created.Title)
	w.WriteHeader(201)
	response.JSON(w, created)
}

func (app *App) handleUpdateRequest(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req models.MaintenanceRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	req.ID = id

	updated, err := app.State.UpdateRequest(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionUpdate, "requests", id, "Updated request "+updated.Title)
	response.JSON(w, updated)
}

func (app *App) handleRequestStatus(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "status", req.Status)
	validation.ValidateEnum(ve, "status", req.Status, validation.ValidRequestStatuses)
	if ve.HasErrors() {
		writeErr(w, ve)
		return
	}

	updated, err := app.State.SetRequestStatus(id, req.Status, &sess.User)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionUpdate, "requests", id, "Set status "+req.Status)
	response.JSON(w, updated)
}

func (app *App) handleAssignRequest(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.CanOperate() {
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

	updated, err := app.State.AssignRequest(id, assignee)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionAssign, "requests", id, "Assigned request "+updated.Title)
	response.JSON(w, updated)
}

func (app *App) handleDeleteRequest(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("delete_requests") {
		response.Err(w, "Not allowed", 403)
		return
	}

	if err := app.State.DeleteRequest(id); err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionDelete, "requests", id, "Deleted request")
	response.JSON(w, map[string]string{"status": "deleted"})
}
