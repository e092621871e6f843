package main

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"cmms/internal/audit"
	"cmms/internal/models"
	"cmms/internal/response"
	"cmms/internal/validation"
)

func (app *App) handleListUsers(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, app.State.Users())
}

type userPayload struct {
	Name        string   `json:"name"`
	Initials    string   `json:"initials"`
	Role        string   `json:"role"`
	Department  string   `json:"department"`
	Permissions []string `json:"permissions"`
	Password    string   `json:"password,omitempty"`
}

func validateUserPayload(p userPayload) error {
	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "name", p.Name)
	validation.RequireField(ve, "initials", p.Initials)
	validation.ValidateEnum(ve, "role", p.Role, validation.ValidRoles)
	for _, perm := range p.Permissions {
		validation.ValidateEnum(ve, "permissions", perm, models.UserPermissions)
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (app *App) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("manage_users") {
		response.Err(w, "Not allowed", 403)
		return
	}

	var p userPayload
	if err := response.DecodeBody(r, &p); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if err := validateUserPayload(p); err != nil {
		writeErr(w, err)
		return
	}

	u := models.User{
		Name:        p.Name,
		Initials:    p.Initials,
		Role:        p.Role,
		Department:  p.Department,
		Permissions: p.Permissions,
	}
	if p.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			response.Err(w, "Failed to hash password", 500)
			return
		}
		u.PasswordHash = string(hash)
	}

	created, err := app.State.AddUser(u)
	if err != nil {
		writeErr(w, err)
		return
	}
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionCreate, "users", created.ID, "Created user "+created.Name)
	w.WriteHeader(201)
	response.JSON(w, created)
}

func (app *App) handleUpdateUser(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("manage_users") {
		response.Err(w, "Not allowed", 403)
		return
	}

	var p userPayload
	if err := response.DecodeBody(r, &p); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if err := validateUserPayload(p); err != nil {
		writeErr(w, err)
		return
	}

	updated, err := app.State.UpdateUser(models.User{
		ID:          id,
		Name:        p.Name,
		Initials:    p.Initials,
		Role:        p.Role,
		Department:  p.Department,
		Permissions: p.Permissions,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	app.Sessions.RefreshUser(updated)
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionUpdate, "users", id, "Updated user "+updated.Name)
	response.JSON(w, updated)
}

func (app *App) handleDeleteUser(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !sess.User.HasPermission("manage_users") {
		response.Err(w, "Not allowed", 403)
		return
	}
	if sess.User.ID == id {
		response.Err(w, "Cannot delete your own account", 400)
		return
	}

	if err := app.State.DeleteUser(id); err != nil {
		writeErr(w, err)
		return
	}
	app.Sessions.DropUser(id)
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionDelete, "users", id, "Deleted user")
	response.JSON(w, map[string]string{"status": "deleted"})
}
