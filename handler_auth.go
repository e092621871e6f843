package main

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"cmms/internal/audit"
	"cmms/internal/response"
	"cmms/internal/session"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (app *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Err(w, "Username and password are required", 400)
		return
	}

	sess, err := app.Sessions.Login(app.State.Users(), req.Username, req.Password)
	switch {
	case errors.Is(err, session.ErrUserNotFound):
		response.Err(w, "User not found", 401)
		return
	case errors.Is(err, session.ErrIncorrectPassword):
		response.Err(w, "Incorrect password", 401)
		return
	case err != nil:
		response.Err(w, "Login failed", 500)
		return
	}

	app.State.RecordLogin(sess.User.ID)
	audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionLogin, "auth", sess.User.ID, "Logged in")

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	w.Header().Set("Content-Type", "application/json")
	response.JSON(w, sess)
}

func (app *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if sess, err := app.Sessions.Get(cookie.Value); err == nil {
			audit.Log(app.Store.DB(), app.Hub, sess.User.Name, audit.ActionLogout, "auth", sess.User.ID, "Logged out")
		}
		app.Sessions.Logout(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.Header().Set("Content-Type", "application/json")
	response.JSON(w, map[string]string{"status": "ok"})
}

func (app *App) handleMe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, sess)
}

// handleSetPassword stores a new bcrypt hash for the user. Users may change
// their own password; admins may change anyone's.
func (app *App) handleSetPassword(w http.ResponseWriter, r *http.Request, userID string) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	if sess.User.ID != userID && sess.User.Role != "admin" {
		response.Err(w, "Not allowed", 403)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := response.DecodeBody(r, &req); err != nil || len(req.Password) < 8 {
		response.Err(w, "Password must be at least 8 characters", 400)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Err(w, "Failed to hash password", 500)
		return
	}
	if err := app.State.SetUserPassword(userID, string(hash)); err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"status": "ok"})
}
