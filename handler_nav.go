package main

import (
	"net/http"

	"cmms/internal/response"
	"cmms/internal/session"
)

func (app *App) handleGetNav(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, map[string]string{
		"view":       sess.View,
		"department": sess.Department,
	})
}

func (app *App) handleSetView(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		writeErr(w, session.ErrNoSession)
		return
	}
	var req struct {
		View string `json:"view"`
	}
	if err := response.DecodeBody(r, &req); err != nil || req.View == "" {
		response.Err(w, "View is required", 400)
		return
	}
	if err := app.Sessions.SetView(cookie.Value, req.View); err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"view": req.View})
}

func (app *App) handleBack(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		writeErr(w, session.ErrNoSession)
		return
	}
	view, err := app.Sessions.Back(cookie.Value)
	if err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"view": view})
}

func (app *App) handleSetDepartment(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		writeErr(w, session.ErrNoSession)
		return
	}
	var req struct {
		Department string `json:"department"`
	}
	if err := response.DecodeBody(r, &req); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if err := app.Sessions.SetDepartment(cookie.Value, req.Department); err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"department": req.Department})
}
