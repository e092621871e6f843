package main

import (
	"net/http"
	"strconv"

	"cmms/internal/audit"
	"cmms/internal/response"
	"cmms/internal/views"
)

func (app *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, err := app.currentSession(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	stats := views.Stats(app.State.Checklists(), app.State.Requests(),
		app.State.Messages(), app.State.Alerts(), sess.User.Name)
	response.JSON(w, stats)
}

func (app *App) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := audit.Recent(app.Store.DB(), limit)
	if err != nil {
		response.Err(w, "Failed to load activity", 500)
		return
	}
	response.JSON(w, entries)
}
