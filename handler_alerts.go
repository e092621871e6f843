package main

import (
	"net/http"
	"time"

	"cmms/internal/response"
	"cmms/internal/views"
)

func (app *App) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		for _, al := range app.State.GenerateAlerts(time.Now()) {
			app.Hub.BroadcastChange("alert", "create", al.ID)
		}
	}
	alerts := app.State.Alerts()
	response.JSON(w, map[string]any{
		"alerts": alerts,
		"unread": views.UnreadAlerts(alerts),
	})
}

func (app *App) handleMarkAlertRead(w http.ResponseWriter, r *http.Request, id string) {
	if err := app.State.MarkAlertRead(id); err != nil {
		writeErr(w, err)
		return
	}
	response.JSON(w, map[string]string{"status": "read"})
}
