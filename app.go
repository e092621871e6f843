package main

import (
	"errors"
	"net/http"

	"cmms/internal/response"
	"cmms/internal/session"
	"cmms/internal/state"
	"cmms/internal/store"
	"cmms/internal/validation"
	"cmms/internal/websocket"
)

const sessionCookie = "cmms_session"

// App holds the wired dependencies for every handler. Nothing reaches for
// shared state ambiently; it all flows through here.
type App struct {
	Store      *store.Store
	State      *state.App
	Sessions   *session.Manager
	Hub        *websocket.Hub
	UploadsDir string
}

// currentSession resolves the request's session from its cookie.
func (app *App) currentSession(r *http.Request) (session.Session, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return session.Session{}, session.ErrNoSession
	}
	return app.Sessions.Get(cookie.Value)
}

// writeErr maps domain errors onto HTTP status codes with a JSON body.
func writeErr(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	var ves *validation.ValidationErrors
	switch {
	case errors.As(err, &ve):
		response.Err(w, ve.Error(), 400)
	case errors.As(err, &ves):
		response.Err(w, ves.Error(), 400)
	case errors.Is(err, state.ErrNotFound):
		response.Err(w, "Not found", 404)
	case errors.Is(err, state.ErrNotAllowed):
		response.Err(w, "Not allowed", 403)
	case errors.Is(err, state.ErrItemsUnresolved),
		errors.Is(err, state.ErrReasonRequired),
		errors.Is(err, state.ErrItemConflict):
		response.Err(w, err.Error(), 409)
	case errors.Is(err, session.ErrNoSession):
		response.Err(w, "Unauthorized", 401)
	default:
		response.Err(w, "Internal error", 500)
	}
}
