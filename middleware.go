package main

import (
	"log"
	"net/http"
	"time"

	"cmms/internal/response"
)

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// requireAuth rejects API requests without a live session. Login and the
// websocket upgrade (which authenticates on its own cookie) are exempt.
func (app *App) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/auth/login" || path == "/auth/logout" || path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		if _, err := app.currentSession(r); err != nil {
			w.Header().Set("Content-Type", "application/json")
			response.Err(w, "Unauthorized", 401)
			return
		}
		next.ServeHTTP(w, r)
	})
}
