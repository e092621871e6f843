package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"cmms/internal/config"
	"cmms/internal/session"
	"cmms/internal/state"
	"cmms/internal/store"
	"cmms/internal/websocket"
)

func main() {
	cfgPath := flag.String("config", "cmms.yaml", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal("config: ", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	gw, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("DB init failed: ", err)
	}
	gw.Seed()

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Fatal("uploads dir: ", err)
	}

	hub := websocket.NewHub()
	st := state.New(gw, hub)
	if err := st.Load(); err != nil {
		// Degraded start: collections are empty, the UI shows offline mode.
		hub.Failure("Error loading data — using offline mode")
	}

	app := &App{
		Store:      gw,
		State:      st,
		Sessions:   session.NewManager(cfg.TTL()),
		Hub:        hub,
		UploadsDir: cfg.UploadsDir,
	}

	// Regenerate alerts shortly after start, then every 5 minutes.
	go func() {
		time.Sleep(5 * time.Second)
		for {
			if created := st.GenerateAlerts(time.Now()); len(created) > 0 {
				hub.BroadcastChange("alert", "create", len(created))
			}
			time.Sleep(5 * time.Minute)
		}
	}()

	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if _, err := app.currentSession(r); err != nil {
			http.Error(w, "Unauthorized", 401)
			return
		}
		websocket.HandleWebSocket(hub, w, r)
	})

	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		app.handleServeFile(w, r, strings.TrimPrefix(r.URL.Path, "/files/"))
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			app.handleLogin(w, r)
		} else {
			http.Error(w, "Method not allowed", 405)
		}
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			app.handleLogout(w, r)
		} else {
			http.Error(w, "Method not allowed", 405)
		}
	})
	mux.HandleFunc("/auth/me", app.handleMe)

	// API routes - simple path-switch router.
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
		path = strings.TrimSuffix(path, "/")
		parts := strings.Split(path, "/")

		switch {
		// Dashboard
		case path == "dashboard" && r.Method == "GET":
			app.handleDashboard(w, r)
		case path == "activity" && r.Method == "GET":
			app.handleRecentActivity(w, r)

		// Session & navigation
		case path == "nav" && r.Method == "GET":
			app.handleGetNav(w, r)
		case path == "nav/view" && r.Method == "PUT":
			app.handleSetView(w, r)
		case path == "nav/back" && r.Method == "POST":
			app.handleBack(w, r)
		case path == "nav/department" && r.Method == "PUT":
			app.handleSetDepartment(w, r)

		// Users
		case parts[0] == "users" && len(parts) == 1 && r.Method == "GET":
			app.handleListUsers(w, r)
		case parts[0] == "users" && len(parts) == 1 && r.Method == "POST":
			app.handleCreateUser(w, r)
		case parts[0] == "users" && len(parts) == 2 && r.Method == "PUT":
			app.handleUpdateUser(w, r, parts[1])
		case parts[0] == "users" && len(parts) == 2 && r.Method == "DELETE":
			app.handleDeleteUser(w, r, parts[1])
		case parts[0] == "users" && len(parts) == 3 && parts[2] == "password" && r.Method == "PUT":
			app.handleSetPassword(w, r, parts[1])

		// Checklists
		case parts[0] == "checklists" && len(parts) == 1 && r.Method == "GET":
			app.handleListChecklists(w, r)
		case parts[0] == "checklists" && len(parts) == 1 && r.Method == "POST":
			app.handleCreateChecklist(w, r)
		case parts[0] == "checklists" && len(parts) == 2 && r.Method == "GET":
			app.handleGetChecklist(w, r, parts[1])
		case parts[0] == "checklists" && len(parts) == 2 && r.Method == "PUT":
			app.handleUpdateChecklist(w, r, parts[1])
		case parts[0] == "checklists" && len(parts) == 2 && r.Method == "DELETE":
			app.handleDeleteChecklist(w, r, parts[1])
		case parts[0] == "checklists" && len(parts) == 3 && parts[2] == "start" && r.Method == "POST":
			app.handleStartChecklist(w, r, parts[1])
		case parts[0] == "checklists" && len(parts) == 3 && parts[2] == "complete" && r.Method == "POST":
			app.handleCompleteChecklist(w, r, parts[1])
		case parts[0] == "checklists" && len(parts) == 3 && parts[2] == "assign" && r.Method == "POST":
			app.handleAssignChecklist(w, r, parts[1])
		case parts[0] == "checklists" && len(parts) == 5 && parts[2] == "items" && parts[4] == "toggle" && r.Method == "POST":
			app.handleToggleItem(w, r, parts[1], parts[3])
		case parts[0] == "checklists" && len(parts) == 5 && parts[2] == "items" && parts[4] == "noncompliance" && r.Method == "POST":
			app.handleToggleNonCompliance(w, r, parts[1], parts[3])

		// Maintenance requests
		case parts[0] == "requests" && len(parts) == 1 && r.Method == "GET":
			app.handleListRequests(w, r)
		case parts[0] == "requests" && len(parts) == 1 && r.Method == "POST":
			app.handleCreateRequest(w, r)
		case parts[0] == "requests" && len(parts) == 2 && r.Method == "PUT":
			app.handleUpdateRequest(w, r, parts[1])
		case parts[0] == "requests" && len(parts) == 2 && r.Method == "DELETE":
			app.handleDeleteRequest(w, r, parts[1])
		case parts[0] == "requests" && len(parts) == 3 && parts[2] == "status" && r.Method == "PUT":
			app.handleRequestStatus(w, r, parts[1])
		case parts[0] == "requests" && len(parts) == 3 && parts[2] == "assign" && r.Method == "POST":
			app.handleAssignRequest(w, r, parts[1])

		// Messages
		case parts[0] == "messages" && len(parts) == 1 && r.Method == "GET":
			app.handleListMessages(w, r)
		case parts[0] == "messages" && len(parts) == 1 && r.Method == "POST":
			app.handleSendMessage(w, r)
		case path == "messages/conversations" && r.Method == "GET":
			app.handleConversations(w, r)
		case parts[0] == "messages" && len(parts) == 3 && parts[2] == "reply" && r.Method == "POST":
			app.handleReplyMessage(w, r, parts[1])
		case parts[0] == "messages" && len(parts) == 3 && parts[2] == "forward" && r.Method == "POST":
			app.handleForwardMessage(w, r, parts[1])
		case parts[0] == "messages" && len(parts) == 3 && parts[2] == "read" && r.Method == "POST":
			app.handleMarkMessageRead(w, r, parts[1])

		// Alerts
		case parts[0] == "alerts" && len(parts) == 1 && r.Method == "GET":
			app.handleListAlerts(w, r)
		case parts[0] == "alerts" && len(parts) == 3 && parts[2] == "read" && r.Method == "POST":
			app.handleMarkAlertRead(w, r, parts[1])

		// Attachments
		case path == "attachments" && r.Method == "POST":
			app.handleUploadAttachment(w, r)

		// Export
		case parts[0] == "export" && len(parts) == 2 && r.Method == "GET":
			app.handleExport(w, r, parts[1])

		default:
			http.Error(w, `{"error":"Not found"}`, 404)
		}
	})

	handler := logging(app.requireAuth(mux))
	log.Printf("cmms listening on %s (db %s)", cfg.Addr, cfg.DBPath)
	log.Fatal(http.ListenAndServe(cfg.Addr, handler))
}
