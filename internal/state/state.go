// Package state holds the authoritative in-memory collections and the
// mutation operations over them. Every mutation follows the same sequence:
// validate against current state, persist through the gateway, then commit
// to memory. A failed persist leaves memory untouched, so the collections
// never diverge from the store.
package state

import (
	"errors"
	"log"
	"sync"

	"cmms/internal/models"
	"cmms/internal/store"
)

var (
	// ErrNotFound means the target entity is not in the collection.
	ErrNotFound = errors.New("not found")
	// ErrNotAllowed means the actor's role does not permit the operation,
	// or the operation would move a status backwards.
	ErrNotAllowed = errors.New("not allowed")
	// ErrItemsUnresolved means the completion guard failed: at least one
	// item is neither completed nor non-compliant with a reason.
	ErrItemsUnresolved = errors.New("all items must be completed or marked non-compliant with a reason")
	// ErrReasonRequired means an item was marked non-compliant without a
	// justification.
	ErrReasonRequired = errors.New("non-compliance reason is required")
	// ErrItemConflict means an incoming item carries both the completed and
	// non-compliant flags; the pair is mutually exclusive.
	ErrItemConflict = errors.New("an item cannot be both completed and non-compliant")
)

// Notifier receives the user-visible success/failure notice every persisted
// mutation emits. Implementations must not block; the notice is an
// observable side effect, never part of the state change itself.
type Notifier interface {
	Success(title string)
	Failure(title string)
}

// LogNotifier writes notices to the process log. Used standalone in tests
// and as the fallback when no hub is connected.
type LogNotifier struct{}

func (LogNotifier) Success(title string) { log.Printf("notify: %s", title) }
func (LogNotifier) Failure(title string) { log.Printf("notify (failed): %s", title) }

// App is the entity state store. It exclusively owns the in-memory
// collections; all other components read through its accessors and mutate
// through its operations. The gateway and notifier are injected, never
// looked up ambiently.
type App struct {
	mu       sync.RWMutex
	gw       *store.Store
	notifier Notifier

	users      []models.User
	checklists []models.Checklist
	requests   []models.MaintenanceRequest
	messages   []models.Message
	alerts     []models.Alert
}

// New creates an empty state store over the given gateway.
func New(gw *store.Store, n Notifier) *App {
	if n == nil {
		n = LogNotifier{}
	}
	return &App{gw: gw, notifier: n}
}

// Load populates every collection from the store. Individual collection
// failures degrade to empty slices; the joined error lets the caller show a
// one-time offline notice.
func (a *App) Load() error {
	users, uerr := a.gw.LoadUsers()
	checklists, cerr := a.gw.LoadChecklists()
	requests, rerr := a.gw.LoadRequests()
	messages, merr := a.gw.LoadMessages()

	a.mu.Lock()
	a.users = users
	a.checklists = checklists
	a.requests = requests
	a.messages = messages
	a.mu.Unlock()

	err := errors.Join(uerr, cerr, rerr, merr)
	if err != nil {
		log.Printf("state: load degraded: %v", err)
	}
	return err
}

// Users returns a copy of the user collection.
func (a *App) Users() []models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.User, len(a.users))
	copy(out, a.users)
	return out
}

// Checklists returns a copy of the checklist collection.
func (a *App) Checklists() []models.Checklist {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Checklist, len(a.checklists))
	copy(out, a.checklists)
	return out
}

// Requests returns a copy of the request collection.
func (a *App) Requests() []models.MaintenanceRequest {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.MaintenanceRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

// Messages returns a copy of the message collection.
func (a *App) Messages() []models.Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Alerts returns a copy of the alert collection.
func (a *App) Alerts() []models.Alert {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Alert, len(a.alerts))
	copy(out, a.alerts)
	return out
}

// notify reports the outcome of a persisted mutation.
func (a *App) notify(err error, ok, fail string) {
	if err != nil {
		a.notifier.Failure(fail)
		return
	}
	a.notifier.Success(ok)
}

// statusRank orders checklist/request statuses for monotonicity checks.
func statusRank(status string) int {
	switch status {
	case models.ChecklistPending, models.RequestOpen:
		return 0
	case models.ChecklistInProgress:
		return 1
	case models.ChecklistCompleted:
		return 2
	}
	return 0
}
