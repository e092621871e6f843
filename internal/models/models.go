package models

import "time"

// APIResponse is the standard JSON envelope for all API responses.
type APIResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total int `json:"total,omitempty"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// User roles, ordered by increasing privilege.
const (
	RoleEmployee   = "employee"
	RoleAuthorized = "authorized"
	RoleAdmin      = "admin"
)

// Checklist statuses. Transitions are monotonic: pending -> in-progress -> completed.
const (
	ChecklistPending    = "pending"
	ChecklistInProgress = "in-progress"
	ChecklistCompleted  = "completed"
)

// Maintenance request statuses.
const (
	RequestOpen       = "open"
	RequestInProgress = "in-progress"
	RequestCompleted  = "completed"
)

// Message type tags.
const (
	MessageGeneral   = "general"
	MessageRequest   = "request"
	MessageChecklist = "checklist"
)

// Alert severities.
const (
	AlertInfo     = "info"
	AlertOverdue  = "overdue"
	AlertUrgent   = "urgent"
	AlertCritical = "critical"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Initials     string     `json:"initials"`
	Role         string     `json:"role"`
	Department   string     `json:"department"`
	Permissions  []string   `json:"permissions,omitempty"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// CanOperate reports whether the user may start checklists and toggle items.
func (u *User) CanOperate() bool {
	return u.Role == RoleAdmin || u.Role == RoleAuthorized
}

// HasPermission reports whether the user carries the named permission grant.
// Admins implicitly hold every permission.
func (u *User) HasPermission(perm string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Assignee identifies the user a checklist or request is assigned to.
// A nil *Assignee means unassigned; there is no empty-string sentinel.
type Assignee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ChecklistItem struct {
	ID                  string     `json:"id"`
	Description         string     `json:"description"`
	Completed           bool       `json:"completed"`
	CompletedBy         string     `json:"completed_by,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	NonCompliant        bool       `json:"non_compliant"`
	NonComplianceReason string     `json:"non_compliance_reason,omitempty"`
}

// HasNotes reports whether the item carries a non-compliance note.
func (i ChecklistItem) HasNotes() bool {
	return i.NonCompliant && i.NonComplianceReason != ""
}

// Resolved reports whether the item satisfies the checklist completion guard:
// completed, or non-compliant with a justification.
func (i ChecklistItem) Resolved() bool {
	return i.Completed || (i.NonCompliant && i.NonComplianceReason != "")
}

type Checklist struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Department  string          `json:"department"`
	Frequency   string          `json:"frequency"`
	Status      string          `json:"status"`
	Items       []ChecklistItem `json:"items"`
	AssignedTo  *Assignee       `json:"assigned_to,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type MaintenanceRequest struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Department      string     `json:"department"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	RequestedBy     string     `json:"requested_by,omitempty"`
	RequestedByName string     `json:"requested_by_name,omitempty"`
	AssignedTo      *Assignee  `json:"assigned_to,omitempty"`
	ImageURLs       []string   `json:"image_urls,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type Message struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	From      string    `json:"from"`
	To        []string  `json:"to"`
	ThreadID  string    `json:"thread_id"`
	Read      bool      `json:"read"`
	Type      string    `json:"type"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a derived grouping of messages sharing a thread id,
// ordered by creation time ascending. Never persisted.
type Conversation struct {
	ThreadID string    `json:"thread_id"`
	Subject  string    `json:"subject"`
	Messages []Message `json:"messages"`
}

type Alert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Read        bool      `json:"read"`
	RelatedID   string    `json:"related_id,omitempty"`
	RelatedType string    `json:"related_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Departments is the fixed set of plant departments checklists and requests
// are filed under. "All" is the filter sentinel, not a department.
var Departments = []string{
	"Cut Shop",
	"Powder Coat",
	"Weld Shop",
	"Ped Set",
	"Final Assembly",
	"Maintenance",
	"Quality Control",
}

// UserPermissions are the grants assignable to non-admin users.
var UserPermissions = []string{
	"view_all_checklists",
	"create_checklists",
	"delete_checklists",
	"assign_checklists",
	"manage_users",
	"delete_requests",
	"view_admin_panel",
}
