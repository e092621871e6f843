package validation

// Common enum values - these MUST match DB CHECK constraints in the store package.
var (
	ValidRoles             = []string{"employee", "authorized", "admin"}
	ValidFrequencies       = []string{"daily", "weekly", "monthly"}
	ValidChecklistStatuses = []string{"pending", "in-progress", "completed"}
	ValidRequestPriorities = []string{"low", "medium", "high"}
	ValidRequestStatuses   = []string{"open", "in-progress", "completed"}
	ValidMessageTypes      = []string{"general", "request", "checklist"}
	ValidAlertTypes        = []string{"info", "overdue", "urgent", "critical"}
)
