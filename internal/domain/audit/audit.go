package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the type of audit event.
type Category string

const (
	CategoryReservation Category = "reservation"
	CategoryIncident    Category = "incident"
	CategoryAccount     Category = "account"
	CategorySecurity    Category = "security"
	CategorySystem      Category = "system"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionReport  Action = "report"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event represents a single audit log entry. Every reservation transition
// emits one; recording is fire-and-forget and never rolls back the transition
// that triggered it.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorRole    string    `json:"actor_role"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Message      string    `json:"message"`
	Detail       string    `json:"detail"`
}

// NewEvent creates a new audit event with the current timestamp.
// PRE: actorID is non-empty
// POST: Returns an Event with a generated ID and the provided fields
func NewEvent(actorID, actorRole string, category Category, action Action) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Category:  category,
		Action:    action,
		Severity:  SeverityInfo,
		ActorID:   actorID,
		ActorRole: actorRole,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
// PRE: resourceType and resourceID are non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithMessage sets the event message and optional detail.
// PRE: message is non-empty
// POST: Event message fields are set
func (e Event) WithMessage(message, detail string) Event {
	e.Message = message
	e.Detail = detail
	return e
}
