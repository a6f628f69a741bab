package events

import (
	"time"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventCategoryCorrected   EventType = "category_corrected"
)

// Actor identifies who triggered an event. The system actor has an empty UID.
type Actor struct {
	UID  string      `json:"uid,omitempty"`
	Role domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title            string  `json:"title"`
	SubmitterID      string  `json:"submitter_id"`
	Category         string  `json:"category"`
	Confidence       float64 `json:"confidence"`
	NeedsHumanReview bool    `json:"needs_human_review"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Title       string              `json:"title"`
	SubmitterID string              `json:"submitter_id"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload. Transferred marks assignments created by a
// transfer rather than a plain reassignment.
type TicketAssignedPayload struct {
	Title        string `json:"title"`
	AssignmentID string `json:"assignment_id"`
	AssigneeID   string `json:"assignee_id"`
	AssignerID   string `json:"assigner_id"`
	Team         string `json:"team"`
	Transferred  bool   `json:"transferred"`
}

// CategoryCorrectedPayload payload.
type CategoryCorrectedPayload struct {
	OldCategory string `json:"old_category"`
	NewCategory string `json:"new_category"`
	CorrectorID string `json:"corrector_id"`
}
