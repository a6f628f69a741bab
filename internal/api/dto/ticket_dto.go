package dto

import (
	"time"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,min=10"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string  `json:"assignee_id" validate:"required"`
	Team       string  `json:"team" validate:"required"`
	Comment    *string `json:"comment" validate:"omitempty,max=1000"`
}

// TransferTicketRequest payload.
type TransferTicketRequest struct {
	AssigneeID string  `json:"assignee_id" validate:"required"`
	Team       string  `json:"team" validate:"required"`
	Comment    *string `json:"comment" validate:"omitempty,max=1000"`
}

// CorrectCategoryRequest payload.
type CorrectCategoryRequest struct {
	Category string `json:"category" validate:"required,max=100"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	SubmitterID       string              `json:"submitter_id"`
	SubmitterEmail    string              `json:"submitter_email,omitempty"`
	Status            domain.TicketStatus `json:"status"`
	StatusLabel       string              `json:"status_label"`
	Category          string              `json:"category"`
	Confidence        float64             `json:"confidence"`
	CategoryCorrected bool                `json:"category_corrected"`
	NeedsHumanReview  bool                `json:"needs_human_review"`
	Keywords          []string            `json:"keywords,omitempty"`
	SubmittedAt       time.Time           `json:"submitted_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// AssignmentResponse represents one assignment record.
type AssignmentResponse struct {
	ID         string                 `json:"id"`
	TicketID   string                 `json:"ticket_id"`
	AssigneeID string                 `json:"assignee_id"`
	AssignerID string                 `json:"assigner_id"`
	Team       string                 `json:"team"`
	State      domain.AssignmentState `json:"state"`
	Comment    *string                `json:"comment,omitempty"`
	AssignedAt time.Time              `json:"assigned_at"`
	EndedAt    *time.Time             `json:"ended_at,omitempty"`
}

// TicketDetailResponse is a ticket with its current assignment inlined.
type TicketDetailResponse struct {
	TicketResponse
	ActiveAssignment *AssignmentResponse `json:"active_assignment,omitempty"`
}

// NewTicketDetailResponse maps a ticket plus its active assignment.
func NewTicketDetailResponse(t *domain.Ticket, active *domain.Assignment) TicketDetailResponse {
	out := TicketDetailResponse{TicketResponse: NewTicketResponse(t)}
	if active != nil {
		resp := NewAssignmentResponse(active)
		out.ActiveAssignment = &resp
	}
	return out
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		SubmitterID:       t.SubmitterID,
		SubmitterEmail:    t.SubmitterEmail,
		Status:            t.Status,
		StatusLabel:       t.Status.Label(),
		Category:          t.Category,
		Confidence:        t.Confidence,
		CategoryCorrected: t.CategoryCorrected,
		NeedsHumanReview:  t.NeedsHumanReview,
		Keywords:          t.Keywords,
		SubmittedAt:       t.SubmittedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// NewTicketListResponse maps a slice of domain tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// NewAssignmentResponse maps a domain assignment.
func NewAssignmentResponse(a *domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         a.ID,
		TicketID:   a.TicketID,
		AssigneeID: a.AssigneeID,
		AssignerID: a.AssignerID,
		Team:       a.Team,
		State:      a.State,
		Comment:    a.Comment,
		AssignedAt: a.AssignedAt,
		EndedAt:    a.EndedAt,
	}
}

// NewAssignmentListResponse maps a slice of assignments.
func NewAssignmentListResponse(history []domain.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(history))
	for i := range history {
		out = append(out, NewAssignmentResponse(&history[i]))
	}
	return out
}
