package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asten-tickets/triage-service/internal/classifier"
	"github.com/asten-tickets/triage-service/internal/domain"
	"github.com/asten-tickets/triage-service/internal/events"
	"github.com/asten-tickets/triage-service/internal/repository"
	apperrors "github.com/asten-tickets/triage-service/pkg/errorutil"
)

// LifecycleService coordinates the ticket lifecycle: submission with
// auto-classification, status cycling, assignment handoff, and category
// corrections. Side-effect notifications travel through the event dispatcher.
type LifecycleService struct {
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	corrections repository.CorrectionRepository
	classifier  classifier.Client
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	CorrectionRepo repository.CorrectionRepository
	Classifier     classifier.Client
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// SubmitInput describes a ticket submission payload.
type SubmitInput struct {
	Title       string
	Description string
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		corrections: deps.CorrectionRepo,
		classifier:  deps.Classifier,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// SubmitTicket classifies and persists a new ticket. Classifier failure never
// blocks creation: the ticket falls back to the uncategorized category with
// zero confidence and is flagged for mandatory human review.
func (s *LifecycleService) SubmitTicket(ctx context.Context, submitter domain.Identity, input SubmitInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	ticket := &domain.Ticket{
		Title:          title,
		Description:    description,
		SubmitterID:    submitter.UID,
		SubmitterEmail: submitter.Email,
		Status:         domain.TicketStatusNew,
	}

	prediction, err := s.classifier.Predict(ctx, title, description)
	if err != nil {
		s.logger.Warn("classifier unavailable, falling back",
			zap.String("title", title), zap.Error(err))
		ticket.Category = domain.FallbackCategory
		ticket.Confidence = 0
		ticket.NeedsHumanReview = true
	} else {
		ticket.Category = prediction.PredictedCategory
		ticket.Confidence = prediction.Confidence
		ticket.NeedsHumanReview = prediction.NeedsHumanReview
		ticket.Keywords = prediction.Keywords
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UID: submitter.UID, Role: submitter.Role},
		Payload: events.TicketCreatedPayload{
			Title:            ticket.Title,
			SubmitterID:      ticket.SubmitterID,
			Category:         ticket.Category,
			Confidence:       ticket.Confidence,
			NeedsHumanReview: ticket.NeedsHumanReview,
		},
	})
	return ticket, nil
}

// ChangeStatus advances a ticket along the fixed status cycle and notifies
// the submitter. Cycling a CLOSED ticket back to NEW is intentional
// self-service reopening.
func (s *LifecycleService) ChangeStatus(ctx context.Context, actor domain.Identity, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	newStatus := domain.NextStatus(oldStatus)
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, newStatus); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Status = newStatus

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{UID: actor.UID, Role: actor.Role},
		Payload: events.TicketStatusChangedPayload{
			Title:       ticket.Title,
			SubmitterID: ticket.SubmitterID,
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
		},
	})
	return ticket, nil
}

// AssignTicket ends any active assignment as COMPLETED and appends a new
// ACTIVE one. A never-assigned ticket is not an error. Returns the new
// assignment.
func (s *LifecycleService) AssignTicket(ctx context.Context, actor domain.Identity, ticketID, assigneeID, team string, comment *string) (*domain.Assignment, error) {
	return s.handOff(ctx, actor, ticketID, assigneeID, team, comment, false)
}

// TransferAssignment is AssignTicket with audit distinction: the superseded
// record is marked TRANSFERRED and carries the transfer comment; the new
// record does not.
func (s *LifecycleService) TransferAssignment(ctx context.Context, actor domain.Identity, ticketID, newAssigneeID, newTeam string, comment *string) (*domain.Assignment, error) {
	return s.handOff(ctx, actor, ticketID, newAssigneeID, newTeam, comment, true)
}

func (s *LifecycleService) handOff(ctx context.Context, actor domain.Identity, ticketID, assigneeID, team string, comment *string, transfer bool) (*domain.Assignment, error) {
	if strings.TrimSpace(assigneeID) == "" {
		return nil, apperrors.NewValidationError("assignee required", nil)
	}
	if strings.TrimSpace(team) == "" {
		return nil, apperrors.NewValidationError("team required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	next := &domain.Assignment{
		TicketID:   ticket.ID,
		AssigneeID: assigneeID,
		AssignerID: actor.UID,
		Team:       team,
	}

	endState := domain.AssignmentStateCompleted
	var endComment *string
	if transfer {
		endState = domain.AssignmentStateTransferred
		endComment = comment
	} else {
		next.Comment = comment
	}

	if err := s.assignments.Supersede(ctx, ticket.ID, endState, endComment, next); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.Actor{UID: actor.UID, Role: actor.Role},
		Payload: events.TicketAssignedPayload{
			Title:        ticket.Title,
			AssignmentID: next.ID,
			AssigneeID:   next.AssigneeID,
			AssignerID:   next.AssignerID,
			Team:         next.Team,
			Transferred:  transfer,
		},
	})
	return next, nil
}

// CorrectCategory overwrites a ticket's category, records the correction in
// the audit trail, and best-effort reports predicted-vs-actual feedback to
// the model when the original prediction carried confidence.
func (s *LifecycleService) CorrectCategory(ctx context.Context, corrector domain.Identity, ticketID, newCategory string) (*domain.Ticket, error) {
	newCategory = strings.TrimSpace(newCategory)
	if newCategory == "" {
		return nil, apperrors.NewValidationError("category required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	oldCategory := ticket.Category
	if err := s.tickets.UpdateCategory(ctx, ticket.ID, newCategory, true); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Category = newCategory
	ticket.CategoryCorrected = true

	correction := &domain.CategoryCorrection{
		TicketID:    ticket.ID,
		OldCategory: oldCategory,
		NewCategory: newCategory,
		CorrectorID: corrector.UID,
	}
	if err := s.corrections.Create(ctx, correction); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Confidence > 0 && oldCategory != newCategory {
		feedback := classifier.Feedback{
			TicketID:          ticket.ID,
			PredictedCategory: oldCategory,
			ActualCategory:    newCategory,
			Confidence:        ticket.Confidence,
		}
		if err := s.classifier.SendFeedback(ctx, feedback); err != nil {
			s.logger.Warn("prediction feedback failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventCategoryCorrected,
		TicketID: ticket.ID,
		Actor:    events.Actor{UID: corrector.UID, Role: corrector.Role},
		Payload: events.CategoryCorrectedPayload{
			OldCategory: oldCategory,
			NewCategory: newCategory,
			CorrectorID: corrector.UID,
		},
	})
	return ticket, nil
}

// TicketDetail pairs a ticket with its active assignment, when one exists.
type TicketDetail struct {
	Ticket           *domain.Ticket
	ActiveAssignment *domain.Assignment
}

// GetTicket fetches a ticket and its current assignment, restricting
// non-admin callers to their own tickets.
func (s *LifecycleService) GetTicket(ctx context.Context, caller domain.Identity, ticketID string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if caller.Role != domain.RoleAdmin && ticket.SubmitterID != caller.UID {
		return nil, apperrors.NewForbidden("access denied")
	}
	active, err := s.assignments.GetActiveByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Ticket: ticket, ActiveAssignment: active}, nil
}

// ListTickets lists tickets; non-admin callers only see their own.
func (s *LifecycleService) ListTickets(ctx context.Context, caller domain.Identity, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin {
		uid := caller.UID
		filter.SubmitterID = &uid
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAssignments returns the full assignment history of a ticket, oldest
// first.
func (s *LifecycleService) ListAssignments(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	history, err := s.assignments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
