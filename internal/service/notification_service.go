package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/asten-tickets/triage-service/internal/domain"
	"github.com/asten-tickets/triage-service/internal/events"
	"github.com/asten-tickets/triage-service/internal/repository"
	apperrors "github.com/asten-tickets/triage-service/pkg/errorutil"
)

// NotificationService records per-recipient notifications produced by
// lifecycle events and serves the inbox. Delivery is best-effort: a failed
// notification is logged and never propagated back to the triggering
// operation.
type NotificationService struct {
	repo   repository.NotificationRepository
	hub    *NotificationHub
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo repository.NotificationRepository, hub *NotificationHub, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, hub: hub, logger: logger}
}

// RegisterEventHandlers wires the service to lifecycle events.
func (s *NotificationService) RegisterEventHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onTicketStatusChanged)
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
}

func (s *NotificationService) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	s.deliver(ctx, domain.Notification{
		RecipientID: payload.SubmitterID,
		Type:        domain.NotificationTicketCreated,
		Title:       "Ticket received",
		Message:     fmt.Sprintf("Your ticket %q was created and routed to %s.", payload.Title, payload.Category),
		EntityType:  "ticket",
		EntityID:    event.TicketID,
		ActionLink:  "/tickets/" + event.TicketID,
	})
	return nil
}

func (s *NotificationService) onTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	s.deliver(ctx, domain.Notification{
		RecipientID: payload.SubmitterID,
		Type:        domain.NotificationTicketStatusChanged,
		Title:       "Ticket status updated",
		Message:     fmt.Sprintf("Ticket %q moved from %s to %s.", payload.Title, payload.OldStatus.Label(), payload.NewStatus.Label()),
		EntityType:  "ticket",
		EntityID:    event.TicketID,
		ActionLink:  "/tickets/" + event.TicketID,
	})
	return nil
}

func (s *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	title := "Ticket assigned to you"
	message := fmt.Sprintf("Ticket %q was assigned to you (team %s).", payload.Title, payload.Team)
	if payload.Transferred {
		title = "Ticket transferred to you"
		message = fmt.Sprintf("Ticket %q was transferred to you (team %s).", payload.Title, payload.Team)
	}
	s.deliver(ctx, domain.Notification{
		RecipientID: payload.AssigneeID,
		Type:        domain.NotificationTicketAssigned,
		Title:       title,
		Message:     message,
		EntityType:  "assignment",
		EntityID:    payload.AssignmentID,
		ActionLink:  "/tickets/" + event.TicketID,
	})
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, notification domain.Notification) {
	if notification.RecipientID == "" {
		return
	}
	notification.Status = domain.NotificationStatusUnread
	if err := s.repo.Create(ctx, &notification); err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("recipient_id", notification.RecipientID),
			zap.String("type", string(notification.Type)),
			zap.Error(err))
		return
	}
	if s.hub != nil {
		s.hub.Publish(notification)
	}
}

// Notify records an ad-hoc system notification.
func (s *NotificationService) Notify(ctx context.Context, recipientID, title, message string) {
	s.deliver(ctx, domain.Notification{
		RecipientID: recipientID,
		Type:        domain.NotificationSystem,
		Title:       title,
		Message:     message,
	})
}

// List returns the recipient's inbox, newest first, archived excluded.
func (s *NotificationService) List(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.repo.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// ListUnread returns unread notifications, newest first.
func (s *NotificationService) ListUnread(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	items, err := s.repo.ListUnread(ctx, recipientID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// CountUnread returns the unread badge count.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkRead marks one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if err := s.repo.MarkRead(ctx, notificationID, recipientID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient as read and
// returns how many were affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// Archive hides a notification from the inbox without deleting it.
func (s *NotificationService) Archive(ctx context.Context, recipientID, notificationID string) error {
	if err := s.repo.Archive(ctx, notificationID, recipientID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Stream opens a live notification feed for the recipient. The channel
// closes when ctx is cancelled.
func (s *NotificationService) Stream(ctx context.Context, recipientID string) <-chan domain.Notification {
	return s.hub.Subscribe(ctx, recipientID)
}
