package dto

import (
	"time"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// NotificationResponse represents one inbox entry.
type NotificationResponse struct {
	ID         string                    `json:"id"`
	Type       domain.NotificationType   `json:"type"`
	Title      string                    `json:"title"`
	Message    string                    `json:"message"`
	EntityType string                    `json:"entity_type,omitempty"`
	EntityID   string                    `json:"entity_id,omitempty"`
	ActionLink string                    `json:"action_link,omitempty"`
	Status     domain.NotificationStatus `json:"status"`
	CreatedAt  time.Time                 `json:"created_at"`
	ReadAt     *time.Time                `json:"read_at,omitempty"`
}

// UnreadCountResponse carries the badge count.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse reports how many entries were affected.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		ActionLink: n.ActionLink,
		Status:     n.Status,
		CreatedAt:  n.CreatedAt,
		ReadAt:     n.ReadAt,
	}
}

// NewNotificationListResponse maps a slice of notifications.
func NewNotificationListResponse(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for i := range items {
		out = append(out, NewNotificationResponse(&items[i]))
	}
	return out
}
