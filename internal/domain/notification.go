package domain

import "time"

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	NotificationTicketCreated       NotificationType = "ticket_created"
	NotificationTicketAssigned      NotificationType = "ticket_assigned"
	NotificationTicketStatusChanged NotificationType = "ticket_status_changed"
	NotificationSystem              NotificationType = "system"
)

// NotificationStatus tracks the read state of a notification.
type NotificationStatus string

const (
	NotificationStatusUnread   NotificationStatus = "UNREAD"
	NotificationStatusRead     NotificationStatus = "READ"
	NotificationStatusArchived NotificationStatus = "ARCHIVED"
)

// Notification is a recorded event directed at a specific user. Notifications
// are never deleted; archiving flips the status in place.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	EntityType  string
	EntityID    string
	ActionLink  string
	Status      NotificationStatus
	CreatedAt   time.Time
	ReadAt      *time.Time
}
