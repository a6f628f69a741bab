package service

import (
	"context"
	"sync"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// NotificationHub fans live notifications out to connected stream listeners,
// keyed by recipient. Slow listeners are skipped rather than blocking the
// publisher.
type NotificationHub struct {
	mu        sync.RWMutex
	listeners map[string]map[chan domain.Notification]struct{}
}

// NewNotificationHub constructs an empty hub.
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		listeners: make(map[string]map[chan domain.Notification]struct{}),
	}
}

// Subscribe registers a listener for a recipient. The channel is closed and
// removed when ctx is cancelled, so an abandoned stream never leaks.
func (h *NotificationHub) Subscribe(ctx context.Context, recipientID string) <-chan domain.Notification {
	ch := make(chan domain.Notification, 16)

	h.mu.Lock()
	set, ok := h.listeners[recipientID]
	if !ok {
		set = make(map[chan domain.Notification]struct{})
		h.listeners[recipientID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if set, ok := h.listeners[recipientID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.listeners, recipientID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers a notification to every live listener of its recipient.
func (h *NotificationHub) Publish(notification domain.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.listeners[notification.RecipientID] {
		select {
		case ch <- notification:
		default:
		}
	}
}

// ListenerCount reports how many streams are open for a recipient.
func (h *NotificationHub) ListenerCount(recipientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[recipientID])
}
