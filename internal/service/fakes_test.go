package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/asten-tickets/triage-service/internal/classifier"
	"github.com/asten-tickets/triage-service/internal/domain"
	"github.com/asten-tickets/triage-service/internal/events"
	"github.com/asten-tickets/triage-service/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	order   []string
	failAll error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	ticket.ID = uuid.NewString()
	now := time.Now()
	ticket.SubmittedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) UpdateCategory(_ context.Context, id, category string, corrected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Category = category
	ticket.CategoryCorrected = corrected
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		ticket := r.tickets[id]
		if filter.SubmitterID != nil && ticket.SubmitterID != *filter.SubmitterID {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListWindow(_ context.Context, since *time.Time) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		ticket := r.tickets[id]
		if since != nil && ticket.SubmittedAt.Before(*since) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return 0, r.failAll
	}
	var count int64
	for _, ticket := range r.tickets {
		if !ticket.SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) CountOpen(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return 0, r.failAll
	}
	var count int64
	for _, ticket := range r.tickets {
		if ticket.Status != domain.TicketStatusClosed {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) AvgResolutionMinutes(_ context.Context) (float64, error) {
	if r.failAll != nil {
		return 0, r.failAll
	}
	return 0, nil
}

type fakeAssignmentRepo struct {
	mu      sync.Mutex
	records []*domain.Assignment
	failAll error
}

func (r *fakeAssignmentRepo) GetActiveByTicket(_ context.Context, ticketID string) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.TicketID == ticketID && a.State == domain.AssignmentStateActive {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Assignment{}
	for _, a := range r.records {
		if a.TicketID == ticketID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) ListSince(_ context.Context, since time.Time) ([]domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := []domain.Assignment{}
	for _, a := range r.records {
		if !a.AssignedAt.Before(since) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) Supersede(_ context.Context, ticketID string, endState domain.AssignmentState, endComment *string, next *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	now := time.Now()
	for _, a := range r.records {
		if a.TicketID == ticketID && a.State == domain.AssignmentStateActive {
			a.State = endState
			a.EndedAt = &now
			if endComment != nil {
				a.Comment = endComment
			}
		}
	}
	next.ID = uuid.NewString()
	next.State = domain.AssignmentStateActive
	next.AssignedAt = now
	clone := *next
	r.records = append(r.records, &clone)
	return nil
}

type fakeCorrectionRepo struct {
	mu      sync.Mutex
	records []domain.CategoryCorrection
	failAll error
}

func (r *fakeCorrectionRepo) Create(_ context.Context, correction *domain.CategoryCorrection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	correction.ID = uuid.NewString()
	correction.CorrectedAt = time.Now()
	r.records = append(r.records, *correction)
	return nil
}

func (r *fakeCorrectionRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.CategoryCorrection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.CategoryCorrection{}
	for _, c := range r.records {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCorrectionRepo) CountByOldCategory(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := map[string]int64{}
	for _, c := range r.records {
		out[c.OldCategory]++
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records []*domain.Notification
	failAll error
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	clone := *notification
	r.records = append(r.records, &clone)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range r.records {
		if n.RecipientID == recipientID && n.Status != domain.NotificationStatusArchived {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) ListUnread(_ context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range r.records {
		if n.RecipientID == recipientID && n.Status == domain.NotificationStatusUnread {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	items, _ := r.ListUnread(context.Background(), recipientID, 0)
	return int64(len(items)), nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.records {
		if n.ID == id && n.RecipientID == recipientID && n.Status == domain.NotificationStatusUnread {
			now := time.Now()
			n.Status = domain.NotificationStatusRead
			n.ReadAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	now := time.Now()
	for _, n := range r.records {
		if n.RecipientID == recipientID && n.Status == domain.NotificationStatusUnread {
			n.Status = domain.NotificationStatusRead
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Archive(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.records {
		if n.ID == id && n.RecipientID == recipientID {
			n.Status = domain.NotificationStatusArchived
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeClassifier struct {
	mu         sync.Mutex
	prediction *classifier.Prediction
	predictErr error
	feedback   []classifier.Feedback
}

func (c *fakeClassifier) Predict(context.Context, string, string) (*classifier.Prediction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.predictErr != nil {
		return nil, c.predictErr
	}
	clone := *c.prediction
	return &clone, nil
}

func (c *fakeClassifier) SendFeedback(_ context.Context, feedback classifier.Feedback) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback = append(c.feedback, feedback)
	return nil
}

func (c *fakeClassifier) ModelInfo(context.Context) (*classifier.ModelInfo, error) {
	return &classifier.ModelInfo{}, nil
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, e := range d.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
