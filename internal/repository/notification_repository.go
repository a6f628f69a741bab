package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// NotificationRepository encapsulates notification persistence. Records are
// only ever created or flipped between read states; archiving replaces
// deletion.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error)
	ListUnread(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Archive(ctx context.Context, id, recipientID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationColumns = `id, recipient_id, type, title, message, entity_type, entity_id, action_link, status, created_at, read_at`

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient_id, type, title, message, entity_type, entity_id, action_link, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.RecipientID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.EntityType,
		notification.EntityID,
		notification.ActionLink,
		domain.NotificationStatusUnread,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + notificationColumns + `
        FROM notifications WHERE recipient_id=$1 AND status != $2
        ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, recipientID, domain.NotificationStatusArchived, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepository) ListUnread(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + notificationColumns + `
        FROM notifications WHERE recipient_id=$1 AND status=$2
        ORDER BY created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, recipientID, domain.NotificationStatusUnread, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND status=$2`
	var count int64
	err := r.pool.QueryRow(ctx, query, recipientID, domain.NotificationStatusUnread).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `
        UPDATE notifications SET status=$1, read_at=NOW()
        WHERE id=$2 AND recipient_id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, domain.NotificationStatusRead, id, recipientID, domain.NotificationStatusUnread)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	const query = `
        UPDATE notifications SET status=$1, read_at=NOW()
        WHERE recipient_id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.NotificationStatusRead, recipientID, domain.NotificationStatusUnread)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) Archive(ctx context.Context, id, recipientID string) error {
	const query = `
        UPDATE notifications SET status=$1
        WHERE id=$2 AND recipient_id=$3 AND status != $1`
	cmd, err := r.pool.Exec(ctx, query, domain.NotificationStatusArchived, id, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanNotifications(rows pgx.Rows) ([]domain.Notification, error) {
	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message,
			&n.EntityType, &n.EntityID, &n.ActionLink, &n.Status,
			&n.CreatedAt, &n.ReadAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
