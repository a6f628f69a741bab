package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// AssignmentRepository encapsulates assignment persistence. Reassignment is
// append + supersede: Supersede flips the current ACTIVE record and inserts
// the replacement inside one transaction, so the at-most-one-active invariant
// holds even under concurrent callers (a partial unique index backs it up).
type AssignmentRepository interface {
	GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Assignment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.Assignment, error)
	Supersede(ctx context.Context, ticketID string, endState domain.AssignmentState, endComment *string, next *domain.Assignment) error
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `id, ticket_id, assignee_id, assigner_id, team, state, comment, assigned_at, ended_at`

func (r *assignmentRepository) GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ticket_id=$1 AND state=$2`
	var a domain.Assignment
	err := r.pool.QueryRow(ctx, query, ticketID, domain.AssignmentStateActive).Scan(
		&a.ID, &a.TicketID, &a.AssigneeID, &a.AssignerID, &a.Team,
		&a.State, &a.Comment, &a.AssignedAt, &a.EndedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ticket_id=$1 ORDER BY assigned_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func (r *assignmentRepository) ListSince(ctx context.Context, since time.Time) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE assigned_at >= $1 ORDER BY assigned_at ASC`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// Supersede ends the current ACTIVE assignment for a ticket (no-op when none
// exists) and appends next as the new ACTIVE record. endComment, when set,
// overwrites the superseded record's comment; transfers attach the comment to
// the record being ended, not the new one.
func (r *assignmentRepository) Supersede(ctx context.Context, ticketID string, endState domain.AssignmentState, endComment *string, next *domain.Assignment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const endQuery = `
        UPDATE assignments SET state=$1, ended_at=NOW(), comment=COALESCE($2, comment)
        WHERE ticket_id=$3 AND state=$4`
	if _, err := tx.Exec(ctx, endQuery, endState, endComment, ticketID, domain.AssignmentStateActive); err != nil {
		return err
	}

	const insertQuery = `
        INSERT INTO assignments (ticket_id, assignee_id, assigner_id, team, state, comment)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, assigned_at`
	if err := tx.QueryRow(ctx, insertQuery,
		next.TicketID,
		next.AssigneeID,
		next.AssignerID,
		next.Team,
		domain.AssignmentStateActive,
		next.Comment,
	).Scan(&next.ID, &next.AssignedAt); err != nil {
		return err
	}
	next.State = domain.AssignmentStateActive

	return tx.Commit(ctx)
}

func scanAssignments(rows pgx.Rows) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(
			&a.ID, &a.TicketID, &a.AssigneeID, &a.AssignerID, &a.Team,
			&a.State, &a.Comment, &a.AssignedAt, &a.EndedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
