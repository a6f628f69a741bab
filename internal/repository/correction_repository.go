package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asten-tickets/triage-service/internal/domain"
)

// CorrectionRepository stores category correction audit entries.
type CorrectionRepository interface {
	Create(ctx context.Context, correction *domain.CategoryCorrection) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.CategoryCorrection, error)
	CountByOldCategory(ctx context.Context) (map[string]int64, error)
}

type correctionRepository struct {
	pool *pgxpool.Pool
}

// NewCorrectionRepository builds repository.
func NewCorrectionRepository(pool *pgxpool.Pool) CorrectionRepository {
	return &correctionRepository{pool: pool}
}

func (r *correctionRepository) Create(ctx context.Context, correction *domain.CategoryCorrection) error {
	const query = `
        INSERT INTO category_corrections (ticket_id, old_category, new_category, corrector_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, corrected_at`
	return r.pool.QueryRow(ctx, query,
		correction.TicketID,
		correction.OldCategory,
		correction.NewCategory,
		correction.CorrectorID,
	).Scan(&correction.ID, &correction.CorrectedAt)
}

func (r *correctionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.CategoryCorrection, error) {
	const query = `
        SELECT id, ticket_id, old_category, new_category, corrector_id, corrected_at
        FROM category_corrections WHERE ticket_id=$1 ORDER BY corrected_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryCorrection
	for rows.Next() {
		var c domain.CategoryCorrection
		if err := rows.Scan(
			&c.ID, &c.TicketID, &c.OldCategory, &c.NewCategory, &c.CorrectorID, &c.CorrectedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *correctionRepository) CountByOldCategory(ctx context.Context) (map[string]int64, error) {
	const query = `
        SELECT old_category, COUNT(*) FROM category_corrections GROUP BY old_category`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
