package domain

import "time"

// CategoryCorrection is an immutable audit entry recording a human override
// of a predicted category. The aggregator groups corrections by OldCategory
// to surface which predicted categories are least trustworthy.
type CategoryCorrection struct {
	ID          string
	TicketID    string
	OldCategory string
	NewCategory string
	CorrectorID string
	CorrectedAt time.Time
}
