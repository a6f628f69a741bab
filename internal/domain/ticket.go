package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// statusCycle is the fixed forward order for status changes. CLOSED wraps
// back to NEW: submitters reopen tickets by cycling past the end.
var statusCycle = map[TicketStatus]TicketStatus{
	TicketStatusNew:        TicketStatusInProgress,
	TicketStatusInProgress: TicketStatusResolved,
	TicketStatusResolved:   TicketStatusClosed,
	TicketStatusClosed:     TicketStatusNew,
}

// NextStatus returns the status following current in the fixed cycle.
// Unknown statuses restart the cycle at NEW.
func NextStatus(current TicketStatus) TicketStatus {
	if next, ok := statusCycle[current]; ok {
		return next
	}
	return TicketStatusNew
}

var statusLabels = map[TicketStatus]string{
	TicketStatusNew:        "New",
	TicketStatusInProgress: "In Progress",
	TicketStatusResolved:   "Resolved",
	TicketStatusClosed:     "Closed",
}

// Label returns the human-readable form of a status.
func (s TicketStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// FallbackCategory is assigned when the classification service is unreachable.
const FallbackCategory = "uncategorized"

// CategoryOther buckets labels outside the fixed vocabulary.
const CategoryOther = "Other"

// Categories is the fixed vocabulary the prediction model is trained on.
var Categories = []string{
	"Technical Support",
	"General Assistance",
	"Feature Request",
	"Bug Report",
	"Usage Question",
	"Access Issue",
	"Refund Request",
	CategoryOther,
}

// KnownCategory reports whether label is part of the fixed vocabulary.
func KnownCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests. Tickets are never physically
// deleted; CLOSED tickets are retained.
type Ticket struct {
	ID                string
	Title             string
	Description       string
	SubmitterID       string
	SubmitterEmail    string
	Status            TicketStatus
	Category          string
	Confidence        float64
	CategoryCorrected bool
	NeedsHumanReview  bool
	Keywords          []string
	SubmittedAt       time.Time
	UpdatedAt         time.Time
}
