package domain

import "time"

// AssignmentState enumerates assignment record states.
type AssignmentState string

const (
	AssignmentStateActive      AssignmentState = "ACTIVE"
	AssignmentStateCompleted   AssignmentState = "COMPLETED"
	AssignmentStateTransferred AssignmentState = "TRANSFERRED"
)

// Assignment is a time-bounded ownership record for a ticket. A ticket has at
// most one ACTIVE assignment at a time and an unbounded history of superseded
// ones. Reassignment never updates in place: the old record flips to
// COMPLETED (or TRANSFERRED) with an end timestamp, and a new ACTIVE record
// is appended. COMPLETED and TRANSFERRED are terminal.
type Assignment struct {
	ID         string
	TicketID   string
	AssigneeID string
	AssignerID string
	Team       string
	State      AssignmentState
	Comment    *string
	AssignedAt time.Time
	EndedAt    *time.Time
}
