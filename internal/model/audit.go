package model

import "time"

// AuditAction is the kind of state-changing action recorded in the audit
// trail.  Auto-cancellations are deliberately distinct from manual
// cancellations so the expiry sweep is visible in the history.
type AuditAction string

const (
	ActionReservation      AuditAction = "VERIFIED_RESERVATION"
	ActionBulkReservation  AuditAction = "BULK_RESERVATION"
	ActionCancellation     AuditAction = "CANCELLATION"
	ActionAutoCancellation AuditAction = "AUTO_CANCELLATION"
	ActionSeatMove         AuditAction = "SEAT_MOVE"
	ActionTicketTypeUpdate AuditAction = "TICKET_TYPE_UPDATE"
	ActionSeatBlocked      AuditAction = "SEAT_BLOCKED"
	ActionSeatReleased     AuditAction = "SEAT_RELEASED"
)

// AuditRecord is one immutable entry in the append-only audit trail.  Records
// are never edited or deleted; their total order is the append order.
type AuditRecord struct {
	ID        string // uuid assigned on append
	Timestamp time.Time
	Service   Service
	Seat      SeatID
	Action    AuditAction
	Details   string
}
