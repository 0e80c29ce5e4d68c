package model

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// SeatStatus is the occupancy state of a single seat.  Exactly one status
// applies at any time.
type SeatStatus string

const (
	StatusAvailable   SeatStatus = "Available"
	StatusTaken       SeatStatus = "Taken"
	StatusUnavailable SeatStatus = "Unavailable"
)

// SeatID identifies a seat within a service's layout.  The canonical form is
// digits-then-letters, e.g. "12B".  Raw operator input may arrive as "B12",
// "12b" or with stray whitespace; NormalizeSeatID folds all of those into the
// canonical form.
type SeatID string

// NormalizeSeatID strips whitespace, uppercases and reorders the digit and
// letter runs of raw seat input so that "b12", " 12B " and "12B" all map to
// SeatID("12B").  Input without both a digit run and a letter run is returned
// trimmed and uppercased; layout validation rejects it later.
func NormalizeSeatID(raw string) SeatID {
	s := strings.ToUpper(strings.TrimSpace(raw))
	var digits, letters strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case unicode.IsLetter(r):
			letters.WriteRune(r)
		}
	}
	if digits.Len() > 0 && letters.Len() > 0 {
		return SeatID(digits.String() + letters.String())
	}
	return SeatID(s)
}

// Seat is one unit of inventory.  The occupant fields (Occupant, TicketType,
// BasePrice, FinalPrice, BookedAt) are meaningful only while Status is Taken;
// for any other status they must be zero.  Validate enforces that rule.
//
// Prices are held in centavos to avoid floating point drift in revenue
// aggregation; the original record format's decimal strings are converted at
// the storage boundary.
type Seat struct {
	ID         SeatID
	Status     SeatStatus
	Occupant   *Identity
	TicketType string
	BasePrice  int64 // centavos
	FinalPrice int64 // centavos
	BookedAt   time.Time
}

// ErrPartialTakenRecord is returned by Validate when a seat's status and its
// occupant fields disagree.
var ErrPartialTakenRecord = errors.New("seat record violates taken-record invariant")

// NewAvailableSeat returns a fresh seat in the Available state with no
// occupant fields set.
func NewAvailableSeat(id SeatID) Seat {
	return Seat{ID: id, Status: StatusAvailable}
}

// Clear resets every occupant field, leaving only ID and Status.  Cancel,
// transfer-out and the admin block/release operations all funnel through it
// so no stale identity ever survives a status change away from Taken.
func (s *Seat) Clear(status SeatStatus) {
	s.Status = status
	s.Occupant = nil
	s.TicketType = ""
	s.BasePrice = 0
	s.FinalPrice = 0
	s.BookedAt = time.Time{}
}

// Validate checks the taken-record invariant: Status == Taken if and only if
// all occupant fields are present and non-zero.
func (s Seat) Validate() error {
	occupied := s.Occupant != nil && s.TicketType != "" &&
		s.BasePrice > 0 && s.FinalPrice > 0 && !s.BookedAt.IsZero()
	empty := s.Occupant == nil && s.TicketType == "" &&
		s.BasePrice == 0 && s.FinalPrice == 0 && s.BookedAt.IsZero()
	switch s.Status {
	case StatusTaken:
		if !occupied {
			return ErrPartialTakenRecord
		}
	case StatusAvailable, StatusUnavailable:
		if !empty {
			return ErrPartialTakenRecord
		}
	default:
		return errors.New("unknown seat status")
	}
	return nil
}
