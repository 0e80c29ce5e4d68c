// Package ticket builds the finalized booking snapshot handed to the ticket
// sink after a reservation commits.  Snapshots carry the verified identity's
// displayable fields and a tamper-detection hash; the raw government ID
// number never enters a snapshot.
package ticket

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// Snapshot is the immutable view of one finalized booking.
type Snapshot struct {
	Ref         string `json:"ref"`
	Service     string `json:"service"`
	ServiceName string `json:"service_name"`
	Seat        string `json:"seat"`
	Passenger   string `json:"passenger"`
	TicketType  string `json:"ticket_type"`
	BasePrice   string `json:"base_price"`
	FinalPrice  string `json:"final_price"`
	BookedAt    string `json:"booked_at"`
	Contact     string `json:"contact"`
	Address     string `json:"address"`
	IDType      string `json:"id_type"`
	VerifiedAt  string `json:"verified_at"`
	Hash        string `json:"verification_hash"`
}

// Sink receives finalized booking snapshots.  Implementations must not
// require the engine to wait on slow delivery; publishing failures are
// logged by the engine and do not undo the committed reservation.
type Sink interface {
	Issue(ctx context.Context, snap Snapshot) error
}

const timeLayout = "2006-01-02 15:04:05"

// VerificationHash returns the short digest stamped on tickets: the first 16
// hex characters of SHA-256 over service name, seat, passenger, booking
// timestamp and ID type.  It detects tampering or duplication of a snapshot;
// it is not a secret.
func VerificationHash(serviceName string, seat model.SeatID, passenger string, bookedAt time.Time, idType string) string {
	data := fmt.Sprintf("%s%s%s%s%s", serviceName, seat, passenger, bookedAt.Format(timeLayout), idType)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:16]
}

// FromSeat builds the snapshot for a Taken seat.  The caller guarantees the
// taken-record invariant holds, so every field is present.
func FromSeat(service model.Service, seat model.Seat) Snapshot {
	occ := seat.Occupant
	return Snapshot{
		Ref:         uuid.NewString(),
		Service:     string(service),
		ServiceName: service.Name(),
		Seat:        string(seat.ID),
		Passenger:   occ.DisplayName(),
		TicketType:  seat.TicketType,
		BasePrice:   FormatAmount(seat.BasePrice),
		FinalPrice:  FormatAmount(seat.FinalPrice),
		BookedAt:    seat.BookedAt.Format(timeLayout),
		Contact:     occ.Contact,
		Address:     occ.Address.String(),
		IDType:      occ.IDType,
		VerifiedAt:  occ.VerifiedAt.Format(timeLayout),
		Hash:        VerificationHash(service.Name(), seat.ID, occ.DisplayName(), seat.BookedAt, occ.IDType),
	}
}

// FormatAmount renders centavos as a plain decimal string, e.g. 15000 ->
// "150.00".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
