package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/seat-inventory/internal/layout"
	"github.com/iliyamo/seat-inventory/internal/model"
)

// MySQLStore persists seat records in the seats table, one row per seat with
// the backing-format fields {service, seat, status, occupant_name, booked_at,
// ticket_type, base_price_cents, final_price_cents, contact, address,
// id_type, id_number, verified_at}.  Blank columns mean "not applicable" for
// non-Taken seats.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the provided DB handle.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

const seatColumns = `seat, status, occupant_name, booked_at, ticket_type,
	base_price_cents, final_price_cents, contact, address, id_type, id_number, verified_at`

// Load reads every stored row for the service and fills layout positions
// without a row as Available.  Rows for seats outside the layout are ignored;
// malformed optional columns degrade to their zero values instead of failing
// the load.
func (s *MySQLStore) Load(ctx context.Context, service model.Service) (map[model.SeatID]model.Seat, error) {
	ids := layout.LayoutFor(service)
	if len(ids) == 0 {
		return nil, ErrUnknownService
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE service = ?`, string(service))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := make(map[model.SeatID]model.Seat)
	for rows.Next() {
		var (
			seatID, status            string
			name, ticketType, contact sql.NullString
			address, idType, idNumber sql.NullString
			basePrice, finalPrice     sql.NullInt64
			bookedAt, verifiedAt      sql.NullTime
		)
		if err := rows.Scan(&seatID, &status, &name, &bookedAt, &ticketType,
			&basePrice, &finalPrice, &contact, &address, &idType, &idNumber, &verifiedAt); err != nil {
			return nil, err
		}
		seat := model.Seat{ID: model.SeatID(seatID), Status: model.SeatStatus(status)}
		if seat.Status == model.StatusTaken {
			seat.TicketType = ticketType.String
			seat.BasePrice = basePrice.Int64
			seat.FinalPrice = finalPrice.Int64
			seat.BookedAt = bookedAt.Time
			seat.Occupant = &model.Identity{
				Display:    name.String,
				IDType:     idType.String,
				IDNumber:   idNumber.String,
				Contact:    contact.String,
				Address:    parseAddress(address.String),
				VerifiedAt: verifiedAt.Time,
			}
		}
		stored[seat.ID] = seat
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[model.SeatID]model.Seat, len(ids))
	for _, id := range ids {
		if seat, ok := stored[id]; ok {
			out[id] = seat
		} else {
			out[id] = model.NewAvailableSeat(id)
		}
	}
	return out, nil
}

// Commit rewrites the service's whole seat set inside one transaction:
// delete the service's rows, then bulk insert the new mapping in layout
// order.  The transaction gives the all-or-nothing guarantee the engine
// relies on for bulk operations.
func (s *MySQLStore) Commit(ctx context.Context, service model.Service, seats map[model.SeatID]model.Seat) error {
	ids := layout.LayoutFor(service)
	if len(ids) == 0 {
		return ErrUnknownService
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE service = ?`, string(service)); err != nil {
		return err
	}

	query := `INSERT INTO seats (service, ` + seatColumns + `) VALUES `
	args := make([]interface{}, 0, len(ids)*13)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		seat, ok := seats[id]
		if !ok {
			seat = model.NewAvailableSeat(id)
		}
		args = append(args, rowArgs(service, seat)...)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// rowArgs flattens one seat into insert arguments, blanking every occupant
// column when the seat is not Taken.
func rowArgs(service model.Service, seat model.Seat) []interface{} {
	if seat.Status != model.StatusTaken || seat.Occupant == nil {
		return []interface{}{
			string(service), string(seat.ID), string(seat.Status),
			nil, nil, nil, nil, nil, nil, nil, nil, nil,
		}
	}
	occ := seat.Occupant
	return []interface{}{
		string(service), string(seat.ID), string(seat.Status),
		occ.DisplayName(), seat.BookedAt.UTC().Format("2006-01-02 15:04:05"), seat.TicketType,
		seat.BasePrice, seat.FinalPrice, occ.Contact, occ.Address.String(),
		occ.IDType, occ.IDNumber, occ.VerifiedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

// parseAddress rebuilds a structured address from its stored single-line
// form "street, barangay, city, province postal".  Unparseable input lands
// in Street so no data is dropped.
func parseAddress(raw string) model.Address {
	if raw == "" {
		return model.Address{}
	}
	parts := strings.Split(raw, ", ")
	if len(parts) < 4 {
		return model.Address{Street: raw}
	}
	last := parts[len(parts)-1]
	province, postal := last, ""
	if i := strings.LastIndex(last, " "); i > 0 {
		province, postal = last[:i], last[i+1:]
	}
	return model.Address{
		Street:     strings.Join(parts[:len(parts)-3], ", "),
		Barangay:   parts[len(parts)-3],
		City:       parts[len(parts)-2],
		Province:   province,
		PostalCode: postal,
	}
}

// Schema is the DDL for the seats table.  Applied at startup with
// database.EnsureSchema.
const Schema = `CREATE TABLE IF NOT EXISTS seats (
	service CHAR(1) NOT NULL,
	seat VARCHAR(4) NOT NULL,
	status VARCHAR(12) NOT NULL,
	occupant_name VARCHAR(120) NULL,
	booked_at DATETIME NULL,
	ticket_type VARCHAR(24) NULL,
	base_price_cents BIGINT NULL,
	final_price_cents BIGINT NULL,
	contact VARCHAR(16) NULL,
	address VARCHAR(255) NULL,
	id_type VARCHAR(32) NULL,
	id_number VARCHAR(32) NULL,
	verified_at DATETIME NULL,
	PRIMARY KEY (service, seat)
)`
