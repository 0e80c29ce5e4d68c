// Package report aggregates seat data for the read side: occupancy counts,
// revenue totals and booking search.  Reports never mutate the store, and a
// seat with a malformed or missing price counts as zero revenue instead of
// failing the whole report.
package report

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/seat-inventory/internal/layout"
	"github.com/iliyamo/seat-inventory/internal/model"
	"github.com/iliyamo/seat-inventory/internal/store"
	"github.com/iliyamo/seat-inventory/internal/ticket"
)

// Engine is the read-only aggregation engine over a SeatStore.
type Engine struct {
	store store.SeatStore
}

// New returns a report engine reading from st.
func New(st store.SeatStore) *Engine {
	return &Engine{store: st}
}

// Occupancy is the seat count per status for one service.
type Occupancy struct {
	Service     model.Service `json:"service"`
	Total       int           `json:"total"`
	Available   int           `json:"available"`
	Taken       int           `json:"taken"`
	Unavailable int           `json:"unavailable"`
}

// Occupancy counts seats by status.
func (e *Engine) Occupancy(ctx context.Context, service model.Service) (Occupancy, error) {
	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return Occupancy{}, err
	}
	occ := Occupancy{Service: service, Total: len(seats)}
	for _, seat := range seats {
		switch seat.Status {
		case model.StatusAvailable:
			occ.Available++
		case model.StatusTaken:
			occ.Taken++
		default:
			occ.Unavailable++
		}
	}
	return occ, nil
}

// Revenue sums final prices of Taken seats for one service, total and per
// ticket type.  Amounts are centavos.
type Revenue struct {
	Service  model.Service    `json:"service"`
	Bookings int              `json:"bookings"`
	Total    int64            `json:"total_cents"`
	ByType   map[string]int64 `json:"by_ticket_type"`
}

// Revenue aggregates booked revenue for a service.
func (e *Engine) Revenue(ctx context.Context, service model.Service) (Revenue, error) {
	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return Revenue{}, err
	}
	rev := Revenue{Service: service, ByType: make(map[string]int64)}
	for _, seat := range seats {
		if seat.Status != model.StatusTaken {
			continue
		}
		rev.Bookings++
		// Missing or malformed prices load as zero and are counted as
		// zero-revenue bookings rather than aborting the report.
		price := seat.FinalPrice
		if price < 0 {
			price = 0
		}
		tt := seat.TicketType
		if tt == "" {
			tt = "Unknown"
		}
		rev.ByType[tt] += price
		rev.Total += price
	}
	return rev, nil
}

// Booking is one row of a search result: the displayable slice of a Taken
// seat record.
type Booking struct {
	Seat       model.SeatID `json:"seat"`
	Name       string       `json:"name"`
	IDType     string       `json:"id_type"`
	Contact    string       `json:"contact"`
	TicketType string       `json:"ticket_type"`
	FinalPrice string       `json:"final_price"`
	BookedAt   string       `json:"booked_at"`
}

// Search returns Taken seats whose occupant name contains the query
// (case-insensitive) or whose seat ID matches it exactly after
// normalization.  Results come back in layout order.
func (e *Engine) Search(ctx context.Context, service model.Service, query string) ([]Booking, error) {
	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	exact := model.NormalizeSeatID(query)
	var out []Booking
	for _, id := range layout.LayoutFor(service) {
		seat := seats[id]
		if seat.Status != model.StatusTaken || seat.Occupant == nil {
			continue
		}
		name := seat.Occupant.DisplayName()
		if id != exact && (needle == "" || !strings.Contains(strings.ToLower(name), needle)) {
			continue
		}
		out = append(out, Booking{
			Seat:       id,
			Name:       name,
			IDType:     seat.Occupant.IDType,
			Contact:    seat.Occupant.Contact,
			TicketType: seat.TicketType,
			FinalPrice: ticket.FormatAmount(seat.FinalPrice),
			BookedAt:   seat.BookedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out, nil
}

// SeatCell is one position of the rendered seat map.
type SeatCell struct {
	Seat   model.SeatID     `json:"seat"`
	Status model.SeatStatus `json:"status"`
}

// SeatMap returns the seat grid row by row in layout order, each cell
// carrying its current status.
func (e *Engine) SeatMap(ctx context.Context, service model.Service) ([][]SeatCell, error) {
	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return nil, err
	}
	var grid [][]SeatCell
	for _, row := range layout.Rows(service) {
		cells := make([]SeatCell, 0, len(row))
		for _, id := range row {
			cells = append(cells, SeatCell{Seat: id, Status: seats[id].Status})
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// ServiceStats is the per-service slice of the system statistics report.
type ServiceStats struct {
	Service  string `json:"service"`
	Bookings int    `json:"bookings"`
	Revenue  int64  `json:"revenue_cents"`
}

// Statistics aggregates bookings and revenue across every service, sorted by
// service name for stable output.
func (e *Engine) Statistics(ctx context.Context) ([]ServiceStats, error) {
	var out []ServiceStats
	for _, svc := range model.Services() {
		rev, err := e.Revenue(ctx, svc)
		if err != nil {
			return nil, err
		}
		out = append(out, ServiceStats{Service: svc.Name(), Bookings: rev.Bookings, Revenue: rev.Total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out, nil
}
