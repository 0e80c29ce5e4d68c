// Package layout defines the fixed seat grid for each service.  Layouts are
// immutable after process start: every valid SeatID for a service comes from
// here, and the row-major order returned by LayoutFor is the iteration order
// used when materializing or rendering seat maps.
package layout

import (
	"fmt"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// shape describes a service grid as row count and the fixed letter order of
// seats within a row.
type shape struct {
	rows    int
	letters []string
}

var shapes = map[model.Service]shape{
	model.ServiceCinema:   {rows: 10, letters: []string{"A", "B", "C", "D", "E", "F"}},
	model.ServiceBus:      {rows: 12, letters: []string{"A", "B", "C", "D"}},
	model.ServiceAirplane: {rows: 16, letters: []string{"A", "B", "C", "D", "E", "F"}},
}

// LayoutFor returns every valid SeatID for the service in row-major order:
// increasing row number, then letter order within the row.  The result is a
// fresh slice on every call so callers may not mutate shared state.  Unknown
// services yield an empty layout.
func LayoutFor(service model.Service) []model.SeatID {
	sh, ok := shapes[service]
	if !ok {
		return nil
	}
	ids := make([]model.SeatID, 0, sh.rows*len(sh.letters))
	for r := 1; r <= sh.rows; r++ {
		for _, l := range sh.letters {
			ids = append(ids, model.SeatID(fmt.Sprintf("%d%s", r, l)))
		}
	}
	return ids
}

// Contains reports whether id is a valid seat for the service.
func Contains(service model.Service, id model.SeatID) bool {
	for _, s := range LayoutFor(service) {
		if s == id {
			return true
		}
	}
	return false
}

// Rows groups the layout by row number, preserving row-major order.  Handlers
// use it to render the seat map as one JSON array per row.
func Rows(service model.Service) [][]model.SeatID {
	sh, ok := shapes[service]
	if !ok {
		return nil
	}
	rows := make([][]model.SeatID, 0, sh.rows)
	for r := 1; r <= sh.rows; r++ {
		row := make([]model.SeatID, 0, len(sh.letters))
		for _, l := range sh.letters {
			row = append(row, model.SeatID(fmt.Sprintf("%d%s", r, l)))
		}
		rows = append(rows, row)
	}
	return rows
}
