// Package store persists the per-service seat mapping.  A SeatStore always
// covers exactly the service's layout: seats missing from the backing data
// are materialized as Available on load, and a commit replaces the whole
// service's seat set atomically.
package store

import (
	"context"
	"errors"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// ErrUnknownService is returned for a service without a configured layout.
var ErrUnknownService = errors.New("unknown service")

// SeatStore is the abstract persistent mapping from SeatID to Seat for one
// service.
//
// Load is total: it never returns a partial mapping, and absent backing data
// means "all Available" rather than an error.  Commit is atomic with respect
// to the whole service's seat set; a crash mid-write must not leave a
// partially updated mapping.  Every mutating caller follows the
// load -> validate -> mutate -> commit discipline under an exclusive
// per-service lock.
type SeatStore interface {
	Load(ctx context.Context, service model.Service) (map[model.SeatID]model.Seat, error)
	Commit(ctx context.Context, service model.Service, seats map[model.SeatID]model.Seat) error
}
