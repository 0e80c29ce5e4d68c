package store

import (
	"context"
	"sync"

	"github.com/iliyamo/seat-inventory/internal/layout"
	"github.com/iliyamo/seat-inventory/internal/model"
)

// MemoryStore keeps the seat mapping in process memory behind a mutex.  It
// backs the engine tests and serves as the fallback when no database is
// configured.  Commit swaps in a deep copy of the given mapping, so a caller
// mutating its map after commit cannot corrupt stored state.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[model.Service]map[model.SeatID]model.Seat
}

// NewMemoryStore returns an empty in-memory store.  Services materialize
// lazily on first Load.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[model.Service]map[model.SeatID]model.Seat)}
}

// Load returns a copy of the service's seat mapping, creating Available
// seats for every layout position not yet present.
func (m *MemoryStore) Load(_ context.Context, service model.Service) (map[model.SeatID]model.Seat, error) {
	ids := layout.LayoutFor(service)
	if len(ids) == 0 {
		return nil, ErrUnknownService
	}
	m.mu.RLock()
	stored := m.data[service]
	out := make(map[model.SeatID]model.Seat, len(ids))
	for _, id := range ids {
		if seat, ok := stored[id]; ok {
			out[id] = copySeat(seat)
		} else {
			out[id] = model.NewAvailableSeat(id)
		}
	}
	m.mu.RUnlock()
	return out, nil
}

// Commit replaces the service's whole seat set.  Seats outside the layout
// are dropped, matching how the record files were rewritten from the layout
// on every save.
func (m *MemoryStore) Commit(_ context.Context, service model.Service, seats map[model.SeatID]model.Seat) error {
	ids := layout.LayoutFor(service)
	if len(ids) == 0 {
		return ErrUnknownService
	}
	next := make(map[model.SeatID]model.Seat, len(ids))
	for _, id := range ids {
		if seat, ok := seats[id]; ok {
			next[id] = copySeat(seat)
		} else {
			next[id] = model.NewAvailableSeat(id)
		}
	}
	m.mu.Lock()
	m.data[service] = next
	m.mu.Unlock()
	return nil
}

// copySeat deep-copies a seat so stored occupants are never shared with
// caller-held maps.
func copySeat(s model.Seat) model.Seat {
	if s.Occupant != nil {
		occ := *s.Occupant
		s.Occupant = &occ
	}
	return s
}
