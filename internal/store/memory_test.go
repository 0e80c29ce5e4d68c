package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-inventory/internal/model"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("load materializes the full layout as available", func(t *testing.T) {
		st := NewMemoryStore()
		seats, err := st.Load(ctx, model.ServiceCinema)
		require.NoError(t, err)
		require.Len(t, seats, 60)
		for id, seat := range seats {
			assert.Equal(t, id, seat.ID)
			assert.Equal(t, model.StatusAvailable, seat.Status)
		}
	})

	t.Run("unknown service is rejected", func(t *testing.T) {
		st := NewMemoryStore()
		_, err := st.Load(ctx, model.Service("X"))
		assert.ErrorIs(t, err, ErrUnknownService)
		assert.ErrorIs(t, st.Commit(ctx, model.Service("X"), nil), ErrUnknownService)
	})

	t.Run("commit round-trips a booking", func(t *testing.T) {
		st := NewMemoryStore()
		seats, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)

		occ := model.Identity{FirstName: "Juan", Surname: "Cruz", IDType: "Passport", IDNumber: "AB123456", Contact: "09171234567"}
		seats["4B"] = model.Seat{
			ID: "4B", Status: model.StatusTaken, Occupant: &occ,
			TicketType: "Regular", BasePrice: 10000, FinalPrice: 10000,
			BookedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, st.Commit(ctx, model.ServiceBus, seats))

		loaded, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)
		got := loaded["4B"]
		assert.Equal(t, model.StatusTaken, got.Status)
		require.NotNil(t, got.Occupant)
		assert.Equal(t, "Juan Cruz", got.Occupant.DisplayName())
		assert.Equal(t, model.StatusAvailable, loaded["4A"].Status)
	})

	t.Run("commit deep-copies occupants", func(t *testing.T) {
		st := NewMemoryStore()
		seats, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)

		occ := model.Identity{FirstName: "Juan", Surname: "Cruz", IDType: "Passport", IDNumber: "AB123456", Contact: "09171234567"}
		seats["4B"] = model.Seat{
			ID: "4B", Status: model.StatusTaken, Occupant: &occ,
			TicketType: "Regular", BasePrice: 10000, FinalPrice: 10000,
			BookedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, st.Commit(ctx, model.ServiceBus, seats))

		// Mutating the caller's identity after commit must not reach the
		// stored record, nor may a loaded record alias stored state.
		occ.FirstName = "Changed"
		loaded, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)
		assert.Equal(t, "Juan", loaded["4B"].Occupant.FirstName)

		loaded["4B"].Occupant.FirstName = "AlsoChanged"
		again, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)
		assert.Equal(t, "Juan", again["4B"].Occupant.FirstName)
	})

	t.Run("commit drops seats outside the layout", func(t *testing.T) {
		st := NewMemoryStore()
		seats, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)
		seats["99Z"] = model.Seat{ID: "99Z", Status: model.StatusUnavailable}
		require.NoError(t, st.Commit(ctx, model.ServiceBus, seats))

		loaded, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)
		_, ok := loaded["99Z"]
		assert.False(t, ok)
		assert.Len(t, loaded, 48)
	})

	t.Run("services are isolated", func(t *testing.T) {
		st := NewMemoryStore()
		seats, err := st.Load(ctx, model.ServiceBus)
		require.NoError(t, err)
		blocked := seats["1A"]
		blocked.Status = model.StatusUnavailable
		seats["1A"] = blocked
		require.NoError(t, st.Commit(ctx, model.ServiceBus, seats))

		cinema, err := st.Load(ctx, model.ServiceCinema)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAvailable, cinema["1A"].Status)
	})
}
