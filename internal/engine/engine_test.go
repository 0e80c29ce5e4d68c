package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-inventory/internal/audit"
	"github.com/iliyamo/seat-inventory/internal/identity"
	"github.com/iliyamo/seat-inventory/internal/lock"
	"github.com/iliyamo/seat-inventory/internal/model"
	"github.com/iliyamo/seat-inventory/internal/pricing"
	"github.com/iliyamo/seat-inventory/internal/store"
	"github.com/iliyamo/seat-inventory/internal/ticket"
)

// fakeSink records every snapshot the engine issues.
type fakeSink struct {
	mu    sync.Mutex
	snaps []ticket.Snapshot
}

func (f *fakeSink) Issue(_ context.Context, snap ticket.Snapshot) error {
	f.mu.Lock()
	f.snaps = append(f.snaps, snap)
	f.mu.Unlock()
	return nil
}

type fixture struct {
	engine *Engine
	log    *audit.MemoryLog
	sink   *fakeSink
	now    time.Time
	clock  *time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	clock := now
	f := &fixture{
		log:   audit.NewMemoryLog(),
		sink:  &fakeSink{},
		now:   now,
		clock: &clock,
	}
	verifier := &identity.Verifier{Now: func() time.Time { return *f.clock }}
	all := append([]Option{
		WithClock(func() time.Time { return *f.clock }),
		WithTicketSink(f.sink),
	}, opts...)
	f.engine = New(store.NewMemoryStore(), pricing.Default(), verifier, f.log, lock.NewKeyedMutex(), all...)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func passenger(first, surname string) identity.Input {
	return identity.Input{
		FirstName:     first,
		MiddleInitial: "D",
		Surname:       surname,
		IDType:        "Passport",
		IDNumber:      "AB123456",
		Contact:       "09171234567",
		Street:        "123 Rizal St.",
		Barangay:      "Poblacion",
		City:          "Quezon City",
		Province:      "Metro Manila",
		PostalCode:    "1100",
	}
}

func (f *fixture) actions(t *testing.T) []model.AuditAction {
	t.Helper()
	recs, err := f.log.Recent(context.Background(), 0)
	require.NoError(t, err)
	out := make([]model.AuditAction, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Action)
	}
	return out
}

func TestReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("books an available seat", func(t *testing.T) {
		f := newFixture(t)
		seat, err := f.engine.Reserve(ctx, model.ServiceCinema, "b12", passenger("Juan", "Cruz"), "Senior")
		require.NoError(t, err)

		assert.Equal(t, model.SeatID("12B"), seat.ID)
		assert.Equal(t, model.StatusTaken, seat.Status)
		assert.Equal(t, "Juan D. Cruz", seat.Occupant.DisplayName())
		assert.Equal(t, int64(15000), seat.BasePrice)
		assert.Equal(t, int64(12000), seat.FinalPrice)
		assert.Equal(t, f.now, seat.BookedAt)
		require.NoError(t, seat.Validate())

		recs, err := f.log.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, model.ActionReservation, recs[0].Action)
		assert.Contains(t, recs[0].Details, "Juan D. Cruz - ID: Passport")
		assert.NotContains(t, recs[0].Details, "AB123456")

		require.Len(t, f.sink.snaps, 1)
		assert.Equal(t, "12B", f.sink.snaps[0].Seat)
		assert.Equal(t, "120.00", f.sink.snaps[0].FinalPrice)
	})

	t.Run("double booking conflicts", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Reserve(ctx, model.ServiceBus, "3A", passenger("Juan", "Cruz"), "Regular")
		require.NoError(t, err)

		_, err = f.engine.Reserve(ctx, model.ServiceBus, "3a", passenger("Maria", "Santos"), "Regular")
		assert.ErrorIs(t, err, ErrSeatAlreadyTaken)
		assert.ErrorIs(t, err, ErrStateConflict)
		assert.Contains(t, err.Error(), "Juan D. Cruz")
	})

	t.Run("blocked seat cannot be booked", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.engine.SetUnavailable(ctx, model.ServiceBus, "5C"))

		_, err := f.engine.Reserve(ctx, model.ServiceBus, "5C", passenger("Juan", "Cruz"), "Regular")
		assert.ErrorIs(t, err, ErrSeatUnavailable)
	})

	t.Run("seat outside the layout", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Reserve(ctx, model.ServiceCinema, "11A", passenger("Juan", "Cruz"), "Regular")
		assert.ErrorIs(t, err, ErrSeatNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid identity is a validation failure naming the field", func(t *testing.T) {
		f := newFixture(t)
		in := passenger("Juan", "Cruz")
		in.Contact = "123"
		_, err := f.engine.Reserve(ctx, model.ServiceCinema, "1A", in, "Regular")
		assert.ErrorIs(t, err, ErrValidation)
		var fe *identity.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "contact", fe.Field)
	})

	t.Run("unknown ticket type is a validation failure", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Reserve(ctx, model.ServiceCinema, "1A", passenger("Juan", "Cruz"), "Platinum")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Reserve(ctx, model.ServiceCinema, "4D", passenger("Juan", "Cruz"), "Regular")
	require.NoError(t, err)

	require.NoError(t, f.engine.Cancel(ctx, model.ServiceCinema, "4D"))

	// The seat is free again and can be rebooked by someone else.
	seat, err := f.engine.Reserve(ctx, model.ServiceCinema, "4D", passenger("Maria", "Santos"), "Student")
	require.NoError(t, err)
	assert.Equal(t, "Maria D. Santos", seat.Occupant.DisplayName())

	assert.ErrorIs(t, f.engine.Cancel(ctx, model.ServiceCinema, "5D"), ErrSeatNotReserved)
	assert.Equal(t, []model.AuditAction{
		model.ActionReservation, model.ActionCancellation, model.ActionReservation,
	}, f.actions(t))
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the booking intact", func(t *testing.T) {
		f := newFixture(t)
		src, err := f.engine.Reserve(ctx, model.ServiceAirplane, "7C", passenger("Juan", "Cruz"), "VIP")
		require.NoError(t, err)

		f.advance(2 * time.Hour)
		dst, err := f.engine.Transfer(ctx, model.ServiceAirplane, "7C", "c9")
		require.NoError(t, err)

		assert.Equal(t, model.SeatID("9C"), dst.ID)
		assert.Equal(t, src.Occupant.DisplayName(), dst.Occupant.DisplayName())
		assert.Equal(t, src.TicketType, dst.TicketType)
		assert.Equal(t, src.BasePrice, dst.BasePrice)
		assert.Equal(t, src.FinalPrice, dst.FinalPrice)
		assert.Equal(t, f.now.Add(2*time.Hour), dst.BookedAt)

		// Source seat is free again.
		_, err = f.engine.Reserve(ctx, model.ServiceAirplane, "7C", passenger("Maria", "Santos"), "Regular")
		require.NoError(t, err)

		recs, err := f.log.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, model.ActionSeatMove, recs[1].Action)
		assert.Contains(t, recs[1].Details, "from 7C to 9C")
	})

	t.Run("same seat is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Reserve(ctx, model.ServiceBus, "2B", passenger("Juan", "Cruz"), "Regular")
		require.NoError(t, err)
		_, err = f.engine.Transfer(ctx, model.ServiceBus, "2B", "b2")
		assert.ErrorIs(t, err, ErrSameSeat)
	})

	t.Run("occupied target is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Reserve(ctx, model.ServiceBus, "2B", passenger("Juan", "Cruz"), "Regular")
		require.NoError(t, err)
		_, err = f.engine.Reserve(ctx, model.ServiceBus, "2C", passenger("Maria", "Santos"), "Regular")
		require.NoError(t, err)

		_, err = f.engine.Transfer(ctx, model.ServiceBus, "2B", "2C")
		assert.ErrorIs(t, err, ErrTargetUnavailable)
	})

	t.Run("unreserved source is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Transfer(ctx, model.ServiceBus, "2B", "2C")
		assert.ErrorIs(t, err, ErrSeatNotReserved)
	})
}

func TestRetype(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.Reserve(ctx, model.ServiceCinema, "6E", passenger("Juan", "Cruz"), "Regular")
	require.NoError(t, err)

	seat, err := f.engine.Retype(ctx, model.ServiceCinema, "6E", "VIP")
	require.NoError(t, err)
	assert.Equal(t, "VIP", seat.TicketType)
	assert.Equal(t, int64(15000), seat.BasePrice)
	assert.Equal(t, int64(30000), seat.FinalPrice)

	recs, err := f.log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, model.ActionTicketTypeUpdate, recs[1].Action)
	assert.Equal(t, "Regular -> VIP", recs[1].Details)

	_, err = f.engine.Retype(ctx, model.ServiceCinema, "6E", "Platinum")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.engine.Retype(ctx, model.ServiceCinema, "7E", "VIP")
	assert.ErrorIs(t, err, ErrSeatNotReserved)
}

func TestBlockAndRelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Blocking a taken seat displaces the occupant.
	_, err := f.engine.Reserve(ctx, model.ServiceBus, "8A", passenger("Juan", "Cruz"), "Regular")
	require.NoError(t, err)
	require.NoError(t, f.engine.SetUnavailable(ctx, model.ServiceBus, "8A"))

	_, err = f.engine.Reserve(ctx, model.ServiceBus, "8A", passenger("Maria", "Santos"), "Regular")
	assert.ErrorIs(t, err, ErrSeatUnavailable)

	require.NoError(t, f.engine.ResetToAvailable(ctx, model.ServiceBus, "8A"))
	_, err = f.engine.Reserve(ctx, model.ServiceBus, "8A", passenger("Maria", "Santos"), "Regular")
	require.NoError(t, err)

	recs, err := f.log.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, model.ActionSeatBlocked, recs[1].Action)
	assert.Contains(t, recs[1].Details, "displacing Juan D. Cruz - ID: Passport")
	assert.Equal(t, model.ActionSeatReleased, recs[2].Action)
}

func TestBulkReserve(t *testing.T) {
	ctx := context.Background()

	items := func(seats ...string) []BulkItem {
		out := make([]BulkItem, 0, len(seats))
		for _, s := range seats {
			out = append(out, BulkItem{Seat: s, Identity: passenger("Juan", "Cruz"), TicketType: "Regular"})
		}
		return out
	}

	t.Run("books every seat in one commit", func(t *testing.T) {
		f := newFixture(t)
		booked, err := f.engine.BulkReserve(ctx, model.ServiceCinema, items("1A", "1B", "1C"))
		require.NoError(t, err)
		require.Len(t, booked, 3)
		for _, seat := range booked {
			assert.Equal(t, model.StatusTaken, seat.Status)
			require.NoError(t, seat.Validate())
		}
		assert.Equal(t, []model.AuditAction{
			model.ActionBulkReservation, model.ActionBulkReservation, model.ActionBulkReservation,
		}, f.actions(t))
		assert.Len(t, f.sink.snaps, 3)
	})

	t.Run("one conflicting seat aborts the whole batch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Reserve(ctx, model.ServiceCinema, "1B", passenger("Maria", "Santos"), "Regular")
		require.NoError(t, err)

		_, err = f.engine.BulkReserve(ctx, model.ServiceCinema, items("1A", "1B"))
		assert.ErrorIs(t, err, ErrSeatAlreadyTaken)

		// 1A was not booked: the batch left no partial writes behind.
		seat, err := f.engine.Reserve(ctx, model.ServiceCinema, "1A", passenger("Pedro", "Reyes"), "Regular")
		require.NoError(t, err)
		assert.Equal(t, model.StatusTaken, seat.Status)
	})

	t.Run("duplicate seat in the batch is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.BulkReserve(ctx, model.ServiceCinema, items("1A", "a1"))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.BulkReserve(ctx, model.ServiceCinema, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("one invalid identity aborts before any write", func(t *testing.T) {
		f := newFixture(t)
		batch := items("1A")
		bad := BulkItem{Seat: "1B", Identity: passenger("Juan", "Cruz"), TicketType: "Regular"}
		bad.Identity.PostalCode = "110"
		batch = append(batch, bad)

		_, err := f.engine.BulkReserve(ctx, model.ServiceCinema, batch)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, f.actions(t))
	})
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithRetention(24*time.Hour))

	_, err := f.engine.Reserve(ctx, model.ServiceBus, "1A", passenger("Juan", "Cruz"), "Regular")
	require.NoError(t, err)

	f.advance(12 * time.Hour)
	_, err = f.engine.Reserve(ctx, model.ServiceBus, "1B", passenger("Maria", "Santos"), "Regular")
	require.NoError(t, err)

	// Not yet past the window for either booking.
	n, err := f.engine.SweepExpired(ctx, model.ServiceBus)
	require.NoError(t, err)
	assert.Zero(t, n)

	// 25h after the first booking, 13h after the second: only the first
	// expires.
	f.advance(13 * time.Hour)
	n, err = f.engine.SweepExpired(ctx, model.ServiceBus)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	seat, err := f.engine.Reserve(ctx, model.ServiceBus, "1A", passenger("Pedro", "Reyes"), "Regular")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTaken, seat.Status)

	recs, err := f.log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, model.ActionAutoCancellation, recs[2].Action)
	assert.Contains(t, recs[2].Details, "booking expired")

	// Idempotent once everything left is inside the window.
	n, err = f.engine.SweepExpired(ctx, model.ServiceBus)
	require.NoError(t, err)
	assert.Zero(t, n)
}
