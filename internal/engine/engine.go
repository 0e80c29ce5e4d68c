// Package engine orchestrates every seat mutation: reserve, cancel,
// transfer, retype, the admin block/release operations, atomic bulk
// reservation and the expiry sweep.  Each operation runs the
// load -> validate -> mutate -> commit sequence under an exclusive
// per-service lock, appends to the audit log on success and hands finalized
// bookings to the ticket sink.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/seat-inventory/internal/audit"
	"github.com/iliyamo/seat-inventory/internal/identity"
	"github.com/iliyamo/seat-inventory/internal/layout"
	"github.com/iliyamo/seat-inventory/internal/lock"
	"github.com/iliyamo/seat-inventory/internal/model"
	"github.com/iliyamo/seat-inventory/internal/pricing"
	"github.com/iliyamo/seat-inventory/internal/store"
	"github.com/iliyamo/seat-inventory/internal/ticket"
)

// defaultRetention is how long a booking may stand before the expiry sweep
// returns its seat to Available.
const defaultRetention = 24 * time.Hour

// Engine wires the seat store, pricing table, identity verifier, audit log,
// locker and ticket sink into the reservation state machine.
type Engine struct {
	store     store.SeatStore
	table     *pricing.Table
	verifier  *identity.Verifier
	auditLog  audit.Log
	locks     lock.Locker
	sink      ticket.Sink
	now       func() time.Time
	retention time.Duration
}

// Option tunes engine construction.
type Option func(*Engine)

// WithRetention overrides the expiry window used by SweepExpired.
func WithRetention(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retention = d
		}
	}
}

// WithClock injects the time source; tests pin it to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTicketSink attaches a sink that receives finalized booking snapshots.
// Without one, snapshots are simply not emitted.
func WithTicketSink(s ticket.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// New constructs an Engine.  Store, table, verifier, audit log and locker
// are all required.
func New(st store.SeatStore, table *pricing.Table, v *identity.Verifier, al audit.Log, locks lock.Locker, opts ...Option) *Engine {
	if st == nil || table == nil || v == nil || al == nil || locks == nil {
		panic("nil dependency passed to engine.New")
	}
	e := &Engine{
		store:     st,
		table:     table,
		verifier:  v,
		auditLog:  al,
		locks:     locks,
		now:       func() time.Time { return time.Now().UTC() },
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// resolveSeat normalizes raw seat input and checks membership in the
// service's layout.
func resolveSeat(service model.Service, raw string) (model.SeatID, error) {
	if !service.Valid() {
		return "", ErrServiceNotFound
	}
	id := model.NormalizeSeatID(raw)
	if !layout.Contains(service, id) {
		return "", fmt.Errorf("%w: %s", ErrSeatNotFound, id)
	}
	return id, nil
}

// record appends one audit entry.  Append failures surface as storage
// errors: the triggering mutation is not reported durable without its audit
// entry.
func (e *Engine) record(ctx context.Context, service model.Service, seat model.SeatID, action model.AuditAction, details string) error {
	rec := model.AuditRecord{
		Timestamp: e.now(),
		Service:   service,
		Seat:      seat,
		Action:    action,
		Details:   details,
	}
	if err := e.auditLog.Append(ctx, rec); err != nil {
		return storageError("audit append", err)
	}
	return nil
}

// issue hands a snapshot to the ticket sink.  Delivery failures are logged
// and do not undo the committed reservation.
func (e *Engine) issue(ctx context.Context, service model.Service, seat model.Seat) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Issue(ctx, ticket.FromSeat(service, seat)); err != nil {
		log.Printf("engine: ticket sink failed for %s/%s: %v", service, seat.ID, err)
	}
}

// Reserve verifies the identity, prices the ticket and transitions an
// Available seat to Taken.  Identity and pricing are validated before the
// lock is taken so invalid input never holds up other writers.
func (e *Engine) Reserve(ctx context.Context, service model.Service, rawSeat string, in identity.Input, ticketType string) (model.Seat, error) {
	id, err := resolveSeat(service, rawSeat)
	if err != nil {
		return model.Seat{}, err
	}
	occupant, err := e.verifier.Verify(in)
	if err != nil {
		return model.Seat{}, validationError(err)
	}
	quote, err := e.table.QuoteFor(service, ticketType)
	if err != nil {
		return model.Seat{}, validationError(err)
	}

	release, err := e.locks.Acquire(ctx, string(service))
	if err != nil {
		return model.Seat{}, storageError("lock", err)
	}
	defer release()

	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return model.Seat{}, storageError("load", err)
	}
	seat := seats[id]
	switch seat.Status {
	case model.StatusTaken:
		return model.Seat{}, fmt.Errorf("%w: %s held by %s", ErrSeatAlreadyTaken, id, seat.Occupant.DisplayName())
	case model.StatusUnavailable:
		return model.Seat{}, fmt.Errorf("%w: %s", ErrSeatUnavailable, id)
	}

	seat.Status = model.StatusTaken
	seat.Occupant = &occupant
	seat.TicketType = ticketType
	seat.BasePrice = quote.Base
	seat.FinalPrice = quote.Final
	seat.BookedAt = e.now()
	seats[id] = seat

	if err := e.store.Commit(ctx, service, seats); err != nil {
		return model.Seat{}, storageError("commit", err)
	}
	details := fmt.Sprintf("%s - %s - %s", occupant.Redacted(), ticketType, ticket.FormatAmount(quote.Final))
	if err := e.record(ctx, service, id, model.ActionReservation, details); err != nil {
		return model.Seat{}, err
	}
	e.issue(ctx, service, seat)
	return seat, nil
}

// Cancel returns a Taken seat to Available, discarding the occupant.  The
// identity survives only as the redacted audit detail.
func (e *Engine) Cancel(ctx context.Context, service model.Service, rawSeat string) error {
	id, err := resolveSeat(service, rawSeat)
	if err != nil {
		return err
	}
	release, err := e.locks.Acquire(ctx, string(service))
	if err != nil {
		return storageError("lock", err)
	}
	defer release()

	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return storageError("load", err)
	}
	seat := seats[id]
	if seat.Status != model.StatusTaken {
		return fmt.Errorf("%w: %s", ErrSeatNotReserved, id)
	}
	details := seat.Occupant.Redacted()
	seat.Clear(model.StatusAvailable)
	seats[id] = seat

	if err := e.store.Commit(ctx, service, seats); err != nil {
		return storageError("commit", err)
	}
	return e.record(ctx, service, id, model.ActionCancellation, details)
}

// Transfer moves a booking from one seat to another, preserving identity,
// ticket type and both prices.  Only the seat and the booking timestamp
// change.
func (e *Engine) Transfer(ctx context.Context, service model.Service, rawFrom, rawTo string) (model.Seat, error) {
	from, err := resolveSeat(service, rawFrom)
	if err != nil {
		return model.Seat{}, err
	}
	to, err := resolveSeat(service, rawTo)
	if err != nil {
		return model.Seat{}, err
	}
	if from == to {
		return model.Seat{}, ErrSameSeat
	}

	release, err := e.locks.Acquire(ctx, string(service))
	if err != nil {
		return model.Seat{}, storageError("lock", err)
	}
	defer release()

	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return model.Seat{}, storageError("load", err)
	}
	src := seats[from]
	if src.Status != model.StatusTaken {
		return model.Seat{}, fmt.Errorf("%w: %s", ErrSeatNotReserved, from)
	}
	dst := seats[to]
	if dst.Status != model.StatusAvailable {
		return model.Seat{}, fmt.Errorf("%w: %s", ErrTargetUnavailable, to)
	}

	dst = model.Seat{
		ID:         to,
		Status:     model.StatusTaken,
		Occupant:   src.Occupant,
		TicketType: src.TicketType,
		BasePrice:  src.BasePrice,
		FinalPrice: src.FinalPrice,
		BookedAt:   e.now(),
	}
	details := fmt.Sprintf("%s from %s to %s", src.Occupant.DisplayName(), from, to)
	src.Clear(model.StatusAvailable)
	seats[from] = src
	seats[to] = dst

	if err := e.store.Commit(ctx, service, seats); err != nil {
		return model.Seat{}, storageError("commit", err)
	}
	if err := e.record(ctx, service, from, model.ActionSeatMove, details); err != nil {
		return model.Seat{}, err
	}
	e.issue(ctx, service, dst)
	return dst, nil
}

// Retype changes the ticket type of a Taken seat and reprices it through the
// pricing table.
func (e *Engine) Retype(ctx context.Context, service model.Service, rawSeat, newType string) (model.Seat, error) {
	id, err := resolveSeat(service, rawSeat)
	if err != nil {
		return model.Seat{}, err
	}
	quote, err := e.table.QuoteFor(service, newType)
	if err != nil {
		return model.Seat{}, validationError(err)
	}

	release, err := e.locks.Acquire(ctx, string(service))
	if err != nil {
		return model.Seat{}, storageError("lock", err)
	}
	defer release()

	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return model.Seat{}, storageError("load", err)
	}
	seat := seats[id]
	if seat.Status != model.StatusTaken {
		return model.Seat{}, fmt.Errorf("%w: %s", ErrSeatNotReserved, id)
	}
	details := fmt.Sprintf("%s -> %s", seat.TicketType, newType)
	seat.TicketType = newType
	seat.BasePrice = quote.Base
	seat.FinalPrice = quote.Final
	seat.BookedAt = e.now()
	seats[id] = seat

	if err := e.store.Commit(ctx, service, seats); err != nil {
		return model.Seat{}, storageError("commit", err)
	}
	if err := e.record(ctx, service, id, model.ActionTicketTypeUpdate, details); err != nil {
		return model.Seat{}, err
	}
	e.issue(ctx, service, seat)
	return seat, nil
}

// SetUnavailable blocks a seat regardless of its current status, discarding
// any occupant.
func (e *Engine) SetUnavailable(ctx context.Context, service model.Service, rawSeat string) error {
	return e.setStatus(ctx, service, rawSeat, model.StatusUnavailable, model.ActionSeatBlocked)
}

// ResetToAvailable force-releases a seat regardless of its current status,
// discarding any occupant.
func (e *Engine) ResetToAvailable(ctx context.Context, service model.Service, rawSeat string) error {
	return e.setStatus(ctx, service, rawSeat, model.StatusAvailable, model.ActionSeatReleased)
}

func (e *Engine) setStatus(ctx context.Context, service model.Service, rawSeat string, status model.SeatStatus, action model.AuditAction) error {
	id, err := resolveSeat(service, rawSeat)
	if err != nil {
		return err
	}
	release, err := e.locks.Acquire(ctx, string(service))
	if err != nil {
		return storageError("lock", err)
	}
	defer release()

	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return storageError("load", err)
	}
	seat := seats[id]
	details := "previously " + string(seat.Status)
	if seat.Occupant != nil {
		details = fmt.Sprintf("%s, displacing %s", details, seat.Occupant.Redacted())
	}
	seat.Clear(status)
	seats[id] = seat

	if err := e.store.Commit(ctx, service, seats); err != nil {
		return storageError("commit", err)
	}
	return e.record(ctx, service, id, action, details)
}

// BulkItem is one seat of a bulk reservation request: the seat, its
// passenger's raw identity fields and the ticket type for that passenger.
type BulkItem struct {
	Seat       string
	Identity   identity.Input
	TicketType string
}

// BulkReserve books every requested seat or none.  All identities are
// verified and all tickets priced before the lock is taken; availability of
// every seat is then re-checked against a freshly loaded mapping and the
// whole batch is committed in one store call.  The first failing seat aborts
// the batch with no partial writes.
func (e *Engine) BulkReserve(ctx context.Context, service model.Service, items []BulkItem) ([]model.Seat, error) {
	if !service.Valid() {
		return nil, ErrServiceNotFound
	}
	if len(items) == 0 {
		return nil, validationError(fmt.Errorf("empty seat list"))
	}

	type prepared struct {
		id       model.SeatID
		occupant model.Identity
		ttype    string
		quote    pricing.Quote
	}
	preps := make([]prepared, 0, len(items))
	seen := make(map[model.SeatID]struct{}, len(items))
	for _, item := range items {
		id, err := resolveSeat(service, item.Seat)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			return nil, validationError(fmt.Errorf("seat %s listed twice", id))
		}
		seen[id] = struct{}{}
		occ, err := e.verifier.Verify(item.Identity)
		if err != nil {
			return nil, validationError(fmt.Errorf("seat %s: %w", id, err))
		}
		quote, err := e.table.QuoteFor(service, item.TicketType)
		if err != nil {
			return nil, validationError(fmt.Errorf("seat %s: %w", id, err))
		}
		preps = append(preps, prepared{id: id, occupant: occ, ttype: item.TicketType, quote: quote})
	}

	release, err := e.locks.Acquire(ctx, string(service))
	if err != nil {
		return nil, storageError("lock", err)
	}
	defer release()

	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return nil, storageError("load", err)
	}
	// Re-check every seat against the fresh mapping before touching any of
	// them; the first conflict aborts the whole batch.
	for _, p := range preps {
		switch seats[p.id].Status {
		case model.StatusTaken:
			return nil, fmt.Errorf("%w: %s", ErrSeatAlreadyTaken, p.id)
		case model.StatusUnavailable:
			return nil, fmt.Errorf("%w: %s", ErrSeatUnavailable, p.id)
		}
	}

	bookedAt := e.now()
	booked := make([]model.Seat, 0, len(preps))
	for i := range preps {
		p := preps[i]
		seat := model.Seat{
			ID:         p.id,
			Status:     model.StatusTaken,
			Occupant:   &preps[i].occupant,
			TicketType: p.ttype,
			BasePrice:  p.quote.Base,
			FinalPrice: p.quote.Final,
			BookedAt:   bookedAt,
		}
		seats[p.id] = seat
		booked = append(booked, seat)
	}

	if err := e.store.Commit(ctx, service, seats); err != nil {
		return nil, storageError("commit", err)
	}
	for _, seat := range booked {
		details := fmt.Sprintf("%s - %s - %s", seat.Occupant.Redacted(), seat.TicketType, ticket.FormatAmount(seat.FinalPrice))
		if err := e.record(ctx, service, seat.ID, model.ActionBulkReservation, details); err != nil {
			return nil, err
		}
		e.issue(ctx, service, seat)
	}
	return booked, nil
}

// SweepExpired returns every Taken seat whose booking is older than the
// retention window to Available.  The sweep is a bulk operation: one load,
// one commit, one AUTO_CANCELLATION audit entry per expired seat.  It
// returns the number of seats released.
func (e *Engine) SweepExpired(ctx context.Context, service model.Service) (int, error) {
	if !service.Valid() {
		return 0, ErrServiceNotFound
	}
	release, err := e.locks.Acquire(ctx, string(service))
	if err != nil {
		return 0, storageError("lock", err)
	}
	defer release()

	seats, err := e.store.Load(ctx, service)
	if err != nil {
		return 0, storageError("load", err)
	}
	cutoff := e.now().Add(-e.retention)
	type expired struct {
		id      model.SeatID
		details string
	}
	var dropped []expired
	for id, seat := range seats {
		if seat.Status != model.StatusTaken || !seat.BookedAt.Before(cutoff) {
			continue
		}
		dropped = append(dropped, expired{id: id, details: seat.Occupant.Redacted() + " - booking expired"})
		seat.Clear(model.StatusAvailable)
		seats[id] = seat
	}
	if len(dropped) == 0 {
		return 0, nil
	}
	if err := e.store.Commit(ctx, service, seats); err != nil {
		return 0, storageError("commit", err)
	}
	for _, d := range dropped {
		if err := e.record(ctx, service, d.id, model.ActionAutoCancellation, d.details); err != nil {
			return 0, err
		}
	}
	return len(dropped), nil
}
