package engine

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// Sweeper periodically runs the expiry sweep over every service.  It runs
// until its context is cancelled; sweep failures are logged and retried on
// the next tick rather than stopping the loop.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
}

// NewSweeper builds a Sweeper ticking at the given interval (minimum one
// minute, to avoid hammering the store on misconfiguration).
func NewSweeper(e *Engine, interval time.Duration) *Sweeper {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Sweeper{engine: e, interval: interval}
}

// Run blocks, sweeping all services every interval until ctx is done.  An
// initial sweep runs immediately so a restart clears any backlog of expired
// bookings.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweepAll(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweepAll(ctx)
		}
	}
}

func (s *Sweeper) sweepAll(ctx context.Context) {
	for _, svc := range model.Services() {
		n, err := s.engine.SweepExpired(ctx, svc)
		if err != nil {
			log.Printf("sweeper: %s: %v", svc.Name(), err)
			continue
		}
		if n > 0 {
			log.Printf("sweeper: auto-cancelled %d expired bookings on %s", n, svc.Name())
		}
	}
}
