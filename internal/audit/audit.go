// Package audit keeps the append-only trail of every state-changing action.
// Records are never edited, deleted or truncated; Recent returns the tail of
// the log in append order.
package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// Log is the audit sink.  Append assigns the record its ID and timestamp
// order; it fails only on unrecoverable storage errors, which the engine
// treats as fatal for the triggering operation.
type Log interface {
	Append(ctx context.Context, rec model.AuditRecord) error
	Recent(ctx context.Context, n int) ([]model.AuditRecord, error)
}

// MemoryLog is the in-process Log used by tests and the no-database setup.
type MemoryLog struct {
	mu   sync.RWMutex
	recs []model.AuditRecord
}

// NewMemoryLog returns an empty in-memory audit log.
func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

// Append adds one record to the tail of the log.
func (l *MemoryLog) Append(_ context.Context, rec model.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	l.mu.Lock()
	l.recs = append(l.recs, rec)
	l.mu.Unlock()
	return nil
}

// Recent returns the last n records in append order.  n <= 0 or n larger
// than the log returns everything.
func (l *MemoryLog) Recent(_ context.Context, n int) ([]model.AuditRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := 0
	if n > 0 && n < len(l.recs) {
		start = len(l.recs) - n
	}
	out := make([]model.AuditRecord, len(l.recs)-start)
	copy(out, l.recs[start:])
	return out, nil
}
