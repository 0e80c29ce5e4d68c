package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-inventory/internal/model"
)

func TestMemoryLog(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	fill := func(t *testing.T, l *MemoryLog, n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			require.NoError(t, l.Append(ctx, model.AuditRecord{
				Timestamp: base.Add(time.Duration(i) * time.Minute),
				Service:   model.ServiceCinema,
				Seat:      model.SeatID(fmt.Sprintf("%dA", i+1)),
				Action:    model.ActionReservation,
				Details:   fmt.Sprintf("entry %d", i),
			}))
		}
	}

	t.Run("append assigns an id and preserves order", func(t *testing.T) {
		l := NewMemoryLog()
		fill(t, l, 3)

		recs, err := l.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		for i, r := range recs {
			assert.NotEmpty(t, r.ID)
			assert.Equal(t, fmt.Sprintf("entry %d", i), r.Details)
		}
	})

	t.Run("recent returns the tail in append order", func(t *testing.T) {
		l := NewMemoryLog()
		fill(t, l, 5)

		recs, err := l.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "entry 3", recs[0].Details)
		assert.Equal(t, "entry 4", recs[1].Details)
	})

	t.Run("n larger than the log returns everything", func(t *testing.T) {
		l := NewMemoryLog()
		fill(t, l, 2)

		recs, err := l.Recent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("caller cannot mutate stored records", func(t *testing.T) {
		l := NewMemoryLog()
		fill(t, l, 1)

		recs, err := l.Recent(ctx, 0)
		require.NoError(t, err)
		recs[0].Details = "tampered"

		again, err := l.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "entry 0", again[0].Details)
	})
}
