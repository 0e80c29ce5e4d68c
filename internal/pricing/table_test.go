package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-inventory/internal/model"
)

func TestDefaultQuotes(t *testing.T) {
	table := Default()

	t.Run("regular is its own base", func(t *testing.T) {
		q, err := table.QuoteFor(model.ServiceCinema, "Regular")
		require.NoError(t, err)
		assert.Equal(t, int64(15000), q.Base)
		assert.Equal(t, int64(15000), q.Final)
	})

	t.Run("discount applies to the regular base", func(t *testing.T) {
		q, err := table.QuoteFor(model.ServiceCinema, "Senior")
		require.NoError(t, err)
		assert.Equal(t, int64(15000), q.Base)
		assert.Equal(t, int64(12000), q.Final) // 20% off 150.00

		q, err = table.QuoteFor(model.ServiceBus, "Senior")
		require.NoError(t, err)
		assert.Equal(t, int64(10000), q.Base)
		assert.Equal(t, int64(8000), q.Final) // 100.00 -> 80.00
	})

	t.Run("flat tier keeps the regular base but charges its own amount", func(t *testing.T) {
		q, err := table.QuoteFor(model.ServiceBus, "VIP")
		require.NoError(t, err)
		assert.Equal(t, int64(10000), q.Base)
		assert.Equal(t, int64(15000), q.Final)
		assert.NotEqual(t, q.Base, q.Final)
	})

	t.Run("child is half the regular base", func(t *testing.T) {
		q, err := table.QuoteFor(model.ServiceAirplane, "Child")
		require.NoError(t, err)
		assert.Equal(t, int64(120000), q.Base)
		assert.Equal(t, int64(60000), q.Final)
	})

	t.Run("unknown type is rejected with a typed error", func(t *testing.T) {
		_, err := table.QuoteFor(model.ServiceCinema, "Platinum")
		var ute *UnknownTicketTypeError
		require.ErrorAs(t, err, &ute)
		assert.Equal(t, "Platinum", ute.TicketType)
	})
}

func TestTicketTypes(t *testing.T) {
	table := Default()
	types := table.TicketTypes(model.ServiceCinema)
	require.NotEmpty(t, types)
	assert.Equal(t, "Regular", types[0])
	assert.Equal(t, []string{"Regular", "Child", "PWD", "Senior", "Student", "VIP"}, types)
}

func TestLoadFile(t *testing.T) {
	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "pricing.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	t.Run("fractions are discounts and values over one are flat pesos", func(t *testing.T) {
		table, err := LoadFile(write(t, `{"C": {"Regular": 200, "VIP": 450, "Senior": 0.25}}`))
		require.NoError(t, err)

		q, err := table.QuoteFor(model.ServiceCinema, "Senior")
		require.NoError(t, err)
		assert.Equal(t, int64(20000), q.Base)
		assert.Equal(t, int64(15000), q.Final)

		q, err = table.QuoteFor(model.ServiceCinema, "VIP")
		require.NoError(t, err)
		assert.Equal(t, int64(20000), q.Base)
		assert.Equal(t, int64(45000), q.Final)
	})

	t.Run("missing regular price is rejected", func(t *testing.T) {
		_, err := LoadFile(write(t, `{"B": {"VIP": 300}}`))
		assert.Error(t, err)
	})

	t.Run("zero and negative rates are rejected", func(t *testing.T) {
		_, err := LoadFile(write(t, `{"C": {"Regular": 150, "Promo": 0}}`))
		assert.Error(t, err)
		_, err = LoadFile(write(t, `{"C": {"Regular": 150, "Promo": -5}}`))
		assert.Error(t, err)
	})

	t.Run("unknown service key is rejected", func(t *testing.T) {
		_, err := LoadFile(write(t, `{"T": {"Regular": 150}}`))
		assert.Error(t, err)
	})
}
