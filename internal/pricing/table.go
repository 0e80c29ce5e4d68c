// Package pricing holds the per-service ticket price tables.  A ticket type
// carries either a discount fraction applied to the service's Regular base
// price, or a flat override amount (a premium tier like VIP keeps its own
// fixed price while receipts still report the nominal Regular base).  The
// base-vs-final distinction is user visible and must be preserved exactly.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// RateKind discriminates the two interpretations of a configured rate.
type RateKind int

const (
	// Discount applies a fraction in (0,1) to the Regular base price.
	Discount RateKind = iota
	// FlatPrice replaces the final price outright.
	FlatPrice
)

// Rate is the tagged rate for one ticket type.  Exactly one of Fraction or
// Amount is meaningful, selected by Kind.
type Rate struct {
	Kind     RateKind
	Fraction float64 // discount fraction, Kind == Discount
	Amount   int64   // centavos, Kind == FlatPrice
}

// Quote is a priced ticket: the nominal base and the amount actually charged,
// both in centavos.
type Quote struct {
	Base  int64
	Final int64
}

// UnknownTicketTypeError reports a ticket type not configured for a service.
type UnknownTicketTypeError struct {
	Service    model.Service
	TicketType string
}

func (e *UnknownTicketTypeError) Error() string {
	return fmt.Sprintf("unknown ticket type %q for service %s", e.TicketType, e.Service.Name())
}

// Table maps (service, ticket type) to a Rate.  It is built once at startup
// and read-only afterwards.
type Table struct {
	rates map[model.Service]map[string]Rate
}

// regularType is the ticket type whose flat amount is every discount's base.
const regularType = "Regular"

// Default returns the built-in price tables: Regular and VIP as flat amounts
// per service, and the shared discount tiers.
func Default() *Table {
	discounts := map[string]float64{
		"Senior":  0.20,
		"Student": 0.10,
		"PWD":     0.20,
		"Child":   0.50,
	}
	flat := map[model.Service]map[string]int64{
		model.ServiceCinema:   {"Regular": 15000, "VIP": 30000},
		model.ServiceBus:      {"Regular": 10000, "VIP": 15000},
		model.ServiceAirplane: {"Regular": 120000, "VIP": 200000},
	}
	rates := make(map[model.Service]map[string]Rate, len(flat))
	for svc, amounts := range flat {
		m := make(map[string]Rate, len(amounts)+len(discounts))
		for tt, cents := range amounts {
			m[tt] = Rate{Kind: FlatPrice, Amount: cents}
		}
		for tt, fr := range discounts {
			m[tt] = Rate{Kind: Discount, Fraction: fr}
		}
		rates[svc] = m
	}
	return &Table{rates: rates}
}

// LoadFile reads a JSON pricing override of the form
// {"C": {"Regular": 150, "VIP": 300, "Senior": 0.20}, ...} where each value
// is interpreted the way the legacy tables were: a number in (0,1) is a
// discount fraction, a number >= 1 is a flat peso amount.
func LoadFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricing: read %s: %w", path, err)
	}
	var doc map[string]map[string]float64
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("pricing: parse %s: %w", path, err)
	}
	rates := make(map[model.Service]map[string]Rate, len(doc))
	for key, entries := range doc {
		svc, err := model.ParseService(key)
		if err != nil {
			return nil, fmt.Errorf("pricing: %w", err)
		}
		m := make(map[string]Rate, len(entries))
		for tt, v := range entries {
			r, err := rateFromNumber(v)
			if err != nil {
				return nil, fmt.Errorf("pricing: %s/%s: %w", key, tt, err)
			}
			m[tt] = r
		}
		if _, ok := m[regularType]; !ok {
			return nil, fmt.Errorf("pricing: service %s has no %s price", key, regularType)
		}
		rates[svc] = m
	}
	return &Table{rates: rates}, nil
}

// rateFromNumber applies the legacy dual interpretation of a configured
// number: fractions in (0,1) exclusive are discounts, values >= 1 are flat
// peso amounts converted to centavos.
func rateFromNumber(v float64) (Rate, error) {
	switch {
	case v > 0 && v < 1:
		return Rate{Kind: Discount, Fraction: v}, nil
	case v >= 1:
		return Rate{Kind: FlatPrice, Amount: int64(math.Round(v * 100))}, nil
	}
	return Rate{}, fmt.Errorf("invalid rate value %v", v)
}

// TicketTypes returns the ticket types configured for a service, sorted with
// Regular first and the rest alphabetical so menus render deterministically.
func (t *Table) TicketTypes(service model.Service) []string {
	m := t.rates[service]
	types := make([]string, 0, len(m))
	for tt := range m {
		if tt != regularType {
			types = append(types, tt)
		}
	}
	sort.Strings(types)
	if _, ok := m[regularType]; ok {
		types = append([]string{regularType}, types...)
	}
	return types
}

// QuoteFor resolves the base and final price for a ticket type.  Discount
// entries compute final = base * (1 - fraction); flat entries keep the
// Regular base but charge their own amount.
func (t *Table) QuoteFor(service model.Service, ticketType string) (Quote, error) {
	m, ok := t.rates[service]
	if !ok {
		return Quote{}, &UnknownTicketTypeError{Service: service, TicketType: ticketType}
	}
	rate, ok := m[ticketType]
	if !ok {
		return Quote{}, &UnknownTicketTypeError{Service: service, TicketType: ticketType}
	}
	base := m[regularType].Amount
	switch rate.Kind {
	case Discount:
		final := int64(math.Round(float64(base) * (1 - rate.Fraction)))
		return Quote{Base: base, Final: final}, nil
	case FlatPrice:
		return Quote{Base: base, Final: rate.Amount}, nil
	}
	return Quote{}, &UnknownTicketTypeError{Service: service, TicketType: ticketType}
}
