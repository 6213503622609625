package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownService is returned when no base rate exists for the
	// requested service type.
	ErrUnknownService = errors.New("pricing: unknown service type")
	// ErrUnknownExtra is returned when an extra has no price entry.
	ErrUnknownExtra = errors.New("pricing: unknown extra")
)

// QuoteRequest describes one booking to price. Extras maps extra name to
// quantity; a zero or negative quantity is ignored.
type QuoteRequest struct {
	ServiceType string
	Bedrooms    int
	Bathrooms   int
	Extras      map[string]int
	Frequency   string
}

// Snapshot is the price breakdown frozen onto a booking at generation time.
// Later rate changes never touch already generated bookings.
type Snapshot struct {
	Subtotal   decimal.Decimal
	ServiceFee decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
}

// Quoter computes a price snapshot for a booking.
type Quoter interface {
	Quote(ctx context.Context, req QuoteRequest) (Snapshot, error)
}

// Rates is the pricing table a TableQuoter works from. Discounts are
// fractions (0.1 means ten percent off the subtotal).
type Rates struct {
	BaseRates          map[string]decimal.Decimal
	PerBedroom         decimal.Decimal
	PerBathroom        decimal.Decimal
	ServiceFee         decimal.Decimal
	ExtraRates         map[string]decimal.Decimal
	FrequencyDiscounts map[string]decimal.Decimal
}

// RateSource supplies the current pricing table.
type RateSource interface {
	Rates(ctx context.Context) (Rates, error)
}

// StaticRates is a RateSource that always returns the same table.
type StaticRates Rates

// Rates implements RateSource.
func (s StaticRates) Rates(context.Context) (Rates, error) {
	return Rates(s), nil
}

// DefaultRates returns the platform's built-in pricing table.
func DefaultRates() Rates {
	return Rates{
		BaseRates: map[string]decimal.Decimal{
			"standard":   decimal.NewFromInt(250),
			"deep":       decimal.NewFromInt(450),
			"move-inout": decimal.NewFromInt(550),
		},
		PerBedroom:  decimal.NewFromInt(20),
		PerBathroom: decimal.NewFromInt(30),
		ServiceFee:  decimal.NewFromInt(50),
		ExtraRates: map[string]decimal.Decimal{
			"inside_fridge":  decimal.NewFromInt(40),
			"inside_oven":    decimal.NewFromInt(50),
			"inside_windows": decimal.NewFromInt(60),
			"laundry":        decimal.NewFromInt(45),
			"ironing":        decimal.NewFromInt(35),
		},
		FrequencyDiscounts: map[string]decimal.Decimal{
			"weekly":           decimal.NewFromFloat(0.15),
			"bi-weekly":        decimal.NewFromFloat(0.10),
			"monthly":          decimal.NewFromFloat(0.05),
			"custom-weekly":    decimal.NewFromFloat(0.15),
			"custom-bi-weekly": decimal.NewFromFloat(0.10),
		},
	}
}

// TableQuoter prices bookings from a rate table:
// subtotal = base + bedrooms*perBedroom + bathrooms*perBathroom + extras,
// discount = subtotal * frequency discount, total = subtotal - discount + fee.
type TableQuoter struct {
	source RateSource
}

// NewTableQuoter constructs a quoter over the given rate source.
func NewTableQuoter(source RateSource) *TableQuoter {
	return &TableQuoter{source: source}
}

// Quote implements Quoter.
func (q *TableQuoter) Quote(ctx context.Context, req QuoteRequest) (Snapshot, error) {
	rates, err := q.source.Rates(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load rates: %w", err)
	}

	base, ok := rates.BaseRates[req.ServiceType]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownService, req.ServiceType)
	}

	subtotal := base.
		Add(rates.PerBedroom.Mul(decimal.NewFromInt(int64(req.Bedrooms)))).
		Add(rates.PerBathroom.Mul(decimal.NewFromInt(int64(req.Bathrooms))))

	for name, quantity := range req.Extras {
		if quantity <= 0 {
			continue
		}
		price, ok := rates.ExtraRates[name]
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownExtra, name)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
	}

	discount := decimal.Zero
	if rate, ok := rates.FrequencyDiscounts[req.Frequency]; ok {
		discount = subtotal.Mul(rate).Round(2)
	}

	total := subtotal.Sub(discount).Add(rates.ServiceFee)

	return Snapshot{
		Subtotal:   subtotal,
		ServiceFee: rates.ServiceFee,
		Discount:   discount,
		Total:      total,
	}, nil
}
