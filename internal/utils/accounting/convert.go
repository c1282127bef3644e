package accounting

import (
	"fmt"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the decimal precision ledger amounts are rounded to.
const CurrencyPrecision = 2

// Epsilon is the absolute tolerance used when comparing monetary sums, e.g.
// when guarding payment allocations against rounding drift.
var Epsilon = decimal.New(1, -6) // 1e-6

// ToBase converts an amount from a document's transaction currency into the
// company base currency. The rate is "base units per 1 transaction unit",
// snapshotted onto the document at creation.
func ToBase(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateRate(rate); err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// FromBase converts a base-currency amount into the transaction currency of
// a document with the given snapshotted rate.
func FromBase(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateRate(rate); err != nil {
		return decimal.Zero, err
	}
	// DivRound keeps quotients at ledger precision plus guard digits.
	return amount.DivRound(rate, CurrencyPrecision+4), nil
}

// ValidateRate rejects non-positive exchange rates.
func ValidateRate(rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: rate must be positive, got %s", apperrors.ErrInvalidRate, rate.String())
	}
	return nil
}

// RoundCurrency rounds an amount to ledger currency precision.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPrecision)
}

// WithinEpsilon reports whether two amounts differ by no more than Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
