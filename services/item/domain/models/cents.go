package models

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"

	itemdomain "github.com/ghuser/crochestock/services/item/domain"
)

// Cents is an amount in minor currency units. Prices are stored this way so
// that totals never accumulate floating-point drift.
type Cents int64

// MaxUnitPrice is the largest accepted unit price: 10 billion major units.
const MaxUnitPrice Cents = 1_000_000_000_000

// CentsFromMajor converts a decimal amount in major units (e.g. 12.5) into
// Cents, rounding half away from zero: round(v*100).
func CentsFromMajor(v float64) (Cents, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: not a finite number", itemdomain.ErrInvalidPrice)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: must not be negative", itemdomain.ErrInvalidPrice)
	}
	minor := math.Round(v * 100)
	if minor > float64(MaxUnitPrice) {
		return 0, fmt.Errorf("%w: must not exceed %s", itemdomain.ErrInvalidPrice, MaxUnitPrice)
	}
	return Cents(minor), nil
}

// CheckUnitPrice enforces 0 <= c <= MaxUnitPrice. Errors wrap ErrInvalidPrice.
func CheckUnitPrice(c Cents) error {
	if c < 0 {
		return fmt.Errorf("%w: must be >= 0", itemdomain.ErrInvalidPrice)
	}
	if c > MaxUnitPrice {
		return fmt.Errorf("%w: must not exceed %s", itemdomain.ErrInvalidPrice, MaxUnitPrice)
	}
	return nil
}

// Times returns c*n, or ErrValueOverflow when the product does not fit.
// Both operands must be non-negative.
func (c Cents) Times(n int) (Cents, error) {
	if c < 0 || n < 0 {
		return 0, fmt.Errorf("%w: negative operand", itemdomain.ErrValueOverflow)
	}
	hi, lo := bits.Mul64(uint64(c), uint64(n))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s x %d", itemdomain.ErrValueOverflow, c, n)
	}
	return Cents(lo), nil
}

// Plus returns c+d, or ErrValueOverflow when the sum does not fit.
// Both operands must be non-negative.
func (c Cents) Plus(d Cents) (Cents, error) {
	if c < 0 || d < 0 {
		return 0, fmt.Errorf("%w: negative operand", itemdomain.ErrValueOverflow)
	}
	if c > math.MaxInt64-d {
		return 0, fmt.Errorf("%w: %s + %s", itemdomain.ErrValueOverflow, c, d)
	}
	return c + d, nil
}

// Major returns the amount in major units, for display.
func (c Cents) Major() float64 {
	return float64(c) / 100
}

// String formats the amount with two decimals, e.g. "12.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + strconv.FormatInt(v/100, 10) + "." + fmt.Sprintf("%02d", v%100)
}
