package calculator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance for treating an item as fully assigned.
// It absorbs rounding noise from 2-decimal-place shares.
const Epsilon = 0.01

// ErrNotFinite is returned when an amount is NaN or infinite.
var ErrNotFinite = errors.New("amount must be a finite number")

// Round2 rounds to 2 decimal places, half away from zero, on the shortest
// decimal representation of v. 1.005 rounds to 1.01 and 2.675 to 2.68,
// unlike naive math.Round(v*100)/100 which sees the binary value.
//
// Every mutation path that stores a share or tax amount goes through here.
func Round2(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64(), nil
}

// ClampAmount returns max(0, Round2(v)).
func ClampAmount(v float64) (float64, error) {
	r, err := Round2(v)
	if err != nil {
		return 0, err
	}
	if r <= 0 {
		// Normalizes -0 as well.
		return 0, nil
	}
	return r, nil
}
