package calculator

import (
	"math"

	"github.com/mmynk/billsplit/internal/models"
)

// UnassignedQuantity returns item.Quantity minus the quantity assigned in row.
// Negative means over-assigned, positive means under-assigned.
func UnassignedQuantity(item models.Item, row []float64) float64 {
	var assigned float64
	for _, q := range row {
		assigned += q
	}
	return item.Quantity - assigned
}

// IsFullyAssigned reports whether the row accounts for the whole item
// within Epsilon.
func IsFullyAssigned(item models.Item, row []float64) bool {
	return math.Abs(UnassignedQuantity(item, row)) < Epsilon
}

// IsAllAssigned reports whether every item is fully assigned.
// An empty ledger is vacuously assigned.
func IsAllAssigned(items []models.Item, shares [][]float64) bool {
	for i, item := range items {
		var row []float64
		if i < len(shares) {
			row = shares[i]
		}
		if !IsFullyAssigned(item, row) {
			return false
		}
	}
	return true
}
