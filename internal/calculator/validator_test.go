package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/billsplit/internal/models"
)

func TestUnassignedQuantity(t *testing.T) {
	item := models.Item{Name: "Soda", Quantity: 3, UnitPrice: 2}
	tests := []struct {
		name string
		row  []float64
		want float64
		full bool
	}{
		{name: "exact", row: []float64{2, 1}, want: 0, full: true},
		{name: "under", row: []float64{1, 1}, want: 1, full: false},
		{name: "over", row: []float64{2, 2}, want: -1, full: false},
		{name: "short by two cents", row: []float64{1, 1, 0.98}, want: 0.02, full: false},
		{name: "rounding noise", row: []float64{1.33, 1.33, 0.34}, want: 0, full: true},
		{name: "empty row", row: nil, want: 3, full: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnassignedQuantity(item, tt.row)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("UnassignedQuantity = %v, want %v", got, tt.want)
			}
			if IsFullyAssigned(item, tt.row) != tt.full {
				t.Errorf("IsFullyAssigned = %v, want %v", !tt.full, tt.full)
			}
		})
	}
}

func TestIsAllAssigned(t *testing.T) {
	items := []models.Item{
		{Name: "Pizza", Quantity: 2, UnitPrice: 10},
		{Name: "Soda", Quantity: 3, UnitPrice: 2},
	}
	if !IsAllAssigned(items, [][]float64{{1, 1}, {2, 1}}) {
		t.Error("expected all assigned")
	}
	if IsAllAssigned(items, [][]float64{{1, 1}, {2, 0}}) {
		t.Error("expected soda to be unassigned")
	}
	if IsAllAssigned(items, [][]float64{{1, 1}}) {
		t.Error("missing row must count as unassigned")
	}
	if !IsAllAssigned(nil, nil) {
		t.Error("empty ledger is vacuously assigned")
	}
}
