package calculator

import (
	"github.com/mmynk/billsplit/internal/models"
)

// shareAt returns shares[item][person], or 0 if the grid is short.
func shareAt(shares [][]float64, item, person int) float64 {
	if item >= len(shares) || person >= len(shares[item]) {
		return 0
	}
	return shares[item][person]
}

// Subtotals computes each participant's pre-tax spend:
// subtotal[p] = Σ_items shares[item][p] × item.UnitPrice.
// The share quantity scales the unit price directly, so half of a
// quantity-2 item costs half a unit.
func Subtotals(items []models.Item, shares [][]float64, participantCount int) []float64 {
	subtotals := make([]float64, participantCount)
	for p := range subtotals {
		for i, item := range items {
			subtotals[p] += shareAt(shares, i, p) * item.UnitPrice
		}
	}
	return subtotals
}

// AllocateTax distributes taxAmount proportionally to spend:
// taxShare[p] = (subtotal[p] / Σ subtotal) × taxAmount.
//
// Shares are not rounded to cents, so their sum reconstructs taxAmount up to
// floating-point error. When nobody has spent anything, every share is 0.
func AllocateTax(subtotals []float64, taxAmount float64) []float64 {
	var total float64
	for _, s := range subtotals {
		total += s
	}

	shares := make([]float64, len(subtotals))
	if total == 0 {
		return shares
	}
	for p, s := range subtotals {
		shares[p] = (s / total) * taxAmount
	}
	return shares
}

// Settle computes the per-participant settlement in roster order.
// It is a pure function: identical inputs yield bit-identical output.
func Settle(items []models.Item, shares [][]float64, participants []models.Participant, taxAmount float64) []models.PersonSummary {
	subtotals := Subtotals(items, shares, len(participants))
	taxShares := AllocateTax(subtotals, taxAmount)

	summaries := make([]models.PersonSummary, len(participants))
	for p, participant := range participants {
		summaries[p] = models.PersonSummary{
			Participant: participant,
			Subtotal:    subtotals[p],
			TaxShare:    taxShares[p],
			FinalTotal:  subtotals[p] + taxShares[p],
		}
	}
	return summaries
}

// GrandTotal sums the final totals of all summaries.
func GrandTotal(summaries []models.PersonSummary) float64 {
	var total float64
	for _, s := range summaries {
		total += s.FinalTotal
	}
	return total
}
