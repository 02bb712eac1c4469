package models

// Participant is one person splitting the bill.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	// Identity is the ID, not the name.
	ID string `json:"id"`

	// Name is the trimmed display name. Names are unique within a roster
	// under case-insensitive comparison.
	Name string `json:"name"`
}

// Item represents a single line item on a bill.
// Items are shared among participants in fractional quantities.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	// Assigned when the item enters a session.
	ID string `json:"id"`

	// Name is the item description (e.g., "Pizza", "Soda").
	Name string `json:"name"`

	// Quantity is the number of units on the bill. May be fractional.
	Quantity float64 `json:"quantity"`

	// UnitPrice is the pre-tax price of one unit.
	UnitPrice float64 `json:"unit_price"`
}

// Total returns quantity × unit price.
func (i Item) Total() float64 {
	return i.Quantity * i.UnitPrice
}

// PersonSummary represents one participant's calculated share of a bill.
// This is the output of the settlement calculation.
type PersonSummary struct {
	Participant Participant `json:"participant"`

	// Subtotal is the sum of share quantity × unit price over all items.
	Subtotal float64 `json:"subtotal"`

	// TaxShare is this participant's proportional share of tax/tip.
	// Calculated as: (subtotal / total_subtotal) × tax_amount
	TaxShare float64 `json:"tax_share"`

	// FinalTotal is subtotal + tax share.
	FinalTotal float64 `json:"final_total"`
}
