package models

// Session is the persisted snapshot of a split session.
// Shares is positional: Shares[itemIndex][participantIndex], sized
// len(Items) × len(Participants).
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	Participants []Participant
	Items        []Item
	Shares       [][]float64

	// TaxAmount is the tax/tip for the whole bill.
	TaxAmount float64

	// Settled is true once the settlement was presented and nothing has
	// changed since.
	Settled bool

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}
