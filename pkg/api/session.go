// Package api defines the wire messages of billsplit.v1.SessionService.
//
// Messages travel as JSON. Field names follow the snake_case convention of
// the rest of the service.
package api

// Participant is one person on the roster.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one ledger line.
type Item struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// ItemInput is an item submitted by the client. IDs are assigned by the
// server.
type ItemInput struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Quantity  float64 `json:"quantity" validate:"finite,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"finite,gt=0"`
}

// PersonSummary is one participant's settlement.
type PersonSummary struct {
	Participant Participant `json:"participant"`
	Subtotal    float64     `json:"subtotal"`
	TaxShare    float64     `json:"tax_share"`
	FinalTotal  float64     `json:"final_total"`
}

// Session is the full client view of a split session.
type Session struct {
	ID           string        `json:"id"`
	Participants []Participant `json:"participants"`
	Items        []Item        `json:"items"`
	// Shares[i][p] is the quantity of item i assigned to participant p.
	Shares    [][]float64 `json:"shares"`
	TaxAmount float64     `json:"tax_amount"`
	Phase     string      `json:"phase"`
	// Unassigned[i] is item i's quantity minus its assigned shares.
	Unassigned  []float64 `json:"unassigned"`
	AllAssigned bool      `json:"all_assigned"`
	UpdatedAt   int64     `json:"updated_at"`
}

type StartSessionRequest struct{}

type StartSessionResponse struct {
	Session   *Session `json:"session"`
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	Session *Session `json:"session"`
}

type SetItemsRequest struct {
	Items []ItemInput `json:"items" validate:"dive"`
}

type SetItemsResponse struct {
	Session *Session `json:"session"`
}

type ExtractItemsRequest struct {
	MimeType string `json:"mime_type" validate:"required"`
	// Image is base64 in JSON.
	Image []byte `json:"image" validate:"required"`
}

type ExtractItemsResponse struct {
	Session *Session `json:"session"`
	// Truncated means the receipt may contain more items than were read.
	Truncated bool `json:"truncated"`
}

type UpdateItemRequest struct {
	Index int       `json:"index"`
	Item  ItemInput `json:"item"`
}

type UpdateItemResponse struct {
	Item    Item     `json:"item"`
	Session *Session `json:"session"`
}

type AddParticipantRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AddParticipantResponse struct {
	Participant Participant `json:"participant"`
	Session     *Session    `json:"session"`
}

type RemoveParticipantRequest struct {
	ParticipantID string `json:"participant_id" validate:"required"`
}

type RemoveParticipantResponse struct {
	Session *Session `json:"session"`
}

// SetShareRequest addresses a cell by IDs when both are set, otherwise by
// indices.
type SetShareRequest struct {
	ItemID           string  `json:"item_id,omitempty" validate:"required_with=ParticipantID"`
	ParticipantID    string  `json:"participant_id,omitempty" validate:"required_with=ItemID"`
	ItemIndex        int     `json:"item_index"`
	ParticipantIndex int     `json:"participant_index"`
	Quantity         float64 `json:"quantity"`
}

type SetShareResponse struct {
	// Quantity is the stored value after clamping and rounding.
	Quantity float64  `json:"quantity"`
	Session  *Session `json:"session"`
}

type SetTaxAmountRequest struct {
	Amount float64 `json:"amount"`
}

type SetTaxAmountResponse struct {
	TaxAmount float64  `json:"tax_amount"`
	Session   *Session `json:"session"`
}

type GetSummaryRequest struct{}

type GetSummaryResponse struct {
	Summaries  []PersonSummary `json:"summaries"`
	GrandTotal float64         `json:"grand_total"`
	// AllAssigned reports whether the summaries cover the whole bill.
	AllAssigned bool `json:"all_assigned"`
}

type SettleRequest struct{}

type SettleResponse struct {
	Summaries  []PersonSummary `json:"summaries"`
	GrandTotal float64         `json:"grand_total"`
}

// Export formats.
const (
	ExportFormatMessage  = "message"
	ExportFormatWhatsApp = "whatsapp"
	ExportFormatJSON     = "json"
)

type ExportSummaryRequest struct {
	// Format defaults to message.
	Format string `json:"format" validate:"omitempty,oneof=message whatsapp json"`
}

type ExportSummaryResponse struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

type ResetRequest struct{}

type ResetResponse struct {
	Session *Session `json:"session"`
}

type EndSessionRequest struct{}

type EndSessionResponse struct{}
