// Package export renders settlement results for sharing: a chat-friendly
// text message, a WhatsApp share link, and a structured JSON document.
package export

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

// DefaultCurrency is the symbol used when none is configured.
const DefaultCurrency = "₹"

const whatsAppBaseURL = "https://wa.me/?text="

// Renderer formats amounts with a fixed currency symbol.
type Renderer struct {
	Currency string
}

// NewRenderer creates a Renderer. An empty symbol falls back to
// DefaultCurrency.
func NewRenderer(currency string) *Renderer {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Renderer{Currency: currency}
}

// FormatAmount renders v with two decimals, rounding half away from zero.
func (r *Renderer) FormatAmount(v float64) string {
	return r.Currency + decimal.NewFromFloat(v).StringFixed(2)
}

// Message renders the per-person breakdown and grand total using WhatsApp
// markup (*bold*).
func (r *Renderer) Message(summaries []models.PersonSummary) string {
	var b strings.Builder
	b.WriteString("🧾 *Bill Split Summary*\n\n")

	for _, s := range summaries {
		fmt.Fprintf(&b, "👤 *%s*\n", s.Participant.Name)
		fmt.Fprintf(&b, "   Subtotal: %s\n", r.FormatAmount(s.Subtotal))
		fmt.Fprintf(&b, "   Tax/Tip: %s\n", r.FormatAmount(s.TaxShare))
		fmt.Fprintf(&b, "   *Total: %s*\n\n", r.FormatAmount(s.FinalTotal))
	}

	fmt.Fprintf(&b, "💰 *Grand Total: %s*", r.FormatAmount(calculator.GrandTotal(summaries)))
	return b.String()
}

// WhatsAppLink returns a wa.me link that opens a chat prefilled with
// message.
func WhatsAppLink(message string) string {
	// QueryEscape encodes spaces as '+', which wa.me shows literally.
	return whatsAppBaseURL + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// Struct builds a google.protobuf.Struct document of the settlement.
func Struct(sessionID string, items []models.Item, summaries []models.PersonSummary, taxAmount float64) (*structpb.Struct, error) {
	itemList := make([]any, len(items))
	for i, item := range items {
		itemList[i] = map[string]any{
			"id":         item.ID,
			"name":       item.Name,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
			"total":      item.Total(),
		}
	}

	summaryList := make([]any, len(summaries))
	for i, s := range summaries {
		summaryList[i] = map[string]any{
			"participant_id": s.Participant.ID,
			"name":           s.Participant.Name,
			"subtotal":       s.Subtotal,
			"tax_share":      s.TaxShare,
			"final_total":    s.FinalTotal,
		}
	}

	doc, err := structpb.NewStruct(map[string]any{
		"session_id":  sessionID,
		"tax_amount":  taxAmount,
		"grand_total": calculator.GrandTotal(summaries),
		"items":       itemList,
		"summaries":   summaryList,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build export document: %w", err)
	}
	return doc, nil
}

// JSON renders the settlement document as indented JSON.
func JSON(sessionID string, items []models.Item, summaries []models.PersonSummary, taxAmount float64) ([]byte, error) {
	doc, err := Struct(sessionID, items, summaries, taxAmount)
	if err != nil {
		return nil, err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export document: %w", err)
	}
	return data, nil
}
