package export

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
)

func pizzaSummaries() []models.PersonSummary {
	return []models.PersonSummary{
		{Participant: models.Participant{ID: "a", Name: "Alice"}, Subtotal: 14, TaxShare: 3.230769, FinalTotal: 17.230769},
		{Participant: models.Participant{ID: "b", Name: "Bob"}, Subtotal: 12, TaxShare: 2.769231, FinalTotal: 14.769231},
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		currency string
		in       float64
		want     string
	}{
		{"", 17.230769, "₹17.23"},
		{"$", 1.005, "$1.01"},
		{"€", 0, "€0.00"},
		{"$", 1234.5, "$1234.50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRenderer(tt.currency).FormatAmount(tt.in))
		})
	}
}

func TestMessage(t *testing.T) {
	msg := NewRenderer("").Message(pizzaSummaries())

	want := "🧾 *Bill Split Summary*\n\n" +
		"👤 *Alice*\n   Subtotal: ₹14.00\n   Tax/Tip: ₹3.23\n   *Total: ₹17.23*\n\n" +
		"👤 *Bob*\n   Subtotal: ₹12.00\n   Tax/Tip: ₹2.77\n   *Total: ₹14.77*\n\n" +
		"💰 *Grand Total: ₹32.00*"
	assert.Equal(t, want, msg)
}

func TestWhatsAppLink(t *testing.T) {
	msg := "Total: ₹32.00 & done"
	link := WhatsAppLink(msg)

	require.True(t, strings.HasPrefix(link, "https://wa.me/?text="))
	assert.NotContains(t, link, "+")
	assert.NotContains(t, link, " ")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, msg, u.Query().Get("text"))
}

func TestJSON(t *testing.T) {
	items := []models.Item{
		{ID: "i1", Name: "Pizza", Quantity: 2, UnitPrice: 10},
		{ID: "i2", Name: "Soda", Quantity: 3, UnitPrice: 2},
	}
	data, err := JSON("sess-1", items, pizzaSummaries(), 6)
	require.NoError(t, err)

	var doc struct {
		SessionID  string  `json:"session_id"`
		TaxAmount  float64 `json:"tax_amount"`
		GrandTotal float64 `json:"grand_total"`
		Items      []struct {
			Name  string  `json:"name"`
			Total float64 `json:"total"`
		} `json:"items"`
		Summaries []struct {
			Name       string  `json:"name"`
			FinalTotal float64 `json:"final_total"`
		} `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "sess-1", doc.SessionID)
	assert.Equal(t, 6.0, doc.TaxAmount)
	assert.InDelta(t, 32.0, doc.GrandTotal, 1e-9)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, 20.0, doc.Items[0].Total)
	require.Len(t, doc.Summaries, 2)
	assert.Equal(t, "Bob", doc.Summaries[1].Name)
}

func TestJSON_Empty(t *testing.T) {
	data, err := JSON("sess-2", nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
