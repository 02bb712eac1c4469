package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/billsplit/internal/models"
)

type extractedItem struct {
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// ParseItems pulls the first JSON array out of the model reply and keeps the
// entries with a name and positive quantity and price. A reply cut off
// before its closing bracket is repaired by dropping the partial last entry.
func ParseItems(text string) ([]models.Item, error) {
	raw, err := findArray(text)
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}

	items := make([]models.Item, 0, len(entries))
	for _, entry := range entries {
		var e extractedItem
		if err := json.Unmarshal(entry, &e); err != nil {
			slog.Debug("Skipping malformed item", "entry", string(entry), "error", err)
			continue
		}
		name := strings.TrimSpace(e.ItemName)
		if name == "" || e.Quantity <= 0 || e.UnitPrice <= 0 {
			slog.Debug("Skipping invalid item", "name", e.ItemName, "quantity", e.Quantity, "unit_price", e.UnitPrice)
			continue
		}
		items = append(items, models.Item{Name: name, Quantity: e.Quantity, UnitPrice: e.UnitPrice})
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

func findArray(text string) (string, error) {
	start := strings.Index(text, "[")
	if start < 0 {
		return "", ErrNoJSON
	}
	rest := text[start:]

	if end := strings.Index(rest, "]"); end >= 0 {
		return rest[:end+1], nil
	}

	// Truncated reply: cut at the last comma and close the array. When the
	// cut lands inside an object, fall back to the last complete object.
	if comma := strings.LastIndex(rest, ","); comma >= 0 {
		if repaired := rest[:comma] + "]"; json.Valid([]byte(repaired)) {
			return repaired, nil
		}
	}
	if brace := strings.LastIndex(rest, "}"); brace >= 0 {
		return rest[:brace+1] + "]", nil
	}
	return rest + "]", nil
}
