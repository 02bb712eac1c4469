package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultTimeout       = 30 * time.Second

	finishReasonMaxTokens = "MAX_TOKENS"
)

const receiptPrompt = `
Analyze this receipt/bill image and extract ALL menu items with their quantities and prices.

Return ONLY a valid JSON array in this exact format:
[
  {
    "item_name": "Item Name",
    "quantity": 1,
    "unit_price": 12.99
  }
]

IMPORTANT RULES:
- Extract ALL food/beverage/product items from the receipt, do not limit the number
- Skip only headers, restaurant name, totals, tax, tips, service charges, etc.
- If quantity is not specified, assume 1
- Convert total prices to unit prices if quantity > 1
- Use reasonable prices (between 0.50 and 2000.00)
- If text is unclear, make reasonable assumptions for restaurant/store items
- Include every single item that appears on the bill
- Do not include any explanation, markdown formatting, or extra text
- Return ONLY the JSON array, nothing else
`

// GeminiConfig configures a GeminiClient. Zero values take defaults.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient extracts items with the Gemini generateContent endpoint.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// Ensure GeminiClient implements Extractor
var _ Extractor = (*GeminiClient)(nil)

// NewGeminiClient creates a client. A missing API key is reported on each
// Extract call as ErrNotConfigured so the server can still start.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  &http.Client{},
	}
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// Extract sends the image to Gemini once and parses the reply.
func (g *GeminiClient) Extract(ctx context.Context, img Image) (*Result, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: receiptPrompt},
				{InlineData: &inlineData{
					MIMEType: img.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(img.Data),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			TopK:            1,
			TopP:            1,
			MaxOutputTokens: 4000,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("gemini request timed out after %s: %w", g.timeout, err)
		}
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result generateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("empty gemini response")
	}
	candidate := result.Candidates[0]

	items, err := ParseItems(candidate.Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	truncated := candidate.FinishReason == finishReasonMaxTokens
	if truncated {
		slog.Warn("Gemini response truncated, receipt may contain more items", "items", len(items))
	}
	slog.Info("Extracted items from receipt",
		"items", len(items),
		"model", g.model,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Items: items, Truncated: truncated}, nil
}
