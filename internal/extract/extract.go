// Package extract turns a receipt image into ledger items.
//
// The only implementation calls the Gemini vision API once per request;
// there is no retry. Callers bound the call with a context deadline.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/billsplit/internal/models"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 10 * 1024 * 1024

var (
	ErrEmptyImage      = errors.New("no image provided")
	ErrUnsupportedType = errors.New("only image files are allowed")
	ErrImageTooLarge   = errors.New("image must be at most 10MB")
	ErrNotConfigured   = errors.New("extraction API key is not configured")
	ErrNoItems         = errors.New("no valid items extracted")
	ErrNoJSON          = errors.New("no JSON array found in response")
)

// Image is an uploaded receipt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Validate checks the MIME type and size limits.
func (img Image) Validate() error {
	if len(img.Data) == 0 {
		return ErrEmptyImage
	}
	if !strings.HasPrefix(img.MIMEType, "image/") {
		return fmt.Errorf("%w: got %q", ErrUnsupportedType, img.MIMEType)
	}
	if len(img.Data) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(img.Data))
	}
	return nil
}

// Result is the outcome of one extraction.
type Result struct {
	Items []models.Item
	// Truncated is set when the model stopped at its output token limit;
	// the receipt may hold more items than were returned.
	Truncated bool
}

// Extractor produces ledger items from a receipt image.
type Extractor interface {
	Extract(ctx context.Context, img Image) (*Result, error)
}
