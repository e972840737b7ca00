package driven

import (
	"context"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

// OCRService converts a scanned PDF into text, one Page per source page.
//
// Implementations call an external OCR provider; errors are opaque to the
// core and are logged per document by the OCR stage.
type OCRService interface {
	// Process submits the document bytes and returns the extracted pages
	// in original page order.
	Process(ctx context.Context, data []byte) ([]domain.Page, error)

	// ModelName returns the name of the OCR model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
