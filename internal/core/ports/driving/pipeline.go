package driving

import (
	"context"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

// OCRStage converts pending PDFs into markdown artifacts.
type OCRStage interface {
	// Run processes every PDF without an existing artifact. One document's
	// OCR failure is logged and does not halt the run.
	Run(ctx context.Context) (*domain.OCRSummary, error)
}

// Ingestor chunks and embeds pending markdown artifacts.
type Ingestor interface {
	// Run embeds every document with zero persisted chunks. An embedding
	// error aborts the call at the offending document; already-completed
	// documents are never re-processed.
	Run(ctx context.Context) (*domain.IngestSummary, error)
}

// SearchService answers free-text queries over the embedded corpus.
type SearchService interface {
	// Search embeds the query and returns results ordered by ascending
	// distance. An empty query yields domain.ErrInvalidInput before any
	// embedding call is made.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
