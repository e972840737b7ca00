package driving

import (
	"context"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

// CorpusService exposes read-only views over the embedded corpus. It backs
// the MCP resource surface.
type CorpusService interface {
	// ListDocuments returns every document with at least one persisted
	// chunk, sorted by id.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DocumentText returns the markdown artifact text for a document.
	// Returns domain.ErrNotFound when no artifact exists.
	DocumentText(ctx context.Context, documentID string) (string, error)
}
