package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driven"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driving"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService answers read-only questions about the embedded corpus.
type CorpusService struct {
	chunkStore driven.ChunkStore
	mdDir      string
}

// NewCorpusService creates a new corpus service.
func NewCorpusService(chunkStore driven.ChunkStore, mdDir string) *CorpusService {
	return &CorpusService{
		chunkStore: chunkStore,
		mdDir:      mdDir,
	}
}

// ListDocuments returns every embedded document sorted by id.
func (c *CorpusService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	processed, err := c.chunkStore.ProcessedDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	documents := make([]domain.Document, 0, len(processed))
	for id := range processed {
		documents = append(documents, domain.Document{
			ID:           id,
			ArtifactPath: filepath.Join(c.mdDir, replaceExt(id, ".md")),
		})
	}
	sort.Slice(documents, func(i, j int) bool {
		return documents[i].ID < documents[j].ID
	})
	return documents, nil
}

// DocumentText returns the markdown artifact text for a document.
func (c *CorpusService) DocumentText(_ context.Context, documentID string) (string, error) {
	// Reject path traversal in externally supplied ids.
	if filepath.Base(documentID) != documentID {
		return "", fmt.Errorf("%w: invalid document id %q", domain.ErrInvalidInput, documentID)
	}

	artifact := filepath.Join(c.mdDir, replaceExt(documentID, ".md"))
	data, err := os.ReadFile(artifact)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	if err != nil {
		return "", fmt.Errorf("reading artifact: %w", err)
	}
	return string(data), nil
}
