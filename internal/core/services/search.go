package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driven"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driving"
	"github.com/parchment-labs/scandex-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers free-text queries by embedding the query and
// joining nearest-neighbour hits back to chunk text.
type SearchService struct {
	chunkStore  driven.ChunkStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
}

// NewSearchService creates a new search service.
func NewSearchService(
	chunkStore driven.ChunkStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		chunkStore:  chunkStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
	}
}

// Search embeds the query as a single-item batch and returns results in the
// index's ascending-distance order, with no re-ranking.
//
// An empty query is rejected with domain.ErrInvalidInput before any
// embedding call. An embedding failure is a service error and propagates.
// Storage errors on the read path degrade to an empty result set, as does a
// hit whose chunk record is missing (it is omitted, never a query failure).
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	logger.Debug("Query: %q, limit: %d", query, limit)

	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: no embedding returned")
	}
	logger.Debug("Query embedding: %d dimensions", len(vectors[0]))

	hits, err := s.vectorIndex.QueryNearest(ctx, vectors[0], limit)
	if err != nil {
		logger.Warn("Nearest-neighbour query failed: %v", err)
		return []domain.SearchResult{}, nil
	}
	logger.Debug("Nearest neighbours: %d hits", len(hits))

	if len(hits) == 0 {
		return []domain.SearchResult{}, nil
	}

	ids := make([]int64, 0, len(hits))
	for _, hit := range hits {
		id, err := strconv.ParseInt(hit.ChunkID, 10, 64)
		if err != nil {
			logger.Warn("Unparseable chunk id %q in index", hit.ChunkID)
			continue
		}
		ids = append(ids, id)
	}

	chunks, err := s.chunkStore.LookupChunks(ctx, ids)
	if err != nil {
		logger.Warn("Chunk join failed: %v", err)
		return []domain.SearchResult{}, nil
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		id, err := strconv.ParseInt(hit.ChunkID, 10, 64)
		if err != nil {
			continue
		}
		chunk, ok := chunks[id]
		if !ok {
			// A hit without a chunk record degrades that result only.
			logger.Warn("Chunk %d missing for index hit, omitting result", id)
			continue
		}
		results = append(results, domain.SearchResult{
			Chunk:    chunk,
			Distance: hit.Distance,
		})
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}
