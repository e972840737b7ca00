package driven

import (
	"context"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

// ChunkStore persists chunk records and answers lookups for the search join.
type ChunkStore interface {
	// InsertChunk appends a chunk record and returns its assigned id.
	InsertChunk(ctx context.Context, documentID, text string, ordinal int) (int64, error)

	// LookupChunks resolves chunk ids to their records. Ids with no
	// matching record are simply absent from the result map.
	LookupChunks(ctx context.Context, ids []int64) (map[int64]domain.Chunk, error)

	// ProcessedDocuments returns the distinct set of document ids with at
	// least one persisted chunk. This is the embedding stage's
	// resumability signal.
	ProcessedDocuments(ctx context.Context) (map[string]bool, error)
}

// VectorIndex stores embeddings keyed by chunk id and answers
// k-nearest-neighbour queries by ascending distance.
//
// The index is created lazily once the first embedding fixes its
// dimensionality; the dimensionality is immutable for the index's lifetime.
type VectorIndex interface {
	// EnsureIndex creates the index with the given width if it does not
	// exist. It returns domain.ErrDimensionMismatch when an index with a
	// different width already exists.
	EnsureIndex(ctx context.Context, dimensions int) error

	// InsertVector stores the embedding for the given chunk id. It fails
	// with domain.ErrDimensionMismatch when the vector width differs from
	// the index schema, and domain.ErrIndexNotReady before EnsureIndex.
	InsertVector(ctx context.Context, id string, embedding []float32) error

	// QueryNearest returns up to k hits ordered by ascending distance.
	QueryNearest(ctx context.Context, embedding []float32, k int) ([]domain.VectorHit, error)
}

// IngestStore is the combined persistence surface the ingestion pipeline
// writes to. Chunk and vector records are co-located and kept in lockstep:
// SaveBatch commits each embedded batch as a single transaction so no
// observable state has a chunk without its vector.
type IngestStore interface {
	ChunkStore
	VectorIndex

	// SaveBatch persists one embedded batch atomically. texts[i] is stored
	// as the chunk with ordinal startOrdinal+i, then its vector is stored
	// under the assigned chunk id. len(vectors) must equal len(texts).
	SaveBatch(ctx context.Context, documentID string, startOrdinal int, texts []string, vectors [][]float32) error

	// Close closes the underlying database.
	Close() error
}
