package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/parchment-labs/scandex-cli/internal/chunker"
	"github.com/parchment-labs/scandex-cli/internal/core/domain"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driven"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driving"
	"github.com/parchment-labs/scandex-cli/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.Ingestor = (*Ingestor)(nil)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 20

// DefaultBatchDelay is the courtesy pause between embedding requests.
const DefaultBatchDelay = 200 * time.Millisecond

// Ingestor chunks and embeds every markdown artifact whose document has no
// persisted chunks yet. Documents are the unit of resumability: a document
// counts as done once at least one chunk batch has been committed for it,
// so an interrupted run resumes at the first incomplete document.
type Ingestor struct {
	splitter  *chunker.Splitter
	embedder  driven.EmbeddingService
	store     driven.IngestStore
	mdDir     string
	batchSize int

	// pace is called between consecutive batches, never before the first.
	// Swappable in tests.
	pace func(ctx context.Context) error
}

// IngestorOption configures the ingestor.
type IngestorOption func(*Ingestor)

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) IngestorOption {
	return func(o *Ingestor) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between embedding requests.
func WithBatchDelay(d time.Duration) IngestorOption {
	return func(o *Ingestor) {
		if d > 0 {
			o.pace = newPacer(d)
		}
	}
}

// NewIngestor creates a new ingestor.
func NewIngestor(
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
	store driven.IngestStore,
	mdDir string,
	opts ...IngestorOption,
) *Ingestor {
	o := &Ingestor{
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		mdDir:     mdDir,
		batchSize: DefaultBatchSize,
		pace:      newPacer(DefaultBatchDelay),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// newPacer returns a wait function spacing calls at least one interval
// apart. The limiter's initial token is drained so the first wait already
// spans a full interval.
func newPacer(d time.Duration) func(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(d), 1)
	limiter.Allow()
	return limiter.Wait
}

// Run embeds every document with zero persisted chunks.
//
// An embedding-service error aborts the call at the offending document.
// Batches committed before the failure stay durable, and any committed
// batch puts the document in the processed set: later runs attempt only
// documents with zero persisted chunks, so a partially-embedded document
// is not retried. Completed documents never receive duplicate chunk/vector
// pairs.
func (o *Ingestor) Run(ctx context.Context) (*domain.IngestSummary, error) {
	if o.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	files, err := listByExt(o.mdDir, ".md")
	if err != nil {
		return nil, fmt.Errorf("scanning markdown directory: %w", err)
	}

	processed, err := o.store.ProcessedDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading processed documents: %w", err)
	}

	summary := &domain.IngestSummary{RunID: uuid.New().String()}

	logger.Section("Embedding")
	logger.Info("Run %s: %d markdown files, %d already embedded",
		summary.RunID, len(files), len(processed))

	dimensions := 0

	for i, mdFile := range files {
		documentID := replaceExt(mdFile, ".pdf")
		if processed[documentID] {
			summary.Skipped++
			continue
		}

		content, err := os.ReadFile(filepath.Join(o.mdDir, mdFile))
		if err != nil {
			return summary, fmt.Errorf("reading %s: %w", mdFile, err)
		}

		chunks := o.splitter.Split(string(content))
		if len(chunks) == 0 {
			// Not marked done: the document is re-examined next run.
			logger.Progress(i+1, len(files), "%s -> skipped (no content)", mdFile)
			summary.Empty++
			continue
		}

		persisted, err := o.embedDocument(ctx, documentID, chunks, &dimensions)
		summary.Chunks += persisted
		if err != nil {
			return summary, fmt.Errorf("embedding %s: %w", documentID, err)
		}

		summary.Documents++
		logger.Progress(i+1, len(files), "%s -> %d chunks", mdFile, len(chunks))
	}

	summary.Dimensions = dimensions
	logger.Info("Run %s done: %d documents, %d new chunks",
		summary.RunID, summary.Documents, summary.Chunks)

	return summary, nil
}

// embedDocument pushes one document's chunks through the batcher. Each batch
// is one embedding request and one storage transaction; the pause between
// batches is a courtesy throttle, not adaptive backoff.
func (o *Ingestor) embedDocument(ctx context.Context, documentID string, chunks []string, dimensions *int) (int, error) {
	persisted := 0

	for start := 0; start < len(chunks); start += o.batchSize {
		if start > 0 {
			if err := o.pace(ctx); err != nil {
				return persisted, fmt.Errorf("pacing: %w", err)
			}
		}

		end := min(start+o.batchSize, len(chunks))
		batch := chunks[start:end]

		vectors, err := o.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return persisted, fmt.Errorf("embed batch at chunk %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return persisted, fmt.Errorf("embed batch at chunk %d: got %d vectors for %d inputs",
				start, len(vectors), len(batch))
		}

		// The first embedding of the run fixes the index dimensionality.
		if *dimensions == 0 {
			*dimensions = len(vectors[0])
			logger.Info("Embedding dimensions: %d", *dimensions)
			if err := o.store.EnsureIndex(ctx, *dimensions); err != nil {
				return persisted, fmt.Errorf("ensure index: %w", err)
			}
		}

		if err := o.store.SaveBatch(ctx, documentID, start, batch, vectors); err != nil {
			return persisted, fmt.Errorf("persist batch at chunk %d: %w", start, err)
		}
		persisted += len(batch)
	}

	return persisted, nil
}
