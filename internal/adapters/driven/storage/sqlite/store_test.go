package sqlite

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "scandex-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func TestNewStore_RunsMigrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Reopening against the same file must be a no-op.
	second, err := NewStore(store.path[:len(store.path)-len("/corpus.db")])
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestInsertChunk_AssignsSequentialIDs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id1, err := store.InsertChunk(ctx, "doc-a.pdf", "first chunk text", 0)
	require.NoError(t, err)

	id2, err := store.InsertChunk(ctx, "doc-a.pdf", "second chunk text", 1)
	require.NoError(t, err)

	assert.Greater(t, id2, id1)
}

func TestLookupChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id, err := store.InsertChunk(ctx, "doc-a.pdf", "some chunk text", 3)
	require.NoError(t, err)

	chunks, err := store.LookupChunks(ctx, []int64{id, 99999})
	require.NoError(t, err)

	// Unknown ids are omitted, not errors.
	require.Len(t, chunks, 1)
	got := chunks[id]
	assert.Equal(t, "doc-a.pdf", got.DocumentID)
	assert.Equal(t, "some chunk text", got.Text)
	assert.Equal(t, 3, got.Ordinal)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestLookupChunks_EmptyInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	chunks, err := store.LookupChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessedDocuments(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	processed, err := store.ProcessedDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)

	_, err = store.InsertChunk(ctx, "doc-a.pdf", "text", 0)
	require.NoError(t, err)
	_, err = store.InsertChunk(ctx, "doc-a.pdf", "more", 1)
	require.NoError(t, err)
	_, err = store.InsertChunk(ctx, "doc-b.pdf", "text", 0)
	require.NoError(t, err)

	processed, err = store.ProcessedDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"doc-a.pdf": true, "doc-b.pdf": true}, processed)
}

func TestEnsureIndex(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("creates index", func(t *testing.T) {
		require.NoError(t, store.EnsureIndex(ctx, 768))
	})

	t.Run("idempotent for same width", func(t *testing.T) {
		require.NoError(t, store.EnsureIndex(ctx, 768))
	})

	t.Run("rejects different width", func(t *testing.T) {
		err := store.EnsureIndex(ctx, 1024)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("rejects invalid width", func(t *testing.T) {
		assert.Error(t, store.EnsureIndex(ctx, 0))
	})
}

func TestInsertVector(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("before index exists", func(t *testing.T) {
		err := store.InsertVector(ctx, "1", []float32{0.1, 0.2})
		assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	})

	require.NoError(t, store.EnsureIndex(ctx, 3))

	t.Run("accepts matching width", func(t *testing.T) {
		assert.NoError(t, store.InsertVector(ctx, "1", []float32{0.1, 0.2, 0.3}))
	})

	t.Run("rejects mismatched width", func(t *testing.T) {
		err := store.InsertVector(ctx, "2", []float32{0.1, 0.2, 0.3, 0.4})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})
}

func TestQueryNearest_AscendingDistance(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx, 2))
	require.NoError(t, store.InsertVector(ctx, "far", []float32{10, 10}))
	require.NoError(t, store.InsertVector(ctx, "near", []float32{1, 1}))
	require.NoError(t, store.InsertVector(ctx, "mid", []float32{5, 5}))

	hits, err := store.QueryNearest(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "near", hits[0].ChunkID)
	assert.Equal(t, "mid", hits[1].ChunkID)
	assert.Equal(t, "far", hits[2].ChunkID)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance)
	}
}

func TestQueryNearest_RespectsLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx, 2))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.InsertVector(ctx, strconv.Itoa(i), []float32{float32(i), 0}))
	}

	hits, err := store.QueryNearest(ctx, []float32{0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "0", hits[0].ChunkID)
	assert.Equal(t, "1", hits[1].ChunkID)
}

func TestQueryNearest_QueryWidthChecked(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx, 3))

	_, err := store.QueryNearest(ctx, []float32{0.1}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSaveBatch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx, 2))

	texts := []string{"chunk one", "chunk two", "chunk three"}
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}

	require.NoError(t, store.SaveBatch(ctx, "doc-a.pdf", 0, texts, vectors))

	// Every chunk has its vector under the stringified chunk id.
	hits, err := store.QueryNearest(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		id, err := strconv.ParseInt(h.ChunkID, 10, 64)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	chunks, err := store.LookupChunks(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)

	ordinals := map[int]bool{}
	for _, c := range chunks {
		assert.Equal(t, "doc-a.pdf", c.DocumentID)
		ordinals[c.Ordinal] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, ordinals)
}

func TestSaveBatch_RollsBackOnBadVector(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx, 2))

	texts := []string{"good chunk", "bad chunk"}
	vectors := [][]float32{{1, 0}, {1, 0, 0}} // second vector has wrong width

	err := store.SaveBatch(ctx, "doc-a.pdf", 0, texts, vectors)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// Nothing from the failed batch is visible: no chunks, no vectors.
	processed, err := store.ProcessedDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)

	hits, err := store.QueryNearest(ctx, []float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSaveBatch_LengthMismatch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, store.EnsureIndex(context.Background(), 2))
	err := store.SaveBatch(context.Background(), "doc.pdf", 0, []string{"a"}, nil)
	assert.Error(t, err)
}

func TestSaveBatch_ContinuesOrdinals(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx, 1))
	require.NoError(t, store.SaveBatch(ctx, "doc.pdf", 0, []string{"a", "b"}, [][]float32{{0}, {1}}))
	require.NoError(t, store.SaveBatch(ctx, "doc.pdf", 2, []string{"c"}, [][]float32{{2}}))

	hits, err := store.QueryNearest(ctx, []float32{0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	var ids []int64
	for _, h := range hits {
		id, err := strconv.ParseInt(h.ChunkID, 10, 64)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	chunks, err := store.LookupChunks(ctx, ids)
	require.NoError(t, err)

	seen := map[int]string{}
	for _, c := range chunks {
		seen[c.Ordinal] = c.Text
	}
	assert.Equal(t, map[int]string{0: "a", 1: "b", 2: "c"}, seen)
}

func TestVectorBlobRoundTrip(t *testing.T) {
	in := []float32{0.125, -42.5, 3.75}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
