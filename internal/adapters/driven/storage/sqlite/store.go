package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/parchment-labs/scandex-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/parchment-labs/scandex-cli/internal/core/domain"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driven"
)

// Ensure Store implements the combined ingest store interface.
var _ driven.IngestStore = (*Store)(nil)

// Store is the SQLite-backed chunk store and similarity index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.scandex/data/corpus.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".scandex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "corpus.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// InsertChunk appends a chunk record and returns its assigned id.
func (s *Store) InsertChunk(ctx context.Context, documentID, text string, ordinal int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (document_id, text, chunk_index)
		VALUES (?, ?, ?)
	`, documentID, text, ordinal)
	if err != nil {
		return 0, fmt.Errorf("inserting chunk: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting chunk id: %w", err)
	}
	return id, nil
}

// LookupChunks resolves chunk ids to records. Unknown ids are absent from
// the result map rather than an error; the query path omits them.
func (s *Store) LookupChunks(ctx context.Context, ids []int64) (map[int64]domain.Chunk, error) {
	result := make(map[int64]domain.Chunk, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, text, chunk_index, created_at
		FROM chunks WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Text,
			&chunk.Ordinal, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		result[chunk.ID] = chunk
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return result, nil
}

// ProcessedDocuments returns the distinct document ids with at least one
// persisted chunk. This is the embedding stage's resumability signal.
func (s *Store) ProcessedDocuments(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT document_id FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("querying processed documents: %w", err)
	}
	defer rows.Close()

	processed := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		processed[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document ids: %w", err)
	}

	return processed, nil
}

// ==================== Similarity Index ====================

// EnsureIndex creates the similarity index schema with the given width if
// absent. An existing index with a different width is a hard error; the
// dimensionality is immutable for the index's lifetime.
func (s *Store) EnsureIndex(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("ensure index: invalid dimensions %d", dimensions)
	}

	existing, err := s.dimensions(ctx)
	if err != nil && !errors.Is(err, domain.ErrIndexNotReady) {
		return err
	}
	if err == nil {
		if existing != dimensions {
			return fmt.Errorf("%w: index has %d, got %d", domain.ErrDimensionMismatch, existing, dimensions)
		}
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO index_meta (id, dimensions) VALUES (1, ?)
	`, dimensions); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}
	return nil
}

// InsertVector stores the embedding for the given chunk id.
func (s *Store) InsertVector(ctx context.Context, id string, embedding []float32) error {
	dims, err := s.dimensions(ctx)
	if err != nil {
		return err
	}
	if len(embedding) != dims {
		return fmt.Errorf("%w: index has %d, got %d", domain.ErrDimensionMismatch, dims, len(embedding))
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO vectors (chunk_id, embedding) VALUES (?, ?)
	`, id, float32SliceToBytes(embedding)); err != nil {
		return fmt.Errorf("inserting vector: %w", err)
	}
	return nil
}

// QueryNearest returns up to k hits ordered by ascending L2 distance.
func (s *Store) QueryNearest(ctx context.Context, embedding []float32, k int) ([]domain.VectorHit, error) {
	dims, err := s.dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if len(embedding) != dims {
		return nil, fmt.Errorf("%w: index has %d, got %d", domain.ErrDimensionMismatch, dims, len(embedding))
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT chunk_id, embedding FROM vectors")
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var hits []domain.VectorHit
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}

		vec := bytesToFloat32Slice(blob)
		if len(vec) != dims {
			// Width drift should be impossible given the insert checks.
			continue
		}

		hits = append(hits, domain.VectorHit{
			ChunkID:  id,
			Distance: l2Distance(embedding, vec),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// dimensions returns the fixed index width, or ErrIndexNotReady before the
// index has been created.
func (s *Store) dimensions(ctx context.Context) (int, error) {
	var dims int
	err := s.db.QueryRowContext(ctx, "SELECT dimensions FROM index_meta WHERE id = 1").Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrIndexNotReady
	}
	if err != nil {
		return 0, fmt.Errorf("reading index schema: %w", err)
	}
	return dims, nil
}

// ==================== Batch Persistence ====================

// SaveBatch persists one embedded batch atomically: for each text, the
// chunk row is inserted first (assigning its id), then the vector row keyed
// by that id. A failure anywhere rolls the whole batch back, so a chunk is
// never visible without its vector.
func (s *Store) SaveBatch(ctx context.Context, documentID string, startOrdinal int, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("save batch: %d texts but %d vectors", len(texts), len(vectors))
	}
	if len(texts) == 0 {
		return nil
	}

	dims, err := s.dimensions(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	chunkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, text, chunk_index) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk statement: %w", err)
	}
	defer chunkStmt.Close()

	vecStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (chunk_id, embedding) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing vector statement: %w", err)
	}
	defer vecStmt.Close()

	for i, text := range texts {
		if len(vectors[i]) != dims {
			return fmt.Errorf("%w: index has %d, got %d", domain.ErrDimensionMismatch, dims, len(vectors[i]))
		}

		res, err := chunkStmt.ExecContext(ctx, documentID, text, startOrdinal+i)
		if err != nil {
			return fmt.Errorf("saving chunk %d: %w", startOrdinal+i, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting chunk id: %w", err)
		}

		if _, err := vecStmt.ExecContext(ctx, strconv.FormatInt(id, 10),
			float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("saving vector for chunk %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// l2Distance computes the Euclidean distance between two equal-width vectors.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
