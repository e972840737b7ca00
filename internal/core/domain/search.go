package domain

// DefaultSearchLimit is the result count used when a caller supplies none.
const DefaultSearchLimit = 20

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Values <= 0 fall back to
	// DefaultSearchLimit.
	Limit int
}

// VectorHit is a raw similarity-index result before the chunk join.
type VectorHit struct {
	// ChunkID is the index key: the chunk's persisted identifier rendered
	// as a string.
	ChunkID string

	// Distance is the L2 distance to the query vector. Lower is more
	// similar.
	Distance float64
}

// SearchResult joins a nearest-neighbour hit with its chunk record.
type SearchResult struct {
	// Chunk is the matched chunk, hydrated from the chunk store.
	Chunk Chunk

	// Distance is the vector distance for the hit. Results are always
	// ordered by ascending distance.
	Distance float64
}
