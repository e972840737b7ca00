// Package sqlite provides the combined chunk store and similarity index
// backed by a single SQLite database.
//
// Chunk records and their vectors are co-located and written in lockstep:
// SaveBatch commits each embedded batch in one transaction, so no readable
// state ever contains a chunk without its vector. The database runs in WAL
// mode so the query path can read while an ingestion run appends.
//
// Nearest-neighbour queries scan the vectors table and rank by L2 distance
// in-process. The corpus this tool targets is personal-archive sized, where
// an exact scan outperforms the constant factors of an approximate index.
package sqlite
