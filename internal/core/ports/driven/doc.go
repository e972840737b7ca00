// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - OCRService: Converts PDF bytes into ordered pages of text
//   - EmbeddingService: Generates vector embeddings for chunk batches
//   - ChunkStore: Chunk record persistence and lookup
//   - VectorIndex: Similarity-index persistence and k-NN queries
//   - IngestStore: Transactional chunk+vector batch persistence
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
