// Package domain defines the core business entities for Scandex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source PDF and its processing state
//   - Chunk: The unit of embedding and retrieval
//   - Page: One page of OCR output
//   - SearchResult: A nearest-neighbour hit joined back to its chunk
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
