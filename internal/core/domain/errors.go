package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty search query. Callers should surface this as a client error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates a vector whose width differs from the
	// similarity index's fixed schema. The index dimensionality is set when
	// the index is created and is immutable for its lifetime.
	ErrDimensionMismatch = errors.New("embedding dimensionality mismatch")

	// ErrIndexNotReady indicates a vector operation before the similarity
	// index has been created. The index is created lazily once the first
	// embedding fixes its dimensionality.
	ErrIndexNotReady = errors.New("similarity index not created")

	// ErrOCRUnavailable indicates the OCR service is not configured.
	ErrOCRUnavailable = errors.New("OCR service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Both ingestion and search require it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
