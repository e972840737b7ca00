package domain

import "time"

// Document represents a source PDF in the corpus. Documents are identified
// by their filename; the OCR stage derives the artifact name by replacing
// the extension.
type Document struct {
	// ID is the PDF filename, including extension (e.g. "report-1987.pdf").
	ID string

	// ArtifactPath is the absolute path of the OCR markdown artifact,
	// empty until the OCR stage has produced one.
	ArtifactPath string
}

// Page is one page of OCR output in original page order.
type Page struct {
	// Index is the 0-based page number.
	Index int

	// Markdown is the extracted text for the page.
	Markdown string
}

// Chunk is a bounded slice of a document's extracted text.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// ID is assigned by the chunk store on insert.
	ID int64

	// DocumentID is the source PDF filename that owns this chunk.
	DocumentID string

	// Text is the chunk content. Non-empty; its trimmed length always
	// exceeds the chunker's minimum threshold.
	Text string

	// Ordinal is the 0-based position within the document.
	// It defines the original chunk order and is unique per document.
	Ordinal int

	// CreatedAt is when the chunk was persisted.
	CreatedAt time.Time
}

// OCRSummary reports the outcome of one OCR run over the corpus.
type OCRSummary struct {
	// Processed is the number of documents converted this run.
	Processed int

	// Skipped is the number of documents whose artifact already existed.
	Skipped int

	// Failed is the number of documents whose OCR request errored.
	Failed int

	// Total is the number of PDFs found in the corpus directory.
	Total int
}

// IngestSummary reports the outcome of one embedding run.
type IngestSummary struct {
	// RunID uniquely identifies this run in logs.
	RunID string

	// Documents is the number of documents fully embedded this run.
	Documents int

	// Skipped is the number of documents already embedded by earlier runs.
	Skipped int

	// Empty is the number of documents that chunked to nothing usable.
	// These are not marked done and will be re-examined next run.
	Empty int

	// Chunks is the number of new chunk/vector pairs persisted.
	Chunks int

	// Dimensions is the embedding width observed this run (0 when no
	// document needed embedding).
	Dimensions int
}
