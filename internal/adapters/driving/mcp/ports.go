package mcp

import (
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers free-text queries over the embedded corpus.
	Search driving.SearchService

	// Corpus exposes the document list and artifact text resources.
	Corpus driving.CorpusService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Corpus is optional; resources degrade to empty without it.
	return nil
}
