package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "scandex://documents/invoice.pdf",
			expected: "invoice.pdf",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/invoice.pdf",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func newResourceServer(t *testing.T, corpus *mockCorpusService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{
		Search: &mockSearchService{},
		Corpus: corpus,
	})
	require.NoError(t, err)
	return server
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document list as JSON", func(t *testing.T) {
		corpus := &mockCorpusService{documents: []domain.Document{
			{ID: "alpha.pdf", ArtifactPath: "/data/markdown/alpha.md"},
			{ID: "beta.pdf", ArtifactPath: "/data/markdown/beta.md"},
		}}
		server := newResourceServer(t, corpus)

		result, err := server.handleDocumentsResource(ctx, readRequest("scandex://documents"))
		require.NoError(t, err)

		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "alpha.pdf")
		assert.Contains(t, result.Contents[0].Text, "/data/markdown/beta.md")
	})

	t.Run("nil corpus yields empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, readRequest("scandex://documents"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("corpus error propagates", func(t *testing.T) {
		corpus := &mockCorpusService{err: fmt.Errorf("db closed")}
		server := newResourceServer(t, corpus)

		_, err := server.handleDocumentsResource(ctx, readRequest("scandex://documents"))
		require.Error(t, err)
	})
}

func TestServer_handleDocumentTextResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns markdown text", func(t *testing.T) {
		corpus := &mockCorpusService{text: "# Invoice\n\nTotal due."}
		server := newResourceServer(t, corpus)

		result, err := server.handleDocumentTextResource(ctx, readRequest("scandex://documents/invoice.pdf"))
		require.NoError(t, err)

		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
		assert.Equal(t, "# Invoice\n\nTotal due.", result.Contents[0].Text)
	})

	t.Run("unknown document maps to resource not found", func(t *testing.T) {
		corpus := &mockCorpusService{err: fmt.Errorf("%w: document gone.pdf", domain.ErrNotFound)}
		server := newResourceServer(t, corpus)

		_, err := server.handleDocumentTextResource(ctx, readRequest("scandex://documents/gone.pdf"))
		require.Error(t, err)
	})

	t.Run("malformed URI", func(t *testing.T) {
		server := newResourceServer(t, &mockCorpusService{})

		_, err := server.handleDocumentTextResource(ctx, readRequest("scandex://other/thing"))
		require.Error(t, err)
	})
}
