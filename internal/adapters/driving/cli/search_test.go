package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search the embedded corpus", searchCmd.Short)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
}

func TestSearchCmd_HasJSONFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("json")
	require.NotNil(t, flag, "json flag should exist")
}

func newOutputCmd(buf *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	return cmd
}

func searchFixture() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Chunk: domain.Chunk{
				ID:         1,
				DocumentID: "invoice.pdf",
				Text:       "Total due: 1,200 EUR",
				Ordinal:    3,
			},
			Distance: 0.18,
		},
		{
			Chunk: domain.Chunk{
				ID:         2,
				DocumentID: "contract.pdf",
				Text:       strings.Repeat("long clause ", 40),
				Ordinal:    0,
			},
			Distance: 0.42,
		},
	}
}

func TestOutputSearchTable(t *testing.T) {
	t.Run("formats results with document and ordinal", func(t *testing.T) {
		buf := new(bytes.Buffer)
		err := outputSearchTable(newOutputCmd(buf), searchFixture())
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "Results:")
		assert.Contains(t, out, "invoice.pdf #3 (0.1800)")
		assert.Contains(t, out, "Total due: 1,200 EUR")
	})

	t.Run("truncates long chunk text", func(t *testing.T) {
		buf := new(bytes.Buffer)
		err := outputSearchTable(newOutputCmd(buf), searchFixture())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "...")
	})

	t.Run("no results", func(t *testing.T) {
		buf := new(bytes.Buffer)
		err := outputSearchTable(newOutputCmd(buf), nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "No results found.")
	})
}

func TestOutputSearchJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	err := outputSearchJSON(newOutputCmd(buf), searchFixture())
	require.NoError(t, err)

	var rows []searchResultJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))

	require.Len(t, rows, 2)
	assert.Equal(t, "invoice.pdf", rows[0].DocumentID)
	assert.Equal(t, 3, rows[0].ChunkIndex)
	assert.Equal(t, 0.18, rows[0].Distance)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "abcde...", snippet("abcdefgh", 5))
	// Rune-safe truncation.
	assert.Equal(t, "héllo...", snippet("héllo wörld", 5))
}
