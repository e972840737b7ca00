package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the embedded corpus",
	Long: `Embeds the query and returns the nearest chunks from the corpus,
ordered by ascending vector distance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	svc, err := newSearchService(store)
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}

	results, err := svc.Search(cmd.Context(), query, domain.SearchOptions{Limit: limit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// searchResultJSON is the stable JSON shape of one result row.
type searchResultJSON struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float64 `json:"distance"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	rows := make([]searchResultJSON, len(results))
	for i := range results {
		rows[i] = searchResultJSON{
			DocumentID: results[i].Chunk.DocumentID,
			Text:       results[i].Chunk.Text,
			ChunkIndex: results[i].Chunk.Ordinal,
			Distance:   results[i].Distance,
		}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s #%d (%.4f)\n", i+1,
			results[i].Chunk.DocumentID, results[i].Chunk.Ordinal, results[i].Distance)
		cmd.Printf("      %s\n", snippet(results[i].Chunk.Text, 160))
		cmd.Println()
	}
	return nil
}

// snippet truncates text to at most n runes for table display.
func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
