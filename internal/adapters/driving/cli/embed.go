package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Chunk and embed pending markdown artifacts",
	Long: `Chunks every markdown artifact whose document has no stored chunks
yet, embeds the chunks in batches, and persists chunk text and vectors to
the local SQLite database. Already-embedded documents are skipped.`,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	ingestor, err := newIngestor(store)
	if err != nil {
		return err
	}

	summary, err := ingestor.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	cmd.Printf("Embedding complete: %d documents, %d chunks, %d skipped, %d empty\n",
		summary.Documents, summary.Chunks, summary.Skipped, summary.Empty)
	if summary.Dimensions > 0 {
		cmd.Printf("Vector dimensions: %d\n", summary.Dimensions)
	}
	return nil
}
