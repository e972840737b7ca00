package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the full pipeline: OCR then embed",
	Long: `Runs the OCR stage followed by the embedding stage. Equivalent to
"scandex ocr" then "scandex embed"; both stages skip work that is already
done.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	stage, err := newOCRStage()
	if err != nil {
		return err
	}

	ocrSummary, err := stage.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("ocr failed: %w", err)
	}
	cmd.Printf("OCR: %d processed, %d skipped, %d failed\n",
		ocrSummary.Processed, ocrSummary.Skipped, ocrSummary.Failed)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	ingestor, err := newIngestor(store)
	if err != nil {
		return err
	}

	embedSummary, err := ingestor.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	cmd.Printf("Embed: %d documents, %d chunks, %d skipped\n",
		embedSummary.Documents, embedSummary.Chunks, embedSummary.Skipped)

	return nil
}
