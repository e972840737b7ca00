package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Convert pending PDFs to markdown",
	Long: `Runs OCR over every PDF in the corpus directory that has no markdown
artifact yet. Documents that already have an artifact are skipped, so the
command can be re-run safely after an interruption.`,
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, _ []string) error {
	stage, err := newOCRStage()
	if err != nil {
		return err
	}

	summary, err := stage.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("ocr failed: %w", err)
	}

	cmd.Printf("OCR complete: %d processed, %d skipped, %d failed (%d total)\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Total)

	if summary.Failed > 0 {
		cmd.Println("Some documents failed; re-run to retry them.")
	}
	return nil
}
