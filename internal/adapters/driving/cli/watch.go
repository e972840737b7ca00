package cli

import (
	"github.com/spf13/cobra"

	"github.com/parchment-labs/scandex-cli/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the PDF directory and ingest new documents",
	Long: `Watches the corpus directory for new or changed PDFs and runs the
full pipeline after changes settle. An initial run catches documents added
while the watcher was down. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	stage, err := newOCRStage()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	ingestor, err := newIngestor(store)
	if err != nil {
		return err
	}

	watcher := services.NewWatcher(stage, ingestor, cfg.PDFDir,
		services.WithDebounce(cfg.Watch.Debounce.Std()))

	return watcher.Run(cmd.Context())
}
