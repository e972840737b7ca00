// Package cli implements the scandex command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parchment-labs/scandex-cli/internal/adapters/driven/embedding/openrouter"
	"github.com/parchment-labs/scandex-cli/internal/adapters/driven/ocr/mistral"
	"github.com/parchment-labs/scandex-cli/internal/adapters/driven/storage/sqlite"
	"github.com/parchment-labs/scandex-cli/internal/chunker"
	"github.com/parchment-labs/scandex-cli/internal/config"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driven"
	"github.com/parchment-labs/scandex-cli/internal/core/services"
	"github.com/parchment-labs/scandex-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgPath string
	verbose bool

	// cfg is loaded once per invocation by the root PersistentPreRunE and
	// read by every subcommand.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scandex",
	Short: "Semantic search over scanned PDF documents",
	Long: `Scandex turns a directory of scanned PDFs into a searchable corpus.

The pipeline runs in two stages: OCR converts each PDF into a markdown
artifact, then the embedding stage chunks the artifacts and stores vector
embeddings in a local SQLite database. Both stages are resumable and skip
work that is already done.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.scandex/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context, so commands
// stop cleanly on SIGINT.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// --- Shared service builders ---

// openStore opens the SQLite store at the configured data directory.
// Callers own the returned store and must Close it.
func openStore() (*sqlite.Store, error) {
	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

// newOCRStage builds the OCR stage from config. Fails fast when the
// Mistral credential or directories are missing.
func newOCRStage() (*services.OCRStage, error) {
	if err := cfg.ValidateOCR(); err != nil {
		return nil, err
	}

	ocr, err := mistral.NewOCRService(mistral.Config{
		APIKey:  cfg.OCR.APIKey,
		BaseURL: cfg.OCR.BaseURL,
		Model:   cfg.OCR.Model,
	})
	if err != nil {
		return nil, err
	}

	return services.NewOCRStage(ocr, cfg.PDFDir, cfg.MarkdownDir), nil
}

// newEmbedder builds the OpenRouter embedding client from config.
func newEmbedder() (driven.EmbeddingService, error) {
	return openrouter.NewEmbeddingService(openrouter.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})
}

// newIngestor builds the embedding stage over the given store.
func newIngestor(store *sqlite.Store) (*services.Ingestor, error) {
	if err := cfg.ValidateEmbed(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	splitter := chunker.New(
		chunker.WithMaxSize(cfg.Chunking.MaxSize),
		chunker.WithMinLength(cfg.Chunking.MinLength),
	)

	return services.NewIngestor(splitter, embedder, store, cfg.MarkdownDir,
		services.WithBatchSize(cfg.Embedding.BatchSize),
		services.WithBatchDelay(cfg.Embedding.BatchDelay.Std()),
	), nil
}

// newSearchService builds the query service over the given store.
func newSearchService(store *sqlite.Store) (*services.SearchService, error) {
	if err := cfg.ValidateSearch(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	return services.NewSearchService(store, store, embedder), nil
}
