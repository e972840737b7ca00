package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parchment-labs/scandex-cli/internal/core/domain"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driven"
	"github.com/parchment-labs/scandex-cli/internal/core/ports/driving"
	"github.com/parchment-labs/scandex-cli/internal/logger"
)

// Ensure OCRStage implements the interface.
var _ driving.OCRStage = (*OCRStage)(nil)

// OCRStage converts every pending PDF in the corpus directory into a
// markdown artifact. A PDF is pending when no artifact named after it
// exists yet; the artifact's existence is the stage's completion marker.
type OCRStage struct {
	ocr    driven.OCRService
	pdfDir string
	mdDir  string
}

// NewOCRStage creates a new OCR stage.
func NewOCRStage(ocr driven.OCRService, pdfDir, mdDir string) *OCRStage {
	return &OCRStage{
		ocr:    ocr,
		pdfDir: pdfDir,
		mdDir:  mdDir,
	}
}

// Run processes every PDF without an existing artifact. One document's OCR
// failure is logged and skipped; the run continues with the next document.
func (o *OCRStage) Run(ctx context.Context) (*domain.OCRSummary, error) {
	if o.ocr == nil {
		return nil, domain.ErrOCRUnavailable
	}

	if err := os.MkdirAll(o.mdDir, 0755); err != nil {
		return nil, fmt.Errorf("creating markdown directory: %w", err)
	}

	files, err := listByExt(o.pdfDir, ".pdf")
	if err != nil {
		return nil, fmt.Errorf("scanning pdf directory: %w", err)
	}

	logger.Section("OCR")
	logger.Info("Found %d PDFs in %s", len(files), o.pdfDir)

	summary := &domain.OCRSummary{Total: len(files)}

	for i, name := range files {
		artifact := filepath.Join(o.mdDir, replaceExt(name, ".md"))
		if _, err := os.Stat(artifact); err == nil {
			summary.Skipped++
			continue
		}

		data, err := os.ReadFile(filepath.Join(o.pdfDir, name))
		if err != nil {
			logger.Progress(i+1, len(files), "%s -> ERROR: %v", name, err)
			summary.Failed++
			continue
		}

		pages, err := o.ocr.Process(ctx, data)
		if err != nil {
			logger.Progress(i+1, len(files), "%s -> ERROR: %v", name, err)
			summary.Failed++
			continue
		}

		if err := os.WriteFile(artifact, []byte(joinPages(pages)), 0644); err != nil {
			logger.Progress(i+1, len(files), "%s -> ERROR: %v", name, err)
			summary.Failed++
			continue
		}

		summary.Processed++
		logger.Progress(i+1, len(files), "%s -> done (%d pages)", name, len(pages))
	}

	logger.Info("OCR finished: processed %d, skipped %d, failed %d",
		summary.Processed, summary.Skipped, summary.Failed)

	return summary, nil
}

// joinPages concatenates extracted page text in page order with a blank-line
// separator, matching the paragraph boundary the chunker splits on.
func joinPages(pages []domain.Page) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Markdown
	}
	return strings.Join(parts, "\n\n")
}

// listByExt returns the file names in dir with the given extension
// (case-insensitive), sorted for deterministic processing order.
func listByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// replaceExt swaps a filename's extension, e.g. "scan-001.pdf" -> "scan-001.md".
func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
