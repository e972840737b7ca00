package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/parchment-labs/scandex-cli/internal/core/ports/driving"
	"github.com/parchment-labs/scandex-cli/internal/logger"
)

// DefaultWatchDebounce is the quiet period after the last filesystem event
// before a pipeline run is triggered.
const DefaultWatchDebounce = 2 * time.Second

// Watcher monitors the PDF directory and re-runs the OCR and embedding
// stages after new or changed documents settle.
type Watcher struct {
	ocr      driving.OCRStage
	ingestor driving.Ingestor
	pdfDir   string
	debounce time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the event quiet period.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over pdfDir that drives the given stages.
func NewWatcher(ocr driving.OCRStage, ingestor driving.Ingestor, pdfDir string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		ocr:      ocr,
		ingestor: ingestor,
		pdfDir:   pdfDir,
		debounce: DefaultWatchDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks watching the PDF directory until ctx is cancelled. An initial
// pipeline run catches documents added while the watcher was down, then each
// burst of relevant events schedules exactly one run after the debounce
// period.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.pdfDir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.pdfDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.pdfDir, err)
	}

	logger.Info("Watching %s (debounce %s)", w.pdfDir, w.debounce)
	w.runPipeline(ctx)

	// The timer is created stopped and re-armed on each relevant event, so
	// a burst of writes collapses into one pipeline run.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevantEvent(event) {
				continue
			}
			logger.Debug("Event: %s %s", event.Op, event.Name)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			w.runPipeline(ctx)
		}
	}
}

// relevantEvent reports whether an event should trigger a pipeline run.
// Only PDF creations and writes count; directories, hidden files and
// removals are ignored.
func (w *Watcher) relevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return false
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return false
	}
	return true
}

func (w *Watcher) runPipeline(ctx context.Context) {
	ocrSummary, err := w.ocr.Run(ctx)
	if err != nil {
		logger.Warn("OCR stage failed: %v", err)
		return
	}
	logger.Info("OCR: %d processed, %d skipped, %d failed",
		ocrSummary.Processed, ocrSummary.Skipped, ocrSummary.Failed)

	ingestSummary, err := w.ingestor.Run(ctx)
	if err != nil {
		logger.Warn("Embedding stage failed: %v", err)
		return
	}
	logger.Info("Embedded %d documents (%d chunks, %d skipped)",
		ingestSummary.Documents, ingestSummary.Chunks, ingestSummary.Skipped)
}
