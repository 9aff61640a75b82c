package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/getsentry/sentry-go"

	"github.com/screensanctum/screensanctum/imaging"
)

const defaultSettleDelay = 500 * time.Millisecond

// Watcher monitors an input directory and redacts new images as they
// appear. New files are given a settle delay so that a file still being
// written is not picked up half way through.
type Watcher struct {
	Processor   *Processor
	SettleDelay time.Duration
}

// NewWatcher creates a watcher driving the given processor.
func NewWatcher(p *Processor) *Watcher {
	return &Watcher{
		Processor:   p,
		SettleDelay: defaultSettleDelay,
	}
}

// Run watches inputDir until the context is cancelled. An audit receipt
// covering everything processed during the session is written to
// outputDir on shutdown.
func (w *Watcher) Run(ctx context.Context, inputDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(inputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", inputDir, err)
	}

	audit := NewAuditLogger(outputDir, w.Processor.Template.ID)
	log.Printf("Watching %s (job %s)", inputDir, audit.JobID())

	settle := w.SettleDelay
	if settle <= 0 {
		settle = defaultSettleDelay
	}

	saveReceipt := func() {
		if _, err := audit.Save(); err != nil {
			log.Printf("Watch: failed to save audit log: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			saveReceipt()
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				saveReceipt()
				return nil
			}
			if !event.Has(fsnotify.Create) || !imaging.Supported(event.Name) {
				continue
			}
			go w.handle(ctx, event.Name, inputDir, outputDir, audit, settle)

		case err, ok := <-fw.Errors:
			if !ok {
				saveReceipt()
				return nil
			}
			log.Printf("Watch error: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path, inputDir, outputDir string, audit *AuditLogger, settle time.Duration) {
	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return
	}

	relPath, err := w.Processor.processOne(ctx, path, inputDir, outputDir, audit)
	if err != nil {
		if ctx.Err() == nil {
			sentry.CaptureException(err)
		}
		log.Printf("Watch: %s failed: %v", relPath, err)
		w.Processor.notifyFile(relPath, fmt.Sprintf("Error: %v", err))
		return
	}
	w.Processor.notifyFile(relPath, "Success")
}
