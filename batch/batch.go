package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"github.com/screensanctum/screensanctum/detect"
	"github.com/screensanctum/screensanctum/imaging"
	"github.com/screensanctum/screensanctum/ocr"
	"github.com/screensanctum/screensanctum/redact"
	"github.com/screensanctum/screensanctum/regions"
	"github.com/screensanctum/screensanctum/template"
)

const defaultWorkers = 4

// Summary reports the outcome of a batch run.
type Summary struct {
	Processed int
	Errors    int
	AuditPath string
}

// Processor applies a redaction template to every image under an input
// directory and writes the results to an output directory, preserving
// the relative folder structure.
type Processor struct {
	Runner   *ocr.Runner
	Template *template.Template
	Workers  int

	// OnFile is called after each file completes, with the relative
	// path and either "Success" or an error description.
	OnFile func(relPath, status string)

	// OnProgress is called as files finish, with done and total counts.
	OnProgress func(done, total int)
}

// NewProcessor creates a batch processor for the given OCR runner and template.
func NewProcessor(runner *ocr.Runner, tpl *template.Template) *Processor {
	return &Processor{
		Runner:   runner,
		Template: tpl,
		Workers:  defaultWorkers,
	}
}

// FindImages returns all supported images under dir, sorted by path.
// When recursive is false only the top-level directory is scanned.
func FindImages(dir string, recursive bool) ([]string, error) {
	var images []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && imaging.Supported(path) {
				images = append(images, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && imaging.Supported(e.Name()) {
				images = append(images, filepath.Join(dir, e.Name()))
			}
		}
	}

	sort.Strings(images)
	return images, nil
}

// Run processes every supported image under inputDir, writes redacted
// copies under outputDir and saves an audit receipt next to them.
// Cancelling the context stops the run after in-flight files finish.
func (p *Processor) Run(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	images, err := FindImages(inputDir, true)
	if err != nil {
		return Summary{}, err
	}
	if len(images) == 0 {
		return Summary{}, fmt.Errorf("no images found in %s", inputDir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	audit := NewAuditLogger(outputDir, p.Template.ID)

	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		mu        sync.Mutex
		processed int
		errCount  int
		done      int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	total := len(images)
	for _, img := range images {
		if ctx.Err() != nil {
			break
		}

		img := img
		g.Go(func() error {
			relPath, err := p.processOne(ctx, img, inputDir, outputDir, audit)
			if relPath == "" {
				relPath = filepath.Base(img)
			}

			mu.Lock()
			done++
			if err != nil {
				errCount++
			} else {
				processed++
			}
			d := done
			mu.Unlock()

			if err != nil {
				if ctx.Err() == nil {
					sentry.CaptureException(err)
				}
				log.Printf("Batch: %s failed: %v", relPath, err)
				p.notifyFile(relPath, fmt.Sprintf("Error: %v", err))
			} else {
				p.notifyFile(relPath, "Success")
			}
			p.notifyProgress(d, total)

			// Per-file errors are reported but do not stop the batch.
			return nil
		})
	}

	g.Wait()

	auditPath, err := audit.Save()
	if err != nil {
		return Summary{Processed: processed, Errors: errCount}, fmt.Errorf("failed to save audit log: %w", err)
	}

	log.Printf("Batch complete: %d files processed, %d errors", processed, errCount)
	return Summary{Processed: processed, Errors: errCount, AuditPath: auditPath}, ctx.Err()
}

// processOne runs the full pipeline for a single image and returns its
// path relative to the input directory.
func (p *Processor) processOne(ctx context.Context, imgPath, inputDir, outputDir string, audit *AuditLogger) (string, error) {
	relPath, err := filepath.Rel(inputDir, imgPath)
	if err != nil {
		relPath = filepath.Base(imgPath)
	}

	if err := ctx.Err(); err != nil {
		return relPath, err
	}

	src, err := imaging.Load(imgPath)
	if err != nil {
		return relPath, err
	}

	tokens, err := p.Runner.Recognize(ctx, imgPath, p.Template.OCRConf)
	if err != nil {
		return relPath, err
	}

	items := detect.Scan(tokens, p.Template.DetectConfig())
	regs := regions.Build(items)
	regions.ApplyPolicy(items, regs, p.Template.FlagQueryParamsOnly)

	out := redact.Apply(src, regs, p.Template.Style)

	outPath := filepath.Join(outputDir, relPath)
	if p.Template.Export.Format == "png" {
		ext := filepath.Ext(outPath)
		outPath = strings.TrimSuffix(outPath, ext) + ".png"
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return relPath, err
	}
	if err := imaging.Save(outPath, out); err != nil {
		return relPath, err
	}

	audit.LogFile(imgPath, outPath, regs)
	return relPath, nil
}

func (p *Processor) notifyFile(relPath, status string) {
	if p.OnFile != nil {
		p.OnFile(relPath, status)
	}
}

func (p *Processor) notifyProgress(done, total int) {
	if p.OnProgress != nil {
		p.OnProgress(done, total)
	}
}
