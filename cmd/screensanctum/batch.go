package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/screensanctum/screensanctum/batch"
	"github.com/screensanctum/screensanctum/ocr"
)

var (
	batchInput    string
	batchOutput   string
	batchTemplate string
	batchWorkers  int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Redact every image in a directory",
	Long: `Apply a redaction template to every supported image under an input
directory. Output files mirror the input folder structure, and a JSON
audit receipt summarizing the redactions is written alongside them.

Example:

  screensanctum batch --input ./screenshots --output ./safe \
    --template bug-report.yaml --workers 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := loadTemplateFile(batchTemplate)
		if err != nil {
			return err
		}

		runner := &ocr.Runner{Binary: cfg.OCR.Binary, Language: cfg.OCR.Language}
		p := batch.NewProcessor(runner, tpl)
		if batchWorkers > 0 {
			p.Workers = batchWorkers
		}
		p.OnFile = func(relPath, status string) {
			fmt.Printf("  %s: %s\n", relPath, status)
		}
		p.OnProgress = func(done, total int) {
			fmt.Printf("Progress: %d/%d\n", done, total)
		}

		summary, err := p.Run(cmd.Context(), batchInput, batchOutput)
		if err != nil {
			return err
		}

		fmt.Printf("Batch complete: %d files processed, %d errors\n", summary.Processed, summary.Errors)
		fmt.Printf("Audit receipt: %s\n", summary.AuditPath)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "directory containing images to process")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "directory to save redacted images")
	batchCmd.Flags().StringVar(&batchTemplate, "template", "", "template YAML file (default: built-in default template)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "number of parallel workers (default 4)")
	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")
}
