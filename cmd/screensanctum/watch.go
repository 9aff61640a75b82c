package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/screensanctum/screensanctum/batch"
	"github.com/screensanctum/screensanctum/ocr"
)

var (
	watchInput    string
	watchOutput   string
	watchTemplate string
	watchSettle   time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and redact new screenshots as they appear",
	Long: `Monitor an input directory and automatically redact every new image
dropped into it. Useful pointed at a screenshot folder. Stop with
Ctrl+C; an audit receipt for the session is written on shutdown.

Example:

  screensanctum watch --input ~/Screenshots --output ~/Screenshots/safe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := loadTemplateFile(watchTemplate)
		if err != nil {
			return err
		}

		runner := &ocr.Runner{Binary: cfg.OCR.Binary, Language: cfg.OCR.Language}
		p := batch.NewProcessor(runner, tpl)
		p.OnFile = func(relPath, status string) {
			fmt.Printf("  %s: %s\n", relPath, status)
		}

		w := batch.NewWatcher(p)
		if watchSettle > 0 {
			w.SettleDelay = watchSettle
		}

		err = w.Run(cmd.Context(), watchInput, watchOutput)
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "", "directory to watch for new images")
	watchCmd.Flags().StringVar(&watchOutput, "output", "", "directory to save redacted images")
	watchCmd.Flags().StringVar(&watchTemplate, "template", "", "template YAML file (default: built-in default template)")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 0, "delay before picking up a new file (default 500ms)")
	watchCmd.MarkFlagRequired("input")
	watchCmd.MarkFlagRequired("output")
}
