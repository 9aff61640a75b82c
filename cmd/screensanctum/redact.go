package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/screensanctum/screensanctum/detect"
	"github.com/screensanctum/screensanctum/imaging"
	"github.com/screensanctum/screensanctum/ocr"
	"github.com/screensanctum/screensanctum/redact"
	"github.com/screensanctum/screensanctum/regions"
	"github.com/screensanctum/screensanctum/template"
)

var (
	redactInput    string
	redactOutput   string
	redactStyle    string
	redactTemplate string
	trustedDomains []string
)

var redactCmd = &cobra.Command{
	Use:   "redact",
	Short: "Redact sensitive information from a single image",
	Long: `Redact sensitive information from an image.

Examples:

  # Detect and redact with the default template:
  screensanctum redact --input screenshot.png --output safe.png

  # Blur instead of solid fill, skipping trusted domains:
  screensanctum redact --input screenshot.png --output safe.png \
    --style blur --trusted-domains example.com --trusted-domains corp.internal

  # Use a template file:
  screensanctum redact --input screenshot.png --output safe.png \
    --template bug-report.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tpl, err := loadTemplateFile(redactTemplate)
		if err != nil {
			return err
		}
		if redactStyle != "" {
			style, err := redact.ParseStyle(redactStyle)
			if err != nil {
				return err
			}
			tpl.Style = style
		}
		tpl.Ignore.Domains = append(tpl.Ignore.Domains, trustedDomains...)

		fmt.Printf("Loading image: %s\n", redactInput)
		src, err := imaging.Load(redactInput)
		if err != nil {
			return err
		}
		bounds := src.Bounds()
		fmt.Printf("Image loaded: %dx%d pixels\n", bounds.Dx(), bounds.Dy())

		fmt.Println("Performing OCR...")
		runner := &ocr.Runner{Binary: cfg.OCR.Binary, Language: cfg.OCR.Language}
		tokens, err := runner.Recognize(ctx, redactInput, tpl.OCRConf)
		if err != nil {
			return err
		}
		fmt.Printf("Extracted %d text tokens\n", len(tokens))

		items := detect.Scan(tokens, tpl.DetectConfig())
		regs := regions.Build(items)
		regions.ApplyPolicy(items, regs, tpl.FlagQueryParamsOnly)
		fmt.Printf("Created %d redaction regions\n", len(regs))
		printBreakdown(regs)

		fmt.Printf("Applying %s redaction...\n", tpl.Style)
		out := redact.Apply(src, regs, tpl.Style)

		fmt.Printf("Saving to: %s\n", redactOutput)
		if err := imaging.Save(redactOutput, out); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	},
}

func init() {
	redactCmd.Flags().StringVar(&redactInput, "input", "", "path to input image file")
	redactCmd.Flags().StringVar(&redactOutput, "output", "", "path to save redacted output image")
	redactCmd.Flags().StringVar(&redactStyle, "style", "", "redaction style: solid, blur or pixelate (overrides template)")
	redactCmd.Flags().StringVar(&redactTemplate, "template", "", "template YAML file (default: built-in default template)")
	redactCmd.Flags().StringArrayVar(&trustedDomains, "trusted-domains", nil, "trusted domains to skip during detection (repeatable)")
	redactCmd.MarkFlagRequired("input")
	redactCmd.MarkFlagRequired("output")
}

// loadTemplateFile resolves a --template flag, falling back to the
// built-in default.
func loadTemplateFile(path string) (*template.Template, error) {
	if path == "" {
		return template.Default(), nil
	}
	return template.Load(path)
}

// printBreakdown lists selected regions per PII type.
func printBreakdown(regs []regions.Region) {
	counts := make(map[string]int)
	for _, r := range regs {
		if !r.Selected {
			continue
		}
		name := "manual"
		if r.Type != "" {
			name = string(r.Type)
		}
		counts[name]++
	}
	if len(counts) == 0 {
		return
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Detected PII breakdown:")
	for _, name := range names {
		fmt.Printf("  - %s: %d\n", name, counts[name])
	}
}
