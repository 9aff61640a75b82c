package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/screensanctum/screensanctum/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage redaction templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and local template files",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Built-in templates:")
		for _, tpl := range template.BuiltIn() {
			fmt.Printf("  %-22s %s (style: %s, ocr_conf: %d)\n", tpl.ID, tpl.Name, tpl.Style, tpl.OCRConf)
		}

		if cfg.TemplateDir == "" {
			return nil
		}
		matches, err := filepath.Glob(filepath.Join(cfg.TemplateDir, "*.yaml"))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return nil
		}

		fmt.Printf("\nTemplate files in %s:\n", cfg.TemplateDir)
		for _, path := range matches {
			tpl, err := template.Load(path)
			if err != nil {
				fmt.Printf("  %-22s (invalid: %v)\n", filepath.Base(path), err)
				continue
			}
			fmt.Printf("  %-22s %s (style: %s, ocr_conf: %d)\n", filepath.Base(path), tpl.Name, tpl.Style, tpl.OCRConf)
		}
		return nil
	},
}

var templatesExportCmd = &cobra.Command{
	Use:   "export [id] [file]",
	Short: "Write a built-in template to a YAML file for customization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, path := args[0], args[1]

		for _, tpl := range template.BuiltIn() {
			if tpl.ID == id {
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return err
				}
				if err := tpl.Save(path); err != nil {
					return err
				}
				fmt.Printf("Wrote %s to %s\n", id, path)
				return nil
			}
		}
		return fmt.Errorf("unknown template: %s", id)
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesExportCmd)
}
