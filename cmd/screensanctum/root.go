package main

import (
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/screensanctum/screensanctum/config"
	"github.com/screensanctum/screensanctum/version"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "screensanctum",
	Short: "Offline screenshot redaction with automatic PII detection",
	Long: `ScreenSanctum redacts sensitive information from screenshots.

It runs OCR over an image, scans the recognized text for emails, IP
addresses, URLs, hostnames and phone numbers, and obscures the matching
image regions with a solid fill, blur or pixelation.

All processing happens locally; no image data ever leaves the machine.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (JSON, optional)",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists
		if err := godotenv.Load(); err == nil {
			log.Println("Loaded .env file from current directory")
		}

		cfg = config.DefaultConfig()
		if cfgFile != "" {
			if err := config.LoadFile(cfgFile, cfg); err != nil {
				return err
			}
		}
		config.LoadFromEnv(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		if cfg.SentryDSN != "" {
			err := sentry.Init(sentry.ClientOptions{
				Dsn:     cfg.SentryDSN,
				Release: "screensanctum@" + version.Version,
			})
			if err != nil {
				log.Printf("Sentry init failed: %v", err)
			}
		}
		return nil
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(redactCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(versionCmd)
}
