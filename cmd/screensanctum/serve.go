package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/screensanctum/screensanctum/server"
	"github.com/screensanctum/screensanctum/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the redaction HTTP service",
	Long: `Start the ScreenSanctum HTTP API.

The service exposes:
  - /health            - health check
  - /api/v1/detect     - PII detection over OCR tokens
  - /api/v1/redact     - region redaction of a submitted image
  - /api/v1/templates  - template management

Templates are stored in PostgreSQL when the database is enabled,
otherwise in memory (built-ins only, changes are lost on restart).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		if err := st.Seed(ctx); err != nil {
			st.Close()
			return err
		}

		srv, err := server.NewServer(cfg, st)
		if err != nil {
			st.Close()
			return err
		}

		go func() {
			<-ctx.Done()
			log.Println("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Shutdown error: %v", err)
			}
		}()

		srv.StartWithErrorHandling()
		return nil
	},
}

// openStore picks the template store from the loaded configuration.
func openStore(ctx context.Context) (store.TemplateStore, error) {
	if !cfg.Database.Enabled {
		log.Println("Using in-memory template storage")
		return store.NewInMemoryTemplateStore(), nil
	}

	log.Printf("Connecting to template database at %s:%d", cfg.Database.Host, cfg.Database.Port)
	return store.NewPostgresTemplateStore(ctx, store.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		Database:     cfg.Database.Database,
		Username:     cfg.Database.Username,
		Password:     cfg.Database.Password,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  time.Duration(cfg.Database.MaxLifetime) * time.Second,
	})
}
