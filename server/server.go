// Package server exposes the detection and redaction pipeline over
// HTTP for desktop and automation clients.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/screensanctum/screensanctum/config"
	"github.com/screensanctum/screensanctum/store"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	store   store.TemplateStore
	limiter *rate.Limiter
	httpSrv *http.Server
}

// NewServer creates a new server instance backed by the given template
// store. Pass an in-memory store when no database is available.
func NewServer(cfg *config.Config, st store.TemplateStore) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("template store is required")
	}

	limit := rate.Limit(cfg.Server.RateLimit)
	if cfg.Server.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &Server{
		config:  cfg,
		store:   st,
		limiter: rate.NewLimiter(limit, cfg.Server.RateBurst),
	}, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting redaction service on %s", s.config.Server.ListenAddr)
	log.Printf("OCR engine: %s (language %s)", s.config.OCR.Binary, s.config.OCR.Language)

	// Create server with timeout configuration
	s.httpSrv = &http.Server{
		Addr:         s.config.Server.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpSrv.ListenAndServe()
}

// routes builds the request mux
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthCheck)
	mux.HandleFunc("/api/v1/detect", s.middleware(s.handleDetect))
	mux.HandleFunc("/api/v1/redact", s.middleware(s.handleRedact))
	mux.HandleFunc("/api/v1/templates", s.middleware(s.handleTemplates))
	mux.HandleFunc("/api/v1/templates/", s.middleware(s.handleTemplateByID))
	return mux
}

// StartWithErrorHandling starts the server with proper error handling
func (s *Server) StartWithErrorHandling() {
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// Shutdown gracefully stops the server and closes the template store.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.store.Close()
}

// middleware wraps an API handler with CORS, rate limiting, request
// IDs and panic capture.
func (s *Server) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Handle CORS preflight OPTIONS request
		if r.Method == http.MethodOptions {
			s.corsHandler(w, r)
			w.WriteHeader(http.StatusOK)
			return
		}
		s.corsHandler(w, r)

		if !s.limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		reqID := uuid.New().String()
		w.Header().Set("X-Request-ID", reqID)
		log.Printf("[%s] %s %s", reqID, r.Method, r.URL.Path)

		defer func() {
			if rec := recover(); rec != nil {
				sentry.CurrentHub().Recover(rec)
				log.Printf("[%s] panic: %v", reqID, rec)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next(w, r)
	}
}

// corsHandler adds CORS headers to the response
func (s *Server) corsHandler(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "false")
	} else {
		// For requests with origin, echo it back (allows credentials)
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}

	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// healthCheck provides a simple health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.corsHandler(w, r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"healthy","service":"ScreenSanctum"}`)); err != nil {
		log.Printf("Failed to write health check response: %v", err)
	}
}
