// Package config holds process configuration for the redaction
// service and CLI: defaults, JSON config file loading and environment
// overrides.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const trueValue = "true"

// DatabaseConfig holds the template store connection settings.
type DatabaseConfig struct {
	Enabled      bool   // Whether to use database-backed templates
	Host         string // Database host
	Port         int    // Database port
	Database     string // Database name
	Username     string // Database username
	Password     string // Database password
	SSLMode      string // SSL mode (disable, require, etc.)
	MaxOpenConns int    // Maximum open connections
	MaxIdleConns int    // Maximum idle connections
	MaxLifetime  int    // Connection max lifetime in seconds
}

// OCRConfig holds the tesseract invocation settings.
type OCRConfig struct {
	Binary     string // tesseract executable
	Language   string // OCR language
	Confidence int    // default confidence threshold 0-100
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	ListenAddr string  // ":PORT" listen address
	RateLimit  float64 // requests per second, 0 disables limiting
	RateBurst  int     // burst size for the rate limiter
}

// Config holds all configuration for the redaction service.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	OCR         OCRConfig
	SentryDSN   string // error reporting, empty disables
	TemplateDir string // directory of YAML template files
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8343",
			RateLimit:  20,
			RateBurst:  40,
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "screensanctum",
			Username:     "postgres",
			Password:     "",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxLifetime:  300,
		},
		OCR: OCRConfig{
			Binary:     "tesseract",
			Language:   "eng",
			Confidence: 60,
		},
	}
}

// LoadFile merges a JSON config file into cfg. A missing file is
// fatal; a malformed one is logged and ignored so the process can
// still start on defaults plus environment.
func LoadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Failed to close config file: %v", err)
		}
	}()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		log.Printf("Failed to decode config file %s: %v", path, err)
	}
	return nil
}

// LoadFromEnv overrides cfg with environment variables.
func LoadFromEnv(cfg *Config) {
	loadServerConfig(cfg)
	loadDatabaseConfig(cfg)
	loadOCRConfig(cfg)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		cfg.SentryDSN = dsn
	}
	if dir := os.Getenv("TEMPLATE_DIR"); dir != "" {
		cfg.TemplateDir = dir
	}
}

func loadServerConfig(cfg *Config) {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if limit := os.Getenv("RATE_LIMIT"); limit != "" {
		if v, err := strconv.ParseFloat(limit, 64); err == nil {
			cfg.Server.RateLimit = v
		}
	}
	if burst := os.Getenv("RATE_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.Server.RateBurst = v
		}
	}
}

func loadDatabaseConfig(cfg *Config) {
	if dbEnabled := os.Getenv("DB_ENABLED"); dbEnabled != "" {
		cfg.Database.Enabled = dbEnabled == trueValue
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.Database = dbName
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.Username = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if sslMode := os.Getenv("DB_SSL_MODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
}

func loadOCRConfig(cfg *Config) {
	if binary := os.Getenv("OCR_BINARY"); binary != "" {
		cfg.OCR.Binary = binary
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		cfg.OCR.Language = lang
	}
	if conf := os.Getenv("OCR_CONFIDENCE"); conf != "" {
		if v, err := strconv.Atoi(conf); err == nil {
			cfg.OCR.Confidence = v
		}
	}
}

// Validate checks the configuration before startup.
func (c *Config) Validate() error {
	if err := validatePort(c.Server.ListenAddr, "ListenAddr"); err != nil {
		return err
	}
	if c.OCR.Confidence < 0 || c.OCR.Confidence > 100 {
		return fmt.Errorf("OCR.Confidence: must be between 0 and 100 (current value: %d)", c.OCR.Confidence)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("Server.RateLimit: must not be negative (current value: %v)", c.Server.RateLimit)
	}
	return nil
}

// validatePort checks that a listen address has the ":PORT" shape with
// a numeric port in the valid range.
func validatePort(port, fieldName string) error {
	if port == "" {
		return fmt.Errorf("%s: port cannot be empty", fieldName)
	}
	if !strings.HasPrefix(port, ":") {
		return fmt.Errorf("%s: port must be in format ':PORT' where PORT is numeric (current value: %s)", fieldName, port)
	}
	n, err := strconv.Atoi(port[1:])
	if err != nil {
		return fmt.Errorf("%s: port must be in format ':PORT' where PORT is numeric (current value: %s)", fieldName, port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("%s: port must be between 1 and 65535 (current value: %d)", fieldName, n)
	}
	return nil
}
