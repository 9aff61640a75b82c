package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/lib/pq"

	"github.com/screensanctum/screensanctum/template"
)

// Config holds database configuration
type Config struct {
	Host         string
	Port         int
	Database     string
	Username     string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// TemplateStore defines the interface for template persistence
type TemplateStore interface {
	// Save inserts or updates a template by ID
	Save(ctx context.Context, tpl *template.Template) error

	// Get retrieves a template by ID
	Get(ctx context.Context, id string) (*template.Template, bool, error)

	// List returns all stored templates ordered by name
	List(ctx context.Context) ([]*template.Template, error)

	// Delete removes a template from the store
	Delete(ctx context.Context, id string) error

	// Seed inserts the built-in templates that are not already present
	Seed(ctx context.Context) error

	// Close closes the underlying store
	Close() error
}

// PostgresTemplateStore implements TemplateStore for PostgreSQL
type PostgresTemplateStore struct {
	db *sql.DB
}

// NewPostgresTemplateStore opens a PostgreSQL-backed template store.
// The initial ping is retried so the store survives a database that is
// still starting up alongside the service.
func NewPostgresTemplateStore(ctx context.Context, config Config) (*PostgresTemplateStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.MaxLifetime)

	err = retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(1*time.Second),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTableIfNotExists(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgresTemplateStore{db: db}, nil
}

// createTableIfNotExists creates the templates table if it doesn't exist
func createTableIfNotExists(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS templates (
		id VARCHAR(100) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		body JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_templates_name ON templates(name);
	CREATE INDEX IF NOT EXISTS idx_templates_updated_at ON templates(updated_at);
	`

	_, err := db.Exec(query)
	return err
}

// Save inserts or updates a template by ID
func (p *PostgresTemplateStore) Save(ctx context.Context, tpl *template.Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	body, err := marshalTemplate(tpl)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO templates (id, name, version, body, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (id)
	DO UPDATE SET
		name = EXCLUDED.name,
		version = EXCLUDED.version,
		body = EXCLUDED.body,
		updated_at = NOW()
	`

	_, err = p.db.ExecContext(ctx, query, tpl.ID, tpl.Name, tpl.Version, body)
	return err
}

// Get retrieves a template by ID
func (p *PostgresTemplateStore) Get(ctx context.Context, id string) (*template.Template, bool, error) {
	query := `SELECT body FROM templates WHERE id = $1`

	var body []byte
	err := p.db.QueryRowContext(ctx, query, id).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	tpl, err := unmarshalTemplate(body)
	if err != nil {
		return nil, false, err
	}

	return tpl, true, nil
}

// List returns all stored templates ordered by name
func (p *PostgresTemplateStore) List(ctx context.Context) ([]*template.Template, error) {
	query := `SELECT body FROM templates ORDER BY name`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*template.Template
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		tpl, err := unmarshalTemplate(body)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	return templates, rows.Err()
}

// Delete removes a template from the store
func (p *PostgresTemplateStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM templates WHERE id = $1`
	_, err := p.db.ExecContext(ctx, query, id)
	return err
}

// Seed inserts the built-in templates that are not already present
func (p *PostgresTemplateStore) Seed(ctx context.Context) error {
	query := `
	INSERT INTO templates (id, name, version, body, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (id) DO NOTHING
	`

	for _, tpl := range template.BuiltIn() {
		body, err := marshalTemplate(tpl)
		if err != nil {
			return err
		}
		if _, err := p.db.ExecContext(ctx, query, tpl.ID, tpl.Name, tpl.Version, body); err != nil {
			return fmt.Errorf("failed to seed template %s: %w", tpl.ID, err)
		}
	}

	return nil
}

// Close closes the database connection
func (p *PostgresTemplateStore) Close() error {
	return p.db.Close()
}

// InMemoryTemplateStore implements TemplateStore in memory (fallback)
type InMemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewInMemoryTemplateStore creates an in-memory template store
func NewInMemoryTemplateStore() *InMemoryTemplateStore {
	return &InMemoryTemplateStore{
		templates: make(map[string]*template.Template),
	}
}

// Save inserts or updates a template by ID
func (m *InMemoryTemplateStore) Save(ctx context.Context, tpl *template.Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[tpl.ID] = tpl
	return nil
}

// Get retrieves a template by ID
func (m *InMemoryTemplateStore) Get(ctx context.Context, id string) (*template.Template, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tpl, ok := m.templates[id]
	return tpl, ok, nil
}

// List returns all stored templates ordered by name
func (m *InMemoryTemplateStore) List(ctx context.Context) ([]*template.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	templates := make([]*template.Template, 0, len(m.templates))
	for _, tpl := range m.templates {
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

// Delete removes a template from the store
func (m *InMemoryTemplateStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, id)
	return nil
}

// Seed inserts the built-in templates that are not already present
func (m *InMemoryTemplateStore) Seed(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tpl := range template.BuiltIn() {
		if _, ok := m.templates[tpl.ID]; !ok {
			m.templates[tpl.ID] = tpl
		}
	}
	return nil
}

// Close is a no-op for the in-memory store
func (m *InMemoryTemplateStore) Close() error {
	return nil
}

func marshalTemplate(tpl *template.Template) ([]byte, error) {
	body, err := json.Marshal(tpl)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template %s: %w", tpl.ID, err)
	}
	return body, nil
}

func unmarshalTemplate(body []byte) (*template.Template, error) {
	var tpl template.Template
	if err := json.Unmarshal(body, &tpl); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}
	return &tpl, nil
}
