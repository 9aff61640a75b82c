package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screensanctum/screensanctum/regions"
)

// FileEntry records the redactions applied to a single file.
type FileEntry struct {
	OriginalFile    string         `json:"original_file"`
	RedactedFile    string         `json:"redacted_file"`
	PiiCounts       map[string]int `json:"pii_counts"`
	TotalRedactions int            `json:"total_redactions"`
	ProcessedAt     string         `json:"processed_at"`
}

// Receipt is the JSON document written at the end of a batch job.
type Receipt struct {
	JobID           string      `json:"job_id"`
	TemplateID      string      `json:"template_id"`
	JobStarted      string      `json:"job_started"`
	JobCompleted    string      `json:"job_completed"`
	FilesProcessed  int         `json:"files_processed"`
	TotalRedactions int         `json:"total_redactions"`
	Files           []FileEntry `json:"files"`
}

// AuditLogger collects per-file redaction records during a batch job
// and writes a JSON receipt when the job finishes. Safe for concurrent
// use by the batch workers.
type AuditLogger struct {
	outputDir  string
	templateID string
	jobID      string
	jobStarted time.Time

	mu      sync.Mutex
	entries []FileEntry
}

// NewAuditLogger creates an audit logger writing its receipt to outputDir.
func NewAuditLogger(outputDir, templateID string) *AuditLogger {
	return &AuditLogger{
		outputDir:  outputDir,
		templateID: templateID,
		jobID:      uuid.New().String(),
		jobStarted: time.Now(),
	}
}

// JobID returns the unique identifier of this batch job.
func (a *AuditLogger) JobID() string {
	return a.jobID
}

// LogFile records a processed file. Only selected regions with a
// detector type are counted; manual regions carry no type.
func (a *AuditLogger) LogFile(originalPath, redactedPath string, regs []regions.Region) {
	originalRel := filepath.Base(originalPath)
	redactedRel, err := filepath.Rel(a.outputDir, redactedPath)
	if err != nil {
		redactedRel = filepath.Base(redactedPath)
	}

	counts := make(map[string]int)
	total := 0
	for _, r := range regs {
		if r.Selected && r.Type != "" {
			counts[string(r.Type)+"s"]++
			total++
		}
	}

	entry := FileEntry{
		OriginalFile:    originalRel,
		RedactedFile:    redactedRel,
		PiiCounts:       counts,
		TotalRedactions: total,
		ProcessedAt:     time.Now().Format(time.RFC3339),
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
}

// Save writes the receipt to a timestamped JSON file in the output
// directory and returns its path.
func (a *AuditLogger) Save() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := 0
	for _, e := range a.entries {
		total += e.TotalRedactions
	}

	receipt := Receipt{
		JobID:           a.jobID,
		TemplateID:      a.templateID,
		JobStarted:      a.jobStarted.Format(time.RFC3339),
		JobCompleted:    time.Now().Format(time.RFC3339),
		FilesProcessed:  len(a.entries),
		TotalRedactions: total,
		Files:           a.entries,
	}

	filename := fmt.Sprintf("audit_log_%s.json", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(a.outputDir, filename)

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode audit log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audit log: %w", err)
	}

	return path, nil
}
