// Package template defines redaction templates: the caller-owned
// policy bundle of detector enable flags, ignore lists, custom rules,
// default style and selection rules. Templates live as YAML files on
// disk or as rows in the template store.
package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/screensanctum/screensanctum/detect"
	"github.com/screensanctum/screensanctum/redact"
)

// Detectors gates which built-in detectors run. Face is reserved for a
// future detector and is ignored by the scan.
type Detectors struct {
	Email    bool `yaml:"email" json:"email"`
	Phone    bool `yaml:"phone" json:"phone"`
	IPv4     bool `yaml:"ipv4" json:"ipv4"`
	Hostname bool `yaml:"hostname" json:"hostname"`
	URL      bool `yaml:"url" json:"url"`
	Face     bool `yaml:"face" json:"face"`
}

// Ignore holds literal strings detection skips verbatim.
type Ignore struct {
	Emails  []string `yaml:"emails" json:"emails"`
	Domains []string `yaml:"domains" json:"domains"`
}

// Export controls how batch output files are written.
type Export struct {
	// "png" forces PNG output; "original" keeps the source extension.
	Format string `yaml:"format" json:"format"`
}

// Template is one named redaction policy.
type Template struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Version int    `yaml:"version" json:"version"`

	Detectors   Detectors     `yaml:"detectors" json:"detectors"`
	Ignore      Ignore        `yaml:"ignore" json:"ignore"`
	CustomRules []detect.Rule `yaml:"custom_rules" json:"custom_rules"`

	Style   redact.Style `yaml:"style" json:"style"`
	OCRConf int          `yaml:"ocr_conf" json:"ocr_conf"`

	// select only query-bearing URLs instead of every URL
	FlagQueryParamsOnly bool `yaml:"url_flag_query_params" json:"url_flag_query_params"`

	Export Export `yaml:"export" json:"export"`
}

// Default returns the default template: every detector on, solid
// fill, OCR confidence 60, query-param URL flagging.
func Default() *Template {
	return &Template{
		ID:      "tpl_01_default",
		Name:    "Default (Solid)",
		Version: 1,
		Detectors: Detectors{
			Email:    true,
			Phone:    true,
			IPv4:     true,
			Hostname: true,
			URL:      true,
		},
		Style:               redact.StyleSolid,
		OCRConf:             60,
		FlagQueryParamsOnly: true,
		Export:              Export{Format: "png"},
	}
}

// BuiltIn returns the built-in templates seeded into a fresh store.
func BuiltIn() []*Template {
	social := Default()
	social.ID = "tpl_02_social_share"
	social.Name = "Social Share Safe"
	social.OCRConf = 70 // higher bar before trusting OCR for sharing

	bugReport := Default()
	bugReport.ID = "tpl_03_bug_report"
	bugReport.Name = "Bug Report Safe"
	bugReport.Style = redact.StyleBlur
	bugReport.FlagQueryParamsOnly = false // bug reports keep URLs redacted wholesale

	return []*Template{Default(), social, bugReport}
}

// DetectConfig translates the template into the detection pass input.
func (t *Template) DetectConfig() detect.Config {
	return detect.Config{
		IgnoreEmails:  t.Ignore.Emails,
		IgnoreDomains: t.Ignore.Domains,
		Rules:         t.CustomRules,
		Emails:        t.Detectors.Email,
		IPs:           t.Detectors.IPv4,
		URLs:          t.Detectors.URL,
		Domains:       t.Detectors.Hostname,
		Phones:        t.Detectors.Phone,
	}
}

// Validate checks the fields a template file or API payload could get
// wrong.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template id cannot be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("template %s: name cannot be empty", t.ID)
	}
	if _, err := redact.ParseStyle(string(t.Style)); err != nil {
		return fmt.Errorf("template %s: %w", t.ID, err)
	}
	if t.OCRConf < 0 || t.OCRConf > 100 {
		return fmt.Errorf("template %s: ocr_conf must be between 0 and 100 (current value: %d)", t.ID, t.OCRConf)
	}
	if f := t.Export.Format; f != "" && f != "png" && f != "original" {
		return fmt.Errorf("template %s: export format must be png or original (current value: %s)", t.ID, f)
	}
	return nil
}

// Load reads a template from a YAML file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	if t.Version == 0 {
		t.Version = 1
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Save writes the template as YAML.
func (t *Template) Save(path string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to serialize template %s: %w", t.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write template %s: %w", path, err)
	}
	return nil
}
