package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"

	"github.com/screensanctum/screensanctum/detect"
	"github.com/screensanctum/screensanctum/imaging"
	"github.com/screensanctum/screensanctum/ocr"
	"github.com/screensanctum/screensanctum/redact"
	"github.com/screensanctum/screensanctum/regions"
	"github.com/screensanctum/screensanctum/template"
)

const maxRequestBody = 32 << 20 // images arrive base64-encoded

var errTemplateLookup = errors.New("failed to load template")

func errTemplateUnknown(id string) error {
	return fmt.Errorf("unknown template: %s", id)
}

// DetectRequest carries OCR tokens plus the template to apply. Either
// a stored template ID or an inline template may be given; when both
// are absent the default template is used.
type DetectRequest struct {
	Tokens     []ocr.Token        `json:"tokens"`
	TemplateID string             `json:"template_id,omitempty"`
	Template   *template.Template `json:"template,omitempty"`
}

// DetectResponse returns the redaction regions with selection already
// applied, plus a count of selected regions per PII type.
type DetectResponse struct {
	Regions []regions.Region `json:"regions"`
	Counts  map[string]int   `json:"counts"`
}

// RedactRequest carries a base64-encoded image and the regions to
// obscure in it.
type RedactRequest struct {
	Image   string           `json:"image"`
	Regions []regions.Region `json:"regions"`
	Style   string           `json:"style"`
}

// RedactResponse returns the redacted image as base64-encoded PNG.
type RedactResponse struct {
	Image string `json:"image"`
}

// handleDetect runs detection over submitted tokens
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DetectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tpl, err := s.resolveTemplate(r, req.TemplateID, req.Template)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := detect.Scan(req.Tokens, tpl.DetectConfig())
	regs := regions.Build(items)
	regions.ApplyPolicy(items, regs, tpl.FlagQueryParamsOnly)

	counts := make(map[string]int)
	for _, reg := range regs {
		if reg.Selected && reg.Type != "" {
			counts[string(reg.Type)]++
		}
	}
	if regs == nil {
		regs = []regions.Region{}
	}

	writeJSON(w, DetectResponse{Regions: regs, Counts: counts})
}

// handleRedact applies redaction regions to a submitted image
func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RedactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	style, err := redact.ParseStyle(req.Style)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		http.Error(w, "Image is not valid base64", http.StatusBadRequest)
		return
	}

	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		http.Error(w, "Failed to decode image", http.StatusBadRequest)
		return
	}

	out := redact.Apply(src, req.Regions, style)

	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, out); err != nil {
		sentry.CaptureException(err)
		http.Error(w, "Failed to encode result", http.StatusInternalServerError)
		return
	}

	writeJSON(w, RedactResponse{Image: base64.StdEncoding.EncodeToString(buf.Bytes())})
}

// handleTemplates serves the template collection
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		templates, err := s.store.List(r.Context())
		if err != nil {
			sentry.CaptureException(err)
			http.Error(w, "Failed to list templates", http.StatusInternalServerError)
			return
		}
		if templates == nil {
			templates = []*template.Template{}
		}
		writeJSON(w, templates)

	case http.MethodPost:
		var tpl template.Template
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&tpl); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := tpl.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.store.Save(r.Context(), &tpl); err != nil {
			sentry.CaptureException(err)
			http.Error(w, "Failed to save template", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(&tpl); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTemplateByID serves a single template
func (s *Server) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/templates/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Invalid template id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tpl, ok, err := s.store.Get(r.Context(), id)
		if err != nil {
			sentry.CaptureException(err)
			http.Error(w, "Failed to load template", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "Template not found", http.StatusNotFound)
			return
		}
		writeJSON(w, tpl)

	case http.MethodPut:
		var tpl template.Template
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&tpl); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		tpl.ID = id
		if err := tpl.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.store.Save(r.Context(), &tpl); err != nil {
			sentry.CaptureException(err)
			http.Error(w, "Failed to save template", http.StatusInternalServerError)
			return
		}
		writeJSON(w, &tpl)

	case http.MethodDelete:
		if err := s.store.Delete(r.Context(), id); err != nil {
			sentry.CaptureException(err)
			http.Error(w, "Failed to delete template", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// resolveTemplate picks the template for a detect request. Inline
// templates win over stored IDs.
func (s *Server) resolveTemplate(r *http.Request, id string, inline *template.Template) (*template.Template, error) {
	if inline != nil {
		if err := inline.Validate(); err != nil {
			return nil, err
		}
		return inline, nil
	}
	if id == "" {
		return template.Default(), nil
	}

	tpl, ok, err := s.store.Get(r.Context(), id)
	if err != nil {
		sentry.CaptureException(err)
		return nil, errTemplateLookup
	}
	if !ok {
		return nil, errTemplateUnknown(id)
	}
	return tpl, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
