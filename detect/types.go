// Package detect locates PII in OCR-assembled text and resolves every
// match back to the pixel-space bounding boxes of the tokens it came
// from. Detectors are pure functions over an immutable Document; they
// hold no state and are safe to invoke concurrently as long as each
// invocation gets its own token sequence.
package detect

import "github.com/screensanctum/screensanctum/ocr"

// PiiType classifies the kind of sensitive data found.
type PiiType string

// The closed set of PII types. Adding one is a deliberate change:
// every switch over PiiType in this repository enumerates all of them.
const (
	PiiEmail  PiiType = "email"
	PiiIP     PiiType = "ip"
	PiiDomain PiiType = "domain"
	PiiURL    PiiType = "url"
	PiiPhone  PiiType = "phone"
	PiiFace   PiiType = "face" // reserved, no detector emits it yet
	PiiCustom PiiType = "custom"
)

// Item is a located PII instance. Boxes holds the rectangles of the
// distinct tokens contributing to the match, in token order.
// HasQueryParams is meaningful for URL items only.
//
// For custom-rule matches, Text carries the rule's name rather than
// the matched substring: the name is the human-meaningful label and
// the literal match is not retained.
type Item struct {
	Type           PiiType   `json:"pii_type"`
	Text           string    `json:"text"`
	Boxes          []ocr.Box `json:"boxes"`
	HasQueryParams bool      `json:"has_query_params,omitempty"`

	// byte span of the match in the assembled text; used for the
	// domain overlap exclusion and phone de-duplication
	start, end int
}

// Span returns the half-open byte span of the match in the assembled
// text.
func (it Item) Span() (start, end int) {
	return it.start, it.end
}
