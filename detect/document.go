package detect

import "github.com/screensanctum/screensanctum/ocr"

// Document is the immutable scanning input: the token sequence, the
// assembled search text and the per-byte offset index mapping text
// positions back to tokens.
type Document struct {
	Tokens []ocr.Token
	Text   string

	index []int
}

// NewDocument assembles the tokens into a Document ready for scanning.
func NewDocument(tokens []ocr.Token) *Document {
	text, index := ocr.Assemble(tokens)
	return &Document{Tokens: tokens, Text: text, index: index}
}

// boxesForSpan returns the bounding boxes of the distinct tokens whose
// bytes fall inside the half-open span [start, end), in ascending
// token order. Separator positions contribute nothing. A nil result
// means the span maps to zero tokens and the match must be dropped.
//
// The offset index is nondecreasing by construction, so collecting
// distinct indices in encounter order already yields ascending order.
func (d *Document) boxesForSpan(start, end int) []ocr.Box {
	if start < 0 {
		start = 0
	}
	if end > len(d.index) {
		end = len(d.index)
	}

	var boxes []ocr.Box
	last := ocr.NoToken
	for i := start; i < end; i++ {
		idx := d.index[i]
		if idx == ocr.NoToken || idx == last {
			continue
		}
		last = idx
		boxes = append(boxes, d.Tokens[idx].Box())
	}
	return boxes
}
