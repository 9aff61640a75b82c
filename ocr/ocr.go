// Package ocr holds the token model emitted by the OCR engine and the
// text assembly step that prepares a token sequence for pattern
// scanning. Tokens are immutable value objects; their order is the
// order the engine emitted them, which is the only ordering the
// downstream detectors may rely on.
package ocr

import "strings"

// Box is a pixel-space rectangle with its origin at the top-left of
// the image.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Token represents a single OCR-recognized word with its bounding box
// and confidence score (0-100).
type Token struct {
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	Conf int    `json:"conf"`
}

// Box returns the token's bounding rectangle.
func (t Token) Box() Box {
	return Box{X: t.X, Y: t.Y, W: t.W, H: t.H}
}

// NoToken marks positions in the offset index that fall on an inserted
// separator space rather than on a token character.
const NoToken = -1

// Assemble joins token texts with exactly one space between
// consecutive tokens and builds the offset index: one entry per byte
// of the joined text holding the index of the owning token, or NoToken
// for separator bytes. Byte offsets are used throughout so that regexp
// match positions index directly into the result.
//
// For a non-empty input, len(text) == sum(len(token.Text)) + n-1 and
// len(index) == len(text). Empty input yields "" and a nil index.
func Assemble(tokens []Token) (text string, index []int) {
	if len(tokens) == 0 {
		return "", nil
	}

	size := len(tokens) - 1
	for _, tok := range tokens {
		size += len(tok.Text)
	}

	var sb strings.Builder
	sb.Grow(size)
	index = make([]int, 0, size)

	for i, tok := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
			index = append(index, NoToken)
		}
		sb.WriteString(tok.Text)
		for j := 0; j < len(tok.Text); j++ {
			index = append(index, i)
		}
	}
	return sb.String(), index
}
