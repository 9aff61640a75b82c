// Package regions turns detected items into redaction-ready
// rectangles and applies the template selection policy. Regions are
// value objects: once built they carry no reference back to the
// tokens or items they came from.
package regions

import (
	"github.com/screensanctum/screensanctum/detect"
)

// Region is a rectangular area of the image to be redacted. Type is
// empty for manually drawn regions. Selected regions are the only ones
// an exporter ever obscures.
type Region struct {
	Type     detect.PiiType `json:"pii_type,omitempty"`
	Text     string         `json:"text"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	W        int            `json:"w"`
	H        int            `json:"h"`
	Selected bool           `json:"selected"`
	Manual   bool           `json:"manual"`
}

// MergeBoxes collapses an item's boxes into the single minimal
// enclosing rectangle. Gaps between non-adjacent boxes end up inside
// the rectangle and get redacted with the rest.
// An item with no boxes yields a zero-size region at the origin; the
// detectors never emit one, so this is an invariant-violation guard
// rather than a reachable path.
func MergeBoxes(item detect.Item) Region {
	region := Region{
		Type:     item.Type,
		Text:     item.Text,
		Selected: true,
	}
	if len(item.Boxes) == 0 {
		return region
	}

	minX, minY := item.Boxes[0].X, item.Boxes[0].Y
	maxX := item.Boxes[0].X + item.Boxes[0].W
	maxY := item.Boxes[0].Y + item.Boxes[0].H
	for _, b := range item.Boxes[1:] {
		if b.X < minX {
			minX = b.X
		}
		if b.Y < minY {
			minY = b.Y
		}
		if b.X+b.W > maxX {
			maxX = b.X + b.W
		}
		if b.Y+b.H > maxY {
			maxY = b.Y + b.H
		}
	}

	region.X = minX
	region.Y = minY
	region.W = maxX - minX
	region.H = maxY - minY
	return region
}

// Build maps items to regions 1:1, preserving order.
func Build(items []detect.Item) []Region {
	regions := make([]Region, 0, len(items))
	for _, item := range items {
		regions = append(regions, MergeBoxes(item))
	}
	return regions
}

// NewManual creates a user-drawn region. Manual regions carry no PII
// type and start selected.
func NewManual(x, y, w, h int) Region {
	return Region{
		Text:     "Manual Region",
		X:        x,
		Y:        y,
		W:        w,
		H:        h,
		Selected: true,
		Manual:   true,
	}
}
