package detect

import (
	"testing"

	"github.com/screensanctum/screensanctum/ocr"
)

func TestPhones(t *testing.T) {
	doc := NewDocument([]ocr.Token{
		tok("Call:", 0, 0),
		tok("(555)", 50, 0),
		tok("123-4567", 110, 0),
	})

	items := Phones(doc)
	if len(items) != 1 {
		t.Fatalf("Expected 1 phone, got %d: %+v", len(items), items)
	}
	if items[0].Text != "(555) 123-4567" {
		t.Errorf("Expected '(555) 123-4567', got %q", items[0].Text)
	}
	// The match spans two tokens, so both boxes contribute.
	if len(items[0].Boxes) != 2 {
		t.Errorf("Expected 2 contributing boxes, got %d", len(items[0].Boxes))
	}
}

func TestPhonesDuplicateTextDistinctPositions(t *testing.T) {
	// The same number appearing twice at different locations is two
	// detections with different box sets, never collapsed into one.
	doc := NewDocument([]ocr.Token{
		tok("First:", 0, 0),
		tok("555-123-4567", 60, 0),
		tok("Second:", 0, 20),
		tok("555-123-4567", 70, 20),
	})

	items := Phones(doc)
	if len(items) != 2 {
		t.Fatalf("Expected 2 phones, got %d", len(items))
	}
	if items[0].Text != items[1].Text {
		t.Errorf("Expected identical texts, got %q and %q", items[0].Text, items[1].Text)
	}
	if items[0].Boxes[0] == items[1].Boxes[0] {
		t.Errorf("Expected distinct box sets, both were %+v", items[0].Boxes[0])
	}
}

func TestPhonesAdjacentDuplicateNumbers(t *testing.T) {
	// Two identical numbers in adjacent tokens, nothing between them.
	// The candidate regex runs across the separator space, so the raw
	// candidate reads "555-123-4567 555"; both numbers must still come
	// out whole, each with its own box.
	doc := NewDocument([]ocr.Token{
		tok("555-123-4567", 0, 0),
		tok("555-123-4567", 130, 0),
	})

	items := Phones(doc)
	if len(items) != 2 {
		t.Fatalf("Expected 2 phones, got %d: %+v", len(items), items)
	}
	for _, it := range items {
		if it.Text != "555-123-4567" {
			t.Errorf("Expected '555-123-4567', got %q", it.Text)
		}
		if len(it.Boxes) != 1 {
			t.Errorf("Expected 1 box per number, got %d", len(it.Boxes))
		}
	}
	if items[0].Boxes[0] == items[1].Boxes[0] {
		t.Errorf("Expected distinct box sets, both were %+v", items[0].Boxes[0])
	}
}

func TestPhonesDeduplicatedAcrossRegionPasses(t *testing.T) {
	// A number recognized under several region hints at the same span
	// is one detection.
	doc := NewDocument([]ocr.Token{tok("555-123-4567", 0, 0)})

	items := Phones(doc)
	if len(items) != 1 {
		t.Fatalf("Expected 1 phone after de-duplication, got %d", len(items))
	}
}

func TestPhonesInternational(t *testing.T) {
	doc := NewDocument([]ocr.Token{
		tok("Office:", 0, 0),
		tok("+44", 70, 0),
		tok("20", 110, 0),
		tok("7946", 140, 0),
		tok("0958", 190, 0),
	})

	items := Phones(doc)
	if len(items) != 1 {
		t.Fatalf("Expected 1 phone, got %d: %+v", len(items), items)
	}
	if len(items[0].Boxes) != 4 {
		t.Errorf("Expected 4 contributing boxes, got %d", len(items[0].Boxes))
	}
}

func TestPhonesRejectShortFragments(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{name: "ip address", text: "192.168.1.1"},
		{name: "version number", text: "3.14.15"},
		{name: "short counter", text: "12-34"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := NewDocument([]ocr.Token{tok(tc.text, 0, 0)})
			if items := Phones(doc); len(items) != 0 {
				t.Errorf("Expected no phones in %q, got %d: %+v", tc.text, len(items), items)
			}
		})
	}
}

func TestPhonesEmpty(t *testing.T) {
	doc := NewDocument(nil)
	if items := Phones(doc); len(items) != 0 {
		t.Errorf("Expected no phones, got %d", len(items))
	}
}
