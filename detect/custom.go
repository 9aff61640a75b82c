package detect

import (
	"log"
	"regexp"
)

// Rule is a caller-supplied named pattern scanned alongside the
// built-in detectors.
type Rule struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// Custom scans each rule's regex over the assembled text. A rule whose
// pattern does not compile is logged and skipped; it never aborts the
// remaining rules or the detection pass. The emitted item carries the
// rule's name as its text.
func Custom(d *Document, rules []Rule) []Item {
	var items []Item
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			log.Printf("Skipping custom rule %q: invalid pattern: %v", rule.Name, err)
			continue
		}
		for _, m := range re.FindAllStringIndex(d.Text, -1) {
			boxes := d.boxesForSpan(m[0], m[1])
			if len(boxes) == 0 {
				continue
			}
			items = append(items, Item{
				Type:  PiiCustom,
				Text:  rule.Name,
				Boxes: boxes,
				start: m[0],
				end:   m[1],
			})
		}
	}
	return items
}
