package detect

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Region hints for the phone scan. The empty hint catches numbers in
// full international format; the country passes catch the same digits
// written in national conventions.
var phoneRegions = []string{"", "US", "GB", "CA", "AU"}

// A candidate needs at least this many digits before it is handed to
// the phone-number library. Shorter digit runs are fragments of IPs,
// dates or counters far more often than dialable numbers.
const minPhoneDigits = 7

// Phones finds phone numbers by scanning candidates once per region
// hint and validating each with the phonenumbers library. The
// candidate regex can run across the space between two adjacent
// numbers; a candidate the library rejects is therefore cut back to
// its longest valid space-bounded prefix and the scan resumes directly
// after whatever was accepted, so the swallowed remainder is still
// seen as its own candidate. Matches with identical text and identical
// span across passes are de-duplicated; identical text at different
// spans stays separate, because the boxes differ.
func Phones(d *Document) []Item {
	type matchKey struct {
		text       string
		start, end int
	}
	seen := make(map[matchKey]bool)

	var items []Item
	for _, region := range phoneRegions {
		pos := 0
		for pos < len(d.Text) {
			loc := phoneCandidatePattern.FindStringIndex(d.Text[pos:])
			if loc == nil {
				break
			}
			start, end := pos+loc[0], pos+loc[1]

			text, ok := validPrefix(d.Text[start:end], region)
			if !ok {
				// Drop the candidate's first space-joined group and
				// rescan, so a rejected lead-in cannot hide a number
				// that starts inside the candidate.
				if i := strings.IndexByte(d.Text[start:end], ' '); i >= 0 {
					pos = start + i + 1
				} else {
					pos = end
				}
				continue
			}
			end = start + len(text)
			pos = end

			key := matchKey{text: text, start: start, end: end}
			if seen[key] {
				continue
			}
			seen[key] = true

			boxes := d.boxesForSpan(start, end)
			if len(boxes) == 0 {
				continue
			}
			items = append(items, Item{
				Type:  PiiPhone,
				Text:  text,
				Boxes: boxes,
				start: start,
				end:   end,
			})
		}
	}
	return items
}

// validPrefix returns the longest prefix of raw, shortened only at
// space boundaries, that the phone library accepts under the region
// hint. Unparseable prefixes are treated as no match from this pass.
func validPrefix(raw, region string) (string, bool) {
	for {
		if digitCount(raw) >= minPhoneDigits {
			num, err := phonenumbers.Parse(raw, region)
			if err == nil && (phonenumbers.IsValidNumber(num) || phonenumbers.IsPossibleNumber(num)) {
				return raw, true
			}
		}
		i := strings.LastIndexByte(raw, ' ')
		if i < 0 {
			return "", false
		}
		raw = raw[:i]
	}
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
