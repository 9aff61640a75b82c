package detect

import (
	"strings"

	"github.com/screensanctum/screensanctum/ocr"
)

// Config carries the per-invocation detection inputs owned by the
// caller's template: literal ignore lists, custom rules and the
// detector enable flags. The zero value runs nothing; use
// EnableAll for the permissive default.
type Config struct {
	IgnoreEmails  []string
	IgnoreDomains []string
	Rules         []Rule

	Emails  bool
	IPs     bool
	URLs    bool
	Domains bool
	Phones  bool
}

// EnableAll returns a Config with every built-in detector switched on
// and empty ignore lists.
func EnableAll() Config {
	return Config{Emails: true, IPs: true, URLs: true, Domains: true, Phones: true}
}

// Scan runs the enabled detectors over the token sequence and returns
// the concatenated results in canonical order: email, IP, URL, domain,
// phone, custom. The domain detector is sequenced after email, IP and
// URL because it excludes matches overlapping their spans.
func Scan(tokens []ocr.Token, cfg Config) []Item {
	if len(tokens) == 0 {
		return nil
	}
	doc := NewDocument(tokens)

	var emails, ips, urls []Item
	if cfg.Emails {
		emails = Emails(doc, cfg.IgnoreEmails, cfg.IgnoreDomains)
	}
	if cfg.IPs {
		ips = IPs(doc)
	}
	if cfg.URLs {
		urls = URLs(doc)
	}

	var items []Item
	items = append(items, emails...)
	items = append(items, ips...)
	items = append(items, urls...)

	if cfg.Domains {
		exclude := make([]Item, 0, len(emails)+len(ips)+len(urls))
		exclude = append(exclude, emails...)
		exclude = append(exclude, ips...)
		exclude = append(exclude, urls...)
		items = append(items, Domains(doc, cfg.IgnoreDomains, exclude)...)
	}
	if cfg.Phones {
		items = append(items, Phones(doc)...)
	}
	items = append(items, Custom(doc, cfg.Rules)...)

	return items
}

// Emails finds email addresses in the document. A match is skipped
// entirely when the full matched string appears verbatim in
// ignoreEmails, or when its domain part appears verbatim in
// ignoreDomains, or when its span resolves to zero tokens.
func Emails(d *Document, ignoreEmails, ignoreDomains []string) []Item {
	var items []Item
	for _, m := range emailPattern.FindAllStringIndex(d.Text, -1) {
		matched := d.Text[m[0]:m[1]]
		if containsString(ignoreEmails, matched) {
			continue
		}
		if at := strings.LastIndex(matched, "@"); at >= 0 {
			if containsString(ignoreDomains, matched[at+1:]) {
				continue
			}
		}
		boxes := d.boxesForSpan(m[0], m[1])
		if len(boxes) == 0 {
			continue
		}
		items = append(items, Item{
			Type:  PiiEmail,
			Text:  matched,
			Boxes: boxes,
			start: m[0],
			end:   m[1],
		})
	}
	return items
}

// IPs finds IPv4 addresses with valid octets. No ignore list applies.
func IPs(d *Document) []Item {
	var items []Item
	for _, m := range ipPattern.FindAllStringIndex(d.Text, -1) {
		boxes := d.boxesForSpan(m[0], m[1])
		if len(boxes) == 0 {
			continue
		}
		items = append(items, Item{
			Type:  PiiIP,
			Text:  d.Text[m[0]:m[1]],
			Boxes: boxes,
			start: m[0],
			end:   m[1],
		})
	}
	return items
}

// URLs finds http/https/www URLs. HasQueryParams is set when the match
// contains a literal '?'. Ignore lists never apply to URLs.
func URLs(d *Document) []Item {
	var items []Item
	for _, m := range urlPattern.FindAllStringIndex(d.Text, -1) {
		matched := d.Text[m[0]:m[1]]
		boxes := d.boxesForSpan(m[0], m[1])
		if len(boxes) == 0 {
			continue
		}
		items = append(items, Item{
			Type:           PiiURL,
			Text:           matched,
			Boxes:          boxes,
			HasQueryParams: strings.Contains(matched, "?"),
			start:          m[0],
			end:            m[1],
		})
	}
	return items
}

// Domains finds standalone hostnames. A match is excluded when its
// span overlaps, even partially, the span of any item in exclude, so
// the domain portion of an email or URL does not surface as a separate
// detection. Overlap is computed on the match's own span only, not on
// other occurrences of the same text elsewhere in the document.
func Domains(d *Document, ignoreDomains []string, exclude []Item) []Item {
	var items []Item
	for _, m := range domainPattern.FindAllStringIndex(d.Text, -1) {
		if overlapsAny(m[0], m[1], exclude) {
			continue
		}
		matched := d.Text[m[0]:m[1]]
		if containsString(ignoreDomains, matched) {
			continue
		}
		boxes := d.boxesForSpan(m[0], m[1])
		if len(boxes) == 0 {
			continue
		}
		items = append(items, Item{
			Type:  PiiDomain,
			Text:  matched,
			Boxes: boxes,
			start: m[0],
			end:   m[1],
		})
	}
	return items
}

// overlapsAny reports whether the half-open span [start, end)
// intersects the span of any item.
func overlapsAny(start, end int, items []Item) bool {
	for _, it := range items {
		if start < it.end && it.start < end {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
