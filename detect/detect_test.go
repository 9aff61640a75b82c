package detect

import (
	"testing"

	"github.com/screensanctum/screensanctum/ocr"
)

func tok(text string, x, y int) ocr.Token {
	return ocr.Token{Text: text, X: x, Y: y, W: 10 * len(text), H: 12, Conf: 99}
}

func itemsOfType(items []Item, t PiiType) []Item {
	var out []Item
	for _, it := range items {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

func TestEmails(t *testing.T) {
	doc := NewDocument([]ocr.Token{
		tok("Email:", 0, 0),
		tok("bob@example.com", 80, 0),
	})

	items := Emails(doc, nil, nil)
	if len(items) != 1 {
		t.Fatalf("Expected 1 email, got %d", len(items))
	}
	if items[0].Text != "bob@example.com" {
		t.Errorf("Expected 'bob@example.com', got %q", items[0].Text)
	}
	if len(items[0].Boxes) != 1 {
		t.Fatalf("Expected 1 contributing box, got %d", len(items[0].Boxes))
	}
	if items[0].Boxes[0].X != 80 {
		t.Errorf("Expected box from the email token, got %+v", items[0].Boxes[0])
	}
}

func TestCustomRuleSpansTokens(t *testing.T) {
	// A match spanning the separator between tokens collects every
	// contributing token box, in token order, with the separator
	// itself contributing nothing.
	doc := NewDocument([]ocr.Token{
		tok("key", 0, 0),
		tok("material", 40, 0),
	})

	items := Custom(doc, []Rule{{Name: "phrase", Pattern: `key\smaterial`}})
	if len(items) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(items))
	}
	if len(items[0].Boxes) != 2 {
		t.Fatalf("Expected 2 contributing boxes, got %d", len(items[0].Boxes))
	}
	if items[0].Boxes[0].X != 0 || items[0].Boxes[1].X != 40 {
		t.Errorf("Expected boxes in token order, got %+v", items[0].Boxes)
	}
}

func TestEmailsIgnoreLists(t *testing.T) {
	testCases := []struct {
		name          string
		ignoreEmails  []string
		ignoreDomains []string
		want          int
	}{
		{name: "no ignore", want: 1},
		{name: "exact email ignored", ignoreEmails: []string{"bob@example.com"}, want: 0},
		{name: "domain ignored", ignoreDomains: []string{"example.com"}, want: 0},
		{name: "other email ignored", ignoreEmails: []string{"alice@example.com"}, want: 1},
		{name: "other domain ignored", ignoreDomains: []string{"other.com"}, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := NewDocument([]ocr.Token{tok("bob@example.com", 0, 0)})
			items := Emails(doc, tc.ignoreEmails, tc.ignoreDomains)
			if len(items) != tc.want {
				t.Errorf("Expected %d emails, got %d", tc.want, len(items))
			}
		})
	}
}

func TestIPs(t *testing.T) {
	doc := NewDocument([]ocr.Token{
		tok("Server", 0, 0),
		tok("IP:", 70, 0),
		tok("192.168.1.1", 110, 0),
	})

	items := IPs(doc)
	if len(items) != 1 {
		t.Fatalf("Expected 1 IP, got %d", len(items))
	}
	if items[0].Text != "192.168.1.1" {
		t.Errorf("Expected '192.168.1.1', got %q", items[0].Text)
	}
}

func TestIPsOctetBound(t *testing.T) {
	// 256 is not a valid octet; the whole match must be rejected, not
	// truncated into a shorter accidental match.
	doc := NewDocument([]ocr.Token{tok("192.168.1.256", 0, 0)})
	if items := IPs(doc); len(items) != 0 {
		t.Errorf("Expected 0 IPs for invalid octet, got %d: %+v", len(items), items)
	}

	doc = NewDocument([]ocr.Token{tok("255.255.255.255", 0, 0)})
	if items := IPs(doc); len(items) != 1 {
		t.Errorf("Expected 1 IP for 255.255.255.255, got %d", len(items))
	}
}

func TestURLs(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		wantCount int
		wantQuery bool
	}{
		{name: "https with query", text: "https://example.com?key=secret", wantCount: 1, wantQuery: true},
		{name: "https plain", text: "https://example.com/path", wantCount: 1, wantQuery: false},
		{name: "http", text: "http://example.com", wantCount: 1, wantQuery: false},
		{name: "www prefix", text: "www.example.com", wantCount: 1, wantQuery: false},
		{name: "uppercase scheme", text: "HTTPS://EXAMPLE.COM", wantCount: 1, wantQuery: false},
		{name: "www inside a word", text: "awww.example.com", wantCount: 0},
		{name: "no url", text: "plain text", wantCount: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := NewDocument([]ocr.Token{tok("Visit:", 0, 0), tok(tc.text, 70, 0)})
			items := URLs(doc)
			if len(items) != tc.wantCount {
				t.Fatalf("Expected %d URLs, got %d", tc.wantCount, len(items))
			}
			if tc.wantCount == 1 && items[0].HasQueryParams != tc.wantQuery {
				t.Errorf("Expected HasQueryParams=%v for %q", tc.wantQuery, tc.text)
			}
		})
	}
}

func TestDomains(t *testing.T) {
	doc := NewDocument([]ocr.Token{
		tok("Domain:", 0, 0),
		tok("example.com", 80, 0),
	})

	items := Domains(doc, nil, nil)
	if len(items) != 1 {
		t.Fatalf("Expected 1 domain, got %d", len(items))
	}
	if items[0].Text != "example.com" {
		t.Errorf("Expected 'example.com', got %q", items[0].Text)
	}
}

func TestDomainsExcludedByEmailOverlap(t *testing.T) {
	doc := NewDocument([]ocr.Token{tok("bob@example.com", 0, 0)})

	emails := Emails(doc, nil, nil)
	if len(emails) != 1 {
		t.Fatalf("Expected 1 email, got %d", len(emails))
	}

	// The domain portion of the email overlaps the email span and must
	// not surface as a standalone domain.
	if items := Domains(doc, nil, emails); len(items) != 0 {
		t.Errorf("Expected 0 domains, got %d: %+v", len(items), items)
	}
}

func TestDomainsExactSpanExclusion(t *testing.T) {
	// The same domain text occurring elsewhere in the document is a
	// separate match with its own span; only the occurrence inside the
	// email is excluded.
	doc := NewDocument([]ocr.Token{
		tok("bob@example.com", 0, 0),
		tok("example.com", 0, 20),
	})

	emails := Emails(doc, nil, nil)
	items := Domains(doc, nil, emails)
	if len(items) != 1 {
		t.Fatalf("Expected 1 standalone domain, got %d", len(items))
	}
	if items[0].Boxes[0].Y != 20 {
		t.Errorf("Expected the standalone occurrence, got box %+v", items[0].Boxes[0])
	}
}

func TestDomainsExcludedByURLOverlap(t *testing.T) {
	doc := NewDocument([]ocr.Token{tok("https://example.com/login", 0, 0)})

	urls := URLs(doc)
	if len(urls) != 1 {
		t.Fatalf("Expected 1 URL, got %d", len(urls))
	}
	if items := Domains(doc, nil, urls); len(items) != 0 {
		t.Errorf("Expected 0 domains inside URL, got %d", len(items))
	}
}

func TestDomainsIgnoreList(t *testing.T) {
	doc := NewDocument([]ocr.Token{tok("internal.corp.net", 0, 0)})
	if items := Domains(doc, []string{"internal.corp.net"}, nil); len(items) != 0 {
		t.Errorf("Expected ignored domain to be skipped, got %d items", len(items))
	}
}

func TestCustomRules(t *testing.T) {
	doc := NewDocument([]ocr.Token{
		tok("Order", 0, 0),
		tok("ORD-12345", 60, 0),
	})

	items := Custom(doc, []Rule{{Name: "order-id", Pattern: `ORD-\d+`}})
	if len(items) != 1 {
		t.Fatalf("Expected 1 custom match, got %d", len(items))
	}
	// The item carries the rule name, not the matched substring.
	if items[0].Text != "order-id" {
		t.Errorf("Expected rule name 'order-id', got %q", items[0].Text)
	}
	if items[0].Type != PiiCustom {
		t.Errorf("Expected type %q, got %q", PiiCustom, items[0].Type)
	}
}

func TestCustomRulesInvalidPatternSkipped(t *testing.T) {
	doc := NewDocument([]ocr.Token{tok("ORD-12345", 0, 0)})

	// The broken rule is skipped; the valid one still runs.
	items := Custom(doc, []Rule{
		{Name: "broken", Pattern: `[unclosed`},
		{Name: "order-id", Pattern: `ORD-\d+`},
	})
	if len(items) != 1 {
		t.Fatalf("Expected 1 custom match, got %d", len(items))
	}
	if items[0].Text != "order-id" {
		t.Errorf("Expected 'order-id', got %q", items[0].Text)
	}
}

func TestScanMixed(t *testing.T) {
	tokens := []ocr.Token{
		tok("Contact:", 0, 0),
		tok("admin@server.com", 90, 0),
		tok("IP:", 0, 20),
		tok("10.0.0.1", 40, 20),
		tok("Phone:", 0, 40),
		tok("555-123-4567", 70, 40),
	}

	items := Scan(tokens, EnableAll())

	if n := len(itemsOfType(items, PiiEmail)); n != 1 {
		t.Errorf("Expected 1 email, got %d", n)
	}
	if n := len(itemsOfType(items, PiiIP)); n != 1 {
		t.Errorf("Expected 1 IP, got %d", n)
	}
	if n := len(itemsOfType(items, PiiPhone)); n != 1 {
		t.Errorf("Expected 1 phone, got %d", n)
	}
	// server.com lives inside the email match and must not appear.
	if n := len(itemsOfType(items, PiiDomain)); n != 0 {
		t.Errorf("Expected 0 standalone domains, got %d", n)
	}
}

func TestScanDetectorGating(t *testing.T) {
	tokens := []ocr.Token{tok("bob@example.com", 0, 0), tok("192.168.1.1", 0, 20)}

	items := Scan(tokens, Config{IPs: true})
	if len(items) != 1 {
		t.Fatalf("Expected only the IP detector to run, got %d items", len(items))
	}
	if items[0].Type != PiiIP {
		t.Errorf("Expected IP item, got %q", items[0].Type)
	}
}

func TestScanEmptyInput(t *testing.T) {
	if items := Scan(nil, EnableAll()); len(items) != 0 {
		t.Errorf("Expected no items for empty token list, got %d", len(items))
	}
	if items := Scan([]ocr.Token{}, EnableAll()); len(items) != 0 {
		t.Errorf("Expected no items for empty token slice, got %d", len(items))
	}
}

func TestScanNoPii(t *testing.T) {
	tokens := []ocr.Token{tok("Hello", 0, 0), tok("world", 60, 0)}
	if items := Scan(tokens, EnableAll()); len(items) != 0 {
		t.Errorf("Expected no items, got %d: %+v", len(items), items)
	}
}
