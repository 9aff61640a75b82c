package detect

import "regexp"

// Compiled once at process start; detectors receive no other pattern
// state, so they are freely reentrant.
var (
	// Conventional email grammar: local part, @, dotted labels, and a
	// final TLD of at least two letters.
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Four dot-separated octets, each constrained to 0-255. The octet
	// bound is load-bearing: "192.168.1.256" must not match.
	ipPattern = regexp.MustCompile(`\b(?:25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])(?:\.(?:25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])){3}\b`)

	// Scheme or www. prefix followed by a run of URL-safe characters.
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"')]+`)

	// Hostname-like pattern: alphanumeric/hyphen labels of at most 63
	// characters with no leading or trailing hyphen, ending in an
	// alphabetic label of at least two characters.
	domainPattern = regexp.MustCompile(`\b(?:[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,63}\b`)

	// Phone candidates: optional country code, optional parenthesized
	// group, then digit groups joined by spaces, dots or hyphens. The
	// candidate is deliberately loose; the phonenumbers library does
	// the real validation per region hint.
	phoneCandidatePattern = regexp.MustCompile(`(?:\+\d{1,3}[ .-]?)?(?:\(\d{1,4}\)[ .-]?)?\d{2,4}(?:[ .-]?\d{2,4}){1,3}`)
)
