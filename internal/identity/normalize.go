// Package identity canonicalizes names and identifiers from OpenAlex payloads
// and builds the identity keys used to deduplicate authors and institutions.
package identity

import (
	"regexp"
	"strings"
	"unicode"
)

// orcidPattern matches an ORCID iD (four groups, last digit may be the X checksum).
var orcidPattern = regexp.MustCompile(`\d{4}-\d{4}-\d{4}-\d{3}[0-9X]`)

// NormalizeName lowercases a display name, removes punctuation and collapses whitespace.
// Letters, numbers (including sub- and superscripts), underscores, hyphens and
// whitespace are kept. Combining marks are dropped, so decomposed accents vanish
// while precomposed letters survive.
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}

	stripped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			return r
		case r == '_', r == '-', unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, raw)

	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// ExtractORCID returns the ORCID iD embedded in a URL-like string, or "" if none.
//
// Accepts both "https://orcid.org/0000-0002-1825-0097" and the bare iD.
func ExtractORCID(raw string) string {
	if raw == "" {
		return ""
	}
	return orcidPattern.FindString(raw)
}

// WorkID returns the last path segment of a URL or bare identifier.
// "https://openalex.org/W2741809807" and "W2741809807" both yield "W2741809807".
func WorkID(raw string) string {
	if raw == "" {
		return ""
	}
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	return strings.TrimSpace(raw)
}
