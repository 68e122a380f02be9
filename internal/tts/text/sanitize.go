// Package text provides the backend-agnostic text cleanup applied before markup is built.
//
// Sanitization removes everything a speech engine would read out literally or choke on:
// links, control characters and stray reserved symbols. The long-pause marker is preserved.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Regex patterns for text sanitization.
const (
	urlRegexPattern        = `(?i)https?://\S+|www\.\S+`
	whitespaceRegexPattern = `\s+`
)

// Defaults for the spoken replacements.
const (
	DefaultLinkPlaceholder = "(link na descrição)"
	DefaultAmpersandWord   = "e"
)

// Punctuation and formatting constants.
const (
	emDash       = "—"
	enDash       = "–"
	figureDash   = "‒"
	ellipsis     = "..."
	ellipsisChar = "…"
)

// Sanitizer cleans raw narration text.
type Sanitizer struct {
	// Precompiled regex patterns for performance.
	urlPattern        *regexp.Regexp
	whitespacePattern *regexp.Regexp
	// Efficient replacer for typographic punctuation.
	punctuationReplacer *strings.Replacer
	linkPlaceholder     string
	ampersandWord       string
}

// NewSanitizer creates a sanitizer with the given spoken replacements.
// Empty arguments fall back to the Portuguese defaults.
func NewSanitizer(linkPlaceholder, ampersandWord string) *Sanitizer {
	if linkPlaceholder == "" {
		linkPlaceholder = DefaultLinkPlaceholder
	}

	if ampersandWord == "" {
		ampersandWord = DefaultAmpersandWord
	}

	return &Sanitizer{
		urlPattern:        regexp.MustCompile(urlRegexPattern),
		whitespacePattern: regexp.MustCompile(whitespaceRegexPattern),
		punctuationReplacer: strings.NewReplacer(
			emDash, "-",
			enDash, "-",
			figureDash, "-",
			ellipsisChar, ellipsis,
			"“", `"`, "”", `"`,
			"‘", "'", "’", "'",
		),
		linkPlaceholder: linkPlaceholder,
		ampersandWord:   ampersandWord,
	}
}

// Sanitize runs the full cleanup pipeline. The result is NFC-normalized and
// whitespace-collapsed.
func (s *Sanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	cleaned := norm.NFC.String(text)
	cleaned = s.replaceURLs(cleaned)
	cleaned = stripControl(cleaned)
	cleaned = s.neutralizeAmpersands(cleaned)
	cleaned = s.punctuationReplacer.Replace(cleaned)

	return s.normalizeWhitespace(cleaned)
}

// replaceURLs swaps links for a neutral spoken placeholder.
func (s *Sanitizer) replaceURLs(text string) string {
	return s.urlPattern.ReplaceAllLiteralString(text, " "+s.linkPlaceholder+" ")
}

// stripControl replaces control characters and XML noncharacters with spaces. Tab, newline
// and carriage return survive and are collapsed later.
func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case unicode.IsControl(r), r == 0xFFFE, r == 0xFFFF:
			return ' '
		default:
			return r
		}
	}, text)
}

// neutralizeAmpersands speaks an isolated '&' as a word. An ampersand touching a word
// character ("AT&T", "&amp") is left for the escaper.
func (s *Sanitizer) neutralizeAmpersands(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}

	runes := []rune(text)

	var builder strings.Builder

	for i, r := range runes {
		if r != '&' {
			builder.WriteRune(r)

			continue
		}

		before := i > 0 && isWordRune(runes[i-1])
		after := i < len(runes)-1 && isWordRune(runes[i+1])

		if before || after {
			builder.WriteRune(r)

			continue
		}

		builder.WriteString(" " + s.ampersandWord + " ")
	}

	return builder.String()
}

// normalizeWhitespace collapses whitespace runs to single spaces.
func (s *Sanitizer) normalizeWhitespace(text string) string {
	text = s.whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
