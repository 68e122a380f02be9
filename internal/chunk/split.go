// Package chunk partitions narration scripts into size-bounded pieces.
//
// Splitting works on whitespace-normalized text so that joining the units of a
// level with that level's separator restores the text exactly.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// Marker is the in-script token separating sections. It is rendered as a long pause.
const Marker = "¦"

const (
	sectionSeparator  = " " + Marker + " "
	sentenceSeparator = " "
	wordSeparator     = " "
)

// Normalize collapses every run of whitespace into a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SplitSections splits text on the long-pause marker, dropping empty sections.
func SplitSections(text string) []string {
	parts := strings.Split(text, Marker)
	sections := make([]string, 0, len(parts))

	for _, part := range parts {
		section := Normalize(part)
		if section != "" {
			sections = append(sections, section)
		}
	}

	return sections
}

// SplitSentences splits text after terminal punctuation followed by whitespace.
func SplitSentences(text string) []string {
	words := strings.Fields(text)

	var (
		sentences []string
		current   []string
	)

	for _, word := range words {
		current = append(current, word)

		if EndsSentence(word) {
			sentences = append(sentences, strings.Join(current, " "))
			current = current[:0]
		}
	}

	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}

	return sentences
}

// SplitWords splits text on whitespace.
func SplitWords(text string) []string {
	return strings.Fields(text)
}

// EndsSentence reports whether s ends with '.', '!' or '?'.
func EndsSentence(s string) bool {
	last, _ := utf8.DecodeLastRuneInString(s)

	switch last {
	case '.', '!', '?':
		return true
	default:
		return false
	}
}

// NormalizeScript returns the canonical form of a script as the chunker sees it:
// sections normalized and rejoined with the marker.
func NormalizeScript(text string) string {
	return strings.Join(SplitSections(text), sectionSeparator)
}
