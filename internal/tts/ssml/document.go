// Package ssml builds speech-synthesis markup payloads from narration text.
//
// Text is first parsed into a Document: sentences made of runs, each run either plain
// or tagged with a foreign language. Escaping and envelope wrapping operate per run,
// so pronunciation tags are never produced by string substitution on escaped text.
package ssml

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/book-expert/bulletin-service/internal/chunk"
)

// Pause lengths.
const (
	ShortPause = 220 * time.Millisecond
	LongPause  = 320 * time.Millisecond
	// SectionPause is rendered where the script carries the long-pause marker.
	SectionPause = 700 * time.Millisecond
	// longSentenceChars is the escaped length from which a sentence gets the longer pause.
	longSentenceChars = 140
)

// Run is a span of text sharing one attribute set. Lang is empty for narration-language text.
type Run struct {
	Text string
	Lang string
}

// Sentence is an ordered list of runs followed by a pause.
type Sentence struct {
	Runs  []Run
	Pause time.Duration
}

// Document is the structured form of one payload body.
type Document struct {
	Sentences []Sentence
}

// Empty reports whether the document has nothing to speak.
func (d Document) Empty() bool {
	return len(d.Sentences) == 0
}

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces the reserved markup characters of text content.
func Escape(s string) string {
	return markupEscaper.Replace(s)
}

// nameMatcher finds whole-word, case-sensitive occurrences of known foreign names.
type nameMatcher struct {
	pattern *regexp.Regexp
	lang    string
}

func newNameMatcher(names []string, lang string) *nameMatcher {
	unique := make(map[string]struct{}, len(names))
	sorted := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		if _, seen := unique[name]; seen {
			continue
		}

		unique[name] = struct{}{}
		sorted = append(sorted, name)
	}

	if len(sorted) == 0 || lang == "" {
		return &nameMatcher{pattern: nil, lang: lang}
	}

	// Longest first: leftmost-first alternation then prefers "New York Times" over "New York".
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}

		return sorted[i] < sorted[j]
	})

	quoted := make([]string, len(sorted))
	for i, name := range sorted {
		quoted[i] = regexp.QuoteMeta(name)
	}

	return &nameMatcher{pattern: regexp.MustCompile(strings.Join(quoted, "|")), lang: lang}
}

// runs splits a sentence into plain and foreign runs.
func (m *nameMatcher) runs(sentence string) []Run {
	if m == nil || m.pattern == nil {
		return []Run{{Text: sentence, Lang: ""}}
	}

	var (
		runs []Run
		last int
	)

	for _, loc := range m.pattern.FindAllStringIndex(sentence, -1) {
		start, end := loc[0], loc[1]
		if !wordBoundary(sentence, start, end) {
			continue
		}

		if start > last {
			runs = append(runs, Run{Text: sentence[last:start], Lang: ""})
		}

		runs = append(runs, Run{Text: sentence[start:end], Lang: m.lang})
		last = end
	}

	if last < len(sentence) {
		runs = append(runs, Run{Text: sentence[last:], Lang: ""})
	}

	return runs
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(before) {
			return false
		}
	}

	if end < len(s) {
		after, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(after) {
			return false
		}
	}

	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parse turns sanitized text into a document. Section markers become section pauses on
// the last sentence of each section except the final one.
func parse(sanitized string, matcher *nameMatcher) Document {
	sections := chunk.SplitSections(sanitized)

	var doc Document

	for i, section := range sections {
		sentences := chunk.SplitSentences(section)

		for j, sentence := range sentences {
			pause := ShortPause
			if utf8.RuneCountInString(Escape(sentence)) >= longSentenceChars {
				pause = LongPause
			}

			if j == len(sentences)-1 && i < len(sections)-1 {
				pause = SectionPause
			}

			doc.Sentences = append(doc.Sentences, Sentence{Runs: matcher.runs(sentence), Pause: pause})
		}
	}

	return doc
}
