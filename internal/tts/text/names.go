package text

import (
	"sort"
	"strings"
	"unicode"
)

const minNameLength = 3

// englishStopWords break a run of capitalized words into separate names.
var englishStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "of": {}, "on": {}, "at": {}, "in": {}, "to": {},
	"for": {}, "with": {}, "by": {}, "from": {}, "is": {}, "are": {}, "be": {}, "was": {},
	"were": {}, "as": {}, "not": {}, "but": {}, "or": {}, "new": {}, "old": {}, "over": {},
	"after": {}, "before": {}, "more": {}, "less": {},
}

// ExtractEnglishNames collects runs of adjacent Title Case ASCII words from English titles
// ("Joe Biden", "United States", "Apple"). Sources in other languages yield nothing.
// The result is sorted longest first so that callers can match greedily.
func ExtractEnglishNames(titles []string, language string) []string {
	if !strings.HasPrefix(strings.ToLower(language), "en") {
		return nil
	}

	found := make(map[string]struct{})

	for _, title := range titles {
		var group []string

		closeGroup := func() {
			if len(group) > 0 {
				found[strings.Join(group, " ")] = struct{}{}
				group = nil
			}
		}

		for _, raw := range strings.Fields(title) {
			word := strings.TrimLeft(raw, `"'(“‘`)
			trimmed := strings.TrimRight(word, `.,;:!?"')”’`)

			if !isTitleCaseWord(trimmed) {
				closeGroup()

				continue
			}

			if _, stop := englishStopWords[strings.ToLower(trimmed)]; stop {
				closeGroup()

				continue
			}

			group = append(group, trimmed)

			// Trailing punctuation ends the name.
			if trimmed != word {
				closeGroup()
			}
		}

		closeGroup()
	}

	names := make([]string, 0, len(found))

	for name := range found {
		if len(name) >= minNameLength {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}

		return names[i] < names[j]
	})

	return names
}

// isTitleCaseWord matches [A-Z][a-zA-Z-]+.
func isTitleCaseWord(word string) bool {
	if len(word) < 2 {
		return false
	}

	for i, r := range word {
		if r > unicode.MaxASCII {
			return false
		}

		if i == 0 {
			if r < 'A' || r > 'Z' {
				return false
			}

			continue
		}

		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}

	return true
}
