package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	textrank "github.com/DavidBelicza/TextRank/v2"

	"github.com/book-expert/bulletin-service/internal/chunk"
)

// Summary length tiers, in characters.
const (
	shortTextChars  = 1200
	mediumTextChars = 2500
	// minRankedChars is the shortest ranked summary kept; shorter ones fall back to lead sentences.
	minRankedChars = 120
)

const portugueseCode = "pt"

// ErrRankingFailed is returned when the ranking library cannot process a text.
var ErrRankingFailed = errors.New("sentence ranking failed")

var portugueseStopWords = []string{
	"a", "ao", "aos", "as", "à", "às", "com", "como", "da", "das", "de", "do", "dos",
	"e", "é", "ela", "ele", "em", "entre", "era", "foi", "há", "isso", "já", "lhe", "mais",
	"mas", "na", "nas", "no", "nos", "não", "num", "numa", "o", "os", "ou", "para", "pela",
	"pelas", "pelo", "pelos", "por", "que", "se", "sem", "ser", "seu", "sua", "são", "também",
	"tem", "um", "uma",
}

// TextRankSummarizer implements core.Summarizer by ranking sentences with TextRank and
// keeping the best ones in document order. Short or failed rankings use the leading
// sentences instead.
type TextRankSummarizer struct {
	minChars         int
	sentencesPerItem int
}

// NewTextRankSummarizer creates a summarizer. Texts shorter than minChars are returned as is.
func NewTextRankSummarizer(minChars, sentencesPerItem int) *TextRankSummarizer {
	return &TextRankSummarizer{minChars: minChars, sentencesPerItem: sentencesPerItem}
}

// Summarize implements core.Summarizer. Language "pt" enables Portuguese stop words;
// anything else ranks with the library's English list.
func (s *TextRankSummarizer) Summarize(_ context.Context, text, language string) (string, error) {
	text = Clean(text)

	length := utf8.RuneCountInString(text)
	if length < s.minChars {
		return text, nil
	}

	budget := s.sentenceBudget(length)

	summary, err := rankSentences(text, language, budget)
	if err != nil || utf8.RuneCountInString(summary) < minRankedChars {
		return LeadSentences(text, budget), nil
	}

	return summary, nil
}

func (s *TextRankSummarizer) sentenceBudget(length int) int {
	switch {
	case length < shortTextChars:
		return max(2, s.sentencesPerItem)
	case length < mediumTextChars:
		return max(3, s.sentencesPerItem+1)
	default:
		return max(4, s.sentencesPerItem+2)
	}
}

func rankSentences(text, language string, limit int) (summary string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrRankingFailed, recovered)
		}
	}()

	rankLanguage := textrank.NewDefaultLanguage()
	if language == portugueseCode {
		rankLanguage.SetWords(portugueseCode, portugueseStopWords)
		rankLanguage.SetActiveLanguage(portugueseCode)
	}

	ranker := textrank.NewTextRank()
	ranker.Populate(text, rankLanguage, textrank.NewDefaultRule())
	ranker.Ranking(textrank.NewDefaultAlgorithm())

	ranked := textrank.FindSentencesByRelationWeight(ranker, limit)
	if len(ranked) == 0 {
		return "", ErrRankingFailed
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ID < ranked[j].ID })

	parts := make([]string, 0, len(ranked))

	for _, sentence := range ranked {
		value := strings.TrimSpace(sentence.Value)
		if value == "" {
			continue
		}

		if !chunk.EndsSentence(value) {
			value += "."
		}

		parts = append(parts, value)
	}

	return strings.Join(parts, " "), nil
}

// LeadSentences returns the first n sentences of text, ending in terminal punctuation.
func LeadSentences(text string, n int) string {
	sentences := chunk.SplitSentences(Clean(text))
	if len(sentences) > n {
		sentences = sentences[:n]
	}

	lead := strings.Join(sentences, " ")
	if lead == "" || chunk.EndsSentence(lead) {
		return lead
	}

	return lead + "."
}
