// Package script composes the narration script of one bulletin.
package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/logger"
)

// Script phrases.
const (
	phraseOpeningFmt = "Boletim de notícias do %s, %s."
	phraseTransition = "Vamos aos destaques organizados por assunto."
	phraseSectionFmt = "Seção: %s."
	phraseHighlights = "Principais pontos:"
	phraseItemFmt    = "Notícia %d: %s."
	phraseSummaryFmt = "Resumo: %s"
	phraseSectionEnd = "Fechamos esta seção."
	phraseClosing    = "Esses foram os assuntos mais relevantes de hoje."
	phraseSignOff    = "Até a próxima edição."
	dateLayout       = "02/01/2006"
)

// Duration defaults.
const (
	DefaultTargetMinutes  = 6.0
	DefaultWordsPerMinute = 160
)

// Options configures a Composer.
type Options struct {
	TargetMinutes  float64
	WordsPerMinute int
	// Now returns the bulletin date. Defaults to time.Now.
	Now func() time.Time
}

// Composer builds word-budgeted scripts from topic groups.
type Composer struct {
	translator core.Translator
	now        func() time.Time
	maxWords   int
	log        *logger.Logger
}

// NewComposer creates a composer. A nil translator leaves the script as composed.
func NewComposer(translator core.Translator, opts Options, log *logger.Logger) *Composer {
	if opts.TargetMinutes <= 0 {
		opts.TargetMinutes = DefaultTargetMinutes
	}

	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = DefaultWordsPerMinute
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Composer{
		translator: translator,
		now:        opts.Now,
		maxWords:   int(opts.TargetMinutes * float64(opts.WordsPerMinute)),
		log:        log,
	}
}

// MaxWords returns the word ceiling.
func (c *Composer) MaxWords() int {
	return c.maxWords
}

// Compose assembles the script for a source. The result is passed through the translator
// once more and truncated to the word ceiling. Zero groups still yield the opening and
// closing lines.
func (c *Composer) Compose(ctx context.Context, source string, groups []core.TopicGroup) string {
	parts := []string{
		fmt.Sprintf(phraseOpeningFmt, source, c.now().Format(dateLayout)),
		phraseTransition,
		chunk.Marker,
	}

	for _, group := range groups {
		parts = append(parts, fmt.Sprintf(phraseSectionFmt, group.Topic), phraseHighlights)

		for i, item := range group.Items {
			parts = append(parts,
				fmt.Sprintf(phraseItemFmt, i+1, clean(firstNonEmpty(item.TitleTranslated, item.Title))),
				fmt.Sprintf(phraseSummaryFmt, clean(firstNonEmpty(item.SummaryTranslated, item.Summary))),
			)
		}

		parts = append(parts, phraseSectionEnd, chunk.Marker)
	}

	parts = append(parts, phraseClosing, phraseSignOff)
	script := strings.Join(parts, " ")

	if c.translator != nil {
		translated, err := c.translator.Translate(ctx, script)
		if err != nil {
			c.log.Warn("Script translation failed for %s, keeping original: %v", source, err)
		} else if strings.TrimSpace(translated) != "" {
			script = translated
		}
	}

	if WordCount(script) > c.maxWords {
		c.log.Info("Script for %s has %d words, truncating to %d", source, WordCount(script), c.maxWords)
		script = LimitWords(script, c.maxWords)
	}

	return script
}

// WordCount counts whitespace-separated words, not counting pause markers.
func WordCount(text string) int {
	count := 0

	for _, word := range strings.Fields(text) {
		if word != chunk.Marker {
			count++
		}
	}

	return count
}

// LimitWords keeps the text up to the last whole word at or before maxWords. Trailing
// markers and ",;" are stripped and "." is appended unless the text already ends a
// sentence. Text within the limit is only whitespace-normalized.
func LimitWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if WordCount(text) <= maxWords {
		return strings.Join(words, " ")
	}

	kept := make([]string, 0, maxWords)
	count := 0

	for _, word := range words {
		if count == maxWords {
			break
		}

		kept = append(kept, word)

		if word != chunk.Marker {
			count++
		}
	}

	for len(kept) > 0 && kept[len(kept)-1] == chunk.Marker {
		kept = kept[:len(kept)-1]
	}

	trimmed := strings.TrimRight(strings.Join(kept, " "), " ,;")
	if trimmed == "" || chunk.EndsSentence(trimmed) {
		return trimmed
	}

	return trimmed + "."
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}

	return ""
}
