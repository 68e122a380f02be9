package feed

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/ledger"
	"github.com/book-expert/logger"
)

const (
	// fullTextMinChars is the extracted length from which the page text alone is used.
	fullTextMinChars   = 300
	defaultLimit       = 8
	fallbackSentences  = 4
	summaryLanguagePT  = "pt"
	summaryLanguageEN  = "en"
	logFmtFeedFailed   = "Feed %s of %s failed, skipping: %v"
	logFmtExtractFail  = "Full text of %s unavailable: %v"
	logFmtSummaryFail  = "Summary of %s failed, using lead sentences: %v"
	logFmtTranslateErr = "Translation failed, keeping original text: %v"
	logFmtCollected    = "Collected %d new item(s) from %s"
)

// ErrCollectorIncomplete indicates a collector without a feed reader or summarizer.
var ErrCollectorIncomplete = errors.New("collector requires a feed reader and a summarizer")

// SeenChecker reports whether an item was delivered in an earlier run.
type SeenChecker interface {
	Has(id string) bool
}

// Collaborators groups the external services a Collector uses. Extractor, Translator
// and Seen are optional.
type Collaborators struct {
	Reader     core.FeedReader
	Extractor  core.Extractor
	Summarizer core.Summarizer
	Translator core.Translator
	Seen       SeenChecker
}

// Collector gathers new items for one source at a time.
type Collector struct {
	deps  Collaborators
	limit int
	log   *logger.Logger
}

// NewCollector creates a collector. A non-positive limit uses 8 items per source.
func NewCollector(deps Collaborators, limit int, log *logger.Logger) (*Collector, error) {
	if deps.Reader == nil || deps.Summarizer == nil {
		return nil, ErrCollectorIncomplete
	}

	if limit <= 0 {
		limit = defaultLimit
	}

	return &Collector{deps: deps, limit: limit, log: log}, nil
}

// Collect returns up to the source limit of unseen items, in feed order. A failing feed
// URL is skipped. Collection never marks items seen.
func (c *Collector) Collect(ctx context.Context, source core.Source) []core.Item {
	limit := c.limit
	if source.Limit > 0 {
		limit = source.Limit
	}

	var items []core.Item

	picked := make(map[string]struct{})

	for _, url := range source.URLs {
		if len(items) >= limit || ctx.Err() != nil {
			break
		}

		entries, err := c.deps.Reader.Fetch(ctx, url)
		if err != nil {
			c.log.Warn(logFmtFeedFailed, url, source.Name, err)

			continue
		}

		for _, entry := range entries {
			if len(items) >= limit {
				break
			}

			id := ledger.ItemID(entry.ID, entry.Link, entry.Title)
			if _, dup := picked[id]; dup || (c.deps.Seen != nil && c.deps.Seen.Has(id)) {
				continue
			}

			picked[id] = struct{}{}
			items = append(items, c.enrich(ctx, source, id, entry))
		}
	}

	c.log.Info(logFmtCollected, len(items), source.Name)

	return items
}

func (c *Collector) enrich(ctx context.Context, source core.Source, id string, entry core.Entry) core.Item {
	title := Clean(entry.Title)
	desc := Clean(entry.Summary)

	base := c.baseText(ctx, entry.Link, title, desc)

	summary, err := c.deps.Summarizer.Summarize(ctx, base, summaryLanguage(source.Language))
	if err != nil {
		c.log.Warn(logFmtSummaryFail, entry.Link, err)
		summary = LeadSentences(base, fallbackSentences)
	}

	return core.Item{
		ID:                id,
		Title:             title,
		Link:              entry.Link,
		Summary:           summary,
		TitleTranslated:   c.translate(ctx, title),
		SummaryTranslated: c.translate(ctx, summary),
		Source:            source.Name,
		Language:          source.Language,
	}
}

// baseText prefers the page text when it is long enough, otherwise joins it with the
// feed description, and falls back to "title. description".
func (c *Collector) baseText(ctx context.Context, link, title, desc string) string {
	fullText := ""

	if link != "" && c.deps.Extractor != nil {
		extracted, err := c.deps.Extractor.Extract(ctx, link)
		if err != nil {
			c.log.Warn(logFmtExtractFail, link, err)
		} else {
			fullText = Clean(extracted)
		}
	}

	if utf8.RuneCountInString(fullText) >= fullTextMinChars {
		return fullText
	}

	base := strings.TrimSpace(fullText + "\n" + desc)
	if base == "" {
		return title + ". " + desc
	}

	return base
}

func (c *Collector) translate(ctx context.Context, text string) string {
	if c.deps.Translator == nil || strings.TrimSpace(text) == "" {
		return text
	}

	translated, err := c.deps.Translator.Translate(ctx, text)
	if err != nil || strings.TrimSpace(translated) == "" {
		if err != nil {
			c.log.Warn(logFmtTranslateErr, err)
		}

		return text
	}

	return translated
}

func summaryLanguage(language string) string {
	if strings.HasPrefix(strings.ToLower(language), summaryLanguagePT) {
		return summaryLanguagePT
	}

	return summaryLanguageEN
}
