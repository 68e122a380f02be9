package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minPrimaryChars is the length below which the main-content text is compared with
	// the text of every paragraph on the page.
	minPrimaryChars = 200
	noiseSelectors  = "script, style, noscript, nav, header, footer, aside, form, iframe"
	mainSelectors   = "article, main, [role=main]"
)

// PageExtractor implements core.Extractor by reading the paragraphs of a web page.
type PageExtractor struct {
	client *http.Client
}

// NewPageExtractor creates an extractor. A nil client gets a default one.
func NewPageExtractor(client *http.Client) *PageExtractor {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &PageExtractor{client: client}
}

// Extract returns the readable text of the page at url. The article or main element is
// preferred; when it yields less than 200 characters the longer of it and the text of all
// paragraphs wins.
func (e *PageExtractor) Extract(ctx context.Context, url string) (string, error) {
	resp, err := get(ctx, e.client, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	return ExtractText(doc), nil
}

// ExtractText applies the extraction rules to a parsed document.
func ExtractText(doc *goquery.Document) string {
	doc.Find(noiseSelectors).Remove()

	primary := ""
	if content := doc.Find(mainSelectors).First(); content.Length() > 0 {
		primary = paragraphs(content)
		if primary == "" {
			primary = Clean(content.Text())
		}
	}

	if utf8.RuneCountInString(primary) >= minPrimaryChars {
		return primary
	}

	all := paragraphs(doc.Selection)
	if utf8.RuneCountInString(all) > utf8.RuneCountInString(primary) {
		return all
	}

	return primary
}

func paragraphs(selection *goquery.Selection) string {
	var parts []string

	selection.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := Clean(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, " ")
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return Clean(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Clean(fragment)
	}

	return Clean(doc.Text())
}

// Clean collapses runs of whitespace into single spaces.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
