// Package feed collects new items from news sources: feed parsing, full-text extraction,
// extractive summaries and translation into the narration language.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/mmcdole/gofeed"
)

const (
	userAgent      = "Mozilla/5.0 (compatible; bulletin-service/1.0)"
	defaultTimeout = 12 * time.Second
)

// ErrUnexpectedStatus is returned for a non-200 response.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Reader implements core.FeedReader for RSS, Atom and JSON feeds.
type Reader struct {
	client *http.Client
}

// NewReader creates a reader. A nil client gets a default one with a 12s timeout.
func NewReader(client *http.Client) *Reader {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Reader{client: client}
}

// Fetch downloads and parses one feed. Entry summaries are returned as plain text.
func (r *Reader) Fetch(ctx context.Context, url string) ([]core.Entry, error) {
	resp, err := get(ctx, r.client, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	entries := make([]core.Entry, 0, len(parsed.Items))

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		summary := item.Description
		if strings.TrimSpace(summary) == "" {
			summary = item.Content
		}

		entries = append(entries, core.Entry{
			ID:      item.GUID,
			Title:   Clean(StripHTML(item.Title)),
			Link:    strings.TrimSpace(item.Link),
			Summary: StripHTML(summary),
		})
	}

	return entries, nil
}

func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("%w: %s returned %s", ErrUnexpectedStatus, url, resp.Status)
	}

	return resp, nil
}
