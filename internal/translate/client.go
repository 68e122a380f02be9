// Package translate turns news text into the narration language over a
// LibreTranslate-compatible HTTP API.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/go-resty/resty/v2"
)

const (
	apiTranslate    = "/translate"
	sourceAuto      = "auto"
	formatText      = "text"
	defaultTarget   = "pt"
	defaultMaxChars = 5000
	retryCount      = 2
	retryWait       = 200 * time.Millisecond
	retryMaxWait    = 2 * time.Second
)

// Static errors.
var (
	ErrEmptyURL         = errors.New("translation service URL cannot be empty")
	ErrServiceFailed    = errors.New("translation service failed")
	ErrEmptyTranslation = errors.New("translation service returned empty text")
)

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	// Target is the narration language, e.g. "pt".
	Target  string
	Timeout time.Duration
	// MaxChars bounds one request; longer texts are split at section, sentence and word
	// boundaries and translated piece by piece.
	MaxChars int
}

// Client implements core.Translator.
type Client struct {
	http     *resty.Client
	apiKey   string
	target   string
	maxChars int
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a translation client.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyURL
	}

	if opts.Target == "" {
		opts.Target = defaultTarget
	}

	if opts.MaxChars <= 0 {
		opts.MaxChars = defaultMaxChars
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryMaxWait)

	client.AddRetryCondition(retryCondition)

	return &Client{http: client, apiKey: opts.APIKey, target: opts.Target, maxChars: opts.MaxChars}, nil
}

// retryCondition retries network errors and server-side failures.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

// Translate implements core.Translator. Blank text is returned unchanged.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	if utf8.RuneCountInString(text) <= c.maxChars {
		return c.translateOne(ctx, text)
	}

	pieces := chunk.Pack(text, c.maxChars, utf8.RuneCountInString,
		chunk.SectionLevel, chunk.SentenceLevel, chunk.WordLevel)

	for i := range pieces {
		translated, err := c.translateOne(ctx, pieces[i].Text)
		if err != nil {
			return "", fmt.Errorf("piece %d/%d: %w", i+1, len(pieces), err)
		}

		pieces[i].Text = translated
	}

	return chunk.Join(pieces), nil
}

func (c *Client) translateOne(ctx context.Context, text string) (string, error) {
	var (
		result  translateResponse
		failure errorResponse
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(translateRequest{
			Q:      text,
			Source: sourceAuto,
			Target: c.target,
			Format: formatText,
			APIKey: c.apiKey,
		}).
		SetResult(&result).
		SetError(&failure).
		Post(apiTranslate)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrServiceFailed, err)
	}

	if resp.IsError() {
		detail := failure.Error
		if detail == "" {
			detail = strings.TrimSpace(resp.String())
		}

		return "", fmt.Errorf("%w: %s: %s", ErrServiceFailed, resp.Status(), detail)
	}

	if strings.TrimSpace(result.TranslatedText) == "" {
		return "", ErrEmptyTranslation
	}

	return result.TranslatedText, nil
}
