// Package delivery hands digests and bulletins to their audience: a Telegram chat, a
// NATS object store with events, and a local directory.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/logger"
	"github.com/sethvargo/go-retry"
)

// Telegram Bot API.
const (
	DefaultTelegramAPIURL = "https://api.telegram.org"
	methodSendMessage     = "sendMessage"
	methodSendAudio       = "sendAudio"
	parseModeHTML         = "HTML"
	// maxMessageRunes is the Bot API limit for one text message.
	maxMessageRunes = 4096
)

// Retry defaults.
const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultHTTPTimeout = 60 * time.Second
)

// Static errors.
var (
	ErrTelegramMisconfigured = errors.New("telegram bot token and chat id are required")
	ErrTelegramAPI           = errors.New("telegram API error")
)

// Message splitting levels: paragraphs, then lines.
var (
	paragraphLevel = chunk.Level{Name: "paragraph", Split: splitOn("\n\n"), Join: "\n\n"}
	lineLevel      = chunk.Level{Name: "line", Split: splitOn("\n"), Join: "\n"}
)

// TelegramOptions configures a Telegram deliverer.
type TelegramOptions struct {
	BotToken    string
	ChatID      string
	APIURL      string
	Timeout     time.Duration
	MaxRetries  uint64
	BaseBackoff time.Duration
}

// Telegram implements core.Deliverer over the Bot API.
type Telegram struct {
	client      *http.Client
	apiURL      string
	token       string
	chatID      string
	maxRetries  uint64
	baseBackoff time.Duration
	log         *logger.Logger
}

// apiResponse is the envelope of every Bot API reply.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// NewTelegram creates a Telegram deliverer.
func NewTelegram(opts TelegramOptions, log *logger.Logger) (*Telegram, error) {
	if strings.TrimSpace(opts.BotToken) == "" || strings.TrimSpace(opts.ChatID) == "" {
		return nil, ErrTelegramMisconfigured
	}

	if opts.APIURL == "" {
		opts.APIURL = DefaultTelegramAPIURL
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultHTTPTimeout
	}

	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = defaultBaseBackoff
	}

	return &Telegram{
		client:      &http.Client{Timeout: opts.Timeout},
		apiURL:      strings.TrimRight(opts.APIURL, "/"),
		token:       opts.BotToken,
		chatID:      opts.ChatID,
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.BaseBackoff,
		log:         log,
	}, nil
}

// Name implements Sink.
func (t *Telegram) Name() string {
	return "telegram"
}

// SendText posts an HTML message. Texts over the Bot API limit are split at paragraph,
// then line boundaries.
func (t *Telegram) SendText(ctx context.Context, text string) error {
	pieces := chunk.Pack(text, maxMessageRunes, utf8.RuneCountInString, paragraphLevel, lineLevel)

	for _, piece := range pieces {
		form := url.Values{}
		form.Set("chat_id", t.chatID)
		form.Set("text", piece.Text)
		form.Set("parse_mode", parseModeHTML)
		form.Set("disable_web_page_preview", "false")

		body := form.Encode()

		err := t.call(ctx, methodSendMessage, func() (io.Reader, string, error) {
			return strings.NewReader(body), "application/x-www-form-urlencoded", nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// SendAudio uploads the bulletin as an audio file with title and performer.
func (t *Telegram) SendAudio(ctx context.Context, bulletin core.Bulletin) error {
	return t.call(ctx, methodSendAudio, func() (io.Reader, string, error) {
		return t.audioForm(bulletin)
	})
}

func (t *Telegram) audioForm(bulletin core.Bulletin) (io.Reader, string, error) {
	var buffer bytes.Buffer

	writer := multipart.NewWriter(&buffer)

	fields := map[string]string{
		"chat_id":   t.chatID,
		"title":     bulletin.Title,
		"performer": bulletin.Performer,
	}

	if bulletin.Duration > 0 {
		fields["duration"] = strconv.Itoa(int(bulletin.Duration.Seconds()))
	}

	for name, value := range fields {
		err := writer.WriteField(name, value)
		if err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	part, err := writer.CreateFormFile("audio", bulletin.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("create audio part: %w", err)
	}

	_, err = part.Write(bulletin.Audio)
	if err != nil {
		return nil, "", fmt.Errorf("write audio part: %w", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return &buffer, writer.FormDataContentType(), nil
}

// call posts to a Bot API method, rebuilding the body for every attempt. Network errors,
// rate limiting and server errors are retried with exponential backoff.
func (t *Telegram) call(ctx context.Context, method string, body func() (io.Reader, string, error)) error {
	backoff := retry.WithMaxRetries(t.maxRetries, retry.NewExponential(t.baseBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		reader, contentType, err := body()
		if err != nil {
			return err
		}

		statusCode, err := t.post(ctx, method, reader, contentType)
		if err != nil && retryable(statusCode) {
			t.log.Warn("Telegram %s failed, retrying: %v", method, err)

			return retry.RetryableError(err)
		}

		return err
	})
}

func (t *Telegram) post(ctx context.Context, method string, body io.Reader, contentType string) (int, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s request: %w", method, redact(err, t.token))
	}
	defer resp.Body.Close()

	var decoded apiResponse

	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode != http.StatusOK || decodeErr != nil || !decoded.OK {
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %s", ErrTelegramAPI, method, resp.Status, decoded.Description)
	}

	return resp.StatusCode, nil
}

// retryable reports whether a failed call may succeed later. A zero status is a
// transport error.
func retryable(statusCode int) bool {
	return statusCode == 0 || statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}

// redact removes the bot token from transport errors, which embed the request URL.
func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}

	return &redactedError{message: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}

// redactedError hides the token in its message and keeps the original error in the chain.
type redactedError struct {
	message string
	err     error
}

func (e *redactedError) Error() string { return e.message }

func (e *redactedError) Unwrap() error { return e.err }

func splitOn(separator string) func(string) []string {
	return func(text string) []string {
		var parts []string

		for _, part := range strings.Split(text, separator) {
			if strings.TrimSpace(part) != "" {
				parts = append(parts, part)
			}
		}

		return parts
	}
}
