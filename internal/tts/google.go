// Package tts turns narration scripts into assembled audio.
//
// The package hosts the speech backends (a Cloud Text-to-Speech REST client and a local
// command runner), the voice-fallback dispatcher and the sequential rendering engine that
// drives chunking, markup building and assembly.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// API endpoints and paths.
const (
	DefaultGoogleEndpoint = "https://texttospeech.googleapis.com"
	apiSynthesize         = "/v1/text:synthesize"
	googleCloudScope      = "https://www.googleapis.com/auth/cloud-platform"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerAPIKey      = "X-Goog-Api-Key"
	contentTypeJSON   = "application/json"
)

// Default values.
const (
	defaultLanguageCode  = "pt-BR"
	defaultAudioEncoding = "MP3"
)

// Error messages.
const (
	errMarkupCannotBeEmpty     = "markup cannot be empty"
	errVoiceCannotBeEmpty      = "voice cannot be empty"
	errReceivedEmptyAudio      = "received empty audio data"
	errFmtServiceErrorWithCode = "speech service error (%s): %s (status: %s)"
	errFmtServiceNonOKStatus   = "speech service returned non-OK status: %s, body: %s"
)

// Static errors.
var (
	ErrEmptyMarkup = errors.New(errMarkupCannotBeEmpty)
	ErrEmptyVoice  = errors.New(errVoiceCannotBeEmpty)
	ErrEmptyAudio  = errors.New(errReceivedEmptyAudio)
)

// GoogleOptions configures a GoogleClient.
type GoogleOptions struct {
	// Endpoint includes the protocol, e.g. "https://texttospeech.googleapis.com".
	Endpoint     string
	APIKey       string
	LanguageCode string
	Timeout      time.Duration
}

// GoogleClient implements core.SpeechBackend over the Cloud Text-to-Speech REST API.
type GoogleClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	languageCode string
}

// synthesizeRequest is the JSON body of a text:synthesize call.
type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type synthesisInput struct {
	SSML string `json:"ssml"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type audioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

// synthesizeResponse carries the base64 audio; encoding/json decodes it into bytes.
type synthesizeResponse struct {
	AudioContent []byte `json:"audioContent"`
}

// googleErrorResponse is the structured error envelope of Google APIs.
type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGoogleClient creates a client authenticated by API key.
func NewGoogleClient(opts GoogleOptions) *GoogleClient {
	return newGoogleClient(opts, &http.Client{Timeout: opts.Timeout})
}

// NewGoogleClientFromCredentials creates a client authenticated with a service-account
// credentials document. The API key, if any, is still sent.
func NewGoogleClientFromCredentials(
	ctx context.Context,
	opts GoogleOptions,
	credentialsJSON []byte,
) (*GoogleClient, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, googleCloudScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, creds.TokenSource)
	httpClient.Timeout = opts.Timeout

	return newGoogleClient(opts, httpClient), nil
}

func newGoogleClient(opts GoogleOptions, httpClient *http.Client) *GoogleClient {
	baseURL := strings.TrimRight(opts.Endpoint, "/")
	if baseURL == "" {
		baseURL = DefaultGoogleEndpoint
	}

	languageCode := opts.LanguageCode
	if languageCode == "" {
		languageCode = defaultLanguageCode
	}

	return &GoogleClient{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       opts.APIKey,
		languageCode: languageCode,
	}
}

// Synthesize sends one markup payload and returns the decoded MP3 audio.
func (c *GoogleClient) Synthesize(ctx context.Context, markup, voice string) ([]byte, error) {
	if markup == "" {
		return nil, ErrEmptyMarkup
	}

	if voice == "" {
		return nil, ErrEmptyVoice
	}

	requestBody, err := json.Marshal(synthesizeRequest{
		Input:       synthesisInput{SSML: markup},
		Voice:       voiceSelection{LanguageCode: c.languageCode, Name: voice},
		AudioConfig: audioConfig{AudioEncoding: defaultAudioEncoding},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiSynthesize,
		bytes.NewReader(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeJSON)

	if c.apiKey != "" {
		httpReq.Header.Set(headerAPIKey, c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to speech service at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp.Status, body)
	}

	var decoded synthesizeResponse

	err = decodeResponse(body, &decoded)
	if err != nil {
		return nil, err
	}

	if len(decoded.AudioContent) == 0 {
		return nil, ErrEmptyAudio
	}

	return decoded.AudioContent, nil
}

// parseErrorResponse decodes the structured Google error. If structured parsing fails,
// the raw body is returned so the diagnostic is preserved.
func parseErrorResponse(status string, body []byte) error {
	var errorResp googleErrorResponse

	err := decodeResponse(body, &errorResp)
	if err == nil && errorResp.Error.Message != "" {
		return fmt.Errorf(errFmtServiceErrorWithCode, status, errorResp.Error.Message, errorResp.Error.Status)
	}

	return fmt.Errorf(errFmtServiceNonOKStatus, status, string(body))
}

func decodeResponse(body []byte, target any) error {
	err := json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("failed to decode speech service response: %w", err)
	}

	return nil
}
