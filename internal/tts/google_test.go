package tts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/book-expert/bulletin-service/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Input struct {
		SSML string `json:"ssml"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

func newGoogleTestClient(server *httptest.Server) *tts.GoogleClient {
	return tts.NewGoogleClient(tts.GoogleOptions{
		Endpoint:     server.URL,
		APIKey:       "test-key",
		LanguageCode: "pt-BR",
		Timeout:      5 * time.Second,
	})
}

func TestGoogleClient_Synthesize_Success(t *testing.T) {
	t.Parallel()

	var received recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"audioContent":"SUQzAwAAAA=="}`))
	}))
	defer server.Close()

	data, err := newGoogleTestClient(server).Synthesize(context.Background(), "<speak>Oi</speak>", "pt-BR-Neural2-B")
	require.NoError(t, err)

	assert.Equal(t, []byte("ID3\x03\x00\x00\x00"), data)
	assert.Equal(t, "<speak>Oi</speak>", received.Input.SSML)
	assert.Equal(t, "pt-BR", received.Voice.LanguageCode)
	assert.Equal(t, "pt-BR-Neural2-B", received.Voice.Name)
	assert.Equal(t, "MP3", received.AudioConfig.AudioEncoding)
}

func TestGoogleClient_Synthesize_StructuredError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid SSML","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	_, err := newGoogleTestClient(server).Synthesize(context.Background(), "<speak>", "pt-BR-Neural2-B")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid SSML")
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
}

func TestGoogleClient_Synthesize_RawError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := newGoogleTestClient(server).Synthesize(context.Background(), "<speak/>", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestGoogleClient_Synthesize_EmptyAudio(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"audioContent":""}`))
	}))
	defer server.Close()

	_, err := newGoogleTestClient(server).Synthesize(context.Background(), "<speak/>", "v")
	require.ErrorIs(t, err, tts.ErrEmptyAudio)
}

func TestGoogleClient_Synthesize_InputValidation(t *testing.T) {
	t.Parallel()

	client := tts.NewGoogleClient(tts.GoogleOptions{})

	_, err := client.Synthesize(context.Background(), "", "v")
	require.ErrorIs(t, err, tts.ErrEmptyMarkup)

	_, err = client.Synthesize(context.Background(), "<speak/>", "")
	require.ErrorIs(t, err, tts.ErrEmptyVoice)
}

func TestNewGoogleClientFromCredentials_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := tts.NewGoogleClientFromCredentials(context.Background(), tts.GoogleOptions{}, []byte("not json"))
	require.Error(t, err)
}
