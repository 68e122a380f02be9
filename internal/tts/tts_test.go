package tts_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/book-expert/bulletin-service/internal/tts/ssml"
	"github.com/book-expert/logger"
	"github.com/stretchr/testify/require"
)

var errVoiceDown = errors.New("voice unavailable")

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	t.Cleanup(func() { _ = log.Close() })

	return log
}

func newTestBuilder(t *testing.T, budget int) *ssml.Builder {
	t.Helper()

	builder, err := ssml.NewBuilder(nil, ssml.Options{
		Budget:          budget,
		Dialect:         ssml.GoogleDialect{},
		Prosody:         ssml.Prosody{Rate: 1.02, Pitch: 0.1, Style: "", Language: "pt-BR"},
		ForeignLanguage: "en-US",
	})
	require.NoError(t, err)

	return builder
}

// call records one backend invocation.
type call struct {
	markup string
	voice  string
}

// fakeBackend returns canned audio per voice and records every call.
type fakeBackend struct {
	mu      sync.Mutex
	failing map[string]error
	empty   map[string]bool
	calls   []call
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{failing: map[string]error{}, empty: map[string]bool{}}
}

func (f *fakeBackend) Synthesize(_ context.Context, markup, voice string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{markup: markup, voice: voice})

	if err, ok := f.failing[voice]; ok {
		return nil, err
	}

	if f.empty[voice] {
		return []byte{}, nil
	}

	return []byte("[" + voice + "]"), nil
}

func (f *fakeBackend) voices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	voices := make([]string, len(f.calls))
	for i, c := range f.calls {
		voices[i] = c.voice
	}

	return voices
}
