package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/tts/audio"
	"github.com/book-expert/bulletin-service/internal/tts/ssml"
	"github.com/book-expert/logger"
)

// Static errors.
var (
	// ErrSynthesisExhausted is returned when every configured voice failed for a payload.
	ErrSynthesisExhausted = errors.New("all voices failed to synthesize payload")
	// ErrNoVoices indicates a dispatcher created with an empty voice list.
	ErrNoVoices = errors.New("no voices configured")
	// ErrBackendNil indicates a dispatcher created without a speech backend.
	ErrBackendNil = errors.New("speech backend cannot be nil")
)

// Dispatcher synthesizes payloads, trying the configured voices in order.
type Dispatcher struct {
	backend core.SpeechBackend
	voices  []string
	log     *logger.Logger
}

// NewDispatcher creates a dispatcher. Blank voice names are ignored.
func NewDispatcher(backend core.SpeechBackend, voices []string, log *logger.Logger) (*Dispatcher, error) {
	if backend == nil {
		return nil, ErrBackendNil
	}

	cleaned := make([]string, 0, len(voices))

	for _, voice := range voices {
		voice = strings.TrimSpace(voice)
		if voice != "" {
			cleaned = append(cleaned, voice)
		}
	}

	if len(cleaned) == 0 {
		return nil, ErrNoVoices
	}

	return &Dispatcher{backend: backend, voices: cleaned, log: log}, nil
}

// Voices returns the voice preference order.
func (d *Dispatcher) Voices() []string {
	return append([]string(nil), d.voices...)
}

// Synthesize returns the audio of the first voice that succeeds. Empty audio counts as
// a failure. Cancellation of ctx stops the fallback immediately.
func (d *Dispatcher) Synthesize(ctx context.Context, payload ssml.Payload) (audio.Segment, error) {
	var lastErr error

	for _, voice := range d.voices {
		data, err := d.backend.Synthesize(ctx, payload.Markup, voice)
		if err == nil && len(data) == 0 {
			err = ErrEmptyAudio
		}

		if err == nil {
			return audio.Segment{Data: data, Voice: voice}, nil
		}

		lastErr = err
		d.log.Warn("Voice %s failed for payload of %d bytes: %v", voice, payload.Size(), err)

		if ctx.Err() != nil {
			break
		}
	}

	return audio.Segment{}, fmt.Errorf("%w: %w", ErrSynthesisExhausted, lastErr)
}
