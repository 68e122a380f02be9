package tts

import (
	"context"
	"errors"
	"fmt"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/book-expert/bulletin-service/internal/tts/audio"
	"github.com/book-expert/bulletin-service/internal/tts/ssml"
	"github.com/book-expert/bulletin-service/internal/tts/ttsutils"
	"github.com/book-expert/logger"
)

// Log messages.
const (
	logFmtRenderStart    = "Rendering script of %d bytes in %d chunk(s)"
	logFmtChunkMarkup    = "Chunk %d/%d: markup overflow escalated: %v"
	logFmtChunkFailed    = "Chunk %d/%d, payload %d: synthesis failed, skipping: %v"
	logFmtRenderComplete = "Rendered %d payload(s), %d failed, %s of audio (%s)"
)

// ErrEngineIncomplete indicates an Engine missing one of its collaborators.
var ErrEngineIncomplete = errors.New("engine requires chunker, builder and dispatcher")

// RenderResult describes one script rendering.
type RenderResult struct {
	Stream   *audio.Stream
	Chunks   int
	Payloads int
	// Failed counts payloads and unfittable fragments that produced no audio.
	Failed int
	// Voice is the voice of the last synthesized segment.
	Voice string
}

// Engine renders scripts sequentially: chunk, build markup, dispatch, assemble.
type Engine struct {
	chunker    *chunk.Chunker
	builder    *ssml.Builder
	dispatcher *Dispatcher
	format     audio.Format
	log        *logger.Logger
}

// NewEngine wires the rendering stages.
func NewEngine(
	chunker *chunk.Chunker,
	builder *ssml.Builder,
	dispatcher *Dispatcher,
	format audio.Format,
	log *logger.Logger,
) (*Engine, error) {
	if chunker == nil || builder == nil || dispatcher == nil {
		return nil, ErrEngineIncomplete
	}

	return &Engine{
		chunker:    chunker,
		builder:    builder,
		dispatcher: dispatcher,
		format:     format,
		log:        log,
	}, nil
}

// Render turns a script into one audio stream. Chunks are processed strictly in order;
// a failed piece is logged, counted and skipped. The error is non-nil only when no audio
// at all was produced or the context was cancelled.
func (e *Engine) Render(ctx context.Context, script string, names []string) (*RenderResult, error) {
	pieces := e.chunker.Chunk(script)
	result := &RenderResult{Chunks: len(pieces)}

	e.log.Info(logFmtRenderStart, len(script), len(pieces))

	var segments []audio.Segment

	for i, piece := range pieces {
		payloads, buildErr := e.builder.BuildAll(piece.Text, names)
		if buildErr != nil {
			result.Failed += countJoined(buildErr)
			e.log.Warn(logFmtChunkMarkup, i+1, len(pieces), buildErr)
		}

		for j, payload := range payloads {
			if ctx.Err() != nil {
				return result, fmt.Errorf("render cancelled: %w", ctx.Err())
			}

			result.Payloads++

			segment, err := e.dispatcher.Synthesize(ctx, payload)
			if err != nil {
				result.Failed++
				e.log.Error(logFmtChunkFailed, i+1, len(pieces), j+1, err)

				continue
			}

			segments = append(segments, segment)
		}
	}

	stream, err := audio.Assemble(e.format, segments)
	if err != nil {
		return result, fmt.Errorf("failed to assemble audio: %w", err)
	}

	result.Stream = stream
	result.Voice = stream.LastVoice()

	e.log.Info(logFmtRenderComplete, result.Payloads, result.Failed,
		ttsutils.FormatDuration(stream.EstimatedDuration()),
		ttsutils.FormatFileSize(int64(len(stream.Data))))

	return result, nil
}

// countJoined returns the number of errors combined by errors.Join, or 1.
func countJoined(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}

	return 1
}
