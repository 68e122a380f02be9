package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/book-expert/logger"
)

// Argument placeholders substituted by CommandBackend.
const (
	PlaceholderVoice  = "{voice}"
	PlaceholderInput  = "{input}"
	PlaceholderOutput = "{output}"
)

// ErrCommandNotConfigured is returned when no synthesis binary is set.
var ErrCommandNotConfigured = errors.New("synthesis command is not configured")

// CommandBackend implements core.SpeechBackend by running a local synthesis binary.
// The markup is written to a temporary file passed through {input}; the binary writes
// audio to the file passed through {output}.
type CommandBackend struct {
	binary string
	args   []string
	log    *logger.Logger
}

// NewCommandBackend creates a backend for the given binary and argument template.
func NewCommandBackend(binary string, args []string, log *logger.Logger) (*CommandBackend, error) {
	if strings.TrimSpace(binary) == "" {
		return nil, ErrCommandNotConfigured
	}

	return &CommandBackend{
		binary: binary,
		args:   append([]string(nil), args...),
		log:    log,
	}, nil
}

// Synthesize runs the binary for one payload and returns the audio it produced.
func (b *CommandBackend) Synthesize(ctx context.Context, markup, voice string) ([]byte, error) {
	if markup == "" {
		return nil, ErrEmptyMarkup
	}

	inputFile, err := os.CreateTemp("", "bulletin-input-*.ssml")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for markup: %w", err)
	}
	defer b.remove(inputFile.Name())

	_, writeErr := inputFile.WriteString(markup)

	closeErr := inputFile.Close()
	if writeErr != nil || closeErr != nil {
		return nil, fmt.Errorf("failed to write markup to temp file: %w", errors.Join(writeErr, closeErr))
	}

	outputFile, err := os.CreateTemp("", "bulletin-output-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for audio output: %w", err)
	}

	_ = outputFile.Close()
	defer b.remove(outputFile.Name())

	replacer := strings.NewReplacer(
		PlaceholderVoice, voice,
		PlaceholderInput, inputFile.Name(),
		PlaceholderOutput, outputFile.Name(),
	)

	args := make([]string, len(b.args))
	for i, arg := range b.args {
		args[i] = replacer.Replace(arg)
	}

	// #nosec G204 -- binary and argument template come from operator configuration
	cmd := exec.CommandContext(ctx, b.binary, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s execution failed: %w - output: %s", b.binary, err, string(output))
	}

	audioData, err := os.ReadFile(outputFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data from temp file: %w", err)
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudio
	}

	return audioData, nil
}

func (b *CommandBackend) remove(path string) {
	removeErr := os.Remove(path)
	if removeErr != nil && !os.IsNotExist(removeErr) {
		b.log.Warn("Failed to remove temp file '%s': %v", path, removeErr)
	}
}
