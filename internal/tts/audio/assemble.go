// Package audio concatenates synthesized segments into one playable stream.
package audio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format represents an audio container format.
type Format string

// Supported audio formats.
const (
	FORMAT_MP3  Format = "mp3"
	FORMAT_WAV  Format = "wav"
	FORMAT_OGG  Format = "ogg"
	FORMAT_FLAC Format = "flac"
)

// mp3Bitrate is the constant bitrate the speech providers emit for MP3, in bits per second.
const mp3Bitrate = 32_000

// Static errors.
var (
	ErrNoSegments        = errors.New("no audio segments to assemble")
	ErrNotConcatenable   = errors.New("audio format cannot be joined by byte concatenation")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Segment is the audio produced for one payload together with the voice that spoke it.
type Segment struct {
	Data  []byte
	Voice string
}

// Stream is the concatenated result of a run of segments.
type Stream struct {
	Format   Format
	Data     []byte
	Segments int
	// Voices lists the voice of every segment, in order.
	Voices []string
}

// ParseFormat converts a configuration string into a Format.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))

	switch format {
	case FORMAT_MP3, FORMAT_WAV, FORMAT_OGG, FORMAT_FLAC:
		return format, nil
	case "":
		return FORMAT_MP3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Concatenable reports whether segments of the format may be joined byte for byte.
// MP3 frames are self-delimiting; the other containers carry headers per file.
func (f Format) Concatenable() bool {
	return f == FORMAT_MP3
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Assemble joins segments in order. Only concatenable formats are accepted.
func Assemble(format Format, segments []Segment) (*Stream, error) {
	if !format.Concatenable() {
		return nil, fmt.Errorf("%w: %s", ErrNotConcatenable, format)
	}

	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	size := 0
	for _, segment := range segments {
		size += len(segment.Data)
	}

	stream := &Stream{
		Format:   format,
		Data:     make([]byte, 0, size),
		Segments: len(segments),
		Voices:   make([]string, 0, len(segments)),
	}

	for _, segment := range segments {
		stream.Data = append(stream.Data, segment.Data...)
		stream.Voices = append(stream.Voices, segment.Voice)
	}

	return stream, nil
}

// LastVoice returns the voice of the final segment, or "" for an empty stream.
func (s *Stream) LastVoice() string {
	if s == nil || len(s.Voices) == 0 {
		return ""
	}

	return s.Voices[len(s.Voices)-1]
}

// EstimatedDuration approximates the playback length from the stream size.
func (s *Stream) EstimatedDuration() time.Duration {
	if s == nil || s.Format != FORMAT_MP3 {
		return 0
	}

	seconds := float64(len(s.Data)*8) / mp3Bitrate

	return time.Duration(seconds * float64(time.Second))
}
