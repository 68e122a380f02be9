package audio_test

import (
	"testing"
	"time"

	"github.com/book-expert/bulletin-service/internal/tts/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_ConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	stream, err := audio.Assemble(audio.FORMAT_MP3, []audio.Segment{
		{Data: []byte("ab"), Voice: "v1"},
		{Data: []byte("cd"), Voice: "v2"},
		{Data: []byte("e"), Voice: "v2"},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("abcde"), stream.Data)
	assert.Equal(t, 3, stream.Segments)
	assert.Equal(t, []string{"v1", "v2", "v2"}, stream.Voices)
	assert.Equal(t, "v2", stream.LastVoice())
}

func TestAssemble_Errors(t *testing.T) {
	t.Parallel()

	_, err := audio.Assemble(audio.FORMAT_MP3, nil)
	require.ErrorIs(t, err, audio.ErrNoSegments)

	_, err = audio.Assemble(audio.FORMAT_WAV, []audio.Segment{{Data: []byte("x"), Voice: "v"}})
	require.ErrorIs(t, err, audio.ErrNotConcatenable)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected audio.Format
		wantErr  bool
	}{
		{input: "", expected: audio.FORMAT_MP3},
		{input: " MP3 ", expected: audio.FORMAT_MP3},
		{input: "wav", expected: audio.FORMAT_WAV},
		{input: "aiff", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			format, err := audio.ParseFormat(testCase.input)
			if testCase.wantErr {
				require.ErrorIs(t, err, audio.ErrUnsupportedFormat)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, format)
		})
	}
}

func TestStream_EstimatedDuration(t *testing.T) {
	t.Parallel()

	stream, err := audio.Assemble(audio.FORMAT_MP3, []audio.Segment{{Data: make([]byte, 4000), Voice: "v"}})
	require.NoError(t, err)

	assert.Equal(t, time.Second, stream.EstimatedDuration())
	assert.Equal(t, ".mp3", stream.Format.Extension())

	var empty *audio.Stream
	assert.Zero(t, empty.EstimatedDuration())
	assert.Empty(t, empty.LastVoice())
}
