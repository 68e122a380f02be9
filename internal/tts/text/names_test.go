package text_test

import (
	"testing"

	"github.com/book-expert/bulletin-service/internal/tts/text"
	"github.com/stretchr/testify/assert"
)

func TestExtractEnglishNames(t *testing.T) {
	t.Parallel()

	titles := []string{
		"Joe Biden meets Apple CEO in United States",
		"The New York Times reports",
		"Al wins, Google loses",
	}

	names := text.ExtractEnglishNames(titles, "en-US")

	assert.Equal(t, []string{"United States", "York Times", "Apple CEO", "Joe Biden", "Google"}, names)
}

func TestExtractEnglishNames_NonEnglishSource(t *testing.T) {
	t.Parallel()

	assert.Nil(t, text.ExtractEnglishNames([]string{"Lula Visita Pequim"}, "pt"))
}

func TestExtractEnglishNames_PunctuationSplitsGroups(t *testing.T) {
	t.Parallel()

	names := text.ExtractEnglishNames([]string{"Microsoft, Nvidia Shares Fall"}, "en")

	assert.Equal(t, []string{"Nvidia Shares Fall", "Microsoft"}, names)
}
