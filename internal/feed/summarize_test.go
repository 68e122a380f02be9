package feed_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/book-expert/bulletin-service/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentences(n, width int) string {
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, fmt.Sprintf("Frase %03d %s.", i, strings.Repeat("x", width)))
	}

	return strings.Join(parts, " ")
}

func TestTextRankSummarizer_Tiers(t *testing.T) {
	t.Parallel()

	summarizer := feed.NewTextRankSummarizer(700, 4)

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "short text kept whole", text: sentences(5, 50), expected: 5},
		{name: "under 1200 chars", text: sentences(15, 60), expected: 4},
		{name: "under 2500 chars", text: sentences(30, 60), expected: 5},
		{name: "long text", text: sentences(60, 60), expected: 6},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			summary, err := summarizer.Summarize(context.Background(), testCase.text, "pt")
			require.NoError(t, err)
			assert.Len(t, chunk.SplitSentences(summary), testCase.expected)
		})
	}
}

func TestTextRankSummarizer_PicksRankedSentences(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"Choveu pouco ontem.",
		"Gato dormiu cedo.",
		"Governo federal anuncia orçamento maior para saúde pública e educação básica.",
		"Orçamento maior para saúde pública foi anunciado pelo governo federal nesta semana.",
		"Governo federal anuncia orçamento maior e promete saúde pública de qualidade.",
		"Educação básica e saúde pública terão orçamento maior segundo governo federal.",
	}, " ")

	summary, err := feed.NewTextRankSummarizer(100, 2).Summarize(context.Background(), text, "pt")
	require.NoError(t, err)

	assert.Len(t, chunk.SplitSentences(summary), 2)
	assert.Contains(t, summary, "orçamento maior")
	assert.NotContains(t, summary, "Choveu")
	assert.NotContains(t, summary, "Gato")
	assert.NotEqual(t, feed.LeadSentences(text, 2), summary)
}

func TestTextRankSummarizer_ShortRankingFallsBackToLead(t *testing.T) {
	t.Parallel()

	text := "Um dia. Dois gatos. Três casas. Quatro ruas. Cinco bois. Seis pães."

	summary, err := feed.NewTextRankSummarizer(50, 2).Summarize(context.Background(), text, "pt")
	require.NoError(t, err)
	assert.Equal(t, "Um dia. Dois gatos.", summary)

	short, err := feed.NewTextRankSummarizer(700, 2).Summarize(context.Background(), text, "pt")
	require.NoError(t, err)
	assert.Equal(t, text, short)
}

func TestLeadSentences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Um. Dois!", feed.LeadSentences("Um. Dois! Três?", 2))
	assert.Equal(t, "Sem ponto final.", feed.LeadSentences("Sem ponto final", 3))
	assert.Empty(t, feed.LeadSentences("  ", 3))
}
