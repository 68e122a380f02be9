// Package chunk_test tests script partitioning.
package chunk_test

import (
	"strings"
	"testing"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawBudget = 4300

func longSection(targetBytes int) string {
	var builder strings.Builder

	for i := 0; builder.Len() < targetBytes; i++ {
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}

		builder.WriteString("Esta é uma frase de teste com acentuação número ")
		builder.WriteString(strings.Repeat("x", i%7))
		builder.WriteString(".")
	}

	return builder.String()
}

func TestNewChunker_RejectsNonPositiveBudget(t *testing.T) {
	t.Parallel()

	_, err := chunk.NewChunker(0)
	require.ErrorIs(t, err, chunk.ErrInvalidBudget)
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single without punctuation", input: "sem ponto final", expected: []string{"sem ponto final"}},
		{
			name:     "mixed terminators",
			input:    "Primeira.  Segunda!\nTerceira? quarta",
			expected: []string{"Primeira.", "Segunda!", "Terceira?", "quarta"},
		},
		{name: "decimal stays glued", input: "Subiu 2.5 pontos.", expected: []string{"Subiu 2.5 pontos."}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, chunk.SplitSentences(testCase.input))
		})
	}
}

func TestSplitSections_DropsEmpty(t *testing.T) {
	t.Parallel()

	sections := chunk.SplitSections("Abertura. ¦ ¦  Seção: Outros.  Texto. ¦")
	assert.Equal(t, []string{"Abertura.", "Seção: Outros. Texto."}, sections)
}

func TestChunker_SmallScriptIsOneChunk(t *testing.T) {
	t.Parallel()

	chunker, err := chunk.NewChunker(rawBudget)
	require.NoError(t, err)

	script := "Boletim de notícias do Demo. ¦ Seção: Outros. Notícia 1: A. ¦ Até a próxima edição."
	pieces := chunker.Chunk(script)

	require.Len(t, pieces, 1)
	assert.Equal(t, chunk.NormalizeScript(script), pieces[0].Text)
	assert.False(t, pieces[0].Oversized)
}

func TestChunker_EmptyInput(t *testing.T) {
	t.Parallel()

	chunker, err := chunk.NewChunker(rawBudget)
	require.NoError(t, err)

	assert.Empty(t, chunker.Chunk("   "))
}

func TestChunker_PrefersSectionBoundaries(t *testing.T) {
	t.Parallel()

	chunker, err := chunk.NewChunker(40)
	require.NoError(t, err)

	pieces := chunker.Chunk("Seção um tem texto. ¦ Seção dois tem texto. ¦ Três.")

	assert.Equal(t, []string{"Seção um tem texto.", "Seção dois tem texto. ¦ Três."}, chunk.Texts(pieces))
}

func TestChunker_LongSectionFallsBackToSentences(t *testing.T) {
	t.Parallel()

	chunker, err := chunk.NewChunker(rawBudget)
	require.NoError(t, err)

	section := longSection(20000)
	require.GreaterOrEqual(t, len(section), 20000)

	script := "Abertura curta. ¦ " + section + " ¦ Encerramento."
	pieces := chunker.Chunk(script)

	require.Greater(t, len(pieces), 4)

	for _, piece := range pieces {
		assert.LessOrEqual(t, len(piece.Text), rawBudget)
		assert.False(t, piece.Oversized)
	}

	assert.Equal(t, chunk.NormalizeScript(script), chunk.Join(pieces))
}

func TestChunker_PathologicalSentenceIsPassedThrough(t *testing.T) {
	t.Parallel()

	chunker, err := chunk.NewChunker(100)
	require.NoError(t, err)

	giant := strings.TrimSpace(strings.Repeat("palavra ", 40)) + "."
	script := "Curta. " + giant + " Outra curta. ¦ Fim."
	pieces := chunker.Chunk(script)

	var oversized []chunk.Piece

	for _, piece := range pieces {
		if piece.Oversized {
			oversized = append(oversized, piece)

			continue
		}

		assert.LessOrEqual(t, len(piece.Text), 100)
	}

	require.Len(t, oversized, 1)
	assert.Equal(t, giant, oversized[0].Text)
	assert.Equal(t, chunk.NormalizeScript(script), chunk.Join(pieces))
}

func TestChunker_CoverageAcrossBudgets(t *testing.T) {
	t.Parallel()

	script := "Boletim de notícias do Demo, 14/10/2026. Vamos aos destaques organizados por assunto. ¦ " +
		"Seção: Política. Principais pontos: Notícia 1: Governo anuncia plano. Resumo: " + longSection(900) +
		" Fechamos esta seção. ¦ Seção: Outros. Principais pontos: Notícia 1: Algo. Resumo: curto. " +
		"Fechamos esta seção. ¦ Esses foram os assuntos mais relevantes de hoje. Até a próxima edição."

	for _, budget := range []int{30, 64, 200, 512, 1000, 5000} {
		chunker, err := chunk.NewChunker(budget)
		require.NoError(t, err)

		pieces := chunker.Chunk(script)
		assert.Equal(t, chunk.NormalizeScript(script), chunk.Join(pieces), "budget %d", budget)

		for _, piece := range pieces {
			if !piece.Oversized {
				assert.LessOrEqual(t, len(piece.Text), budget, "budget %d", budget)
			}
		}
	}
}

func TestPack_CustomSizeFunction(t *testing.T) {
	t.Parallel()

	wordCount := func(text string) int { return len(strings.Fields(text)) }

	pieces := chunk.Pack("um dois três quatro cinco", 2, wordCount, chunk.WordLevel)

	assert.Equal(t, []string{"um dois", "três quatro", "cinco"}, chunk.Texts(pieces))
	assert.Equal(t, "um dois três quatro cinco", chunk.Join(pieces))
}
