package topic_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/topic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, title, summary string) core.Item {
	return core.Item{ID: id, TitleTranslated: title, SummaryTranslated: summary}
}

func TestPortugueseClassifier(t *testing.T) {
	t.Parallel()

	classifier := topic.NewPortugueseClassifier()

	tests := []struct {
		title    string
		summary  string
		expected string
	}{
		{title: "Senado aprova projeto", summary: "", expected: topic.Politics},
		{title: "Inflação desacelera", summary: "", expected: topic.Economy},
		{title: "Cúpula da OTAN", summary: "", expected: topic.World},
		{title: "Nova lei sobre IA avança", summary: "", expected: topic.Technology},
		{title: "Final do campeonato", summary: "", expected: topic.Sports},
		{title: "Campanha de vacina", summary: "", expected: topic.Health},
		{title: "Festival de teatro", summary: "", expected: topic.Culture},
		{title: "Descoberta na Antártida", summary: "", expected: topic.Science},
		{title: "Empresa anuncia fusão", summary: "", expected: topic.Business},
		{title: "Dia ensolarado", summary: "sem novidades", expected: topic.Other},
		{title: "Presidente comenta mercado", summary: "", expected: topic.Politics},
		{title: "Iate chega ao porto", summary: "", expected: topic.Other},
	}

	for _, testCase := range tests {
		t.Run(testCase.title, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, classifier.Classify(testCase.title, testCase.summary))
		})
	}
}

func TestClassifier_IsPure(t *testing.T) {
	t.Parallel()

	classifier := topic.NewPortugueseClassifier()

	first := classifier.Classify("Governo anuncia plano", "Detalhes")
	for range 10 {
		assert.Equal(t, first, classifier.Classify("Governo anuncia plano", "Detalhes"))
	}
}

func TestRuleClassifier_CustomStrategy(t *testing.T) {
	t.Parallel()

	classifier := topic.NewRuleClassifier([]topic.Rule{
		{Label: "Longas", Match: func(text string) bool { return len(text) > 20 }},
		topic.KeywordRule("Clima", "chuva"),
	}, "Geral")

	assert.Equal(t, "Longas", classifier.Classify("chuva forte no litoral norte", ""))
	assert.Equal(t, "Clima", classifier.Classify("chuva", ""))
	assert.Equal(t, "Geral", classifier.Classify("sol", ""))
}

func TestGrouper_CapAndOrder(t *testing.T) {
	t.Parallel()

	grouper, err := topic.NewGrouper(topic.NewPortugueseClassifier(), 2, nil)
	require.NoError(t, err)

	groups := grouper.Group([]core.Item{
		item("1", "Final do campeonato", ""),
		item("2", "Senado vota", ""),
		item("3", "Clube contrata técnico", ""),
		item("4", "Seleção convocada", ""),
		item("5", "Inflação cai", ""),
		item("6", "Congresso debate", ""),
	})

	require.Len(t, groups, 3)
	assert.Equal(t, topic.Politics, groups[0].Topic)
	assert.Equal(t, topic.Economy, groups[1].Topic)
	assert.Equal(t, topic.Sports, groups[2].Topic)

	ids := func(group core.TopicGroup) []string {
		var out []string
		for _, it := range group.Items {
			out = append(out, it.ID)
		}

		return out
	}

	assert.Equal(t, []string{"2", "6"}, ids(groups[0]))
	assert.Equal(t, []string{"1", "3"}, ids(groups[2]), "over-cap item 4 is dropped, not reassigned")
}

func TestGrouper_AllCatchAll(t *testing.T) {
	t.Parallel()

	grouper, err := topic.NewGrouper(topic.NewPortugueseClassifier(), 4, nil)
	require.NoError(t, err)

	var items []core.Item
	for i := 1; i <= 5; i++ {
		items = append(items, item(fmt.Sprint(i), fmt.Sprintf("Nota %d", i), "sem tema"))
	}

	groups := grouper.Group(items)
	require.Len(t, groups, 1)
	assert.Equal(t, topic.Other, groups[0].Topic)
	assert.Len(t, groups[0].Items, 4)
}

func TestGrouper_UnlistedLabelsComeLast(t *testing.T) {
	t.Parallel()

	classifier := topic.NewRuleClassifier([]topic.Rule{
		{Label: "Zeta", Match: func(text string) bool { return strings.HasPrefix(text, "z") }},
		topic.KeywordRule(topic.Economy, "juros"),
	}, topic.Other)

	grouper, err := topic.NewGrouper(classifier, 4, nil)
	require.NoError(t, err)

	groups := grouper.Group([]core.Item{item("1", "zebra", ""), item("2", "juros", ""), item("3", "nada", "")})

	require.Len(t, groups, 3)
	assert.Equal(t, []string{topic.Economy, topic.Other, "Zeta"},
		[]string{groups[0].Topic, groups[1].Topic, groups[2].Topic})
}

func TestGrouper_FallsBackToOriginalFields(t *testing.T) {
	t.Parallel()

	grouper, err := topic.NewGrouper(topic.NewPortugueseClassifier(), 4, nil)
	require.NoError(t, err)

	groups := grouper.Group([]core.Item{{ID: "1", Title: "Vacina aprovada"}})
	require.Len(t, groups, 1)
	assert.Equal(t, topic.Health, groups[0].Topic)
}

func TestNewGrouper_NilClassifier(t *testing.T) {
	t.Parallel()

	_, err := topic.NewGrouper(nil, 4, nil)
	require.ErrorIs(t, err, topic.ErrClassifierNil)
}
