// Package topic assigns news items to topics and groups them for narration.
package topic

import "strings"

// Topic labels.
const (
	Politics   = "Política"
	Economy    = "Economia"
	World      = "Mundo"
	Technology = "Tecnologia"
	Sports     = "Esportes"
	Health     = "Saúde"
	Culture    = "Cultura"
	Science    = "Ciência"
	Business   = "Negócios"
	// Other is the catch-all label.
	Other = "Outros"
)

// Classifier labels an item from its narration-language title and summary.
type Classifier interface {
	Classify(title, summary string) string
}

// Rule pairs a label with a predicate over the lowercased "title summary" text.
type Rule struct {
	Label string
	Match func(text string) bool
}

// KeywordRule matches when any keyword occurs as a substring. Keywords are expected in
// lower case; surrounding spaces are significant (" ia " matches the word only).
func KeywordRule(label string, keywords ...string) Rule {
	words := append([]string(nil), keywords...)

	return Rule{
		Label: label,
		Match: func(text string) bool {
			for _, keyword := range words {
				if strings.Contains(text, keyword) {
					return true
				}
			}

			return false
		},
	}
}

// RuleClassifier returns the label of the first matching rule, or the fallback.
type RuleClassifier struct {
	rules    []Rule
	fallback string
}

// NewRuleClassifier creates a classifier. An empty fallback uses Other.
func NewRuleClassifier(rules []Rule, fallback string) *RuleClassifier {
	if fallback == "" {
		fallback = Other
	}

	return &RuleClassifier{rules: append([]Rule(nil), rules...), fallback: fallback}
}

// Classify implements Classifier.
func (c *RuleClassifier) Classify(title, summary string) string {
	text := strings.ToLower(title + " " + summary)

	for _, rule := range c.rules {
		if rule.Match != nil && rule.Match(text) {
			return rule.Label
		}
	}

	return c.fallback
}

// PortugueseRules is the default keyword table, evaluated in order.
func PortugueseRules() []Rule {
	return []Rule{
		KeywordRule(Politics, "política", "governo", "congresso", "câmara", "senado", "eleição",
			"ministro", "prefeitura", "presidente", "plano diretor"),
		KeywordRule(Economy, "economia", "inflação", "juros", "banco central", "dólar", "balanço",
			"mercado", "crescimento", "desemprego", "investimento"),
		KeywordRule(World, "mundo", "internacional", "guerra", "acordo", "otan", "onu", "rússia",
			"china", "eua", "europeu"),
		KeywordRule(Technology, "tecnologia", " ia ", "inteligência artificial", "startup", "software",
			"app", "privacidade", "segurança digital"),
		KeywordRule(Sports, "esporte", "futebol", "basquete", "vôlei", "olimpíada", "campeonato",
			"técnico", "clube", "seleção"),
		KeywordRule(Health, "saúde", "covid", "vacina", "hiv", "h1n1", "hospital", "sus"),
		KeywordRule(Culture, "cultura", "cinema", "série", "filme", "música", "artes", "teatro", "festival"),
		KeywordRule(Science, "ciência", "pesquisa", "universidade", "estudo científico", "descoberta"),
		KeywordRule(Business, "negócio", "empresa", "lucro", "fusão", "aquisição", "resultado", "receita",
			"expansão", "contrato"),
	}
}

// NewPortugueseClassifier returns the default classifier.
func NewPortugueseClassifier() *RuleClassifier {
	return NewRuleClassifier(PortugueseRules(), Other)
}
