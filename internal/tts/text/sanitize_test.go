package text_test

import (
	"testing"

	"github.com/book-expert/bulletin-service/internal/tts/text"
	"github.com/stretchr/testify/assert"
)

// sanitizerTestCase defines a standard test case for the sanitizer.
type sanitizerTestCase struct {
	name     string
	input    string
	expected string
}

// runSanitizerTests is a helper function to run table-driven tests against a sanitizer.
func runSanitizerTests(t *testing.T, tests []sanitizerTestCase) {
	t.Helper()

	sanitizer := text.NewSanitizer("", "")

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := sanitizer.Sanitize(testCase.input)
			if result != testCase.expected {
				t.Errorf("Expected %q, got %q", testCase.expected, result)
			}
		})
	}
}

func TestSanitizer_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, text.NewSanitizer("", "").Sanitize(""))
}

func TestSanitizer_URLs(t *testing.T) {
	t.Parallel()

	runSanitizerTests(t, []sanitizerTestCase{
		{name: "https link", input: "Veja https://example.com/a?b=1 agora.", expected: "Veja (link na descrição) agora."},
		{name: "www link", input: "Acesse WWW.site.com.br hoje.", expected: "Acesse (link na descrição) hoje."},
		{name: "uppercase scheme", input: "HTTP://X.ORG", expected: "(link na descrição)"},
	})
}

func TestSanitizer_ControlAndReservedSymbols(t *testing.T) {
	t.Parallel()

	runSanitizerTests(t, []sanitizerTestCase{
		{name: "control characters", input: "a\x01b\x1fc", expected: "a b c"},
		{name: "xml noncharacters", input: "a\uFFFEb\uFFFFc", expected: "a b c"},
		{name: "vertical tab and form feed", input: "a\vb\fc", expected: "a b c"},
		{name: "newlines collapse", input: "linha 1\n\n\tlinha 2", expected: "linha 1 linha 2"},
		{name: "isolated ampersand", input: "Tom & Jerry", expected: "Tom e Jerry"},
		{name: "glued ampersand kept", input: "AT&T lucra", expected: "AT&T lucra"},
		{name: "angle brackets kept for escaping", input: "x < y > z", expected: "x < y > z"},
		{name: "marker preserved", input: "A.  ¦  B.", expected: "A. ¦ B."},
	})
}

func TestSanitizer_Typography(t *testing.T) {
	t.Parallel()

	runSanitizerTests(t, []sanitizerTestCase{
		{name: "smart quotes", input: "Ele disse “olá”", expected: `Ele disse "olá"`},
		{name: "dashes", input: "2020–2024 — fim", expected: "2020-2024 - fim"},
		{name: "ellipsis", input: "Talvez…", expected: "Talvez..."},
	})
}

func TestSanitizer_NFC(t *testing.T) {
	t.Parallel()

	decomposed := "Sa\u0300o Paulo"
	composed := text.NewSanitizer("", "").Sanitize(decomposed)

	assert.Equal(t, "S\u00e0o Paulo", composed)
	assert.Len(t, composed, len(decomposed)-1)
}

func TestSanitizer_CustomReplacements(t *testing.T) {
	t.Parallel()

	sanitizer := text.NewSanitizer("(link below)", "and")

	assert.Equal(t, "Rock and roll (link below)", sanitizer.Sanitize("Rock & roll http://x.io"))
}
