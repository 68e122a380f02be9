package ssml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/book-expert/bulletin-service/internal/tts/text"
)

const previewRunes = 60

// Static errors.
var (
	// ErrMarkupBudget is returned for a fragment whose markup exceeds the budget even after
	// re-packing down to single words.
	ErrMarkupBudget = errors.New("markup exceeds payload budget after re-chunking")
	// ErrInvalidMarkupBudget indicates a non-positive markup budget.
	ErrInvalidMarkupBudget = errors.New("markup budget must be positive")
	// ErrDialectNil indicates a builder without a dialect.
	ErrDialectNil = errors.New("markup dialect cannot be nil")
)

// Payload is one envelope-wrapped markup document ready for a speech backend.
type Payload struct {
	Markup string
	// Text is the raw chunk text the payload was built from.
	Text string
}

// Size returns the encoded size of the markup in bytes.
func (p Payload) Size() int {
	return len(p.Markup)
}

// Options configures a Builder.
type Options struct {
	Budget          int
	Dialect         Dialect
	Prosody         Prosody
	ForeignLanguage string
}

// Builder converts chunk text into markup payloads.
type Builder struct {
	sanitizer *text.Sanitizer
	dialect   Dialect
	prosody   Prosody
	foreign   string
	budget    int
}

// NewBuilder creates a builder. A nil sanitizer uses the default one.
func NewBuilder(sanitizer *text.Sanitizer, opts Options) (*Builder, error) {
	if opts.Budget <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMarkupBudget, opts.Budget)
	}

	if opts.Dialect == nil {
		return nil, ErrDialectNil
	}

	if sanitizer == nil {
		sanitizer = text.NewSanitizer("", "")
	}

	return &Builder{
		sanitizer: sanitizer,
		dialect:   opts.Dialect,
		prosody:   opts.Prosody,
		foreign:   opts.ForeignLanguage,
		budget:    opts.Budget,
	}, nil
}

// Budget returns the markup byte budget.
func (b *Builder) Budget() int {
	return b.budget
}

// Parse sanitizes text and returns its structured form.
func (b *Builder) Parse(chunkText string, names []string) Document {
	return parse(b.sanitizer.Sanitize(chunkText), newNameMatcher(names, b.foreign))
}

// Build renders one payload without enforcing the budget.
func (b *Builder) Build(chunkText string, names []string) Payload {
	return b.build(chunkText, newNameMatcher(names, b.foreign))
}

// BuildAll renders chunk text into payloads that each fit the budget. When the single
// payload overflows, the chunk is re-packed by rebuilt markup size. Fragments that cannot
// fit even as single words are reported through ErrMarkupBudget; the others are returned.
func (b *Builder) BuildAll(chunkText string, names []string) ([]Payload, error) {
	matcher := newNameMatcher(names, b.foreign)

	if b.parse(chunkText, matcher).Empty() {
		return nil, nil
	}

	payload := b.build(chunkText, matcher)
	if payload.Size() <= b.budget {
		return []Payload{payload}, nil
	}

	size := func(candidate string) int {
		return b.build(candidate, matcher).Size()
	}

	pieces := chunk.Pack(chunkText, b.budget, size, chunk.SectionLevel, chunk.SentenceLevel, chunk.WordLevel)

	var (
		payloads []Payload
		errs     []error
	)

	for _, piece := range pieces {
		if piece.Oversized {
			errs = append(errs, fmt.Errorf("%w: %d > %d bytes for %q",
				ErrMarkupBudget, size(piece.Text), b.budget, preview(piece.Text)))

			continue
		}

		payloads = append(payloads, b.build(piece.Text, matcher))
	}

	return payloads, errors.Join(errs...)
}

func (b *Builder) parse(chunkText string, matcher *nameMatcher) Document {
	return parse(b.sanitizer.Sanitize(chunkText), matcher)
}

func (b *Builder) build(chunkText string, matcher *nameMatcher) Payload {
	return Payload{Markup: b.Render(b.parse(chunkText, matcher)), Text: chunkText}
}

// Render escapes every run and wraps the document in the dialect's envelope.
func (b *Builder) Render(doc Document) string {
	parts := make([]string, 0, len(doc.Sentences))

	for _, sentence := range doc.Sentences {
		var builder strings.Builder

		builder.WriteString("<s>")

		for _, run := range sentence.Runs {
			escaped := Escape(run.Text)
			if run.Lang != "" {
				escaped = b.dialect.Foreign(run.Lang, escaped)
			}

			builder.WriteString(escaped)
		}

		builder.WriteString("</s>")
		builder.WriteString(b.dialect.Break(sentence.Pause))

		parts = append(parts, builder.String())
	}

	return b.dialect.Envelope(strings.Join(parts, " "), b.prosody)
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewRunes {
		return s
	}

	return string(runes[:previewRunes]) + "..."
}
