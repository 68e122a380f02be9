package ssml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect names.
const (
	DialectGoogle = "google"
	DialectW3C    = "w3c"
)

// ErrUnknownDialect is returned for an unsupported envelope dialect name.
var ErrUnknownDialect = errors.New("unknown markup dialect")

// Prosody holds the global voice controls applied by the envelope.
type Prosody struct {
	// Rate is the speaking rate multiplier (1.0 = normal).
	Rate float64
	// Pitch is the pitch shift in semitones.
	Pitch float64
	// Style is an optional expressive style; dialects without support ignore it.
	Style string
	// Language is the narration language code, e.g. "pt-BR".
	Language string
}

// Dialect renders the backend-specific parts of a payload.
type Dialect interface {
	Name() string
	// Foreign wraps already-escaped text in a pronunciation override.
	Foreign(lang, escaped string) string
	Break(pause time.Duration) string
	Envelope(body string, prosody Prosody) string
}

// DialectByName resolves a dialect from configuration.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DialectGoogle:
		return GoogleDialect{}, nil
	case DialectW3C:
		return W3CDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;",
)

func formatRate(rate float64) string {
	if rate <= 0 {
		rate = 1
	}

	return strconv.FormatFloat(rate, 'f', -1, 64)
}

func formatPitch(pitch float64) string {
	return fmt.Sprintf("%+.1fst", pitch)
}

func formatBreak(pause time.Duration) string {
	return fmt.Sprintf(`<break time="%dms"/>`, pause.Milliseconds())
}

func foreignTag(lang, escaped string) string {
	return `<lang xml:lang="` + attrEscaper.Replace(lang) + `">` + escaped + `</lang>`
}

// GoogleDialect is the Cloud Text-to-Speech flavour of SSML.
type GoogleDialect struct{}

// Name implements Dialect.
func (GoogleDialect) Name() string { return DialectGoogle }

// Foreign implements Dialect.
func (GoogleDialect) Foreign(lang, escaped string) string { return foreignTag(lang, escaped) }

// Break implements Dialect.
func (GoogleDialect) Break(pause time.Duration) string { return formatBreak(pause) }

// Envelope implements Dialect. Style is not supported by the provider and is dropped.
func (GoogleDialect) Envelope(body string, prosody Prosody) string {
	return `<speak><prosody rate="` + formatRate(prosody.Rate) + `" pitch="` + formatPitch(prosody.Pitch) +
		`"><p>` + body + `</p></prosody></speak>`
}

// W3CDialect is plain SSML 1.1 with an explicit namespace and language, for engines that
// require a complete root element. Style maps to an emphasis level.
type W3CDialect struct{}

// Name implements Dialect.
func (W3CDialect) Name() string { return DialectW3C }

// Foreign implements Dialect.
func (W3CDialect) Foreign(lang, escaped string) string { return foreignTag(lang, escaped) }

// Break implements Dialect.
func (W3CDialect) Break(pause time.Duration) string { return formatBreak(pause) }

// Envelope implements Dialect.
func (W3CDialect) Envelope(body string, prosody Prosody) string {
	language := prosody.Language
	if language == "" {
		language = "pt-BR"
	}

	if prosody.Style != "" {
		body = `<emphasis level="` + attrEscaper.Replace(prosody.Style) + `">` + body + `</emphasis>`
	}

	return `<speak version="1.1" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="` +
		attrEscaper.Replace(language) + `"><prosody rate="` + formatRate(prosody.Rate) +
		`" pitch="` + formatPitch(prosody.Pitch) + `"><p>` + body + `</p></prosody></speak>`
}
