// Package core defines the shared types and collaborator interfaces for the bulletin service.
package core

import "context"

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// SpeechBackend synthesizes one markup payload with a specific voice.
// Implementations differ in markup budget and envelope dialect.
type SpeechBackend interface {
	Synthesize(ctx context.Context, markup, voice string) ([]byte, error)
}

// Translator turns text into the narration language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Summarizer reduces an article body to a handful of sentences.
type Summarizer interface {
	Summarize(ctx context.Context, text, language string) (string, error)
}

// FeedReader fetches and parses the entries of one feed URL.
type FeedReader interface {
	Fetch(ctx context.Context, url string) ([]Entry, error)
}

// Extractor returns the readable body text of a web page.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Deliverer hands finished digests and bulletins to their audience.
type Deliverer interface {
	SendText(ctx context.Context, text string) error
	SendAudio(ctx context.Context, bulletin Bulletin) error
}
