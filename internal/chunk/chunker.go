package chunk

import (
	"errors"
	"fmt"
)

// ErrInvalidBudget is returned when a chunker is built with a non-positive byte budget.
var ErrInvalidBudget = errors.New("byte budget must be positive")

// Chunker splits raw script text into pieces under a raw-text byte budget,
// preferring section boundaries and falling back to sentence boundaries.
type Chunker struct {
	maxBytes int
}

// NewChunker creates a chunker for the given raw-text byte budget.
func NewChunker(maxBytes int) (*Chunker, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBudget, maxBytes)
	}

	return &Chunker{maxBytes: maxBytes}, nil
}

// MaxBytes returns the configured budget.
func (c *Chunker) MaxBytes() int {
	return c.maxBytes
}

// Chunk returns the ordered pieces of text. Empty input yields no pieces.
func (c *Chunker) Chunk(text string) []Piece {
	return Pack(text, c.maxBytes, ByteSize, SectionLevel, SentenceLevel)
}
