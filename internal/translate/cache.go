package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/book-expert/bulletin-service/internal/core"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrTranslatorNil indicates a cache without an underlying translator.
var ErrTranslatorNil = errors.New("translator cannot be nil")

// Cached memoizes successful translations in a bounded LRU cache.
type Cached struct {
	next  core.Translator
	cache *lru.Cache[string, string]
}

// NewCached wraps next with a cache of size entries.
func NewCached(next core.Translator, size int) (*Cached, error) {
	if next == nil {
		return nil, ErrTranslatorNil
	}

	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create translation cache: %w", err)
	}

	return &Cached{next: next, cache: cache}, nil
}

// Translate implements core.Translator. Failures are not cached.
func (c *Cached) Translate(ctx context.Context, text string) (string, error) {
	if translated, ok := c.cache.Get(text); ok {
		return translated, nil
	}

	translated, err := c.next.Translate(ctx, text)
	if err != nil {
		return "", err
	}

	c.cache.Add(text, translated)

	return translated, nil
}

// Len returns the number of cached translations.
func (c *Cached) Len() int {
	return c.cache.Len()
}
