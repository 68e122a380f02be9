package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/book-expert/bulletin-service/internal/core"
	"gopkg.in/yaml.v3"
)

// Static errors.
var (
	ErrNoSources     = errors.New("source catalog has no feeds")
	ErrUnknownSource = errors.New("unknown source")
)

const defaultSourceLanguage = "pt"

// Catalog is the YAML source catalog.
type Catalog struct {
	// LimitPerSource and MinCharsToSummarize override [run] when set.
	LimitPerSource      int           `yaml:"limit_per_source"`
	MinCharsToSummarize int           `yaml:"min_chars_to_summarize"`
	Feeds               []core.Source `yaml:"feeds"`
}

// LoadSources reads and validates the catalog file.
func LoadSources(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source catalog %s: %w", path, err)
	}

	return ParseSources(data)
}

// ParseSources decodes a catalog. Feeds without a name or URLs are rejected; a missing
// language defaults to "pt".
func ParseSources(data []byte) (*Catalog, error) {
	var catalog Catalog

	err := yaml.Unmarshal(data, &catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source catalog: %w", err)
	}

	if len(catalog.Feeds) == 0 {
		return nil, ErrNoSources
	}

	var errs []error

	for i := range catalog.Feeds {
		feed := &catalog.Feeds[i]
		feed.Name = strings.TrimSpace(feed.Name)

		if feed.Name == "" {
			errs = append(errs, fmt.Errorf("%w: feed %d has no name", ErrInvalidConfig, i+1))
		}

		if len(feed.URLs) == 0 {
			errs = append(errs, fmt.Errorf("%w: feed %q has no urls", ErrInvalidConfig, feed.Name))
		}

		if strings.TrimSpace(feed.Language) == "" {
			feed.Language = defaultSourceLanguage
		}
	}

	err = errors.Join(errs...)
	if err != nil {
		return nil, err
	}

	return &catalog, nil
}

// Apply copies catalog-level overrides into the run settings.
func (c *Catalog) Apply(run *RunConfig) {
	if c.LimitPerSource > 0 {
		run.LimitPerSource = c.LimitPerSource
	}

	if c.MinCharsToSummarize > 0 {
		run.MinCharsToSummarize = c.MinCharsToSummarize
	}
}

// SelectSources returns the feeds named in names, in catalog order. Names match case
// insensitively; an empty list selects every feed.
func SelectSources(feeds []core.Source, names []string) ([]core.Source, error) {
	if len(names) == 0 {
		return feeds, nil
	}

	found := make(map[string]bool, len(names))
	for _, name := range names {
		found[strings.ToLower(strings.TrimSpace(name))] = false
	}

	var selected []core.Source

	for _, feed := range feeds {
		key := strings.ToLower(feed.Name)
		if _, ok := found[key]; ok {
			found[key] = true
			selected = append(selected, feed)
		}
	}

	var errs []error

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if !found[key] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownSource, name))
			found[key] = true
		}
	}

	return selected, errors.Join(errs...)
}
