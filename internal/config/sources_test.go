package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/book-expert/bulletin-service/internal/config"
	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
limit_per_source: 6
feeds:
  - name: G1
    lang: pt
    urls:
      - https://g1.globo.com/rss/g1/
  - name: " BBC News "
    lang: en
    limit: 3
    urls:
      - https://feeds.bbci.co.uk/news/rss.xml
      - https://feeds.bbci.co.uk/news/world/rss.xml
  - name: Folha
    urls:
      - https://feeds.folha.uol.com.br/emcimadahora/rss091.xml
`

func TestLoadSources(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	catalog, err := config.LoadSources(path)
	require.NoError(t, err)

	require.Len(t, catalog.Feeds, 3)
	assert.Equal(t, "G1", catalog.Feeds[0].Name)
	assert.Equal(t, "BBC News", catalog.Feeds[1].Name)
	assert.Equal(t, "en", catalog.Feeds[1].Language)
	assert.Equal(t, 3, catalog.Feeds[1].Limit)
	assert.Len(t, catalog.Feeds[1].URLs, 2)
	assert.Equal(t, "pt", catalog.Feeds[2].Language)

	run := config.RunConfig{LimitPerSource: 8, MinCharsToSummarize: 700}
	catalog.Apply(&run)
	assert.Equal(t, 6, run.LimitPerSource)
	assert.Equal(t, 700, run.MinCharsToSummarize)
}

func TestParseSources_Invalid(t *testing.T) {
	t.Parallel()

	_, err := config.ParseSources([]byte("feeds: []\n"))
	require.ErrorIs(t, err, config.ErrNoSources)

	_, err = config.ParseSources([]byte("feeds:\n  - name: X\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = config.ParseSources([]byte("feeds: [\n"))
	require.Error(t, err)
}

func TestSelectSources(t *testing.T) {
	t.Parallel()

	feeds := []core.Source{{Name: "G1"}, {Name: "BBC News"}, {Name: "Folha"}}

	all, err := config.SelectSources(feeds, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	selected, err := config.SelectSources(feeds, []string{"folha", " bbc news "})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "BBC News", selected[0].Name)
	assert.Equal(t, "Folha", selected[1].Name)

	_, err = config.SelectSources(feeds, []string{"G1", "CNN", "cnn"})
	require.ErrorIs(t, err, config.ErrUnknownSource)
	assert.Equal(t, 1, strings.Count(err.Error(), "unknown source"))
}
