package ledger_test

import (
	"testing"

	"github.com/book-expert/bulletin-service/internal/ledger"
	"github.com/book-expert/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPath = "/state/seen.json"

func newTestLedger(t *testing.T, fs afero.Fs) *ledger.Ledger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	t.Cleanup(func() { _ = log.Close() })

	store, err := ledger.New(fs, testPath, log)
	require.NoError(t, err)

	return store
}

func TestItemID(t *testing.T) {
	t.Parallel()

	byLink := ledger.ItemID("", "https://g1.globo.com/a", "Título")
	assert.Len(t, byLink, 40)
	assert.Equal(t, byLink, ledger.ItemID("  ", "https://g1.globo.com/a", "Outro título"))
	assert.NotEqual(t, byLink, ledger.ItemID("guid-1", "https://g1.globo.com/a", "Título"))
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", ledger.ItemID("", "", ""))
	assert.Equal(t, "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3", ledger.ItemID("", "", "test"))
}

func TestNew_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := ledger.New(afero.NewMemMapFs(), " ", nil)
	require.ErrorIs(t, err, ledger.ErrEmptyPath)
}

func TestLedger_LoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestLedger(t, afero.NewMemMapFs())

	require.NoError(t, store.Load())
	assert.Zero(t, store.Len())
}

func TestLedger_LoadCorruptFileIsEmpty(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testPath, []byte("{not json"), 0o600))

	store := newTestLedger(t, fs)

	require.NoError(t, store.Load())
	assert.Zero(t, store.Len())
}

func TestLedger_SaveAndReload(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := newTestLedger(t, fs)

	store.Add("b")
	store.Add("a")
	store.Add("b")
	require.NoError(t, store.Save())

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))
	assert.Equal(t, `["a","b"]`, string(data), "ids are saved sorted")

	exists, err := afero.Exists(fs, testPath+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	reloaded := newTestLedger(t, fs)
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.Has("a"))
	assert.True(t, reloaded.Has("b"))
	assert.False(t, reloaded.Has("c"))
}

func TestLedger_SaveBestEffortSwallowsErrors(t *testing.T) {
	t.Parallel()

	store := newTestLedger(t, afero.NewReadOnlyFs(afero.NewMemMapFs()))
	store.Add("a")

	require.Error(t, store.Save())
	assert.NotPanics(t, store.SaveBestEffort)
}
