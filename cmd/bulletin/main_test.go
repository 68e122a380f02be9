package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func TestPreview_ReportsChunksAndPayloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "script.txt")
	section := strings.Repeat("A Apple lançou um produto novo hoje. ", 60)
	require.NoError(t, os.WriteFile(path, []byte(section+"¦ "+section+"¦ Até a próxima edição."), 0o600))

	output, err := executeCommand(t, "preview", path, "--names", "Apple")
	require.NoError(t, err)

	assert.Contains(t, output, "chunk 1:")
	assert.Contains(t, output, "markup budget 4800 bytes")
	assert.NotContains(t, output, "escalated")
	assert.NotContains(t, output, "oversized")
}

func TestPreview_RejectsNonTextFiles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o600))

	_, err := executeCommand(t, "preview", path)
	require.ErrorIs(t, err, ErrUnsupportedTextFile)
}

func TestRun_FailsOnMissingConfigFile(t *testing.T) {
	t.Parallel()

	_, err := executeCommand(t, "run", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
