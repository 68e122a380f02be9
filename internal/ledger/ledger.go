// Package ledger persists the identifiers of news items that were already delivered.
package ledger

import (
	"crypto/sha1" // #nosec G505 -- identifier hashing, not a security boundary
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/book-expert/logger"
	"github.com/spf13/afero"
)

const (
	defaultFilePermissions = 0o600
	defaultDirPermissions  = 0o750
	tempSuffix             = ".tmp"
)

// ErrEmptyPath indicates a ledger without a backing file.
var ErrEmptyPath = errors.New("ledger path cannot be empty")

// ItemID derives a stable identifier from the first non-empty of the external id, the
// link and the title.
func ItemID(externalID, link, title string) string {
	key := ""

	for _, candidate := range []string{externalID, link, title} {
		if strings.TrimSpace(candidate) != "" {
			key = candidate

			break
		}
	}

	sum := sha1.Sum([]byte(key)) // #nosec G401

	return hex.EncodeToString(sum[:])
}

// Ledger is an insert-only set of item identifiers backed by a JSON array file.
// It is loaded once at the start of a run and saved once at the end.
type Ledger struct {
	fs   afero.Fs
	path string
	ids  map[string]struct{}
	log  *logger.Logger
}

// New creates an empty ledger stored at path on fs.
func New(fs afero.Fs, path string, log *logger.Logger) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	return &Ledger{fs: fs, path: path, ids: make(map[string]struct{}), log: log}, nil
}

// Has reports whether id was recorded.
func (l *Ledger) Has(id string) bool {
	_, ok := l.ids[id]

	return ok
}

// Add records id.
func (l *Ledger) Add(id string) {
	l.ids[id] = struct{}{}
}

// Len returns the number of recorded ids.
func (l *Ledger) Len() int {
	return len(l.ids)
}

// Load reads the ledger file. A missing file yields an empty set; a corrupt file is
// logged and treated as empty. Only read failures are returned.
func (l *Ledger) Load() error {
	data, err := afero.ReadFile(l.fs, l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read ledger %s: %w", l.path, err)
	}

	var ids []string

	unmarshalErr := json.Unmarshal(data, &ids)
	if unmarshalErr != nil {
		l.log.Warn("Ledger %s is corrupt, starting empty: %v", l.path, unmarshalErr)

		return nil
	}

	for _, id := range ids {
		l.ids[id] = struct{}{}
	}

	return nil
}

// Save overwrites the ledger file with the sorted ids, through a temp file and rename.
func (l *Ledger) Save() error {
	ids := make([]string, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)

	mkdirErr := l.fs.MkdirAll(dir, defaultDirPermissions)
	if mkdirErr != nil {
		return fmt.Errorf("failed to create ledger directory %s: %w", dir, mkdirErr)
	}

	tempPath := l.path + tempSuffix

	writeErr := afero.WriteFile(l.fs, tempPath, data, defaultFilePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to write ledger %s: %w", tempPath, writeErr)
	}

	renameErr := l.fs.Rename(tempPath, l.path)
	if renameErr != nil {
		return fmt.Errorf("failed to replace ledger %s: %w", l.path, renameErr)
	}

	return nil
}

// SaveBestEffort saves the ledger and logs any failure instead of returning it.
func (l *Ledger) SaveBestEffort() {
	err := l.Save()
	if err != nil {
		l.log.Error("Failed to persist ledger, items may be repeated next run: %v", err)

		return
	}

	l.log.Info("Ledger saved with %d item(s) to %s", len(l.ids), l.path)
}
