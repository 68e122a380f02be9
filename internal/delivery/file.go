package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/tts/ttsutils"
	"github.com/spf13/afero"
)

const (
	digestFile          = "digests.html"
	digestSeparator     = "\n\n<hr/>\n\n"
	filePermissions     = 0o644
	dirPermissions      = 0o750
	digestTimestampForm = time.RFC3339
)

// Static errors.
var (
	ErrEmptyDir         = errors.New("output directory cannot be empty")
	ErrNotAudioFilename = errors.New("bulletin filename is not an audio file")
)

// FileSink writes bulletins and digests to a directory.
type FileSink struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewFileSink creates a sink rooted at dir on fs.
func NewFileSink(fs afero.Fs, dir string) (*FileSink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrEmptyDir
	}

	return &FileSink{fs: fs, dir: dir, now: time.Now}, nil
}

// Name implements Sink.
func (f *FileSink) Name() string {
	return "file"
}

// SendText appends the digest to digests.html.
func (f *FileSink) SendText(_ context.Context, text string) error {
	err := f.fs.MkdirAll(f.dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("create output directory %s: %w", f.dir, err)
	}

	path := filepath.Join(f.dir, digestFile)

	file, err := f.fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	_, writeErr := fmt.Fprintf(file, "<!-- %s -->\n%s%s", f.now().Format(digestTimestampForm), text, digestSeparator)
	closeErr := file.Close()

	if writeErr != nil || closeErr != nil {
		return fmt.Errorf("write %s: %w", path, errors.Join(writeErr, closeErr))
	}

	return nil
}

// SendAudio writes the bulletin audio under its filename, replacing an older file.
func (f *FileSink) SendAudio(_ context.Context, bulletin core.Bulletin) error {
	if !ttsutils.IsValidAudioFile(bulletin.Filename) {
		return fmt.Errorf("%w: %q", ErrNotAudioFilename, bulletin.Filename)
	}

	err := f.fs.MkdirAll(f.dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("create output directory %s: %w", f.dir, err)
	}

	path := filepath.Join(f.dir, filepath.Base(bulletin.Filename))

	err = afero.WriteFile(f.fs, path, bulletin.Audio, filePermissions)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
