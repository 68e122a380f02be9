// Package ttsutils provides file naming and display helpers shared by the renderer and
// the delivery sinks.
package ttsutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/book-expert/bulletin-service/internal/tts/audio"
	"github.com/gosimple/slug"
)

// Naming constants.
const (
	defaultDirPermissions = 0o750
	dot                   = "."
	bulletinSuffix        = "_boletim"
	fallbackSlug          = "fonte"
)

// Display units.
const (
	sizeStep       = 1024
	sizeUnits      = "KMG"
	formatSize     = "%.1f %cB"
	formatBytes    = "%d B"
	formatSeconds  = "%ds"
	formatMinutes  = "%dm %02ds"
	formatHours    = "%dh %02dm"
	textExtensions = ".txt .md .html .htm"
)

const errFmtFailedToCreateDir = "failed to create directory %s: %w"

// ErrNotDirectory is returned by EnsureDir for a path occupied by a file.
var ErrNotDirectory = errors.New("path exists and is not a directory")

// EnsureDir creates the output directory and its parents when missing. A path that
// exists but is not a directory is an error.
func EnsureDir(path string) error {
	info, statErr := os.Stat(path)
	if statErr == nil {
		if !info.IsDir() {
			return fmt.Errorf(errFmtFailedToCreateDir, path, ErrNotDirectory)
		}

		return nil
	}

	mkdirErr := os.MkdirAll(path, defaultDirPermissions)
	if mkdirErr != nil {
		return fmt.Errorf(errFmtFailedToCreateDir, path, mkdirErr)
	}

	return nil
}

// SourceSlug returns a filesystem and object-key safe form of a source name.
func SourceSlug(source string) string {
	slugged := slug.Make(source)
	if slugged == "" {
		return fallbackSlug
	}

	return slugged
}

// BulletinFilename returns the delivery filename of a source's bulletin,
// e.g. "g1_boletim.mp3". The extension includes its dot.
func BulletinFilename(source, extension string) string {
	if extension != "" && !strings.HasPrefix(extension, dot) {
		extension = dot + extension
	}

	return SourceSlug(source) + bulletinSuffix + extension
}

// FormatDuration renders a playback length rounded to the second: "45s", "5m 07s",
// "1h 15m".
func FormatDuration(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)

	switch {
	case seconds < 60:
		return fmt.Sprintf(formatSeconds, seconds)
	case seconds < 3600:
		return fmt.Sprintf(formatMinutes, seconds/60, seconds%60)
	default:
		return fmt.Sprintf(formatHours, seconds/3600, seconds%3600/60)
	}
}

// FormatFileSize renders a byte count with a binary unit: "500 B", "2.0 KB", "1.5 MB".
func FormatFileSize(bytes int64) string {
	if bytes < sizeStep {
		return fmt.Sprintf(formatBytes, bytes)
	}

	value := float64(bytes) / sizeStep
	unit := 0

	for value >= sizeStep && unit < len(sizeUnits)-1 {
		value /= sizeStep
		unit++
	}

	return fmt.Sprintf(formatSize, value, sizeUnits[unit])
}

// IsValidAudioFile reports whether filename carries the extension of a supported
// bulletin format.
func IsValidAudioFile(filename string) bool {
	ext := GetFileExtension(filename)
	if ext == "" {
		return false
	}

	_, err := audio.ParseFormat(ext)

	return err == nil
}

// IsValidTextFile reports whether the preview command can read filename.
func IsValidTextFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))

	return ext != "" && slices.Contains(strings.Fields(textExtensions), ext)
}

// GetFileExtension returns the file extension without the leading dot.
func GetFileExtension(filename string) string {
	return strings.TrimPrefix(filepath.Ext(filename), dot)
}
