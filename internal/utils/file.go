package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempArtifactPrefix is the file name prefix of staged frames
const TempArtifactPrefix = "temp_capture"

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// TempArtifactPath returns a unique path for a staged frame inside dir
func TempArtifactPath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.jpg", TempArtifactPrefix, uuid.NewString()))
}

// RemoveQuietly deletes path and ignores any error
func RemoveQuietly(path string) {
	_ = os.Remove(path)
}

// SnapshotFilename returns the output path of an annotated frame taken at t
func SnapshotFilename(outputDir string, t time.Time, format string) string {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" || format == "jpeg" {
		format = "jpg"
	}
	name := fmt.Sprintf("capture_%s.%s", t.Format("20060102_150405.000"), format)
	return filepath.Join(outputDir, SanitizeFilename(name))
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	// Replace invalid characters with underscores
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	// Remove leading/trailing spaces and dots
	result = strings.Trim(result, " .")

	return result
}
