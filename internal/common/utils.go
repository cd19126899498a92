package common

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Batch constants
	MaxBatchFiles = 5

	// Naming constants
	CompressedFilePrefix  = "compressed_"
	MergedFilePrefix      = "merged_"
	MergedTimestampFormat = "20060102150405"

	// Progress constants
	CompletedProgressPercent = 100

	// File operation constants
	DefaultFilePermissions = 0755

	// Event names
	EventFileProgress  = "file:progress"
	EventFileCompleted = "file:completed"
	EventFileFailed    = "file:failed"
	EventBatchProgress = "batch:progress"
	EventStatsUpdate   = "stats:update"
)

// GenerateUUID generates a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// CompressedFileName returns the display name of a compressed result.
func CompressedFileName(original string) string {
	return CompressedFilePrefix + filepath.Base(original)
}

// MergedFileName returns the name of a merged output created at t. The
// timestamp carries no separators, e.g. merged_20240131093005.pdf.
func MergedFileName(t time.Time) string {
	return MergedFilePrefix + t.Format(MergedTimestampFormat) + ".pdf"
}

// IsPDFName reports whether name carries a .pdf extension.
func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// CopyFile copies src to dst, creating the destination directory if needed.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destDir := filepath.Dir(dst)
	if err := os.MkdirAll(destDir, DefaultFilePermissions); err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
