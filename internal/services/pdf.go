package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"kleinpdf/internal/common"
	"kleinpdf/internal/domain/compression"
)

// EngineName identifies the PDF library behind the engines.
const EngineName = "pdfcpu"

var errNotPDF = errors.New("not a .pdf file")

// PDFService moves PDF bytes between the filesystem and the engines
type PDFService struct {
	workingDir string
	logger     *zap.SugaredLogger
}

// NewPDFService creates a new PDF service rooted at workingDir
func NewPDFService(workingDir string, logger *zap.SugaredLogger) *PDFService {
	return &PDFService{
		workingDir: workingDir,
		logger:     logger,
	}
}

// WorkingDir returns the directory result payloads are written to
func (s *PDFService) WorkingDir() string {
	return s.workingDir
}

// ReadFiles loads the files at paths in order. Only .pdf paths are read.
func (s *PDFService) ReadFiles(paths []string) ([]compression.SourceFile, error) {
	files := make([]compression.SourceFile, 0, len(paths))
	for _, p := range paths {
		if !common.IsPDFName(p) {
			return nil, common.NewCompressionError("read", p, errNotPDF)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, common.NewCompressionError("read", p, err)
		}
		files = append(files, compression.SourceFile{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// WritePayload stores a payload under the working directory and returns its
// path. Each result gets its own directory so names never collide.
func (s *PDFService) WritePayload(id, name string, payload *compression.OutputPayload) (string, error) {
	dir := filepath.Join(s.workingDir, id)
	if err := os.MkdirAll(dir, common.DefaultFilePermissions); err != nil {
		return "", common.NewCompressionError("write", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, payload.Data, 0644); err != nil {
		return "", common.NewCompressionError("write", path, err)
	}

	s.logger.Debugw("Wrote result", "path", path, "size", payload.Size())
	return path, nil
}

// SaveToFolder copies a written result into folder under name.
func (s *PDFService) SaveToFolder(tempPath, folder, name string) (string, error) {
	if folder == "" {
		return "", fmt.Errorf("no destination folder")
	}
	dst := filepath.Join(folder, filepath.Base(name))
	if err := common.CopyFile(tempPath, dst); err != nil {
		return "", common.NewCompressionError("save", dst, err)
	}
	return dst, nil
}

// CleanupOldTempFiles removes result directories older than maxAge. Errors
// are logged and skipped.
func (s *PDFService) CleanupOldTempFiles(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.workingDir)
	if err != nil {
		s.logger.Warnw("Failed to list working directory", "dir", s.workingDir, "error", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.workingDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warnw("Failed to remove old result", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Infow("Removed old results", "count", removed)
	}
	return removed
}
