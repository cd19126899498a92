package batch

import (
	"kleinpdf/internal/domain/compression"
)

// Mode selects what a session does with its files.
type Mode string

const (
	ModeCompress Mode = "compress"
	ModeMerge    Mode = "merge"
)

// Failure is the per-file error indicator of a compression batch.
type Failure struct {
	FileIndex int    `json:"file_index"`
	FileName  string `json:"file_name"`
	Err       error  `json:"-"`
}

// MergedOutput is the single result of a merge session.
type MergedOutput struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	OutputSize int64                      `json:"output_size"`
	Payload    *compression.OutputPayload `json:"-"`
}

// Session is the explicit state of one batch. Coordinator calls take a
// session by value and return the updated copy.
type Session struct {
	ID       string                        `json:"id"`
	Mode     Mode                          `json:"mode"`
	Files    []compression.SourceFile      `json:"files"`
	Progress []int                         `json:"progress"`
	Results  []compression.BatchResultItem `json:"results"`
	Failures []Failure                     `json:"failures"`
	Merged   *MergedOutput                 `json:"merged,omitempty"`
}

// Service defines the batch operations exposed to the transport layer.
type Service interface {
	Compress(session Session, level compression.Level, onProgress compression.ProgressSink) (Session, error)
	Merge(session Session, onProgress compression.ProgressSink) (Session, error)
}

// Totals summarizes the successful results of a compression session.
type Totals struct {
	Files            int     `json:"files"`
	OriginalSize     int64   `json:"original_size"`
	OutputSize       int64   `json:"output_size"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// Totals adds up sizes across the session's results.
func (s Session) Totals() Totals {
	var t Totals
	for _, r := range s.Results {
		t.Files++
		t.OriginalSize += r.OriginalSize
		t.OutputSize += r.OutputSize
	}
	if t.OriginalSize > 0 {
		t.CompressionRatio = float64(t.OriginalSize-t.OutputSize) / float64(t.OriginalSize) * 100
	}
	return t
}

// BytesSaved is the total size reduction, never negative.
func (t Totals) BytesSaved() int64 {
	if t.OutputSize >= t.OriginalSize {
		return 0
	}
	return t.OriginalSize - t.OutputSize
}

// Runner is a Service that also opens sessions.
type Runner interface {
	Service
	NewSession(mode Mode, files []compression.SourceFile) Session
	MaxFiles() int
}
