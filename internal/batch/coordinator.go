// Package batch runs the compression and merge engines over a session of
// files, one file at a time.
package batch

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"kleinpdf/internal/common"
	domain "kleinpdf/internal/domain/batch"
	"kleinpdf/internal/domain/compression"
)

// Option configures a Coordinator
type Option func(*Coordinator)

// WithMaxFiles overrides the batch capacity
func WithMaxFiles(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxFiles = n
		}
	}
}

// WithClock overrides the time source used to name merged documents
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// Coordinator drives the engines over a batch session
type Coordinator struct {
	compressor compression.Compressor
	merger     compression.Merger
	logger     *zap.SugaredLogger
	maxFiles   int
	now        func() time.Time
}

var _ domain.Runner = (*Coordinator)(nil)

// NewCoordinator creates a new batch coordinator
func NewCoordinator(compressor compression.Compressor, merger compression.Merger, logger *zap.SugaredLogger, opts ...Option) *Coordinator {
	c := &Coordinator{
		compressor: compressor,
		merger:     merger,
		logger:     logger,
		maxFiles:   common.MaxBatchFiles,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxFiles returns the batch capacity
func (c *Coordinator) MaxFiles() int {
	return c.maxFiles
}

// NewSession starts a session over files. Files beyond the capacity are
// dropped.
func (c *Coordinator) NewSession(mode domain.Mode, files []compression.SourceFile) domain.Session {
	return domain.Session{
		ID:    common.GenerateUUID(),
		Mode:  mode,
		Files: acceptN(nil, files, c.maxFiles),
	}
}

// Accept appends incoming to existing and keeps the first MaxBatchFiles.
func Accept(existing, incoming []compression.SourceFile) []compression.SourceFile {
	return acceptN(existing, incoming, common.MaxBatchFiles)
}

func acceptN(existing, incoming []compression.SourceFile, max int) []compression.SourceFile {
	all := make([]compression.SourceFile, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)
	if len(all) > max {
		all = all[:max]
	}
	return all
}

func (c *Coordinator) validate(session domain.Session) error {
	if len(session.Files) == 0 {
		return common.ErrNoFilesProvided
	}
	if len(session.Files) > c.maxFiles {
		return &common.BatchSizeError{Count: len(session.Files), Max: c.maxFiles}
	}
	return nil
}

// reset clears the outputs of a previous run and sizes the progress slice.
func reset(session domain.Session) domain.Session {
	session.Progress = make([]int, len(session.Files))
	session.Results = nil
	session.Failures = nil
	session.Merged = nil
	return session
}

// Compress runs the compression engine over each file in order. A failing
// file is recorded and skipped; the rest of the batch still runs.
func (c *Coordinator) Compress(session domain.Session, level compression.Level, onProgress compression.ProgressSink) (domain.Session, error) {
	if err := c.validate(session); err != nil {
		return session, err
	}
	if !level.Valid() {
		return session, common.ErrInvalidCompressionLevel
	}
	if onProgress == nil {
		onProgress = func(compression.ProgressEvent) {}
	}

	session = reset(session)
	session.Mode = domain.ModeCompress

	for i, file := range session.Files {
		report := func(percent int) {
			session.Progress[i] = percent
			onProgress(compression.ProgressEvent{FileIndex: i, Percent: percent})
		}

		payload, err := c.compressor.Compress(file, level, report)
		if err != nil {
			var parseErr *common.DocumentParseError
			if errors.As(err, &parseErr) {
				parseErr.FileIndex = i
			}
			c.logger.Warnw("Failed to compress file",
				"session", session.ID,
				"file", file.Name,
				"index", i,
				"error", err)
			session.Failures = append(session.Failures, domain.Failure{
				FileIndex: i,
				FileName:  file.Name,
				Err:       err,
			})
			continue
		}

		session.Results = append(session.Results, compression.BatchResultItem{
			ID:           common.GenerateUUID(),
			FileIndex:    i,
			OriginalName: file.Name,
			OriginalSize: file.Size(),
			DisplayName:  common.CompressedFileName(file.Name),
			OutputSize:   payload.Size(),
			Payload:      payload,
		})
	}

	totals := session.Totals()
	c.logger.Infow("Compression batch finished",
		"session", session.ID,
		"level", level,
		"files", len(session.Files),
		"succeeded", len(session.Results),
		"failed", len(session.Failures),
		"bytes_saved", totals.BytesSaved())

	return session, nil
}

// Merge hands the whole list to the merge engine. On failure the session
// carries no merged output.
func (c *Coordinator) Merge(session domain.Session, onProgress compression.ProgressSink) (domain.Session, error) {
	if err := c.validate(session); err != nil {
		return session, err
	}
	if onProgress == nil {
		onProgress = func(compression.ProgressEvent) {}
	}

	session = reset(session)
	session.Mode = domain.ModeMerge

	payload, err := c.merger.Merge(session.Files)
	if err != nil {
		c.logger.Errorw("Failed to merge files",
			"session", session.ID,
			"files", len(session.Files),
			"error", err)
		return session, err
	}

	session.Merged = &domain.MergedOutput{
		ID:         common.GenerateUUID(),
		Name:       common.MergedFileName(c.now()),
		OutputSize: payload.Size(),
		Payload:    payload,
	}

	for i := range session.Files {
		session.Progress[i] = common.CompletedProgressPercent
		onProgress(compression.ProgressEvent{FileIndex: i, Percent: common.CompletedProgressPercent})
	}

	c.logger.Infow("Merge batch finished",
		"session", session.ID,
		"files", len(session.Files),
		"name", session.Merged.Name,
		"merged_size", session.Merged.OutputSize)

	return session, nil
}
