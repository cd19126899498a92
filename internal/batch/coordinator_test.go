package batch

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"kleinpdf/internal/common"
	engine "kleinpdf/internal/compression"
	domain "kleinpdf/internal/domain/batch"
	"kleinpdf/internal/domain/compression"
	"kleinpdf/internal/merge"
	"kleinpdf/internal/pdfdoc"
	"kleinpdf/internal/pdfdoc/pdftest"
)

// fakeCompressor reports one progress step per byte and fails on names
// starting with "bad".
type fakeCompressor struct {
	calls []string
}

func (f *fakeCompressor) Compress(file compression.SourceFile, level compression.Level, onProgress compression.ProgressFunc) (*compression.OutputPayload, error) {
	f.calls = append(f.calls, file.Name)
	if strings.HasPrefix(file.Name, "bad") {
		return nil, common.NewDocumentParseError(file.Name, 0, errors.New("no header"))
	}
	n := len(file.Data)
	if n == 0 {
		onProgress(100)
	}
	for i := 0; i < n; i++ {
		onProgress((i + 1) * 100 / n)
	}
	return compression.NewPDFPayload(file.Data[:n/2]), nil
}

type fakeMerger struct {
	err   error
	files []compression.SourceFile
}

func (f *fakeMerger) Merge(files []compression.SourceFile) (*compression.OutputPayload, error) {
	f.files = files
	if f.err != nil {
		return nil, f.err
	}
	return compression.NewPDFPayload([]byte("%PDF-merged")), nil
}

func file(name string, size int) compression.SourceFile {
	return compression.SourceFile{Name: name, Data: make([]byte, size)}
}

func newTestCoordinator(c compression.Compressor, m compression.Merger, opts ...Option) *Coordinator {
	return NewCoordinator(c, m, zap.NewNop().Sugar(), opts...)
}

func TestAccept_TruncatesToCapacity(t *testing.T) {
	existing := []compression.SourceFile{file("1.pdf", 1), file("2.pdf", 1), file("3.pdf", 1)}
	incoming := []compression.SourceFile{file("4.pdf", 1), file("5.pdf", 1), file("6.pdf", 1), file("7.pdf", 1)}

	accepted := Accept(existing, incoming)
	if len(accepted) != common.MaxBatchFiles {
		t.Fatalf("Expected %d files, got %d", common.MaxBatchFiles, len(accepted))
	}
	for i, f := range accepted {
		if want := string(rune('1'+i)) + ".pdf"; f.Name != want {
			t.Errorf("Expected %s at %d, got %s", want, i, f.Name)
		}
	}
	if len(existing) != 3 {
		t.Error("Expected existing slice to be left untouched")
	}
}

func TestNewSession(t *testing.T) {
	c := newTestCoordinator(&fakeCompressor{}, &fakeMerger{})

	files := make([]compression.SourceFile, 8)
	session := c.NewSession(domain.ModeCompress, files)
	if session.ID == "" {
		t.Error("Expected session ID to be set")
	}
	if len(session.Files) != 5 {
		t.Errorf("Expected session to hold 5 files, got %d", len(session.Files))
	}
}

func TestCompress_RejectsOversizedBatch(t *testing.T) {
	compressor := &fakeCompressor{}
	c := newTestCoordinator(compressor, &fakeMerger{})

	session := domain.Session{Files: make([]compression.SourceFile, 6)}
	_, err := c.Compress(session, compression.LevelMedium, nil)

	var sizeErr *common.BatchSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Expected BatchSizeError, got %v", err)
	}
	if sizeErr.Count != 6 || sizeErr.Max != 5 {
		t.Errorf("Expected 6 of 5, got %d of %d", sizeErr.Count, sizeErr.Max)
	}
	if !errors.Is(err, common.ErrBatchSizeExceeded) {
		t.Error("Expected error to wrap ErrBatchSizeExceeded")
	}
	if len(compressor.calls) != 0 {
		t.Errorf("Expected no files processed, got %v", compressor.calls)
	}
}

func TestCompress_EmptySession(t *testing.T) {
	c := newTestCoordinator(&fakeCompressor{}, &fakeMerger{})

	if _, err := c.Compress(domain.Session{}, compression.LevelLow, nil); !errors.Is(err, common.ErrNoFilesProvided) {
		t.Errorf("Expected ErrNoFilesProvided, got %v", err)
	}
}

func TestCompress_InvalidLevel(t *testing.T) {
	c := newTestCoordinator(&fakeCompressor{}, &fakeMerger{})

	session := c.NewSession(domain.ModeCompress, []compression.SourceFile{file("a.pdf", 2)})
	if _, err := c.Compress(session, compression.Level("max"), nil); !errors.Is(err, common.ErrInvalidCompressionLevel) {
		t.Errorf("Expected ErrInvalidCompressionLevel, got %v", err)
	}
}

func TestCompress_PartialFailureKeepsOrder(t *testing.T) {
	compressor := &fakeCompressor{}
	c := newTestCoordinator(compressor, &fakeMerger{})

	session := c.NewSession(domain.ModeCompress, []compression.SourceFile{
		file("a.pdf", 4),
		file("bad.pdf", 4),
		file("c.pdf", 2),
	})

	session, err := c.Compress(session, compression.LevelMedium, nil)
	if err != nil {
		t.Fatalf("Expected no batch error, got %v", err)
	}

	if len(compressor.calls) != 3 {
		t.Errorf("Expected every file to be attempted, got %v", compressor.calls)
	}
	if len(session.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(session.Results))
	}
	if session.Results[0].OriginalName != "a.pdf" || session.Results[1].OriginalName != "c.pdf" {
		t.Errorf("Expected results [a.pdf c.pdf], got [%s %s]", session.Results[0].OriginalName, session.Results[1].OriginalName)
	}
	if session.Results[1].FileIndex != 2 {
		t.Errorf("Expected second result to keep file index 2, got %d", session.Results[1].FileIndex)
	}
	if session.Results[0].DisplayName != "compressed_a.pdf" {
		t.Errorf("Expected display name compressed_a.pdf, got %s", session.Results[0].DisplayName)
	}

	if len(session.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(session.Failures))
	}
	failure := session.Failures[0]
	if failure.FileIndex != 1 || failure.FileName != "bad.pdf" {
		t.Errorf("Expected failure for bad.pdf at 1, got %s at %d", failure.FileName, failure.FileIndex)
	}
	if !errors.Is(failure.Err, common.ErrDocumentParse) {
		t.Errorf("Expected parse failure, got %v", failure.Err)
	}
	var parseErr *common.DocumentParseError
	if !errors.As(failure.Err, &parseErr) {
		t.Fatalf("Expected DocumentParseError, got %T", failure.Err)
	}
	if parseErr.FileIndex != 1 {
		t.Errorf("Expected parse error to name file 1, got %d", parseErr.FileIndex)
	}
	if !strings.Contains(parseErr.Error(), "(file 1)") {
		t.Errorf("Expected message to name file 1, got %q", parseErr.Error())
	}
}

func TestCompress_RealEnginesIsolateCorruptFile(t *testing.T) {
	logger := zap.NewNop().Sugar()
	model := pdfdoc.New(logger)
	c := newTestCoordinator(engine.NewCompressor(model, logger), merge.NewEngine(model, logger))

	session := c.NewSession(domain.ModeCompress, []compression.SourceFile{
		{Name: "a.pdf", Data: pdftest.Build(2)},
		{Name: "junk.pdf", Data: pdftest.Corrupt()},
		{Name: "c.pdf", Data: pdftest.Build(3)},
	})

	session, err := c.Compress(session, compression.LevelHigh, nil)
	if err != nil {
		t.Fatalf("Expected no batch error, got %v", err)
	}

	if len(session.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(session.Results))
	}
	expectedPages := map[string]int{"a.pdf": 2, "c.pdf": 3}
	for _, result := range session.Results {
		pages, err := pdftest.PageCount(result.Payload.Data)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", result.OriginalName, err)
		}
		if pages != expectedPages[result.OriginalName] {
			t.Errorf("Expected %d pages for %s, got %d", expectedPages[result.OriginalName], result.OriginalName, pages)
		}
	}
	if session.Results[0].FileIndex != 0 || session.Results[1].FileIndex != 2 {
		t.Errorf("Expected result indices [0 2], got [%d %d]", session.Results[0].FileIndex, session.Results[1].FileIndex)
	}

	if len(session.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(session.Failures))
	}
	var parseErr *common.DocumentParseError
	if !errors.As(session.Failures[0].Err, &parseErr) {
		t.Fatalf("Expected DocumentParseError, got %v", session.Failures[0].Err)
	}
	if parseErr.FileIndex != 1 || parseErr.FileName != "junk.pdf" {
		t.Errorf("Expected junk.pdf at 1, got %s at %d", parseErr.FileName, parseErr.FileIndex)
	}
	if session.Progress[0] != 100 || session.Progress[1] != 0 || session.Progress[2] != 100 {
		t.Errorf("Expected progress [100 0 100], got %v", session.Progress)
	}
}

func TestCompress_ProgressIsSequential(t *testing.T) {
	c := newTestCoordinator(&fakeCompressor{}, &fakeMerger{})

	session := c.NewSession(domain.ModeCompress, []compression.SourceFile{
		file("a.pdf", 3),
		file("b.pdf", 0),
		file("c.pdf", 2),
	})

	var events []compression.ProgressEvent
	session, err := c.Compress(session, compression.LevelLow, func(e compression.ProgressEvent) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	current, last := 0, 0
	for _, e := range events {
		if e.FileIndex < current {
			t.Fatalf("Progress for file %d arrived after file %d started", e.FileIndex, current)
		}
		if e.FileIndex > current {
			if last != 100 {
				t.Errorf("Expected file %d to reach 100 before file %d, got %d", current, e.FileIndex, last)
			}
			current = e.FileIndex
		}
		last = e.Percent
	}
	if current != 2 {
		t.Errorf("Expected events for all three files, last index %d", current)
	}

	for i, p := range session.Progress {
		if p != 100 {
			t.Errorf("Expected file %d progress 100, got %d", i, p)
		}
	}
}

func TestCompress_TotalsAndRerun(t *testing.T) {
	c := newTestCoordinator(&fakeCompressor{}, &fakeMerger{})

	session := c.NewSession(domain.ModeCompress, []compression.SourceFile{file("a.pdf", 10), file("b.pdf", 30)})
	session, err := c.Compress(session, compression.LevelHigh, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	totals := session.Totals()
	if totals.OriginalSize != 40 || totals.OutputSize != 20 {
		t.Errorf("Expected 40 -> 20 bytes, got %d -> %d", totals.OriginalSize, totals.OutputSize)
	}
	if totals.CompressionRatio != 50 || totals.BytesSaved() != 20 {
		t.Errorf("Expected 50%% and 20 bytes saved, got %v%% and %d", totals.CompressionRatio, totals.BytesSaved())
	}

	session, err = c.Compress(session, compression.LevelHigh, nil)
	if err != nil {
		t.Fatalf("Expected no error on rerun, got %v", err)
	}
	if len(session.Results) != 2 {
		t.Errorf("Expected rerun to replace results, got %d", len(session.Results))
	}
}

func TestMerge_SetsMergedOutput(t *testing.T) {
	merger := &fakeMerger{}
	clock := func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	c := newTestCoordinator(&fakeCompressor{}, merger, WithClock(clock))

	session := c.NewSession(domain.ModeMerge, []compression.SourceFile{file("a.pdf", 1), file("b.pdf", 1)})

	var events []compression.ProgressEvent
	session, err := c.Merge(session, func(e compression.ProgressEvent) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.Merged == nil {
		t.Fatal("Expected merged output")
	}
	if session.Merged.Name != "merged_20240309140507.pdf" {
		t.Errorf("Expected merged_20240309140507.pdf, got %s", session.Merged.Name)
	}
	if session.Mode != domain.ModeMerge {
		t.Errorf("Expected merge mode, got %s", session.Mode)
	}
	if len(merger.files) != 2 || merger.files[0].Name != "a.pdf" {
		t.Errorf("Expected the whole list in order, got %v", merger.files)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 progress events, got %d", len(events))
	}
	for i, e := range events {
		if e.FileIndex != i || e.Percent != 100 {
			t.Errorf("Expected {%d 100}, got %+v", i, e)
		}
	}
}

func TestMerge_FailureLeavesNoOutput(t *testing.T) {
	mergeErr := common.NewDocumentParseError("b.pdf", 1, errors.New("eof"))
	c := newTestCoordinator(&fakeCompressor{}, &fakeMerger{err: mergeErr})

	session := c.NewSession(domain.ModeMerge, []compression.SourceFile{file("a.pdf", 1), file("b.pdf", 1)})

	called := false
	session, err := c.Merge(session, func(compression.ProgressEvent) { called = true })
	if !errors.Is(err, common.ErrDocumentParse) {
		t.Errorf("Expected parse error, got %v", err)
	}
	if session.Merged != nil {
		t.Error("Expected no merged output")
	}
	if called {
		t.Error("Expected no progress after a failed merge")
	}
}

func TestMerge_RespectsCapacity(t *testing.T) {
	merger := &fakeMerger{}
	c := newTestCoordinator(&fakeCompressor{}, merger, WithMaxFiles(2))

	_, err := c.Merge(domain.Session{Files: make([]compression.SourceFile, 3)}, nil)
	if !errors.Is(err, common.ErrBatchSizeExceeded) {
		t.Errorf("Expected ErrBatchSizeExceeded, got %v", err)
	}
	if merger.files != nil {
		t.Error("Expected merger not to be called")
	}
}
