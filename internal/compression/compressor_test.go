package compression

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"kleinpdf/internal/common"
	domain "kleinpdf/internal/domain/compression"
	"kleinpdf/internal/pdfdoc"
	"kleinpdf/internal/pdfdoc/pdftest"
)

type fakeDocument struct {
	name  string
	pages int
}

func (d *fakeDocument) Name() string   { return d.name }
func (d *fakeDocument) PageCount() int { return d.pages }

// fakeModel treats the byte length of a file as its page count and fails to
// parse files named bad.pdf.
type fakeModel struct {
	applied      []int
	serializeErr error
	serializedAs domain.DirectiveSet
}

func (m *fakeModel) Parse(file domain.SourceFile) (domain.Document, error) {
	if file.Name == "bad.pdf" {
		return nil, errors.New("no header")
	}
	return &fakeDocument{name: file.Name, pages: len(file.Data)}, nil
}

func (m *fakeModel) NewDocument(name string) domain.Document {
	return &fakeDocument{name: name}
}

func (m *fakeModel) PageIndices(doc domain.Document) []int {
	indices := make([]int, doc.PageCount())
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func (m *fakeModel) CopyPages(dst, src domain.Document, indices []int) error {
	dst.(*fakeDocument).pages += len(indices)
	return nil
}

func (m *fakeModel) ApplyPageDirective(doc domain.Document, pageIndex int, d domain.DirectiveSet) error {
	m.applied = append(m.applied, pageIndex)
	return nil
}

func (m *fakeModel) Serialize(doc domain.Document, d domain.DirectiveSet) ([]byte, error) {
	m.serializedAs = d
	if m.serializeErr != nil {
		return nil, m.serializeErr
	}
	return []byte("%PDF-1.7"), nil
}

func pages(n int) []byte {
	return make([]byte, n)
}

func TestCompress_ProgressTenPages(t *testing.T) {
	model := &fakeModel{}
	c := NewCompressor(model, zap.NewNop().Sugar())

	var progress []int
	payload, err := c.Compress(domain.SourceFile{Name: "ten.pdf", Data: pages(10)}, domain.LevelMedium, func(p int) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if len(progress) != len(expected) {
		t.Fatalf("Expected %d progress events, got %v", len(expected), progress)
	}
	for i := range expected {
		if progress[i] != expected[i] {
			t.Errorf("Expected progress %d at %d, got %d", expected[i], i, progress[i])
		}
	}

	if payload.MIMEType != domain.MIMETypePDF {
		t.Errorf("Expected MIME %s, got %s", domain.MIMETypePDF, payload.MIMEType)
	}
	if len(model.applied) != 10 {
		t.Errorf("Expected directive applied to 10 pages, got %d", len(model.applied))
	}
}

func TestCompress_ProgressMonotonic(t *testing.T) {
	for _, n := range []int{1, 3, 7, 9, 33} {
		c := NewCompressor(&fakeModel{}, zap.NewNop().Sugar())

		last := -1
		var final int
		_, err := c.Compress(domain.SourceFile{Name: "doc.pdf", Data: pages(n)}, domain.LevelLow, func(p int) {
			if p < last {
				t.Errorf("%d pages: progress went backwards from %d to %d", n, last, p)
			}
			if p < 0 || p > 100 {
				t.Errorf("%d pages: progress %d out of range", n, p)
			}
			last, final = p, p
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if final != 100 {
			t.Errorf("%d pages: expected final progress 100, got %d", n, final)
		}
	}
}

func TestCompress_ZeroPages(t *testing.T) {
	model := &fakeModel{}
	c := NewCompressor(model, zap.NewNop().Sugar())

	var progress []int
	if _, err := c.Compress(domain.SourceFile{Name: "empty.pdf"}, domain.LevelHigh, func(p int) {
		progress = append(progress, p)
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(progress) != 1 || progress[0] != 100 {
		t.Errorf("Expected a single 100 progress event, got %v", progress)
	}
	if len(model.applied) != 0 {
		t.Errorf("Expected no page directives, got %d", len(model.applied))
	}
}

func TestCompress_ParseFailureReportsNoProgress(t *testing.T) {
	c := NewCompressor(&fakeModel{}, zap.NewNop().Sugar())

	called := false
	_, err := c.Compress(domain.SourceFile{Name: "bad.pdf", Data: pages(3)}, domain.LevelLow, func(int) {
		called = true
	})

	var parseErr *common.DocumentParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected DocumentParseError, got %v", err)
	}
	if parseErr.FileName != "bad.pdf" {
		t.Errorf("Expected file name bad.pdf, got %s", parseErr.FileName)
	}
	if called {
		t.Error("Expected no progress for a file that failed to parse")
	}
}

func TestCompress_SerializationFailure(t *testing.T) {
	c := NewCompressor(&fakeModel{serializeErr: errors.New("out of memory")}, zap.NewNop().Sugar())

	_, err := c.Compress(domain.SourceFile{Name: "doc.pdf", Data: pages(2)}, domain.LevelLow, nil)
	if !errors.Is(err, common.ErrSerialization) {
		t.Errorf("Expected ErrSerialization, got %v", err)
	}
}

func TestCompress_InvalidLevel(t *testing.T) {
	c := NewCompressor(&fakeModel{}, zap.NewNop().Sugar())

	_, err := c.Compress(domain.SourceFile{Name: "doc.pdf", Data: pages(2)}, domain.Level("ultra"), nil)
	if !errors.Is(err, common.ErrInvalidCompressionLevel) {
		t.Errorf("Expected ErrInvalidCompressionLevel, got %v", err)
	}
}

func TestDirectives_PageScalingOption(t *testing.T) {
	structural := NewCompressor(&fakeModel{}, zap.NewNop().Sugar())
	if structural.Directives(domain.LevelHigh).ScalesPages() {
		t.Error("Expected no page scaling by default")
	}

	scaling := NewCompressor(&fakeModel{}, zap.NewNop().Sugar(), WithPageScaling(true))
	expected := map[domain.Level]float64{
		domain.LevelLow:    0.9,
		domain.LevelMedium: 0.7,
		domain.LevelHigh:   0.5,
	}
	for level, scale := range expected {
		if got := scaling.Directives(level).PageScale; got != scale {
			t.Errorf("Expected scale %v for %s, got %v", scale, level, got)
		}
	}
}

func TestCompress_SerializesWithLevelDirectives(t *testing.T) {
	for _, level := range domain.Levels {
		model := &fakeModel{}
		c := NewCompressor(model, zap.NewNop().Sugar())

		if _, err := c.Compress(domain.SourceFile{Name: "doc.pdf", Data: pages(1)}, level, nil); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if model.serializedAs != c.Directives(level) {
			t.Errorf("Expected %s directives, got %+v", level, model.serializedAs)
		}
	}
}

func TestCompress_RealDocumentsKeepPageCount(t *testing.T) {
	c := NewCompressor(pdfdoc.New(zap.NewNop().Sugar()), zap.NewNop().Sugar())
	input := pdftest.BuildCompressible(10, 100)

	for _, level := range domain.Levels {
		t.Run(string(level), func(t *testing.T) {
			var progress []int
			payload, err := c.Compress(domain.SourceFile{Name: "ten.pdf", Data: input}, level, func(p int) {
				progress = append(progress, p)
			})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			count, err := pdftest.PageCount(payload.Data)
			if err != nil {
				t.Fatalf("Failed to read output: %v", err)
			}
			if count != 10 {
				t.Errorf("Expected 10 pages, got %d", count)
			}
			if len(progress) != 10 || progress[9] != 100 {
				t.Errorf("Expected 10 progress events ending at 100, got %v", progress)
			}
		})
	}
}

func TestCompress_HighIsNotLargerThanLow(t *testing.T) {
	c := NewCompressor(pdfdoc.New(zap.NewNop().Sugar()), zap.NewNop().Sugar())

	corpus := [][]byte{
		pdftest.BuildCompressible(1, 400),
		pdftest.BuildCompressible(5, 200),
		pdftest.BuildCompressible(12, 50),
	}

	for i, input := range corpus {
		low, err := c.Compress(domain.SourceFile{Name: "doc.pdf", Data: input}, domain.LevelLow, nil)
		if err != nil {
			t.Fatalf("Document %d low: %v", i, err)
		}
		high, err := c.Compress(domain.SourceFile{Name: "doc.pdf", Data: input}, domain.LevelHigh, nil)
		if err != nil {
			t.Fatalf("Document %d high: %v", i, err)
		}
		if high.Size() > low.Size() {
			t.Errorf("Document %d: expected high (%d bytes) <= low (%d bytes)", i, high.Size(), low.Size())
		}
	}
}

func TestCompress_RealZeroPageDocument(t *testing.T) {
	c := NewCompressor(pdfdoc.New(zap.NewNop().Sugar()), zap.NewNop().Sugar())

	var progress []int
	payload, err := c.Compress(domain.SourceFile{Name: "empty.pdf", Data: pdftest.Build(0)}, domain.LevelHigh, func(p int) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(progress) != 1 || progress[0] != 100 {
		t.Errorf("Expected a single 100 progress event, got %v", progress)
	}

	count, err := pdftest.PageCount(payload.Data)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 pages, got %d", count)
	}
}

func TestCompress_RealCorruptInput(t *testing.T) {
	c := NewCompressor(pdfdoc.New(zap.NewNop().Sugar()), zap.NewNop().Sugar())

	_, err := c.Compress(domain.SourceFile{Name: "junk.pdf", Data: pdftest.Corrupt()}, domain.LevelMedium, nil)
	if !errors.Is(err, common.ErrDocumentParse) {
		t.Errorf("Expected ErrDocumentParse, got %v", err)
	}
}
