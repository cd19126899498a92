// Package pdfdoc binds the document model port to pdfcpu.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	"kleinpdf/internal/domain/compression"
)

var (
	errEmptyInput      = errors.New("empty input")
	errEmptyDocument   = errors.New("document has no pages to write")
	errNotAccumulator  = errors.New("pages can only be copied into a new document")
	errNotParsed       = errors.New("document was not parsed from bytes")
	errForeignDocument = errors.New("document does not belong to this adapter")
	errPageOutOfRange  = errors.New("page index out of range")
)

var disableConfigDirOnce sync.Once

// Adapter implements compression.DocumentModel on top of pdfcpu.
type Adapter struct {
	logger *zap.SugaredLogger
}

var _ compression.DocumentModel = (*Adapter)(nil)

// New creates an adapter. pdfcpu's user configuration directory is disabled
// so the adapter never touches the filesystem.
func New(logger *zap.SugaredLogger) *Adapter {
	disableConfigDirOnce.Do(api.DisableConfigDir)
	return &Adapter{logger: logger}
}

// configuration returns a pdfcpu configuration honoring the object layout
// directives.
func configuration(d compression.DirectiveSet) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = d.UseObjectStreams
	conf.WriteXRefStream = d.UseObjectStreams
	return conf
}

// guard converts pdfcpu panics on malformed input into errors.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu %s: %v", op, r)
		}
	}()
	return fn()
}

func (a *Adapter) Parse(file compression.SourceFile) (compression.Document, error) {
	if len(file.Data) == 0 {
		return nil, errEmptyInput
	}

	var ctx *model.Context
	err := guard("read", func() error {
		var err error
		ctx, err = api.ReadContext(bytes.NewReader(file.Data), configuration(compression.DirectiveSet{}))
		if err != nil {
			return err
		}
		return api.ValidateContext(ctx)
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debugw("Parsed document", "file", file.Name, "pages", ctx.PageCount)
	return &Document{name: file.Name, raw: file.Data, ctx: ctx}, nil
}

func (a *Adapter) NewDocument(name string) compression.Document {
	return &Document{name: name}
}

func (a *Adapter) PageIndices(doc compression.Document) []int {
	indices := make([]int, doc.PageCount())
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func (a *Adapter) CopyPages(dst, src compression.Document, indices []int) error {
	to, ok := dst.(*Document)
	if !ok {
		return errForeignDocument
	}
	from, ok := src.(*Document)
	if !ok {
		return errForeignDocument
	}
	if !to.isAccumulator() {
		return errNotAccumulator
	}
	if from.isAccumulator() {
		return errNotParsed
	}

	n := from.PageCount()
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: %d of %d in %s", errPageOutOfRange, idx, n, from.name)
		}
	}

	to.parts = append(to.parts, part{src: from, indices: append([]int(nil), indices...)})
	to.pages += len(indices)
	return nil
}

func (a *Adapter) ApplyPageDirective(doc compression.Document, pageIndex int, directives compression.DirectiveSet) error {
	d, ok := doc.(*Document)
	if !ok {
		return errForeignDocument
	}
	if d.isAccumulator() {
		return errNotParsed
	}
	if pageIndex < 0 || pageIndex >= d.PageCount() {
		return fmt.Errorf("%w: %d of %d", errPageOutOfRange, pageIndex, d.PageCount())
	}
	if !directives.ScalesPages() {
		return nil
	}

	return guard("resize", func() error {
		res, err := pdfcpu.ParseResizeConfig("sc:"+strconv.FormatFloat(directives.PageScale, 'f', 2, 64), types.POINTS)
		if err != nil {
			return err
		}
		return pdfcpu.Resize(d.ctx, types.IntSet{pageIndex + 1: true}, res)
	})
}

func (a *Adapter) Serialize(doc compression.Document, directives compression.DirectiveSet) ([]byte, error) {
	d, ok := doc.(*Document)
	if !ok {
		return nil, errForeignDocument
	}
	if d.isAccumulator() {
		return a.serializeAccumulator(d, directives)
	}

	ctx := d.ctx
	ctx.Configuration.WriteObjectStream = directives.UseObjectStreams
	ctx.Configuration.WriteXRefStream = directives.UseObjectStreams

	if !directives.PreserveObjects {
		if err := guard("optimize", func() error { return api.OptimizeContext(ctx) }); err != nil {
			return nil, fmt.Errorf("optimize: %w", err)
		}
	}
	if directives.RemoveUnusedObjects {
		removed := removeUnusedObjects(ctx, directives.ObjectsPerTick)
		a.logger.Debugw("Removed unused entries", "file", d.name, "entries", removed)
	}
	if directives.RecompressStreams {
		saved, err := recompressStreams(ctx, directives.ObjectsPerTick)
		if err != nil {
			return nil, fmt.Errorf("recompress streams: %w", err)
		}
		a.logger.Debugw("Recompressed streams", "file", d.name, "bytes_saved", saved)
	}
	if !directives.SuppressMetadataUpdate {
		if err := stampModDate(ctx); err != nil {
			return nil, fmt.Errorf("update metadata: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := guard("write", func() error { return api.WriteContext(ctx, &buf) }); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// serializeAccumulator writes the recorded page copies in order. Complete
// copies reuse the source bytes; partial copies are collected first.
func (a *Adapter) serializeAccumulator(d *Document, directives compression.DirectiveSet) ([]byte, error) {
	if len(d.parts) == 0 {
		return nil, errEmptyDocument
	}
	if d.pages == 0 {
		return emptyCopy(d)
	}

	readers := make([]io.ReadSeeker, 0, len(d.parts))
	for _, p := range d.parts {
		if len(p.indices) == 0 {
			continue
		}
		if p.complete() {
			readers = append(readers, bytes.NewReader(p.src.raw))
			continue
		}

		var collected bytes.Buffer
		err := guard("collect", func() error {
			return api.Collect(bytes.NewReader(p.src.raw), &collected, pageSelection(p.indices), configuration(compression.DirectiveSet{}))
		})
		if err != nil {
			return nil, fmt.Errorf("collect pages of %s: %w", p.src.name, err)
		}
		readers = append(readers, bytes.NewReader(collected.Bytes()))
	}

	var out bytes.Buffer
	err := guard("merge", func() error {
		return api.MergeRaw(readers, &out, false, configuration(directives))
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debugw("Serialized merged document", "file", d.name, "sources", len(readers), "pages", d.pages)
	return out.Bytes(), nil
}

// emptyCopy writes an accumulator fed only by zero-page sources as a copy of
// the first of them.
func emptyCopy(d *Document) ([]byte, error) {
	for _, p := range d.parts {
		if p.src.PageCount() == 0 {
			return append([]byte(nil), p.src.raw...), nil
		}
	}
	return nil, errEmptyDocument
}

// pageSelection converts zero-based indices into pdfcpu page selections.
func pageSelection(indices []int) []string {
	sel := make([]string, len(indices))
	for i, idx := range indices {
		sel[i] = strconv.Itoa(idx + 1)
	}
	return sel
}
