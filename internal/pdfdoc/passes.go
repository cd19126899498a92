package pdfdoc

import (
	"bytes"
	"runtime"
	"sort"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const flateDecode = "FlateDecode"

// Entries that renderers never need. Thumbnails and private application data
// hang off pages; XMP metadata hangs off the catalog.
var (
	unusedPageKeys    = []string{"Thumb", "PieceInfo"}
	unusedCatalogKeys = []string{"Metadata", "PieceInfo"}
)

// objectNumbers returns the in-use object numbers in ascending order.
func objectNumbers(ctx *model.Context) []int {
	nrs := make([]int, 0, len(ctx.Table))
	for nr, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		nrs = append(nrs, nr)
	}
	sort.Ints(nrs)
	return nrs
}

// tick yields to the scheduler after every perTick objects.
func tick(i, perTick int) {
	if perTick > 0 && (i+1)%perTick == 0 {
		runtime.Gosched()
	}
}

// removeUnusedObjects drops entries renderers ignore. Objects only reachable
// through them are not written since pdfcpu writes what the trailer reaches.
func removeUnusedObjects(ctx *model.Context, perTick int) int {
	removed := 0
	for i, nr := range objectNumbers(ctx) {
		tick(i, perTick)

		d, ok := ctx.Table[nr].Object.(types.Dict)
		if !ok {
			continue
		}
		t := d.Type()
		if t == nil {
			continue
		}

		var keys []string
		switch *t {
		case "Page":
			keys = unusedPageKeys
		case "Catalog":
			keys = unusedCatalogKeys
		default:
			continue
		}
		for _, k := range keys {
			if _, found := d.Find(k); found {
				d.Delete(k)
				removed++
			}
		}
	}
	return removed
}

// recompressStreams deflates every unfiltered stream and keeps the result
// when it is smaller. It returns the number of bytes saved.
func recompressStreams(ctx *model.Context, perTick int) (int64, error) {
	var saved int64
	for i, nr := range objectNumbers(ctx) {
		tick(i, perTick)

		entry := ctx.Table[nr]
		sd, ok := entry.Object.(types.StreamDict)
		if !ok || len(sd.Raw) == 0 {
			continue
		}
		if _, filtered := sd.Find("Filter"); filtered {
			continue
		}

		deflated, err := deflate(sd.Raw)
		if err != nil {
			return saved, err
		}
		if len(deflated) >= len(sd.Raw) {
			continue
		}

		saved += int64(len(sd.Raw) - len(deflated))
		l := int64(len(deflated))
		sd.Raw = deflated
		sd.StreamLength = &l
		sd.FilterPipeline = []types.PDFFilter{{Name: flateDecode}}
		sd.Update("Filter", types.Name(flateDecode))
		sd.Update("Length", types.Integer(len(deflated)))
		entry.Object = sd
	}
	return saved, nil
}

// deflate produces a zlib stream, the encoding FlateDecode expects.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stampModDate records the rewrite time in the info dictionary, if any.
func stampModDate(ctx *model.Context) error {
	if ctx.Info == nil {
		return nil
	}
	info, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || info == nil {
		return err
	}
	info.Update("ModDate", types.StringLiteral(types.DateString(time.Now())))
	return nil
}
