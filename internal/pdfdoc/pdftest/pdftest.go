// Package pdftest builds small well-formed PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// LetterWidth is the default page width in points.
const LetterWidth = 612.0

func init() {
	api.DisableConfigDir()
}

// Build returns a PDF with the given number of letter sized pages.
func Build(pages int) []byte {
	widths := make([]float64, pages)
	for i := range widths {
		widths[i] = LetterWidth
	}
	return build(widths, 1)
}

// BuildWithWidths returns a PDF with one page per width. Distinct widths make
// page order observable after a rewrite.
func BuildWithWidths(widths ...float64) []byte {
	return build(widths, 1)
}

// BuildCompressible returns a PDF whose uncompressed content streams repeat
// the same drawing operators many times.
func BuildCompressible(pages, repeat int) []byte {
	widths := make([]float64, pages)
	for i := range widths {
		widths[i] = LetterWidth
	}
	return build(widths, repeat)
}

// Corrupt returns bytes no PDF parser accepts.
func Corrupt() []byte {
	return []byte("this is definitely not a pdf document\n")
}

// PageCount reads the page count of a serialized document.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), nil)
}

// PageWidths reads the media box width of every page in order.
func PageWidths(data []byte) ([]float64, error) {
	dims, err := api.PageDims(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}
	widths := make([]float64, len(dims))
	for i, d := range dims {
		widths[i] = d.Width
	}
	return widths, nil
}

func build(widths []float64, repeat int) []byte {
	var buf bytes.Buffer
	offsets := []int{0}
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := make([]string, len(widths))
	for i := range widths {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(widths)))

	for i, w := range widths {
		content := pageContent(i, repeat)
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s 792] /Resources << >> /Contents %d 0 R >>",
			strconv.FormatFloat(w, 'f', -1, 64), 4+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xref)

	return buf.Bytes()
}

func pageContent(page, repeat int) string {
	if repeat < 1 {
		repeat = 1
	}
	var sb strings.Builder
	for i := 0; i < repeat; i++ {
		fmt.Fprintf(&sb, "q 1 0 0 1 %d %d cm 0 0 m 100 100 l S Q\n", 10+page, 10+i%50)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
