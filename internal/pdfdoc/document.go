package pdfdoc

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is either a parsed source (ctx set) or an accumulator that
// collects page copies from parsed sources (parts set).
type Document struct {
	name  string
	raw   []byte
	ctx   *model.Context
	parts []part
	pages int
}

// part is one CopyPages call recorded on an accumulator.
type part struct {
	src     *Document
	indices []int
}

// complete reports whether the part copies every page of its source in order.
func (p part) complete() bool {
	if len(p.indices) != p.src.PageCount() {
		return false
	}
	for i, idx := range p.indices {
		if idx != i {
			return false
		}
	}
	return true
}

func (d *Document) Name() string {
	return d.name
}

func (d *Document) PageCount() int {
	if d.ctx != nil {
		return d.ctx.PageCount
	}
	return d.pages
}

func (d *Document) isAccumulator() bool {
	return d.ctx == nil
}
