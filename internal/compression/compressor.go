package compression

import (
	"math"

	"go.uber.org/zap"

	"kleinpdf/internal/common"
	domain "kleinpdf/internal/domain/compression"
)

// Option configures a Compressor
type Option func(*Compressor)

// WithPageScaling enables the page-scaling variant, where every page is
// shrunk by the level's scale factor before serialization.
func WithPageScaling(enabled bool) Option {
	return func(c *Compressor) {
		c.scalePages = enabled
	}
}

// Compressor handles PDF compression operations
type Compressor struct {
	model      domain.DocumentModel
	logger     *zap.SugaredLogger
	scalePages bool
}

var _ domain.Compressor = (*Compressor)(nil)

// NewCompressor creates a new compressor instance
func NewCompressor(model domain.DocumentModel, logger *zap.SugaredLogger, opts ...Option) *Compressor {
	c := &Compressor{
		model:  model,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScalesPages reports whether the page-scaling variant is enabled
func (c *Compressor) ScalesPages() bool {
	return c.scalePages
}

// Directives returns the directive set used for level
func (c *Compressor) Directives(level domain.Level) domain.DirectiveSet {
	d := level.Directives()
	if !c.scalePages {
		d.PageScale = 0
	}
	return d
}

// Compress rewrites one file at the given level. onProgress receives
// round((i+1)/N*100) after page i and always ends at 100 on success.
// Nothing is reported when the file fails to parse.
func (c *Compressor) Compress(file domain.SourceFile, level domain.Level, onProgress domain.ProgressFunc) (*domain.OutputPayload, error) {
	if !level.Valid() {
		return nil, common.ErrInvalidCompressionLevel
	}
	if onProgress == nil {
		onProgress = func(int) {}
	}

	doc, err := c.model.Parse(file)
	if err != nil {
		return nil, common.NewDocumentParseError(file.Name, 0, err)
	}

	directives := c.Directives(level)
	total := doc.PageCount()

	if total == 0 {
		onProgress(common.CompletedProgressPercent)
	}
	for i := 0; i < total; i++ {
		if err := c.model.ApplyPageDirective(doc, i, directives); err != nil {
			return nil, common.NewSerializationError(file.Name, err)
		}
		onProgress(pagePercent(i, total))
	}

	data, err := c.model.Serialize(doc, directives)
	if err != nil {
		return nil, common.NewSerializationError(file.Name, err)
	}

	c.logger.Infow("Compressed document",
		"file", file.Name,
		"level", level,
		"pages", total,
		"original_size", file.Size(),
		"compressed_size", len(data))

	return domain.NewPDFPayload(data), nil
}

// pagePercent returns the progress after page index i of total pages.
func pagePercent(i, total int) int {
	return int(math.Round(float64(i+1) / float64(total) * 100))
}
