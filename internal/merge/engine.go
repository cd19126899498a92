// Package merge concatenates PDF documents page by page.
package merge

import (
	"fmt"

	"go.uber.org/zap"

	"kleinpdf/internal/common"
	domain "kleinpdf/internal/domain/compression"
)

// mergeDirectives keeps every copied object and packs the result into object
// streams.
var mergeDirectives = domain.DirectiveSet{
	UseObjectStreams:       true,
	ObjectsPerTick:         100,
	SuppressMetadataUpdate: true,
	PreserveObjects:        true,
}

// Engine merges an ordered list of files into one document
type Engine struct {
	model  domain.DocumentModel
	logger *zap.SugaredLogger
}

var _ domain.Merger = (*Engine)(nil)

// NewEngine creates a new merge engine
func NewEngine(model domain.DocumentModel, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		model:  model,
		logger: logger,
	}
}

// Merge copies every page of every file, in list order, into a new document.
// Nothing is produced unless all files parse.
func (e *Engine) Merge(files []domain.SourceFile) (*domain.OutputPayload, error) {
	if len(files) == 0 {
		return nil, common.ErrNoFilesProvided
	}

	acc := e.model.NewDocument(common.MergedFilePrefix + "document.pdf")
	expected := 0

	for i, file := range files {
		doc, err := e.model.Parse(file)
		if err != nil {
			return nil, common.NewDocumentParseError(file.Name, i, err)
		}

		indices := e.model.PageIndices(doc)
		if err := e.model.CopyPages(acc, doc, indices); err != nil {
			return nil, common.NewSerializationError(file.Name, fmt.Errorf("copy pages: %w", err))
		}
		expected += len(indices)

		e.logger.Debugw("Copied pages", "file", file.Name, "index", i, "pages", len(indices))
	}

	data, err := e.model.Serialize(acc, mergeDirectives)
	if err != nil {
		return nil, common.NewSerializationError(acc.Name(), err)
	}

	if err := e.verify(acc.Name(), data, expected); err != nil {
		return nil, err
	}

	e.logger.Infow("Merged documents",
		"files", len(files),
		"pages", expected,
		"merged_size", len(data))

	return domain.NewPDFPayload(data), nil
}

// verify re-reads the serialized bytes and checks the page total.
func (e *Engine) verify(name string, data []byte, expected int) error {
	out, err := e.model.Parse(domain.SourceFile{Name: name, Data: data})
	if err != nil {
		return common.NewSerializationError(name, fmt.Errorf("re-read merged output: %w", err))
	}
	if out.PageCount() != expected {
		return common.NewSerializationError(name, fmt.Errorf("merged output has %d pages, expected %d", out.PageCount(), expected))
	}
	return nil
}
