package container

import (
	"go.uber.org/zap"

	"kleinpdf/internal/batch"
	"kleinpdf/internal/compression"
	compressionDomain "kleinpdf/internal/domain/compression"
)

// coordinatorSet holds one coordinator per page-scaling setting. Both share
// the document model and merge engine.
type coordinatorSet struct {
	structural *batch.Coordinator
	scaling    *batch.Coordinator
}

func newCoordinatorSet(model compressionDomain.DocumentModel, merger compressionDomain.Merger, maxFiles int, logger *zap.SugaredLogger) *coordinatorSet {
	build := func(scale bool) *batch.Coordinator {
		compressor := compression.NewCompressor(model, logger.Named("compression"), compression.WithPageScaling(scale))
		return batch.NewCoordinator(compressor, merger, logger.Named("batch"), batch.WithMaxFiles(maxFiles))
	}
	return &coordinatorSet{
		structural: build(false),
		scaling:    build(true),
	}
}

func (s *coordinatorSet) get(scalePages bool) *batch.Coordinator {
	if scalePages {
		return s.scaling
	}
	return s.structural
}
