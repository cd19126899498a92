package container

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kleinpdf/internal/config"
	batchDomain "kleinpdf/internal/domain/batch"
	"kleinpdf/internal/merge"
	"kleinpdf/internal/pdfdoc"
	"kleinpdf/internal/services"
	"kleinpdf/internal/statistics"
)

// Container holds all dependencies for the application
type Container struct {
	config *config.Config
	db     *gorm.DB
	logger *zap.SugaredLogger

	// Services
	documentModel      *pdfdoc.Adapter
	merger             *merge.Engine
	pdfService         *services.PDFService
	preferencesService *services.PreferencesService
	statisticsManager  *statistics.Manager
	coordinators       *coordinatorSet
}

// New creates a new dependency injection container
func New(cfg *config.Config, db *gorm.DB) *Container {
	c := &Container{
		config: cfg,
		db:     db,
		logger: cfg.Logger,
	}

	c.initServices()
	return c
}

// initServices initializes all services with their dependencies
func (c *Container) initServices() {
	// Infrastructure
	c.documentModel = pdfdoc.New(c.logger.Named("pdfdoc"))
	c.pdfService = services.NewPDFService(c.config.WorkingDir, c.logger.Named("files"))
	c.preferencesService = services.NewPreferencesService(c.db)
	c.statisticsManager = statistics.NewManager()

	// Engines
	c.merger = merge.NewEngine(c.documentModel, c.logger.Named("merge"))
	c.coordinators = newCoordinatorSet(c.documentModel, c.merger, c.config.MaxBatchFiles, c.logger)
}

// GetCoordinator returns the batch coordinator for the page-scaling setting
func (c *Container) GetCoordinator(scalePages bool) batchDomain.Runner {
	return c.coordinators.get(scalePages)
}

// GetPDFService returns the file service
func (c *Container) GetPDFService() *services.PDFService {
	return c.pdfService
}

// GetPreferencesService returns the preferences service
func (c *Container) GetPreferencesService() *services.PreferencesService {
	return c.preferencesService
}

// GetStatisticsManager returns the statistics manager
func (c *Container) GetStatisticsManager() *statistics.Manager {
	return c.statisticsManager
}

// GetConfig returns the application configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}
