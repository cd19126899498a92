package application

import (
	"context"

	"gorm.io/gorm"

	"kleinpdf/internal/config"
	"kleinpdf/internal/container"
	"kleinpdf/internal/database"
	batchDomain "kleinpdf/internal/domain/batch"
	preferencesDomain "kleinpdf/internal/domain/preferences"
	statisticsDomain "kleinpdf/internal/domain/statistics"
	"kleinpdf/internal/transport"
)

// App is the struct bound to the Wails frontend
type App struct {
	ctx       context.Context
	container *container.Container
	wailsApp  *transport.WailsApp
	config    *config.Config
	db        *gorm.DB
	opts      []transport.Option
}

func NewApp(opts ...transport.Option) *App {
	return &App{opts: opts}
}

func (a *App) OnStartup(ctx context.Context) {
	a.ctx = ctx

	// Initialize configuration
	cfg, err := config.New()
	if err != nil {
		println("Error:", err.Error())
		return
	}
	a.config = cfg

	// Initialize database
	db, err := database.Open(cfg.DatabasePath, cfg.Logger)
	if err != nil {
		cfg.Logger.Errorw("Failed to initialize database", "path", cfg.DatabasePath, "error", err)
		return
	}

	a.start(ctx, cfg, db)
}

// start wires the container and transport once configuration and the
// database are ready.
func (a *App) start(ctx context.Context, cfg *config.Config, db *gorm.DB) {
	a.config = cfg
	a.db = db

	// Initialize dependency container
	a.container = container.New(cfg, db)

	// Initialize transport layer
	a.wailsApp = transport.NewWailsApp(
		ctx,
		func(scalePages bool) batchDomain.Runner { return a.container.GetCoordinator(scalePages) },
		a.container.GetPreferencesService(),
		a.container.GetStatisticsManager(),
		a.container.GetPDFService(),
		cfg.Logger.Named("transport"),
		a.opts...,
	)

	cfg.Logger.Infow("Wails app initialized successfully",
		"working_directory", cfg.WorkingDir,
		"database_path", cfg.DatabasePath,
		"max_batch_files", cfg.MaxBatchFiles)
}

func (a *App) OnShutdown(ctx context.Context) {
	if a.config == nil {
		return
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.config.Logger.Warnw("Failed to close database", "error", err)
		}
	}
	_ = a.config.Logger.Sync()
}

func (a *App) CompressFiles(request transport.UploadRequest) transport.CompressionResponse {
	return a.wailsApp.CompressFiles(request)
}

func (a *App) CompressPaths(request transport.CompressionRequest) transport.CompressionResponse {
	return a.wailsApp.CompressPaths(request)
}

func (a *App) MergeFiles(files []transport.FileUpload) transport.MergeResponse {
	return a.wailsApp.MergeFiles(files)
}

func (a *App) MergePaths(paths []string) transport.MergeResponse {
	return a.wailsApp.MergePaths(paths)
}

func (a *App) SaveResult(fileID, destPath string) (string, error) {
	return a.wailsApp.SaveResult(fileID, destPath)
}

func (a *App) GetPreferences() (*preferencesDomain.UserPreferencesData, error) {
	return a.wailsApp.GetPreferences()
}

func (a *App) UpdatePreferences(data map[string]any) error {
	return a.wailsApp.UpdatePreferences(data)
}

func (a *App) OpenFileDialog() ([]string, error) {
	return a.wailsApp.OpenFileDialog()
}

func (a *App) OpenDirectoryDialog() (string, error) {
	return a.wailsApp.OpenDirectoryDialog()
}

func (a *App) ShowSaveDialog(filename string) (string, error) {
	return a.wailsApp.ShowSaveDialog(filename)
}

func (a *App) OpenFile(filePath string) error {
	return a.wailsApp.OpenFile(filePath)
}

func (a *App) GetAppStatus() statisticsDomain.AppStatus {
	return a.wailsApp.GetAppStatus()
}

func (a *App) GetStats() *statisticsDomain.AppStats {
	return a.wailsApp.GetStats()
}
