package transport

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"kleinpdf/internal/common"
	batchDomain "kleinpdf/internal/domain/batch"
	"kleinpdf/internal/domain/compression"
	preferencesDomain "kleinpdf/internal/domain/preferences"
	statisticsDomain "kleinpdf/internal/domain/statistics"
	"kleinpdf/internal/services"
)

const (
	appName       = "KleinPDF"
	framework     = "Wails + Preact"
	statusRunning = "running"
	resultMaxAge  = 24 * time.Hour
)

// FileStore reads sources from disk and keeps result payloads
type FileStore interface {
	WorkingDir() string
	ReadFiles(paths []string) ([]compression.SourceFile, error)
	WritePayload(id, name string, payload *compression.OutputPayload) (string, error)
	SaveToFolder(tempPath, folder, name string) (string, error)
	CleanupOldTempFiles(maxAge time.Duration) int
}

// RunnerFunc returns the batch runner for a page-scaling setting
type RunnerFunc func(scalePages bool) batchDomain.Runner

type storedResult struct {
	name string
	path string
}

// Option configures a WailsApp
type Option func(*WailsApp)

// WithEmitter replaces the Wails event emitter
func WithEmitter(e EventEmitter) Option {
	return func(a *WailsApp) {
		a.emitter = e
	}
}

// WithDialogs replaces the system dialogs
func WithDialogs(d DialogHandler) Option {
	return func(a *WailsApp) {
		a.dialogsHandler = d
	}
}

type WailsApp struct {
	ctx                context.Context
	runners            RunnerFunc
	preferencesService preferencesDomain.Service
	statisticsService  statisticsDomain.Service
	files              FileStore
	logger             *zap.SugaredLogger
	emitter            EventEmitter
	dialogsHandler     DialogHandler

	// batchMu serializes whole batch requests.
	batchMu sync.Mutex

	resultsMu sync.Mutex
	results   map[string]storedResult
}

func NewWailsApp(
	ctx context.Context,
	runners RunnerFunc,
	preferencesService preferencesDomain.Service,
	statisticsService statisticsDomain.Service,
	files FileStore,
	logger *zap.SugaredLogger,
	opts ...Option,
) *WailsApp {
	a := &WailsApp{
		ctx:                ctx,
		runners:            runners,
		preferencesService: preferencesService,
		statisticsService:  statisticsService,
		files:              files,
		logger:             logger,
		results:            make(map[string]storedResult),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.emitter == nil {
		a.emitter = NewWailsEmitter(ctx)
	}
	if a.dialogsHandler == nil {
		a.dialogsHandler = NewDialogsHandler(ctx)
	}
	return a
}

// CompressPaths compresses files selected through the file dialog
func (a *WailsApp) CompressPaths(request CompressionRequest) CompressionResponse {
	if len(request.Files) == 0 {
		return CompressionResponse{Error: common.ErrNoFilesProvided.Error()}
	}

	files, err := a.files.ReadFiles(request.Files)
	if err != nil {
		a.logger.Errorw("Failed to read files", "error", err)
		return CompressionResponse{Error: err.Error()}
	}

	return a.compress(files, request.CompressionLevel, request.SliderValue, request.AutoDownload, request.DownloadFolder)
}

// CompressFiles compresses files uploaded from the frontend
func (a *WailsApp) CompressFiles(request UploadRequest) CompressionResponse {
	if len(request.Files) == 0 {
		return CompressionResponse{Error: common.ErrNoFilesProvided.Error()}
	}
	return a.compress(sourceFiles(request.Files), request.CompressionLevel, request.SliderValue, request.AutoDownload, request.DownloadFolder)
}

// MergePaths merges files selected through the file dialog
func (a *WailsApp) MergePaths(paths []string) MergeResponse {
	if len(paths) == 0 {
		return MergeResponse{Error: common.ErrNoFilesProvided.Error()}
	}

	files, err := a.files.ReadFiles(paths)
	if err != nil {
		a.logger.Errorw("Failed to read files", "error", err)
		return MergeResponse{Error: err.Error()}
	}
	return a.merge(files)
}

// MergeFiles merges files uploaded from the frontend
func (a *WailsApp) MergeFiles(uploads []FileUpload) MergeResponse {
	if len(uploads) == 0 {
		return MergeResponse{Error: common.ErrNoFilesProvided.Error()}
	}
	return a.merge(sourceFiles(uploads))
}

func sourceFiles(uploads []FileUpload) []compression.SourceFile {
	files := make([]compression.SourceFile, len(uploads))
	for i, u := range uploads {
		files[i] = compression.SourceFile{Name: filepath.Base(u.Name), Data: u.Data}
	}
	return files
}

// loadPreferences falls back to defaults when the store is unavailable.
func (a *WailsApp) loadPreferences() preferencesDomain.UserPreferencesData {
	prefs, err := a.preferencesService.GetPreferences()
	if err != nil || prefs == nil {
		a.logger.Warnw("Failed to load preferences, using defaults", "error", err)
		return preferencesDomain.DefaultPreferences()
	}
	return *prefs
}

// resolveLevel picks the explicit level, then the slider, then the saved
// default.
func resolveLevel(name string, slider *int, prefs preferencesDomain.UserPreferencesData) (compression.Level, error) {
	if name != "" {
		return compression.ParseLevel(name)
	}
	if slider != nil {
		return compression.LevelFromSlider(*slider), nil
	}
	return prefs.DefaultCompressionLevel, nil
}

func (a *WailsApp) openSession(mode batchDomain.Mode, files []compression.SourceFile, runner batchDomain.Runner) batchDomain.Session {
	if len(files) > runner.MaxFiles() {
		a.logger.Warnw("Dropping files beyond batch capacity",
			"submitted", len(files),
			"max", runner.MaxFiles())
	}
	session := runner.NewSession(mode, files)

	for i, f := range session.Files {
		a.emitter.Emit(common.EventFileProgress, FileProgressUpdate{
			SessionID: session.ID,
			FileIndex: i,
			Filename:  f.Name,
			Status:    StatusQueued,
		})
	}
	return session
}

// progressSink forwards engine progress as file and batch events.
func (a *WailsApp) progressSink(session batchDomain.Session, status string) compression.ProgressSink {
	total := len(session.Files)
	progress := make([]int, total)

	return func(e compression.ProgressEvent) {
		progress[e.FileIndex] = e.Percent

		a.emitter.Emit(common.EventFileProgress, FileProgressUpdate{
			SessionID: session.ID,
			FileIndex: e.FileIndex,
			Filename:  session.Files[e.FileIndex].Name,
			Status:    status,
			Progress:  e.Percent,
		})

		sum := 0
		for _, p := range progress {
			sum += p
		}
		a.emitter.Emit(common.EventBatchProgress, BatchProgressUpdate{
			SessionID: session.ID,
			Percent:   float64(sum) / float64(total),
			Current:   e.FileIndex + 1,
			Total:     total,
		})
	}
}

func (a *WailsApp) compress(files []compression.SourceFile, levelName string, slider *int, autoDownload bool, downloadFolder string) CompressionResponse {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()

	a.files.CleanupOldTempFiles(resultMaxAge)

	prefs := a.loadPreferences()
	level, err := resolveLevel(levelName, slider, prefs)
	if err != nil {
		return CompressionResponse{Error: err.Error()}
	}

	runner := a.runners(prefs.ScalePages)
	session := a.openSession(batchDomain.ModeCompress, files, runner)

	session, err = runner.Compress(session, level, a.progressSink(session, StatusCompressing))
	if err != nil {
		a.logger.Errorw("Compression batch rejected", "session", session.ID, "error", err)
		return CompressionResponse{SessionID: session.ID, CompressionLevel: string(level), Error: err.Error()}
	}

	results := make([]FileResult, 0, len(session.Files))
	written := 0
	var writtenTotals batchDomain.Totals
	for _, item := range session.Results {
		result := FileResult{
			FileID:             item.ID,
			FileIndex:          item.FileIndex,
			OriginalFilename:   item.OriginalName,
			CompressedFilename: item.DisplayName,
			OriginalSize:       item.OriginalSize,
			CompressedSize:     item.OutputSize,
			CompressionRatio:   item.CompressionRatio(),
		}

		path, err := a.files.WritePayload(item.ID, item.DisplayName, item.Payload)
		if err != nil {
			a.logger.Errorw("Failed to store result", "file", item.OriginalName, "error", err)
			result.Status = StatusError
			result.Error = err.Error()
			a.emitter.Emit(common.EventFileFailed, result)
			results = append(results, result)
			continue
		}

		result.TempPath = path
		result.Status = StatusCompleted
		a.remember(item.ID, item.DisplayName, path)
		a.emitter.Emit(common.EventFileCompleted, result)
		results = append(results, result)

		written++
		writtenTotals.OriginalSize += item.OriginalSize
		writtenTotals.OutputSize += item.OutputSize
	}

	for _, f := range session.Failures {
		result := FileResult{
			FileIndex:        f.FileIndex,
			OriginalFilename: f.FileName,
			OriginalSize:     session.Files[f.FileIndex].Size(),
			Status:           StatusError,
			Error:            f.Err.Error(),
		}
		a.emitter.Emit(common.EventFileFailed, result)
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].FileIndex < results[j].FileIndex })

	failed := len(results) - written
	a.statisticsService.UpdateStats(written, writtenTotals.BytesSaved())
	a.statisticsService.RecordFailures(failed)
	a.emitter.Emit(common.EventStatsUpdate, a.statisticsService.GetStats())

	response := CompressionResponse{
		Success:             true,
		SessionID:           session.ID,
		Files:               results,
		TotalFiles:          len(results),
		FailedFiles:         failed,
		TotalOriginalSize:   writtenTotals.OriginalSize,
		TotalCompressedSize: writtenTotals.OutputSize,
		CompressionLevel:    string(level),
		AutoDownload:        autoDownload || prefs.AutoDownloadEnabled,
	}
	if writtenTotals.OriginalSize > 0 {
		response.OverallCompressionRatio = float64(writtenTotals.OriginalSize-writtenTotals.OutputSize) / float64(writtenTotals.OriginalSize) * 100
	}

	// Handle auto-download if enabled
	if response.AutoDownload {
		folder, err := a.downloadFolder(downloadFolder)
		if err != nil {
			a.logger.Warnw("Auto-download skipped", "error", err)
			return response
		}
		for i := range response.Files {
			r := &response.Files[i]
			if r.Status != StatusCompleted {
				continue
			}
			saved, err := a.files.SaveToFolder(r.TempPath, folder, r.CompressedFilename)
			if err != nil {
				a.logger.Warnw("Error saving file", "file", r.OriginalFilename, "error", err)
				continue
			}
			r.SavedPath = &saved
			response.DownloadPaths = append(response.DownloadPaths, saved)
		}
	}

	return response
}

func (a *WailsApp) merge(files []compression.SourceFile) MergeResponse {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()

	a.files.CleanupOldTempFiles(resultMaxAge)

	prefs := a.loadPreferences()
	runner := a.runners(prefs.ScalePages)
	session := a.openSession(batchDomain.ModeMerge, files, runner)

	for i, f := range session.Files {
		a.emitter.Emit(common.EventFileProgress, FileProgressUpdate{
			SessionID: session.ID,
			FileIndex: i,
			Filename:  f.Name,
			Status:    StatusMerging,
		})
	}

	session, err := runner.Merge(session, a.progressSink(session, StatusCompleted))
	if err != nil {
		var parseErr *common.DocumentParseError
		if errors.As(err, &parseErr) && parseErr.FileIndex < len(session.Files) {
			a.emitter.Emit(common.EventFileFailed, FileResult{
				FileIndex:        parseErr.FileIndex,
				OriginalFilename: parseErr.FileName,
				Status:           StatusError,
				Error:            err.Error(),
			})
		}
		return MergeResponse{SessionID: session.ID, Error: err.Error()}
	}

	merged := session.Merged
	path, err := a.files.WritePayload(merged.ID, merged.Name, merged.Payload)
	if err != nil {
		a.logger.Errorw("Failed to store merged document", "error", err)
		return MergeResponse{SessionID: session.ID, Error: err.Error()}
	}
	a.remember(merged.ID, merged.Name, path)

	a.statisticsService.RecordMerge(len(session.Files))
	a.emitter.Emit(common.EventStatsUpdate, a.statisticsService.GetStats())

	response := MergeResponse{
		Success:   true,
		SessionID: session.ID,
		FileID:    merged.ID,
		Filename:  merged.Name,
		Size:      merged.OutputSize,
		TempPath:  path,
	}

	if prefs.AutoDownloadEnabled {
		folder, err := a.downloadFolder("")
		if err == nil {
			if saved, err := a.files.SaveToFolder(path, folder, merged.Name); err == nil {
				response.SavedPath = &saved
			} else {
				a.logger.Warnw("Error saving merged file", "error", err)
			}
		}
	}

	return response
}

func (a *WailsApp) downloadFolder(custom string) (string, error) {
	if custom != "" {
		return custom, nil
	}
	return a.preferencesService.GetDownloadFolder()
}

func (a *WailsApp) remember(id, name, path string) {
	a.resultsMu.Lock()
	defer a.resultsMu.Unlock()
	a.results[id] = storedResult{name: name, path: path}
}

// SaveResult copies a stored result to destPath. An empty destPath opens the
// save dialog; cancelling it returns an empty path and no error.
func (a *WailsApp) SaveResult(fileID, destPath string) (string, error) {
	a.resultsMu.Lock()
	stored, ok := a.results[fileID]
	a.resultsMu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", common.ErrResultNotFound, fileID)
	}

	if destPath == "" {
		selected, err := a.dialogsHandler.ShowSaveDialog(stored.name)
		if err != nil {
			return "", err
		}
		if selected == "" {
			return "", nil
		}
		destPath = selected
	}

	saved, err := a.files.SaveToFolder(stored.path, filepath.Dir(destPath), filepath.Base(destPath))
	if err != nil {
		return "", err
	}

	a.logger.Infow("Saved result", "file_id", fileID, "path", saved)
	return saved, nil
}

func (a *WailsApp) GetPreferences() (*preferencesDomain.UserPreferencesData, error) {
	return a.preferencesService.GetPreferences()
}

func (a *WailsApp) UpdatePreferences(data map[string]any) error {
	return a.preferencesService.UpdatePreferences(data)
}

func (a *WailsApp) OpenFileDialog() ([]string, error) {
	return a.dialogsHandler.OpenFileDialog()
}

func (a *WailsApp) OpenDirectoryDialog() (string, error) {
	return a.dialogsHandler.OpenDirectoryDialog()
}

func (a *WailsApp) ShowSaveDialog(filename string) (string, error) {
	return a.dialogsHandler.ShowSaveDialog(filename)
}

func (a *WailsApp) OpenFile(filePath string) error {
	return a.dialogsHandler.OpenFile(filePath)
}

func (a *WailsApp) GetStats() *statisticsDomain.AppStats {
	return a.statisticsService.GetStats()
}

func (a *WailsApp) GetAppStatus() statisticsDomain.AppStatus {
	return statisticsDomain.AppStatus{
		Status:           statusRunning,
		Framework:        framework,
		AppName:          appName,
		Engine:           services.EngineName,
		WorkingDirectory: a.files.WorkingDir(),
		MaxBatchFiles:    a.runners(false).MaxFiles(),
	}
}
