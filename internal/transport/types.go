package transport

// Transport layer types for Wails API

type CompressionRequest struct {
	Files            []string `json:"files"`
	CompressionLevel string   `json:"compressionLevel"`
	// SliderValue is used when CompressionLevel is empty.
	SliderValue    *int   `json:"sliderValue,omitempty"`
	AutoDownload   bool   `json:"autoDownload"`
	DownloadFolder string `json:"downloadFolder"`
}

type UploadRequest struct {
	Files            []FileUpload `json:"files"`
	CompressionLevel string       `json:"compressionLevel"`
	SliderValue      *int         `json:"sliderValue,omitempty"`
	AutoDownload     bool         `json:"autoDownload"`
	DownloadFolder   string       `json:"downloadFolder"`
}

type CompressionResponse struct {
	Success                 bool         `json:"success"`
	SessionID               string       `json:"session_id"`
	Files                   []FileResult `json:"files"`
	TotalFiles              int          `json:"total_files"`
	FailedFiles             int          `json:"failed_files"`
	TotalOriginalSize       int64        `json:"total_original_size"`
	TotalCompressedSize     int64        `json:"total_compressed_size"`
	OverallCompressionRatio float64      `json:"overall_compression_ratio"`
	CompressionLevel        string       `json:"compression_level"`
	AutoDownload            bool         `json:"auto_download"`
	DownloadPaths           []string     `json:"download_paths,omitempty"`
	Error                   string       `json:"error,omitempty"`
}

type FileResult struct {
	FileID             string  `json:"file_id"`
	FileIndex          int     `json:"file_index"`
	OriginalFilename   string  `json:"original_filename"`
	CompressedFilename string  `json:"compressed_filename"`
	OriginalSize       int64   `json:"original_size"`
	CompressedSize     int64   `json:"compressed_size"`
	CompressionRatio   float64 `json:"compression_ratio"`
	TempPath           string  `json:"temp_path"`
	SavedPath          *string `json:"saved_path,omitempty"`
	Status             string  `json:"status"`
	Error              string  `json:"error,omitempty"`
}

type MergeResponse struct {
	Success   bool    `json:"success"`
	SessionID string  `json:"session_id"`
	FileID    string  `json:"file_id,omitempty"`
	Filename  string  `json:"filename,omitempty"`
	Size      int64   `json:"size,omitempty"`
	TempPath  string  `json:"temp_path,omitempty"`
	SavedPath *string `json:"saved_path,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type FileUpload struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
	Size int64  `json:"size"`
}

type FileProgressUpdate struct {
	SessionID string `json:"session_id"`
	FileIndex int    `json:"file_index"`
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Error     string `json:"error,omitempty"`
}

type BatchProgressUpdate struct {
	SessionID string  `json:"session_id"`
	Percent   float64 `json:"percent"`
	Current   int     `json:"current"`
	Total     int     `json:"total"`
}

// File statuses reported to the frontend
const (
	StatusQueued      = "queued"
	StatusCompressing = "compressing"
	StatusMerging     = "merging"
	StatusCompleted   = "completed"
	StatusError       = "error"
)

// Dialog interface for system dialogs
type DialogHandler interface {
	OpenFileDialog() ([]string, error)
	OpenDirectoryDialog() (string, error)
	ShowSaveDialog(filename string) (string, error)
	OpenFile(filePath string) error
}
