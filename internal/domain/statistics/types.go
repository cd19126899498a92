package statistics

// AppStats represents application usage statistics
type AppStats struct {
	TotalFilesCompressed   int64 `json:"total_files_compressed"`
	TotalDataSaved         int64 `json:"total_data_saved"`
	TotalFilesFailed       int64 `json:"total_files_failed"`
	TotalMerges            int64 `json:"total_merges"`
	SessionFilesCompressed int   `json:"session_files_compressed"`
	SessionDataSaved       int64 `json:"session_data_saved"`
}

// AppStatus describes the running application
type AppStatus struct {
	Status           string `json:"status"`
	Framework        string `json:"framework"`
	AppName          string `json:"app_name"`
	Engine           string `json:"engine"`
	WorkingDirectory string `json:"working_directory"`
	MaxBatchFiles    int    `json:"max_batch_files"`
}

// Service defines the interface for statistics operations
type Service interface {
	UpdateStats(filesCompressed int, dataSaved int64)
	RecordFailures(files int)
	RecordMerge(files int)
	GetStats() *AppStats
}
