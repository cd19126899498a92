// Package statistics tracks usage counters for the running app and mirrors
// them into Prometheus metrics.
package statistics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	domain "kleinpdf/internal/domain/statistics"
)

const namespace = "kleinpdf"

type metrics struct {
	filesCompressed prometheus.Counter
	filesFailed     prometheus.Counter
	bytesSaved      prometheus.Counter
	merges          prometheus.Counter
	mergedFiles     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		filesCompressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_compressed_total",
			Help:      "Files compressed successfully.",
		}),
		filesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Files that could not be compressed.",
		}),
		bytesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_saved_total",
			Help:      "Bytes removed by compression.",
		}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merges_total",
			Help:      "Successful merge operations.",
		}),
		mergedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merged_files_total",
			Help:      "Source files consumed by successful merges.",
		}),
	}
	reg.MustRegister(m.filesCompressed, m.filesFailed, m.bytesSaved, m.merges, m.mergedFiles)
	return m
}

// Manager keeps the in-memory AppStats. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	stats    domain.AppStats
	registry *prometheus.Registry
	metrics  *metrics
}

var _ domain.Service = (*Manager)(nil)

// NewManager creates a manager with its own metrics registry
func NewManager() *Manager {
	reg := prometheus.NewRegistry()
	return &Manager{
		registry: reg,
		metrics:  newMetrics(reg),
	}
}

// Registry exposes the metrics registry
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// UpdateStats records a finished compression batch. Negative savings count
// as zero.
func (m *Manager) UpdateStats(filesCompressed int, dataSaved int64) {
	if dataSaved < 0 {
		dataSaved = 0
	}

	m.mu.Lock()
	m.stats.SessionFilesCompressed += filesCompressed
	m.stats.SessionDataSaved += dataSaved
	m.stats.TotalFilesCompressed += int64(filesCompressed)
	m.stats.TotalDataSaved += dataSaved
	m.mu.Unlock()

	m.metrics.filesCompressed.Add(float64(filesCompressed))
	m.metrics.bytesSaved.Add(float64(dataSaved))
}

// RecordFailures counts files that failed to compress
func (m *Manager) RecordFailures(files int) {
	if files <= 0 {
		return
	}
	m.mu.Lock()
	m.stats.TotalFilesFailed += int64(files)
	m.mu.Unlock()

	m.metrics.filesFailed.Add(float64(files))
}

// RecordMerge counts one successful merge of files sources
func (m *Manager) RecordMerge(files int) {
	m.mu.Lock()
	m.stats.TotalMerges++
	m.mu.Unlock()

	m.metrics.merges.Inc()
	m.metrics.mergedFiles.Add(float64(files))
}

// GetStats returns a snapshot of the statistics
func (m *Manager) GetStats() *domain.AppStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats
	return &stats
}
