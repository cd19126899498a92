package preferences

import (
	"kleinpdf/internal/domain/compression"
)

// UserPreferencesData is the persisted set of user choices.
type UserPreferencesData struct {
	DefaultCompressionLevel compression.Level `json:"default_compression_level"`
	// ScalePages turns on the page-scaling compression variant.
	ScalePages            bool   `json:"scale_pages"`
	DefaultDownloadFolder string `json:"default_download_folder"`
	AutoDownloadEnabled   bool   `json:"auto_download_enabled"`
}

// DefaultPreferences returns default preference values
func DefaultPreferences() UserPreferencesData {
	return UserPreferencesData{
		DefaultCompressionLevel: compression.DefaultLevel,
	}
}

// Normalize replaces values that are no longer valid with defaults.
func (p UserPreferencesData) Normalize() UserPreferencesData {
	if !p.DefaultCompressionLevel.Valid() {
		p.DefaultCompressionLevel = compression.DefaultLevel
	}
	return p
}

type Repository interface {
	GetPreferences() (*UserPreferencesData, error)
	UpdatePreferences(data map[string]any) error
}

type Service interface {
	Repository
	GetDownloadFolder() (string, error)
}
