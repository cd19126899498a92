package services

import (
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"kleinpdf/internal/common"
	"kleinpdf/internal/domain/compression"
	"kleinpdf/internal/domain/preferences"
	"kleinpdf/internal/models"
)

// PreferencesService handles user preferences operations
type PreferencesService struct {
	db *gorm.DB
}

var _ preferences.Service = (*PreferencesService)(nil)

// NewPreferencesService creates a new preferences service
func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// GetPreferences gets the current user preferences
func (s *PreferencesService) GetPreferences() (*preferences.UserPreferencesData, error) {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return nil, common.NewPreferencesError("load", err)
	}

	prefsData := prefs.GetPreferences()
	return &prefsData, nil
}

// UpdatePreferences updates user preferences. Unknown keys and values of the
// wrong type are ignored; an unknown compression level is an error.
func (s *PreferencesService) UpdatePreferences(data map[string]any) error {
	prefs, err := models.GetOrCreatePreferences(s.db)
	if err != nil {
		return common.NewPreferencesError("load", err)
	}

	currentPrefs := prefs.GetPreferences()

	// Update fields from request data
	if val, ok := data["default_compression_level"]; ok {
		if name, ok := val.(string); ok {
			level, err := compression.ParseLevel(name)
			if err != nil {
				return common.NewPreferencesError("update", err)
			}
			currentPrefs.DefaultCompressionLevel = level
		}
	}

	// The frontend slider sends a raw number.
	if val, ok := data["compression_slider"]; ok {
		if value, ok := val.(float64); ok {
			currentPrefs.DefaultCompressionLevel = compression.LevelFromSlider(int(value))
		}
	}

	if val, ok := data["scale_pages"]; ok {
		if scale, ok := val.(bool); ok {
			currentPrefs.ScalePages = scale
		}
	}

	if val, ok := data["default_download_folder"]; ok {
		if folder, ok := val.(string); ok {
			currentPrefs.DefaultDownloadFolder = folder
		}
	}

	if val, ok := data["auto_download_enabled"]; ok {
		if enabled, ok := val.(bool); ok {
			currentPrefs.AutoDownloadEnabled = enabled
		}
	}

	// Save updated preferences
	if err := prefs.SetPreferences(currentPrefs); err != nil {
		return common.NewPreferencesError("encode", err)
	}

	if err := s.db.Save(prefs).Error; err != nil {
		return common.NewPreferencesError("save", err)
	}
	return nil
}

// GetDownloadFolder returns the preferred download folder, or the user's
// Downloads directory when none is set.
func (s *PreferencesService) GetDownloadFolder() (string, error) {
	prefs, err := s.GetPreferences()
	if err != nil {
		return "", err
	}
	if prefs.DefaultDownloadFolder != "" {
		return prefs.DefaultDownloadFolder, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", common.NewPreferencesError("resolve download folder", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}
