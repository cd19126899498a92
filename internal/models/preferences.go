package models

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"kleinpdf/internal/domain/preferences"
)

// UserPreferences represents user preferences in the database
type UserPreferences struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PreferencesJSON string    `gorm:"type:text" json:"preferences_json"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GetPreferences parses and returns the preferences data
func (up *UserPreferences) GetPreferences() preferences.UserPreferencesData {
	if up.PreferencesJSON == "" {
		return preferences.DefaultPreferences()
	}

	prefs := preferences.DefaultPreferences()
	if err := json.Unmarshal([]byte(up.PreferencesJSON), &prefs); err != nil {
		return preferences.DefaultPreferences()
	}

	return prefs.Normalize()
}

// SetPreferences sets the preferences data
func (up *UserPreferences) SetPreferences(prefs preferences.UserPreferencesData) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	up.PreferencesJSON = string(data)
	return nil
}

// GetOrCreatePreferences gets or creates the global preferences instance
func GetOrCreatePreferences(db *gorm.DB) (*UserPreferences, error) {
	var prefs UserPreferences

	// Try to get existing preferences with ID = 1
	result := db.First(&prefs, 1)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, result.Error
		}

		prefs = UserPreferences{
			ID: 1,
		}
		if err := prefs.SetPreferences(preferences.DefaultPreferences()); err != nil {
			return nil, err
		}
		if err := db.Create(&prefs).Error; err != nil {
			return nil, err
		}
	}

	return &prefs, nil
}
