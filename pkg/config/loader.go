package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// SettingsLoader loads, validates, and persists user settings from a JSON
// file. A missing file is not an error: defaults are returned so first run
// works without setup.
type SettingsLoader struct {
	settingsPath string
	validator    *Validator
	logger       *slog.Logger
}

// NewSettingsLoader creates a new SettingsLoader instance.
//
// Parameters:
//   - settingsPath: Path to the settings.json file
//   - logger: Structured logger for operational logging
func NewSettingsLoader(settingsPath string, logger *slog.Logger) *SettingsLoader {
	return &SettingsLoader{
		settingsPath: settingsPath,
		validator:    NewValidator(),
		logger:       logger,
	}
}

// Load reads the settings file and returns validated settings.
// This method performs three steps:
// 1. Read the settings file from disk (missing file yields defaults)
// 2. Parse JSON into Settings struct
// 3. Validate all business rules
//
// A present-but-invalid file is a hard error. This is a "fail fast"
// operation so a corrupted file surfaces immediately instead of silently
// producing wrong suggestion targets.
func (l *SettingsLoader) Load() (*Settings, error) {
	data, err := os.ReadFile(l.settingsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Info("Settings file not found, using defaults",
				"settings_path", l.settingsPath,
			)
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}

	// Backward compatibility: default fields absent from older files
	if settings.SuggestionDifficulty == "" {
		settings.SuggestionDifficulty = SuggestionDifficultyMedium
	}
	if settings.AnalyticsConsent == "" {
		settings.AnalyticsConsent = AnalyticsConsentNotYet
	}

	if err := l.validator.Validate(&settings); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}

	l.logger.Info("Settings loaded successfully",
		"suggestion_difficulty", settings.SuggestionDifficulty,
		"settings_path", l.settingsPath,
	)

	return &settings, nil
}

// Save validates and writes the settings to disk, creating parent
// directories as needed.
func (l *SettingsLoader) Save(settings *Settings) error {
	if err := l.validator.Validate(settings); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.settingsPath), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(l.settingsPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	l.logger.Info("Settings saved",
		"settings_path", l.settingsPath,
	)

	return nil
}
