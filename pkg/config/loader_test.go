package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSettingsLoader_Load(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("successful load", func(t *testing.T) {
		tmpFile := createTempSettingsFile(t, `{
			"steam_id": "76561198000000001",
			"suggestion_difficulty": "hard",
			"analytics_consent": "accepted"
		}`)
		defer func() { _ = os.Remove(tmpFile) }()

		loader := NewSettingsLoader(tmpFile, logger)
		settings, err := loader.Load()

		if err != nil {
			t.Fatalf("Load() unexpected error = %v", err)
		}

		if settings == nil {
			t.Fatal("Load() returned nil settings")
		}

		if settings.SuggestionDifficulty != SuggestionDifficultyHard {
			t.Errorf("expected hard difficulty, got %q", settings.SuggestionDifficulty)
		}

		if settings.SteamID == nil || *settings.SteamID != "76561198000000001" {
			t.Errorf("expected steam id to round-trip, got %v", settings.SteamID)
		}
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		loader := NewSettingsLoader(filepath.Join(t.TempDir(), "settings.json"), logger)
		settings, err := loader.Load()

		if err != nil {
			t.Fatalf("Load() unexpected error = %v", err)
		}

		if settings.SuggestionDifficulty != SuggestionDifficultyMedium {
			t.Errorf("expected medium default, got %q", settings.SuggestionDifficulty)
		}

		if settings.AnalyticsConsent != AnalyticsConsentNotYet {
			t.Errorf("expected not_yet default, got %q", settings.AnalyticsConsent)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tmpFile := createTempSettingsFile(t, `{not json`)
		defer func() { _ = os.Remove(tmpFile) }()

		loader := NewSettingsLoader(tmpFile, logger)
		_, err := loader.Load()

		if err == nil {
			t.Fatal("Load() expected error, got nil")
		}

		if !strings.Contains(err.Error(), "failed to parse settings JSON") {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("validation failure surfaces", func(t *testing.T) {
		tmpFile := createTempSettingsFile(t, `{
			"suggestion_difficulty": "brutal",
			"analytics_consent": "accepted"
		}`)
		defer func() { _ = os.Remove(tmpFile) }()

		loader := NewSettingsLoader(tmpFile, logger)
		_, err := loader.Load()

		if err == nil {
			t.Fatal("Load() expected error, got nil")
		}

		if !strings.Contains(err.Error(), "settings validation failed") {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("older file without new fields gets defaults", func(t *testing.T) {
		tmpFile := createTempSettingsFile(t, `{"steam_id": "123456"}`)
		defer func() { _ = os.Remove(tmpFile) }()

		loader := NewSettingsLoader(tmpFile, logger)
		settings, err := loader.Load()

		if err != nil {
			t.Fatalf("Load() unexpected error = %v", err)
		}

		if settings.SuggestionDifficulty != SuggestionDifficultyMedium {
			t.Errorf("expected medium default, got %q", settings.SuggestionDifficulty)
		}
	})
}

func TestSettingsLoader_Save(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("round-trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "settings.json")
		loader := NewSettingsLoader(path, logger)

		steamID := "76561198000000001"
		in := &Settings{
			SteamID:              &steamID,
			SuggestionDifficulty: SuggestionDifficultyEasy,
			AnalyticsConsent:     AnalyticsConsentDeclined,
		}

		if err := loader.Save(in); err != nil {
			t.Fatalf("Save() unexpected error = %v", err)
		}

		out, err := loader.Load()
		if err != nil {
			t.Fatalf("Load() unexpected error = %v", err)
		}

		if out.SuggestionDifficulty != in.SuggestionDifficulty {
			t.Errorf("difficulty did not round-trip: got %q", out.SuggestionDifficulty)
		}
		if out.AnalyticsConsent != in.AnalyticsConsent {
			t.Errorf("consent did not round-trip: got %q", out.AnalyticsConsent)
		}
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		loader := NewSettingsLoader(path, logger)

		err := loader.Save(&Settings{
			SuggestionDifficulty: SuggestionDifficultyCustom,
			AnalyticsConsent:     AnalyticsConsentNotYet,
		})

		if err == nil {
			t.Fatal("Save() expected error for custom difficulty without percentage")
		}
	})
}

// createTempSettingsFile writes content to a temp file and returns its path.
func createTempSettingsFile(t *testing.T, content string) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(tmpFile, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp settings file: %v", err)
	}
	return tmpFile
}
