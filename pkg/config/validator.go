package config

import (
	"fmt"
	"strconv"

	kerrors "github.com/dotakeeper/keeper-common/pkg/errors"
)

// Validator validates user settings.
// It ensures all business rules are met before settings are used or saved.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate performs comprehensive validation of the settings.
// It checks for:
// - A recognized suggestion difficulty
// - A custom percentage present and sane when difficulty is custom
// - A recognized analytics consent value
// - A numeric Steam ID when one is set
//
// Returns an error describing the first validation failure encountered.
func (v *Validator) Validate(settings *Settings) error {
	if !settings.SuggestionDifficulty.IsValid() {
		return kerrors.ErrConfigInvalid(fmt.Sprintf(
			"invalid suggestion difficulty '%s' (must be 'easy', 'medium', 'hard', or 'custom')",
			settings.SuggestionDifficulty))
	}

	if settings.SuggestionDifficulty == SuggestionDifficultyCustom {
		if settings.SuggestionCustomPercentage == nil {
			return kerrors.ErrConfigInvalid("custom difficulty requires suggestion_custom_percentage")
		}
		pct := *settings.SuggestionCustomPercentage
		if pct <= 0 || pct > 100 {
			return kerrors.ErrConfigInvalid(fmt.Sprintf(
				"suggestion_custom_percentage must be in (0, 100], got %v", pct))
		}
	}

	if !settings.AnalyticsConsent.IsValid() {
		return kerrors.ErrConfigInvalid(fmt.Sprintf(
			"invalid analytics_consent '%s' (must be 'accepted', 'declined', or 'not_yet')",
			settings.AnalyticsConsent))
	}

	if settings.SteamID != nil {
		if _, err := strconv.ParseUint(*settings.SteamID, 10, 64); err != nil {
			return kerrors.ErrConfigInvalid(fmt.Sprintf(
				"steam_id must be a numeric 64-bit ID, got '%s'", *settings.SteamID))
		}
	}

	return nil
}
