package config

// SuggestionDifficulty controls how aggressive a generated hero suggestion
// target is relative to the player's recent average.
type SuggestionDifficulty string

const (
	SuggestionDifficultyEasy   SuggestionDifficulty = "easy"
	SuggestionDifficultyMedium SuggestionDifficulty = "medium"
	SuggestionDifficultyHard   SuggestionDifficulty = "hard"

	// SuggestionDifficultyCustom uses the user-supplied percentage with a
	// two-point spread around it.
	SuggestionDifficultyCustom SuggestionDifficulty = "custom"
)

// IsValid returns true if the difficulty is a valid value.
func (d SuggestionDifficulty) IsValid() bool {
	switch d {
	case SuggestionDifficultyEasy, SuggestionDifficultyMedium,
		SuggestionDifficultyHard, SuggestionDifficultyCustom:
		return true
	default:
		return false
	}
}

// AnalyticsConsent tracks whether the user has answered the analytics prompt.
type AnalyticsConsent string

const (
	AnalyticsConsentAccepted AnalyticsConsent = "accepted"
	AnalyticsConsentDeclined AnalyticsConsent = "declined"
	AnalyticsConsentNotYet   AnalyticsConsent = "not_yet"
)

// IsValid returns true if the consent value is valid.
func (c AnalyticsConsent) IsValid() bool {
	switch c {
	case AnalyticsConsentAccepted, AnalyticsConsentDeclined, AnalyticsConsentNotYet:
		return true
	default:
		return false
	}
}

// Settings is the user configuration loaded from settings.json.
type Settings struct {
	SteamID                    *string              `json:"steam_id,omitempty"`
	SuggestionDifficulty       SuggestionDifficulty `json:"suggestion_difficulty"`
	SuggestionCustomPercentage *float64             `json:"suggestion_custom_percentage,omitempty"`
	AnalyticsConsent           AnalyticsConsent     `json:"analytics_consent"`
}

// DefaultSettings returns the settings used before the user has saved any.
func DefaultSettings() *Settings {
	return &Settings{
		SuggestionDifficulty: SuggestionDifficultyMedium,
		AnalyticsConsent:     AnalyticsConsentNotYet,
	}
}

// ImprovementRange returns the (min, max) fractional improvement applied to
// a hero suggestion baseline for the configured difficulty. Custom centers a
// two-point spread on the user's percentage.
func (s *Settings) ImprovementRange() (float64, float64) {
	switch s.SuggestionDifficulty {
	case SuggestionDifficultyEasy:
		return 0.03, 0.05
	case SuggestionDifficultyHard:
		return 0.10, 0.15
	case SuggestionDifficultyCustom:
		if s.SuggestionCustomPercentage != nil {
			pct := *s.SuggestionCustomPercentage / 100.0
			lo := pct - 0.02
			if lo < 0 {
				lo = 0
			}
			return lo, pct + 0.02
		}
		return 0.05, 0.10
	default:
		return 0.05, 0.10
	}
}
