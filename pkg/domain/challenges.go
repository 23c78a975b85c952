package domain

// ChallengeStatus represents the lifecycle state of a daily or weekly
// challenge. Skipped applies to weekly challenges only.
type ChallengeStatus string

const (
	// ChallengeStatusActive indicates the challenge is in play.
	ChallengeStatusActive ChallengeStatus = "active"

	// ChallengeStatusCompleted indicates the target was met before the
	// period ended.
	ChallengeStatusCompleted ChallengeStatus = "completed"

	// ChallengeStatusFailed indicates the period ended without the target
	// being met. Set lazily on the next access after the period passes.
	ChallengeStatusFailed ChallengeStatus = "failed"

	// ChallengeStatusSkipped indicates the user declined the week outright.
	// Terminal; blocks accept and reroll for that week.
	ChallengeStatusSkipped ChallengeStatus = "skipped"
)

// IsValid returns true if the status is a valid value.
func (s ChallengeStatus) IsValid() bool {
	switch s {
	case ChallengeStatusActive, ChallengeStatusCompleted, ChallengeStatusFailed, ChallengeStatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the challenge can no longer change state.
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusCompleted || s == ChallengeStatusFailed || s == ChallengeStatusSkipped
}

// Difficulty is the tier a generated challenge was drawn from.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid returns true if the difficulty is a valid value.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// ChallengeMetric is the machine-checkable tag a generated challenge is
// evaluated by. Daily and weekly challenges use overlapping but distinct
// tag sets.
type ChallengeMetric string

const (
	// Shared by daily and weekly challenges.
	ChallengeMetricWins        ChallengeMetric = "wins"
	ChallengeMetricGamesPlayed ChallengeMetric = "games_played"

	// Daily only.
	ChallengeMetricKills       ChallengeMetric = "kills"
	ChallengeMetricGPM         ChallengeMetric = "gpm"
	ChallengeMetricHeroDamage  ChallengeMetric = "hero_damage"
	ChallengeMetricPositiveKDA ChallengeMetric = "positive_kda"
	ChallengeMetricLowDeaths   ChallengeMetric = "low_deaths"
	ChallengeMetricCSAt10      ChallengeMetric = "cs_at_10"

	// Weekly only.
	ChallengeMetricPositiveKDAGames ChallengeMetric = "positive_kda_games"
	ChallengeMetricKillsTotal       ChallengeMetric = "kills_total"
	ChallengeMetricAvgGPM           ChallengeMetric = "avg_gpm"
	ChallengeMetricHeroDamageTotal  ChallengeMetric = "hero_damage_total"
	ChallengeMetricLowDeathsGames   ChallengeMetric = "low_deaths_games"
	ChallengeMetricCSAt10Avg        ChallengeMetric = "cs_at_10_avg"
)

// DailyChallenge is the single generated challenge for one calendar date.
// Date is the natural key, formatted YYYY-MM-DD.
type DailyChallenge struct {
	Date        string          `json:"date" db:"date"`
	Description string          `json:"description" db:"description"`
	Metric      ChallengeMetric `json:"metric" db:"metric"`
	Difficulty  Difficulty      `json:"difficulty" db:"difficulty"`
	TargetValue float64         `json:"target_value" db:"target_value"`
	TargetGames *int            `json:"target_games,omitempty" db:"target_games"`
	HeroID      *int            `json:"hero_id,omitempty" db:"hero_id"`
	Status      ChallengeStatus `json:"status" db:"status"`
	CompletedAt *int64          `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   int64           `json:"created_at" db:"created_at"`
}

// DailyProgress is the evaluated state of a daily challenge.
type DailyProgress struct {
	Current     float64 `json:"current"`
	Target      float64 `json:"target"`
	Completed   bool    `json:"completed"`
	GamesPlayed int     `json:"games_played"`
}

// ChallengeOption is one of the candidate weekly challenges offered for a
// week. Up to three exist per week; rerolling replaces all of them and bumps
// RerollGeneration.
type ChallengeOption struct {
	ID               int64           `json:"id" db:"id"`
	WeekStart        string          `json:"week_start" db:"week_start"`
	OptionIndex      int             `json:"option_index" db:"option_index"`
	Difficulty       Difficulty      `json:"difficulty" db:"difficulty"`
	Description      string          `json:"description" db:"description"`
	Metric           ChallengeMetric `json:"metric" db:"metric"`
	TargetValue      float64         `json:"target_value" db:"target_value"`
	TargetGames      *int            `json:"target_games,omitempty" db:"target_games"`
	HeroID           *int            `json:"hero_id,omitempty" db:"hero_id"`
	RerollGeneration int             `json:"reroll_generation" db:"reroll_generation"`
}

// WeeklyChallenge is the accepted (or skipped) challenge for one week.
// WeekStart is the most recent Sunday, formatted YYYY-MM-DD. At most one
// non-superseded row exists per week.
type WeeklyChallenge struct {
	ID          int64           `json:"id" db:"id"`
	WeekStart   string          `json:"week_start" db:"week_start"`
	Description string          `json:"description" db:"description"`
	Difficulty  Difficulty      `json:"difficulty" db:"difficulty"`
	Metric      ChallengeMetric `json:"metric" db:"metric"`
	TargetValue float64         `json:"target_value" db:"target_value"`
	TargetGames *int            `json:"target_games,omitempty" db:"target_games"`
	HeroID      *int            `json:"hero_id,omitempty" db:"hero_id"`
	Status      ChallengeStatus `json:"status" db:"status"`
	RerollCount int             `json:"reroll_count" db:"reroll_count"`
	AcceptedAt  *int64          `json:"accepted_at,omitempty" db:"accepted_at"`
	CompletedAt *int64          `json:"completed_at,omitempty" db:"completed_at"`
}

// WeeklyProgress is the evaluated state of an accepted weekly challenge.
type WeeklyProgress struct {
	Current       float64 `json:"current"`
	Target        float64 `json:"target"`
	Completed     bool    `json:"completed"`
	GamesPlayed   int     `json:"games_played"`
	DaysRemaining int     `json:"days_remaining"`
}

// PeriodType distinguishes daily from weekly entries in the history ledger.
type PeriodType string

const (
	PeriodTypeDaily  PeriodType = "daily"
	PeriodTypeWeekly PeriodType = "weekly"
)

// IsValid returns true if the period type is a valid value.
func (p PeriodType) IsValid() bool {
	return p == PeriodTypeDaily || p == PeriodTypeWeekly
}

// HistoryEntry is one appended record of a terminal challenge outcome.
// Exactly one entry is written per period transition into a terminal state.
type HistoryEntry struct {
	ID            int64           `json:"id" db:"id"`
	PeriodType    PeriodType      `json:"period_type" db:"period_type"`
	PeriodKey     string          `json:"period_key" db:"period_key"`
	Description   string          `json:"description" db:"description"`
	Metric        ChallengeMetric `json:"metric" db:"metric"`
	TargetValue   float64         `json:"target_value" db:"target_value"`
	AchievedValue float64         `json:"achieved_value" db:"achieved_value"`
	Outcome       ChallengeStatus `json:"outcome" db:"outcome"`
	RecordedAt    int64           `json:"recorded_at" db:"recorded_at"`
}

// HeroSuggestion is the singleton hero practice suggestion: a hero the
// player knows well, with a creep-score target slightly above their recent
// average. Valid for seven days from CreatedAt.
type HeroSuggestion struct {
	HeroID    int     `json:"hero_id" db:"hero_id"`
	AverageCS float64 `json:"average_cs" db:"average_cs"`
	TargetCS  int     `json:"target_cs" db:"target_cs"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}
