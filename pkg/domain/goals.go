package domain

// Metric identifies what a goal measures. Each metric has its own evaluation
// semantics; they are not interchangeable.
type Metric string

const (
	// MetricNetworth is the player's net worth at the target minute.
	// Reserved: net worth series are stored per player but own-networth goals
	// are not yet evaluable.
	MetricNetworth Metric = "networth"

	// MetricKills is the kill count at the target minute. When the match ran
	// longer than the target minute the count is linearly scaled down.
	MetricKills Metric = "kills"

	// MetricLastHits is the exact creep score at the target minute. Requires
	// a parsed match; never estimated.
	MetricLastHits Metric = "last_hits"

	// MetricDenies is the exact deny count at the target minute. Requires a
	// parsed match; never estimated.
	MetricDenies Metric = "denies"

	// MetricLevel is the hero level at the target minute. Reserved.
	MetricLevel Metric = "level"

	// MetricItemTiming is the purchase time in seconds of a specific item.
	// Earlier is better; the goal's target value is a time in seconds.
	MetricItemTiming Metric = "item_timing"

	// MetricPartnerNetworth is the lane partner's net worth at the target
	// minute. Requires a recorded partner slot and a parsed match.
	MetricPartnerNetworth Metric = "partner_networth"
)

// IsValid returns true if the metric is a valid type.
func (m Metric) IsValid() bool {
	switch m {
	case MetricNetworth, MetricKills, MetricLastHits, MetricDenies,
		MetricLevel, MetricItemTiming, MetricPartnerNetworth:
		return true
	default:
		return false
	}
}

// HeroScope is a role-group filter used instead of a specific hero.
type HeroScope string

const (
	// HeroScopeNone means the goal filters by hero id, or not at all.
	HeroScopeNone HeroScope = ""

	// HeroScopeAnyCarry matches matches played as position 1.
	HeroScopeAnyCarry HeroScope = "any_carry"

	// HeroScopeAnyCore matches carry, mid, and offlane matches.
	HeroScopeAnyCore HeroScope = "any_core"

	// HeroScopeAnySupport matches soft and hard support matches.
	HeroScopeAnySupport HeroScope = "any_support"
)

// IsValid returns true if the scope is a valid value.
func (s HeroScope) IsValid() bool {
	switch s {
	case HeroScopeNone, HeroScopeAnyCarry, HeroScopeAnyCore, HeroScopeAnySupport:
		return true
	default:
		return false
	}
}

// Matches reports whether a match's lane role falls inside the scope.
func (s HeroScope) Matches(role Role) bool {
	switch s {
	case HeroScopeAnyCarry:
		return role == RoleCarry
	case HeroScopeAnyCore:
		return role.IsCore()
	case HeroScopeAnySupport:
		return role.IsSupport()
	default:
		return false
	}
}

// ModeFilter restricts a goal to one game mode.
type ModeFilter string

const (
	ModeFilterRanked ModeFilter = "ranked"
	ModeFilterTurbo  ModeFilter = "turbo"
)

// IsValid returns true if the filter is a valid value.
func (f ModeFilter) IsValid() bool {
	return f == ModeFilterRanked || f == ModeFilterTurbo
}

// Matches reports whether a raw game-mode code passes the filter. Only the
// ranked and turbo codes are ever evaluated against goals.
func (f ModeFilter) Matches(gameMode int) bool {
	switch f {
	case ModeFilterRanked:
		return gameMode == GameModeRanked
	case ModeFilterTurbo:
		return gameMode == GameModeTurbo
	default:
		return false
	}
}

// Goal is a user-defined performance target.
//
// HeroScope and HeroID are mutually exclusive filters; HeroScope takes
// precedence when both are set. With neither set the goal applies to every
// hero. TargetMinutes is ignored for item timing goals, which measure
// TargetValue as a purchase time in seconds and require ItemID.
type Goal struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	HeroID        *int       `json:"hero_id,omitempty" db:"hero_id"`
	HeroScope     HeroScope  `json:"hero_scope,omitempty" db:"hero_scope"`
	Metric        Metric     `json:"metric" db:"metric"`
	TargetValue   float64    `json:"target_value" db:"target_value"`
	TargetMinutes int        `json:"target_minutes" db:"target_minutes"`
	ItemID        *int       `json:"item_id,omitempty" db:"item_id"`
	Mode          ModeFilter `json:"game_mode" db:"game_mode"`
	CreatedAt     int64      `json:"created_at" db:"created_at"`
}

// GoalEvaluation is the outcome of evaluating one goal against one match. A
// nil *GoalEvaluation means the goal was not applicable or not evaluable for
// the match, which is distinct from evaluated-and-not-achieved.
type GoalEvaluation struct {
	Achieved    bool    `json:"achieved"`
	ActualValue float64 `json:"actual_value"`
}
