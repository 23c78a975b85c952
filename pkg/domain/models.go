package domain

// ParseState tracks how much detail is available for a stored match.
//
// Matches arrive from the provider with summary stats only. Requesting a
// replay parse unlocks per-minute series and item timings. The lifecycle is:
//
//	unparsed -> parsing -> parsed
//	unparsed -> parsing -> failed
//
// A process crash can strand a match in "parsing"; those rows are reset to
// "unparsed" when the store is opened.
type ParseState string

const (
	// ParseStateUnparsed indicates only summary stats are stored.
	ParseStateUnparsed ParseState = "unparsed"

	// ParseStateParsing indicates a parse request is in flight.
	ParseStateParsing ParseState = "parsing"

	// ParseStateParsed indicates per-minute series and item timings are stored.
	ParseStateParsed ParseState = "parsed"

	// ParseStateFailed indicates the parse attempt failed. Failed matches may
	// be retried, so they are treated as unparsed by ingestion.
	ParseStateFailed ParseState = "failed"
)

// IsValid returns true if the parse state is a valid state.
func (s ParseState) IsValid() bool {
	switch s {
	case ParseStateUnparsed, ParseStateParsing, ParseStateParsed, ParseStateFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo returns true if the state machine permits moving to next.
func (s ParseState) CanTransitionTo(next ParseState) bool {
	switch s {
	case ParseStateUnparsed, ParseStateFailed:
		return next == ParseStateParsing
	case ParseStateParsing:
		return next == ParseStateParsed || next == ParseStateFailed || next == ParseStateUnparsed
	default:
		return false
	}
}

// Game mode IDs as reported by the provider.
const (
	// GameModeRanked is All Pick ranked matchmaking.
	GameModeRanked = 22

	// GameModeTurbo is the accelerated Turbo mode.
	GameModeTurbo = 23
)

// Role classifies the tracked player's lane position in a match, using the
// provider's numeric codes.
type Role int

const (
	RoleUnknown     Role = 0
	RoleCarry       Role = 1
	RoleMid         Role = 2
	RoleOfflane     Role = 3
	RoleSoftSupport Role = 4
	RoleHardSupport Role = 5
)

// IsValid returns true if the role is a valid value.
func (r Role) IsValid() bool {
	return r >= RoleUnknown && r <= RoleHardSupport
}

// IsCore returns true for farming positions (carry, mid, offlane).
func (r Role) IsCore() bool {
	return r == RoleCarry || r == RoleMid || r == RoleOfflane
}

// IsSupport returns true for the two support positions.
func (r Role) IsSupport() bool {
	return r == RoleSoftSupport || r == RoleHardSupport
}

// Match is one recorded game for the tracked player.
//
// StartTime is epoch seconds. Duration is in seconds. PlayerSlot follows the
// provider convention: 0-127 is Radiant, 128-255 is Dire. PartnerSlot is the
// lane partner's slot when one was detected, nil otherwise.
type Match struct {
	ID          int64      `json:"match_id" db:"match_id"`
	HeroID      int        `json:"hero_id" db:"hero_id"`
	PlayerSlot  int        `json:"player_slot" db:"player_slot"`
	RadiantWin  bool       `json:"radiant_win" db:"radiant_win"`
	Duration    int        `json:"duration" db:"duration"`
	GameMode    int        `json:"game_mode" db:"game_mode"`
	LobbyType   int        `json:"lobby_type" db:"lobby_type"`
	StartTime   int64      `json:"start_time" db:"start_time"`
	Kills       int        `json:"kills" db:"kills"`
	Deaths      int        `json:"deaths" db:"deaths"`
	Assists     int        `json:"assists" db:"assists"`
	GPM         int        `json:"gold_per_min" db:"gold_per_min"`
	XPM         int        `json:"xp_per_min" db:"xp_per_min"`
	HeroDamage  int        `json:"hero_damage" db:"hero_damage"`
	TowerDamage int        `json:"tower_damage" db:"tower_damage"`
	HeroHealing int        `json:"hero_healing" db:"hero_healing"`
	LastHits    int        `json:"last_hits" db:"last_hits"`
	Denies      int        `json:"denies" db:"denies"`
	Level       int        `json:"level" db:"level"`
	Networth    int        `json:"net_worth" db:"net_worth"`
	Role        Role       `json:"role" db:"role"`
	PartnerSlot *int       `json:"partner_slot,omitempty" db:"partner_slot"`
	ParseState  ParseState `json:"parse_state" db:"parse_state"`
}

// IsRadiant returns true if the tracked player was on the Radiant side.
func (m *Match) IsRadiant() bool {
	return m.PlayerSlot < 128
}

// IsWin returns true if the tracked player's team won.
func (m *Match) IsWin() bool {
	return m.IsRadiant() == m.RadiantWin
}

// DurationMinutes returns the match length in whole minutes, rounded down.
func (m *Match) DurationMinutes() int {
	return m.Duration / 60
}

// HasPositiveKDA returns true if kills plus assists exceed deaths.
func (m *Match) HasPositiveKDA() bool {
	return m.Kills+m.Assists > m.Deaths
}

// CSSample is one point of the tracked player's creep score series.
// Minute 0 is the value at the horn.
type CSSample struct {
	MatchID  int64 `json:"match_id" db:"match_id"`
	Minute   int   `json:"minute" db:"minute"`
	LastHits int   `json:"last_hits" db:"last_hits"`
	Denies   int   `json:"denies" db:"denies"`
}

// NetworthSample is one point of a player's net worth series. Series are
// stored for every player in the match so lane partners can be compared.
type NetworthSample struct {
	MatchID    int64 `json:"match_id" db:"match_id"`
	PlayerSlot int   `json:"player_slot" db:"player_slot"`
	Minute     int   `json:"minute" db:"minute"`
	Networth   int   `json:"networth" db:"networth"`
}

// ItemTiming records when the tracked player first purchased an item.
// Seconds is game time; at most one row per item per match.
type ItemTiming struct {
	MatchID int64 `json:"match_id" db:"match_id"`
	ItemID  int   `json:"item_id" db:"item_id"`
	Seconds int   `json:"seconds" db:"seconds"`
}
