package repository

import (
	"database/sql"

	"github.com/dotakeeper/keeper-common/pkg/domain"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so each entity has
// one decode routine shared by every read path.
type rowScanner interface {
	Scan(dest ...any) error
}

// Column lists paired with the scan functions below. Every query selecting
// an entity uses its list verbatim so column order can never drift from the
// decoder.
const (
	matchColumns = `match_id, hero_id, player_slot, radiant_win, duration, game_mode,
		lobby_type, start_time, kills, deaths, assists, gold_per_min, xp_per_min,
		hero_damage, tower_damage, hero_healing, last_hits, denies, level,
		net_worth, role, partner_slot, parse_state`

	goalColumns = `id, name, hero_id, hero_scope, metric, target_value,
		target_minutes, item_id, game_mode, created_at`

	dailyChallengeColumns = `date, description, metric, difficulty, target_value,
		target_games, hero_id, status, completed_at, created_at`

	weeklyOptionColumns = `id, week_start, option_index, difficulty, description,
		metric, target_value, target_games, hero_id, reroll_generation`

	weeklyChallengeColumns = `id, week_start, description, difficulty, metric,
		target_value, target_games, hero_id, status, reroll_count, accepted_at,
		completed_at`

	historyColumns = `id, period_type, period_key, description, metric,
		target_value, achieved_value, outcome, recorded_at`
)

func scanMatch(s rowScanner) (*domain.Match, error) {
	var m domain.Match
	var partnerSlot sql.NullInt64
	err := s.Scan(
		&m.ID,
		&m.HeroID,
		&m.PlayerSlot,
		&m.RadiantWin,
		&m.Duration,
		&m.GameMode,
		&m.LobbyType,
		&m.StartTime,
		&m.Kills,
		&m.Deaths,
		&m.Assists,
		&m.GPM,
		&m.XPM,
		&m.HeroDamage,
		&m.TowerDamage,
		&m.HeroHealing,
		&m.LastHits,
		&m.Denies,
		&m.Level,
		&m.Networth,
		&m.Role,
		&partnerSlot,
		&m.ParseState,
	)
	if err != nil {
		return nil, err
	}
	if partnerSlot.Valid {
		slot := int(partnerSlot.Int64)
		m.PartnerSlot = &slot
	}
	return &m, nil
}

func scanGoal(s rowScanner) (*domain.Goal, error) {
	var g domain.Goal
	var heroID, itemID sql.NullInt64
	err := s.Scan(
		&g.ID,
		&g.Name,
		&heroID,
		&g.HeroScope,
		&g.Metric,
		&g.TargetValue,
		&g.TargetMinutes,
		&itemID,
		&g.Mode,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if heroID.Valid {
		id := int(heroID.Int64)
		g.HeroID = &id
	}
	if itemID.Valid {
		id := int(itemID.Int64)
		g.ItemID = &id
	}
	return &g, nil
}

func scanDailyChallenge(s rowScanner) (*domain.DailyChallenge, error) {
	var c domain.DailyChallenge
	var targetGames, heroID, completedAt sql.NullInt64
	err := s.Scan(
		&c.Date,
		&c.Description,
		&c.Metric,
		&c.Difficulty,
		&c.TargetValue,
		&targetGames,
		&heroID,
		&c.Status,
		&completedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if targetGames.Valid {
		n := int(targetGames.Int64)
		c.TargetGames = &n
	}
	if heroID.Valid {
		id := int(heroID.Int64)
		c.HeroID = &id
	}
	if completedAt.Valid {
		ts := completedAt.Int64
		c.CompletedAt = &ts
	}
	return &c, nil
}

func scanWeeklyOption(s rowScanner) (*domain.ChallengeOption, error) {
	var o domain.ChallengeOption
	var targetGames, heroID sql.NullInt64
	err := s.Scan(
		&o.ID,
		&o.WeekStart,
		&o.OptionIndex,
		&o.Difficulty,
		&o.Description,
		&o.Metric,
		&o.TargetValue,
		&targetGames,
		&heroID,
		&o.RerollGeneration,
	)
	if err != nil {
		return nil, err
	}
	if targetGames.Valid {
		n := int(targetGames.Int64)
		o.TargetGames = &n
	}
	if heroID.Valid {
		id := int(heroID.Int64)
		o.HeroID = &id
	}
	return &o, nil
}

func scanWeeklyChallenge(s rowScanner) (*domain.WeeklyChallenge, error) {
	var c domain.WeeklyChallenge
	var targetGames, heroID, acceptedAt, completedAt sql.NullInt64
	err := s.Scan(
		&c.ID,
		&c.WeekStart,
		&c.Description,
		&c.Difficulty,
		&c.Metric,
		&c.TargetValue,
		&targetGames,
		&heroID,
		&c.Status,
		&c.RerollCount,
		&acceptedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if targetGames.Valid {
		n := int(targetGames.Int64)
		c.TargetGames = &n
	}
	if heroID.Valid {
		id := int(heroID.Int64)
		c.HeroID = &id
	}
	if acceptedAt.Valid {
		ts := acceptedAt.Int64
		c.AcceptedAt = &ts
	}
	if completedAt.Valid {
		ts := completedAt.Int64
		c.CompletedAt = &ts
	}
	return &c, nil
}

func scanHistoryEntry(s rowScanner) (*domain.HistoryEntry, error) {
	var h domain.HistoryEntry
	err := s.Scan(
		&h.ID,
		&h.PeriodType,
		&h.PeriodKey,
		&h.Description,
		&h.Metric,
		&h.TargetValue,
		&h.AchievedValue,
		&h.Outcome,
		&h.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// nullableInt adapts an optional int field for driver parameters.
func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// nullableInt64 adapts an optional timestamp field for driver parameters.
func nullableInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
