package repository

import (
	"context"
	"database/sql"

	"github.com/dotakeeper/keeper-common/pkg/domain"
	"github.com/dotakeeper/keeper-common/pkg/errors"
)

// sqlStore holds the query logic shared by PostgresStore and SQLiteStore.
// Queries are written with ? placeholders and passed through the dialect's
// rebind function (identity for SQLite, $N numbering for Postgres).
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

func (s *sqlStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *sqlStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *sqlStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// InsertMatch stores a match if no row with the same id exists.
func (s *sqlStore) InsertMatch(ctx context.Context, m *domain.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (match_id) DO NOTHING
	`

	state := m.ParseState
	if state == "" {
		state = domain.ParseStateUnparsed
	}

	_, err := s.exec(ctx, query,
		m.ID, m.HeroID, m.PlayerSlot, m.RadiantWin, m.Duration, m.GameMode,
		m.LobbyType, m.StartTime, m.Kills, m.Deaths, m.Assists, m.GPM, m.XPM,
		m.HeroDamage, m.TowerDamage, m.HeroHealing, m.LastHits, m.Denies,
		m.Level, m.Networth, m.Role, nullableInt(m.PartnerSlot), state,
	)
	if err != nil {
		return errors.ErrDatabaseError("insert match", err)
	}
	return nil
}

// MatchExists reports whether a match id is already stored.
func (s *sqlStore) MatchExists(ctx context.Context, matchID int64) (bool, error) {
	var one int
	err := s.queryRow(ctx, `SELECT 1 FROM matches WHERE match_id = ?`, matchID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrDatabaseError("match exists", err)
	}
	return true, nil
}

// GetMatch returns one match, or (nil, nil) if absent.
func (s *sqlStore) GetMatch(ctx context.Context, matchID int64) (*domain.Match, error) {
	row := s.queryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE match_id = ?`, matchID)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get match", err)
	}
	return m, nil
}

// ListMatches returns matches ordered by start time descending.
func (s *sqlStore) ListMatches(ctx context.Context, limit int) ([]*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY start_time DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, errors.ErrDatabaseError("list matches", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanMatchRows(rows)
}

// ListMatchesSince returns matches with start_time at or after since.
func (s *sqlStore) ListMatchesSince(ctx context.Context, since int64) ([]*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE start_time >= ? ORDER BY start_time DESC`

	rows, err := s.query(ctx, query, since)
	if err != nil {
		return nil, errors.ErrDatabaseError("list matches since", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanMatchRows(rows)
}

// ListUnparsedMatches returns matches still needing enrichment.
func (s *sqlStore) ListUnparsedMatches(ctx context.Context) ([]*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE parse_state IN ('unparsed', 'failed')
		ORDER BY start_time DESC`

	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, errors.ErrDatabaseError("list unparsed matches", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanMatchRows(rows)
}

func (s *sqlStore) scanMatchRows(rows *sql.Rows) ([]*domain.Match, error) {
	var matches []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError("scan match row", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate match rows", err)
	}
	return matches, nil
}

// OldestMatchStart returns the earliest stored start time, or nil.
func (s *sqlStore) OldestMatchStart(ctx context.Context) (*int64, error) {
	var start sql.NullInt64
	err := s.queryRow(ctx, `SELECT MIN(start_time) FROM matches`).Scan(&start)
	if err != nil {
		return nil, errors.ErrDatabaseError("oldest match start", err)
	}
	if !start.Valid {
		return nil, nil
	}
	return &start.Int64, nil
}

// UpdateParseState sets a match's parse state.
func (s *sqlStore) UpdateParseState(ctx context.Context, matchID int64, state domain.ParseState) error {
	if !state.IsValid() {
		return errors.ErrValidationFailed("parse_state", "unknown state "+string(state))
	}

	_, err := s.exec(ctx, `UPDATE matches SET parse_state = ? WHERE match_id = ?`, state, matchID)
	if err != nil {
		return errors.ErrDatabaseError("update parse state", err)
	}
	return nil
}

// ResetParsingMatches moves parsing matches back to unparsed.
func (s *sqlStore) ResetParsingMatches(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, `UPDATE matches SET parse_state = 'unparsed' WHERE parse_state = 'parsing'`)
	if err != nil {
		return 0, errors.ErrDatabaseError("reset parsing matches", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.ErrDatabaseError("reset parsing matches", err)
	}
	return n, nil
}

// UpdateMatchRole sets the detected lane role for a match.
func (s *sqlStore) UpdateMatchRole(ctx context.Context, matchID int64, role domain.Role) error {
	if !role.IsValid() {
		return errors.ErrValidationFailed("role", "unknown role")
	}

	_, err := s.exec(ctx, `UPDATE matches SET role = ? WHERE match_id = ?`, role, matchID)
	if err != nil {
		return errors.ErrDatabaseError("update match role", err)
	}
	return nil
}

// UpdatePartnerSlot records the lane partner's slot for a match.
func (s *sqlStore) UpdatePartnerSlot(ctx context.Context, matchID int64, partnerSlot int) error {
	_, err := s.exec(ctx, `UPDATE matches SET partner_slot = ? WHERE match_id = ?`, partnerSlot, matchID)
	if err != nil {
		return errors.ErrDatabaseError("update partner slot", err)
	}
	return nil
}

// PartnerSlot returns the recorded lane partner slot, or nil.
func (s *sqlStore) PartnerSlot(ctx context.Context, matchID int64) (*int, error) {
	var slot sql.NullInt64
	err := s.queryRow(ctx, `SELECT partner_slot FROM matches WHERE match_id = ?`, matchID).Scan(&slot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get partner slot", err)
	}
	if !slot.Valid {
		return nil, nil
	}
	n := int(slot.Int64)
	return &n, nil
}

// ReplaceCSSeries atomically replaces a match's creep-score series.
func (s *sqlStore) ReplaceCSSeries(ctx context.Context, matchID int64, samples []domain.CSSample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseError("begin replace cs series", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM cs_samples WHERE match_id = ?`), matchID); err != nil {
		return errors.ErrDatabaseError("clear cs series", err)
	}

	insert := s.rebind(`INSERT INTO cs_samples (match_id, minute, last_hits, denies) VALUES (?, ?, ?, ?)`)
	for _, sample := range samples {
		if _, err := tx.ExecContext(ctx, insert, matchID, sample.Minute, sample.LastHits, sample.Denies); err != nil {
			return errors.ErrDatabaseError("insert cs sample", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseError("commit cs series", err)
	}
	return nil
}

// CSAtMinute returns the exact sample at a minute, or (nil, nil).
func (s *sqlStore) CSAtMinute(ctx context.Context, matchID int64, minute int) (*domain.CSSample, error) {
	var sample domain.CSSample
	err := s.queryRow(ctx,
		`SELECT match_id, minute, last_hits, denies FROM cs_samples WHERE match_id = ? AND minute = ?`,
		matchID, minute,
	).Scan(&sample.MatchID, &sample.Minute, &sample.LastHits, &sample.Denies)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get cs at minute", err)
	}
	return &sample, nil
}

// CSSeries returns the recorded series for a match, minute ascending.
func (s *sqlStore) CSSeries(ctx context.Context, matchID int64) ([]domain.CSSample, error) {
	rows, err := s.query(ctx,
		`SELECT match_id, minute, last_hits, denies FROM cs_samples WHERE match_id = ? ORDER BY minute ASC`,
		matchID,
	)
	if err != nil {
		return nil, errors.ErrDatabaseError("list cs series", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []domain.CSSample
	for rows.Next() {
		var sample domain.CSSample
		if err := rows.Scan(&sample.MatchID, &sample.Minute, &sample.LastHits, &sample.Denies); err != nil {
			return nil, errors.ErrDatabaseError("scan cs sample", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate cs series", err)
	}
	return samples, nil
}

// ReplaceNetworthSeries atomically replaces a match's net-worth series.
func (s *sqlStore) ReplaceNetworthSeries(ctx context.Context, matchID int64, samples []domain.NetworthSample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseError("begin replace networth series", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM networth_samples WHERE match_id = ?`), matchID); err != nil {
		return errors.ErrDatabaseError("clear networth series", err)
	}

	insert := s.rebind(`INSERT INTO networth_samples (match_id, player_slot, minute, networth) VALUES (?, ?, ?, ?)`)
	for _, sample := range samples {
		if _, err := tx.ExecContext(ctx, insert, matchID, sample.PlayerSlot, sample.Minute, sample.Networth); err != nil {
			return errors.ErrDatabaseError("insert networth sample", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseError("commit networth series", err)
	}
	return nil
}

// NetworthAtMinute returns one player's net worth at a minute, or (nil, nil).
func (s *sqlStore) NetworthAtMinute(ctx context.Context, matchID int64, playerSlot, minute int) (*int, error) {
	var networth int
	err := s.queryRow(ctx,
		`SELECT networth FROM networth_samples WHERE match_id = ? AND player_slot = ? AND minute = ?`,
		matchID, playerSlot, minute,
	).Scan(&networth)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get networth at minute", err)
	}
	return &networth, nil
}

// UpsertItemTiming records an item's first purchase time, keeping the
// earlier time when both exist.
func (s *sqlStore) UpsertItemTiming(ctx context.Context, t domain.ItemTiming) error {
	query := `
		INSERT INTO item_timings (match_id, item_id, seconds)
		VALUES (?, ?, ?)
		ON CONFLICT (match_id, item_id) DO UPDATE SET
			seconds = CASE
				WHEN excluded.seconds < item_timings.seconds THEN excluded.seconds
				ELSE item_timings.seconds
			END
	`

	_, err := s.exec(ctx, query, t.MatchID, t.ItemID, t.Seconds)
	if err != nil {
		return errors.ErrDatabaseError("upsert item timing", err)
	}
	return nil
}

// ItemTiming returns the purchase seconds for an item, or (nil, nil).
func (s *sqlStore) ItemTiming(ctx context.Context, matchID int64, itemID int) (*int, error) {
	var seconds int
	err := s.queryRow(ctx,
		`SELECT seconds FROM item_timings WHERE match_id = ? AND item_id = ?`,
		matchID, itemID,
	).Scan(&seconds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get item timing", err)
	}
	return &seconds, nil
}

// ItemTimingsForMatch returns all recorded item timings for a match.
func (s *sqlStore) ItemTimingsForMatch(ctx context.Context, matchID int64) ([]domain.ItemTiming, error) {
	rows, err := s.query(ctx,
		`SELECT match_id, item_id, seconds FROM item_timings WHERE match_id = ? ORDER BY seconds ASC`,
		matchID,
	)
	if err != nil {
		return nil, errors.ErrDatabaseError("list item timings", err)
	}
	defer func() { _ = rows.Close() }()

	var timings []domain.ItemTiming
	for rows.Next() {
		var t domain.ItemTiming
		if err := rows.Scan(&t.MatchID, &t.ItemID, &t.Seconds); err != nil {
			return nil, errors.ErrDatabaseError("scan item timing", err)
		}
		timings = append(timings, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate item timings", err)
	}
	return timings, nil
}

// InsertGoal stores a new goal and returns its assigned id.
func (s *sqlStore) InsertGoal(ctx context.Context, g *domain.Goal) (int64, error) {
	query := `
		INSERT INTO goals (name, hero_id, hero_scope, metric, target_value,
			target_minutes, item_id, game_mode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := s.queryRow(ctx, query,
		g.Name, nullableInt(g.HeroID), g.HeroScope, g.Metric, g.TargetValue,
		g.TargetMinutes, nullableInt(g.ItemID), g.Mode, g.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, errors.ErrDatabaseError("insert goal", err)
	}
	g.ID = id
	return id, nil
}

// GetGoal returns one goal, or (nil, nil) if absent.
func (s *sqlStore) GetGoal(ctx context.Context, id int64) (*domain.Goal, error) {
	row := s.queryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)

	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get goal", err)
	}
	return g, nil
}

// ListGoals returns all goals, newest first.
func (s *sqlStore) ListGoals(ctx context.Context) ([]*domain.Goal, error) {
	rows, err := s.query(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.ErrDatabaseError("list goals", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []*domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError("scan goal row", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate goal rows", err)
	}
	return goals, nil
}

// UpdateGoal rewrites a goal by id.
func (s *sqlStore) UpdateGoal(ctx context.Context, g *domain.Goal) error {
	query := `
		UPDATE goals SET name = ?, hero_id = ?, hero_scope = ?, metric = ?,
			target_value = ?, target_minutes = ?, item_id = ?, game_mode = ?
		WHERE id = ?
	`

	res, err := s.exec(ctx, query,
		g.Name, nullableInt(g.HeroID), g.HeroScope, g.Metric, g.TargetValue,
		g.TargetMinutes, nullableInt(g.ItemID), g.Mode, g.ID,
	)
	if err != nil {
		return errors.ErrDatabaseError("update goal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.ErrDatabaseError("update goal", err)
	}
	if n == 0 {
		return errors.ErrGoalNotFound(g.ID)
	}
	return nil
}

// DeleteGoal removes a goal by id.
func (s *sqlStore) DeleteGoal(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return errors.ErrDatabaseError("delete goal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.ErrDatabaseError("delete goal", err)
	}
	if n == 0 {
		return errors.ErrGoalNotFound(id)
	}
	return nil
}

// GetDailyChallenge returns the challenge for a date, or (nil, nil).
func (s *sqlStore) GetDailyChallenge(ctx context.Context, date string) (*domain.DailyChallenge, error) {
	row := s.queryRow(ctx, `SELECT `+dailyChallengeColumns+` FROM daily_challenges WHERE date = ?`, date)

	c, err := scanDailyChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get daily challenge", err)
	}
	return c, nil
}

// InsertDailyChallenge stores a generated challenge unless the date already
// has one.
func (s *sqlStore) InsertDailyChallenge(ctx context.Context, c *domain.DailyChallenge) error {
	query := `
		INSERT INTO daily_challenges (` + dailyChallengeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO NOTHING
	`

	status := c.Status
	if status == "" {
		status = domain.ChallengeStatusActive
	}

	_, err := s.exec(ctx, query,
		c.Date, c.Description, c.Metric, c.Difficulty, c.TargetValue,
		nullableInt(c.TargetGames), nullableInt(c.HeroID), status,
		nullableInt64(c.CompletedAt), c.CreatedAt,
	)
	if err != nil {
		return errors.ErrDatabaseError("insert daily challenge", err)
	}
	return nil
}

// ListExpiredActiveDailyChallenges returns active challenges dated before
// the given date.
func (s *sqlStore) ListExpiredActiveDailyChallenges(ctx context.Context, before string) ([]*domain.DailyChallenge, error) {
	query := `SELECT ` + dailyChallengeColumns + ` FROM daily_challenges
		WHERE status = 'active' AND date < ?
		ORDER BY date ASC`

	rows, err := s.query(ctx, query, before)
	if err != nil {
		return nil, errors.ErrDatabaseError("list expired daily challenges", err)
	}
	defer func() { _ = rows.Close() }()

	var challenges []*domain.DailyChallenge
	for rows.Next() {
		c, err := scanDailyChallenge(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError("scan daily challenge row", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate daily challenge rows", err)
	}
	return challenges, nil
}

// CompleteDailyChallenge transitions an active challenge to completed and
// appends history atomically. The status guard on the UPDATE makes the
// transition idempotent: a second call finds no active row and writes
// nothing.
func (s *sqlStore) CompleteDailyChallenge(ctx context.Context, date string, completedAt int64, achievedValue float64) (bool, error) {
	return s.finishDailyChallenge(ctx, date, domain.ChallengeStatusCompleted, completedAt, achievedValue)
}

// FailDailyChallenge transitions an active challenge to failed and appends
// history atomically, exactly once.
func (s *sqlStore) FailDailyChallenge(ctx context.Context, date string, recordedAt int64) (bool, error) {
	return s.finishDailyChallenge(ctx, date, domain.ChallengeStatusFailed, recordedAt, 0)
}

func (s *sqlStore) finishDailyChallenge(ctx context.Context, date string, outcome domain.ChallengeStatus, at int64, achievedValue float64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.ErrDatabaseError("begin daily transition", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, s.rebind(`SELECT `+dailyChallengeColumns+` FROM daily_challenges WHERE date = ?`), date)
	c, err := scanDailyChallenge(row)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrDatabaseError("load daily challenge", err)
	}

	var res sql.Result
	if outcome == domain.ChallengeStatusCompleted {
		res, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE daily_challenges SET status = ?, completed_at = ? WHERE date = ? AND status = 'active'`),
			outcome, at, date,
		)
	} else {
		res, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE daily_challenges SET status = ? WHERE date = ? AND status = 'active'`),
			outcome, date,
		)
	}
	if err != nil {
		return false, errors.ErrDatabaseError("transition daily challenge", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.ErrDatabaseError("transition daily challenge", err)
	}
	if n == 0 {
		// Already terminal; history was written by the transition that got
		// there first.
		return false, nil
	}

	if err := s.appendHistory(ctx, tx, &domain.HistoryEntry{
		PeriodType:    domain.PeriodTypeDaily,
		PeriodKey:     date,
		Description:   c.Description,
		Metric:        c.Metric,
		TargetValue:   c.TargetValue,
		AchievedValue: achievedValue,
		Outcome:       outcome,
		RecordedAt:    at,
	}); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, errors.ErrDatabaseError("commit daily transition", err)
	}
	return true, nil
}

// RecentDailyMetrics returns the metric tags of the newest daily challenges.
func (s *sqlStore) RecentDailyMetrics(ctx context.Context, limit int) ([]domain.ChallengeMetric, error) {
	rows, err := s.query(ctx,
		`SELECT metric FROM daily_challenges ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.ErrDatabaseError("recent daily metrics", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []domain.ChallengeMetric
	for rows.Next() {
		var m domain.ChallengeMetric
		if err := rows.Scan(&m); err != nil {
			return nil, errors.ErrDatabaseError("scan daily metric", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate daily metrics", err)
	}
	return metrics, nil
}

// ListWeeklyOptions returns the offered options for a week in option order.
func (s *sqlStore) ListWeeklyOptions(ctx context.Context, weekStart string) ([]*domain.ChallengeOption, error) {
	query := `SELECT ` + weeklyOptionColumns + ` FROM weekly_options
		WHERE week_start = ? ORDER BY option_index ASC`

	rows, err := s.query(ctx, query, weekStart)
	if err != nil {
		return nil, errors.ErrDatabaseError("list weekly options", err)
	}
	defer func() { _ = rows.Close() }()

	var options []*domain.ChallengeOption
	for rows.Next() {
		o, err := scanWeeklyOption(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError("scan weekly option row", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate weekly option rows", err)
	}
	return options, nil
}

// ReplaceWeeklyOptions atomically replaces a week's options.
func (s *sqlStore) ReplaceWeeklyOptions(ctx context.Context, weekStart string, options []*domain.ChallengeOption) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseError("begin replace weekly options", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM weekly_options WHERE week_start = ?`), weekStart); err != nil {
		return errors.ErrDatabaseError("clear weekly options", err)
	}

	insert := s.rebind(`
		INSERT INTO weekly_options (week_start, option_index, difficulty,
			description, metric, target_value, target_games, hero_id, reroll_generation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	for _, o := range options {
		err := tx.QueryRowContext(ctx, insert,
			weekStart, o.OptionIndex, o.Difficulty, o.Description, o.Metric,
			o.TargetValue, nullableInt(o.TargetGames), nullableInt(o.HeroID),
			o.RerollGeneration,
		).Scan(&o.ID)
		if err != nil {
			return errors.ErrDatabaseError("insert weekly option", err)
		}
		o.WeekStart = weekStart
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseError("commit weekly options", err)
	}
	return nil
}

// GetWeeklyOption returns one option by id, or (nil, nil).
func (s *sqlStore) GetWeeklyOption(ctx context.Context, id int64) (*domain.ChallengeOption, error) {
	row := s.queryRow(ctx, `SELECT `+weeklyOptionColumns+` FROM weekly_options WHERE id = ?`, id)

	o, err := scanWeeklyOption(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get weekly option", err)
	}
	return o, nil
}

// MaxRerollGeneration returns the highest generation among a week's options.
func (s *sqlStore) MaxRerollGeneration(ctx context.Context, weekStart string) (int, error) {
	var gen sql.NullInt64
	err := s.queryRow(ctx,
		`SELECT MAX(reroll_generation) FROM weekly_options WHERE week_start = ?`,
		weekStart,
	).Scan(&gen)
	if err != nil {
		return 0, errors.ErrDatabaseError("max reroll generation", err)
	}
	if !gen.Valid {
		return 0, nil
	}
	return int(gen.Int64), nil
}

// GetWeeklyChallenge returns the week's challenge regardless of status, or
// (nil, nil).
func (s *sqlStore) GetWeeklyChallenge(ctx context.Context, weekStart string) (*domain.WeeklyChallenge, error) {
	row := s.queryRow(ctx, `SELECT `+weeklyChallengeColumns+` FROM weekly_challenges WHERE week_start = ?`, weekStart)

	c, err := scanWeeklyChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get weekly challenge", err)
	}
	return c, nil
}

// InsertWeeklyChallenge stores an accepted or skipped challenge unless the
// week already has one. The week_start unique key arbitrates races: exactly
// one insert wins.
func (s *sqlStore) InsertWeeklyChallenge(ctx context.Context, c *domain.WeeklyChallenge) (bool, error) {
	query := `
		INSERT INTO weekly_challenges (week_start, description, difficulty,
			metric, target_value, target_games, hero_id, status, reroll_count,
			accepted_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (week_start) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.queryRow(ctx, query,
		c.WeekStart, c.Description, c.Difficulty, c.Metric, c.TargetValue,
		nullableInt(c.TargetGames), nullableInt(c.HeroID), c.Status,
		c.RerollCount, nullableInt64(c.AcceptedAt), nullableInt64(c.CompletedAt),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrDatabaseError("insert weekly challenge", err)
	}
	c.ID = id
	return true, nil
}

// ListExpiredActiveWeeklyChallenges returns active weekly challenges from
// weeks before the given one.
func (s *sqlStore) ListExpiredActiveWeeklyChallenges(ctx context.Context, beforeWeek string) ([]*domain.WeeklyChallenge, error) {
	query := `SELECT ` + weeklyChallengeColumns + ` FROM weekly_challenges
		WHERE status = 'active' AND week_start < ?
		ORDER BY week_start ASC`

	rows, err := s.query(ctx, query, beforeWeek)
	if err != nil {
		return nil, errors.ErrDatabaseError("list expired weekly challenges", err)
	}
	defer func() { _ = rows.Close() }()

	var challenges []*domain.WeeklyChallenge
	for rows.Next() {
		c, err := scanWeeklyChallenge(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError("scan weekly challenge row", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate weekly challenge rows", err)
	}
	return challenges, nil
}

// CompleteWeeklyChallenge transitions an active weekly challenge to
// completed and appends history atomically, exactly once.
func (s *sqlStore) CompleteWeeklyChallenge(ctx context.Context, id int64, completedAt int64, achievedValue float64) (bool, error) {
	return s.finishWeeklyChallenge(ctx, id, domain.ChallengeStatusCompleted, completedAt, achievedValue)
}

// FailWeeklyChallenge transitions an active weekly challenge to failed and
// appends history atomically, exactly once.
func (s *sqlStore) FailWeeklyChallenge(ctx context.Context, id int64, recordedAt int64) (bool, error) {
	return s.finishWeeklyChallenge(ctx, id, domain.ChallengeStatusFailed, recordedAt, 0)
}

func (s *sqlStore) finishWeeklyChallenge(ctx context.Context, id int64, outcome domain.ChallengeStatus, at int64, achievedValue float64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.ErrDatabaseError("begin weekly transition", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, s.rebind(`SELECT `+weeklyChallengeColumns+` FROM weekly_challenges WHERE id = ?`), id)
	c, err := scanWeeklyChallenge(row)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrDatabaseError("load weekly challenge", err)
	}

	var res sql.Result
	if outcome == domain.ChallengeStatusCompleted {
		res, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE weekly_challenges SET status = ?, completed_at = ? WHERE id = ? AND status = 'active'`),
			outcome, at, id,
		)
	} else {
		res, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE weekly_challenges SET status = ? WHERE id = ? AND status = 'active'`),
			outcome, id,
		)
	}
	if err != nil {
		return false, errors.ErrDatabaseError("transition weekly challenge", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.ErrDatabaseError("transition weekly challenge", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := s.appendHistory(ctx, tx, &domain.HistoryEntry{
		PeriodType:    domain.PeriodTypeWeekly,
		PeriodKey:     c.WeekStart,
		Description:   c.Description,
		Metric:        c.Metric,
		TargetValue:   c.TargetValue,
		AchievedValue: achievedValue,
		Outcome:       outcome,
		RecordedAt:    at,
	}); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, errors.ErrDatabaseError("commit weekly transition", err)
	}
	return true, nil
}

// appendHistory writes one ledger entry inside a transition transaction.
// The (period_type, period_key) unique key backs the exactly-once guarantee
// even if a transition is somehow replayed.
func (s *sqlStore) appendHistory(ctx context.Context, tx *sql.Tx, h *domain.HistoryEntry) error {
	query := `
		INSERT INTO challenge_history (period_type, period_key, description,
			metric, target_value, achieved_value, outcome, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (period_type, period_key) DO NOTHING
	`

	_, err := tx.ExecContext(ctx, s.rebind(query),
		h.PeriodType, h.PeriodKey, h.Description, h.Metric, h.TargetValue,
		h.AchievedValue, h.Outcome, h.RecordedAt,
	)
	if err != nil {
		return errors.ErrDatabaseError("append history", err)
	}
	return nil
}

// ListHistory returns terminal outcomes, newest first.
func (s *sqlStore) ListHistory(ctx context.Context, periodType *domain.PeriodType, limit int) ([]*domain.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM challenge_history`
	args := []any{}
	if periodType != nil {
		query += ` WHERE period_type = ?`
		args = append(args, *periodType)
	}
	query += ` ORDER BY recorded_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, errors.ErrDatabaseError("list history", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		h, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError("scan history row", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate history rows", err)
	}
	return entries, nil
}

// RecentAverages computes baseline averages over the most recent matches.
func (s *sqlStore) RecentAverages(ctx context.Context, limit int) (*Averages, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(AVG(kills), 0),
			COALESCE(AVG(gold_per_min), 0),
			COALESCE(AVG(deaths), 0),
			COALESCE(AVG(hero_damage), 0)
		FROM (
			SELECT kills, gold_per_min, deaths, hero_damage
			FROM matches ORDER BY start_time DESC LIMIT ?
		) AS recent
	`

	var avg Averages
	err := s.queryRow(ctx, query, limit).Scan(&avg.Games, &avg.Kills, &avg.GPM, &avg.Deaths, &avg.HeroDamage)
	if err != nil {
		return nil, errors.ErrDatabaseError("recent averages", err)
	}
	return &avg, nil
}

// AvgCSAt10 averages the exact minute-10 creep score over recent parsed
// matches.
func (s *sqlStore) AvgCSAt10(ctx context.Context, limit int) (*float64, error) {
	query := `
		SELECT AVG(cs.last_hits * 1.0)
		FROM (
			SELECT match_id FROM matches
			WHERE parse_state = 'parsed'
			ORDER BY start_time DESC LIMIT ?
		) AS recent
		JOIN cs_samples cs ON cs.match_id = recent.match_id AND cs.minute = 10
	`

	var avg sql.NullFloat64
	err := s.queryRow(ctx, query, limit).Scan(&avg)
	if err != nil {
		return nil, errors.ErrDatabaseError("average cs at 10", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// RecentHeroIDs returns the distinct heroes in the most recent matches.
func (s *sqlStore) RecentHeroIDs(ctx context.Context, limit int) ([]int, error) {
	query := `
		SELECT DISTINCT hero_id FROM (
			SELECT hero_id FROM matches ORDER BY start_time DESC LIMIT ?
		) AS recent
		ORDER BY hero_id ASC
	`

	rows, err := s.query(ctx, query, limit)
	if err != nil {
		return nil, errors.ErrDatabaseError("recent hero ids", err)
	}
	defer func() { _ = rows.Close() }()

	return scanIntRows(rows, "recent hero ids")
}

// UnfamiliarHeroID returns a hero played before but not since the cutoff.
func (s *sqlStore) UnfamiliarHeroID(ctx context.Context, cutoff int64) (*int, error) {
	query := `
		SELECT hero_id FROM matches
		GROUP BY hero_id
		HAVING MAX(start_time) < ?
		ORDER BY MAX(start_time) DESC
		LIMIT 1
	`

	var heroID int
	err := s.queryRow(ctx, query, cutoff).Scan(&heroID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("unfamiliar hero", err)
	}
	return &heroID, nil
}

// SuggestionHeroPool returns recently played heroes with enough total games.
func (s *sqlStore) SuggestionHeroPool(ctx context.Context, recentLimit, minGames int) ([]int, error) {
	query := `
		SELECT m.hero_id FROM matches m
		WHERE m.hero_id IN (
			SELECT hero_id FROM (
				SELECT hero_id FROM matches ORDER BY start_time DESC LIMIT ?
			) AS recent
		)
		GROUP BY m.hero_id
		HAVING COUNT(*) >= ?
		ORDER BY m.hero_id ASC
	`

	rows, err := s.query(ctx, query, recentLimit, minGames)
	if err != nil {
		return nil, errors.ErrDatabaseError("suggestion hero pool", err)
	}
	defer func() { _ = rows.Close() }()

	return scanIntRows(rows, "suggestion hero pool")
}

// HeroCSAt10Samples returns minute-10 creep scores for a hero, exact when
// recorded and a linear end-of-game estimate otherwise.
func (s *sqlStore) HeroCSAt10Samples(ctx context.Context, heroID, limit int) ([]float64, error) {
	query := `
		SELECT COALESCE(cs.last_hits * 1.0, m.last_hits * 600.0 / m.duration)
		FROM matches m
		LEFT JOIN cs_samples cs ON cs.match_id = m.match_id AND cs.minute = 10
		WHERE m.hero_id = ? AND m.duration > 0
		ORDER BY m.start_time DESC
		LIMIT ?
	`

	rows, err := s.query(ctx, query, heroID, limit)
	if err != nil {
		return nil, errors.ErrDatabaseError("hero cs samples", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, errors.ErrDatabaseError("scan hero cs sample", err)
		}
		samples = append(samples, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate hero cs samples", err)
	}
	return samples, nil
}

// ToggleHeroFavorite flips a hero's favorite flag.
func (s *sqlStore) ToggleHeroFavorite(ctx context.Context, heroID int) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM hero_favorites WHERE hero_id = ?`, heroID)
	if err != nil {
		return false, errors.ErrDatabaseError("toggle hero favorite", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.ErrDatabaseError("toggle hero favorite", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = s.exec(ctx, `INSERT INTO hero_favorites (hero_id) VALUES (?) ON CONFLICT (hero_id) DO NOTHING`, heroID)
	if err != nil {
		return false, errors.ErrDatabaseError("toggle hero favorite", err)
	}
	return true, nil
}

// IsHeroFavorite reports whether a hero is marked favorite.
func (s *sqlStore) IsHeroFavorite(ctx context.Context, heroID int) (bool, error) {
	var one int
	err := s.queryRow(ctx, `SELECT 1 FROM hero_favorites WHERE hero_id = ?`, heroID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.ErrDatabaseError("is hero favorite", err)
	}
	return true, nil
}

// ListFavoriteHeroes returns all favorite hero ids, ascending.
func (s *sqlStore) ListFavoriteHeroes(ctx context.Context) ([]int, error) {
	rows, err := s.query(ctx, `SELECT hero_id FROM hero_favorites ORDER BY hero_id ASC`)
	if err != nil {
		return nil, errors.ErrDatabaseError("list favorite heroes", err)
	}
	defer func() { _ = rows.Close() }()

	return scanIntRows(rows, "favorite heroes")
}

// GetHeroSuggestion returns the singleton hero suggestion, or (nil, nil).
func (s *sqlStore) GetHeroSuggestion(ctx context.Context) (*domain.HeroSuggestion, error) {
	var sg domain.HeroSuggestion
	err := s.queryRow(ctx,
		`SELECT hero_id, average_cs, target_cs, created_at FROM hero_suggestions WHERE id = 1`,
	).Scan(&sg.HeroID, &sg.AverageCS, &sg.TargetCS, &sg.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDatabaseError("get hero suggestion", err)
	}
	return &sg, nil
}

// SaveHeroSuggestion replaces the singleton hero suggestion.
func (s *sqlStore) SaveHeroSuggestion(ctx context.Context, sg *domain.HeroSuggestion) error {
	query := `
		INSERT INTO hero_suggestions (id, hero_id, average_cs, target_cs, created_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			hero_id = excluded.hero_id,
			average_cs = excluded.average_cs,
			target_cs = excluded.target_cs,
			created_at = excluded.created_at
	`

	_, err := s.exec(ctx, query, sg.HeroID, sg.AverageCS, sg.TargetCS, sg.CreatedAt)
	if err != nil {
		return errors.ErrDatabaseError("save hero suggestion", err)
	}
	return nil
}

// ClearMatches deletes all matches and their enrichment data.
func (s *sqlStore) ClearMatches(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseError("begin clear matches", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"item_timings", "cs_samples", "networth_samples", "matches"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return errors.ErrDatabaseError("clear "+table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseError("commit clear matches", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func scanIntRows(rows *sql.Rows, operation string) ([]int, error) {
	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, errors.ErrDatabaseError("scan "+operation, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError("iterate "+operation, err)
	}
	return out, nil
}
