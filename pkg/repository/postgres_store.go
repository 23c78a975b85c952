package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/dotakeeper/keeper-common/pkg/errors"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	sqlStore
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open connection, applies the schema, and resets
// matches left mid-parse by a previous run.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	store := &PostgresStore{sqlStore{db: db, rebind: rebindPositional}}

	if err := store.migrate(ctx); err != nil {
		return nil, err
	}
	if _, err := store.ResetParsingMatches(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.ErrDatabaseError("migrate schema", err)
		}
	}
	return nil
}

// rebindPositional renumbers ? placeholders into the $1, $2, ... form.
func rebindPositional(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		match_id BIGINT PRIMARY KEY,
		hero_id INTEGER NOT NULL,
		player_slot INTEGER NOT NULL,
		radiant_win BOOLEAN NOT NULL,
		duration INTEGER NOT NULL,
		game_mode INTEGER NOT NULL,
		lobby_type INTEGER NOT NULL,
		start_time BIGINT NOT NULL,
		kills INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		assists INTEGER NOT NULL,
		gold_per_min INTEGER NOT NULL,
		xp_per_min INTEGER NOT NULL,
		hero_damage INTEGER NOT NULL,
		tower_damage INTEGER NOT NULL,
		hero_healing INTEGER NOT NULL,
		last_hits INTEGER NOT NULL,
		denies INTEGER NOT NULL,
		level INTEGER NOT NULL,
		net_worth INTEGER NOT NULL,
		role INTEGER NOT NULL DEFAULT 0,
		partner_slot INTEGER,
		parse_state TEXT NOT NULL DEFAULT 'unparsed'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_start_time ON matches (start_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_hero_id ON matches (hero_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_parse_state ON matches (parse_state)`,
	`CREATE TABLE IF NOT EXISTS cs_samples (
		match_id BIGINT NOT NULL REFERENCES matches (match_id) ON DELETE CASCADE,
		minute INTEGER NOT NULL,
		last_hits INTEGER NOT NULL,
		denies INTEGER NOT NULL,
		PRIMARY KEY (match_id, minute)
	)`,
	`CREATE TABLE IF NOT EXISTS networth_samples (
		match_id BIGINT NOT NULL REFERENCES matches (match_id) ON DELETE CASCADE,
		player_slot INTEGER NOT NULL,
		minute INTEGER NOT NULL,
		networth INTEGER NOT NULL,
		PRIMARY KEY (match_id, player_slot, minute)
	)`,
	`CREATE TABLE IF NOT EXISTS item_timings (
		match_id BIGINT NOT NULL REFERENCES matches (match_id) ON DELETE CASCADE,
		item_id INTEGER NOT NULL,
		seconds INTEGER NOT NULL,
		UNIQUE (match_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		hero_id INTEGER,
		hero_scope TEXT NOT NULL DEFAULT '',
		metric TEXT NOT NULL,
		target_value DOUBLE PRECISION NOT NULL,
		target_minutes INTEGER NOT NULL DEFAULT 0,
		item_id INTEGER,
		game_mode TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_challenges (
		date TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		metric TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		target_value DOUBLE PRECISION NOT NULL,
		target_games INTEGER,
		hero_id INTEGER,
		status TEXT NOT NULL DEFAULT 'active',
		completed_at BIGINT,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_options (
		id BIGSERIAL PRIMARY KEY,
		week_start TEXT NOT NULL,
		option_index INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		description TEXT NOT NULL,
		metric TEXT NOT NULL,
		target_value DOUBLE PRECISION NOT NULL,
		target_games INTEGER,
		hero_id INTEGER,
		reroll_generation INTEGER NOT NULL DEFAULT 0,
		UNIQUE (week_start, option_index)
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_challenges (
		id BIGSERIAL PRIMARY KEY,
		week_start TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		metric TEXT NOT NULL,
		target_value DOUBLE PRECISION NOT NULL,
		target_games INTEGER,
		hero_id INTEGER,
		status TEXT NOT NULL DEFAULT 'active',
		reroll_count INTEGER NOT NULL DEFAULT 0,
		accepted_at BIGINT,
		completed_at BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS challenge_history (
		id BIGSERIAL PRIMARY KEY,
		period_type TEXT NOT NULL,
		period_key TEXT NOT NULL,
		description TEXT NOT NULL,
		metric TEXT NOT NULL,
		target_value DOUBLE PRECISION NOT NULL,
		achieved_value DOUBLE PRECISION NOT NULL,
		outcome TEXT NOT NULL,
		recorded_at BIGINT NOT NULL,
		UNIQUE (period_type, period_key)
	)`,
	`CREATE TABLE IF NOT EXISTS hero_favorites (
		hero_id INTEGER PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS hero_suggestions (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		hero_id INTEGER NOT NULL,
		average_cs DOUBLE PRECISION NOT NULL,
		target_cs INTEGER NOT NULL,
		created_at BIGINT NOT NULL
	)`,
}
