package repository

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/dotakeeper/keeper-common/pkg/errors"
)

// SQLiteStore implements Store on an embedded SQLite database. It backs the
// per-user desktop deployment where running a server is not an option.
type SQLiteStore struct {
	sqlStore
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path, applies the
// schema, and resets matches left mid-parse by a previous run. Use
// ":memory:" for an in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.ErrDatabaseError("open sqlite database", err)
	}

	// A single connection keeps an in-memory database alive and sidesteps
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{sqlStore{db: db, rebind: func(q string) string { return q }}}

	if err := store.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := store.ResetParsingMatches(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	pragmas := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return errors.ErrDatabaseError("apply pragma", err)
		}
	}

	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.ErrDatabaseError("migrate schema", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		match_id INTEGER PRIMARY KEY,
		hero_id INTEGER NOT NULL,
		player_slot INTEGER NOT NULL,
		radiant_win INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		game_mode INTEGER NOT NULL,
		lobby_type INTEGER NOT NULL,
		start_time INTEGER NOT NULL,
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
		match_id INTEGER NOT NULL REFERENCES matches (match_id) ON DELETE CASCADE,
		minute INTEGER NOT NULL,
		last_hits INTEGER NOT NULL,
		denies INTEGER NOT NULL,
		PRIMARY KEY (match_id, minute)
	)`,
	`CREATE TABLE IF NOT EXISTS networth_samples (
		match_id INTEGER NOT NULL REFERENCES matches (match_id) ON DELETE CASCADE,
		player_slot INTEGER NOT NULL,
		minute INTEGER NOT NULL,
		networth INTEGER NOT NULL,
		PRIMARY KEY (match_id, player_slot, minute)
	)`,
	`CREATE TABLE IF NOT EXISTS item_timings (
		match_id INTEGER NOT NULL REFERENCES matches (match_id) ON DELETE CASCADE,
		item_id INTEGER NOT NULL,
		seconds INTEGER NOT NULL,
		UNIQUE (match_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		hero_id INTEGER,
		hero_scope TEXT NOT NULL DEFAULT '',
		metric TEXT NOT NULL,
		target_value REAL NOT NULL,
		target_minutes INTEGER NOT NULL DEFAULT 0,
		item_id INTEGER,
		game_mode TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_challenges (
		date TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		metric TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		target_value REAL NOT NULL,
		target_games INTEGER,
		hero_id INTEGER,
		status TEXT NOT NULL DEFAULT 'active',
		completed_at INTEGER,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_options (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		week_start TEXT NOT NULL,
		option_index INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		description TEXT NOT NULL,
		metric TEXT NOT NULL,
		target_value REAL NOT NULL,
		target_games INTEGER,
		hero_id INTEGER,
		reroll_generation INTEGER NOT NULL DEFAULT 0,
		UNIQUE (week_start, option_index)
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_challenges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		week_start TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		metric TEXT NOT NULL,
		target_value REAL NOT NULL,
		target_games INTEGER,
		hero_id INTEGER,
		status TEXT NOT NULL DEFAULT 'active',
		reroll_count INTEGER NOT NULL DEFAULT 0,
		accepted_at INTEGER,
		completed_at INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS challenge_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period_type TEXT NOT NULL,
		period_key TEXT NOT NULL,
		description TEXT NOT NULL,
		metric TEXT NOT NULL,
		target_value REAL NOT NULL,
		achieved_value REAL NOT NULL,
		outcome TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		UNIQUE (period_type, period_key)
	)`,
	`CREATE TABLE IF NOT EXISTS hero_favorites (
		hero_id INTEGER PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS hero_suggestions (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		hero_id INTEGER NOT NULL,
		average_cs REAL NOT NULL,
		target_cs INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
}
