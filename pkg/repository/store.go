package repository

import (
	"context"

	"github.com/dotakeeper/keeper-common/pkg/domain"
)

// Averages are rolling baseline stats over the player's recent matches,
// used to seed generated challenge targets. Games is how many matches the
// averages were computed over; zero means no history and the caller should
// fall back to its defaults.
type Averages struct {
	Kills      float64
	GPM        float64
	Deaths     float64
	HeroDamage float64
	Games      int
}

// Store is the persistence interface for matches, goals, challenges, and
// history. Reads for absent rows return (nil, nil), not an error; callers
// distinguish missing from failed. All mutations either fully commit or
// return an error with no partial state.
//
// Implementations: PostgresStore and SQLiteStore, both over database/sql.
type Store interface {
	// InsertMatch stores a match if no row with the same match id exists.
	// Re-inserting an existing id is a no-op, never an update.
	InsertMatch(ctx context.Context, m *domain.Match) error

	// MatchExists reports whether a match id is already stored.
	MatchExists(ctx context.Context, matchID int64) (bool, error)

	// GetMatch returns one match, or (nil, nil) if absent.
	GetMatch(ctx context.Context, matchID int64) (*domain.Match, error)

	// ListMatches returns matches ordered by start time descending.
	// A non-positive limit returns all matches.
	ListMatches(ctx context.Context, limit int) ([]*domain.Match, error)

	// ListMatchesSince returns matches with start_time >= since, ordered by
	// start time descending.
	ListMatchesSince(ctx context.Context, since int64) ([]*domain.Match, error)

	// ListUnparsedMatches returns matches still needing enrichment
	// (unparsed or failed), most recent first.
	ListUnparsedMatches(ctx context.Context) ([]*domain.Match, error)

	// OldestMatchStart returns the earliest stored start time, or nil when
	// no matches exist.
	OldestMatchStart(ctx context.Context) (*int64, error)

	// UpdateParseState sets a match's parse state.
	UpdateParseState(ctx context.Context, matchID int64, state domain.ParseState) error

	// ResetParsingMatches moves every match stuck in parsing back to
	// unparsed and returns how many were reset. Run once on startup.
	ResetParsingMatches(ctx context.Context) (int64, error)

	// UpdateMatchRole sets the detected lane role for a match.
	UpdateMatchRole(ctx context.Context, matchID int64, role domain.Role) error

	// UpdatePartnerSlot records the lane partner's player slot for a match.
	UpdatePartnerSlot(ctx context.Context, matchID int64, partnerSlot int) error

	// PartnerSlot returns the recorded lane partner slot, or nil when none
	// was detected.
	PartnerSlot(ctx context.Context, matchID int64) (*int, error)

	// ReplaceCSSeries atomically replaces the per-minute last-hits/denies
	// series for a match.
	ReplaceCSSeries(ctx context.Context, matchID int64, samples []domain.CSSample) error

	// CSAtMinute returns the exact creep-score sample at a minute boundary,
	// or (nil, nil) when that minute was not recorded. Absent minutes are
	// unknown, never interpolated.
	CSAtMinute(ctx context.Context, matchID int64, minute int) (*domain.CSSample, error)

	// CSSeries returns the full recorded series for a match, minute
	// ascending.
	CSSeries(ctx context.Context, matchID int64) ([]domain.CSSample, error)

	// ReplaceNetworthSeries atomically replaces the per-minute net-worth
	// series for all players of a match.
	ReplaceNetworthSeries(ctx context.Context, matchID int64, samples []domain.NetworthSample) error

	// NetworthAtMinute returns one player's net worth at a minute boundary,
	// or (nil, nil) when not recorded.
	NetworthAtMinute(ctx context.Context, matchID int64, playerSlot, minute int) (*int, error)

	// UpsertItemTiming records an item's first purchase time. Re-inserting
	// the same (match, item) keeps the earlier time.
	UpsertItemTiming(ctx context.Context, t domain.ItemTiming) error

	// ItemTiming returns the purchase seconds for an item in a match, or
	// (nil, nil) if the item was never bought.
	ItemTiming(ctx context.Context, matchID int64, itemID int) (*int, error)

	// ItemTimingsForMatch returns all recorded item timings for a match.
	ItemTimingsForMatch(ctx context.Context, matchID int64) ([]domain.ItemTiming, error)

	// InsertGoal stores a new goal and returns its assigned id.
	InsertGoal(ctx context.Context, g *domain.Goal) (int64, error)

	// GetGoal returns one goal, or (nil, nil) if absent.
	GetGoal(ctx context.Context, id int64) (*domain.Goal, error)

	// ListGoals returns all goals, newest first.
	ListGoals(ctx context.Context) ([]*domain.Goal, error)

	// UpdateGoal rewrites a goal by id.
	UpdateGoal(ctx context.Context, g *domain.Goal) error

	// DeleteGoal removes a goal by id.
	DeleteGoal(ctx context.Context, id int64) error

	// GetDailyChallenge returns the challenge for a date, or (nil, nil).
	GetDailyChallenge(ctx context.Context, date string) (*domain.DailyChallenge, error)

	// InsertDailyChallenge stores a generated challenge unless one already
	// exists for the date. The date is the natural key; concurrent inserts
	// for the same date leave exactly one row.
	InsertDailyChallenge(ctx context.Context, c *domain.DailyChallenge) error

	// ListExpiredActiveDailyChallenges returns active challenges dated
	// strictly before the given date.
	ListExpiredActiveDailyChallenges(ctx context.Context, before string) ([]*domain.DailyChallenge, error)

	// CompleteDailyChallenge transitions an active daily challenge to
	// completed and appends its history entry in the same transaction.
	// Returns false without writing history if the challenge was not
	// active, so a terminal transition reaches history exactly once.
	CompleteDailyChallenge(ctx context.Context, date string, completedAt int64, achievedValue float64) (bool, error)

	// FailDailyChallenge transitions an active daily challenge to failed
	// and appends its history entry, with the same exactly-once guarantee.
	FailDailyChallenge(ctx context.Context, date string, recordedAt int64) (bool, error)

	// RecentDailyMetrics returns the metric tags of the most recently
	// created daily challenges, newest first.
	RecentDailyMetrics(ctx context.Context, limit int) ([]domain.ChallengeMetric, error)

	// ListWeeklyOptions returns the offered options for a week in option
	// order.
	ListWeeklyOptions(ctx context.Context, weekStart string) ([]*domain.ChallengeOption, error)

	// ReplaceWeeklyOptions atomically replaces a week's options.
	ReplaceWeeklyOptions(ctx context.Context, weekStart string, options []*domain.ChallengeOption) error

	// GetWeeklyOption returns one option by id, or (nil, nil).
	GetWeeklyOption(ctx context.Context, id int64) (*domain.ChallengeOption, error)

	// MaxRerollGeneration returns the highest reroll generation among a
	// week's options, or 0 when the week has none.
	MaxRerollGeneration(ctx context.Context, weekStart string) (int, error)

	// GetWeeklyChallenge returns the accepted or skipped challenge for a
	// week regardless of status, or (nil, nil).
	GetWeeklyChallenge(ctx context.Context, weekStart string) (*domain.WeeklyChallenge, error)

	// InsertWeeklyChallenge stores an accepted or skipped challenge unless
	// the week already has one. Returns whether the insert happened and
	// fills in the assigned id when it did.
	InsertWeeklyChallenge(ctx context.Context, c *domain.WeeklyChallenge) (bool, error)

	// ListExpiredActiveWeeklyChallenges returns active weekly challenges
	// whose week start precedes the given week.
	ListExpiredActiveWeeklyChallenges(ctx context.Context, beforeWeek string) ([]*domain.WeeklyChallenge, error)

	// CompleteWeeklyChallenge transitions an active weekly challenge to
	// completed and appends its history entry in the same transaction,
	// exactly once.
	CompleteWeeklyChallenge(ctx context.Context, id int64, completedAt int64, achievedValue float64) (bool, error)

	// FailWeeklyChallenge transitions an active weekly challenge to failed
	// and appends its history entry, exactly once.
	FailWeeklyChallenge(ctx context.Context, id int64, recordedAt int64) (bool, error)

	// ListHistory returns terminal challenge outcomes, newest first,
	// optionally filtered by period type. A non-positive limit returns all.
	ListHistory(ctx context.Context, periodType *domain.PeriodType, limit int) ([]*domain.HistoryEntry, error)

	// RecentAverages computes baseline averages over the most recent
	// matches, up to limit.
	RecentAverages(ctx context.Context, limit int) (*Averages, error)

	// AvgCSAt10 averages the exact minute-10 creep score over the most
	// recent parsed matches, up to limit. Nil when no parsed match has a
	// minute-10 sample.
	AvgCSAt10(ctx context.Context, limit int) (*float64, error)

	// RecentHeroIDs returns the distinct heroes in the most recent matches.
	RecentHeroIDs(ctx context.Context, limit int) ([]int, error)

	// UnfamiliarHeroID returns a hero the player has ever played but not
	// since the cutoff, or nil when every played hero is recent.
	UnfamiliarHeroID(ctx context.Context, cutoff int64) (*int, error)

	// SuggestionHeroPool returns heroes appearing in the last recentLimit
	// matches that the player has at least minGames total games on.
	SuggestionHeroPool(ctx context.Context, recentLimit, minGames int) ([]int, error)

	// HeroCSAt10Samples returns minute-10 creep scores for a hero's most
	// recent matches, using the exact sample when recorded and a linear
	// end-of-game estimate otherwise.
	HeroCSAt10Samples(ctx context.Context, heroID, limit int) ([]float64, error)

	// ToggleHeroFavorite flips a hero's favorite flag and returns the new
	// state.
	ToggleHeroFavorite(ctx context.Context, heroID int) (bool, error)

	// IsHeroFavorite reports whether a hero is marked favorite.
	IsHeroFavorite(ctx context.Context, heroID int) (bool, error)

	// ListFavoriteHeroes returns all favorite hero ids, ascending.
	ListFavoriteHeroes(ctx context.Context) ([]int, error)

	// GetHeroSuggestion returns the current hero suggestion, or (nil, nil).
	GetHeroSuggestion(ctx context.Context) (*domain.HeroSuggestion, error)

	// SaveHeroSuggestion replaces the singleton hero suggestion.
	SaveHeroSuggestion(ctx context.Context, s *domain.HeroSuggestion) error

	// ClearMatches deletes all matches and their enrichment data. Goals,
	// challenges, and history are untouched.
	ClearMatches(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}
