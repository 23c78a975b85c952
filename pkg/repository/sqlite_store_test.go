package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotakeeper/keeper-common/pkg/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testMatch(id int64) *domain.Match {
	return &domain.Match{
		ID:         id,
		HeroID:     14,
		PlayerSlot: 2,
		RadiantWin: true,
		Duration:   2400,
		GameMode:   domain.GameModeRanked,
		LobbyType:  7,
		StartTime:  1756000000 + id,
		Kills:      8,
		Deaths:     3,
		Assists:    12,
		GPM:        520,
		XPM:        610,
		HeroDamage: 21000,
		LastHits:   210,
		Denies:     14,
		Level:      24,
		Networth:   18400,
	}
}

func TestSQLiteStore_InsertAndGetMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := testMatch(100)
	require.NoError(t, store.InsertMatch(ctx, m))

	got, err := store.GetMatch(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(100), got.ID)
	assert.Equal(t, 14, got.HeroID)
	assert.Equal(t, domain.ParseStateUnparsed, got.ParseState)
	assert.Nil(t, got.PartnerSlot)

	exists, err := store.MatchExists(ctx, 100)
	require.NoError(t, err)
	assert.True(t, exists)

	missing, err := store.GetMatch(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_InsertMatch_DuplicateIgnored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := testMatch(100)
	require.NoError(t, store.InsertMatch(ctx, m))

	changed := testMatch(100)
	changed.Kills = 99
	require.NoError(t, store.InsertMatch(ctx, changed))

	got, err := store.GetMatch(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Kills, "first insert wins")
}

func TestSQLiteStore_ListMatches_OrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{1, 3, 2} {
		require.NoError(t, store.InsertMatch(ctx, testMatch(id)))
	}

	all, err := store.ListMatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID, "newest first")

	two, err := store.ListMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, int64(3), two[0].ID)
	assert.Equal(t, int64(2), two[1].ID)
}

func TestSQLiteStore_ParseStateLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertMatch(ctx, testMatch(1)))
	require.NoError(t, store.InsertMatch(ctx, testMatch(2)))

	require.NoError(t, store.UpdateParseState(ctx, 1, domain.ParseStateParsing))
	require.NoError(t, store.UpdateParseState(ctx, 2, domain.ParseStateParsed))

	unparsed, err := store.ListUnparsedMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, unparsed, "parsing and parsed are both excluded")

	require.NoError(t, store.UpdateParseState(ctx, 1, domain.ParseStateFailed))

	unparsed, err = store.ListUnparsedMatches(ctx)
	require.NoError(t, err)
	require.Len(t, unparsed, 1)
	assert.Equal(t, int64(1), unparsed[0].ID, "failed matches are retried")

	err = store.UpdateParseState(ctx, 1, domain.ParseState("bogus"))
	assert.Error(t, err)
}

func TestSQLiteStore_ResetParsingOnOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keeper.db")

	store, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.InsertMatch(ctx, testMatch(1)))
	require.NoError(t, store.UpdateParseState(ctx, 1, domain.ParseStateParsing))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetMatch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ParseStateUnparsed, got.ParseState)
}

func TestSQLiteStore_CSSeries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertMatch(ctx, testMatch(1)))

	samples := []domain.CSSample{
		{Minute: 5, LastHits: 30, Denies: 4},
		{Minute: 10, LastHits: 62, Denies: 9},
	}
	require.NoError(t, store.ReplaceCSSeries(ctx, 1, samples))

	at10, err := store.CSAtMinute(ctx, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, at10)
	assert.Equal(t, 62, at10.LastHits)

	at15, err := store.CSAtMinute(ctx, 1, 15)
	require.NoError(t, err)
	assert.Nil(t, at15, "missing minute is not an error")

	// Replace is a full overwrite, not a merge.
	require.NoError(t, store.ReplaceCSSeries(ctx, 1, []domain.CSSample{{Minute: 10, LastHits: 70, Denies: 10}}))

	series, err := store.CSSeries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 70, series[0].LastHits)
}

func TestSQLiteStore_NetworthSeries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertMatch(ctx, testMatch(1)))
	require.NoError(t, store.ReplaceNetworthSeries(ctx, 1, []domain.NetworthSample{
		{PlayerSlot: 2, Minute: 10, Networth: 4200},
		{PlayerSlot: 3, Minute: 10, Networth: 3100},
	}))

	nw, err := store.NetworthAtMinute(ctx, 1, 3, 10)
	require.NoError(t, err)
	require.NotNil(t, nw)
	assert.Equal(t, 3100, *nw)

	missing, err := store.NetworthAtMinute(ctx, 1, 3, 20)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStore_ItemTimings_KeepsEarlier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertMatch(ctx, testMatch(1)))
	require.NoError(t, store.UpsertItemTiming(ctx, domain.ItemTiming{MatchID: 1, ItemID: 1, Seconds: 900}))
	require.NoError(t, store.UpsertItemTiming(ctx, domain.ItemTiming{MatchID: 1, ItemID: 1, Seconds: 1200}))

	secs, err := store.ItemTiming(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, secs)
	assert.Equal(t, 900, *secs)

	require.NoError(t, store.UpsertItemTiming(ctx, domain.ItemTiming{MatchID: 1, ItemID: 1, Seconds: 600}))
	secs, err = store.ItemTiming(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 600, *secs)
}

func TestSQLiteStore_GoalCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	heroID := 14
	g := &domain.Goal{
		Name:          "60 last hits by 10:00",
		HeroID:        &heroID,
		Metric:        domain.MetricLastHits,
		TargetValue:   60,
		TargetMinutes: 10,
		CreatedAt:     1756000000,
	}

	id, err := store.InsertGoal(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, id, g.ID)

	got, err := store.GetGoal(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "60 last hits by 10:00", got.Name)
	require.NotNil(t, got.HeroID)
	assert.Equal(t, 14, *got.HeroID)
	assert.Nil(t, got.ItemID)

	got.TargetValue = 70
	require.NoError(t, store.UpdateGoal(ctx, got))

	updated, err := store.GetGoal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 70.0, updated.TargetValue)

	require.NoError(t, store.DeleteGoal(ctx, id))
	missing, err := store.GetGoal(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = store.DeleteGoal(ctx, id)
	assert.Error(t, err, "deleting twice reports not found")
}

func TestSQLiteStore_DailyChallenge_InsertIfAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &domain.DailyChallenge{
		Date:        "2026-08-31",
		Description: "Average 420 GPM today",
		Metric:      domain.ChallengeMetricGPM,
		Difficulty:  domain.DifficultyMedium,
		TargetValue: 420,
		CreatedAt:   1756600000,
	}
	require.NoError(t, store.InsertDailyChallenge(ctx, c))

	other := *c
	other.Description = "different roll"
	require.NoError(t, store.InsertDailyChallenge(ctx, &other))

	got, err := store.GetDailyChallenge(ctx, "2026-08-31")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Average 420 GPM today", got.Description, "first generation wins")
	assert.Equal(t, domain.ChallengeStatusActive, got.Status)
}

func TestSQLiteStore_DailyChallenge_CompleteExactlyOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &domain.DailyChallenge{
		Date:        "2026-08-31",
		Description: "Get 10 kills in a match",
		Metric:      domain.ChallengeMetricKills,
		Difficulty:  domain.DifficultyMedium,
		TargetValue: 10,
		CreatedAt:   1756600000,
	}
	require.NoError(t, store.InsertDailyChallenge(ctx, c))

	done, err := store.CompleteDailyChallenge(ctx, "2026-08-31", 1756650000, 12)
	require.NoError(t, err)
	assert.True(t, done)

	// Second completion is a no-op: no status change, no second ledger row.
	done, err = store.CompleteDailyChallenge(ctx, "2026-08-31", 1756660000, 15)
	require.NoError(t, err)
	assert.False(t, done)

	// Failing after completing is also a no-op.
	failed, err := store.FailDailyChallenge(ctx, "2026-08-31", 1756670000)
	require.NoError(t, err)
	assert.False(t, failed)

	got, err := store.GetDailyChallenge(ctx, "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(1756650000), *got.CompletedAt)

	history, err := store.ListHistory(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.PeriodTypeDaily, history[0].PeriodType)
	assert.Equal(t, "2026-08-31", history[0].PeriodKey)
	assert.Equal(t, 12.0, history[0].AchievedValue)
	assert.Equal(t, domain.ChallengeStatusCompleted, history[0].Outcome)
}

func TestSQLiteStore_DailyChallenge_LazyFail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-29", "2026-08-30"} {
		require.NoError(t, store.InsertDailyChallenge(ctx, &domain.DailyChallenge{
			Date:        date,
			Description: "Win a match",
			Metric:      domain.ChallengeMetricWins,
			Difficulty:  domain.DifficultyEasy,
			TargetValue: 1,
			CreatedAt:   1756400000,
		}))
	}

	expired, err := store.ListExpiredActiveDailyChallenges(ctx, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "2026-08-29", expired[0].Date)

	failed, err := store.FailDailyChallenge(ctx, "2026-08-29", 1756500000)
	require.NoError(t, err)
	assert.True(t, failed)

	history, err := store.ListHistory(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ChallengeStatusFailed, history[0].Outcome)
	assert.Equal(t, 0.0, history[0].AchievedValue)
}

func TestSQLiteStore_RecentDailyMetrics(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	metrics := []domain.ChallengeMetric{
		domain.ChallengeMetricKills, domain.ChallengeMetricGPM, domain.ChallengeMetricWins,
	}
	for i, m := range metrics {
		require.NoError(t, store.InsertDailyChallenge(ctx, &domain.DailyChallenge{
			Date:        "2026-08-2" + string(rune('7'+i)),
			Description: "x",
			Metric:      m,
			Difficulty:  domain.DifficultyEasy,
			TargetValue: 1,
			CreatedAt:   1756400000,
		}))
	}

	recent, err := store.RecentDailyMetrics(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, domain.ChallengeMetricWins, recent[0], "newest date first")
	assert.Equal(t, domain.ChallengeMetricGPM, recent[1])
}

func TestSQLiteStore_WeeklyOptions_ReplaceAndGenerations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	week := "2026-08-30"

	gen, err := store.MaxRerollGeneration(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, 0, gen, "no options yet")

	first := []*domain.ChallengeOption{
		{OptionIndex: 0, Difficulty: domain.DifficultyEasy, Description: "Win 3", Metric: domain.ChallengeMetricWins, TargetValue: 3},
		{OptionIndex: 1, Difficulty: domain.DifficultyMedium, Description: "20 kills", Metric: domain.ChallengeMetricKillsTotal, TargetValue: 20},
		{OptionIndex: 2, Difficulty: domain.DifficultyHard, Description: "450 GPM avg", Metric: domain.ChallengeMetricAvgGPM, TargetValue: 450, RerollGeneration: 0},
	}
	require.NoError(t, store.ReplaceWeeklyOptions(ctx, week, first))

	for _, o := range first {
		assert.NotZero(t, o.ID, "insert fills ids")
		assert.Equal(t, week, o.WeekStart)
	}

	rerolled := []*domain.ChallengeOption{
		{OptionIndex: 0, Difficulty: domain.DifficultyEasy, Description: "Win 2", Metric: domain.ChallengeMetricWins, TargetValue: 2, RerollGeneration: 1},
		{OptionIndex: 1, Difficulty: domain.DifficultyMedium, Description: "Play 7", Metric: domain.ChallengeMetricGamesPlayed, TargetValue: 7, RerollGeneration: 1},
		{OptionIndex: 2, Difficulty: domain.DifficultyHard, Description: "90k damage", Metric: domain.ChallengeMetricHeroDamageTotal, TargetValue: 90000, RerollGeneration: 1},
	}
	require.NoError(t, store.ReplaceWeeklyOptions(ctx, week, rerolled))

	options, err := store.ListWeeklyOptions(ctx, week)
	require.NoError(t, err)
	require.Len(t, options, 3, "replace does not accumulate")
	assert.Equal(t, "Win 2", options[0].Description)

	gen, err = store.MaxRerollGeneration(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, 1, gen)

	got, err := store.GetWeeklyOption(ctx, options[1].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ChallengeMetricGamesPlayed, got.Metric)
}

func TestSQLiteStore_WeeklyChallenge_OnePerWeek(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	week := "2026-08-30"
	acceptedAt := int64(1756700000)

	c := &domain.WeeklyChallenge{
		WeekStart:   week,
		Description: "Win 3 matches this week",
		Difficulty:  domain.DifficultyEasy,
		Metric:      domain.ChallengeMetricWins,
		TargetValue: 3,
		Status:      domain.ChallengeStatusActive,
		RerollCount: 1,
		AcceptedAt:  &acceptedAt,
	}
	inserted, err := store.InsertWeeklyChallenge(ctx, c)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, c.ID)

	dup := &domain.WeeklyChallenge{
		WeekStart:   week,
		Description: "something else",
		Difficulty:  domain.DifficultyHard,
		Metric:      domain.ChallengeMetricAvgGPM,
		TargetValue: 450,
		Status:      domain.ChallengeStatusActive,
	}
	inserted, err = store.InsertWeeklyChallenge(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted, "week_start unique key arbitrates")

	got, err := store.GetWeeklyChallenge(ctx, week)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Win 3 matches this week", got.Description)
	assert.Equal(t, 1, got.RerollCount)
	require.NotNil(t, got.AcceptedAt)
	assert.Equal(t, acceptedAt, *got.AcceptedAt)
}

func TestSQLiteStore_WeeklyChallenge_CompleteExactlyOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &domain.WeeklyChallenge{
		WeekStart:   "2026-08-30",
		Description: "Total 20 kills this week",
		Difficulty:  domain.DifficultyMedium,
		Metric:      domain.ChallengeMetricKillsTotal,
		TargetValue: 20,
		Status:      domain.ChallengeStatusActive,
	}
	_, err := store.InsertWeeklyChallenge(ctx, c)
	require.NoError(t, err)

	done, err := store.CompleteWeeklyChallenge(ctx, c.ID, 1756800000, 23)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = store.CompleteWeeklyChallenge(ctx, c.ID, 1756810000, 30)
	require.NoError(t, err)
	assert.False(t, done)

	failed, err := store.FailWeeklyChallenge(ctx, c.ID, 1756820000)
	require.NoError(t, err)
	assert.False(t, failed)

	weekly := domain.PeriodTypeWeekly
	history, err := store.ListHistory(ctx, &weekly, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2026-08-30", history[0].PeriodKey)
	assert.Equal(t, 23.0, history[0].AchievedValue)

	daily := domain.PeriodTypeDaily
	none, err := store.ListHistory(ctx, &daily, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_ExpiredWeeklyChallenges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := &domain.WeeklyChallenge{
		WeekStart: "2026-08-23", Description: "old", Difficulty: domain.DifficultyEasy,
		Metric: domain.ChallengeMetricWins, TargetValue: 3, Status: domain.ChallengeStatusActive,
	}
	current := &domain.WeeklyChallenge{
		WeekStart: "2026-08-30", Description: "current", Difficulty: domain.DifficultyEasy,
		Metric: domain.ChallengeMetricWins, TargetValue: 3, Status: domain.ChallengeStatusActive,
	}
	_, err := store.InsertWeeklyChallenge(ctx, old)
	require.NoError(t, err)
	_, err = store.InsertWeeklyChallenge(ctx, current)
	require.NoError(t, err)

	expired, err := store.ListExpiredActiveWeeklyChallenges(ctx, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "2026-08-23", expired[0].WeekStart)

	failed, err := store.FailWeeklyChallenge(ctx, expired[0].ID, 1756800000)
	require.NoError(t, err)
	assert.True(t, failed)

	expired, err = store.ListExpiredActiveWeeklyChallenges(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestSQLiteStore_RecentAverages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.RecentAverages(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Games)

	kills := []int{10, 6, 8}
	for i, k := range kills {
		m := testMatch(int64(i + 1))
		m.Kills = k
		m.GPM = 400 + i*100
		require.NoError(t, store.InsertMatch(ctx, m))
	}

	avg, err := store.RecentAverages(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, avg.Games)
	assert.InDelta(t, 8.0, avg.Kills, 1e-9)
	assert.InDelta(t, 500.0, avg.GPM, 1e-9)

	// Window limit applies before averaging: only the two newest count.
	avg, err = store.RecentAverages(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, avg.Games)
	assert.InDelta(t, 7.0, avg.Kills, 1e-9)
}

func TestSQLiteStore_AvgCSAt10(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	none, err := store.AvgCSAt10(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, none)

	for i, lh := range []int{40, 60} {
		id := int64(i + 1)
		require.NoError(t, store.InsertMatch(ctx, testMatch(id)))
		require.NoError(t, store.UpdateParseState(ctx, id, domain.ParseStateParsed))
		require.NoError(t, store.ReplaceCSSeries(ctx, id, []domain.CSSample{{Minute: 10, LastHits: lh, Denies: 5}}))
	}

	// Unparsed matches never contribute.
	require.NoError(t, store.InsertMatch(ctx, testMatch(3)))

	avg, err := store.AvgCSAt10(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 50.0, *avg, 1e-9)
}

func TestSQLiteStore_HeroCSAt10Samples(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Parsed match with an exact minute-10 sample.
	exact := testMatch(1)
	exact.HeroID = 14
	require.NoError(t, store.InsertMatch(ctx, exact))
	require.NoError(t, store.ReplaceCSSeries(ctx, 1, []domain.CSSample{{Minute: 10, LastHits: 55, Denies: 6}}))

	// Unparsed match falls back to a linear estimate: 240 lh over 40 min.
	estimated := testMatch(2)
	estimated.HeroID = 14
	estimated.LastHits = 240
	estimated.Duration = 2400
	require.NoError(t, store.InsertMatch(ctx, estimated))

	other := testMatch(3)
	other.HeroID = 99
	require.NoError(t, store.InsertMatch(ctx, other))

	samples, err := store.HeroCSAt10Samples(ctx, 14, 5)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.InDelta(t, 60.0, samples[0], 1e-9, "newest first, estimated")
	assert.InDelta(t, 55.0, samples[1], 1e-9, "exact sample preferred")
}

func TestSQLiteStore_HeroPools(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Hero 14 has three games, hero 99 one.
	for i, hero := range []int{14, 14, 14, 99} {
		m := testMatch(int64(i + 1))
		m.HeroID = hero
		require.NoError(t, store.InsertMatch(ctx, m))
	}

	recent, err := store.RecentHeroIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{14, 99}, recent)

	pool, err := store.SuggestionHeroPool(ctx, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{14}, pool)

	// Hero 14 last played at start_time 1756000003; cutoff above that
	// makes it stale, 99 is newer but also below a high enough cutoff.
	stale, err := store.UnfamiliarHeroID(ctx, 1756000004)
	require.NoError(t, err)
	require.NotNil(t, stale)
	assert.Equal(t, 14, *stale)

	none, err := store.UnfamiliarHeroID(ctx, 1756000000)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLiteStore_Favorites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fav, err := store.IsHeroFavorite(ctx, 14)
	require.NoError(t, err)
	assert.False(t, fav)

	on, err := store.ToggleHeroFavorite(ctx, 14)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = store.ToggleHeroFavorite(ctx, 99)
	require.NoError(t, err)
	assert.True(t, on)

	list, err := store.ListFavoriteHeroes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{14, 99}, list)

	off, err := store.ToggleHeroFavorite(ctx, 14)
	require.NoError(t, err)
	assert.False(t, off)

	fav, err = store.IsHeroFavorite(ctx, 14)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestSQLiteStore_HeroSuggestionSingleton(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	none, err := store.GetHeroSuggestion(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, store.SaveHeroSuggestion(ctx, &domain.HeroSuggestion{
		HeroID: 14, AverageCS: 52.4, TargetCS: 58, CreatedAt: 1756000000,
	}))
	require.NoError(t, store.SaveHeroSuggestion(ctx, &domain.HeroSuggestion{
		HeroID: 99, AverageCS: 44.0, TargetCS: 49, CreatedAt: 1756100000,
	}))

	got, err := store.GetHeroSuggestion(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 99, got.HeroID, "save replaces the singleton")
	assert.Equal(t, 49, got.TargetCS)
}

func TestSQLiteStore_ClearMatches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertMatch(ctx, testMatch(1)))
	require.NoError(t, store.ReplaceCSSeries(ctx, 1, []domain.CSSample{{Minute: 10, LastHits: 50, Denies: 5}}))
	require.NoError(t, store.UpsertItemTiming(ctx, domain.ItemTiming{MatchID: 1, ItemID: 1, Seconds: 800}))

	require.NoError(t, store.ClearMatches(ctx))

	matches, err := store.ListMatches(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)

	series, err := store.CSSeries(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestSQLiteStore_PartnerSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertMatch(ctx, testMatch(1)))

	slot, err := store.PartnerSlot(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, slot)

	require.NoError(t, store.UpdatePartnerSlot(ctx, 1, 3))

	slot, err = store.PartnerSlot(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, 3, *slot)
}
