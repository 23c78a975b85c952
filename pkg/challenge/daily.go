package challenge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dotakeeper/keeper-common/pkg/common"
	"github.com/dotakeeper/keeper-common/pkg/domain"
	"github.com/dotakeeper/keeper-common/pkg/repository"
)

// How far back generation looks to avoid repeating a metric, and how far
// back a hero counts as recently played.
const (
	metricLookbackDays   = 3
	recentHeroWindow     = 10
	unfamiliarHeroCutoff = 7 * 24 * 3600
)

// DailyEngine generates, evaluates, and archives the single daily
// challenge. Every operation re-reads persisted state, so calls are safe to
// repeat.
type DailyEngine struct {
	store   repository.Store
	clock   common.Clock
	logger  *slog.Logger
	newRand randFactory
}

func NewDailyEngine(store repository.Store, clock common.Clock, logger *slog.Logger) *DailyEngine {
	if clock == nil {
		clock = common.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyEngine{store: store, clock: clock, logger: logger, newRand: defaultRandFactory}
}

// GetOrGenerate archives stale active challenges from past days, then
// returns today's challenge, generating it on first access. Generation is
// idempotent: the date is the natural key and a concurrent insert for the
// same date cannot create a duplicate.
func (e *DailyEngine) GetOrGenerate(ctx context.Context) (*domain.DailyChallenge, error) {
	now := e.clock.Now().UTC()
	today := common.DateString(now)

	if err := e.archiveExpired(ctx, today, now.Unix()); err != nil {
		return nil, err
	}

	existing, err := e.store.GetDailyChallenge(ctx, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return e.generate(ctx, today, now.Unix())
}

// archiveExpired lazily fails active challenges dated before today. This
// runs on every access rather than on a scheduler.
func (e *DailyEngine) archiveExpired(ctx context.Context, today string, now int64) error {
	expired, err := e.store.ListExpiredActiveDailyChallenges(ctx, today)
	if err != nil {
		return err
	}
	for _, c := range expired {
		failed, err := e.store.FailDailyChallenge(ctx, c.Date, now)
		if err != nil {
			return err
		}
		if failed {
			e.logger.Info("archived expired daily challenge", "date", c.Date, "metric", c.Metric)
		}
	}
	return nil
}

func (e *DailyEngine) generate(ctx context.Context, today string, now int64) (*domain.DailyChallenge, error) {
	b, err := loadBaselines(ctx, e.store)
	if err != nil {
		return nil, err
	}

	// Avoid immediately repeating the metric of the most recent challenge.
	recentMetrics, err := e.store.RecentDailyMetrics(ctx, metricLookbackDays)
	if err != nil {
		return nil, err
	}
	var lastMetric domain.ChallengeMetric
	if len(recentMetrics) > 0 {
		lastMetric = recentMetrics[0]
	}

	rng := e.newRand()

	recentHeroes, err := e.store.RecentHeroIDs(ctx, recentHeroWindow)
	if err != nil {
		return nil, err
	}
	var recentHero *int
	if len(recentHeroes) > 0 {
		recentHero = intPtr(recentHeroes[rng.Intn(len(recentHeroes))])
	}

	unfamiliarHero, err := e.store.UnfamiliarHeroID(ctx, now-unfamiliarHeroCutoff)
	if err != nil {
		return nil, err
	}

	candidates := dailyCandidates(b, recentHero, unfamiliarHero)
	difficulty := rollDifficulty(rng)

	// Filter by tier excluding the repeated metric; fall back to the tier
	// without the exclusion; finally to the full pool.
	pool := filterCandidates(candidates, func(c candidate) bool {
		return c.difficulty == difficulty && c.metric != lastMetric
	})
	if len(pool) == 0 {
		pool = filterCandidates(candidates, func(c candidate) bool {
			return c.difficulty == difficulty
		})
	}
	if len(pool) == 0 {
		pool = candidates
	}

	chosen := pool[rng.Intn(len(pool))]

	challenge := &domain.DailyChallenge{
		Date:        today,
		Description: chosen.description,
		Metric:      chosen.metric,
		Difficulty:  chosen.difficulty,
		TargetValue: chosen.target,
		TargetGames: chosen.targetGames,
		HeroID:      chosen.heroID,
		Status:      domain.ChallengeStatusActive,
		CreatedAt:   now,
	}
	if err := e.store.InsertDailyChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	e.logger.Info("generated daily challenge",
		"date", today, "metric", chosen.metric, "difficulty", chosen.difficulty, "target", chosen.target)

	// Read back: a concurrent generation may have won the insert.
	return e.store.GetDailyChallenge(ctx, today)
}

func dailyCandidates(b baselines, recentHero, unfamiliarHero *int) []candidate {
	candidates := []candidate{
		{
			metric:      domain.ChallengeMetricWins,
			difficulty:  domain.DifficultyEasy,
			description: "Win 1 game today",
			target:      1,
		},
		{
			metric:      domain.ChallengeMetricGamesPlayed,
			difficulty:  domain.DifficultyEasy,
			description: "Play 2 games today",
			target:      2,
		},
		{
			metric:      domain.ChallengeMetricPositiveKDA,
			difficulty:  domain.DifficultyEasy,
			description: "Finish with positive KDA in one game (K+A > Deaths)",
			target:      1,
		},
	}

	if recentHero != nil {
		candidates = append(candidates, candidate{
			metric:      domain.ChallengeMetricWins,
			difficulty:  domain.DifficultyEasy,
			description: "Win 1 game with your hero",
			target:      1,
			heroID:      recentHero,
		})
	}
	if unfamiliarHero != nil {
		candidates = append(candidates, candidate{
			metric:      domain.ChallengeMetricGamesPlayed,
			difficulty:  domain.DifficultyEasy,
			description: "Play a game with a hero you haven't used in 7 days",
			target:      1,
			heroID:      unfamiliarHero,
		})
	}

	killsTarget := flooredTarget(b.kills, 2, 10)
	gpmTarget := flooredTarget(b.gpm, 30, 400)
	deathsTarget := int(b.deaths) - 1
	if deathsTarget < 1 {
		deathsTarget = 1
	}
	if deathsTarget > 4 {
		deathsTarget = 4
	}

	candidates = append(candidates,
		candidate{
			metric:      domain.ChallengeMetricKills,
			difficulty:  domain.DifficultyMedium,
			description: fmt.Sprintf("Get %.0f+ kills in one game", killsTarget),
			target:      killsTarget,
		},
		candidate{
			metric:      domain.ChallengeMetricGPM,
			difficulty:  domain.DifficultyMedium,
			description: fmt.Sprintf("Achieve %.0f+ GPM in one game", gpmTarget),
			target:      gpmTarget,
		},
		candidate{
			metric:      domain.ChallengeMetricLowDeaths,
			difficulty:  domain.DifficultyMedium,
			description: fmt.Sprintf("Die %d times or less in one game", deathsTarget),
			target:      float64(deathsTarget),
		},
	)

	dmgTarget := flooredTarget(b.heroDamage, 2000, 15000)
	candidates = append(candidates, candidate{
		metric:      domain.ChallengeMetricHeroDamage,
		difficulty:  domain.DifficultyHard,
		description: fmt.Sprintf("Deal %.0f+ hero damage in one game", dmgTarget),
		target:      dmgTarget,
	})

	if b.csAt10 != nil {
		csTarget := flooredTarget(*b.csAt10, 5, 50)
		candidates = append(candidates, candidate{
			metric:      domain.ChallengeMetricCSAt10,
			difficulty:  domain.DifficultyHard,
			description: fmt.Sprintf("Get %.0f+ CS at 10 minutes", csTarget),
			target:      csTarget,
		})
	}

	return candidates
}

func filterCandidates(candidates []candidate, keep func(candidate) bool) []candidate {
	var out []candidate
	for _, c := range candidates {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate computes today's progress for a challenge and auto-completes it
// the first time the target is met. A completed challenge is returned
// as trivially complete without re-scanning matches.
func (e *DailyEngine) Evaluate(ctx context.Context, c *domain.DailyChallenge) (*domain.DailyProgress, error) {
	if c.Status == domain.ChallengeStatusCompleted {
		return &domain.DailyProgress{
			Current:   c.TargetValue,
			Target:    c.TargetValue,
			Completed: true,
		}, nil
	}

	now := e.clock.Now().UTC()
	matches, err := e.store.ListMatchesSince(ctx, common.DayStartUnix(now))
	if err != nil {
		return nil, err
	}
	if c.HeroID != nil {
		matches = filterByHero(matches, *c.HeroID)
	}

	current := c.TargetValue
	target := c.TargetValue

	switch c.Metric {
	case domain.ChallengeMetricWins:
		wins := 0
		for _, m := range matches {
			if m.IsWin() {
				wins++
			}
		}
		current = float64(wins)

	case domain.ChallengeMetricGamesPlayed:
		current = float64(len(matches))

	case domain.ChallengeMetricKills:
		current = maxOf(matches, func(m *domain.Match) int { return m.Kills })

	case domain.ChallengeMetricGPM:
		current = maxOf(matches, func(m *domain.Match) int { return m.GPM })

	case domain.ChallengeMetricHeroDamage:
		current = maxOf(matches, func(m *domain.Match) int { return m.HeroDamage })

	case domain.ChallengeMetricPositiveKDA:
		current, target = 0, 1
		for _, m := range matches {
			if m.HasPositiveKDA() {
				current = 1
				break
			}
		}

	case domain.ChallengeMetricLowDeaths:
		// TargetValue is the death threshold; achievement is boolean.
		threshold := int(c.TargetValue)
		current, target = 0, 1
		for _, m := range matches {
			if m.Deaths <= threshold {
				current = 1
				break
			}
		}

	case domain.ChallengeMetricCSAt10:
		// Exact minute-10 values from parsed matches only.
		best := 0.0
		for _, m := range matches {
			if m.ParseState != domain.ParseStateParsed {
				continue
			}
			sample, err := e.store.CSAtMinute(ctx, m.ID, 10)
			if err != nil {
				return nil, err
			}
			if sample != nil && float64(sample.LastHits) > best {
				best = float64(sample.LastHits)
			}
		}
		current = best

	default:
		current = 0
	}

	completed := current >= target
	if completed && c.Status == domain.ChallengeStatusActive {
		done, err := e.store.CompleteDailyChallenge(ctx, c.Date, now.Unix(), current)
		if err != nil {
			return nil, err
		}
		if done {
			e.logger.Info("daily challenge completed", "date", c.Date, "metric", c.Metric, "achieved", current)
		}
	}

	return &domain.DailyProgress{
		Current:     current,
		Target:      target,
		Completed:   completed,
		GamesPlayed: len(matches),
	}, nil
}

// Progress is the combined read path: archive, get or generate, evaluate.
func (e *DailyEngine) Progress(ctx context.Context) (*domain.DailyChallenge, *domain.DailyProgress, error) {
	c, err := e.GetOrGenerate(ctx)
	if err != nil {
		return nil, nil, err
	}
	progress, err := e.Evaluate(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	// Evaluate may have transitioned the row; re-read so callers see the
	// stamped status.
	c, err = e.store.GetDailyChallenge(ctx, c.Date)
	if err != nil {
		return nil, nil, err
	}
	return c, progress, nil
}

// History returns the recorded daily outcomes, newest first. A zero limit
// returns everything.
func (e *DailyEngine) History(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	period := domain.PeriodTypeDaily
	return e.store.ListHistory(ctx, &period, limit)
}

// Streak counts consecutive completed days ending yesterday. A missing,
// failed, or still-active day breaks the streak.
func (e *DailyEngine) Streak(ctx context.Context) (int, error) {
	date := common.DateString(e.clock.Now().UTC())

	streak := 0
	for {
		var err error
		date, err = common.AddDays(date, -1)
		if err != nil {
			return 0, err
		}

		c, err := e.store.GetDailyChallenge(ctx, date)
		if err != nil {
			return 0, err
		}
		if c == nil || c.Status != domain.ChallengeStatusCompleted {
			return streak, nil
		}
		streak++
	}
}

func filterByHero(matches []*domain.Match, heroID int) []*domain.Match {
	var out []*domain.Match
	for _, m := range matches {
		if m.HeroID == heroID {
			out = append(out, m)
		}
	}
	return out
}

func maxOf(matches []*domain.Match, value func(*domain.Match) int) float64 {
	best := 0
	for _, m := range matches {
		if v := value(m); v > best {
			best = v
		}
	}
	return float64(best)
}
