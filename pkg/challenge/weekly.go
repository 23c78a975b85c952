package challenge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dotakeeper/keeper-common/pkg/common"
	"github.com/dotakeeper/keeper-common/pkg/domain"
	kerrors "github.com/dotakeeper/keeper-common/pkg/errors"
	"github.com/dotakeeper/keeper-common/pkg/repository"
)

const (
	// maxRerolls caps how many times a week's options can be regenerated.
	maxRerolls = 2

	weeklyRecentHeroWindow = 20

	defaultAvgGPMGames   = 5
	defaultLowDeathGames = 4
)

// WeeklyEngine manages the weekly challenge lifecycle: offering three
// options, rerolling them, accepting or skipping one, and evaluating
// progress against the accepted challenge.
type WeeklyEngine struct {
	store   repository.Store
	clock   common.Clock
	logger  *slog.Logger
	newRand randFactory
}

func NewWeeklyEngine(store repository.Store, clock common.Clock, logger *slog.Logger) *WeeklyEngine {
	if clock == nil {
		clock = common.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeeklyEngine{store: store, clock: clock, logger: logger, newRand: defaultRandFactory}
}

func (e *WeeklyEngine) weekStart() string {
	return common.WeekStartDate(e.clock.Now().UTC())
}

// Options returns this week's three offered challenges, generating them on
// first access. Previously generated options are returned as-is so the
// offer stays stable across reads.
func (e *WeeklyEngine) Options(ctx context.Context) ([]*domain.ChallengeOption, error) {
	week := e.weekStart()

	existing, err := e.store.ListWeeklyOptions(ctx, week)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	return e.generateOptions(ctx, week, 0)
}

// Reroll regenerates the week's options. It is refused once a challenge has
// been accepted or skipped, and after the reroll budget is spent.
func (e *WeeklyEngine) Reroll(ctx context.Context) ([]*domain.ChallengeOption, error) {
	week := e.weekStart()

	existing, err := e.store.GetWeeklyChallenge(ctx, week)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == domain.ChallengeStatusSkipped {
			return nil, kerrors.ErrWeekSkipped(week)
		}
		return nil, kerrors.ErrChallengeAlreadyAccepted(week)
	}

	generation, err := e.store.MaxRerollGeneration(ctx, week)
	if err != nil {
		return nil, err
	}
	if generation >= maxRerolls {
		return nil, kerrors.ErrRerollLimitReached(week)
	}

	e.logger.Info("rerolling weekly options", "week_start", week, "generation", generation+1)
	return e.generateOptions(ctx, week, generation+1)
}

func (e *WeeklyEngine) generateOptions(ctx context.Context, week string, generation int) ([]*domain.ChallengeOption, error) {
	b, err := loadBaselines(ctx, e.store)
	if err != nil {
		return nil, err
	}

	rng := e.newRand()

	recentHeroes, err := e.store.RecentHeroIDs(ctx, weeklyRecentHeroWindow)
	if err != nil {
		return nil, err
	}
	var recentHero *int
	if len(recentHeroes) > 0 {
		recentHero = intPtr(recentHeroes[rng.Intn(len(recentHeroes))])
	}

	byTier := map[domain.Difficulty][]candidate{
		domain.DifficultyEasy:   weeklyEasyCandidates(recentHero),
		domain.DifficultyMedium: weeklyMediumCandidates(b),
		domain.DifficultyHard:   weeklyHardCandidates(b),
	}

	// One option per tier, picked uniformly within the tier.
	options := make([]*domain.ChallengeOption, 0, 3)
	for i, tier := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		pool := byTier[tier]
		chosen := pool[rng.Intn(len(pool))]
		options = append(options, &domain.ChallengeOption{
			OptionIndex:      i,
			Difficulty:       tier,
			Description:      chosen.description,
			Metric:           chosen.metric,
			TargetValue:      chosen.target,
			TargetGames:      chosen.targetGames,
			HeroID:           chosen.heroID,
			RerollGeneration: generation,
		})
	}

	if err := e.store.ReplaceWeeklyOptions(ctx, week, options); err != nil {
		return nil, err
	}
	return options, nil
}

func weeklyEasyCandidates(recentHero *int) []candidate {
	candidates := []candidate{
		{
			metric:      domain.ChallengeMetricWins,
			difficulty:  domain.DifficultyEasy,
			description: "Win 3 games this week",
			target:      3,
		},
		{
			metric:      domain.ChallengeMetricGamesPlayed,
			difficulty:  domain.DifficultyEasy,
			description: "Play 5 games this week",
			target:      5,
		},
		{
			metric:      domain.ChallengeMetricPositiveKDAGames,
			difficulty:  domain.DifficultyEasy,
			description: "Finish 3 games with positive KDA",
			target:      3,
		},
	}
	if recentHero != nil {
		candidates = append(candidates, candidate{
			metric:      domain.ChallengeMetricWins,
			difficulty:  domain.DifficultyEasy,
			description: "Win 2 games with your hero",
			target:      2,
			heroID:      recentHero,
		})
	}
	return candidates
}

func weeklyMediumCandidates(b baselines) []candidate {
	killsTarget := int(b.kills) * 4
	if killsTarget < 20 {
		killsTarget = 20
	}
	gpmTarget := flooredTarget(b.gpm, 50, 450)
	deathsTarget := int(b.deaths) - 1
	if deathsTarget < 2 {
		deathsTarget = 2
	}

	return []candidate{
		{
			metric:      domain.ChallengeMetricKillsTotal,
			difficulty:  domain.DifficultyMedium,
			description: fmt.Sprintf("Get %d total kills this week", killsTarget),
			target:      float64(killsTarget),
		},
		{
			metric:      domain.ChallengeMetricAvgGPM,
			difficulty:  domain.DifficultyMedium,
			description: fmt.Sprintf("Average %.0f+ GPM over %d games", gpmTarget, defaultAvgGPMGames),
			target:      gpmTarget,
			targetGames: intPtr(defaultAvgGPMGames),
		},
		{
			metric:      domain.ChallengeMetricWins,
			difficulty:  domain.DifficultyMedium,
			description: "Win 5 games this week",
			target:      5,
		},
		{
			metric:      domain.ChallengeMetricLowDeathsGames,
			difficulty:  domain.DifficultyMedium,
			description: fmt.Sprintf("Die %d times or less in %d games", deathsTarget, defaultLowDeathGames),
			target:      float64(deathsTarget),
			targetGames: intPtr(defaultLowDeathGames),
		},
	}
}

func weeklyHardCandidates(b baselines) []candidate {
	dmgTarget := flooredTarget(b.heroDamage, 3000, 18000) * 5

	candidates := []candidate{
		{
			metric:      domain.ChallengeMetricHeroDamageTotal,
			difficulty:  domain.DifficultyHard,
			description: fmt.Sprintf("Deal %.0f total hero damage this week", dmgTarget),
			target:      dmgTarget,
		},
		{
			metric:      domain.ChallengeMetricWins,
			difficulty:  domain.DifficultyHard,
			description: "Win 8 games this week",
			target:      8,
		},
	}
	if b.csAt10 != nil {
		csTarget := flooredTarget(*b.csAt10, 8, 55)
		candidates = append(candidates, candidate{
			metric:      domain.ChallengeMetricCSAt10Avg,
			difficulty:  domain.DifficultyHard,
			description: fmt.Sprintf("Average %.0f+ CS at 10 minutes over %d games", csTarget, defaultAvgGPMGames),
			target:      csTarget,
			targetGames: intPtr(defaultAvgGPMGames),
		})
	}
	return candidates
}

// Accept commits one of the offered options as this week's challenge. A
// week that already has a row, accepted or skipped, cannot accept again.
func (e *WeeklyEngine) Accept(ctx context.Context, optionID int64) (*domain.WeeklyChallenge, error) {
	week := e.weekStart()

	existing, err := e.store.GetWeeklyChallenge(ctx, week)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == domain.ChallengeStatusSkipped {
			return nil, kerrors.ErrWeekSkipped(week)
		}
		return nil, kerrors.ErrChallengeAlreadyAccepted(week)
	}

	option, err := e.store.GetWeeklyOption(ctx, optionID)
	if err != nil {
		return nil, err
	}
	if option == nil || option.WeekStart != week {
		return nil, kerrors.ErrOptionNotFound(optionID)
	}

	rerollCount, err := e.store.MaxRerollGeneration(ctx, week)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now().UTC().Unix()
	challenge := &domain.WeeklyChallenge{
		WeekStart:   week,
		Description: option.Description,
		Difficulty:  option.Difficulty,
		Metric:      option.Metric,
		TargetValue: option.TargetValue,
		TargetGames: option.TargetGames,
		HeroID:      option.HeroID,
		Status:      domain.ChallengeStatusActive,
		RerollCount: rerollCount,
		AcceptedAt:  &now,
	}
	inserted, err := e.store.InsertWeeklyChallenge(ctx, challenge)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, kerrors.ErrChallengeAlreadyAccepted(week)
	}

	e.logger.Info("accepted weekly challenge",
		"week_start", week, "metric", option.Metric, "difficulty", option.Difficulty)
	return challenge, nil
}

// Skip marks the week as intentionally sat out. Skipping is terminal for
// the week and idempotent; it is refused once a challenge is accepted.
func (e *WeeklyEngine) Skip(ctx context.Context) error {
	week := e.weekStart()

	existing, err := e.store.GetWeeklyChallenge(ctx, week)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Status == domain.ChallengeStatusSkipped {
			return nil
		}
		return kerrors.ErrChallengeAlreadyAccepted(week)
	}

	challenge := &domain.WeeklyChallenge{
		WeekStart:   week,
		Description: "Skipped",
		Difficulty:  domain.DifficultyEasy,
		Metric:      domain.ChallengeMetricGamesPlayed,
		Status:      domain.ChallengeStatusSkipped,
	}
	if _, err := e.store.InsertWeeklyChallenge(ctx, challenge); err != nil {
		return err
	}
	e.logger.Info("skipped weekly challenge", "week_start", week)
	return nil
}

// Active archives stale challenges from past weeks, then returns the
// current week's challenge if it is active or completed. Skipped weeks
// read as no challenge.
func (e *WeeklyEngine) Active(ctx context.Context) (*domain.WeeklyChallenge, error) {
	week := e.weekStart()
	now := e.clock.Now().UTC().Unix()

	expired, err := e.store.ListExpiredActiveWeeklyChallenges(ctx, week)
	if err != nil {
		return nil, err
	}
	for _, c := range expired {
		failed, err := e.store.FailWeeklyChallenge(ctx, c.ID, now)
		if err != nil {
			return nil, err
		}
		if failed {
			e.logger.Info("archived expired weekly challenge", "week_start", c.WeekStart, "metric", c.Metric)
		}
	}

	c, err := e.store.GetWeeklyChallenge(ctx, week)
	if err != nil {
		return nil, err
	}
	if c == nil || (c.Status != domain.ChallengeStatusActive && c.Status != domain.ChallengeStatusCompleted) {
		return nil, nil
	}
	return c, nil
}

// Progress evaluates the current week's challenge against matches played
// since acceptance, auto-completing it the first time the target is met.
// (nil, nil) means no challenge is in play this week.
func (e *WeeklyEngine) Progress(ctx context.Context) (*domain.WeeklyProgress, error) {
	c, err := e.Active(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	now := e.clock.Now().UTC()
	daysRemaining := common.DaysRemainingInWeek(now)

	if c.Status == domain.ChallengeStatusCompleted {
		return &domain.WeeklyProgress{
			Current:       c.TargetValue,
			Target:        c.TargetValue,
			Completed:     true,
			DaysRemaining: daysRemaining,
		}, nil
	}

	since, err := e.progressWindowStart(c)
	if err != nil {
		return nil, err
	}
	matches, err := e.store.ListMatchesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	if c.HeroID != nil {
		matches = filterByHero(matches, *c.HeroID)
	}

	current, target, err := e.measure(ctx, c, matches)
	if err != nil {
		return nil, err
	}

	completed := current >= target
	if completed && c.Status == domain.ChallengeStatusActive {
		done, err := e.store.CompleteWeeklyChallenge(ctx, c.ID, now.Unix(), current)
		if err != nil {
			return nil, err
		}
		if done {
			e.logger.Info("weekly challenge completed",
				"week_start", c.WeekStart, "metric", c.Metric, "achieved", current)
		}
	}

	return &domain.WeeklyProgress{
		Current:       current,
		Target:        target,
		Completed:     completed,
		GamesPlayed:   len(matches),
		DaysRemaining: daysRemaining,
	}, nil
}

// History returns the recorded weekly outcomes, newest first. A zero limit
// returns everything.
func (e *WeeklyEngine) History(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	period := domain.PeriodTypeWeekly
	return e.store.ListHistory(ctx, &period, limit)
}

// progressWindowStart anchors evaluation at the acceptance time, falling
// back to the start of the week for rows without a timestamp.
func (e *WeeklyEngine) progressWindowStart(c *domain.WeeklyChallenge) (int64, error) {
	if c.AcceptedAt != nil {
		return *c.AcceptedAt, nil
	}
	start, err := common.ParseDate(c.WeekStart)
	if err != nil {
		return 0, err
	}
	return start.Unix(), nil
}

func (e *WeeklyEngine) measure(ctx context.Context, c *domain.WeeklyChallenge, matches []*domain.Match) (current, target float64, err error) {
	target = c.TargetValue

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

	case domain.ChallengeMetricPositiveKDAGames:
		n := 0
		for _, m := range matches {
			if m.HasPositiveKDA() {
				n++
			}
		}
		current = float64(n)

	case domain.ChallengeMetricKillsTotal:
		total := 0
		for _, m := range matches {
			total += m.Kills
		}
		current = float64(total)

	case domain.ChallengeMetricAvgGPM:
		// Below the game quota the running average is provisional; at or
		// past it only the first quota games count. Matches arrive newest
		// first, so the earliest-played games sit at the tail.
		quota := defaultAvgGPMGames
		if c.TargetGames != nil {
			quota = *c.TargetGames
		}
		counted := matches
		if len(counted) > quota {
			counted = counted[len(counted)-quota:]
		}
		if len(counted) > 0 {
			total := 0
			for _, m := range counted {
				total += m.GPM
			}
			current = float64(total) / float64(len(counted))
		}

	case domain.ChallengeMetricHeroDamageTotal:
		total := 0
		for _, m := range matches {
			total += m.HeroDamage
		}
		current = float64(total)

	case domain.ChallengeMetricLowDeathsGames:
		// TargetValue is the per-game death threshold; the goal is
		// TargetGames qualifying games.
		quota := defaultLowDeathGames
		if c.TargetGames != nil {
			quota = *c.TargetGames
		}
		threshold := int(c.TargetValue)
		n := 0
		for _, m := range matches {
			if m.Deaths <= threshold {
				n++
			}
		}
		current = float64(n)
		target = float64(quota)

	case domain.ChallengeMetricCSAt10Avg:
		// Every parsed game since acceptance contributes; there is no
		// game cap, so late games keep moving the average.
		var samples []float64
		for _, m := range matches {
			if m.ParseState != domain.ParseStateParsed {
				continue
			}
			sample, err := e.store.CSAtMinute(ctx, m.ID, 10)
			if err != nil {
				return 0, 0, err
			}
			if sample != nil {
				samples = append(samples, float64(sample.LastHits))
			}
		}
		if len(samples) > 0 {
			total := 0.0
			for _, s := range samples {
				total += s
			}
			current = total / float64(len(samples))
		}

	default:
		current = 0
	}

	return current, target, nil
}
