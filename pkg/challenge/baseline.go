// Package challenge generates and evaluates the procedurally generated
// daily and weekly challenges. Targets are seeded from the player's own
// recent performance so tiers stay meaningful as skill changes.
package challenge

import (
	"context"
	"math/rand"
	"time"

	"github.com/dotakeeper/keeper-common/pkg/domain"
	"github.com/dotakeeper/keeper-common/pkg/repository"
)

// Default baselines used until enough matches are stored to compute real
// averages.
const (
	defaultAvgKills      = 10.0
	defaultAvgGPM        = 400.0
	defaultAvgDeaths     = 5.0
	defaultAvgHeroDamage = 15000.0
)

// baselineMatchWindow and csBaselineWindow size the rolling averages that
// seed challenge targets.
const (
	baselineMatchWindow = 20
	csBaselineWindow    = 10
)

// baselines holds the rolling averages challenge targets derive from.
// csAt10 stays nil when no parsed match has a minute-10 sample; candidates
// needing it are simply not offered.
type baselines struct {
	kills      float64
	gpm        float64
	deaths     float64
	heroDamage float64
	csAt10     *float64
}

func loadBaselines(ctx context.Context, store repository.Store) (baselines, error) {
	b := baselines{
		kills:      defaultAvgKills,
		gpm:        defaultAvgGPM,
		deaths:     defaultAvgDeaths,
		heroDamage: defaultAvgHeroDamage,
	}

	avg, err := store.RecentAverages(ctx, baselineMatchWindow)
	if err != nil {
		return b, err
	}
	if avg.Games > 0 {
		b.kills = avg.Kills
		b.gpm = avg.GPM
		b.deaths = avg.Deaths
		b.heroDamage = avg.HeroDamage
	}

	cs, err := store.AvgCSAt10(ctx, csBaselineWindow)
	if err != nil {
		return b, err
	}
	b.csAt10 = cs
	return b, nil
}

// candidate is one possible challenge before selection.
type candidate struct {
	metric      domain.ChallengeMetric
	difficulty  domain.Difficulty
	description string
	target      float64
	targetGames *int
	heroID      *int
}

// randFactory builds the random source for one generation call. Production
// reseeds from the wall clock per call; tests inject a fixed seed.
type randFactory func() *rand.Rand

func defaultRandFactory() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// rollDifficulty picks a tier with fixed 60/30/10 probabilities.
func rollDifficulty(rng *rand.Rand) domain.Difficulty {
	roll := rng.Float64()
	switch {
	case roll < 0.60:
		return domain.DifficultyEasy
	case roll < 0.90:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

// flooredTarget derives an integer target from a baseline average, never
// going below the floor.
func flooredTarget(avg float64, bump, floor int) float64 {
	target := int(avg) + bump
	if target < floor {
		target = floor
	}
	return float64(target)
}

func intPtr(v int) *int {
	return &v
}
