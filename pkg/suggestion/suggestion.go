// Package suggestion picks a weekly hero practice target: a hero the
// player already knows, with a creep-score goal a notch above their own
// recent average on that hero.
package suggestion

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/dotakeeper/keeper-common/pkg/common"
	"github.com/dotakeeper/keeper-common/pkg/config"
	"github.com/dotakeeper/keeper-common/pkg/domain"
	"github.com/dotakeeper/keeper-common/pkg/repository"
)

const (
	// A suggestion stays valid for a week before it is regenerated.
	validitySeconds = 7 * 24 * 3600

	// Heroes qualify from the last poolWindow matches with at least
	// minHeroGames games overall; the target averages the hero's last
	// sampleGames creep scores at minute ten.
	poolWindow   = 20
	minHeroGames = 5
	sampleGames  = 5
)

// SettingsSource yields the current user settings. The loader is the
// production implementation; tests supply a literal.
type SettingsSource interface {
	Load() (*config.Settings, error)
}

// Engine generates and serves the singleton hero suggestion.
type Engine struct {
	store    repository.Store
	settings SettingsSource
	clock    common.Clock
	logger   *slog.Logger
	newRand  func() *rand.Rand
}

func New(store repository.Store, settings SettingsSource, clock common.Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = common.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		settings: settings,
		clock:    clock,
		logger:   logger,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Current returns the stored suggestion if it is still inside its validity
// window, or (nil, nil).
func (e *Engine) Current(ctx context.Context) (*domain.HeroSuggestion, error) {
	s, err := e.store.GetHeroSuggestion(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	if e.clock.Now().UTC().Unix()-s.CreatedAt >= validitySeconds {
		return nil, nil
	}
	return s, nil
}

// GetOrGenerate returns the valid current suggestion or generates a fresh
// one. (nil, nil) means the player has no qualifying hero yet.
func (e *Engine) GetOrGenerate(ctx context.Context) (*domain.HeroSuggestion, error) {
	current, err := e.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, nil
	}
	return e.Regenerate(ctx)
}

// Regenerate builds a new suggestion regardless of the current one's age
// and persists it. (nil, nil) when no hero qualifies.
func (e *Engine) Regenerate(ctx context.Context) (*domain.HeroSuggestion, error) {
	pool, err := e.store.SuggestionHeroPool(ctx, poolWindow, minHeroGames)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	rng := e.newRand()
	heroID := pool[rng.Intn(len(pool))]

	samples, err := e.store.HeroCSAt10Samples(ctx, heroID, sampleGames)
	if err != nil {
		return nil, err
	}

	// Very short games can estimate to zero; those tell us nothing.
	total, n := 0.0, 0
	for _, s := range samples {
		if s > 0 {
			total += s
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	average := total / float64(n)

	settings, err := e.settings.Load()
	if err != nil {
		return nil, err
	}
	lo, hi := settings.ImprovementRange()
	spread := hi - lo
	if spread < 0.001 {
		spread = 0.001
	}
	factor := 1.0 + lo + rng.Float64()*spread

	suggestion := &domain.HeroSuggestion{
		HeroID:    heroID,
		AverageCS: average,
		TargetCS:  int(math.Round(average * factor)),
		CreatedAt: e.clock.Now().UTC().Unix(),
	}
	if err := e.store.SaveHeroSuggestion(ctx, suggestion); err != nil {
		return nil, err
	}
	e.logger.Info("generated hero suggestion",
		"hero_id", heroID, "average_cs", average, "target_cs", suggestion.TargetCS)
	return suggestion, nil
}
