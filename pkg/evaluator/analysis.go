package evaluator

import (
	"context"
	"sort"

	"github.com/dotakeeper/keeper-common/pkg/domain"
)

// LastHitsPoint is one parsed match's creep score at the analyzed minute.
type LastHitsPoint struct {
	MatchID   int64 `json:"match_id"`
	HeroID    int   `json:"hero_id"`
	StartTime int64 `json:"start_time"`
	GameMode  int   `json:"game_mode"`
	LastHits  int   `json:"last_hits"`
}

// PeriodStats summarizes one window of analyzed matches. Points are ordered
// oldest to newest for charting.
type PeriodStats struct {
	Average float64         `json:"average"`
	Min     int             `json:"min"`
	Max     int             `json:"max"`
	Count   int             `json:"count"`
	Points  []LastHitsPoint `json:"data_points"`
}

// HeroLastHitsStats compares a hero's current window against its previous
// one. TrendPct is positive when improving.
type HeroLastHitsStats struct {
	HeroID   int     `json:"hero_id"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
	TrendPct float64 `json:"trend_percentage"`
}

// LastHitsAnalysis compares the current window of games against the
// previous one, with an optional per-hero breakdown.
type LastHitsAnalysis struct {
	Current  PeriodStats         `json:"current_period"`
	Previous *PeriodStats        `json:"previous_period,omitempty"`
	PerHero  []HeroLastHitsStats `json:"per_hero_stats"`
}

// AnalysisFilter restricts which matches contribute to the analysis.
type AnalysisFilter struct {
	HeroID   *int
	GameMode *int
}

// AnalyzeLastHits reads the exact creep score at the given minute across
// all parsed matches, newest first, and windows them into current and
// previous periods of windowSize games. Matches without a sample at that
// minute are excluded rather than estimated.
func (e *Evaluator) AnalyzeLastHits(ctx context.Context, minute, windowSize int, filter AnalysisFilter) (*LastHitsAnalysis, error) {
	matches, err := e.store.ListMatches(ctx, 0)
	if err != nil {
		return nil, err
	}

	var points []LastHitsPoint
	for _, match := range matches {
		if match.ParseState != domain.ParseStateParsed {
			continue
		}
		if filter.HeroID != nil && match.HeroID != *filter.HeroID {
			continue
		}
		if filter.GameMode != nil && match.GameMode != *filter.GameMode {
			continue
		}

		sample, err := e.store.CSAtMinute(ctx, match.ID, minute)
		if err != nil {
			return nil, err
		}
		if sample == nil {
			continue
		}
		points = append(points, LastHitsPoint{
			MatchID:   match.ID,
			HeroID:    match.HeroID,
			StartTime: match.StartTime,
			GameMode:  match.GameMode,
			LastHits:  sample.LastHits,
		})
	}

	analysis := &LastHitsAnalysis{
		Current: periodStats(window(points, 0, windowSize)),
	}
	if len(points) >= windowSize*2 {
		prev := periodStats(window(points, windowSize, windowSize))
		analysis.Previous = &prev
	}
	if filter.HeroID == nil && len(points) > 0 {
		analysis.PerHero = perHeroStats(points, windowSize)
	}
	return analysis, nil
}

func window(points []LastHitsPoint, skip, size int) []LastHitsPoint {
	if skip >= len(points) {
		return nil
	}
	rest := points[skip:]
	if len(rest) > size {
		rest = rest[:size]
	}
	return rest
}

func periodStats(points []LastHitsPoint) PeriodStats {
	if len(points) == 0 {
		return PeriodStats{Points: []LastHitsPoint{}}
	}

	stats := PeriodStats{
		Min:   points[0].LastHits,
		Max:   points[0].LastHits,
		Count: len(points),
	}
	sum := 0
	for _, p := range points {
		sum += p.LastHits
		if p.LastHits < stats.Min {
			stats.Min = p.LastHits
		}
		if p.LastHits > stats.Max {
			stats.Max = p.LastHits
		}
	}
	stats.Average = float64(sum) / float64(len(points))

	// Oldest to newest for left-to-right charts.
	stats.Points = make([]LastHitsPoint, len(points))
	for i, p := range points {
		stats.Points[len(points)-1-i] = p
	}
	return stats
}

func perHeroStats(all []LastHitsPoint, windowSize int) []HeroLastHitsStats {
	byHero := make(map[int][]LastHitsPoint)
	for _, p := range all {
		byHero[p.HeroID] = append(byHero[p.HeroID], p)
	}

	stats := make([]HeroLastHitsStats, 0, len(byHero))
	for heroID, points := range byHero {
		// Each hero gets its own independent window, newest first.
		current := window(points, 0, windowSize)
		if len(current) == 0 {
			continue
		}

		sum := 0
		for _, p := range current {
			sum += p.LastHits
		}
		avg := float64(sum) / float64(len(current))

		trend := 0.0
		previous := window(points, windowSize, windowSize)
		if len(previous) > 0 {
			prevSum := 0
			for _, p := range previous {
				prevSum += p.LastHits
			}
			prevAvg := float64(prevSum) / float64(len(previous))
			if prevAvg != 0 {
				trend = (avg - prevAvg) / prevAvg * 100.0
			}
		}

		stats = append(stats, HeroLastHitsStats{
			HeroID:   heroID,
			Average:  avg,
			Count:    len(current),
			TrendPct: trend,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Average != stats[j].Average {
			return stats[i].Average > stats[j].Average
		}
		return stats[i].HeroID < stats[j].HeroID
	})
	return stats
}
