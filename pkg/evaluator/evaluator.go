// Package evaluator decides whether stored goals were met by stored
// matches. Applicability and metric semantics differ per goal metric, so
// the single-match Evaluate carries all the rules and every aggregate view
// is built on top of it.
package evaluator

import (
	"context"
	"log/slog"
	"time"

	"github.com/dotakeeper/keeper-common/pkg/common"
	"github.com/dotakeeper/keeper-common/pkg/domain"
	"github.com/dotakeeper/keeper-common/pkg/repository"
)

// Evaluator computes goal achievement from persisted match data. It holds
// no mutable state; every call re-reads the store.
type Evaluator struct {
	store  repository.Store
	clock  common.Clock
	logger *slog.Logger
}

func New(store repository.Store, clock common.Clock, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &Evaluator{store: store, clock: clock, logger: logger}
}

// Evaluate applies a goal to one match. It returns (nil, nil) when the goal
// does not apply to the match or when the data needed by the metric is
// missing. A nil result is distinct from "evaluated and not achieved".
func (e *Evaluator) Evaluate(ctx context.Context, goal *domain.Goal, match *domain.Match) (*domain.GoalEvaluation, error) {
	// Unparsed matches may still gain per-minute data, so they are skipped
	// rather than scored on incomplete numbers. Failed and parsing matches
	// keep their end-of-game totals; metrics that need per-minute data
	// degrade to not-evaluable on their own.
	if match.ParseState == domain.ParseStateUnparsed {
		return nil, nil
	}

	// A hero scope takes precedence over an exact hero id.
	if goal.HeroScope != "" {
		if !goal.HeroScope.Matches(match.Role) {
			return nil, nil
		}
	} else if goal.HeroID != nil && *goal.HeroID != match.HeroID {
		return nil, nil
	}

	if !goal.Mode.Matches(match.GameMode) {
		return nil, nil
	}

	actual, ok, err := e.actualValue(ctx, goal, match)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	achieved := actual >= goal.TargetValue
	if goal.Metric == domain.MetricItemTiming {
		// Earlier purchase is better.
		achieved = actual <= goal.TargetValue
	}

	return &domain.GoalEvaluation{Achieved: achieved, ActualValue: actual}, nil
}

func (e *Evaluator) actualValue(ctx context.Context, goal *domain.Goal, match *domain.Match) (float64, bool, error) {
	switch goal.Metric {
	case domain.MetricKills:
		duration := match.DurationMinutes()
		if duration <= goal.TargetMinutes || duration == 0 {
			return float64(match.Kills), true, nil
		}
		// Kill pace is assumed uniform. Truncation matches the integer
		// arithmetic users see in the goal description.
		scaled := float64(match.Kills) * float64(goal.TargetMinutes) / float64(duration)
		return float64(int(scaled)), true, nil

	case domain.MetricLastHits:
		// Exact per-minute data only. CS accrues faster early game, so a
		// linear estimate from end-of-game totals is materially wrong.
		sample, err := e.store.CSAtMinute(ctx, match.ID, goal.TargetMinutes)
		if err != nil || sample == nil {
			return 0, false, err
		}
		return float64(sample.LastHits), true, nil

	case domain.MetricDenies:
		sample, err := e.store.CSAtMinute(ctx, match.ID, goal.TargetMinutes)
		if err != nil || sample == nil {
			return 0, false, err
		}
		return float64(sample.Denies), true, nil

	case domain.MetricPartnerNetworth:
		if match.PartnerSlot == nil {
			return 0, false, nil
		}
		nw, err := e.store.NetworthAtMinute(ctx, match.ID, *match.PartnerSlot, goal.TargetMinutes)
		if err != nil || nw == nil {
			return 0, false, err
		}
		return float64(*nw), true, nil

	case domain.MetricItemTiming:
		if goal.ItemID == nil {
			return 0, false, nil
		}
		seconds, err := e.store.ItemTiming(ctx, match.ID, *goal.ItemID)
		if err != nil || seconds == nil {
			// Never purchased: excluded from aggregates, not failed.
			return 0, false, err
		}
		return float64(*seconds), true, nil

	default:
		// Networth and Level need per-minute data for the tracked player
		// that the current model does not store.
		return 0, false, nil
	}
}

// MatchSummary pairs a match with its goal achievement counts.
type MatchSummary struct {
	Match           *domain.Match `json:"match"`
	GoalsApplicable int           `json:"goals_applicable"`
	GoalsAchieved   int           `json:"goals_achieved"`
}

// MatchSummaries evaluates every goal against every match and reports
// per-match counts, newest match first.
func (e *Evaluator) MatchSummaries(ctx context.Context) ([]MatchSummary, error) {
	goals, err := e.store.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := e.store.ListMatches(ctx, 0)
	if err != nil {
		return nil, err
	}

	summaries := make([]MatchSummary, 0, len(matches))
	for _, match := range matches {
		summary := MatchSummary{Match: match}
		for _, goal := range goals {
			eval, err := e.Evaluate(ctx, goal, match)
			if err != nil {
				return nil, err
			}
			if eval == nil {
				continue
			}
			summary.GoalsApplicable++
			if eval.Achieved {
				summary.GoalsAchieved++
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GoalResult pairs a goal with its evaluation for one match.
type GoalResult struct {
	Goal       *domain.Goal           `json:"goal"`
	Evaluation *domain.GoalEvaluation `json:"evaluation"`
}

// EvaluateMatch runs every goal against one match, dropping goals that are
// not applicable or not evaluable.
func (e *Evaluator) EvaluateMatch(ctx context.Context, matchID int64) ([]GoalResult, error) {
	match, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}

	goals, err := e.store.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	var results []GoalResult
	for _, goal := range goals {
		eval, err := e.Evaluate(ctx, goal, match)
		if err != nil {
			return nil, err
		}
		if eval == nil {
			continue
		}
		results = append(results, GoalResult{Goal: goal, Evaluation: eval})
	}
	return results, nil
}

// MatchDataPoint is one evaluated match for histogram views of a goal.
type MatchDataPoint struct {
	MatchID   int64   `json:"match_id"`
	HeroID    int     `json:"hero_id"`
	StartTime int64   `json:"start_time"`
	Value     float64 `json:"value"`
	Achieved  bool    `json:"achieved"`
}

// GoalMatchData evaluates one goal across all matches, keeping only the
// matches where the goal was evaluable.
func (e *Evaluator) GoalMatchData(ctx context.Context, goal *domain.Goal) ([]MatchDataPoint, error) {
	matches, err := e.store.ListMatches(ctx, 0)
	if err != nil {
		return nil, err
	}

	var points []MatchDataPoint
	for _, match := range matches {
		eval, err := e.Evaluate(ctx, goal, match)
		if err != nil {
			return nil, err
		}
		if eval == nil {
			continue
		}
		points = append(points, MatchDataPoint{
			MatchID:   match.ID,
			HeroID:    match.HeroID,
			StartTime: match.StartTime,
			Value:     eval.ActualValue,
			Achieved:  eval.Achieved,
		})
	}
	return points, nil
}

// DayProgress is one calendar day's achievement counts for a goal.
type DayProgress struct {
	Date     string `json:"date"`
	Achieved int    `json:"achieved"`
	Total    int    `json:"total"`
}

// GoalDailyProgress is a goal with its day-bucketed recent history.
type GoalDailyProgress struct {
	Goal *domain.Goal  `json:"goal"`
	Days []DayProgress `json:"daily_progress"`
}

// DailyProgressCalendar buckets the last N days of matches by UTC calendar
// day (inclusive start, exclusive end) and evaluates every goal per bucket,
// oldest day first.
func (e *Evaluator) DailyProgressCalendar(ctx context.Context, days int) ([]GoalDailyProgress, error) {
	goals, err := e.store.ListGoals(ctx)
	if err != nil {
		return nil, err
	}

	todayStart := common.TruncateToDateUTC(e.clock.Now()).Unix()
	windowStart := todayStart - int64(days-1)*86400

	matches, err := e.store.ListMatchesSince(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	result := make([]GoalDailyProgress, 0, len(goals))
	for _, goal := range goals {
		progress := GoalDailyProgress{Goal: goal, Days: make([]DayProgress, 0, days)}

		for offset := days - 1; offset >= 0; offset-- {
			dayStart := todayStart - int64(offset)*86400
			dayEnd := dayStart + 86400

			day := DayProgress{Date: common.DateString(time.Unix(dayStart, 0).UTC())}
			for _, match := range matches {
				if match.StartTime < dayStart || match.StartTime >= dayEnd {
					continue
				}
				eval, err := e.Evaluate(ctx, goal, match)
				if err != nil {
					return nil, err
				}
				if eval == nil {
					continue
				}
				day.Total++
				if eval.Achieved {
					day.Achieved++
				}
			}
			progress.Days = append(progress.Days, day)
		}
		result = append(result, progress)
	}
	return result, nil
}
