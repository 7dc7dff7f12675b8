// Package solver defines the optimizer contract the planning engine
// depends on, and ships a best-effort greedy implementation of it.
package solver

import (
	"context"
	"os"
	"time"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/validator"
)

// Solver is the external-optimizer boundary. Implementations must never
// reassign a shift whose Pinned or Locked flag is set, must terminate
// within their configured time budget, and must always return a schedule
// even when hard violations remain.
type Solver interface {
	Solve(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error)
}

// DefaultTimeBudget bounds a solve when SOLVER_TIME_BUDGET is unset.
const DefaultTimeBudget = 5 * time.Second

// TimeBudgetFromEnv reads SOLVER_TIME_BUDGET as a Go duration.
func TimeBudgetFromEnv() time.Duration {
	if v := os.Getenv("SOLVER_TIME_BUDGET"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeBudget
}

// ScoreSchedule computes the lexicographic penalty triple for a schedule
// state: hard = hard violations across occupied shifts, medium = medium
// violations plus unassigned shifts, soft = overtime advisories.
func ScoreSchedule(s *models.Schedule) models.Score {
	var score models.Score
	for _, sh := range s.Shifts {
		if sh.Employee == nil {
			score.Medium++
			continue
		}
		violations, warnings := validator.ValidateOccupant(s, sh)
		for _, v := range violations {
			switch v.Kind {
			case validator.KindHard:
				score.Hard++
			case validator.KindMedium:
				score.Medium++
			default:
				score.Soft++
			}
		}
		score.Soft += len(warnings)
	}
	return score
}
