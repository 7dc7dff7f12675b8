package solver

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/validator"
)

// Greedy is a multi-pass randomized greedy solver. Each pass clears the
// movable shifts, fills them in shuffled priority order with the
// hard-feasible candidate carrying the fewest weekly minutes, and the
// best-scoring pass wins. Pinned and locked shifts are never moved.
type Greedy struct {
	TimeBudget time.Duration
	MaxPasses  int
	Seed       int64
	Logger     *zap.SugaredLogger
}

// NewGreedy returns a solver with the environment-configured time budget.
func NewGreedy(logger *zap.SugaredLogger) *Greedy {
	return &Greedy{
		TimeBudget: TimeBudgetFromEnv(),
		MaxPasses:  200,
		Logger:     logger,
	}
}

// Solve returns a re-optimized copy of the schedule. The input is never
// mutated. Best-effort: the result may still carry hard violations.
func (g *Greedy) Solve(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	budget := g.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	passes := g.MaxPasses
	if passes <= 0 {
		passes = 200
	}
	seed := g.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	best := schedule.Clone()
	best.Score = ScoreSchedule(best)
	deadline := time.Now().Add(budget)

	for pass := 0; pass < passes && time.Now().Before(deadline); pass++ {
		select {
		case <-ctx.Done():
			return best, nil
		default:
		}

		candidate := schedule.Clone()
		g.assignPass(candidate, rng, pass > 0)
		candidate.Score = ScoreSchedule(candidate)
		if candidate.Score.Better(best.Score) {
			best = candidate
		}
		if best.Score.Feasible() && best.UnassignedCount() == 0 {
			break
		}
	}

	if g.Logger != nil {
		g.Logger.Infow("solve finished",
			"hard", best.Score.Hard,
			"medium", best.Score.Medium,
			"soft", best.Score.Soft,
			"unassigned", best.UnassignedCount())
	}
	return best, nil
}

// assignPass fills movable shifts greedily. The first pass runs in
// deterministic priority order; later passes shuffle to escape local
// minima.
func (g *Greedy) assignPass(s *models.Schedule, rng *rand.Rand, shuffle bool) {
	var movable []*models.Shift
	for _, sh := range s.Shifts {
		if sh.Pinned || sh.Locked {
			continue
		}
		sh.Employee = nil
		movable = append(movable, sh)
	}

	sort.Slice(movable, func(i, j int) bool {
		if movable[i].Priority != movable[j].Priority {
			return movable[i].Priority < movable[j].Priority
		}
		return movable[i].ID < movable[j].ID
	})
	if shuffle {
		rng.Shuffle(len(movable), func(i, j int) {
			movable[i], movable[j] = movable[j], movable[i]
		})
	}

	for _, sh := range movable {
		var best *models.Employee
		bestMinutes := -1
		for _, emp := range s.Employees {
			violations, _ := validator.ValidateAssignment(s, sh, emp)
			if validator.HasHard(violations) {
				continue
			}
			minutes := validator.WeeklyMinutes(s, emp.ID, sh.Start)
			if best == nil || minutes < bestMinutes {
				best = emp
				bestMinutes = minutes
			}
		}
		if best != nil {
			sh.Employee = best
		}
	}
}
