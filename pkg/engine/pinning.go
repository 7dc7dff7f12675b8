// Package engine implements the continuous-planning layer: pinning of
// still-valid assignments before a re-solve, scoping of partial solves,
// construction of reduced problem instances, and merging of solver
// results back into the authoritative schedule.
package engine

import (
	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/validator"
)

// PinGuard tracks exactly which shifts a pinning pass pinned so Release
// can restore them even when the solve fails. Callers must defer Release.
type PinGuard struct {
	pinned []*models.Shift
}

// PinValidAssignments pins every assigned, unlocked, unpinned shift whose
// current occupant still passes the hard rules. Assignments already in
// hard violation stay unpinned so the solver is free to repair them.
// Locked shifts are never touched; they are excluded from solving through
// scoping, not pinning.
func PinValidAssignments(schedule *models.Schedule) *PinGuard {
	g := &PinGuard{}
	for _, sh := range schedule.Shifts {
		if sh.Employee == nil || sh.Locked || sh.Pinned {
			continue
		}
		violations, _ := validator.ValidateAssignment(schedule, sh, sh.Employee)
		if validator.HasHard(violations) {
			continue
		}
		sh.Pinned = true
		g.pinned = append(g.pinned, sh)
	}
	return g
}

// Unpin frees a single shift that this guard pinned, exposing it to the
// solver again. No-op for shifts the guard does not own.
func (g *PinGuard) Unpin(shift *models.Shift) {
	for i, sh := range g.pinned {
		if sh == shift {
			sh.Pinned = false
			g.pinned = append(g.pinned[:i], g.pinned[i+1:]...)
			return
		}
	}
}

// Pin pins a shift under this guard so a later Release resets it. Used
// to protect a manual edit from the re-solve that follows it. No-op when
// the shift is already pinned.
func (g *PinGuard) Pin(shift *models.Shift) {
	if shift.Pinned {
		return
	}
	shift.Pinned = true
	g.pinned = append(g.pinned, shift)
}

// Count returns how many shifts the guard currently holds pinned.
func (g *PinGuard) Count() int { return len(g.pinned) }

// Release unpins everything the guard pinned. Safe to call more than
// once; pinning is solve-scoped and must never persist.
func (g *PinGuard) Release() {
	for _, sh := range g.pinned {
		sh.Pinned = false
	}
	g.pinned = nil
}

// ClearPins force-resets the pinned flag on every shift. Used after a
// merge so no transient solver hint survives into the committed schedule.
func ClearPins(schedule *models.Schedule) {
	for _, sh := range schedule.Shifts {
		sh.Pinned = false
	}
}
