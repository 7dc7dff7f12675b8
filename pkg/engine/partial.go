package engine

import (
	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// BuildPartial constructs the reduced problem instance handed to the
// solver. Everything is deep-copied; the authoritative schedule is never
// visible to the solver.
//
// Out-of-scope shifts, and locked shifts when preserveLocked is set,
// carry their current assignment over pinned, so the solver treats them
// as immovable. In-scope unlocked shifts keep their assignment as a
// starting point but stay movable. When the scope restricts the roster,
// the copy's roster shrinks to that set and shifts held by excluded
// employees are forcibly unassigned so the solver can refill them.
func BuildPartial(base *models.Schedule, scope *models.OptimizationScope, preserveLocked bool) *models.Schedule {
	inScope := FilterByScope(base.Shifts, scope)
	partial := base.Clone()

	restricted := scope != nil && len(scope.EmployeeIDs) > 0
	if restricted {
		var roster []*models.Employee
		for _, e := range partial.Employees {
			if scope.HasEmployee(e.ID) {
				roster = append(roster, e)
			}
		}
		partial.Employees = roster
	}

	for _, sh := range partial.Shifts {
		if !inScope[sh.ID] || (preserveLocked && sh.Locked) {
			sh.Pinned = true
			continue
		}
		sh.Pinned = false
		if restricted && sh.Employee != nil && !scope.HasEmployee(sh.Employee.ID) {
			sh.Employee = nil
		}
	}
	return partial
}
