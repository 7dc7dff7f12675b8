package engine

import (
	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// MergeSolution folds a partial solver result back into a copy of the
// base schedule. Only in-scope, unlocked shifts take the solution's
// occupant; everything else keeps its pre-solve assignment untouched.
// Occupants are resolved against the base roster by ID, so the merged
// schedule never references the partial instance's copies.
func MergeSolution(base, partial *models.Schedule, scope *models.OptimizationScope) *models.Schedule {
	inScope := FilterByScope(base.Shifts, scope)

	solved := make(map[string]string, len(partial.Shifts))
	for _, sh := range partial.Shifts {
		if sh.Employee != nil {
			solved[sh.ID] = sh.Employee.ID
		} else {
			solved[sh.ID] = ""
		}
	}

	merged := base.Clone()
	for _, sh := range merged.Shifts {
		if !inScope[sh.ID] || sh.Locked {
			continue
		}
		empID, ok := solved[sh.ID]
		if !ok {
			continue
		}
		if empID == "" {
			sh.Employee = nil
		} else {
			sh.Employee = merged.EmployeeByID(empID)
		}
	}
	ClearPins(merged)
	return merged
}

// CountModifiedShifts diffs occupant identity per shift ID between two
// schedule states. Shifts present on only one side are ignored.
func CountModifiedShifts(before, after *models.Schedule) int {
	prev := before.Assignments()
	n := 0
	for id, cur := range after.Assignments() {
		if was, ok := prev[id]; ok && was != cur {
			n++
		}
	}
	return n
}
