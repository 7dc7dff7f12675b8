package engine

import (
	"time"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// FilterByScope computes the set of shift IDs eligible for a partial
// re-optimization. A shift qualifies only if it satisfies every provided
// predicate; absent predicates are vacuously true. Pure; never mutates.
func FilterByScope(shifts []*models.Shift, scope *models.OptimizationScope) map[string]bool {
	inScope := make(map[string]bool, len(shifts))
	for _, sh := range shifts {
		if shiftInScope(sh, scope) {
			inScope[sh.ID] = true
		}
	}
	return inScope
}

func shiftInScope(sh *models.Shift, scope *models.OptimizationScope) bool {
	if scope == nil {
		return true
	}
	if scope.StartDate != nil && sh.Start.Before(startOfDay(*scope.StartDate)) {
		return false
	}
	if scope.EndDate != nil && !sh.Start.Before(startOfNextDay(*scope.EndDate)) {
		return false
	}
	if len(scope.Locations) > 0 && !containsString(scope.Locations, sh.Location) {
		return false
	}
	if len(scope.ShiftTypes) > 0 && !containsString(scope.ShiftTypes, sh.Type()) {
		return false
	}
	if len(scope.EmployeeIDs) > 0 {
		// Unassigned shifts stay eligible so the reduced roster can fill
		// them; assigned shifts qualify only via their current occupant.
		if sh.Employee != nil && !containsString(scope.EmployeeIDs, sh.Employee.ID) {
			return false
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfNextDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1)
}
