package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func buildShifts() []*models.Shift {
	amy := &models.Employee{ID: "e1", Name: "Amy"}
	bob := &models.Employee{ID: "e2", Name: "Bob"}
	return []*models.Shift{
		{ID: "morning_1", Start: monday, End: monday.Add(8 * time.Hour), Location: "clinic", Employee: amy},
		{ID: "night_1", Start: monday.Add(14 * time.Hour), End: monday.Add(22 * time.Hour), Location: "ward", Employee: bob},
		{ID: "morning_2", Start: monday.AddDate(0, 0, 3), End: monday.AddDate(0, 0, 3).Add(8 * time.Hour), Location: "clinic"},
	}
}

func TestFilterByScopeNilScopeIncludesEverything(t *testing.T) {
	shifts := buildShifts()
	inScope := FilterByScope(shifts, nil)
	assert.Len(t, inScope, 3)
}

func TestFilterByScopeEmptyScopeIncludesEverything(t *testing.T) {
	shifts := buildShifts()
	inScope := FilterByScope(shifts, &models.OptimizationScope{})
	assert.Len(t, inScope, 3)
}

func TestFilterByScopeDateRange(t *testing.T) {
	shifts := buildShifts()
	from := monday
	to := monday.AddDate(0, 0, 1)
	inScope := FilterByScope(shifts, &models.OptimizationScope{StartDate: &from, EndDate: &to})

	assert.True(t, inScope["morning_1"])
	assert.True(t, inScope["night_1"])
	assert.False(t, inScope["morning_2"])
}

func TestFilterByScopeDateRangeIsDateInclusive(t *testing.T) {
	shifts := buildShifts()
	// End date equals the shift's calendar day; time of day must not matter.
	end := monday.AddDate(0, 0, 3)
	inScope := FilterByScope(shifts, &models.OptimizationScope{EndDate: &end})
	assert.True(t, inScope["morning_2"])
}

func TestFilterByScopeLocation(t *testing.T) {
	shifts := buildShifts()
	inScope := FilterByScope(shifts, &models.OptimizationScope{Locations: []string{"clinic"}})

	assert.True(t, inScope["morning_1"])
	assert.False(t, inScope["night_1"])
	assert.True(t, inScope["morning_2"])
}

func TestFilterByScopeShiftType(t *testing.T) {
	shifts := buildShifts()
	inScope := FilterByScope(shifts, &models.OptimizationScope{ShiftTypes: []string{"night"}})

	assert.Equal(t, map[string]bool{"night_1": true}, inScope)
}

func TestFilterByScopeEmployees(t *testing.T) {
	shifts := buildShifts()
	inScope := FilterByScope(shifts, &models.OptimizationScope{EmployeeIDs: []string{"e1"}})

	assert.True(t, inScope["morning_1"], "occupant in requested set")
	assert.False(t, inScope["night_1"], "occupant outside requested set")
	assert.True(t, inScope["morning_2"], "unassigned shifts stay eligible")
}

func TestFilterByScopeConjunction(t *testing.T) {
	shifts := buildShifts()
	from := monday
	to := monday
	inScope := FilterByScope(shifts, &models.OptimizationScope{
		StartDate: &from,
		EndDate:   &to,
		Locations: []string{"clinic"},
	})

	assert.Equal(t, map[string]bool{"morning_1": true}, inScope)
}
