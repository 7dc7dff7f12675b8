package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

func buildSchedule() *models.Schedule {
	amy := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	bob := &models.Employee{ID: "e2", Name: "Bob", Skills: []string{"nurse"}}
	s := &models.Schedule{Employees: []*models.Employee{amy, bob}}
	s.Shifts = []*models.Shift{
		{ID: "morning_1", Start: monday, End: monday.Add(8 * time.Hour), RequiredSkills: []string{"nurse"}, Employee: amy},
		{ID: "night_1", Start: monday.Add(14 * time.Hour), End: monday.Add(22 * time.Hour), RequiredSkills: []string{"nurse"}, Employee: bob},
		{ID: "morning_2", Start: monday.AddDate(0, 0, 3), End: monday.AddDate(0, 0, 3).Add(8 * time.Hour), RequiredSkills: []string{"nurse"}},
	}
	return s
}

func TestBuildPartialIsACopy(t *testing.T) {
	base := buildSchedule()
	partial := BuildPartial(base, nil, true)

	partial.Shifts[0].Employee = nil
	assert.NotNil(t, base.Shifts[0].Employee, "builder must not alias the base schedule")
}

func TestBuildPartialPinsOutOfScope(t *testing.T) {
	base := buildSchedule()
	scope := &models.OptimizationScope{ShiftTypes: []string{"night"}}
	partial := BuildPartial(base, scope, true)

	assert.True(t, partial.ShiftByID("morning_1").Pinned)
	assert.False(t, partial.ShiftByID("night_1").Pinned)
	assert.True(t, partial.ShiftByID("morning_2").Pinned)
	// Out-of-scope assignments carry over unchanged.
	assert.Equal(t, "e1", partial.ShiftByID("morning_1").Employee.ID)
}

func TestBuildPartialPreservesLocked(t *testing.T) {
	base := buildSchedule()
	base.ShiftByID("night_1").Lock("ops", "confirmed")

	partial := BuildPartial(base, nil, true)
	assert.True(t, partial.ShiftByID("night_1").Pinned)

	unguarded := BuildPartial(base, nil, false)
	assert.False(t, unguarded.ShiftByID("night_1").Pinned)
}

func TestBuildPartialRestrictsRoster(t *testing.T) {
	base := buildSchedule()
	scope := &models.OptimizationScope{EmployeeIDs: []string{"e1"}}
	partial := BuildPartial(base, scope, true)

	require.Len(t, partial.Employees, 1)
	assert.Equal(t, "e1", partial.Employees[0].ID)

	// night_1 was held by excluded e2, so it is out of scope and pinned
	// with its assignment carried over; in-scope shifts held by excluded
	// employees would instead be forcibly unassigned.
	assert.True(t, partial.ShiftByID("night_1").Pinned)
	assert.False(t, partial.ShiftByID("morning_2").Pinned)
	assert.Nil(t, partial.ShiftByID("morning_2").Employee)
}
