package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// monday is a fixed ISO-week anchor (2026-03-02 is a Monday).
var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newShift(id string, start time.Time, hours int, skills ...string) *models.Shift {
	return &models.Shift{
		ID:             id,
		Start:          start,
		End:            start.Add(time.Duration(hours) * time.Hour),
		RequiredSkills: skills,
	}
}

func ruleNames(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestValidAssignmentHasNoViolations(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	s1 := newShift("day_1", monday, 8, "nurse")
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{s1}}

	violations, warnings := ValidateAssignment(schedule, s1, e1)
	assert.Empty(t, violations)
	assert.Empty(t, warnings)
}

func TestSkillRequirementViolation(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	s1 := newShift("night_1", monday, 8, "security")
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{s1}}

	violations, _ := ValidateAssignment(schedule, s1, e1)
	require.Len(t, violations, 1)
	assert.Equal(t, RuleSkillMatch, violations[0].Rule)
	assert.Equal(t, KindHard, violations[0].Kind)
	assert.Contains(t, violations[0].Description, "security")
}

func TestEmploymentTagIsNotASkill(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	s1 := newShift("day_1", monday, 8, "nurse", models.FullTimeTag)
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{s1}}

	violations, _ := ValidateAssignment(schedule, s1, e1)
	assert.NotContains(t, ruleNames(violations), RuleSkillMatch)
}

func TestOverlapViolationPerConflictingShift(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	held1 := newShift("day_1", monday, 4, "nurse")
	held1.Employee = e1
	held2 := newShift("day_2", monday.Add(2*time.Hour), 4, "nurse")
	held2.Employee = e1
	candidate := newShift("day_3", monday.Add(1*time.Hour), 4, "nurse")
	schedule := &models.Schedule{
		Employees: []*models.Employee{e1},
		Shifts:    []*models.Shift{held1, held2, candidate},
	}

	violations, _ := ValidateAssignment(schedule, candidate, e1)
	overlaps := 0
	for _, v := range violations {
		if v.Rule == RuleOverlap {
			overlaps++
			assert.Equal(t, KindHard, v.Kind)
		}
	}
	assert.Equal(t, 2, overlaps, "one violation per conflicting shift")
}

func TestReassignmentIgnoresOwnTenure(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	s1 := newShift("day_1", monday, 8, "nurse")
	s1.Employee = e1
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{s1}}

	// Re-validating the current occupant must not count the shift itself
	// as an overlapping other assignment.
	violations, _ := ValidateAssignment(schedule, s1, e1)
	assert.NotContains(t, ruleNames(violations), RuleOverlap)
}

func TestAvailabilityViolation(t *testing.T) {
	e1 := &models.Employee{
		ID: "e1", Name: "Amy", Skills: []string{"nurse"},
		UnavailableDates: []time.Time{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	s1 := newShift("day_1", monday, 8, "nurse")
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{s1}}

	violations, _ := ValidateAssignment(schedule, s1, e1)
	assert.Contains(t, ruleNames(violations), RuleAvailability)
}

// Scenario: 40h already assigned in the ISO week; an additional 8h shift
// pushes the total to 48h, past the 45h hard cap.
func TestMaxWeeklyHoursViolation(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	shifts := make([]*models.Shift, 0, 6)
	for i := 0; i < 5; i++ {
		sh := newShift("day_"+string(rune('a'+i)), monday.AddDate(0, 0, i), 8, "nurse")
		sh.Employee = e1
		shifts = append(shifts, sh)
	}
	sixth := newShift("day_extra", monday.Add(12*time.Hour), 8, "nurse")
	shifts = append(shifts, sixth)
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: shifts}

	violations, _ := ValidateAssignment(schedule, sixth, e1)
	assert.Contains(t, ruleNames(violations), RuleMaxWeeklyHours)
}

func TestOvertimeWarningBelowHardCap(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	var shifts []*models.Shift
	for i := 0; i < 5; i++ {
		sh := newShift("day_"+string(rune('a'+i)), monday.AddDate(0, 0, i), 8, "nurse")
		sh.Employee = e1
		shifts = append(shifts, sh)
	}
	extra := newShift("day_extra", monday.Add(12*time.Hour), 2, "nurse") // 42h total
	shifts = append(shifts, extra)
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: shifts}

	violations, warnings := ValidateAssignment(schedule, extra, e1)
	assert.NotContains(t, ruleNames(violations), RuleMaxWeeklyHours)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "overtime")
}

func TestFullTimeMinimumHours(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse", models.FullTimeTag}}
	s1 := newShift("day_1", monday, 8, "nurse")
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{s1}}

	violations, _ := ValidateAssignment(schedule, s1, e1)
	require.Contains(t, ruleNames(violations), RuleMinWeeklyHours)
	for _, v := range violations {
		if v.Rule == RuleMinWeeklyHours {
			assert.Equal(t, KindMedium, v.Kind)
			assert.Equal(t, SeverityWarning, v.Severity)
		}
	}
}

func TestMinRestTimeViolation(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	evening := newShift("evening_1", monday.Add(8*time.Hour), 6, "nurse") // ends 23:00
	evening.Employee = e1
	morning := newShift("morning_2", monday.AddDate(0, 0, 1).Add(-3*time.Hour), 8, "nurse") // starts 06:00 next day
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{evening, morning}}

	violations, _ := ValidateAssignment(schedule, morning, e1)
	require.Contains(t, ruleNames(violations), RuleMinRestTime)
	assert.NotContains(t, ruleNames(violations), RuleOverlap)
}

func TestLockedShiftShortCircuits(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy"} // no skills at all
	s1 := newShift("day_1", monday, 8, "nurse")
	s1.Lock("ops", "confirmed with client")
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{s1}}

	violations, _ := ValidateAssignment(schedule, s1, e1)
	require.Len(t, violations, 1, "lock must suppress all other checks")
	assert.Equal(t, RuleShiftLocked, violations[0].Rule)
}

func TestUnassignmentOnlyBlockedByLock(t *testing.T) {
	s1 := newShift("day_1", monday, 8, "nurse")
	schedule := &models.Schedule{Shifts: []*models.Shift{s1}}

	violations, _ := ValidateAssignment(schedule, s1, nil)
	assert.Empty(t, violations)

	s1.Lock("ops", "confirmed")
	violations, _ = ValidateAssignment(schedule, s1, nil)
	assert.Contains(t, ruleNames(violations), RuleShiftLocked)
}

func TestWeekKey(t *testing.T) {
	// 2026-01-01 falls in ISO week 2026-W01; 2027-01-01 in 2026-W53.
	assert.Equal(t, "2026-W01", WeekKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-W53", WeekKey(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestComputeWeeklyImpact(t *testing.T) {
	e1 := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse", models.FullTimeTag}}
	held := newShift("day_1", monday, 8, "nurse")
	held.Employee = e1
	next := newShift("day_2", monday.AddDate(0, 0, 1), 8, "nurse")
	schedule := &models.Schedule{Employees: []*models.Employee{e1}, Shifts: []*models.Shift{held, next}}

	impact := ComputeWeeklyImpact(schedule, e1, next, true)
	assert.Equal(t, 8.0, impact.HoursBefore)
	assert.Equal(t, 16.0, impact.HoursAfter)
	assert.Equal(t, 8.0, impact.DeltaHours)
	assert.Equal(t, HoursUndertime, impact.Status)
}

func TestClassifyWeeklyMinutes(t *testing.T) {
	assert.Equal(t, HoursNormal, classifyWeeklyMinutes(38*60, false))
	assert.Equal(t, HoursOvertimeWarning, classifyWeeklyMinutes(42*60, false))
	assert.Equal(t, HoursOvertimeViolation, classifyWeeklyMinutes(46*60, false))
	assert.Equal(t, HoursUndertime, classifyWeeklyMinutes(20*60, true))
	assert.Equal(t, HoursNormal, classifyWeeklyMinutes(20*60, false))
}
