package validator

import (
	"fmt"
	"time"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// WeeklyImpact status classifications.
const (
	HoursNormal            = "normal"
	HoursOvertimeWarning   = "overtime_warning"
	HoursOvertimeViolation = "overtime_violation"
	HoursUndertime         = "undertime"
)

// WeeklyImpact projects how a candidate change moves an employee's hours
// within one ISO week.
type WeeklyImpact struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Week         string  `json:"week"`
	HoursBefore  float64 `json:"hours_before"`
	HoursAfter   float64 `json:"hours_after"`
	DeltaHours   float64 `json:"delta_hours"`
	Status       string  `json:"status"`
}

// WeekKey buckets an instant by ISO year and week, e.g. "2026-W35".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeeklyMinutes sums the employee's assigned minutes for the ISO week
// containing ref.
func WeeklyMinutes(schedule *models.Schedule, employeeID string, ref time.Time) int {
	key := WeekKey(ref)
	total := 0
	for _, sh := range schedule.ShiftsAssignedTo(employeeID) {
		if WeekKey(sh.Start) == key {
			total += sh.DurationMinutes()
		}
	}
	return total
}

// weeklyMinutesWith sums minutes over the candidate's other shifts that
// fall in the candidate shift's ISO week, plus the candidate shift itself.
func weeklyMinutesWith(others []*models.Shift, shift *models.Shift) int {
	key := WeekKey(shift.Start)
	total := shift.DurationMinutes()
	for _, o := range others {
		if WeekKey(o.Start) == key {
			total += o.DurationMinutes()
		}
	}
	return total
}

// ComputeWeeklyImpact projects the employee's week if the shift were
// added to (gaining=true) or removed from (gaining=false) their plate.
func ComputeWeeklyImpact(schedule *models.Schedule, employee *models.Employee, shift *models.Shift, gaining bool) WeeklyImpact {
	before := WeeklyMinutes(schedule, employee.ID, shift.Start)
	after := before
	if gaining {
		if !shift.AssignedTo(employee.ID) {
			after += shift.DurationMinutes()
		}
	} else {
		if shift.AssignedTo(employee.ID) {
			after -= shift.DurationMinutes()
		}
	}
	return WeeklyImpact{
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		Week:         WeekKey(shift.Start),
		HoursBefore:  float64(before) / 60,
		HoursAfter:   float64(after) / 60,
		DeltaHours:   float64(after-before) / 60,
		Status:       classifyWeeklyMinutes(after, employee.IsFullTime()),
	}
}

func classifyWeeklyMinutes(minutes int, fullTime bool) string {
	switch {
	case minutes > MaxWeeklyMinutes:
		return HoursOvertimeViolation
	case minutes > OvertimeAdviceMinutes:
		return HoursOvertimeWarning
	case fullTime && minutes < MinFullTimeMinutes:
		return HoursUndertime
	default:
		return HoursNormal
	}
}
