// Package validator checks proposed shift assignments against the
// scheduling rules. Every rule is a pure function over the schedule; the
// solver and the manual-override paths share the same rule list.
package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// Violation kinds mirror the score tiers.
const (
	KindHard   = "hard"
	KindMedium = "medium"
	KindSoft   = "soft"
)

// Violation severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Rule names.
const (
	RuleShiftLocked    = "shift_locked"
	RuleSkillMatch     = "skill_requirement"
	RuleOverlap        = "shift_overlap"
	RuleAvailability   = "availability"
	RuleMaxWeeklyHours = "max_weekly_hours"
	RuleMinWeeklyHours = "min_weekly_hours"
	RuleMinRestTime    = "min_rest_time"
)

// Weekly-hour thresholds in minutes.
const (
	MaxWeeklyMinutes      = 45 * 60
	MinFullTimeMinutes    = 32 * 60
	OvertimeAdviceMinutes = 40 * 60
	MinRestGap            = 8 * time.Hour
)

// Violation is one broken rule for a candidate assignment.
type Violation struct {
	Kind        string `json:"kind"`
	Rule        string `json:"rule_name"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// HasHard reports whether any violation in the list is hard.
func HasHard(vs []Violation) bool {
	for _, v := range vs {
		if v.Kind == KindHard {
			return true
		}
	}
	return false
}

// AsWarnings renders violations as plain warning strings, used when a
// forced override proceeds past blocking violations.
func AsWarnings(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, fmt.Sprintf("%s: %s", v.Rule, v.Description))
	}
	return out
}

// ValidateAssignment evaluates assigning candidate to shift within the
// schedule. A nil candidate means unassignment, which only the lock rule
// can reject. All rules run independently; only a locked shift
// short-circuits.
func ValidateAssignment(schedule *models.Schedule, shift *models.Shift, candidate *models.Employee) (violations []Violation, warnings []string) {
	if shift.Locked {
		return []Violation{{
			Kind:        KindHard,
			Rule:        RuleShiftLocked,
			Description: fmt.Sprintf("shift %s is locked by %s (%s)", shift.ID, shift.LockedBy, shift.LockReason),
			Severity:    SeverityError,
		}}, nil
	}
	return validateRules(schedule, shift, candidate)
}

// ValidateOccupant judges a shift's current occupant against every rule
// except the lock rule. Scoring an existing schedule must rate a locked
// shift's occupant on its merits, not on the lock.
func ValidateOccupant(schedule *models.Schedule, shift *models.Shift) (violations []Violation, warnings []string) {
	return validateRules(schedule, shift, shift.Employee)
}

func validateRules(schedule *models.Schedule, shift *models.Shift, candidate *models.Employee) (violations []Violation, warnings []string) {
	if candidate == nil {
		return nil, nil
	}

	if missing := candidate.MissingSkills(schedulableSkills(shift.RequiredSkills)); len(missing) > 0 {
		violations = append(violations, Violation{
			Kind:        KindHard,
			Rule:        RuleSkillMatch,
			Description: fmt.Sprintf("%s lacks required skills: %s", candidate.Name, strings.Join(missing, ", ")),
			Severity:    SeverityError,
		})
	}

	others := otherAssignments(schedule, shift, candidate)
	for _, o := range others {
		if o.Overlaps(shift) {
			violations = append(violations, Violation{
				Kind:        KindHard,
				Rule:        RuleOverlap,
				Description: fmt.Sprintf("overlaps shift %s (%s - %s)", o.ID, o.Start.Format(time.RFC3339), o.End.Format(time.RFC3339)),
				Severity:    SeverityError,
			})
		}
	}

	if candidate.IsUnavailableOn(shift.Start) {
		violations = append(violations, Violation{
			Kind:        KindHard,
			Rule:        RuleAvailability,
			Description: fmt.Sprintf("%s is unavailable on %s", candidate.Name, shift.Start.Format("2006-01-02")),
			Severity:    SeverityError,
		})
	}

	total := weeklyMinutesWith(others, shift)
	if total > MaxWeeklyMinutes {
		violations = append(violations, Violation{
			Kind:        KindHard,
			Rule:        RuleMaxWeeklyHours,
			Description: fmt.Sprintf("%s would work %.1fh in week %s (max %dh)", candidate.Name, float64(total)/60, WeekKey(shift.Start), MaxWeeklyMinutes/60),
			Severity:    SeverityError,
		})
	}
	if candidate.IsFullTime() && total < MinFullTimeMinutes {
		violations = append(violations, Violation{
			Kind:        KindMedium,
			Rule:        RuleMinWeeklyHours,
			Description: fmt.Sprintf("%s would work only %.1fh in week %s (full-time minimum %dh)", candidate.Name, float64(total)/60, WeekKey(shift.Start), MinFullTimeMinutes/60),
			Severity:    SeverityWarning,
		})
	}
	if total > OvertimeAdviceMinutes {
		warnings = append(warnings, fmt.Sprintf("overtime: %s would exceed %dh in week %s", candidate.Name, OvertimeAdviceMinutes/60, WeekKey(shift.Start)))
	}

	for _, o := range others {
		if o.Overlaps(shift) {
			continue // already a hard overlap
		}
		gap := restGap(o, shift)
		if gap >= 0 && gap < MinRestGap {
			violations = append(violations, Violation{
				Kind:        KindMedium,
				Rule:        RuleMinRestTime,
				Description: fmt.Sprintf("only %.1fh rest between shifts %s and %s", gap.Hours(), o.ID, shift.ID),
				Severity:    SeverityWarning,
			})
		}
	}

	return violations, warnings
}

// otherAssignments returns the candidate's assigned shifts excluding the
// shift under evaluation, so a reassignment is judged without the
// candidate's own current tenure of that shift.
func otherAssignments(schedule *models.Schedule, shift *models.Shift, candidate *models.Employee) []*models.Shift {
	var out []*models.Shift
	for _, sh := range schedule.Shifts {
		if sh.ID == shift.ID {
			continue
		}
		if sh.AssignedTo(candidate.ID) {
			out = append(out, sh)
		}
	}
	return out
}

// schedulableSkills drops employment-type attribute tags from a
// requirement list; those are never matched as skills.
func schedulableSkills(required []string) []string {
	out := make([]string, 0, len(required))
	for _, r := range required {
		if strings.HasPrefix(r, models.EmploymentTypePrefix) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// restGap returns the idle time between two non-overlapping shifts, or a
// negative duration when they touch in the wrong order.
func restGap(a, b *models.Shift) time.Duration {
	if a.End.After(b.Start) {
		return a.Start.Sub(b.End)
	}
	return b.Start.Sub(a.End)
}
