package models

import (
	"strings"
	"time"
)

// EmploymentTypePrefix marks skill tags that carry employment attributes
// rather than schedulable skills, e.g. "employment-type:full-time".
const EmploymentTypePrefix = "employment-type:"

// FullTimeTag marks an employee as full-time for minimum-hours rules.
const FullTimeTag = EmploymentTypePrefix + "full-time"

// Employee represents a person available for shifts
type Employee struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Skills            []string    `json:"skills"`
	PreferredDaysOff  []string    `json:"preferred_days_off,omitempty"`
	PreferredWorkDays []string    `json:"preferred_work_days,omitempty"`
	UnavailableDates  []time.Time `json:"unavailable_dates,omitempty"`
}

// HasSkill reports whether the employee carries the given skill tag.
func (e *Employee) HasSkill(skill string) bool {
	for _, s := range e.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// MissingSkills returns the subset of required skills the employee lacks.
func (e *Employee) MissingSkills(required []string) []string {
	var missing []string
	for _, r := range required {
		if !e.HasSkill(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// HasAllSkills reports whether the employee satisfies every required skill.
func (e *Employee) HasAllSkills(required []string) bool {
	return len(e.MissingSkills(required)) == 0
}

// IsFullTime reports whether the employee carries the full-time tag.
func (e *Employee) IsFullTime() bool {
	return e.HasSkill(FullTimeTag)
}

// IsUnavailableOn reports whether the employee is unavailable on the
// calendar date of t. Time of day is ignored.
func (e *Employee) IsUnavailableOn(t time.Time) bool {
	for _, d := range e.UnavailableDates {
		if SameDate(d, t) {
			return true
		}
	}
	return false
}

// PrefersDayOff reports whether t falls on one of the employee's preferred
// days off. Weekday names compare case-insensitively.
func (e *Employee) PrefersDayOff(t time.Time) bool {
	day := strings.ToLower(t.Weekday().String())
	for _, d := range e.PreferredDaysOff {
		if strings.ToLower(d) == day {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the employee.
func (e *Employee) Clone() *Employee {
	c := *e
	c.Skills = append([]string(nil), e.Skills...)
	c.PreferredDaysOff = append([]string(nil), e.PreferredDaysOff...)
	c.PreferredWorkDays = append([]string(nil), e.PreferredWorkDays...)
	c.UnavailableDates = append([]time.Time(nil), e.UnavailableDates...)
	return &c
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Shift represents a time slot that needs filling.
//
// Employee is a weak reference into the owning schedule's roster; at most
// one employee holds a shift. Locked is a durable business rule with
// audit metadata; Pinned is a transient solve-scoped hint to the solver
// and must never survive past the end of a solve.
type Shift struct {
	ID             string     `json:"id"`
	Start          time.Time  `json:"start"`
	End            time.Time  `json:"end"`
	RequiredSkills []string   `json:"required_skills"`
	Location       string     `json:"location,omitempty"`
	Priority       int        `json:"priority"` // lower = more important to fill
	Employee       *Employee  `json:"assigned_employee,omitempty"`
	Locked         bool       `json:"locked,omitempty"`
	LockedBy       string     `json:"locked_by,omitempty"`
	LockReason     string     `json:"lock_reason,omitempty"`
	LockedAt       *time.Time `json:"locked_at,omitempty"`
	Pinned         bool       `json:"pinned,omitempty"`
}

// DurationMinutes returns the shift length in minutes.
func (s *Shift) DurationMinutes() int {
	return int(s.End.Sub(s.Start).Minutes())
}

// Overlaps reports whether two half-open shift intervals intersect.
func (s *Shift) Overlaps(o *Shift) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Type returns the shift-type prefix of the ID, split on the first "_".
// An ID without "_" is its own type.
func (s *Shift) Type() string {
	if i := strings.Index(s.ID, "_"); i >= 0 {
		return s.ID[:i]
	}
	return s.ID
}

// AssignedTo reports whether the shift is held by the given employee ID.
func (s *Shift) AssignedTo(employeeID string) bool {
	return s.Employee != nil && s.Employee.ID == employeeID
}

// Lock marks the shift's assignment as off-limits to automated change.
func (s *Shift) Lock(by, reason string) {
	now := time.Now()
	s.Locked = true
	s.LockedBy = by
	s.LockReason = reason
	s.LockedAt = &now
}

// Unlock clears the durable lock and its metadata.
func (s *Shift) Unlock() {
	s.Locked = false
	s.LockedBy = ""
	s.LockReason = ""
	s.LockedAt = nil
}

// Score is the lexicographic penalty triple. Hard must be zero for a
// feasible schedule; lower is better on every tier.
type Score struct {
	Hard   int `json:"hard"`
	Medium int `json:"medium"`
	Soft   int `json:"soft"`
}

// Feasible reports whether the hard tier is clean.
func (s Score) Feasible() bool { return s.Hard == 0 }

// Better reports whether s is lexicographically better than o.
func (s Score) Better(o Score) bool {
	if s.Hard != o.Hard {
		return s.Hard < o.Hard
	}
	if s.Medium != o.Medium {
		return s.Medium < o.Medium
	}
	return s.Soft < o.Soft
}

// Schedule is a roster of employees plus the shifts they may hold.
type Schedule struct {
	Employees []*Employee `json:"employees"`
	Shifts    []*Shift    `json:"shifts"`
	Score     Score       `json:"score"`
}

// EmployeeByID returns the roster entry with the given ID, or nil.
func (s *Schedule) EmployeeByID(id string) *Employee {
	for _, e := range s.Employees {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// ShiftByID returns the shift with the given ID, or nil.
func (s *Schedule) ShiftByID(id string) *Shift {
	for _, sh := range s.Shifts {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

// ShiftsAssignedTo returns every shift currently held by the employee.
func (s *Schedule) ShiftsAssignedTo(employeeID string) []*Shift {
	var out []*Shift
	for _, sh := range s.Shifts {
		if sh.AssignedTo(employeeID) {
			out = append(out, sh)
		}
	}
	return out
}

// AssignedCount returns how many shifts currently have an occupant.
func (s *Schedule) AssignedCount() int {
	n := 0
	for _, sh := range s.Shifts {
		if sh.Employee != nil {
			n++
		}
	}
	return n
}

// UnassignedCount returns how many shifts currently lack an occupant.
func (s *Schedule) UnassignedCount() int {
	return len(s.Shifts) - s.AssignedCount()
}

// Clone returns a deep copy of the schedule. Shift assignments in the
// copy point into the copied roster, never into the original's.
func (s *Schedule) Clone() *Schedule {
	c := &Schedule{Score: s.Score}
	byID := make(map[string]*Employee, len(s.Employees))
	for _, e := range s.Employees {
		ce := e.Clone()
		byID[ce.ID] = ce
		c.Employees = append(c.Employees, ce)
	}
	for _, sh := range s.Shifts {
		cs := *sh
		cs.RequiredSkills = append([]string(nil), sh.RequiredSkills...)
		if sh.LockedAt != nil {
			t := *sh.LockedAt
			cs.LockedAt = &t
		}
		if sh.Employee != nil {
			cs.Employee = byID[sh.Employee.ID]
		}
		c.Shifts = append(c.Shifts, &cs)
	}
	return c
}

// Assignments snapshots occupant identity per shift ID. Unassigned shifts
// map to the empty string.
func (s *Schedule) Assignments() map[string]string {
	out := make(map[string]string, len(s.Shifts))
	for _, sh := range s.Shifts {
		if sh.Employee != nil {
			out[sh.ID] = sh.Employee.ID
		} else {
			out[sh.ID] = ""
		}
	}
	return out
}
