package models

import "time"

// OptimizationScope bounds a partial re-optimization pass. Every field is
// optional; an absent field leaves that axis unconstrained.
type OptimizationScope struct {
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Locations   []string   `json:"locations,omitempty"`
	ShiftTypes  []string   `json:"shift_types,omitempty"`
	EmployeeIDs []string   `json:"employee_ids,omitempty"`
}

// Unbounded reports whether the scope constrains nothing.
func (s *OptimizationScope) Unbounded() bool {
	return s == nil || (s.StartDate == nil && s.EndDate == nil &&
		len(s.Locations) == 0 && len(s.ShiftTypes) == 0 && len(s.EmployeeIDs) == 0)
}

// HasEmployee reports whether the employee predicate includes the ID.
// A scope without an employee predicate includes everyone.
func (s *OptimizationScope) HasEmployee(id string) bool {
	if s == nil || len(s.EmployeeIDs) == 0 {
		return true
	}
	for _, e := range s.EmployeeIDs {
		if e == id {
			return true
		}
	}
	return false
}
