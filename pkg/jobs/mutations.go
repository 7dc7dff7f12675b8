package jobs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/engine"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/validator"
)

// AddEmployeeOptions controls post-add assignment behavior.
type AddEmployeeOptions struct {
	AutoAssign bool     `json:"auto_assign"`
	ShiftIDs   []string `json:"shift_ids,omitempty"`
}

// ReassignResult reports the outcome of a reassignment attempt.
type ReassignResult struct {
	Applied    bool                    `json:"applied"`
	Violations []validator.Violation   `json:"violations,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
	Impact     *validator.WeeklyImpact `json:"weekly_impact,omitempty"`
}

// Candidate is one ranked replacement suggestion.
type Candidate struct {
	EmployeeID       string  `json:"employee_id"`
	Name             string  `json:"name"`
	MatchedSkills    int     `json:"matched_skills"`
	WeeklyHoursAfter float64 `json:"weekly_hours_after"`
	HoursStatus      string  `json:"hours_status"`
}

// ReoptimizeResult reports partial re-optimization counts.
type ReoptimizeResult struct {
	ShiftsInScope  int `json:"shifts_in_scope"`
	ShiftsModified int `json:"shifts_modified"`
}

// AddEmployee appends a new employee to the job's roster, optionally
// assigning them, then re-solves with every still-valid assignment
// pinned. Returns per-request warnings (e.g. requested shifts skipped
// because they already had an occupant).
func (m *Manager) AddEmployee(jobID string, emp *models.Employee, opts AddEmployeeOptions) ([]string, error) {
	if emp == nil || emp.ID == "" {
		return nil, errors.Wrap(ErrInvalidSchedule, "employee id must not be empty")
	}

	job, owned, err := m.checkout(jobID, StatusAddingEmployee)
	if err != nil {
		return nil, err
	}

	if owned.EmployeeByID(emp.ID) != nil {
		m.abort(job)
		return nil, errors.Wrapf(ErrDuplicateEmployee, "employee %s", emp.ID)
	}
	for _, id := range opts.ShiftIDs {
		if owned.ShiftByID(id) == nil {
			m.abort(job)
			return nil, errors.Wrapf(ErrShiftNotFound, "shift %s", id)
		}
	}

	work := owned.Clone()
	added := emp.Clone()
	work.Employees = append(work.Employees, added)

	guard := engine.PinValidAssignments(work)
	defer guard.Release()

	var warnings []string
	if len(opts.ShiftIDs) > 0 {
		for _, id := range opts.ShiftIDs {
			sh := work.ShiftByID(id)
			if sh.Locked {
				warnings = append(warnings, fmt.Sprintf("shift %s is locked, skipped", id))
				continue
			}
			if sh.Employee != nil {
				warnings = append(warnings, fmt.Sprintf("shift %s already assigned to %s, skipped", id, sh.Employee.ID))
				continue
			}
			sh.Employee = added
			guard.Pin(sh)
		}
	} else if opts.AutoAssign {
		for _, sh := range work.Shifts {
			if sh.Employee != nil || sh.Locked {
				continue
			}
			violations, _ := validator.ValidateAssignment(work, sh, added)
			if !validator.HasHard(violations) {
				sh.Employee = added
				guard.Pin(sh)
				break
			}
		}
	}

	solved, err := m.solveOwned(work)
	if err != nil {
		m.failMutation(job, err)
		return nil, err
	}
	m.commit(job, solved, "add_employee", fmt.Sprintf("added employee %s (%s)", added.ID, added.Name), warnings)
	return warnings, nil
}

// AddEmployees appends several employees to the roster in one mutation:
// one checkout, one re-solve, one audit entry. Duplicate IDs, within the
// batch or against the roster, abort the whole batch. With autoAssign
// set, each new employee takes the first unassigned unlocked shift they
// pass the hard rules for; employees left without a shift are reported
// as warnings.
func (m *Manager) AddEmployees(jobID string, emps []*models.Employee, autoAssign bool) ([]string, error) {
	if len(emps) == 0 {
		return nil, errors.Wrap(ErrInvalidSchedule, "batch must contain at least one employee")
	}
	for _, e := range emps {
		if e == nil || e.ID == "" {
			return nil, errors.Wrap(ErrInvalidSchedule, "employee id must not be empty")
		}
	}

	job, owned, err := m.checkout(jobID, StatusAddingEmployeesBatch)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(emps))
	for _, e := range emps {
		if seen[e.ID] || owned.EmployeeByID(e.ID) != nil {
			m.abort(job)
			return nil, errors.Wrapf(ErrDuplicateEmployee, "employee %s", e.ID)
		}
		seen[e.ID] = true
	}

	work := owned.Clone()
	added := make([]*models.Employee, 0, len(emps))
	for _, e := range emps {
		c := e.Clone()
		work.Employees = append(work.Employees, c)
		added = append(added, c)
	}

	guard := engine.PinValidAssignments(work)
	defer guard.Release()

	var warnings []string
	if autoAssign {
		for _, emp := range added {
			assigned := false
			for _, sh := range work.Shifts {
				if sh.Employee != nil || sh.Locked {
					continue
				}
				violations, _ := validator.ValidateAssignment(work, sh, emp)
				if !validator.HasHard(violations) {
					sh.Employee = emp
					guard.Pin(sh)
					assigned = true
					break
				}
			}
			if !assigned {
				warnings = append(warnings, fmt.Sprintf("no feasible unassigned shift for employee %s", emp.ID))
			}
		}
	}

	solved, err := m.solveOwned(work)
	if err != nil {
		m.failMutation(job, err)
		return nil, err
	}
	m.commit(job, solved, "add_employees", fmt.Sprintf("added %d employee(s)", len(added)), warnings)
	return warnings, nil
}

// UpdateEmployeeSkills replaces an employee's skill set and re-solves.
// Shifts held by the employee that depended on a removed skill are left
// unpinned so the solver must reconsider them; so are other employees'
// shifts the updated employee newly qualifies for, to admit improvement.
func (m *Manager) UpdateEmployeeSkills(jobID, employeeID string, skills []string) error {
	job, owned, err := m.checkout(jobID, StatusUpdatingSkills)
	if err != nil {
		return err
	}
	if owned.EmployeeByID(employeeID) == nil {
		m.abort(job)
		return errors.Wrapf(ErrEmployeeNotFound, "employee %s", employeeID)
	}

	work := owned.Clone()
	emp := work.EmployeeByID(employeeID)
	before := emp.Clone()
	emp.Skills = append([]string(nil), skills...)

	guard := engine.PinValidAssignments(work)
	defer guard.Release()

	for _, sh := range work.Shifts {
		if sh.Employee == nil || sh.Locked {
			continue
		}
		if sh.Employee.ID == employeeID {
			// Lost a skill the shift depends on: force reconsideration.
			if !emp.HasAllSkills(sh.RequiredSkills) {
				guard.Unpin(sh)
			}
			continue
		}
		// Newly qualified for someone else's shift: allow improvement.
		if emp.HasAllSkills(sh.RequiredSkills) && !before.HasAllSkills(sh.RequiredSkills) {
			guard.Unpin(sh)
		}
	}

	solved, err := m.solveOwned(work)
	if err != nil {
		m.failMutation(job, err)
		return err
	}
	m.commit(job, solved, "update_skills",
		fmt.Sprintf("employee %s skills set to [%s]", employeeID, strings.Join(skills, ", ")), nil)
	return nil
}

// ReassignShift assigns the shift to the given employee, or unassigns it
// when employeeID is nil. With force unset, any violation aborts without
// mutating; with force set, violations downgrade to warnings and the
// override applies. The rest of the schedule stays pinned for the
// follow-up solve.
func (m *Manager) ReassignShift(jobID, shiftID string, employeeID *string, force bool) (*ReassignResult, error) {
	return m.reassign(jobID, shiftID, employeeID, force, false)
}

// reassign implements ReassignShift. With tolerateMedium set, only hard
// violations block; medium ones downgrade to warnings. The replacement
// path uses that mode so its candidate filter and its apply step judge
// by the same tier.
func (m *Manager) reassign(jobID, shiftID string, employeeID *string, force, tolerateMedium bool) (*ReassignResult, error) {
	job, owned, err := m.checkout(jobID, StatusReassigning)
	if err != nil {
		return nil, err
	}
	if owned.ShiftByID(shiftID) == nil {
		m.abort(job)
		return nil, errors.Wrapf(ErrShiftNotFound, "shift %s", shiftID)
	}
	if employeeID != nil && owned.EmployeeByID(*employeeID) == nil {
		m.abort(job)
		return nil, errors.Wrapf(ErrEmployeeNotFound, "employee %s", *employeeID)
	}

	work := owned.Clone()
	shift := work.ShiftByID(shiftID)
	var candidate *models.Employee
	if employeeID != nil {
		candidate = work.EmployeeByID(*employeeID)
	}

	violations, softWarnings := validator.ValidateAssignment(work, shift, candidate)
	result := &ReassignResult{Violations: violations, Warnings: softWarnings}
	if candidate != nil {
		impact := validator.ComputeWeeklyImpact(work, candidate, shift, true)
		result.Impact = &impact
	}

	blocking := len(violations) > 0
	if tolerateMedium {
		blocking = validator.HasHard(violations)
	}
	if blocking && !force {
		m.abort(job)
		return result, errors.Wrapf(ErrConstraintViolated, "%d violation(s) on shift %s", len(violations), shiftID)
	}
	if len(violations) > 0 {
		// Overridden or tolerated violations become audit warnings.
		result.Warnings = append(validator.AsWarnings(violations), softWarnings...)
		result.Violations = nil
	}

	guard := engine.PinValidAssignments(work)
	defer guard.Release()

	shift.Employee = candidate
	guard.Pin(shift)

	solved, err := m.solveOwned(work)
	if err != nil {
		m.failMutation(job, err)
		return nil, err
	}

	detail := fmt.Sprintf("shift %s unassigned", shiftID)
	if candidate != nil {
		detail = fmt.Sprintf("shift %s reassigned to %s", shiftID, candidate.ID)
		if force {
			detail += " (forced)"
		}
	}
	m.commit(job, solved, "reassign", detail, result.Warnings)
	result.Applied = true
	return result, nil
}

// SwapShifts exchanges the occupants of two assigned shifts. Both cross
// assignments are validated first, each against the other party's
// remaining shifts; any hard violation aborts with no observable
// mutation. Swap supports no force flag.
func (m *Manager) SwapShifts(jobID, shiftID1, shiftID2 string) error {
	job, owned, err := m.checkout(jobID, StatusSwapping)
	if err != nil {
		return err
	}

	abortf := func(err error) error {
		m.abort(job)
		return err
	}

	s1 := owned.ShiftByID(shiftID1)
	s2 := owned.ShiftByID(shiftID2)
	if s1 == nil {
		return abortf(errors.Wrapf(ErrShiftNotFound, "shift %s", shiftID1))
	}
	if s2 == nil {
		return abortf(errors.Wrapf(ErrShiftNotFound, "shift %s", shiftID2))
	}
	if s1.Employee == nil || s2.Employee == nil {
		return abortf(errors.Wrap(ErrConstraintViolated, "both shifts must be assigned to swap"))
	}

	// Cross-validate on a scratch copy with both tenures vacated, so each
	// party is judged against only their other shifts.
	scratch := owned.Clone()
	c1 := scratch.ShiftByID(shiftID1)
	c2 := scratch.ShiftByID(shiftID2)
	e1 := c1.Employee
	e2 := c2.Employee
	c1.Employee = nil
	c2.Employee = nil

	if v, _ := validator.ValidateAssignment(scratch, c1, e2); validator.HasHard(v) {
		return abortf(errors.Wrapf(ErrConstraintViolated,
			"employee %s cannot take shift %s: %s", e2.ID, shiftID1, summarize(v)))
	}
	if v, _ := validator.ValidateAssignment(scratch, c2, e1); validator.HasHard(v) {
		return abortf(errors.Wrapf(ErrConstraintViolated,
			"employee %s cannot take shift %s: %s", e1.ID, shiftID2, summarize(v)))
	}

	work := owned.Clone()
	guard := engine.PinValidAssignments(work)
	defer guard.Release()

	w1 := work.ShiftByID(shiftID1)
	w2 := work.ShiftByID(shiftID2)
	w1.Employee, w2.Employee = work.EmployeeByID(e2.ID), work.EmployeeByID(e1.ID)
	guard.Pin(w1)
	guard.Pin(w2)

	solved, err := m.solveOwned(work)
	if err != nil {
		m.failMutation(job, err)
		return err
	}
	m.commit(job, solved, "swap",
		fmt.Sprintf("swapped shifts %s (%s) and %s (%s)", shiftID1, e1.ID, shiftID2, e2.ID), nil)
	return nil
}

// FindReplacements ranks roster candidates able to take over a shift
// whose occupant became unavailable: full skill coverage, available at
// the time, no overlap; ordered by projected weekly hours ascending.
// Read-only; the job stays COMPLETED throughout.
func (m *Manager) FindReplacements(jobID, shiftID string) ([]Candidate, error) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return nil, errors.Wrapf(ErrJobNotFound, "job %s", jobID)
	}
	if job.Status.Busy() {
		m.mu.Unlock()
		return nil, errors.Wrapf(ErrJobBusy, "job %s is %s", jobID, job.Status)
	}
	snapshot := job.Schedule.Clone()
	m.mu.Unlock()

	shift := snapshot.ShiftByID(shiftID)
	if shift == nil {
		return nil, errors.Wrapf(ErrShiftNotFound, "shift %s", shiftID)
	}

	var out []Candidate
	for _, emp := range snapshot.Employees {
		if shift.AssignedTo(emp.ID) {
			continue
		}
		if !emp.HasAllSkills(shift.RequiredSkills) {
			continue
		}
		violations, _ := validator.ValidateAssignment(snapshot, shift, emp)
		if validator.HasHard(violations) {
			continue
		}
		impact := validator.ComputeWeeklyImpact(snapshot, emp, shift, true)
		out = append(out, Candidate{
			EmployeeID:       emp.ID,
			Name:             emp.Name,
			MatchedSkills:    len(shift.RequiredSkills),
			WeeklyHoursAfter: impact.HoursAfter,
			HoursStatus:      impact.Status,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WeeklyHoursAfter != out[j].WeeklyHoursAfter {
			return out[i].WeeklyHoursAfter < out[j].WeeklyHoursAfter
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// ReplaceEmployee finds ranked replacement candidates for a shift and,
// when autoAssign is set, reassigns the shift to the top candidate.
// Candidates are filtered on hard rules only, so the reassignment
// tolerates medium violations and surfaces them as warnings.
func (m *Manager) ReplaceEmployee(jobID, shiftID string, autoAssign bool) ([]Candidate, *ReassignResult, error) {
	candidates, err := m.FindReplacements(jobID, shiftID)
	if err != nil {
		return nil, nil, err
	}
	if !autoAssign || len(candidates) == 0 {
		return candidates, nil, nil
	}
	top := candidates[0].EmployeeID
	result, err := m.reassign(jobID, shiftID, &top, false, true)
	if err != nil {
		return candidates, result, err
	}
	return candidates, result, nil
}

// PartialReoptimize re-optimizes only the scoped subset of the schedule
// and merges the result back, leaving out-of-scope and locked shifts
// byte-for-byte untouched.
func (m *Manager) PartialReoptimize(jobID string, scope *models.OptimizationScope) (*ReoptimizeResult, error) {
	if scope != nil && scope.StartDate != nil && scope.EndDate != nil && scope.EndDate.Before(*scope.StartDate) {
		return nil, errors.Wrap(ErrInvalidScope, "end date precedes start date")
	}

	job, owned, err := m.checkout(jobID, StatusActive)
	if err != nil {
		return nil, err
	}

	inScope := engine.FilterByScope(owned.Shifts, scope)
	partial := engine.BuildPartial(owned, scope, true)

	solvedPartial, err := m.solveOwned(partial)
	if err != nil {
		m.failMutation(job, err)
		return nil, err
	}

	merged := engine.MergeSolution(owned, solvedPartial, scope)
	modified := engine.CountModifiedShifts(owned, merged)

	m.commit(job, merged, "partial_reoptimize",
		fmt.Sprintf("re-optimized %d shift(s) in scope, %d changed", len(inScope), modified), nil)
	return &ReoptimizeResult{ShiftsInScope: len(inScope), ShiftsModified: modified}, nil
}

func summarize(vs []validator.Violation) string {
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		if v.Kind == validator.KindHard {
			names = append(names, v.Rule)
		}
	}
	return strings.Join(names, ", ")
}
