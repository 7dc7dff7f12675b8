// Package jobs tracks long-running optimization jobs through their state
// machine and applies live schedule mutations without discarding valid
// prior assignments.
package jobs

import (
	"time"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// Status is the job state machine position.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"

	// Transient mutation sub-states. Entered from COMPLETED for the
	// duration of one mutation, always returning to COMPLETED or FAILED.
	StatusAddingEmployee       Status = "ADDING_EMPLOYEE"
	StatusUpdatingSkills       Status = "UPDATING_SKILLS"
	StatusReassigning          Status = "REASSIGNING"
	StatusSwapping             Status = "SWAPPING"
	StatusAddingEmployeesBatch Status = "ADDING_EMPLOYEES_BATCH"
)

// Transient reports whether the status is a mutation sub-state.
func (s Status) Transient() bool {
	switch s {
	case StatusAddingEmployee, StatusUpdatingSkills, StatusReassigning,
		StatusSwapping, StatusAddingEmployeesBatch:
		return true
	}
	return false
}

// Busy reports whether the job currently owns its schedule exclusively
// and must reject new mutation requests.
func (s Status) Busy() bool {
	return s == StatusScheduled || s == StatusActive || s.Transient()
}

// AuditEntry records one applied mutation. The audit log is append-only
// and serves observability, not rollback.
type AuditEntry struct {
	Time     time.Time `json:"time"`
	Action   string    `json:"action"`
	Detail   string    `json:"detail"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Job owns the authoritative schedule for one optimization run. During a
// solve or mutation, exactly one worker holds the schedule; everyone else
// sees only status metadata until ownership returns at COMPLETED.
type Job struct {
	ID          string           `json:"id"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Schedule    *models.Schedule `json:"schedule,omitempty"`
	Error       string           `json:"error,omitempty"`
	Audit       []AuditEntry     `json:"audit,omitempty"`
}

func (j *Job) complete() {
	now := time.Now()
	j.Status = StatusCompleted
	j.CompletedAt = &now
	j.Error = ""
}

func (j *Job) fail(err error) {
	now := time.Now()
	j.Status = StatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
}

func (j *Job) audit(action, detail string, warnings []string) {
	j.Audit = append(j.Audit, AuditEntry{
		Time:     time.Now(),
		Action:   action,
		Detail:   detail,
		Warnings: warnings,
	})
}

// snapshot returns a copy safe to hand outside the manager's lock. The
// schedule is deep-copied so readers never alias the authoritative one.
func (j *Job) snapshot() *Job {
	c := *j
	if j.Schedule != nil {
		c.Schedule = j.Schedule.Clone()
	}
	c.Audit = append([]AuditEntry(nil), j.Audit...)
	return &c
}
