package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/engine"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/solver"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/store"
)

// Manager coordinates jobs. The mutex guards the job map and status
// metadata only; a job's schedule belongs to whichever worker holds the
// job in a busy state, so schedule internals need no fine-grained locks.
type Manager struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	solver solver.Solver
	store  store.Store // optional; nil disables persistence
	logger *zap.SugaredLogger
}

// NewManager wires a job manager around a solver, an optional snapshot
// store, and a logger.
func NewManager(sv solver.Solver, st store.Store, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		jobs:   make(map[string]*Job),
		solver: sv,
		store:  st,
		logger: logger,
	}
}

// Submit validates the schedule, registers a new job, and starts the
// initial solve on its own goroutine. The job ID returns immediately;
// callers poll Get for completion.
func (m *Manager) Submit(schedule *models.Schedule) (string, error) {
	if err := validateSchedule(schedule); err != nil {
		return "", err
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusScheduled,
		CreatedAt: time.Now(),
		Schedule:  schedule.Clone(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	// Persist the SCHEDULED snapshot before the worker starts so a fast
	// solve cannot be overwritten by a stale pre-solve write.
	m.persist(job)

	go m.runInitialSolve(job)
	return job.ID, nil
}

func (m *Manager) runInitialSolve(job *Job) {
	m.mu.Lock()
	job.Status = StatusActive
	// The worker owns job.Schedule from here until the job leaves ACTIVE.
	owned := job.Schedule
	m.mu.Unlock()

	solved, err := m.solveOwned(owned)

	m.mu.Lock()
	if err != nil {
		job.fail(err)
		m.logger.Errorw("initial solve failed", "job_id", job.ID, "error", err)
	} else {
		job.Schedule = solved
		job.complete()
		job.audit("solve", "initial optimization", nil)
	}
	m.mu.Unlock()
	m.persist(job)
}

// solveOwned runs the solver against a copy of the worker-owned schedule
// and returns the committed-candidate result. The owned schedule is only
// replaced by the caller after a successful return, so a failed solve
// never corrupts the last good state. The solver handle itself never
// leaves this stack frame.
func (m *Manager) solveOwned(owned *models.Schedule) (*models.Schedule, error) {
	result, err := m.solver.Solve(context.Background(), owned.Clone())
	if err != nil {
		return nil, errors.Wrap(err, "optimizer failed")
	}
	engine.ClearPins(result)
	result.Score = solver.ScoreSchedule(result)
	return result, nil
}

// Get returns a point-in-time snapshot of the job. Safe to call while
// the job is mid-solve; the snapshot never aliases worker-owned state.
func (m *Manager) Get(jobID string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, errors.Wrapf(ErrJobNotFound, "job %s", jobID)
	}
	if job.Status.Busy() {
		// Metadata only while a worker owns the schedule.
		c := *job
		c.Schedule = nil
		c.Audit = append([]AuditEntry(nil), job.Audit...)
		return &c, nil
	}
	return job.snapshot(), nil
}

// List returns all live job IDs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	return ids
}

// Delete removes a job. Rejected while a worker owns the job's schedule.
func (m *Manager) Delete(jobID string) error {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return errors.Wrapf(ErrJobNotFound, "job %s", jobID)
	}
	if job.Status.Busy() {
		m.mu.Unlock()
		return errors.Wrapf(ErrJobBusy, "job %s is %s", jobID, job.Status)
	}
	delete(m.jobs, jobID)
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Delete(jobID); err != nil {
			m.logger.Warnw("failed to delete job snapshot", "job_id", jobID, "error", err)
		}
	}
	return nil
}

// CleanupOlderThan deletes idle jobs whose completion is older than age
// and returns how many were removed. Jobs mid-solve are left alone.
func (m *Manager) CleanupOlderThan(age time.Duration) int {
	cutoff := time.Now().Add(-age)

	m.mu.Lock()
	var expired []string
	for id, job := range m.jobs {
		if job.Status.Busy() {
			continue
		}
		ref := job.CreatedAt
		if job.CompletedAt != nil {
			ref = *job.CompletedAt
		}
		if ref.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(m.jobs, id)
	}
	m.mu.Unlock()

	for _, id := range expired {
		if m.store != nil {
			if err := m.store.Delete(id); err != nil {
				m.logger.Warnw("failed to delete expired snapshot", "job_id", id, "error", err)
			}
		}
	}
	if len(expired) > 0 {
		m.logger.Infow("cleaned up expired jobs", "count", len(expired), "older_than", age)
	}
	return len(expired)
}

// checkout moves an idle job into a busy state and hands its schedule to
// the calling worker. Every mutation path goes through here so no two
// workers can ever own one job's schedule at once.
func (m *Manager) checkout(jobID string, next Status) (*Job, *models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, nil, errors.Wrapf(ErrJobNotFound, "job %s", jobID)
	}
	if job.Status != StatusCompleted {
		return nil, nil, errors.Wrapf(ErrJobBusy, "job %s is %s", jobID, job.Status)
	}
	job.Status = next
	return job, job.Schedule, nil
}

// commit installs the successor schedule as the job's authoritative one
// and returns the job to COMPLETED. The old schedule was never touched,
// so any earlier abort path left it fully intact.
func (m *Manager) commit(job *Job, successor *models.Schedule, action, detail string, warnings []string) {
	engine.ClearPins(successor)
	successor.Score = solver.ScoreSchedule(successor)

	m.mu.Lock()
	job.Schedule = successor
	job.complete()
	job.audit(action, detail, warnings)
	m.mu.Unlock()
	m.persist(job)
}

// abort returns a checked-out job to COMPLETED with its schedule
// untouched. Used for synchronous validation failures.
func (m *Manager) abort(job *Job) {
	m.mu.Lock()
	job.Status = StatusCompleted
	m.mu.Unlock()
}

// failMutation transitions a checked-out job to FAILED, preserving the
// optimizer's message verbatim. The authoritative schedule keeps its
// pre-mutation value.
func (m *Manager) failMutation(job *Job, err error) {
	m.mu.Lock()
	job.fail(err)
	m.mu.Unlock()
	m.logger.Errorw("mutation failed", "job_id", job.ID, "error", err)
	m.persist(job)
}

// persist syncs a snapshot to the store, best-effort. In-memory state is
// the source of truth during a session; storage errors are only logged.
func (m *Manager) persist(job *Job) {
	if m.store == nil {
		return
	}
	m.mu.Lock()
	snap := store.Snapshot{
		JobID:       job.ID,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
		Error:       job.Error,
	}
	if !job.Status.Busy() && job.Schedule != nil {
		snap.Schedule = job.Schedule.Clone()
	}
	m.mu.Unlock()

	if err := m.store.Save(snap); err != nil {
		m.logger.Warnw("failed to persist job snapshot", "job_id", job.ID, "error", err)
	}
}

// validateSchedule enforces submission invariants: unique employee and
// shift IDs, positive shift duration, assignments referencing the roster.
func validateSchedule(s *models.Schedule) error {
	if s == nil || len(s.Shifts) == 0 {
		return errors.Wrap(ErrInvalidSchedule, "schedule must contain at least one shift")
	}
	empIDs := make(map[string]bool, len(s.Employees))
	for _, e := range s.Employees {
		if e.ID == "" {
			return errors.Wrap(ErrInvalidSchedule, "employee id must not be empty")
		}
		if empIDs[e.ID] {
			return errors.Wrapf(ErrDuplicateEmployee, "employee %s", e.ID)
		}
		empIDs[e.ID] = true
	}
	shiftIDs := make(map[string]bool, len(s.Shifts))
	for _, sh := range s.Shifts {
		if sh.ID == "" {
			return errors.Wrap(ErrInvalidSchedule, "shift id must not be empty")
		}
		if shiftIDs[sh.ID] {
			return errors.Wrapf(ErrInvalidSchedule, "duplicate shift id %s", sh.ID)
		}
		shiftIDs[sh.ID] = true
		if !sh.Start.Before(sh.End) {
			return errors.Wrapf(ErrInvalidSchedule, "shift %s must start before it ends", sh.ID)
		}
		if sh.Employee != nil && !empIDs[sh.Employee.ID] {
			return errors.Wrapf(ErrInvalidSchedule, "shift %s assigned to unknown employee %s", sh.ID, sh.Employee.ID)
		}
	}
	return nil
}
