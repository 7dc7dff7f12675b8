// Package store persists serializable job snapshots. The in-memory job
// manager is the source of truth during a session; this layer is a
// best-effort durability sync behind it.
package store

import (
	"time"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// Snapshot is the persistable projection of a job. Solver-internal
// handles are never part of it.
type Snapshot struct {
	JobID       string           `json:"job_id"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Error       string           `json:"error,omitempty"`
	Schedule    *models.Schedule `json:"schedule,omitempty"`
}

// Store is the job persistence contract.
type Store interface {
	Save(snap Snapshot) error
	Get(jobID string) (*Snapshot, error)
	List() ([]string, error)
	Delete(jobID string) error
	CleanupOlderThan(age time.Duration) (int, error)
}
