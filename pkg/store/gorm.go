package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// jobSnapshot is the job_snapshots table. The schedule is stored as a
// JSON document; snapshots are read back whole, never queried into.
type jobSnapshot struct {
	JobID       string     `gorm:"primaryKey" json:"job_id"`
	Status      string     `gorm:"not null" json:"status"`
	Error       string     `json:"error"`
	Schedule    string     `json:"schedule"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GormStore persists snapshots through GORM, postgres or sqlite.
type GormStore struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// InitDB opens postgres when DATABASE_URL is set, otherwise sqlite at
// DATA_PATH (default shiftagent.db), and migrates the snapshot table.
func InitDB(log *zap.SugaredLogger) (*GormStore, error) {
	var db *gorm.DB
	var err error

	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gcfg)
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "shiftagent.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), gcfg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := db.AutoMigrate(&jobSnapshot{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate job_snapshots")
	}
	return &GormStore{db: db, log: log}, nil
}

// NewGormStore wraps an already-open GORM handle. Used by tests.
func NewGormStore(db *gorm.DB, log *zap.SugaredLogger) (*GormStore, error) {
	if err := db.AutoMigrate(&jobSnapshot{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate job_snapshots")
	}
	return &GormStore{db: db, log: log}, nil
}

// Save upserts the snapshot for the job.
func (s *GormStore) Save(snap Snapshot) error {
	row := jobSnapshot{
		JobID:       snap.JobID,
		Status:      snap.Status,
		Error:       snap.Error,
		CreatedAt:   snap.CreatedAt,
		CompletedAt: snap.CompletedAt,
		UpdatedAt:   time.Now(),
	}
	if snap.Schedule != nil {
		data, err := json.Marshal(snap.Schedule)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal schedule for job %s", snap.JobID)
		}
		row.Schedule = string(data)
	}
	if err := s.db.Save(&row).Error; err != nil {
		return errors.Wrapf(err, "failed to save snapshot for job %s", snap.JobID)
	}
	return nil
}

// Get returns the stored snapshot, or nil when absent.
func (s *GormStore) Get(jobID string) (*Snapshot, error) {
	var row jobSnapshot
	if err := s.db.Where("job_id = ?", jobID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to load snapshot for job %s", jobID)
	}

	snap := &Snapshot{
		JobID:       row.JobID,
		Status:      row.Status,
		Error:       row.Error,
		CreatedAt:   row.CreatedAt,
		CompletedAt: row.CompletedAt,
	}
	if row.Schedule != "" {
		var sched models.Schedule
		if err := json.Unmarshal([]byte(row.Schedule), &sched); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal schedule for job %s", jobID)
		}
		snap.Schedule = &sched
	}
	return snap, nil
}

// List returns every stored job ID.
func (s *GormStore) List() ([]string, error) {
	var ids []string
	if err := s.db.Model(&jobSnapshot{}).Pluck("job_id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	return ids, nil
}

// Delete removes the snapshot for the job. Absent rows are not an error.
func (s *GormStore) Delete(jobID string) error {
	if err := s.db.Where("job_id = ?", jobID).Delete(&jobSnapshot{}).Error; err != nil {
		return errors.Wrapf(err, "failed to delete snapshot for job %s", jobID)
	}
	return nil
}

// CleanupOlderThan deletes snapshots last updated before now-age and
// returns the number removed.
func (s *GormStore) CleanupOlderThan(age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	res := s.db.Where("updated_at < ?", cutoff).Delete(&jobSnapshot{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to clean up snapshots")
	}
	return int(res.RowsAffected), nil
}
