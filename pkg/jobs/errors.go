package jobs

import "github.com/cockroachdb/errors"

// Validation-taxonomy sentinels. These report synchronously and leave
// job state untouched.
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrJobBusy            = errors.New("job is not in COMPLETED state")
	ErrShiftNotFound      = errors.New("shift not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDuplicateEmployee  = errors.New("duplicate employee id")
	ErrInvalidSchedule    = errors.New("invalid schedule")
	ErrInvalidScope       = errors.New("invalid optimization scope")
	ErrConstraintViolated = errors.New("constraint violations block the operation")
)
