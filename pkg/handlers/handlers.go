// Package handlers exposes the planning engine over HTTP.
package handlers

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/auth"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/jobs"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Manager *jobs.Manager
	Logger  *zap.SugaredLogger
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key for planning routes
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !auth.VerifyAdmin(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// SubmitSchedule accepts a schedule and starts the initial solve.
func (h *Handler) SubmitSchedule(c *gin.Context) {
	var input models.Schedule
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.Manager.Submit(&input)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": jobs.StatusScheduled})
}

// GetJob returns job status and, once idle, the current schedule.
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.Manager.Get(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := gin.H{
		"job_id":       job.ID,
		"status":       job.Status,
		"created_at":   job.CreatedAt,
		"completed_at": job.CompletedAt,
		"audit":        job.Audit,
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	if job.Schedule != nil {
		resp["schedule"] = job.Schedule
		resp["score"] = job.Schedule.Score
		resp["stats"] = gin.H{
			"total_shifts":      len(job.Schedule.Shifts),
			"assigned_shifts":   job.Schedule.AssignedCount(),
			"unassigned_shifts": job.Schedule.UnassignedCount(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteJob removes a job and its stored snapshot.
func (h *Handler) DeleteJob(c *gin.Context) {
	if err := h.Manager.Delete(c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

// AddEmployee appends an employee to a job's roster.
func (h *Handler) AddEmployee(c *gin.Context) {
	var req struct {
		Employee models.Employee `json:"employee" binding:"required"`
		jobs.AddEmployeeOptions
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warnings, err := h.Manager.AddEmployee(c.Param("id"), &req.Employee, req.AddEmployeeOptions)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee added", "warnings": warnings})
}

// AddEmployeesBatch appends several employees in a single mutation.
func (h *Handler) AddEmployeesBatch(c *gin.Context) {
	var req struct {
		Employees  []models.Employee `json:"employees" binding:"required"`
		AutoAssign bool              `json:"auto_assign"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emps := make([]*models.Employee, 0, len(req.Employees))
	for i := range req.Employees {
		emps = append(emps, &req.Employees[i])
	}
	warnings, err := h.Manager.AddEmployees(c.Param("id"), emps, req.AutoAssign)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employees added", "warnings": warnings})
}

// UpdateSkills replaces an employee's skill set.
func (h *Handler) UpdateSkills(c *gin.Context) {
	var req struct {
		Skills []string `json:"skills" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Manager.UpdateEmployeeSkills(c.Param("id"), c.Param("employeeID"), req.Skills); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Skills updated"})
}

// ReassignShift moves or clears a shift's assignment.
func (h *Handler) ReassignShift(c *gin.Context) {
	var req struct {
		EmployeeID *string `json:"employee_id"`
		Force      bool    `json:"force"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Manager.ReassignShift(c.Param("id"), c.Param("shiftID"), req.EmployeeID, req.Force)
	if err != nil {
		if errors.Is(err, jobs.ErrConstraintViolated) && result != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      err.Error(),
				"violations": result.Violations,
			})
			return
		}
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SwapShifts exchanges the occupants of two shifts.
func (h *Handler) SwapShifts(c *gin.Context) {
	var req struct {
		ShiftID1 string `json:"shift_id_1" binding:"required"`
		ShiftID2 string `json:"shift_id_2" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Manager.SwapShifts(c.Param("id"), req.ShiftID1, req.ShiftID2); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shifts swapped"})
}

// FindReplacements lists ranked replacement candidates for a shift.
func (h *Handler) FindReplacements(c *gin.Context) {
	candidates, err := h.Manager.FindReplacements(c.Param("id"), c.Param("shiftID"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// ReplaceEmployee finds candidates and optionally auto-assigns the best.
func (h *Handler) ReplaceEmployee(c *gin.Context) {
	var req struct {
		AutoAssign bool `json:"auto_assign"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates, result, err := h.Manager.ReplaceEmployee(c.Param("id"), c.Param("shiftID"), req.AutoAssign)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "reassignment": result})
}

// Reoptimize runs a scoped partial re-optimization.
func (h *Handler) Reoptimize(c *gin.Context) {
	var scope models.OptimizationScope
	if err := c.ShouldBindJSON(&scope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Manager.PartialReoptimize(c.Param("id"), &scope)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListJobs returns the IDs of all live jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.Manager.List()})
}

// CleanupJobs deletes idle jobs older than the requested age.
func (h *Handler) CleanupJobs(c *gin.Context) {
	var req struct {
		MaxAgeHours int `json:"max_age_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxAgeHours <= 0 {
		req.MaxAgeHours = 24
	}

	removed := h.Manager.CleanupOlderThan(time.Duration(req.MaxAgeHours) * time.Hour)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// renderError maps the error taxonomy onto HTTP statuses.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound),
		errors.Is(err, jobs.ErrShiftNotFound),
		errors.Is(err, jobs.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, jobs.ErrJobBusy), errors.Is(err, jobs.ErrDuplicateEmployee):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, jobs.ErrInvalidSchedule), errors.Is(err, jobs.ErrInvalidScope):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, jobs.ErrConstraintViolated):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.Logger.Errorw("internal error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
