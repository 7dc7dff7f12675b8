package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/handlers"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/jobs"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/solver"
	"github.com/vtakaj/ShiftAgent-sub000/pkg/store"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	var jobStore store.Store
	if gs, err := store.InitDB(logger); err != nil {
		// In-memory state is the source of truth; run without persistence.
		logger.Warnw("job store unavailable, persistence disabled", "error", err)
	} else {
		jobStore = gs
	}

	manager := jobs.NewManager(solver.NewGreedy(logger), jobStore, logger)
	h := &handlers.Handler{Manager: manager, Logger: logger}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ShiftAgent API",
			"version": "1.0.0",
		})
	})

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.GET("/jobs", h.ListJobs)
		admin.POST("/cleanup", h.CleanupJobs)
	}

	// Planning Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedules", h.SubmitSchedule)
		api.GET("/schedules/:id", h.GetJob)
		api.DELETE("/schedules/:id", h.DeleteJob)
		api.POST("/schedules/:id/employees", h.AddEmployee)
		api.POST("/schedules/:id/employees/batch", h.AddEmployeesBatch)
		api.PATCH("/schedules/:id/employees/:employeeID/skills", h.UpdateSkills)
		api.POST("/schedules/:id/shifts/:shiftID/reassign", h.ReassignShift)
		api.POST("/schedules/:id/swap", h.SwapShifts)
		api.GET("/schedules/:id/shifts/:shiftID/replacements", h.FindReplacements)
		api.POST("/schedules/:id/shifts/:shiftID/replace", h.ReplaceEmployee)
		api.POST("/schedules/:id/reoptimize", h.Reoptimize)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	logger.Infow("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		logger.Fatalw("could not run server", "error", err)
	}
}
