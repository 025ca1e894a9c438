package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/health"
	"github.com/irisqo/irisqo/internal/transport/http/handler"
	"github.com/irisqo/irisqo/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	checker *health.Checker,
	ingest *handler.IngestHandler,
	jobs *handler.JobHandler,
	results *handler.ResultHandler,
	schedules *handler.ScheduleHandler,
	instances *handler.InstanceHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "irisqo"})
	})

	// Ingestion: any method, the whole remaining path is the upstream URL.
	r.Any("/to/*url", ingest.Handle)

	api := r.Group("/api/v1")
	api.GET("/jobs/:id", jobs.GetByID)
	api.DELETE("/jobs/:id", jobs.Delete)
	api.GET("/jobs/:id/history", jobs.History)
	api.GET("/jobs/:id/result", results.GetByID)
	api.GET("/jobs/:id/result/raw", results.Raw)
	api.GET("/schedules", schedules.List)
	api.GET("/schedules/:id", schedules.GetByID)
	api.DELETE("/schedules/:id", schedules.Delete)
	api.GET("/instances", instances.List)

	r.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, checker.Liveness(c.Request.Context()))
	})
	r.GET("/ready", func(c *gin.Context) {
		result := checker.Readiness(c.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})

	return r
}
