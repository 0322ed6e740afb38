// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"kairos/internal/http/handlers"
	"kairos/internal/http/middleware"
	"kairos/internal/observability"
)

// RouterDeps carries the services the routes delegate to.
type RouterDeps struct {
	Stages  handlers.StageService
	Planner handlers.PlanService
	Usage   handlers.UsageService // nil when no database is configured
	Metrics *prometheus.Registry
	Logger  zerolog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(deps.Logger), middleware.Recovery(deps.Logger))

	h := handlers.NewPlannerHandler(deps.Stages, deps.Planner, deps.Usage)
	api := r.Group("/api")
	api.POST("/stage0", h.Stage0)
	api.POST("/stage1", h.Stage1)
	api.POST("/stage2", h.Stage2)
	api.POST("/stage3", h.Stage3)
	api.POST("/context", h.Context)
	api.POST("/plan", h.Plan)
	api.GET("/usage/:destination", h.Usage)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(observability.MetricsHandler(deps.Metrics)))
	}

	return r
}
