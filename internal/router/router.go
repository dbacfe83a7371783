package router

import (
	"github.com/gin-gonic/gin"

	"claimcheck/internal/config"
	"claimcheck/internal/handler"
	"claimcheck/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	claimH *handler.ClaimHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Claim routes
	claims := v1.Group("/claims")
	claims.POST("/process", claimH.Process)
	claims.POST("/export", claimH.ExportCSV)
	claims.GET("/:request_id/archive", claimH.GetArchive)

	// Decision audit routes
	decisions := v1.Group("/decisions")
	decisions.GET("", claimH.ListDecisions)
	decisions.GET("/:request_id", claimH.GetDecision)

	return r
}
