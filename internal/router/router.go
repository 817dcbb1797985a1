package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ironsheep/form-omr/internal/handler"
	"github.com/ironsheep/form-omr/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	omrH *handler.OMRHandler,
	orderH *handler.OrderHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health check
	r.GET("/health", healthH.Liveness)

	v1 := r.Group("/api/v1")

	// Mark detection
	omrRoutes := v1.Group("/omr")
	omrRoutes.GET("/layout", omrH.Layout)
	omrRoutes.POST("/process", omrH.Process)

	// Order creation
	orders := v1.Group("/orders")
	orders.POST("/from-form", orderH.FromForm)

	return r
}
