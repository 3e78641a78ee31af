package main

import (
	"context"
	"net/http"
	"os"
	"time"

	cartHandler "saloncart-backend/internal/domains/cart/handler"
	"saloncart-backend/internal/shared/middleware"
	"saloncart-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	// Session middleware configuration
	sessionConfig := middleware.DefaultSessionConfig()
	if os.Getenv("APP_ENV") == "development" {
		sessionConfig.CookieSecure = false
	}

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		// Cart routes - every consumer (checkout pages, booking
		// confirmation flow) goes through these
		cart := v1.Group("", middleware.Session(sessionConfig))
		cartHandler.RegisterRoutes(cart, c.CartHandler)
	}

	return router
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"backend":   appCtx.Config.Cart.Backend,
		}

		// Check redis when it is the active backend
		if appCtx.Redis != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Redis.Connect(ctx); err != nil {
				health["status"] = "degraded"
				health["redis"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, health)
				return
			}
		}

		c.JSON(http.StatusOK, health)
	}
}
