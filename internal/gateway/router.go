// Package gateway is the device-local HTTP surface for the mobile web
// front end. It serves login, session status, the day schedule and visit
// notes, and sends the browser to the login page whenever the session or
// the backend token is no longer valid.
package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the gateway router
func SetupRouter(h *Handler, corsOrigins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Session-Refreshed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Health)
	r.GET("/session", h.Session)

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}

	protected := r.Group("")
	protected.Use(SessionAuthMiddleware(h.auth))
	{
		protected.POST("/session/refresh", h.RefreshSession)

		protected.GET("/schedule", h.Schedule)
		protected.POST("/schedule/navigate", h.Navigate)

		appointments := protected.Group("/appointments/:id")
		{
			appointments.POST("/start", h.StartService)
			appointments.POST("/complete", h.CompleteService)
			appointments.POST("/cancel", h.CancelAppointment)
			appointments.POST("/notes", h.SaveNote)
		}

		protected.GET("/recordings/*key", h.RecordingURL)
	}

	return r
}
