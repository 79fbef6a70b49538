package gateway

import (
	"errors"
	"log/slog"
	"net/http"

	"vrecorder/internal/api"
	"vrecorder/internal/auth"
	"vrecorder/internal/schedule"
	"vrecorder/internal/visits"

	"github.com/gin-gonic/gin"
)

// Handler serves the mobile web front end
type Handler struct {
	auth   *auth.Service
	nav    *schedule.Navigator
	visits *visits.Service
	logger *slog.Logger
}

// NewHandler creates a handler over the shared client core
func NewHandler(authSvc *auth.Service, nav *schedule.Navigator, visitSvc *visits.Service, logger *slog.Logger) *Handler {
	return &Handler{
		auth:   authSvc,
		nav:    nav,
		visits: visitSvc,
		logger: logger,
	}
}

// fail writes err as JSON. Errors from the backend pass through the auth
// boundary first, so a rejected token always ends at the login page.
func (h *Handler) fail(c *gin.Context, err error) {
	err = h.auth.Guard(c.Request.Context(), err)
	c.Error(err)

	var httpErr *api.HTTPError
	switch {
	case errors.Is(err, auth.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:    err.Error(),
			Code:     "LOGIN_REQUIRED",
			Redirect: LoginPath,
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CREDENTIALS",
		})
	case errors.As(err, &httpErr):
		c.JSON(httpErr.Status, ErrorResponse{
			Error: httpErr.Message,
			Code:  "BACKEND_ERROR",
		})
	case errors.Is(err, schedule.ErrNotConfirmed):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "CONFIRMATION_REQUIRED",
		})
	case errors.Is(err, schedule.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_TRANSITION",
		})
	case errors.Is(err, schedule.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, visits.ErrInvalidNote):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	case errors.Is(err, visits.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: err.Error(),
			Code:  "STORAGE_DISABLED",
		})
	default:
		h.logger.Error("Unhandled error",
			"request_id", c.GetString("request_id"),
			"error", err.Error(),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal error",
			Code:  "INTERNAL",
		})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	storage := "disabled"
	if h.visits.StorageEnabled() {
		storage = "healthy"
		if err := h.visits.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "vrecorder",
				"storage": "unhealthy",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vrecorder",
		"storage": storage,
	})
}
