package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"vrecorder/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionChecker validates the device session
type SessionChecker interface {
	Check(ctx context.Context) (session.Result, error)
}

// SessionAuthMiddleware rejects requests without a valid session. A
// remembered session that was renewed in place is reported through the
// X-Session-Refreshed header.
func SessionAuthMiddleware(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := checker.Check(c.Request.Context())
		if err != nil {
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to read session",
				Code:  "SESSION_ERROR",
			})
			return
		}

		if !res.Valid {
			c.Set("session_reason", string(res.Reason))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:    "please log in",
				Code:     "LOGIN_REQUIRED",
				Reason:   string(res.Reason),
				Redirect: LoginPath,
			})
			return
		}

		if res.Reason == session.ReasonAutoRefresh {
			c.Set("session_reason", string(res.Reason))
			c.Header("X-Session-Refreshed", "true")
		}

		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for log correlation
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// LoggingMiddleware logs every request with structured attributes
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"response_size", c.Writer.Size(),
		}

		if query := c.Request.URL.RawQuery; query != "" {
			attrs = append(attrs, "query", query)
		}
		if reason := c.GetString("session_reason"); reason != "" {
			attrs = append(attrs, "session_reason", reason)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error("Request failed - server error", attrs...)
		case status >= 400:
			logger.Warn("Request failed - client error", attrs...)
		default:
			logger.Info("Request completed", attrs...)
		}
	}
}
