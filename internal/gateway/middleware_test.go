package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"vrecorder/internal/session"

	"github.com/gin-gonic/gin"
)

// Mock session checker for testing
type mockChecker struct {
	checkFunc func(ctx context.Context) (session.Result, error)
}

func (m *mockChecker) Check(ctx context.Context) (session.Result, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx)
	}
	return session.Result{Valid: true}, nil
}

func newMiddlewareRouter(checker SessionChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SessionAuthMiddleware(checker))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return r
}

func TestSessionAuthMiddleware_ValidSession(t *testing.T) {
	r := newMiddlewareRouter(&mockChecker{})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Session-Refreshed") != "" {
		t.Error("Expected no refresh header for a session inside its window")
	}
}

func TestSessionAuthMiddleware_AutoRefresh(t *testing.T) {
	r := newMiddlewareRouter(&mockChecker{
		checkFunc: func(ctx context.Context) (session.Result, error) {
			return session.Result{Valid: true, Reason: session.ReasonAutoRefresh}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Session-Refreshed") != "true" {
		t.Error("Expected X-Session-Refreshed header")
	}
}

func TestSessionAuthMiddleware_Rejections(t *testing.T) {
	reasons := []session.Reason{
		session.ReasonNoSession,
		session.ReasonSessionExpired,
		session.ReasonRememberMeExpired,
	}

	for _, reason := range reasons {
		t.Run(string(reason), func(t *testing.T) {
			r := newMiddlewareRouter(&mockChecker{
				checkFunc: func(ctx context.Context) (session.Result, error) {
					return session.Result{Reason: reason}, nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("Expected status 401, got %d", w.Code)
			}

			var response ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Reason != string(reason) {
				t.Errorf("Expected reason %s, got %s", reason, response.Reason)
			}
			if response.Redirect != "/login" {
				t.Errorf("Expected redirect to /login, got %q", response.Redirect)
			}
		})
	}
}

func TestSessionAuthMiddleware_StoreError(t *testing.T) {
	r := newMiddlewareRouter(&mockChecker{
		checkFunc: func(ctx context.Context) (session.Result, error) {
			return session.Result{}, errors.New("redis unavailable")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	generated := w.Header().Get("X-Request-ID")
	if generated == "" || w.Body.String() != generated {
		t.Errorf("Expected generated request id echoed, header=%q body=%q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") != "client-supplied" {
		t.Errorf("Expected client request id kept, got %q", w.Header().Get("X-Request-ID"))
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytesBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(LoggingMiddleware(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	want := map[string]string{"/ok": "INFO", "/missing": "WARN", "/boom": "ERROR"}
	for path, level := range want {
		buf.lines = nil
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))

		if len(buf.lines) != 1 {
			t.Fatalf("%s: expected one log line, got %d", path, len(buf.lines))
		}
		var entry map[string]any
		if err := json.Unmarshal(buf.lines[0], &entry); err != nil {
			t.Fatalf("%s: invalid log line: %v", path, err)
		}
		if entry["level"] != level || entry["path"] != path {
			t.Errorf("%s: expected level %s, got %v", path, level, entry)
		}
	}
}

// bytesBuffer collects one slice per log record
type bytesBuffer struct {
	lines [][]byte
}

func (b *bytesBuffer) Write(p []byte) (int, error) {
	b.lines = append(b.lines, append([]byte(nil), p...))
	return len(p), nil
}

var _ io.Writer = (*bytesBuffer)(nil)
