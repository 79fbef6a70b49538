package gateway

import (
	"net/http"

	"vrecorder/internal/auth"

	"github.com/gin-gonic/gin"
)

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	status, err := h.auth.Status(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{User: user, Session: status})
}

// Register handles POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.auth.Register(c.Request.Context(), req); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "registration successful, please log in",
		"redirect": LoginPath,
	})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "logged out",
		"redirect": LoginPath,
	})
}

// Session handles GET /session. It applies the expiry policy, so an
// expired session is reported (and removed) here too.
func (h *Handler) Session(c *gin.Context) {
	ctx := c.Request.Context()

	res, err := h.auth.Check(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	status, err := h.auth.Status(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Status: status, Reason: res.Reason})
}

// RefreshSession handles POST /session/refresh
func (h *Handler) RefreshSession(c *gin.Context) {
	ctx := c.Request.Context()

	ok, err := h.auth.Refresh(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:    "please log in",
			Code:     "LOGIN_REQUIRED",
			Redirect: LoginPath,
		})
		return
	}

	status, err := h.auth.Status(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
