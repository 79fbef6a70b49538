package gateway

import (
	"context"
	"errors"
	"net/http"

	"vrecorder/internal/model"
	"vrecorder/internal/schedule"

	"github.com/gin-gonic/gin"
)

// Schedule handles GET /schedule?date=YYYY-MM-DD. Without a date the
// currently selected day is reloaded.
func (h *Handler) Schedule(c *gin.Context) {
	ctx := c.Request.Context()

	var err error
	if date := c.Query("date"); date != "" {
		day, parseErr := schedule.ParseDateKey(date, h.nav.Selected().Location())
		if parseErr != nil {
			badRequest(c, parseErr)
			return
		}
		err = h.nav.SelectDate(ctx, day)
	} else {
		err = h.nav.Load(ctx)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.nav.Snapshot())
}

// Navigate handles POST /schedule/navigate
func (h *Handler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dir, err := schedule.ParseDirection(req.Direction)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.nav.Navigate(c.Request.Context(), dir); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.nav.Snapshot())
}

// StartService handles POST /appointments/:id/start. The response tells
// the front end to open the recording screen.
func (h *Handler) StartService(c *gin.Context) {
	id := c.Param("id")

	a, err := h.nav.StartService(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, TransitionResponse{
		Appointment: a,
		Next:        "/recording/" + a.ID,
	})
}

// CompleteService handles POST /appointments/:id/complete
func (h *Handler) CompleteService(c *gin.Context) {
	h.confirmed(c, h.nav.CompleteService)
}

// CancelAppointment handles POST /appointments/:id/cancel
func (h *Handler) CancelAppointment(c *gin.Context) {
	h.confirmed(c, h.nav.CancelAppointment)
}

type confirmedAction func(ctx context.Context, id string, confirm schedule.ConfirmFunc) (*model.Appointment, error)

// confirmed runs a transition gated on the request's confirm flag. An
// unconfirmed request gets the prompt back so the page can ask the user.
func (h *Handler) confirmed(c *gin.Context, action confirmedAction) {
	var req ConfirmRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	var prompt string
	a, err := action(c.Request.Context(), c.Param("id"), func(p string) bool {
		prompt = p
		return req.Confirm
	})
	if errors.Is(err, schedule.ErrNotConfirmed) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:  err.Error(),
			Code:   "CONFIRMATION_REQUIRED",
			Prompt: prompt,
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, TransitionResponse{Appointment: a})
}
