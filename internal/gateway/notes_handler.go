package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"vrecorder/internal/visits"

	"github.com/gin-gonic/gin"
)

// SaveNote handles POST /appointments/:id/notes. The form carries the
// note text in "content" and an optional audio file in "audio".
func (h *Handler) SaveNote(c *gin.Context) {
	id := c.Param("id")
	content := c.PostForm("content")

	var rec *visits.Recording
	fh, err := c.FormFile("audio")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// text-only note
	case err != nil:
		badRequest(c, err)
		return
	default:
		f, err := fh.Open()
		if err != nil {
			badRequest(c, fmt.Errorf("failed to read audio: %w", err))
			return
		}
		defer f.Close()

		rec = &visits.Recording{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	saved, err := h.visits.SaveNote(c.Request.Context(), id, content, rec)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// RecordingURL handles GET /recordings/*key
func (h *Handler) RecordingURL(c *gin.Context) {
	link, err := h.visits.RecordingURL(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}
