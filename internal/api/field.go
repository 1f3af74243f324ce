package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-field-mesh/internal/intake"
)

func (h *Handler) submitDisaster(c *gin.Context) {
	var form intake.DisasterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed survey"})
		return
	}
	survey, err := h.intake.SubmitDisaster(c.Request.Context(), form)
	if err != nil {
		h.submitError(c, err)
		return
	}
	c.JSON(http.StatusCreated, survey)
}

func (h *Handler) submitAgriculture(c *gin.Context) {
	var form intake.AgricultureForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed survey"})
		return
	}
	survey, err := h.intake.SubmitAgriculture(c.Request.Context(), form)
	if err != nil {
		h.submitError(c, err)
		return
	}
	c.JSON(http.StatusCreated, survey)
}

func (h *Handler) submitAid(c *gin.Context) {
	var form intake.AidForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed distribution"})
		return
	}
	aid, err := h.intake.SubmitAid(c.Request.Context(), form)
	if err != nil {
		h.submitError(c, err)
		return
	}
	c.JSON(http.StatusCreated, aid)
}

func (h *Handler) submitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, intake.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, intake.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "intake is shutting down"})
	default:
		officer := ""
		if claims := claimsFrom(c); claims != nil {
			officer = claims.Officer
		}
		slog.Error("submission failed", "path", c.FullPath(), "officer", officer, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save submission"})
	}
}
