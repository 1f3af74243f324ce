package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-field-mesh/internal/aggregate"
	"github.com/mr1hm/go-field-mesh/internal/report"
)

const (
	recentDisasters   = 5
	recentAgriculture = 3
	recentAid         = 10

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h *Handler) stats(c *gin.Context) {
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, aggregate.Summarize(snap.Disasters, snap.Agriculture, snap.Aid))
}

func (h *Handler) priority(c *gin.Context) {
	limit := aggregate.RescueQueueSize
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}
	c.JSON(http.StatusOK, aggregate.RescuePriority(h.store.Snapshot().Disasters, limit))
}

func (h *Handler) recent(c *gin.Context) {
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"disasterSurveys":    aggregate.Recent(snap.Disasters, recentDisasters),
		"agricultureSurveys": aggregate.Recent(snap.Agriculture, recentAgriculture),
		"aidDistributions":   aggregate.Recent(snap.Aid, recentAid),
	})
}

func (h *Handler) mapMarkers(c *gin.Context) {
	body, err := aggregate.MarshalMapMarkers(h.store.Snapshot().Disasters)
	if err != nil {
		slog.Error("failed to encode map markers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build map"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}

func (h *Handler) hospitalStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.hospitals)
}

// stream sends every newly submitted record as a "record" server-sent event
// until the client goes away or the broadcaster closes.
func (h *Handler) stream(c *gin.Context) {
	id, events := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	slog.Debug("stream subscriber connected", "subscriber", id)
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("record", e)
			return true
		case <-ctx.Done():
			return false
		}
	})
	slog.Debug("stream subscriber disconnected", "subscriber", id)
}

func (h *Handler) exportXLSX(c *gin.Context) {
	h.export(c, "xlsx", xlsxContentType, h.excel.Generate)
}

func (h *Handler) exportPDF(c *gin.Context) {
	h.export(c, "pdf", "application/pdf", h.pdf.Generate)
}

func (h *Handler) export(c *gin.Context, ext, contentType string, generate func(report.Dashboard) ([]byte, error)) {
	now := h.now()
	data, err := generate(report.Build(h.store.Snapshot(), now))
	if err != nil {
		slog.Error("failed to generate report", "format", ext, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	filename := fmt.Sprintf("field-mesh-%s.%s", now.UTC().Format("20060102-1504"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
