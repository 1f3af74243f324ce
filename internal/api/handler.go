package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-field-mesh/internal/auth"
	"github.com/mr1hm/go-field-mesh/internal/feed"
	"github.com/mr1hm/go-field-mesh/internal/intake"
	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/report"
	"github.com/mr1hm/go-field-mesh/internal/store"
)

type Submitter interface {
	SubmitDisaster(ctx context.Context, f intake.DisasterForm) (models.DisasterSurvey, error)
	SubmitAgriculture(ctx context.Context, f intake.AgricultureForm) (models.AgricultureSurvey, error)
	SubmitAid(ctx context.Context, f intake.AidForm) (models.AidDistribution, error)
}

type Handler struct {
	store       *store.Store
	intake      Submitter
	session     *auth.Session
	tokens      *auth.Tokens
	broadcaster *feed.Broadcaster
	hospitals   []models.HospitalStatus
	excel       *report.ExcelGenerator
	pdf         *report.PDFGenerator
	now         func() time.Time
}

func NewHandler(st *store.Store, submitter Submitter, session *auth.Session, tokens *auth.Tokens, broadcaster *feed.Broadcaster, hospitals []models.HospitalStatus) *Handler {
	return &Handler{
		store:       st,
		intake:      submitter,
		session:     session,
		tokens:      tokens,
		broadcaster: broadcaster,
		hospitals:   hospitals,
		excel:       report.NewExcelGenerator(),
		pdf:         report.NewPDFGenerator(),
		now:         time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/login", h.login)
	authGroup.POST("/logout", h.logout)

	field := r.Group("/api/field", h.requireRole(models.RoleField))
	field.POST("/disaster", h.submitDisaster)
	field.POST("/agriculture", h.submitAgriculture)
	field.POST("/aid", h.submitAid)
	field.GET("/recent", h.recent)

	hq := r.Group("/api/hq", h.requireRole(models.RoleHQ))
	hq.GET("/stats", h.stats)
	hq.GET("/priority", h.priority)
	hq.GET("/recent", h.recent)
	hq.GET("/map", h.mapMarkers)
	hq.GET("/hospitals", h.hospitalStatus)
	hq.GET("/stream", h.stream)
	hq.GET("/export.xlsx", h.exportXLSX)
	hq.GET("/export.pdf", h.exportPDF)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	PIN     string            `json:"pin" binding:"required"`
	Officer *auth.OfficerInfo `json:"officer,omitempty"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pin is required"})
		return
	}

	role, err := h.session.Login(c.Request.Context(), req.PIN, req.Officer)
	if errors.Is(err, auth.ErrInvalidPIN) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access Denied - Invalid PIN"})
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	officer, _ := h.session.Officer()
	token, err := h.tokens.Issue(role, officer)
	if err != nil {
		slog.Error("failed to issue session token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":    role,
		"token":   token,
		"officer": officer,
	})
}

// logout clears the device role. Issued tokens stay valid until they expire.
func (h *Handler) logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
