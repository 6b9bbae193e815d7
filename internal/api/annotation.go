package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/botikaph/annotator-backend/config"
	"github.com/botikaph/annotator-backend/internal/middleware"
	"github.com/botikaph/annotator-backend/internal/service"
	"github.com/botikaph/annotator-backend/internal/types"
)

// AnnotationHandler serves the annotation workspace, the dashboard, entry
// writes and the dataset export.
type AnnotationHandler struct {
	annotations *service.AnnotationService
	population  *service.PopulationService
	export      *service.ExportService
	archive     *config.S3Config
	rateLimiter *middleware.RateLimiter
}

// NewAnnotationHandler creates a new AnnotationHandler instance
func NewAnnotationHandler(
	annotations *service.AnnotationService,
	population *service.PopulationService,
	export *service.ExportService,
	archive *config.S3Config,
	rateLimiter *middleware.RateLimiter,
) *AnnotationHandler {
	return &AnnotationHandler{
		annotations: annotations,
		population:  population,
		export:      export,
		archive:     archive,
		rateLimiter: rateLimiter,
	}
}

// RegisterRoutes registers the annotation routes; the group must already be
// behind AuthMiddleware.
func (h *AnnotationHandler) RegisterRoutes(router *gin.RouterGroup) {
	annotations := router.Group("/annotations")
	{
		annotations.GET("", h.Workspace)
		annotations.GET("/entries", h.Entries)
		annotations.GET("/similar", h.Similar)
		annotations.GET("/export", middleware.RequireAdmin(), h.Export)
		if h.rateLimiter != nil {
			annotations.POST("", h.rateLimiter.RateLimitMiddleware(), h.Create)
		} else {
			annotations.POST("", h.Create)
		}
		annotations.PUT("/:id", h.Update)
	}
}

// Workspace returns everything the annotation form needs: existing entries,
// the population queue, per-inquiry status, and optionally the entry being
// edited.
func (h *AnnotationHandler) Workspace(c *gin.Context) {
	ctx := c.Request.Context()

	entries, err := h.annotations.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list annotation entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workspace"})
		return
	}

	population, err := h.population.Load(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to load population queue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workspace"})
		return
	}

	payload := gin.H{
		"entries":                      entries,
		"population_inquiries":         population.AllInquiries,
		"pending_population_inquiries": population.PendingInquiries,
		"next_population_inquiry":      population.NextInquiry,
		"population_stats":             population.Stats,
		"inquiry_statuses":             service.StatusByInquiry(entries),
		"annotator": gin.H{
			"id":       c.MustGet("user_id"),
			"name":     c.GetString("name"),
			"is_admin": c.GetBool("is_admin"),
		},
	}

	if editParam := c.Query("edit"); editParam != "" {
		id, err := strconv.ParseUint(editParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
			return
		}
		entry, err := h.annotations.Get(ctx, uint(id))
		if err != nil {
			if errors.Is(err, service.ErrEntryNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "annotation entry not found"})
				return
			}
			logrus.WithError(err).Error("failed to load entry for editing")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workspace"})
			return
		}
		payload["editing_entry"] = entry
	}

	c.JSON(http.StatusOK, payload)
}

// Entries returns the dashboard payload: all entries newest first plus the
// filter vocabularies derived from them.
func (h *AnnotationHandler) Entries(c *gin.Context) {
	entries, err := h.annotations.List(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to list annotation entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":              entries,
		"available_labels":     service.AvailableLabels(entries),
		"available_annotators": service.AvailableAnnotators(entries),
	})
}

// Create validates and stores a new annotation entry.
func (h *AnnotationHandler) Create(c *gin.Context) {
	var sub types.AnnotationSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	annotatorID, ok := c.MustGet("user_id").(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	entry, fieldErrs, err := h.annotations.Create(c.Request.Context(), &sub, annotatorID)
	if err != nil {
		logrus.WithError(err).Error("failed to create annotation entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save annotation"})
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrs})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Update re-validates and replaces an existing entry. The original annotator
// is preserved.
func (h *AnnotationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var sub types.AnnotationSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, fieldErrs, err := h.annotations.Update(c.Request.Context(), uint(id), &sub)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "annotation entry not found"})
			return
		}
		logrus.WithError(err).Error("failed to update annotation entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save annotation"})
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fieldErrs})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Similar ranks stored inquiries against the q parameter.
func (h *AnnotationHandler) Similar(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := h.annotations.SearchSimilar(c.Request.Context(), query, limit)
	if err != nil {
		logrus.WithError(err).Error("similar-inquiry search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Export streams the versioned dataset document as a JSON download. Admin
// only; the route group enforces it.
func (h *AnnotationHandler) Export(c *gin.Context) {
	doc, err := h.export.BuildDocument(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to build export document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate export"})
		return
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate export"})
		return
	}

	filename := h.export.Filename()
	if h.archive != nil {
		// Archival is best effort; the download must not depend on S3.
		if err := h.archive.ArchiveExport(c.Request.Context(), filename, body); err != nil {
			logrus.WithError(err).Warn("failed to archive export to S3")
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Data(http.StatusOK, "application/json", body)
}
