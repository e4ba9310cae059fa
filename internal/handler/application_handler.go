package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/olympiad-applications/internal/models"
	"github.com/noah-isme/olympiad-applications/internal/service"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
	"github.com/noah-isme/olympiad-applications/pkg/response"
)

type applicationService interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, bool, error)
	Summary(ctx context.Context, filter models.ApplicationFilter) (models.StatusSummary, error)
	Get(ctx context.Context, id int64) (*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, req service.UpdateStatusRequest) (*models.Application, error)
	UpdateNotes(ctx context.Context, id int64, req service.UpdateNotesRequest) (*models.Application, error)
}

type applicationExporter interface {
	Export(ctx context.Context, filter models.ApplicationFilter, format service.ExportFormat) (*service.ExportFile, error)
}

// ApplicationHandler exposes olympiad application endpoints.
type ApplicationHandler struct {
	applications applicationService
	exports      applicationExporter
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications applicationService, exports applicationExporter) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, exports: exports}
}

// Register mounts the application routes on group.
func (h *ApplicationHandler) Register(group gin.IRoutes) {
	group.GET("/applications", h.List)
	group.GET("/applications/summary", h.Summary)
	group.GET("/applications/export", h.Export)
	group.GET("/applications/:id", h.Get)
	group.PATCH("/applications/:id/status", h.UpdateStatus)
	group.PATCH("/applications/:id/notes", h.UpdateNotes)
}

func filterFromQuery(c *gin.Context) models.ApplicationFilter {
	return models.ApplicationFilter{
		Search: c.Query("search"),
		Status: strings.TrimSpace(c.Query("status")),
	}
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "application id must be a positive integer")
	}
	return id, nil
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param status query string false "all, approved, pending or rejected (lowercase, exact)"
// @Param search query string false "Matches student name, CI or area"
// @Success 200 {array} models.Application
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	apps, cached, err := h.applications.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	response.Collection(c, apps)
}

// Summary godoc
// @Summary Count applications per status
// @Tags Applications
// @Produce json
// @Param status query string false "Status filter (lowercase, exact)"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /applications/summary [get]
func (h *ApplicationHandler) Summary(c *gin.Context) {
	summary, err := h.applications.Summary(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Get godoc
// @Summary Get application detail
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	app, err := h.applications.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// UpdateStatus godoc
// @Summary Change application status
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body service.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	app, err := h.applications.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// UpdateNotes godoc
// @Summary Change application notes
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body service.UpdateNotesRequest true "Notes payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/notes [patch]
func (h *ApplicationHandler) UpdateNotes(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notes payload"))
		return
	}
	app, err := h.applications.UpdateNotes(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// Export godoc
// @Summary Export applications
// @Tags Applications
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter (lowercase, exact)"
// @Param search query string false "Search term"
// @Success 200 {file} file
// @Router /applications/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(c.Request.Context(), filterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
