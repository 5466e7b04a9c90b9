package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzurek/ward-roster-api/internal/dto"
	"github.com/mzurek/ward-roster-api/internal/models"
	"github.com/mzurek/ward-roster-api/internal/service"
	appErrors "github.com/mzurek/ward-roster-api/pkg/errors"
	"github.com/mzurek/ward-roster-api/pkg/response"
)

type exportJobService interface {
	CreateJob(ctx context.Context, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes asynchronous export endpoints.
type ExportHandler struct {
	service exportJobService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportJobService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Create godoc
// @Summary Enqueue a schedule export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	claims := claimsFromContext(c)
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	job, err := h.service.CreateJob(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	actorID := ""
	role := models.UserRole("")
	if claims != nil {
		actorID = claims.UserID
		role = claims.Role
	}
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("id"), actorID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a rendered export via signed token
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Download token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if download.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", contentType)
	c.File(download.File.Name())
}
