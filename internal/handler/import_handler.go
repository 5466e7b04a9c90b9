package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzurek/ward-roster-api/internal/dto"
	"github.com/mzurek/ward-roster-api/internal/models"
	"github.com/mzurek/ward-roster-api/internal/service"
	appErrors "github.com/mzurek/ward-roster-api/pkg/errors"
	"github.com/mzurek/ward-roster-api/pkg/response"
)

type importParser interface {
	Parse(key models.ScheduleKey, filename string, r io.Reader) (*service.ImportResult, error)
}

type monthImporter interface {
	ImportMonth(ctx context.Context, month models.MonthDataModel, t models.RevisionType) (*service.ScheduleView, error)
}

// ImportHandler accepts uploaded shift tables.
type ImportHandler struct {
	parser importParser
	roster monthImporter
}

// NewImportHandler builds a new handler.
func NewImportHandler(parser importParser, roster monthImporter) *ImportHandler {
	return &ImportHandler{parser: parser, roster: roster}
}

// Upload godoc
// @Summary Import a month schedule from an uploaded shift table
// @Tags Schedules
// @Accept multipart/form-data
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param revision query string false "Revision type (primary or actual)" default(primary)
// @Param file formData file true "CSV shift table"
// @Success 200 {object} response.Envelope
// @Router /schedules/{year}/{month}/import [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	key, revision, err := importTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing file upload"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer file.Close()

	result, err := h.parser.Parse(key, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.roster.ImportMonth(c.Request.Context(), result.Month, revision); err != nil {
		response.Error(c, err)
		return
	}

	issues := make([]dto.ImportIssue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, dto.ImportIssue{Row: issue.Row, Column: issue.Column, Message: issue.Message})
	}
	response.JSON(c, http.StatusOK, dto.ImportResponse{Month: result.Month, Issues: issues}, nil)
}

// importTarget mirrors scheduleTarget but defaults to the primary revision:
// uploaded tables are templates unless stated otherwise.
func importTarget(c *gin.Context) (models.ScheduleKey, models.RevisionType, error) {
	key, _, err := scheduleTarget(c)
	if err != nil {
		return models.ScheduleKey{}, "", err
	}
	revision := models.RevisionType(c.DefaultQuery("revision", string(models.RevisionPrimary)))
	if !revision.Valid() {
		return models.ScheduleKey{}, "", appErrors.Clone(appErrors.ErrValidation, "revision must be primary or actual")
	}
	return key, revision, nil
}
