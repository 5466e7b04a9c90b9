package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mzurek/ward-roster-api/internal/dto"
	"github.com/mzurek/ward-roster-api/internal/middleware"
	"github.com/mzurek/ward-roster-api/internal/models"
	"github.com/mzurek/ward-roster-api/internal/service"
	appErrors "github.com/mzurek/ward-roster-api/pkg/errors"
	"github.com/mzurek/ward-roster-api/pkg/response"
)

type rosterService interface {
	Assemble(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error)
	Replace(ctx context.Context, key models.ScheduleKey, t models.RevisionType, schedule models.ScheduleDataModel) (*service.ScheduleView, error)
	ApplyEdit(ctx context.Context, key models.ScheduleKey, t models.RevisionType, edit service.ScheduleEdit) (*service.ScheduleView, error)
	Undo(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error)
	Redo(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error)
	Save(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error)
}

// RosterHandler exposes month schedule endpoints.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler builds a new handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// Get godoc
// @Summary Get a month schedule view
// @Tags Schedules
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param revision query string false "Revision type (primary or actual)" default(actual)
// @Success 200 {object} response.Envelope
// @Router /schedules/{year}/{month} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	key, revision, err := scheduleTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Assemble(c.Request.Context(), key, revision)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, view.FromCache)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Save godoc
// @Summary Save a month schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param revision query string false "Revision type (primary or actual)" default(actual)
// @Param payload body dto.SaveScheduleRequest false "Optional replacement schedule"
// @Success 200 {object} response.Envelope
// @Router /schedules/{year}/{month} [put]
func (h *RosterHandler) Save(c *gin.Context) {
	key, revision, err := scheduleTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SaveScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
			return
		}
	}
	ctx := c.Request.Context()
	if req.Schedule != nil {
		if _, err := h.service.Replace(ctx, key, revision, *req.Schedule); err != nil {
			response.Error(c, err)
			return
		}
	}
	view, err := h.service.Save(ctx, key, revision)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Edit godoc
// @Summary Apply a single schedule edit
// @Tags Schedules
// @Accept json
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param revision query string false "Revision type (primary or actual)" default(actual)
// @Param payload body dto.EditRequest true "Edit payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/{year}/{month}/edits [post]
func (h *RosterHandler) Edit(c *gin.Context) {
	key, revision, err := scheduleTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}
	edit, err := toScheduleEdit(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.ApplyEdit(c.Request.Context(), key, revision, edit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Undo godoc
// @Summary Undo the last schedule edit
// @Tags Schedules
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param revision query string false "Revision type (primary or actual)" default(actual)
// @Success 200 {object} response.Envelope
// @Router /schedules/{year}/{month}/undo [post]
func (h *RosterHandler) Undo(c *gin.Context) {
	key, revision, err := scheduleTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Undo(c.Request.Context(), key, revision)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Redo godoc
// @Summary Redo a previously undone schedule edit
// @Tags Schedules
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param revision query string false "Revision type (primary or actual)" default(actual)
// @Success 200 {object} response.Envelope
// @Router /schedules/{year}/{month}/redo [post]
func (h *RosterHandler) Redo(c *gin.Context) {
	key, revision, err := scheduleTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Redo(c.Request.Context(), key, revision)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// scheduleTarget resolves the month key and revision type addressed by a
// request. Path months are 1-12; keys store them 0-based.
func scheduleTarget(c *gin.Context) (models.ScheduleKey, models.RevisionType, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		return models.ScheduleKey{}, "", appErrors.Clone(appErrors.ErrValidation, "invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return models.ScheduleKey{}, "", appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	revision := models.RevisionType(c.DefaultQuery("revision", string(models.RevisionActual)))
	if !revision.Valid() {
		return models.ScheduleKey{}, "", appErrors.Clone(appErrors.ErrValidation, "revision must be primary or actual")
	}
	return models.NewScheduleKey(month-1, year), revision, nil
}

func toScheduleEdit(req dto.EditRequest) (service.ScheduleEdit, error) {
	day := 0
	if req.Day != nil {
		day = *req.Day
	}
	switch req.Type {
	case dto.EditChangeShift:
		if req.Worker == "" || req.Day == nil || req.Code == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "change_shift requires worker, day and code")
		}
		return service.ChangeShiftEdit{Worker: req.Worker, Day: day, Code: req.Code}, nil
	case dto.EditAddWorker:
		if req.Worker == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "add_worker requires worker")
		}
		norm := 0
		if req.Norm != nil {
			norm = *req.Norm
		}
		return service.AddWorkerEdit{Worker: req.Worker, Type: req.Kind, Contract: req.Contract, Norm: norm, Team: req.Team}, nil
	case dto.EditRemoveWorker:
		if req.Worker == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "remove_worker requires worker")
		}
		return service.RemoveWorkerEdit{Worker: req.Worker}, nil
	case dto.EditUpdateNorm:
		if req.Worker == "" || req.Norm == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "update_norm requires worker and norm")
		}
		return service.UpdateWorkerNormEdit{Worker: req.Worker, Norm: *req.Norm}, nil
	case dto.EditToggleFrozen:
		if req.Worker == "" || req.Day == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "toggle_frozen requires worker and day")
		}
		return service.ToggleFrozenEdit{Worker: req.Worker, Day: day}, nil
	case dto.EditSetChildren:
		if req.Day == nil || req.Value == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "set_children requires day and value")
		}
		return service.SetChildrenNumberEdit{Day: day, Count: *req.Value}, nil
	case dto.EditSetExtraWorker:
		if req.Day == nil || req.Value == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "set_extra_workers requires day and value")
		}
		return service.SetExtraWorkersEdit{Day: day, Count: *req.Value}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported edit type")
	}
}
