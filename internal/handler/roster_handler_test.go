package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzurek/ward-roster-api/internal/dto"
	"github.com/mzurek/ward-roster-api/internal/models"
	"github.com/mzurek/ward-roster-api/internal/service"
	appErrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

type rosterServiceMock struct {
	key      models.ScheduleKey
	revision models.RevisionType
	edit     service.ScheduleEdit
	replaced *models.ScheduleDataModel
	saved    bool
	view     *service.ScheduleView
	err      error
}

func (m *rosterServiceMock) Assemble(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error) {
	m.key, m.revision = key, t
	return m.view, m.err
}

func (m *rosterServiceMock) Replace(ctx context.Context, key models.ScheduleKey, t models.RevisionType, schedule models.ScheduleDataModel) (*service.ScheduleView, error) {
	m.replaced = &schedule
	return m.view, m.err
}

func (m *rosterServiceMock) ApplyEdit(ctx context.Context, key models.ScheduleKey, t models.RevisionType, edit service.ScheduleEdit) (*service.ScheduleView, error) {
	m.key, m.revision, m.edit = key, t, edit
	return m.view, m.err
}

func (m *rosterServiceMock) Undo(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error) {
	return m.view, m.err
}

func (m *rosterServiceMock) Redo(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error) {
	return m.view, m.err
}

func (m *rosterServiceMock) Save(ctx context.Context, key models.ScheduleKey, t models.RevisionType) (*service.ScheduleView, error) {
	m.key, m.revision, m.saved = key, t, true
	return m.view, m.err
}

func rosterTestContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func scheduleParams(c *gin.Context, year, month string) {
	c.Params = gin.Params{{Key: "year", Value: year}, {Key: "month", Value: month}}
}

func TestRosterGetResolvesKey(t *testing.T) {
	mock := &rosterServiceMock{view: &service.ScheduleView{}}
	h := NewRosterHandler(mock)

	c, w := rosterTestContext(t, http.MethodGet, "/schedules/2021/2", nil)
	scheduleParams(c, "2021", "2")
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ScheduleKey{Month: 1, Year: 2021}, mock.key, "path months are 1-based")
	assert.Equal(t, models.RevisionActual, mock.revision, "actual is the default revision")
}

func TestRosterGetRevisionQuery(t *testing.T) {
	mock := &rosterServiceMock{view: &service.ScheduleView{}}
	h := NewRosterHandler(mock)

	c, w := rosterTestContext(t, http.MethodGet, "/schedules/2021/2?revision=primary", nil)
	scheduleParams(c, "2021", "2")
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RevisionPrimary, mock.revision)
}

func TestRosterGetValidatesTarget(t *testing.T) {
	h := NewRosterHandler(&rosterServiceMock{view: &service.ScheduleView{}})

	cases := map[string]struct {
		year, month, query string
	}{
		"month zero":     {"2021", "0", ""},
		"month thirteen": {"2021", "13", ""},
		"year garbage":   {"year", "2", ""},
		"bad revision":   {"2021", "2", "?revision=draft"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, w := rosterTestContext(t, http.MethodGet, "/schedules/"+tc.year+"/"+tc.month+tc.query, nil)
			scheduleParams(c, tc.year, tc.month)
			h.Get(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var envelope struct {
				Error *appErrors.Error `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
		})
	}
}

func TestRosterEditDispatchesChangeShift(t *testing.T) {
	mock := &rosterServiceMock{view: &service.ScheduleView{}}
	h := NewRosterHandler(mock)

	day := 13
	c, w := rosterTestContext(t, http.MethodPost, "/schedules/2021/2/edits", dto.EditRequest{
		Type:   dto.EditChangeShift,
		Worker: "Anna",
		Day:    &day,
		Code:   models.ShiftDay,
	})
	scheduleParams(c, "2021", "2")
	h.Edit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	edit, ok := mock.edit.(service.ChangeShiftEdit)
	require.True(t, ok)
	assert.Equal(t, service.ChangeShiftEdit{Worker: "Anna", Day: 13, Code: models.ShiftDay}, edit)
}

func TestRosterEditRejectsIncompletePayload(t *testing.T) {
	h := NewRosterHandler(&rosterServiceMock{view: &service.ScheduleView{}})

	c, w := rosterTestContext(t, http.MethodPost, "/schedules/2021/2/edits", dto.EditRequest{
		Type:   dto.EditChangeShift,
		Worker: "Anna",
	})
	scheduleParams(c, "2021", "2")
	h.Edit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterSaveWithReplacementSchedule(t *testing.T) {
	mock := &rosterServiceMock{view: &service.ScheduleView{}}
	h := NewRosterHandler(mock)

	schedule := models.ScheduleDataModel{
		ScheduleInfo: models.ScheduleInfo{UUID: "abc", MonthNumber: 1, Year: 2021},
	}
	c, w := rosterTestContext(t, http.MethodPut, "/schedules/2021/2", dto.SaveScheduleRequest{Schedule: &schedule})
	scheduleParams(c, "2021", "2")
	h.Save(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.replaced, "payload schedule is installed before saving")
	assert.Equal(t, "abc", mock.replaced.ScheduleInfo.UUID)
	assert.True(t, mock.saved)
}

func TestRosterSaveWithoutBodySavesCurrent(t *testing.T) {
	mock := &rosterServiceMock{view: &service.ScheduleView{}}
	h := NewRosterHandler(mock)

	c, w := rosterTestContext(t, http.MethodPut, "/schedules/2021/2", nil)
	scheduleParams(c, "2021", "2")
	h.Save(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mock.replaced)
	assert.True(t, mock.saved)
}

func TestRosterUndoPropagatesConflict(t *testing.T) {
	mock := &rosterServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "nothing to undo")}
	h := NewRosterHandler(mock)

	c, w := rosterTestContext(t, http.MethodPost, "/schedules/2021/2/undo", nil)
	scheduleParams(c, "2021", "2")
	h.Undo(c)

	assert.Equal(t, appErrors.ErrConflict.Status, w.Code)
}
