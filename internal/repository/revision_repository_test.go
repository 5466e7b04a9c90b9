package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzurek/ward-roster-api/internal/models"
	apperrors "github.com/mzurek/ward-roster-api/pkg/errors"
)

func sampleMonth() models.MonthDataModel {
	key := models.ScheduleKey{Month: 1, Year: 2021}
	return models.MonthDataModel{
		ScheduleKey: key,
		Shifts:      map[string][]models.ShiftCode{"Anna": {models.ShiftDay}},
		MonthInfo:   models.MonthInfo{Dates: []int{1}},
		EmployeeInfo: models.WorkersInfo{
			Type: map[string]models.WorkerType{"Anna": models.WorkerTypeNurse},
		},
	}
}

func TestRevisionGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	month := sampleMonth()
	key := month.ScheduleKey.RevisionKey(models.RevisionActual)
	payload, err := json.Marshal(month)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"revision_key", "month", "year", "kind", "payload", "rev", "updated_at"}).
		AddRow(string(key), 1, 2021, "actual", payload, int64(3), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT revision_key, month, year, kind, payload, rev, updated_at\nFROM month_revisions WHERE revision_key = $1")).
		WithArgs(string(key)).
		WillReturnRows(rows)

	stored, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, month.Shifts, stored.Shifts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionGetMissingIsNil(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	mock.ExpectQuery("SELECT revision_key").
		WithArgs("1_2021_actual").
		WillReturnError(sql.ErrNoRows)

	stored, err := repo.Get(context.Background(), models.RevisionKey("1_2021_actual"))
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionPutInsertsNewRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	month := sampleMonth()
	key := month.ScheduleKey.RevisionKey(models.RevisionPrimary)

	mock.ExpectQuery("SELECT rev FROM month_revisions").
		WithArgs(string(key)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO month_revisions").
		WithArgs(string(key), 1, 2021, "primary", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Put(context.Background(), key, month))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionPutUpdatesExistingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	month := sampleMonth()
	key := month.ScheduleKey.RevisionKey(models.RevisionPrimary)

	mock.ExpectQuery("SELECT rev FROM month_revisions").
		WithArgs(string(key)).
		WillReturnRows(sqlmock.NewRows([]string{"rev"}).AddRow(int64(7)))
	mock.ExpectExec("UPDATE month_revisions SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), string(key), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(context.Background(), key, month))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionPutConcurrentWriteConflicts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	month := sampleMonth()
	key := month.ScheduleKey.RevisionKey(models.RevisionPrimary)

	mock.ExpectQuery("SELECT rev FROM month_revisions").
		WithArgs(string(key)).
		WillReturnRows(sqlmock.NewRows([]string{"rev"}).AddRow(int64(7)))
	mock.ExpectExec("UPDATE month_revisions SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), string(key), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Put(context.Background(), key, month)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrRevisionConflict.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionPutRejectsMalformedKey(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	err := repo.Put(context.Background(), models.RevisionKey("not-a-key"), sampleMonth())
	assert.Error(t, err)
}

func TestRevisionListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRevisionRepository(db)

	month := sampleMonth()
	payload, err := json.Marshal(month)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"revision_key", "month", "year", "kind", "payload", "rev", "updated_at"}).
		AddRow("1_2021_primary", 1, 2021, "primary", payload, int64(1), time.Now()).
		AddRow("1_2021_actual", 1, 2021, "actual", payload, int64(2), time.Now())
	mock.ExpectQuery("SELECT revision_key, month, year, kind, payload, rev, updated_at\nFROM month_revisions ORDER BY").
		WillReturnRows(rows)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Contains(t, all, models.RevisionKey("1_2021_primary"))
	assert.Contains(t, all, models.RevisionKey("1_2021_actual"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
