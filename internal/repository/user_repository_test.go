package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzurek/ward-roster-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "ward", "worker_name", "active", "last_login", "created_at", "updated_at"}).
		AddRow("1", "basia@ward.example", "hash", "Basia", string(models.RoleCoordinator), "A", nil, true, now, now, now)
}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, ward, worker_name, active, last_login, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("basia@ward.example").
		WillReturnRows(userRows())

	user, err := repo.FindByEmail(context.Background(), "basia@ward.example")
	require.NoError(t, err)
	assert.Equal(t, "basia@ward.example", user.Email)
	assert.Equal(t, "A", user.Ward)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByWorkerName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "ward", "worker_name", "active", "last_login", "created_at", "updated_at"}).
		AddRow("2", "ola@ward.example", "hash", "Ola", string(models.RoleViewer), "A", "Ola", true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, ward, worker_name, active, last_login, created_at, updated_at FROM users WHERE worker_name = $1 LIMIT 1")).
		WithArgs("Ola").
		WillReturnRows(rows)

	user, err := repo.FindByWorkerName(context.Background(), "Ola")
	require.NoError(t, err)
	require.NotNil(t, user.WorkerName)
	assert.Equal(t, "Ola", *user.WorkerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, ward, worker_name, active, last_login, created_at, updated_at FROM users WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(userRows())

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1")).WillReturnRows(countRows)

	users, total, err := repo.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersFiltersByWard(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, ward, worker_name, active, last_login, created_at, updated_at FROM users WHERE 1=1 AND ward = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("A").
		WillReturnRows(userRows())

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND ward = $1")).
		WithArgs("A").
		WillReturnRows(countRows)

	users, _, err := repo.List(context.Background(), models.UserFilter{Ward: "A"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "A", users[0].Ward)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserInsertsWardColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	worker := "Ola"
	user := &models.User{Email: "ola@ward.example", FullName: "Ola", Role: models.RoleViewer, Ward: "A", WorkerName: &worker, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteClearsWorkerLink(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = FALSE, worker_name = NULL, updated_at = $2 WHERE id = $1")).
		WithArgs("1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
