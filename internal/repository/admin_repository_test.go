package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharinglove/sharinglove-api/internal/models"
)

func newAdminRepoMock(t *testing.T) (*AdminRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { _ = sqlxDB.Close() })
	return NewAdminRepository(sqlxDB), mock
}

func TestAdminRepositoryFindByUsername(t *testing.T) {
	repo, mock := newAdminRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE username = $1")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
			AddRow("admin-1", "admin", "$2a$10$hash", now, now))

	admin, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", admin.ID)
	assert.Equal(t, "$2a$10$hash", admin.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryFindByUsernameMissing(t *testing.T) {
	repo, mock := newAdminRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE username = $1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdminRepositoryUpsertKeepsExistingID(t *testing.T) {
	repo, mock := newAdminRepoMock(t)
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (username) DO UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing-id", created))

	admin := &models.Admin{Username: "admin", PasswordHash: "$2a$10$new"}
	require.NoError(t, repo.Upsert(context.Background(), admin))
	assert.Equal(t, "existing-id", admin.ID)
	assert.Equal(t, created, admin.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
