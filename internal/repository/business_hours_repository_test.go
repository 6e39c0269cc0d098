package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsit/tarsit-api/internal/models"
)

var businessHoursRowColumns = []string{"id", "business_id", "day_of_week", "open_time", "close_time", "is_closed", "created_at", "updated_at"}

func TestBusinessHoursRepositoryListByBusiness(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusinessHoursRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE business_id = $1 ORDER BY day_of_week ASC")).
		WithArgs("biz-1").
		WillReturnRows(sqlmock.NewRows(businessHoursRowColumns).
			AddRow("h-0", "biz-1", 0, "00:00", "00:00", true, now, now).
			AddRow("h-1", "biz-1", 1, "09:00", "17:00", false, now, now))

	rows, err := repo.ListByBusiness(context.Background(), "biz-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsClosed)
	assert.Equal(t, "17:00", rows[1].CloseTime)
}

func TestBusinessHoursRepositoryFindByDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusinessHoursRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE business_id = $1 AND day_of_week = $2")).
		WithArgs("biz-1", 3).
		WillReturnRows(sqlmock.NewRows(businessHoursRowColumns).
			AddRow("h-3", "biz-1", 3, "09:00", "17:00", false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM business_hours WHERE business_id = $1 AND day_of_week = $2")).
		WithArgs("biz-1", 0).
		WillReturnError(sql.ErrNoRows)

	row, err := repo.FindByDay(context.Background(), "biz-1", 3)
	require.NoError(t, err)
	assert.Equal(t, "09:00", row.OpenTime)

	_, err = repo.FindByDay(context.Background(), "biz-1", 0)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBusinessHoursRepositoryReplaceAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusinessHoursRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM business_hours WHERE business_id = $1")).
		WithArgs("biz-1").
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO business_hours")).
		WithArgs(sqlmock.AnyArg(), "biz-1", 1, "09:00", "17:00", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO business_hours")).
		WithArgs(sqlmock.AnyArg(), "biz-1", 2, "10:00", "18:00", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	hours := []models.BusinessHours{
		{DayOfWeek: 1, OpenTime: "09:00", CloseTime: "17:00"},
		{DayOfWeek: 2, OpenTime: "10:00", CloseTime: "18:00"},
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), "biz-1", hours))
	assert.Equal(t, "biz-1", hours[0].BusinessID)
	assert.NotEmpty(t, hours[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessHoursRepositoryReplaceAllRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusinessHoursRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM business_hours")).WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO business_hours")).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), "biz-1", []models.BusinessHours{{DayOfWeek: 1, OpenTime: "09:00", CloseTime: "17:00"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert business hours day 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessHoursRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusinessHoursRepository(db)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (business_id, day_of_week) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "biz-1", 3, "08:00", "12:00", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(businessHoursRowColumns).AddRow("h-3", "biz-1", 3, "08:00", "12:00", false, created, now))

	entry := &models.BusinessHours{BusinessID: "biz-1", DayOfWeek: 3, OpenTime: "08:00", CloseTime: "12:00"}
	require.NoError(t, repo.Upsert(context.Background(), entry))
	assert.Equal(t, "h-3", entry.ID)
	assert.Equal(t, created, entry.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBusinessHoursRepositoryInsertMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusinessHoursRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (business_id, day_of_week) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertMissing(context.Background(), "biz-1", models.DefaultBusinessHours("biz-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}
