package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tarsit/tarsit-api/internal/models"
)

const businessHoursColumns = `id, business_id, day_of_week, open_time, close_time, is_closed, created_at, updated_at`

// BusinessHoursRepository persists weekly opening hours.
type BusinessHoursRepository struct {
	db *sqlx.DB
}

// NewBusinessHoursRepository constructs the repository.
func NewBusinessHoursRepository(db *sqlx.DB) *BusinessHoursRepository {
	return &BusinessHoursRepository{db: db}
}

// ListByBusiness returns every stored day for the business ordered by weekday.
func (r *BusinessHoursRepository) ListByBusiness(ctx context.Context, businessID string) ([]models.BusinessHours, error) {
	query := `SELECT ` + businessHoursColumns + ` FROM business_hours WHERE business_id = $1 ORDER BY day_of_week ASC`
	var rows []models.BusinessHours
	if err := r.db.SelectContext(ctx, &rows, query, businessID); err != nil {
		return nil, fmt.Errorf("list business hours: %w", err)
	}
	return rows, nil
}

// FindByDay returns the row for one weekday.
func (r *BusinessHoursRepository) FindByDay(ctx context.Context, businessID string, day int) (*models.BusinessHours, error) {
	query := `SELECT ` + businessHoursColumns + ` FROM business_hours WHERE business_id = $1 AND day_of_week = $2`
	var row models.BusinessHours
	if err := r.db.GetContext(ctx, &row, query, businessID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find business hours: %w", err)
	}
	return &row, nil
}

const insertBusinessHours = `INSERT INTO business_hours (id, business_id, day_of_week, open_time, close_time, is_closed, created_at, updated_at)
VALUES (:id, :business_id, :day_of_week, :open_time, :close_time, :is_closed, :created_at, :updated_at)`

// ReplaceAll deletes the business's hours and inserts the given set in one transaction.
func (r *BusinessHoursRepository) ReplaceAll(ctx context.Context, businessID string, hours []models.BusinessHours) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin business hours transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM business_hours WHERE business_id = $1`, businessID); err != nil {
		return fmt.Errorf("delete business hours: %w", err)
	}

	now := time.Now().UTC()
	for i := range hours {
		prepareBusinessHours(&hours[i], businessID, now)
		if _, err = tx.NamedExecContext(ctx, insertBusinessHours, &hours[i]); err != nil {
			return fmt.Errorf("insert business hours day %d: %w", hours[i].DayOfWeek, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit business hours: %w", err)
	}
	return nil
}

// Upsert inserts or updates the row for the entry's weekday and refreshes the entry from the stored row.
func (r *BusinessHoursRepository) Upsert(ctx context.Context, hours *models.BusinessHours) error {
	prepareBusinessHours(hours, hours.BusinessID, time.Now().UTC())
	query := `INSERT INTO business_hours (id, business_id, day_of_week, open_time, close_time, is_closed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (business_id, day_of_week) DO UPDATE
SET open_time = EXCLUDED.open_time, close_time = EXCLUDED.close_time, is_closed = EXCLUDED.is_closed, updated_at = EXCLUDED.updated_at
RETURNING ` + businessHoursColumns
	row := r.db.QueryRowxContext(ctx, query, hours.ID, hours.BusinessID, hours.DayOfWeek, hours.OpenTime,
		hours.CloseTime, hours.IsClosed, hours.CreatedAt, hours.UpdatedAt)
	if err := row.StructScan(hours); err != nil {
		return fmt.Errorf("upsert business hours: %w", err)
	}
	return nil
}

// InsertMissing inserts the given rows, skipping weekdays that already exist. It returns the number inserted.
func (r *BusinessHoursRepository) InsertMissing(ctx context.Context, businessID string, hours []models.BusinessHours) (int, error) {
	if len(hours) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	values := make([]string, 0, len(hours))
	args := make([]interface{}, 0, len(hours)*8)
	for i := range hours {
		prepareBusinessHours(&hours[i], businessID, now)
		h := hours[i]
		base := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, h.ID, h.BusinessID, h.DayOfWeek, h.OpenTime, h.CloseTime, h.IsClosed, h.CreatedAt, h.UpdatedAt)
	}
	query := `INSERT INTO business_hours (id, business_id, day_of_week, open_time, close_time, is_closed, created_at, updated_at)
VALUES ` + strings.Join(values, ", ") + `
ON CONFLICT (business_id, day_of_week) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert default business hours: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert default business hours rows: %w", err)
	}
	return int(affected), nil
}

func prepareBusinessHours(h *models.BusinessHours, businessID string, now time.Time) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.BusinessID = businessID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
}
