package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarsit/tarsit-api/internal/models"
)

// BusinessRepository reads businesses, their services and their appointment settings.
type BusinessRepository struct {
	db *sqlx.DB
}

// NewBusinessRepository constructs the repository.
func NewBusinessRepository(db *sqlx.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// FindByID returns a business by id.
func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*models.Business, error) {
	const query = `SELECT id, name, owner_id, appointments_enabled, appointment_duration, appointment_buffer, advance_booking_days, created_at, updated_at
FROM businesses WHERE id = $1`
	var business models.Business
	if err := r.db.GetContext(ctx, &business, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find business: %w", err)
	}
	return &business, nil
}

// FindService returns a service by id.
func (r *BusinessRepository) FindService(ctx context.Context, id string) (*models.Service, error) {
	const query = `SELECT id, business_id, name, duration FROM services WHERE id = $1`
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find service: %w", err)
	}
	return &svc, nil
}

// UpdateSettings writes the appointment settings columns of a business.
func (r *BusinessRepository) UpdateSettings(ctx context.Context, businessID string, settings models.AppointmentSettings) error {
	const query = `UPDATE businesses
SET appointments_enabled = $2, appointment_duration = $3, appointment_buffer = $4, advance_booking_days = $5, updated_at = $6
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, businessID, settings.AppointmentsEnabled, settings.AppointmentDuration,
		settings.AppointmentBuffer, settings.AdvanceBookingDays, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update appointment settings: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
