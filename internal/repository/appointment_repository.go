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

// ErrAppointmentOverlap is returned by CreateExclusive when the new booking collides with an active one.
var ErrAppointmentOverlap = errors.New("appointment overlaps an existing booking")

const appointmentColumns = `a.id, a.user_id, a.business_id, a.service_id, a.date, a.duration, a.status, a.notes, a.cancel_reason, a.created_at, a.updated_at`

const appointmentDetailSelect = `SELECT ` + appointmentColumns + `,
	b.name AS business_name,
	b.owner_id AS business_owner_id,
	u.name AS customer_name,
	u.email AS customer_email,
	s.name AS service_name
FROM appointments a
JOIN businesses b ON b.id = a.business_id
JOIN users u ON u.id = a.user_id
LEFT JOIN services s ON s.id = a.service_id`

// AppointmentRepository persists appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs the repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// List returns appointments matching the filter ordered by date descending, with the total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.BusinessID != "" {
		args = append(args, filter.BusinessID)
		conditions = append(conditions, fmt.Sprintf("a.business_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)))
	}

	where := " WHERE 1=1"
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("%s%s ORDER BY a.date DESC LIMIT %d OFFSET %d", appointmentDetailSelect, where, pageSize, offset)
	var items []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM appointments a" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	return items, total, nil
}

// FindByID returns the appointment joined with its business and customer.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.AppointmentDetail, error) {
	query := appointmentDetailSelect + " WHERE a.id = $1"
	var item models.AppointmentDetail
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return &item, nil
}

const insertAppointment = `INSERT INTO appointments (id, user_id, business_id, service_id, date, duration, status, notes, cancel_reason, created_at, updated_at)
VALUES (:id, :user_id, :business_id, :service_id, :date, :duration, :status, :notes, :cancel_reason, :created_at, :updated_at)`

// Create inserts a new appointment.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	prepareAppointment(appt)
	if _, err := r.db.NamedExecContext(ctx, insertAppointment, appt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// CreateExclusive inserts the appointment while holding a per-business advisory lock, refusing
// bookings that come within buffer minutes of a non-canceled appointment on either side.
func (r *AppointmentRepository) CreateExclusive(ctx context.Context, appt *models.Appointment, buffer int) (err error) {
	prepareAppointment(appt)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin appointment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, appt.BusinessID); err != nil {
		return fmt.Errorf("lock business appointments: %w", err)
	}

	const overlapQuery = `SELECT COUNT(*) FROM appointments
WHERE business_id = $1
	AND status <> 'CANCELED'
	AND date < $3::timestamptz + make_interval(mins => $4)
	AND date + make_interval(mins => duration + $4) > $2`
	var overlapping int
	if err = tx.GetContext(ctx, &overlapping, overlapQuery, appt.BusinessID, appt.Date, appt.End(), buffer); err != nil {
		return fmt.Errorf("check appointment overlap: %w", err)
	}
	if overlapping > 0 {
		err = ErrAppointmentOverlap
		return err
	}

	if _, err = tx.NamedExecContext(ctx, insertAppointment, appt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit appointment: %w", err)
	}
	return nil
}

// UpdateStatus moves the appointment from one status to another. It reports false when the row
// was no longer in the expected status.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus, cancelReason *string) (bool, error) {
	const query = `UPDATE appointments
SET status = $3, cancel_reason = COALESCE($4, cancel_reason), updated_at = $5
WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, string(from), string(to), cancelReason, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update appointment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update appointment status rows: %w", err)
	}
	return affected == 1, nil
}

// Update writes every mutable field of the appointment.
func (r *AppointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()
	const query = `UPDATE appointments
SET service_id = :service_id, date = :date, duration = :duration, status = :status, notes = :notes,
	cancel_reason = :cancel_reason, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// Delete removes the appointment permanently.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// ListByBusinessRange returns a business's appointments with start in [from, to], oldest first.
func (r *AppointmentRepository) ListByBusinessRange(ctx context.Context, businessID string, from, to time.Time) ([]models.AppointmentDetail, error) {
	query := appointmentDetailSelect + " WHERE a.business_id = $1 AND a.date >= $2 AND a.date <= $3 ORDER BY a.date ASC"
	var items []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &items, query, businessID, from, to); err != nil {
		return nil, fmt.Errorf("list business appointments: %w", err)
	}
	return items, nil
}

// ListActiveBetween returns non-canceled appointments of a business whose [start, end) overlaps
// [from, to), including bookings that began earlier and run into the window.
func (r *AppointmentRepository) ListActiveBetween(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error) {
	const query = `SELECT id, user_id, business_id, service_id, date, duration, status, notes, cancel_reason, created_at, updated_at
FROM appointments
WHERE business_id = $1 AND status <> 'CANCELED' AND date < $3 AND date + make_interval(mins => duration) > $2
ORDER BY date ASC`
	var items []models.Appointment
	if err := r.db.SelectContext(ctx, &items, query, businessID, from, to); err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}
	return items, nil
}

func prepareAppointment(appt *models.Appointment) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	if appt.Status == "" {
		appt.Status = models.AppointmentStatusPending
	}
	if appt.Duration <= 0 {
		appt.Duration = models.DefaultAppointmentDuration
	}
}
