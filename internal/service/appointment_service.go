package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tarsit/tarsit-api/internal/dto"
	"github.com/tarsit/tarsit-api/internal/models"
	"github.com/tarsit/tarsit-api/internal/repository"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
)

const (
	appointmentResource = "appointments"
	dateLayout          = "2006-01-02"
	maxCalendarDays     = 366
)

type appointmentStore interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.AppointmentDetail, error)
	Create(ctx context.Context, appt *models.Appointment) error
	CreateExclusive(ctx context.Context, appt *models.Appointment, buffer int) error
	UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus, cancelReason *string) (bool, error)
	Update(ctx context.Context, appt *models.Appointment) error
	Delete(ctx context.Context, id string) error
	ListByBusinessRange(ctx context.Context, businessID string, from, to time.Time) ([]models.AppointmentDetail, error)
	ListActiveBetween(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error)
}

type appointmentBusinessReader interface {
	businessReader
	FindService(ctx context.Context, id string) (*models.Service, error)
}

type hoursProvider interface {
	HoursForDay(ctx context.Context, businessID string, day time.Weekday) (*models.BusinessHours, error)
}

type appointmentNotifier interface {
	Notify(event models.AppointmentEvent)
}

// AppointmentConfig tunes booking behaviour.
type AppointmentConfig struct {
	// Location is the timezone in which dates, business hours and calendar days are interpreted.
	Location         *time.Location
	DefaultDuration  int
	EnforceNoOverlap bool
	SlotCacheTTL     time.Duration
}

// AppointmentService runs the appointment lifecycle, slot availability and calendar views.
type AppointmentService struct {
	repo        appointmentStore
	businesses  appointmentBusinessReader
	hours       hoursProvider
	permissions permissionChecker
	notifier    appointmentNotifier
	cache       *CacheService
	metrics     *MetricsService
	audit       auditLogger
	validator   *validator.Validate
	logger      *zap.Logger
	config      AppointmentConfig
}

// NewAppointmentService builds the service with sane defaults.
func NewAppointmentService(
	repo appointmentStore,
	businesses appointmentBusinessReader,
	hours hoursProvider,
	permissions permissionChecker,
	notifier appointmentNotifier,
	cache *CacheService,
	metrics *MetricsService,
	audit auditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
	config AppointmentConfig,
) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.DefaultDuration <= 0 {
		config.DefaultDuration = models.DefaultAppointmentDuration
	}
	if config.SlotCacheTTL <= 0 {
		config.SlotCacheTTL = time.Minute
	}
	return &AppointmentService{
		repo:        repo,
		businesses:  businesses,
		hours:       hours,
		permissions: permissions,
		notifier:    notifier,
		cache:       cache,
		metrics:     metrics,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		config:      config,
	}
}

// Create books a PENDING appointment for the calling customer.
func (s *AppointmentService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid appointment payload")
	}

	business, err := s.loadBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	duration := s.config.DefaultDuration
	if req.ServiceID != nil {
		svc, err := s.serviceOf(ctx, business.ID, *req.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc.Duration != nil && *svc.Duration > 0 {
			duration = *svc.Duration
		}
	}

	appt := &models.Appointment{
		UserID:     actor.Caller(),
		BusinessID: business.ID,
		ServiceID:  req.ServiceID,
		Date:       req.Date.UTC(),
		Duration:   duration,
		Status:     models.AppointmentStatusPending,
		Notes:      req.Notes,
	}
	if req.Duration != nil {
		appt.Duration = *req.Duration
	}

	if s.config.EnforceNoOverlap {
		err = s.repo.CreateExclusive(ctx, appt, business.AppointmentBuffer)
	} else {
		err = s.repo.Create(ctx, appt)
	}
	if err != nil {
		if errors.Is(err, repository.ErrAppointmentOverlap) {
			s.metrics.RecordBookingConflict()
			return nil, appErrors.Clone(appErrors.ErrConflict, "the requested time overlaps an existing appointment")
		}
		return nil, appErrors.Internal(err, "failed to create appointment")
	}

	detail, err := s.loadAppointment(ctx, appt.ID)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateSlots(ctx, business.ID)
	s.metrics.RecordTransition("", models.AppointmentStatusPending)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionAppointmentCreate, appointmentResource, appt.ID, nil, detail.Appointment)
	s.notify(detail, actor, "")
	s.logger.Info("appointment created",
		zap.String("appointment_id", appt.ID),
		zap.String("business_id", business.ID),
		zap.Time("date", appt.Date),
	)

	resp := dto.NewAppointmentResponse(*detail)
	return &resp, nil
}

// List returns appointments matching the filter, newest first.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clonef(appErrors.ErrValidation, "unknown status %q", filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	start := time.Now()
	items, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("appointments_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list appointments")
	}

	out := make([]dto.AppointmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.NewAppointmentResponse(item))
	}
	return out, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// ListMine lists the calling customer's appointments.
func (s *AppointmentService) ListMine(ctx context.Context, actor *models.JWTClaims, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter.UserID = actor.Caller()
	filter.BusinessID = ""
	return s.List(ctx, filter)
}

// Get returns one appointment with its business and customer summaries.
func (s *AppointmentService) Get(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	detail, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewAppointmentResponse(*detail)
	return &resp, nil
}

// AvailableSlots returns the bookable start times ("HH:MM") of a business on date (YYYY-MM-DD).
func (s *AppointmentService) AvailableSlots(ctx context.Context, businessID, date string, serviceID *string) (*dto.AvailableSlotsResponse, error) {
	day, err := s.parseDay(date, "date")
	if err != nil {
		return nil, err
	}
	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	duration := business.AppointmentDuration
	if duration <= 0 {
		duration = s.config.DefaultDuration
	}
	buffer := business.AppointmentBuffer
	if buffer < 0 {
		buffer = 0
	}
	cacheServiceID := ""
	if serviceID != nil && *serviceID != "" {
		svc, err := s.serviceOf(ctx, business.ID, *serviceID)
		if err != nil {
			return nil, err
		}
		if svc.Duration != nil && *svc.Duration > 0 {
			duration = *svc.Duration
		}
		cacheServiceID = svc.ID
	} else {
		serviceID = nil
	}

	resp := &dto.AvailableSlotsResponse{
		BusinessID: business.ID,
		Date:       day.Format(dateLayout),
		ServiceID:  serviceID,
		Duration:   duration,
		Buffer:     buffer,
		Slots:      []string{},
	}

	key := slotsCacheKey(business.ID, resp.Date, cacheServiceID)
	var cached []string
	if s.cache.Get(ctx, key, &cached) {
		resp.Slots = cached
		resp.Cached = true
		return resp, nil
	}

	hours, err := s.hours.HoursForDay(ctx, business.ID, day.Weekday())
	if err != nil {
		return nil, err
	}
	if hours == nil || hours.IsClosed {
		return resp, nil
	}
	openAt, closeAt, err := dayWindow(day, *hours)
	if err != nil {
		s.logger.Warn("stored business hours are unreadable", zap.String("business_id", business.ID), zap.Int("day_of_week", hours.DayOfWeek), zap.Error(err))
		return resp, nil
	}

	bufferDur := time.Duration(buffer) * time.Minute
	durationDur := time.Duration(duration) * time.Minute

	start := time.Now()
	booked, err := s.repo.ListActiveBetween(ctx, business.ID, day.Add(-bufferDur), day.AddDate(0, 0, 1).Add(bufferDur))
	s.metrics.ObserveDBQuery("appointments_active_between", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load appointments")
	}

	slots := candidateSlots(openAt, closeAt, durationDur, durationDur+bufferDur, busyIntervals(booked, bufferDur))
	resp.Slots = formatSlots(slots)

	s.cache.Set(ctx, key, resp.Slots, s.config.SlotCacheTTL)
	return resp, nil
}

// Confirm moves a PENDING appointment to CONFIRMED. Owner only.
func (s *AppointmentService) Confirm(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	return s.transition(ctx, actor, id, models.AppointmentStatusConfirmed, nil, false)
}

// Cancel cancels a non-terminal appointment. Owner or the booking customer.
func (s *AppointmentService) Cancel(ctx context.Context, actor *models.JWTClaims, id string, req dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid cancel payload")
	}
	return s.transition(ctx, actor, id, models.AppointmentStatusCanceled, req.Reason, true)
}

// Complete moves a CONFIRMED appointment to COMPLETED. Owner only.
func (s *AppointmentService) Complete(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	return s.transition(ctx, actor, id, models.AppointmentStatusCompleted, nil, false)
}

// MarkNoShow records that the customer did not attend. Owner only; refused from terminal states.
func (s *AppointmentService) MarkNoShow(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	return s.transition(ctx, actor, id, models.AppointmentStatusNoShow, nil, false)
}

func (s *AppointmentService) transition(ctx context.Context, actor *models.JWTClaims, id string, to models.AppointmentStatus, reason *string, customerAllowed bool) (*dto.AppointmentResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	detail, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	caller := actor.Caller()
	isOwner := detail.BusinessOwner == caller
	isCustomer := detail.UserID == caller
	if !isOwner && !(customerAllowed && isCustomer) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not allowed to change this appointment")
	}

	from := detail.Status
	if !from.CanTransitionTo(to) {
		return nil, appErrors.Clonef(appErrors.ErrInvalidTransition, "cannot move appointment from %s to %s", from, to)
	}

	ok, err := s.repo.UpdateStatus(ctx, id, from, to, reason)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update appointment")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appointment was modified concurrently, reload and retry")
	}

	updated, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(ctx, actor, detail, updated)
	resp := dto.NewAppointmentResponse(*updated)
	return &resp, nil
}

// Update is the legacy PATCH path. Owners may change any field; customers may only cancel.
// Status changes still follow the lifecycle.
func (s *AppointmentService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid appointment payload")
	}
	detail, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	caller := actor.Caller()
	isOwner := detail.BusinessOwner == caller
	isCustomer := detail.UserID == caller
	changes := req.Changes()
	switch {
	case isOwner:
	case isCustomer:
		if !changes.IsStatusOnly() || *changes.Status != models.AppointmentStatusCanceled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "customers may only cancel their appointments")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not allowed to change this appointment")
	}

	next := detail.Appointment
	statusChanged := changes.Status != nil && *changes.Status != detail.Status
	if statusChanged {
		if !detail.Status.CanTransitionTo(*changes.Status) {
			return nil, appErrors.Clonef(appErrors.ErrInvalidTransition, "cannot move appointment from %s to %s", detail.Status, *changes.Status)
		}
		next.Status = *changes.Status
	}
	if changes.ServiceID != nil {
		if _, err := s.serviceOf(ctx, detail.BusinessID, *changes.ServiceID); err != nil {
			return nil, err
		}
		next.ServiceID = changes.ServiceID
	}
	if changes.Date != nil {
		next.Date = changes.Date.UTC()
	}
	if changes.Duration != nil {
		next.Duration = *changes.Duration
	}
	if changes.Notes != nil {
		next.Notes = changes.Notes
	}
	if changes.CancelReason != nil {
		next.CancelReason = changes.CancelReason
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, appErrors.Internal(err, "failed to update appointment")
	}
	updated, err := s.loadAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.afterStatusChange(ctx, actor, detail, updated)
	} else {
		s.cache.InvalidateSlots(ctx, detail.BusinessID)
		recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionAppointmentUpdate, appointmentResource, id, detail.Appointment, updated.Appointment)
	}
	resp := dto.NewAppointmentResponse(*updated)
	return &resp, nil
}

// Remove hard-deletes an appointment. Owner or the booking customer.
func (s *AppointmentService) Remove(ctx context.Context, actor *models.JWTClaims, id string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	detail, err := s.loadAppointment(ctx, id)
	if err != nil {
		return err
	}
	caller := actor.Caller()
	if detail.BusinessOwner != caller && detail.UserID != caller {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not allowed to delete this appointment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete appointment")
	}
	s.cache.InvalidateSlots(ctx, detail.BusinessID)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionAppointmentDelete, appointmentResource, id, detail.Appointment, nil)
	return nil
}

// Calendar groups a business's appointments in [startDate, endDate] by local day.
func (s *AppointmentService) Calendar(ctx context.Context, actor *models.JWTClaims, businessID, startDate, endDate string) (*dto.CalendarResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	from, err := s.parseDay(startDate, "startDate")
	if err != nil {
		return nil, err
	}
	to, err := s.parseDay(endDate, "endDate")
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	if to.Sub(from) > maxCalendarDays*24*time.Hour {
		return nil, appErrors.Clonef(appErrors.ErrValidation, "calendar range is limited to %d days", maxCalendarDays)
	}

	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.permissions.Allowed(ctx, actor.Caller(), business, models.PermissionViewAppointments, models.PermissionManageAppointments)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this business calendar")
	}

	start := time.Now()
	items, err := s.repo.ListByBusinessRange(ctx, business.ID, from, to.AddDate(0, 0, 1).Add(-time.Nanosecond))
	s.metrics.ObserveDBQuery("appointments_calendar", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load calendar")
	}

	days := make(map[string][]dto.AppointmentResponse)
	for _, item := range items {
		item.Date = item.Date.In(s.config.Location)
		key := item.Date.Format(dateLayout)
		days[key] = append(days[key], dto.NewAppointmentResponse(item))
	}
	for key := range days {
		list := days[key]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	}

	return &dto.CalendarResponse{
		BusinessID: business.ID,
		StartDate:  from.Format(dateLayout),
		EndDate:    to.Format(dateLayout),
		Total:      len(items),
		Days:       days,
	}, nil
}

func (s *AppointmentService) afterStatusChange(ctx context.Context, actor *models.JWTClaims, before, after *models.AppointmentDetail) {
	s.cache.InvalidateSlots(ctx, after.BusinessID)
	s.metrics.RecordTransition(before.Status, after.Status)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionAppointmentStatus, appointmentResource, after.ID,
		map[string]interface{}{"status": before.Status},
		map[string]interface{}{"status": after.Status, "cancelReason": after.CancelReason},
	)
	s.notify(after, actor, before.Status)
	s.logger.Info("appointment status changed",
		zap.String("appointment_id", after.ID),
		zap.String("from", string(before.Status)),
		zap.String("to", string(after.Status)),
		zap.String("actor_id", actor.Caller()),
	)
}

func (s *AppointmentService) notify(detail *models.AppointmentDetail, actor *models.JWTClaims, previous models.AppointmentStatus) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(models.AppointmentEvent{
		Type:           models.EventTypeForStatus(detail.Status),
		AppointmentID:  detail.ID,
		BusinessID:     detail.BusinessID,
		BusinessName:   detail.BusinessName,
		OwnerID:        detail.BusinessOwner,
		CustomerID:     detail.UserID,
		CustomerName:   detail.CustomerName,
		CustomerEmail:  detail.CustomerEmail,
		ActorID:        actor.Caller(),
		Status:         detail.Status,
		PreviousStatus: previous,
		Date:           detail.Date,
		Duration:       detail.Duration,
		CancelReason:   detail.CancelReason,
	})
}

func (s *AppointmentService) loadAppointment(ctx context.Context, id string) (*models.AppointmentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Internal(err, "failed to load appointment")
	}
	return detail, nil
}

func (s *AppointmentService) loadBusiness(ctx context.Context, businessID string) (*models.Business, error) {
	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "business not found")
		}
		return nil, appErrors.Internal(err, "failed to load business")
	}
	return business, nil
}

// serviceOf loads a service and checks it belongs to the business; both failures are bad requests.
func (s *AppointmentService) serviceOf(ctx context.Context, businessID, serviceID string) (*models.Service, error) {
	svc, err := s.businesses.FindService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "service not found for this business")
		}
		return nil, appErrors.Internal(err, "failed to load service")
	}
	if svc.BusinessID != businessID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service does not belong to this business")
	}
	return svc, nil
}

func (s *AppointmentService) parseDay(value, field string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, value, s.config.Location)
	if err != nil {
		return time.Time{}, appErrors.Clonef(appErrors.ErrValidation, "%s must be formatted as YYYY-MM-DD", field)
	}
	return day, nil
}
