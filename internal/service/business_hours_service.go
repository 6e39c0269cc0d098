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
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
)

const (
	businessHoursResource       = "business_hours"
	appointmentSettingsResource = "appointment_settings"
	closedDayTime               = "00:00"
)

type businessHoursStore interface {
	ListByBusiness(ctx context.Context, businessID string) ([]models.BusinessHours, error)
	FindByDay(ctx context.Context, businessID string, day int) (*models.BusinessHours, error)
	ReplaceAll(ctx context.Context, businessID string, hours []models.BusinessHours) error
	Upsert(ctx context.Context, hours *models.BusinessHours) error
	InsertMissing(ctx context.Context, businessID string, hours []models.BusinessHours) (int, error)
}

type businessSettingsStore interface {
	businessReader
	UpdateSettings(ctx context.Context, businessID string, settings models.AppointmentSettings) error
}

type permissionChecker interface {
	Allowed(ctx context.Context, userID string, business *models.Business, permissions ...models.TeamPermission) (bool, error)
	Require(ctx context.Context, userID string, business *models.Business, permissions ...models.TeamPermission) error
}

// BusinessHoursService owns weekly opening hours and the appointment settings of a business.
type BusinessHoursService struct {
	hours       businessHoursStore
	businesses  businessSettingsStore
	permissions permissionChecker
	cache       *CacheService
	audit       auditLogger
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewBusinessHoursService builds the service.
func NewBusinessHoursService(
	hours businessHoursStore,
	businesses businessSettingsStore,
	permissions permissionChecker,
	cache *CacheService,
	audit auditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
) *BusinessHoursService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusinessHoursService{
		hours:       hours,
		businesses:  businesses,
		permissions: permissions,
		cache:       cache,
		audit:       audit,
		validator:   validate,
		logger:      logger,
	}
}

// GetBusinessHours returns the stored days ordered by weekday, each with its day name.
func (s *BusinessHoursService) GetBusinessHours(ctx context.Context, businessID string) ([]dto.BusinessHoursResponse, error) {
	if _, err := s.loadBusiness(ctx, businessID); err != nil {
		return nil, err
	}
	rows, err := s.listHours(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return dto.NewBusinessHoursResponses(rows), nil
}

// HoursForDay returns the hours row for a weekday, or nil when none is stored.
func (s *BusinessHoursService) HoursForDay(ctx context.Context, businessID string, day time.Weekday) (*models.BusinessHours, error) {
	rows, err := s.listHours(ctx, businessID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].DayOfWeek == int(day) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

// SetBusinessHours validates every entry and atomically replaces the week.
func (s *BusinessHoursService) SetBusinessHours(ctx context.Context, actor *models.JWTClaims, businessID string, req dto.SetBusinessHoursRequest) ([]dto.BusinessHoursResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actor.Caller(), business, models.PermissionManageHours); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid business hours payload")
	}

	seen := make(map[int]struct{}, len(req.Hours))
	rows := make([]models.BusinessHours, 0, len(req.Hours))
	for _, entry := range req.Hours {
		row, err := normalizeHoursEntry(businessID, entry)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[row.DayOfWeek]; dup {
			return nil, appErrors.Clonef(appErrors.ErrInvalidHours, "%s is listed more than once", models.DayName(row.DayOfWeek))
		}
		seen[row.DayOfWeek] = struct{}{}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DayOfWeek < rows[j].DayOfWeek })

	var previous interface{}
	if existing, err := s.hours.ListByBusiness(ctx, businessID); err != nil {
		s.logger.Warn("could not load previous business hours for audit", zap.String("business_id", businessID), zap.Error(err))
	} else {
		previous = existing
	}
	if err := s.hours.ReplaceAll(ctx, businessID, rows); err != nil {
		return nil, appErrors.Internal(err, "failed to save business hours")
	}

	s.cache.InvalidateBusiness(ctx, businessID)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionHoursReplace, businessHoursResource, businessID, previous, rows)
	s.logger.Info("business hours replaced", zap.String("business_id", businessID), zap.Int("days", len(rows)))
	return dto.NewBusinessHoursResponses(rows), nil
}

// UpdateDayHours validates and upserts a single weekday.
func (s *BusinessHoursService) UpdateDayHours(ctx context.Context, actor *models.JWTClaims, businessID string, day int, req dto.UpdateDayHoursRequest) (*dto.BusinessHoursResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if day < 0 || day > 6 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dayOfWeek must be between 0 (Sunday) and 6 (Saturday)")
	}
	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actor.Caller(), business, models.PermissionManageHours); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid business hours payload")
	}

	row, err := normalizeHoursEntry(businessID, req.Entry(day))
	if err != nil {
		return nil, err
	}

	var previous interface{}
	existing, err := s.hours.FindByDay(ctx, businessID, day)
	switch {
	case err == nil:
		previous = existing
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Internal(err, "failed to load business hours")
	}

	if err := s.hours.Upsert(ctx, &row); err != nil {
		return nil, appErrors.Internal(err, "failed to save business hours")
	}

	s.cache.InvalidateBusiness(ctx, businessID)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionHoursUpdate, businessHoursResource, businessID, previous, row)
	return &dto.BusinessHoursResponse{BusinessHours: row, DayName: models.DayName(row.DayOfWeek)}, nil
}

// InitializeDefaultHours inserts the default week, leaving existing days untouched.
func (s *BusinessHoursService) InitializeDefaultHours(ctx context.Context, businessID string) (int, error) {
	inserted, err := s.hours.InsertMissing(ctx, businessID, models.DefaultBusinessHours(businessID))
	if err != nil {
		return 0, appErrors.Internal(err, "failed to initialize business hours")
	}
	if inserted > 0 {
		s.cache.InvalidateBusiness(ctx, businessID)
	}
	return inserted, nil
}

// InitializeDefaultHoursFor is InitializeDefaultHours behind the manage-hours permission. It returns the resulting week.
func (s *BusinessHoursService) InitializeDefaultHoursFor(ctx context.Context, actor *models.JWTClaims, businessID string) ([]dto.BusinessHoursResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actor.Caller(), business, models.PermissionManageHours); err != nil {
		return nil, err
	}
	inserted, err := s.InitializeDefaultHours(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if inserted > 0 {
		recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionHoursInitialize, businessHoursResource, businessID, nil, map[string]int{"inserted": inserted})
	}
	return s.GetBusinessHours(ctx, businessID)
}

// GetAppointmentSettings returns the booking settings of a business.
func (s *BusinessHoursService) GetAppointmentSettings(ctx context.Context, businessID string) (*models.AppointmentSettings, error) {
	var cached models.AppointmentSettings
	if s.cache.Get(ctx, settingsCacheKey(businessID), &cached) {
		return &cached, nil
	}
	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	settings := business.Settings()
	s.cache.Set(ctx, settingsCacheKey(businessID), settings, 0)
	return &settings, nil
}

// UpdateAppointmentSettings applies a partial settings update.
func (s *BusinessHoursService) UpdateAppointmentSettings(ctx context.Context, actor *models.JWTClaims, businessID string, req dto.UpdateAppointmentSettingsRequest) (*models.AppointmentSettings, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	business, err := s.loadBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Require(ctx, actor.Caller(), business, models.PermissionManageAppointments); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid appointment settings payload")
	}

	previous := business.Settings()
	updated := req.Apply(previous)
	if err := s.businesses.UpdateSettings(ctx, businessID, updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "business not found")
		}
		return nil, appErrors.Internal(err, "failed to update appointment settings")
	}

	s.cache.InvalidateBusiness(ctx, businessID)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionAppointmentSettings, appointmentSettingsResource, businessID, previous, updated)
	return &updated, nil
}

func (s *BusinessHoursService) loadBusiness(ctx context.Context, businessID string) (*models.Business, error) {
	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "business not found")
		}
		return nil, appErrors.Internal(err, "failed to load business")
	}
	return business, nil
}

func (s *BusinessHoursService) listHours(ctx context.Context, businessID string) ([]models.BusinessHours, error) {
	var rows []models.BusinessHours
	if s.cache.Get(ctx, hoursCacheKey(businessID), &rows) {
		return rows, nil
	}
	rows, err := s.hours.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load business hours")
	}
	s.cache.Set(ctx, hoursCacheKey(businessID), rows, 0)
	return rows, nil
}

// normalizeHoursEntry validates one entry and converts it to a row. Closed days default their
// times to 00:00; open days need a close strictly after open.
func normalizeHoursEntry(businessID string, entry dto.BusinessHoursEntry) (models.BusinessHours, error) {
	if entry.DayOfWeek == nil || *entry.DayOfWeek < 0 || *entry.DayOfWeek > 6 {
		return models.BusinessHours{}, appErrors.Clone(appErrors.ErrValidation, "dayOfWeek must be between 0 (Sunday) and 6 (Saturday)")
	}
	day := *entry.DayOfWeek
	dayName := models.DayName(day)
	row := models.BusinessHours{
		BusinessID: businessID,
		DayOfWeek:  day,
		OpenTime:   entry.OpenTime,
		CloseTime:  entry.CloseTime,
		IsClosed:   entry.IsClosed,
	}

	if row.IsClosed {
		if row.OpenTime == "" {
			row.OpenTime = closedDayTime
		}
		if row.CloseTime == "" {
			row.CloseTime = closedDayTime
		}
	}

	openMinutes, err := models.ParseClock(row.OpenTime)
	if err != nil {
		return models.BusinessHours{}, appErrors.Clonef(appErrors.ErrInvalidHours, "invalid opening time for %s: %v", dayName, err)
	}
	closeMinutes, err := models.ParseClock(row.CloseTime)
	if err != nil {
		return models.BusinessHours{}, appErrors.Clonef(appErrors.ErrInvalidHours, "invalid closing time for %s: %v", dayName, err)
	}
	if !row.IsClosed && closeMinutes <= openMinutes {
		return models.BusinessHours{}, appErrors.Clonef(appErrors.ErrInvalidHours, "closing time must be after opening time for %s", dayName)
	}
	return row, nil
}
