package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tarsit/tarsit-api/internal/dto"
	"github.com/tarsit/tarsit-api/internal/models"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
)

type hoursStoreStub struct {
	mu           sync.Mutex
	rows         map[string]map[int]models.BusinessHours
	replaceCalls int
	listErr      error
}

func newHoursStoreStub() *hoursStoreStub {
	return &hoursStoreStub{rows: map[string]map[int]models.BusinessHours{}}
}

func (s *hoursStoreStub) ListByBusiness(ctx context.Context, businessID string) ([]models.BusinessHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.BusinessHours, 0, len(s.rows[businessID]))
	for _, row := range s.rows[businessID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (s *hoursStoreStub) FindByDay(ctx context.Context, businessID string, day int) (*models.BusinessHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[businessID][day]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (s *hoursStoreStub) ReplaceAll(ctx context.Context, businessID string, hours []models.BusinessHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceCalls++
	s.rows[businessID] = map[int]models.BusinessHours{}
	for i := range hours {
		hours[i].BusinessID = businessID
		s.rows[businessID][hours[i].DayOfWeek] = hours[i]
	}
	return nil
}

func (s *hoursStoreStub) Upsert(ctx context.Context, hours *models.BusinessHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[hours.BusinessID] == nil {
		s.rows[hours.BusinessID] = map[int]models.BusinessHours{}
	}
	s.rows[hours.BusinessID][hours.DayOfWeek] = *hours
	return nil
}

func (s *hoursStoreStub) InsertMissing(ctx context.Context, businessID string, hours []models.BusinessHours) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[businessID] == nil {
		s.rows[businessID] = map[int]models.BusinessHours{}
	}
	inserted := 0
	for _, row := range hours {
		if _, exists := s.rows[businessID][row.DayOfWeek]; exists {
			continue
		}
		s.rows[businessID][row.DayOfWeek] = row
		inserted++
	}
	return inserted, nil
}

type auditLoggerStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (a *auditLoggerStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

func intPtr(v int) *int { return &v }

func claimsFor(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID}
}

func newHoursServiceFixture() (*BusinessHoursService, *hoursStoreStub, *businessRepoStub, *auditLoggerStub) {
	store := newHoursStoreStub()
	businesses := newTestBusinessRepo()
	audit := &auditLoggerStub{}
	perms := NewPermissionService(businesses, newTestTeam(), nil)
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	return NewBusinessHoursService(store, businesses, perms, cache, audit, nil, nil), store, businesses, audit
}

func weekdayPayload() dto.SetBusinessHoursRequest {
	return dto.SetBusinessHoursRequest{Hours: []dto.BusinessHoursEntry{
		{DayOfWeek: intPtr(1), OpenTime: "09:00", CloseTime: "17:00"},
		{DayOfWeek: intPtr(0), IsClosed: true},
		{DayOfWeek: intPtr(6), OpenTime: "10:00", CloseTime: "14:00"},
	}}
}

func TestBusinessHoursSetThenGetRoundTrip(t *testing.T) {
	svc, _, _, audit := newHoursServiceFixture()
	ctx := context.Background()

	saved, err := svc.SetBusinessHours(ctx, claimsFor("owner-1"), "biz-1", weekdayPayload())
	require.NoError(t, err)
	require.Len(t, saved, 3)

	got, err := svc.GetBusinessHours(ctx, "biz-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].DayOfWeek)
	assert.Equal(t, "Sunday", got[0].DayName)
	assert.True(t, got[0].IsClosed)
	assert.Equal(t, "Monday", got[1].DayName)
	assert.Equal(t, "09:00", got[1].OpenTime)
	assert.Equal(t, "17:00", got[1].CloseTime)
	assert.Equal(t, "Saturday", got[2].DayName)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionHoursReplace, audit.logs[0].Action)
}

func TestBusinessHoursRejectsCloseBeforeOpen(t *testing.T) {
	svc, store, _, _ := newHoursServiceFixture()

	_, err := svc.SetBusinessHours(context.Background(), claimsFor("owner-1"), "biz-1", dto.SetBusinessHoursRequest{Hours: []dto.BusinessHoursEntry{
		{DayOfWeek: intPtr(1), OpenTime: "09:00", CloseTime: "17:00"},
		{DayOfWeek: intPtr(2), OpenTime: "17:00", CloseTime: "17:00"},
	}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidHours.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "Tuesday")
	assert.Equal(t, 0, store.replaceCalls)

	_, err = svc.UpdateDayHours(context.Background(), claimsFor("owner-1"), "biz-1", 3, dto.UpdateDayHoursRequest{OpenTime: "12:00", CloseTime: "08:00"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "Wednesday")
}

func TestBusinessHoursRejectsDuplicateDay(t *testing.T) {
	svc, _, _, _ := newHoursServiceFixture()
	_, err := svc.SetBusinessHours(context.Background(), claimsFor("owner-1"), "biz-1", dto.SetBusinessHoursRequest{Hours: []dto.BusinessHoursEntry{
		{DayOfWeek: intPtr(1), OpenTime: "09:00", CloseTime: "17:00"},
		{DayOfWeek: intPtr(1), OpenTime: "10:00", CloseTime: "12:00"},
	}})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "Monday")
}

func TestBusinessHoursPermissions(t *testing.T) {
	svc, _, _, _ := newHoursServiceFixture()
	ctx := context.Background()

	_, err := svc.SetBusinessHours(ctx, claimsFor("stranger"), "biz-1", weekdayPayload())
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.SetBusinessHours(ctx, claimsFor("staff-viewer"), "biz-1", weekdayPayload())
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.SetBusinessHours(ctx, claimsFor("staff-hours"), "biz-1", weekdayPayload())
	assert.NoError(t, err)

	_, err = svc.SetBusinessHours(ctx, nil, "biz-1", weekdayPayload())
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.SetBusinessHours(ctx, claimsFor("owner-1"), "biz-x", weekdayPayload())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBusinessHoursUpdateDayUpserts(t *testing.T) {
	svc, _, _, audit := newHoursServiceFixture()
	ctx := context.Background()

	_, err := svc.SetBusinessHours(ctx, claimsFor("owner-1"), "biz-1", weekdayPayload())
	require.NoError(t, err)
	// prime the cache so the update must invalidate it
	_, err = svc.GetBusinessHours(ctx, "biz-1")
	require.NoError(t, err)

	row, err := svc.UpdateDayHours(ctx, claimsFor("staff-hours"), "biz-1", 1, dto.UpdateDayHoursRequest{OpenTime: "08:00", CloseTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "Monday", row.DayName)

	monday, err := svc.HoursForDay(ctx, "biz-1", time.Monday)
	require.NoError(t, err)
	require.NotNil(t, monday)
	assert.Equal(t, "08:00", monday.OpenTime)

	last := audit.logs[len(audit.logs)-1]
	assert.Equal(t, models.AuditActionHoursUpdate, last.Action)
	assert.Contains(t, string(last.OldValues), `"09:00"`)
	assert.Contains(t, string(last.NewValues), `"08:00"`)

	_, err = svc.UpdateDayHours(ctx, claimsFor("owner-1"), "biz-1", 2, dto.UpdateDayHoursRequest{OpenTime: "08:00", CloseTime: "12:00"})
	require.NoError(t, err)
	assert.Empty(t, audit.logs[len(audit.logs)-1].OldValues)

	_, err = svc.UpdateDayHours(ctx, claimsFor("owner-1"), "biz-1", 7, dto.UpdateDayHoursRequest{OpenTime: "08:00", CloseTime: "12:00"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInitializeDefaultHoursIsIdempotent(t *testing.T) {
	svc, store, _, _ := newHoursServiceFixture()
	ctx := context.Background()

	custom := models.BusinessHours{BusinessID: "biz-1", DayOfWeek: 1, OpenTime: "07:00", CloseTime: "11:00"}
	require.NoError(t, store.Upsert(ctx, &custom))

	inserted, err := svc.InitializeDefaultHours(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 6, inserted)

	inserted, err = svc.InitializeDefaultHours(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	week, err := svc.GetBusinessHours(ctx, "biz-1")
	require.NoError(t, err)
	require.Len(t, week, 7)
	assert.Equal(t, "07:00", week[1].OpenTime)
	assert.True(t, week[0].IsClosed)
	assert.Equal(t, "10:00", week[6].OpenTime)

	_, err = svc.InitializeDefaultHoursFor(ctx, claimsFor("stranger"), "biz-1")
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAppointmentSettingsPartialUpdate(t *testing.T) {
	svc, _, businesses, audit := newHoursServiceFixture()
	ctx := context.Background()

	before, err := svc.GetAppointmentSettings(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 60, before.AppointmentDuration)

	updated, err := svc.UpdateAppointmentSettings(ctx, claimsFor("staff-appts"), "biz-1", dto.UpdateAppointmentSettingsRequest{AppointmentBuffer: intPtr(15)})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.AppointmentBuffer)
	assert.Equal(t, 60, updated.AppointmentDuration)
	assert.True(t, updated.AppointmentsEnabled)
	assert.Equal(t, 1, businesses.updateCalls)
	require.Len(t, audit.logs, 1)

	after, err := svc.GetAppointmentSettings(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 15, after.AppointmentBuffer)
}

func TestAppointmentSettingsValidation(t *testing.T) {
	svc, _, businesses, _ := newHoursServiceFixture()
	ctx := context.Background()

	cases := []dto.UpdateAppointmentSettingsRequest{
		{AppointmentDuration: intPtr(4)},
		{AppointmentDuration: intPtr(481)},
		{AppointmentBuffer: intPtr(-1)},
		{AppointmentBuffer: intPtr(241)},
		{AdvanceBookingDays: intPtr(0)},
		{AdvanceBookingDays: intPtr(366)},
	}
	for _, req := range cases {
		_, err := svc.UpdateAppointmentSettings(ctx, claimsFor("owner-1"), "biz-1", req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Equal(t, 0, businesses.updateCalls)

	_, err := svc.UpdateAppointmentSettings(ctx, claimsFor("staff-hours"), "biz-1", dto.UpdateAppointmentSettingsRequest{AppointmentBuffer: intPtr(5)})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBusinessHoursSetLogsWhenPreviousHoursUnreadable(t *testing.T) {
	store := newHoursStoreStub()
	store.listErr = errors.New("connection reset")
	businesses := newTestBusinessRepo()
	audit := &auditLoggerStub{}
	core, logs := observer.New(zapcore.WarnLevel)
	perms := NewPermissionService(businesses, newTestTeam(), nil)
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewBusinessHoursService(store, businesses, perms, cache, audit, nil, zap.New(core))

	saved, err := svc.SetBusinessHours(context.Background(), claimsFor("owner-1"), "biz-1", weekdayPayload())
	require.NoError(t, err)
	assert.Len(t, saved, 3)
	assert.Equal(t, 1, store.replaceCalls)
	require.Len(t, audit.logs, 1)
	assert.Empty(t, audit.logs[0].OldValues)

	entries := logs.FilterMessage("could not load previous business hours for audit").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "biz-1", entries[0].ContextMap()["business_id"])
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}
