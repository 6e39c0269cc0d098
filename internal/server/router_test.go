package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsit/tarsit-api/internal/dto"
	"github.com/tarsit/tarsit-api/internal/handler"
	"github.com/tarsit/tarsit-api/internal/models"
	"github.com/tarsit/tarsit-api/internal/service"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
)

const testSecret = "router-secret"

type appointmentsStub struct{}

func (appointmentsStub) item(status models.AppointmentStatus) *dto.AppointmentResponse {
	return &dto.AppointmentResponse{Appointment: models.Appointment{ID: "appt-1", BusinessID: "biz-1", UserID: "customer-1", Status: status}}
}

func (s appointmentsStub) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	return s.item(models.AppointmentStatusPending), nil
}

func (s appointmentsStub) List(ctx context.Context, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error) {
	return []dto.AppointmentResponse{}, models.NewPagination(1, 20, 0), nil
}

func (s appointmentsStub) ListMine(ctx context.Context, actor *models.JWTClaims, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error) {
	return []dto.AppointmentResponse{}, models.NewPagination(1, 20, 0), nil
}

func (s appointmentsStub) Get(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	if id != "appt-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
	}
	return s.item(models.AppointmentStatusPending), nil
}

func (s appointmentsStub) AvailableSlots(ctx context.Context, businessID, date string, serviceID *string) (*dto.AvailableSlotsResponse, error) {
	return &dto.AvailableSlotsResponse{BusinessID: businessID, Date: date, Slots: []string{"09:00", "11:00"}}, nil
}

func (s appointmentsStub) Confirm(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	return s.item(models.AppointmentStatusConfirmed), nil
}

func (s appointmentsStub) Cancel(ctx context.Context, actor *models.JWTClaims, id string, req dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	return s.item(models.AppointmentStatusCanceled), nil
}

func (s appointmentsStub) Complete(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	return s.item(models.AppointmentStatusCompleted), nil
}

func (s appointmentsStub) MarkNoShow(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	return s.item(models.AppointmentStatusNoShow), nil
}

func (s appointmentsStub) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrForbidden, "customers may only cancel their appointments")
}

func (s appointmentsStub) Remove(ctx context.Context, actor *models.JWTClaims, id string) error {
	return nil
}

func (s appointmentsStub) Calendar(ctx context.Context, actor *models.JWTClaims, businessID, startDate, endDate string) (*dto.CalendarResponse, error) {
	return &dto.CalendarResponse{BusinessID: businessID, StartDate: startDate, EndDate: endDate, Days: map[string][]dto.AppointmentResponse{}}, nil
}

type exporterStub struct{}

func (exporterStub) Export(ctx context.Context, actor *models.JWTClaims, businessID string, query dto.CalendarQuery) (*dto.CalendarExport, error) {
	return &dto.CalendarExport{Filename: "calendar.csv", ContentType: "text/csv", Body: []byte("Date\n")}, nil
}

type hoursStub struct{}

func (hoursStub) GetBusinessHours(ctx context.Context, businessID string) ([]dto.BusinessHoursResponse, error) {
	return dto.NewBusinessHoursResponses(models.DefaultBusinessHours(businessID)), nil
}

func (hoursStub) SetBusinessHours(ctx context.Context, actor *models.JWTClaims, businessID string, req dto.SetBusinessHoursRequest) ([]dto.BusinessHoursResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrForbidden, "missing permission")
}

func (hoursStub) UpdateDayHours(ctx context.Context, actor *models.JWTClaims, businessID string, day int, req dto.UpdateDayHoursRequest) (*dto.BusinessHoursResponse, error) {
	return &dto.BusinessHoursResponse{}, nil
}

func (hoursStub) InitializeDefaultHoursFor(ctx context.Context, actor *models.JWTClaims, businessID string) ([]dto.BusinessHoursResponse, error) {
	return dto.NewBusinessHoursResponses(models.DefaultBusinessHours(businessID)), nil
}

func (hoursStub) GetAppointmentSettings(ctx context.Context, businessID string) (*models.AppointmentSettings, error) {
	return &models.AppointmentSettings{AppointmentDuration: 60}, nil
}

func (hoursStub) UpdateAppointmentSettings(ctx context.Context, actor *models.JWTClaims, businessID string, req dto.UpdateAppointmentSettingsRequest) (*models.AppointmentSettings, error) {
	return &models.AppointmentSettings{AppointmentDuration: 60}, nil
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	handlers := Handlers{
		Appointments:  handler.NewAppointmentHandler(appointmentsStub{}, exporterStub{}),
		BusinessHours: handler.NewBusinessHoursHandler(hoursStub{}),
		System:        handler.NewMetricsHandler(metrics, nil),
	}
	auth := service.NewAuthService(service.AuthConfig{AccessTokenSecret: testSecret}, nil)
	return NewRouter(Options{APIPrefix: "/api/v1", EnableMetrics: true}, handlers, auth, metrics, nil)
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func perform(router *gin.Engine, method, path, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterPublicRoutes(t *testing.T) {
	router := buildTestRouter()

	w := perform(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = perform(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/appointments/business/biz-1/slots?date=2024-03-04", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slots":["09:00","11:00"]`)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = perform(router, http.MethodGet, "/api/v1/businesses/biz-1/hours", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dayName":"Sunday"`)

	w = perform(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tarsit_http_requests_total`)
}

func TestRouterRequiresBearerToken(t *testing.T) {
	router := buildTestRouter()

	protected := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/appointments"},
		{http.MethodGet, "/api/v1/appointments"},
		{http.MethodGet, "/api/v1/appointments/my"},
		{http.MethodGet, "/api/v1/appointments/appt-1"},
		{http.MethodPost, "/api/v1/appointments/appt-1/confirm"},
		{http.MethodPatch, "/api/v1/appointments/appt-1"},
		{http.MethodDelete, "/api/v1/appointments/appt-1"},
		{http.MethodGet, "/api/v1/appointments/business/biz-1/calendar?startDate=2024-03-01&endDate=2024-03-31"},
		{http.MethodPost, "/api/v1/businesses/biz-1/hours"},
		{http.MethodPut, "/api/v1/businesses/biz-1/hours/1"},
		{http.MethodPost, "/api/v1/businesses/biz-1/hours/initialize"},
		{http.MethodPut, "/api/v1/businesses/biz-1/appointment-settings"},
	}
	for _, route := range protected {
		w := perform(router, route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.method+" "+route.path)
	}

	w := perform(router, http.MethodGet, "/api/v1/appointments/my", "Bearer not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterAuthenticatedFlow(t *testing.T) {
	router := buildTestRouter()
	token := bearer(t, "customer-1")

	w := perform(router, http.MethodPost, "/api/v1/appointments", token, `{"businessId":"biz-1","date":"2024-03-04T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)

	w = perform(router, http.MethodPost, "/api/v1/appointments/appt-1/no-show", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"NO_SHOW"`)

	w = perform(router, http.MethodPatch, "/api/v1/appointments/appt-1", token, `{"status":"COMPLETED"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/appointments/appt-9", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/appointments/business/biz-1/calendar/export?startDate=2024-03-01&endDate=2024-03-31", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}
