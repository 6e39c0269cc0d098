package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsit/tarsit-api/internal/dto"
	"github.com/tarsit/tarsit-api/internal/middleware"
	"github.com/tarsit/tarsit-api/internal/models"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
)

type appointmentServiceMock struct {
	item       *dto.AppointmentResponse
	slots      *dto.AvailableSlotsResponse
	calendar   *dto.CalendarResponse
	err        error
	lastActor  *models.JWTClaims
	lastID     string
	lastFilter models.AppointmentFilter
	lastCreate dto.CreateAppointmentRequest
	lastCancel dto.CancelAppointmentRequest
	lastDate   string
	lastSvcID  *string
	calls      []string
}

func (m *appointmentServiceMock) record(name string, actor *models.JWTClaims, id string) {
	m.calls = append(m.calls, name)
	m.lastActor = actor
	m.lastID = id
}

func (m *appointmentServiceMock) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	m.record("create", actor, "")
	m.lastCreate = req
	return m.item, m.err
}

func (m *appointmentServiceMock) List(ctx context.Context, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error) {
	m.record("list", nil, "")
	m.lastFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []dto.AppointmentResponse{*m.item}, models.NewPagination(1, 20, 1), nil
}

func (m *appointmentServiceMock) ListMine(ctx context.Context, actor *models.JWTClaims, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error) {
	m.record("mine", actor, "")
	m.lastFilter = filter
	return []dto.AppointmentResponse{}, models.NewPagination(1, 20, 0), m.err
}

func (m *appointmentServiceMock) Get(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	m.record("get", nil, id)
	return m.item, m.err
}

func (m *appointmentServiceMock) AvailableSlots(ctx context.Context, businessID, date string, serviceID *string) (*dto.AvailableSlotsResponse, error) {
	m.record("slots", nil, businessID)
	m.lastDate = date
	m.lastSvcID = serviceID
	return m.slots, m.err
}

func (m *appointmentServiceMock) Confirm(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	m.record("confirm", actor, id)
	return m.item, m.err
}

func (m *appointmentServiceMock) Cancel(ctx context.Context, actor *models.JWTClaims, id string, req dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	m.record("cancel", actor, id)
	m.lastCancel = req
	return m.item, m.err
}

func (m *appointmentServiceMock) Complete(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	m.record("complete", actor, id)
	return m.item, m.err
}

func (m *appointmentServiceMock) MarkNoShow(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error) {
	m.record("no-show", actor, id)
	return m.item, m.err
}

func (m *appointmentServiceMock) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	m.record("update", actor, id)
	return m.item, m.err
}

func (m *appointmentServiceMock) Remove(ctx context.Context, actor *models.JWTClaims, id string) error {
	m.record("remove", actor, id)
	return m.err
}

func (m *appointmentServiceMock) Calendar(ctx context.Context, actor *models.JWTClaims, businessID, startDate, endDate string) (*dto.CalendarResponse, error) {
	m.record("calendar", actor, businessID)
	return m.calendar, m.err
}

type exporterMock struct {
	file  *dto.CalendarExport
	err   error
	query dto.CalendarQuery
}

func (m *exporterMock) Export(ctx context.Context, actor *models.JWTClaims, businessID string, query dto.CalendarQuery) (*dto.CalendarExport, error) {
	m.query = query
	return m.file, m.err
}

func sampleAppointment() *dto.AppointmentResponse {
	return &dto.AppointmentResponse{Appointment: models.Appointment{ID: "appt-1", BusinessID: "biz-1", UserID: "customer-1", Status: models.AppointmentStatusPending, Duration: 60}}
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, target, nil)
	} else {
		req, _ = http.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "customer-1"})
	return c, w
}

func TestAppointmentHandlerCreate(t *testing.T) {
	mockSvc := &appointmentServiceMock{item: sampleAppointment()}
	h := NewAppointmentHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodPost, "/appointments", `{"businessId":"biz-1","date":"2024-03-04T10:00:00Z","notes":"first visit"}`)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "biz-1", mockSvc.lastCreate.BusinessID)
	assert.Equal(t, 10, mockSvc.lastCreate.Date.Hour())
	require.NotNil(t, mockSvc.lastActor)
	assert.Equal(t, "customer-1", mockSvc.lastActor.UserID)

	var envelope struct {
		Data dto.AppointmentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "appt-1", envelope.Data.ID)
	assert.Equal(t, models.AppointmentStatusPending, envelope.Data.Status)
}

func TestAppointmentHandlerCreateInvalidBody(t *testing.T) {
	mockSvc := &appointmentServiceMock{}
	h := NewAppointmentHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodPost, "/appointments", `{"businessId":`)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.calls)
}

func TestAppointmentHandlerListBindsQuery(t *testing.T) {
	mockSvc := &appointmentServiceMock{item: sampleAppointment()}
	h := NewAppointmentHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodGet, "/appointments?businessId=biz-1&status=CONFIRMED&page=2&limit=5", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "biz-1", mockSvc.lastFilter.BusinessID)
	assert.Equal(t, models.AppointmentStatusConfirmed, mockSvc.lastFilter.Status)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
	assert.Equal(t, 5, mockSvc.lastFilter.PageSize)
	assert.Contains(t, w.Body.String(), `"pagination"`)
}

func TestAppointmentHandlerSlotsMarksCache(t *testing.T) {
	mockSvc := &appointmentServiceMock{slots: &dto.AvailableSlotsResponse{BusinessID: "biz-1", Date: "2024-03-04", Slots: []string{"09:00"}, Cached: true}}
	h := NewAppointmentHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodGet, "/appointments/business/biz-1/slots?date=2024-03-04&serviceId=svc-1", "")
	c.Params = gin.Params{{Key: "businessId", Value: "biz-1"}}
	h.AvailableSlots(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03-04", mockSvc.lastDate)
	require.NotNil(t, mockSvc.lastSvcID)
	assert.Equal(t, "svc-1", *mockSvc.lastSvcID)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), `"slots":["09:00"]`)
}

func TestAppointmentHandlerTransitions(t *testing.T) {
	mockSvc := &appointmentServiceMock{item: sampleAppointment()}
	h := NewAppointmentHandler(mockSvc, &exporterMock{})

	routes := map[string]gin.HandlerFunc{
		"confirm":  h.Confirm,
		"complete": h.Complete,
		"no-show":  h.MarkNoShow,
	}
	for name, fn := range routes {
		c, w := newTestContext(http.MethodPost, "/appointments/appt-1/"+name, "")
		c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
		fn(c)
		assert.Equal(t, http.StatusOK, w.Code, name)
		assert.Equal(t, "appt-1", mockSvc.lastID, name)
	}
	assert.ElementsMatch(t, []string{"confirm", "complete", "no-show"}, mockSvc.calls)
}

func TestAppointmentHandlerCancelBodyOptional(t *testing.T) {
	mockSvc := &appointmentServiceMock{item: sampleAppointment()}
	h := NewAppointmentHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodPost, "/appointments/appt-1/cancel", "")
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
	h.Cancel(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mockSvc.lastCancel.Reason)

	c, w = newTestContext(http.MethodPost, "/appointments/appt-1/cancel", `{"reason":"double booked"}`)
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
	h.Cancel(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastCancel.Reason)
	assert.Equal(t, "double booked", *mockSvc.lastCancel.Reason)
}

func TestAppointmentHandlerMapsServiceErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"forbidden":  {appErrors.Clone(appErrors.ErrForbidden, "customers may only cancel their appointments"), http.StatusForbidden},
		"transition": {appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move appointment from COMPLETED to CONFIRMED"), http.StatusBadRequest},
		"not found":  {appErrors.Clone(appErrors.ErrNotFound, "appointment not found"), http.StatusNotFound},
		"conflict":   {appErrors.Clone(appErrors.ErrConflict, "overlap"), http.StatusConflict},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewAppointmentHandler(&appointmentServiceMock{err: tc.err}, &exporterMock{})
			c, w := newTestContext(http.MethodPatch, "/appointments/appt-1", `{"status":"COMPLETED"}`)
			c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
			h.Update(c)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), appErrors.FromError(tc.err).Code)
		})
	}
}

func TestAppointmentHandlerRemove(t *testing.T) {
	mockSvc := &appointmentServiceMock{}
	h := NewAppointmentHandler(mockSvc, &exporterMock{})

	c, w := newTestContext(http.MethodDelete, "/appointments/appt-1", "")
	c.Params = gin.Params{{Key: "id", Value: "appt-1"}}
	h.Remove(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"remove"}, mockSvc.calls)

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "appt-1", envelope.Data["id"])
}

func TestAppointmentHandlerExportCalendar(t *testing.T) {
	exporter := &exporterMock{file: &dto.CalendarExport{Filename: "appointments.csv", ContentType: "text/csv", Body: []byte("Date,Time\n")}}
	h := NewAppointmentHandler(&appointmentServiceMock{}, exporter)

	c, w := newTestContext(http.MethodGet, "/appointments/business/biz-1/calendar/export?startDate=2024-03-01&endDate=2024-03-31&format=csv", "")
	c.Params = gin.Params{{Key: "businessId", Value: "biz-1"}}
	h.ExportCalendar(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03-01", exporter.query.StartDate)
	assert.Equal(t, "csv", exporter.query.Format)
	assert.Equal(t, `attachment; filename="appointments.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Date,Time\n", w.Body.String())
}
