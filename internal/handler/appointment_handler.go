package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarsit/tarsit-api/internal/dto"
	"github.com/tarsit/tarsit-api/internal/middleware"
	"github.com/tarsit/tarsit-api/internal/models"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
	"github.com/tarsit/tarsit-api/pkg/response"
)

type appointmentService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error)
	ListMine(ctx context.Context, actor *models.JWTClaims, filter models.AppointmentFilter) ([]dto.AppointmentResponse, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	AvailableSlots(ctx context.Context, businessID, date string, serviceID *string) (*dto.AvailableSlotsResponse, error)
	Confirm(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, actor *models.JWTClaims, id string, req dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error)
	MarkNoShow(ctx context.Context, actor *models.JWTClaims, id string) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	Remove(ctx context.Context, actor *models.JWTClaims, id string) error
	Calendar(ctx context.Context, actor *models.JWTClaims, businessID, startDate, endDate string) (*dto.CalendarResponse, error)
}

type calendarExporter interface {
	Export(ctx context.Context, actor *models.JWTClaims, businessID string, query dto.CalendarQuery) (*dto.CalendarExport, error)
}

// AppointmentHandler exposes appointment booking endpoints.
type AppointmentHandler struct {
	service  appointmentService
	exporter calendarExporter
}

// NewAppointmentHandler builds a new handler.
func NewAppointmentHandler(service appointmentService, exporter calendarExporter) *AppointmentHandler {
	return &AppointmentHandler{service: service, exporter: exporter}
}

// Create godoc
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid appointment payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param businessId query string false "Business ID"
// @Param userId query string false "Customer ID"
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	var query dto.AppointmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// ListMine godoc
// @Summary List the caller's appointments
// @Tags Appointments
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /appointments/my [get]
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	var query dto.AppointmentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.ListMine(c.Request.Context(), claimsFromContext(c), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// AvailableSlots godoc
// @Summary List bookable start times for a day
// @Tags Appointments
// @Produce json
// @Param businessId path string true "Business ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param serviceId query string false "Service ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /appointments/business/{businessId}/slots [get]
func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	resp, err := h.service.AvailableSlots(c.Request.Context(), c.Param("businessId"), c.Query("date"), optionalQuery(c, "serviceId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, resp.Cached)
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}

// Calendar godoc
// @Summary Business calendar grouped by day
// @Tags Appointments
// @Produce json
// @Param businessId path string true "Business ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/business/{businessId}/calendar [get]
func (h *AppointmentHandler) Calendar(c *gin.Context) {
	var query dto.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid calendar range"))
		return
	}
	cal, err := h.service.Calendar(c.Request.Context(), claimsFromContext(c), c.Param("businessId"), query.StartDate, query.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cal, nil)
}

// ExportCalendar godoc
// @Summary Download the business calendar
// @Tags Appointments
// @Produce text/csv
// @Produce application/pdf
// @Param businessId path string true "Business ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /appointments/business/{businessId}/calendar/export [get]
func (h *AppointmentHandler) ExportCalendar(c *gin.Context) {
	var query dto.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid calendar range"))
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), claimsFromContext(c), c.Param("businessId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

// Confirm godoc
// @Summary Confirm a pending appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/{id}/confirm [post]
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.respond(c)(h.service.Confirm(c.Request.Context(), claimsFromContext(c), c.Param("id")))
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.CancelAppointmentRequest false "Optional reason"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req dto.CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Invalid(err, "invalid cancel payload"))
			return
		}
	}
	h.respond(c)(h.service.Cancel(c.Request.Context(), claimsFromContext(c), c.Param("id"), req))
}

// Complete godoc
// @Summary Complete a confirmed appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/complete [post]
func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.respond(c)(h.service.Complete(c.Request.Context(), claimsFromContext(c), c.Param("id")))
}

// MarkNoShow godoc
// @Summary Mark an appointment as no-show
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/no-show [post]
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	h.respond(c)(h.service.MarkNoShow(c.Request.Context(), claimsFromContext(c), c.Param("id")))
}

// Update godoc
// @Summary Update an appointment (legacy)
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.UpdateAppointmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/{id} [patch]
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid appointment payload"))
		return
	}
	h.respond(c)(h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req))
}

// Remove godoc
// @Summary Delete an appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id")}, nil)
}

func (h *AppointmentHandler) respond(c *gin.Context) func(*dto.AppointmentResponse, error) {
	return func(item *dto.AppointmentResponse, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, item, nil)
	}
}
