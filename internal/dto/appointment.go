package dto

import (
	"time"

	"github.com/tarsit/tarsit-api/internal/models"
)

// CreateAppointmentRequest is the customer booking payload.
type CreateAppointmentRequest struct {
	BusinessID string    `json:"businessId" validate:"required"`
	ServiceID  *string   `json:"serviceId" validate:"omitempty,min=1"`
	Date       time.Time `json:"date" validate:"required"`
	Duration   *int      `json:"duration" validate:"omitempty,min=5,max=480"`
	Notes      *string   `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateAppointmentRequest is the legacy PATCH payload; omitted fields stay unchanged.
type UpdateAppointmentRequest struct {
	Status       *models.AppointmentStatus `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELED NO_SHOW"`
	Date         *time.Time                `json:"date"`
	Duration     *int                      `json:"duration" validate:"omitempty,min=5,max=480"`
	Notes        *string                   `json:"notes" validate:"omitempty,max=1000"`
	ServiceID    *string                   `json:"serviceId" validate:"omitempty,min=1"`
	CancelReason *string                   `json:"cancelReason" validate:"omitempty,max=500"`
}

// Changes converts the payload into repository-level changes.
func (r UpdateAppointmentRequest) Changes() models.AppointmentChanges {
	return models.AppointmentChanges{
		Status:       r.Status,
		Date:         r.Date,
		Duration:     r.Duration,
		Notes:        r.Notes,
		ServiceID:    r.ServiceID,
		CancelReason: r.CancelReason,
	}
}

// CancelAppointmentRequest carries an optional cancellation reason.
type CancelAppointmentRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// AppointmentListQuery binds list filters from the query string.
type AppointmentListQuery struct {
	BusinessID string `form:"businessId"`
	UserID     string `form:"userId"`
	Status     string `form:"status" validate:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELED NO_SHOW"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// Filter converts the query into a repository filter.
func (q AppointmentListQuery) Filter() models.AppointmentFilter {
	return models.AppointmentFilter{
		BusinessID: q.BusinessID,
		UserID:     q.UserID,
		Status:     models.AppointmentStatus(q.Status),
		Page:       q.Page,
		PageSize:   q.Limit,
	}
}

// BusinessSummary is the business block attached to an appointment.
type BusinessSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerSummary is the customer block attached to an appointment.
type CustomerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ServiceSummary is the service block attached to an appointment.
type ServiceSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppointmentResponse is an appointment with its related summaries.
type AppointmentResponse struct {
	models.Appointment
	Business *BusinessSummary `json:"business,omitempty"`
	Customer *CustomerSummary `json:"customer,omitempty"`
	Service  *ServiceSummary  `json:"service,omitempty"`
}

// NewAppointmentResponse builds the response shape from a joined row.
func NewAppointmentResponse(detail models.AppointmentDetail) AppointmentResponse {
	resp := AppointmentResponse{
		Appointment: detail.Appointment,
		Business:    &BusinessSummary{ID: detail.BusinessID, Name: detail.BusinessName},
		Customer:    &CustomerSummary{ID: detail.UserID, Name: detail.CustomerName, Email: detail.CustomerEmail},
	}
	if detail.ServiceID != nil && detail.ServiceName != nil {
		resp.Service = &ServiceSummary{ID: *detail.ServiceID, Name: *detail.ServiceName}
	}
	return resp
}

// AvailableSlotsResponse lists bookable start times for a date.
type AvailableSlotsResponse struct {
	BusinessID string   `json:"businessId"`
	Date       string   `json:"date"`
	ServiceID  *string  `json:"serviceId,omitempty"`
	Duration   int      `json:"duration"`
	Buffer     int      `json:"buffer"`
	Slots      []string `json:"slots"`
	Cached     bool     `json:"-"`
}

// CalendarQuery binds the calendar range.
type CalendarQuery struct {
	StartDate string `form:"startDate" validate:"required"`
	EndDate   string `form:"endDate" validate:"required"`
	Format    string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// CalendarResponse groups appointments by local calendar day (YYYY-MM-DD).
type CalendarResponse struct {
	BusinessID string                           `json:"businessId"`
	StartDate  string                           `json:"startDate"`
	EndDate    string                           `json:"endDate"`
	Total      int                              `json:"total"`
	Days       map[string][]AppointmentResponse `json:"days"`
}

// CalendarExport is a rendered calendar file.
type CalendarExport struct {
	Filename    string
	ContentType string
	Body        []byte
}
