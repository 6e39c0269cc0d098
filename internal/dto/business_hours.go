package dto

import "github.com/tarsit/tarsit-api/internal/models"

// BusinessHoursEntry is one weekday in a hours payload.
type BusinessHoursEntry struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required,min=0,max=6"`
	OpenTime  string `json:"openTime" validate:"omitempty,len=5"`
	CloseTime string `json:"closeTime" validate:"omitempty,len=5"`
	IsClosed  bool   `json:"isClosed"`
}

// UpdateDayHoursRequest is the single-day payload; the weekday comes from the path.
type UpdateDayHoursRequest struct {
	OpenTime  string `json:"openTime" validate:"omitempty,len=5"`
	CloseTime string `json:"closeTime" validate:"omitempty,len=5"`
	IsClosed  bool   `json:"isClosed"`
}

// Entry attaches the weekday from the route.
func (r UpdateDayHoursRequest) Entry(day int) BusinessHoursEntry {
	return BusinessHoursEntry{DayOfWeek: &day, OpenTime: r.OpenTime, CloseTime: r.CloseTime, IsClosed: r.IsClosed}
}

// SetBusinessHoursRequest replaces the full week.
type SetBusinessHoursRequest struct {
	Hours []BusinessHoursEntry `json:"hours" validate:"required,min=1,max=7,dive"`
}

// BusinessHoursResponse is a stored row annotated with its day name.
type BusinessHoursResponse struct {
	models.BusinessHours
	DayName string `json:"dayName"`
}

// NewBusinessHoursResponses annotates rows with day names.
func NewBusinessHoursResponses(rows []models.BusinessHours) []BusinessHoursResponse {
	out := make([]BusinessHoursResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, BusinessHoursResponse{BusinessHours: row, DayName: models.DayName(row.DayOfWeek)})
	}
	return out
}

// UpdateAppointmentSettingsRequest is a partial settings update.
type UpdateAppointmentSettingsRequest struct {
	AppointmentsEnabled *bool `json:"appointmentsEnabled"`
	AppointmentDuration *int  `json:"appointmentDuration" validate:"omitempty,min=5,max=480"`
	AppointmentBuffer   *int  `json:"appointmentBuffer" validate:"omitempty,min=0,max=240"`
	AdvanceBookingDays  *int  `json:"advanceBookingDays" validate:"omitempty,min=1,max=365"`
}

// Apply merges the provided fields into current.
func (r UpdateAppointmentSettingsRequest) Apply(current models.AppointmentSettings) models.AppointmentSettings {
	if r.AppointmentsEnabled != nil {
		current.AppointmentsEnabled = *r.AppointmentsEnabled
	}
	if r.AppointmentDuration != nil {
		current.AppointmentDuration = *r.AppointmentDuration
	}
	if r.AppointmentBuffer != nil {
		current.AppointmentBuffer = *r.AppointmentBuffer
	}
	if r.AdvanceBookingDays != nil {
		current.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	return current
}
