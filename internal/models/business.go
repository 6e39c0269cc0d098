package models

import "time"

// Business is the merchant owning hours, services and appointments.
type Business struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	OwnerID             string    `db:"owner_id" json:"ownerId"`
	AppointmentsEnabled bool      `db:"appointments_enabled" json:"appointmentsEnabled"`
	AppointmentDuration int       `db:"appointment_duration" json:"appointmentDuration"`
	AppointmentBuffer   int       `db:"appointment_buffer" json:"appointmentBuffer"`
	AdvanceBookingDays  int       `db:"advance_booking_days" json:"advanceBookingDays"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// Settings extracts the appointment settings embedded on the business.
func (b Business) Settings() AppointmentSettings {
	return AppointmentSettings{
		AppointmentsEnabled: b.AppointmentsEnabled,
		AppointmentDuration: b.AppointmentDuration,
		AppointmentBuffer:   b.AppointmentBuffer,
		AdvanceBookingDays:  b.AdvanceBookingDays,
	}
}

// AppointmentSettings are the booking knobs stored on the business row.
type AppointmentSettings struct {
	AppointmentsEnabled bool `db:"appointments_enabled" json:"appointmentsEnabled"`
	AppointmentDuration int  `db:"appointment_duration" json:"appointmentDuration"`
	AppointmentBuffer   int  `db:"appointment_buffer" json:"appointmentBuffer"`
	AdvanceBookingDays  int  `db:"advance_booking_days" json:"advanceBookingDays"`
}

// Service is a bookable offering of a business.
type Service struct {
	ID         string `db:"id" json:"id"`
	BusinessID string `db:"business_id" json:"businessId"`
	Name       string `db:"name" json:"name"`
	Duration   *int   `db:"duration" json:"duration,omitempty"`
}
