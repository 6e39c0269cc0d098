package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCanceled  AppointmentStatus = "CANCELED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// DefaultAppointmentDuration is used when a booking omits its duration, in minutes.
const DefaultAppointmentDuration = 60

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending: {
		AppointmentStatusConfirmed,
		AppointmentStatusCanceled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusCompleted,
		AppointmentStatusCanceled,
		AppointmentStatusNoShow,
	},
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCanceled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a booking of a customer with a business.
type Appointment struct {
	ID           string            `db:"id" json:"id"`
	UserID       string            `db:"user_id" json:"userId"`
	BusinessID   string            `db:"business_id" json:"businessId"`
	ServiceID    *string           `db:"service_id" json:"serviceId,omitempty"`
	Date         time.Time         `db:"date" json:"date"`
	Duration     int               `db:"duration" json:"duration"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        *string           `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancelReason,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updatedAt"`
}

// End returns the scheduled end of the appointment.
func (a Appointment) End() time.Time {
	return a.Date.Add(time.Duration(a.Duration) * time.Minute)
}

// AppointmentDetail is an appointment joined with its business and customer.
type AppointmentDetail struct {
	Appointment
	BusinessName  string  `db:"business_name" json:"businessName"`
	BusinessOwner string  `db:"business_owner_id" json:"-"`
	CustomerName  string  `db:"customer_name" json:"customerName"`
	CustomerEmail string  `db:"customer_email" json:"customerEmail"`
	ServiceName   *string `db:"service_name" json:"serviceName,omitempty"`
}

// AppointmentFilter narrows appointment listings. Empty fields are ignored.
type AppointmentFilter struct {
	BusinessID string
	UserID     string
	Status     AppointmentStatus
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// AppointmentChanges holds the fields a legacy update may touch; nil means unchanged.
type AppointmentChanges struct {
	Status       *AppointmentStatus
	Date         *time.Time
	Duration     *int
	Notes        *string
	ServiceID    *string
	CancelReason *string
}

// IsStatusOnly reports whether only the status (and an optional cancel reason) is being changed.
func (c AppointmentChanges) IsStatusOnly() bool {
	return c.Status != nil && c.Date == nil && c.Duration == nil && c.Notes == nil && c.ServiceID == nil
}
