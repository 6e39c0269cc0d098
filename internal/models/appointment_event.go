package models

import "time"

// Appointment event types handed to the notifier.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentConfirmed = "appointment.confirmed"
	EventAppointmentCanceled  = "appointment.canceled"
	EventAppointmentCompleted = "appointment.completed"
	EventAppointmentNoShow    = "appointment.no_show"
)

// EventTypeForStatus maps the status an appointment moved into to its event type.
func EventTypeForStatus(status AppointmentStatus) string {
	switch status {
	case AppointmentStatusPending:
		return EventAppointmentCreated
	case AppointmentStatusConfirmed:
		return EventAppointmentConfirmed
	case AppointmentStatusCanceled:
		return EventAppointmentCanceled
	case AppointmentStatusCompleted:
		return EventAppointmentCompleted
	case AppointmentStatusNoShow:
		return EventAppointmentNoShow
	}
	return ""
}

// AppointmentEvent describes a lifecycle change for downstream email and push delivery.
type AppointmentEvent struct {
	ID             string            `json:"eventId"`
	Type           string            `json:"type"`
	AppointmentID  string            `json:"appointmentId"`
	BusinessID     string            `json:"businessId"`
	BusinessName   string            `json:"businessName"`
	OwnerID        string            `json:"ownerId"`
	CustomerID     string            `json:"customerId"`
	CustomerName   string            `json:"customerName"`
	CustomerEmail  string            `json:"customerEmail"`
	ActorID        string            `json:"actorId"`
	Status         AppointmentStatus `json:"status"`
	PreviousStatus AppointmentStatus `json:"previousStatus,omitempty"`
	Date           time.Time         `json:"date"`
	Duration       int               `json:"duration"`
	CancelReason   *string           `json:"cancelReason,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
}
