package service

import (
	"time"

	"github.com/tarsit/tarsit-api/internal/models"
)

type busyInterval struct {
	start time.Time
	end   time.Time
}

// busyIntervals turns bookings into half-open intervals padded by buffer on both sides, so a
// candidate must keep the gap before a booking as well as after it.
func busyIntervals(appointments []models.Appointment, buffer time.Duration) []busyInterval {
	busy := make([]busyInterval, 0, len(appointments))
	for _, appt := range appointments {
		if appt.Status == models.AppointmentStatusCanceled {
			continue
		}
		busy = append(busy, busyInterval{start: appt.Date.Add(-buffer), end: appt.End().Add(buffer)})
	}
	return busy
}

// candidateSlots returns starts in [open, close) stepping by step where a booking of length
// duration fits before close and does not overlap any busy interval.
func candidateSlots(openAt, closeAt time.Time, duration, step time.Duration, busy []busyInterval) []time.Time {
	if duration <= 0 || step <= 0 || !closeAt.After(openAt) {
		return nil
	}

	var slots []time.Time
	for t := openAt; !t.Add(duration).After(closeAt); t = t.Add(step) {
		if !overlapsAny(t, t.Add(duration), busy) {
			slots = append(slots, t)
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []busyInterval) bool {
	for _, b := range busy {
		// [start,end) overlaps [b.start,b.end) iff start < b.end && b.start < end
		if start.Before(b.end) && b.start.Before(end) {
			return true
		}
	}
	return false
}

// dayWindow resolves the open and close instants of hours on day, in day's location.
func dayWindow(day time.Time, hours models.BusinessHours) (time.Time, time.Time, error) {
	openMinutes, err := models.ParseClock(hours.OpenTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	closeMinutes, err := models.ParseClock(hours.CloseTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	openAt := time.Date(day.Year(), day.Month(), day.Day(), openMinutes/60, openMinutes%60, 0, 0, day.Location())
	closeAt := time.Date(day.Year(), day.Month(), day.Day(), closeMinutes/60, closeMinutes%60, 0, 0, day.Location())
	return openAt, closeAt, nil
}

func formatSlots(slots []time.Time) []string {
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.Format("15:04"))
	}
	return out
}
