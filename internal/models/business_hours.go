package models

import (
	"fmt"
	"time"
)

// DayNames maps day_of_week (0 = Sunday) to its display name.
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName returns the display name for a weekday index, or "" when out of range.
func DayName(day int) string {
	if day < 0 || day >= len(DayNames) {
		return ""
	}
	return DayNames[day]
}

// BusinessHours is the opening window of a business on one weekday.
type BusinessHours struct {
	ID         string    `db:"id" json:"id"`
	BusinessID string    `db:"business_id" json:"businessId"`
	DayOfWeek  int       `db:"day_of_week" json:"dayOfWeek"`
	OpenTime   string    `db:"open_time" json:"openTime"`
	CloseTime  string    `db:"close_time" json:"closeTime"`
	IsClosed   bool      `db:"is_closed" json:"isClosed"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultBusinessHours returns the canonical week: Mon-Fri 09:00-17:00, Sat 10:00-14:00, Sun closed.
func DefaultBusinessHours(businessID string) []BusinessHours {
	hours := make([]BusinessHours, 0, 7)
	hours = append(hours, BusinessHours{BusinessID: businessID, DayOfWeek: 0, OpenTime: "00:00", CloseTime: "00:00", IsClosed: true})
	for day := 1; day <= 5; day++ {
		hours = append(hours, BusinessHours{BusinessID: businessID, DayOfWeek: day, OpenTime: "09:00", CloseTime: "17:00"})
	}
	hours = append(hours, BusinessHours{BusinessID: businessID, DayOfWeek: 6, OpenTime: "10:00", CloseTime: "14:00"})
	return hours
}

// ParseClock converts an "HH:MM" 24h string into minutes since midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
