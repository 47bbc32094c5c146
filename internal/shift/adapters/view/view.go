// Package view: JSON-представление смен для HTTP, live-ленты и событий брокера.
package view

import (
	"time"

	"shifttrack/internal/shift/domain"
)

// TimeLayout: ISO-8601 в UTC с миллисекундами
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Shift: смена в camelCase; незаполненные поля clock-out отдаются как null
type Shift struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	ClockInTime      string    `json:"clockInTime"`
	ClockInLocation  Location  `json:"clockInLocation"`
	ClockInNote      *string   `json:"clockInNote"`
	ClockOutTime     *string   `json:"clockOutTime"`
	ClockOutLocation *Location `json:"clockOutLocation"`
	ClockOutNote     *string   `json:"clockOutNote"`
}

type Perimeter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

// FormatTime переводит время в UTC и форматирует с миллисекундами
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func FromShift(s *domain.Shift) Shift {
	v := Shift{
		ID:              s.ID,
		UserID:          s.UserID,
		Username:        s.Username,
		ClockInTime:     FormatTime(s.ClockInTime),
		ClockInLocation: Location(s.ClockInLocation),
		ClockInNote:     s.ClockInNote,
		ClockOutNote:    s.ClockOutNote,
	}
	if s.ClockOutTime != nil {
		t := FormatTime(*s.ClockOutTime)
		v.ClockOutTime = &t
	}
	if s.ClockOutLocation != nil {
		l := Location(*s.ClockOutLocation)
		v.ClockOutLocation = &l
	}
	return v
}

func FromShifts(shifts []*domain.Shift) []Shift {
	out := make([]Shift, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, FromShift(s))
	}
	return out
}
