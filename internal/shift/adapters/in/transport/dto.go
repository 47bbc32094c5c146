package transport

import (
	"shifttrack/internal/shift/adapters/view"
	"shifttrack/internal/shift/domain"
)

// ClockInRequest: тело POST /shifts/clock-in
type ClockInRequest struct {
	UserID   string         `json:"userId,omitempty"`
	Username string         `json:"username,omitempty"`
	Location *view.Location `json:"location"`
	Note     *string        `json:"note,omitempty"`
}

// ClockOutRequest: тело POST /shifts/clock-out
type ClockOutRequest struct {
	UserID   string         `json:"userId,omitempty"`
	Location *view.Location `json:"location"`
	Note     *string        `json:"note,omitempty"`
}

// PerimeterRequest: тело PUT /perimeter
type PerimeterRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    *float64 `json:"radius"`
}

type ShiftResponse struct {
	Shift view.Shift `json:"shift"`
}

type ShiftListResponse struct {
	Shifts []view.Shift `json:"shifts"`
	Count  int          `json:"count"`
}

// OpenShiftResponse: shift равен null, если открытой смены нет
type OpenShiftResponse struct {
	Shift *view.Shift `json:"shift"`
}

func toDomainLocation(l *view.Location) *domain.Location {
	if l == nil {
		return nil
	}
	loc := domain.Location(*l)
	return &loc
}

func newShiftList(shifts []*domain.Shift) ShiftListResponse {
	return ShiftListResponse{Shifts: view.FromShifts(shifts), Count: len(shifts)}
}
