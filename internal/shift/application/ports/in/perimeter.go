package in

import (
	"context"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shift/domain"
)

// PerimeterCheckOutput: результат проверки точки
type PerimeterCheckOutput struct {
	Within         bool               `json:"within"`
	DistanceMeters float64            `json:"distanceMeters"`
	Perimeter      geofence.Perimeter `json:"perimeter"`
}

// PerimeterUseCase: чтение и замена текущего рабочего периметра
type PerimeterUseCase interface {
	GetPerimeter(ctx context.Context) (geofence.Perimeter, error)
	SetPerimeter(ctx context.Context, p geofence.Perimeter) (geofence.Perimeter, error)
	CheckLocation(ctx context.Context, loc domain.Location) (*PerimeterCheckOutput, error)
}
