package out

import (
	"context"

	"shifttrack/internal/geofence"
)

// PerimeterRepository: текущий рабочий периметр (одна запись)
type PerimeterRepository interface {
	// GetCurrentPerimeter: последний сохраненный периметр или периметр по умолчанию
	GetCurrentPerimeter(ctx context.Context) (geofence.Perimeter, error)

	// SetPerimeter: атомарная замена всех трех полей
	SetPerimeter(ctx context.Context, p geofence.Perimeter) error
}
