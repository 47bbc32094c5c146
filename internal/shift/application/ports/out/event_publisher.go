package out

import (
	"context"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shift/domain"
)

// EventPublisher публикует события смен в брокер
type EventPublisher interface {
	PublishShiftClockedIn(ctx context.Context, shift *domain.Shift) error
	PublishShiftClockedOut(ctx context.Context, shift *domain.Shift) error
	PublishPerimeterUpdated(ctx context.Context, p geofence.Perimeter) error
}
