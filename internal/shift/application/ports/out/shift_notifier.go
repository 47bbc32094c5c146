package out

import (
	"context"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shift/domain"
)

// Типы сообщений live-ленты
const (
	NotificationShiftClockedIn  = "shift_clocked_in"
	NotificationShiftClockedOut = "shift_clocked_out"
	NotificationPerimeter       = "perimeter_updated"
)

// ShiftNotifier отправляет изменения подключенным менеджерам
type ShiftNotifier interface {
	NotifyShift(ctx context.Context, kind string, shift *domain.Shift) error
	NotifyPerimeter(ctx context.Context, p geofence.Perimeter) error
}
