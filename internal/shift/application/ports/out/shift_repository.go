package out

import (
	"context"
	"time"

	"shifttrack/internal/shift/domain"
)

// ShiftRepository: хранилище смен.
// Реализация сама обеспечивает не более одной открытой смены на пользователя.
// Списки отсортированы по clock-in, новые первыми.
type ShiftRepository interface {
	// FindOpenShift: открытая смена пользователя или nil, nil
	FindOpenShift(ctx context.Context, userID string) (*domain.Shift, error)

	// InsertShift: ErrDuplicateKey при повторе id, ErrDuplicateOpenShift если у пользователя уже есть открытая смена
	InsertShift(ctx context.Context, shift *domain.Shift) error

	// UpdateShift: закрыть смену по id; ErrNoOpenShift если смена не найдена или уже закрыта
	UpdateShift(ctx context.Context, id string, patch domain.ClockOutPatch) error

	ListShiftsForUser(ctx context.Context, userID string) ([]*domain.Shift, error)
	ListAllShifts(ctx context.Context) ([]*domain.Shift, error)
	ListOpenShifts(ctx context.Context) ([]*domain.Shift, error)

	// ListShiftsBetween: clock-in в [from, to); нулевые границы не ограничивают, пустой userID, все
	ListShiftsBetween(ctx context.Context, from, to time.Time, userID string) ([]*domain.Shift, error)
}
