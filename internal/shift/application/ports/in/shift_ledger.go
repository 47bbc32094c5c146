package in

import (
	"context"
	"time"

	"shifttrack/internal/shift/domain"
)

// ClockInInput: входные данные для открытия смены
type ClockInInput struct {
	UserID   string
	Username string
	Location *domain.Location
	Note     *string
}

// ClockOutInput: входные данные для закрытия смены
type ClockOutInput struct {
	UserID   string
	Location *domain.Location
	Note     *string
}

// ShiftQuery фильтрует по времени clock-in: From включительно, To исключительно.
// Нулевые границы не ограничивают выборку, пустой UserID означает всех.
type ShiftQuery struct {
	From   time.Time
	To     time.Time
	UserID string
}

// ShiftLedger: отметки прихода/ухода и чтение истории смен.
// Гарантирует не более одной открытой смены на пользователя.
type ShiftLedger interface {
	ClockIn(ctx context.Context, input ClockInInput) (*domain.Shift, error)
	ClockOut(ctx context.Context, input ClockOutInput) (*domain.Shift, error)

	// GetOpenShift возвращает nil без ошибки, если открытой смены нет
	GetOpenShift(ctx context.Context, userID string) (*domain.Shift, error)
	GetShiftsForUser(ctx context.Context, userID string) ([]*domain.Shift, error)
	GetAllShifts(ctx context.Context) ([]*domain.Shift, error)
	GetAllOpenShifts(ctx context.Context) ([]*domain.Shift, error)
	GetShiftsBetween(ctx context.Context, query ShiftQuery) ([]*domain.Shift, error)
}
