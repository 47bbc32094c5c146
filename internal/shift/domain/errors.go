package domain

import "errors"

var (
	// ErrValidation некорректный запрос (нет локации, координаты вне диапазона, длинная заметка)
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateOpenShift у пользователя уже есть открытая смена
	ErrDuplicateOpenShift = errors.New("user already has an open shift")

	// ErrNoOpenShift у пользователя нет открытой смены
	ErrNoOpenShift = errors.New("user has no open shift")

	// ErrOutsideGeofence точка clock-in за пределами периметра
	ErrOutsideGeofence = errors.New("location is outside the work perimeter")

	// ErrPersistenceUnavailable хранилище недоступно или не ответило вовремя
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrDuplicateKey смена с таким id уже существует
	ErrDuplicateKey = errors.New("shift id already exists")

	// ErrForbidden пользователь пытается действовать от чужого имени
	ErrForbidden = errors.New("forbidden")
)

// IsDomainError: ошибки, которые ledger отдает наружу без дополнительной обертки
func IsDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateOpenShift) ||
		errors.Is(err, ErrNoOpenShift) ||
		errors.Is(err, ErrOutsideGeofence) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrPersistenceUnavailable)
}
