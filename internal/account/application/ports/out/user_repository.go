package out

import (
	"context"

	"shifttrack/internal/account/domain"
)

// UserRepository: хранилище учетных записей
type UserRepository interface {
	// Create: ErrUsernameTaken, если имя занято
	Create(ctx context.Context, user *domain.User) error

	// FindByUsername: ErrUserNotFound, если пользователя нет
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// List: по дате создания; пустая роль, все
	List(ctx context.Context, role string) ([]*domain.User, error)
}

// TokenIssuer выпускает токен доступа
type TokenIssuer interface {
	GenerateToken(userID, username, role string) (string, error)
}
