package in

import (
	"context"
	"time"
)

type RegisterInput struct {
	Username string
	Password string // в открытом виде, хешируется bcrypt
	Role     string
}

type LoginInput struct {
	Username string
	Password string
}

// UserView: пользователь без хеша пароля
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthOutput: ответ регистрации и входа
type AuthOutput struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// AccountUseCase: регистрация, вход и справочник пользователей
type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input LoginInput) (*AuthOutput, error)
	ListUsers(ctx context.Context, role string) ([]UserView, error)
}
