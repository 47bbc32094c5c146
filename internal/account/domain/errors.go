package domain

import "errors"

var (
	// ErrUsernameTaken пользователь с таким именем уже есть
	ErrUsernameTaken = errors.New("username already taken")

	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials неверное имя или пароль; причину не уточняем
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrInvalidUsername  = errors.New("username must be 3-64 characters without spaces")
	ErrInvalidRole      = errors.New("role must be manager or care_worker")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
)
