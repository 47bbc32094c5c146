package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User: учетная запись сотрудника
type User struct {
	ID           string
	Username     string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

// Роли
const (
	RoleManager    = "manager"
	RoleCareWorker = "care_worker"
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength: предел bcrypt в байтах
	MaxPasswordLength = 72
	minUsernameLength = 3
	maxUsernameLength = 64
)

func IsValidRole(role string) bool {
	switch role {
	case RoleManager, RoleCareWorker:
		return true
	default:
		return false
	}
}

// NormalizeUsername обрезает пробелы по краям и проверяет длину
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return "", ErrInvalidUsername
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return "", ErrInvalidUsername
	}
	return username, nil
}
