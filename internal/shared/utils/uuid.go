// Package utils: генерация и проверка идентификаторов.
package utils

import "github.com/google/uuid"

// NewUUID: случайный UUID v4 (пользователи, клиенты WebSocket, request id)
func NewUUID() string {
	return uuid.New().String()
}

// NewOrderedID: UUID v7; строковый порядок совпадает с порядком создания
func NewOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// IsUUID: строка в каноническом виде UUID
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
