package out

import "context"

// StaffMember: сотрудник из справочника пользователей
type StaffMember struct {
	UserID   string
	Username string
	Role     string
}

// StaffDirectory: список сотрудников для аналитики
type StaffDirectory interface {
	ListStaff(ctx context.Context) ([]StaffMember, error)
}
