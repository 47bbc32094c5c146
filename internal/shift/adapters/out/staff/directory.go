// Package staff отдает аналитике смен список сотрудников из модуля учетных записей.
package staff

import (
	"context"

	accountin "shifttrack/internal/account/application/ports/in"
	"shifttrack/internal/account/domain"
	"shifttrack/internal/shift/application/ports/out"
)

type Directory struct {
	accounts accountin.AccountUseCase
}

var _ out.StaffDirectory = (*Directory)(nil)

func NewDirectory(accounts accountin.AccountUseCase) *Directory {
	return &Directory{accounts: accounts}
}

// ListStaff: только сотрудники с ролью care_worker
func (d *Directory) ListStaff(ctx context.Context) ([]out.StaffMember, error) {
	users, err := d.accounts.ListUsers(ctx, domain.RoleCareWorker)
	if err != nil {
		return nil, err
	}
	members := make([]out.StaffMember, 0, len(users))
	for _, u := range users {
		members = append(members, out.StaffMember{UserID: u.ID, Username: u.Username, Role: u.Role})
	}
	return members, nil
}
