package in

import (
	"context"
	"time"
)

// TimesheetInput: параметры выгрузки табеля
type TimesheetInput struct {
	From    time.Time
	To      time.Time
	UserID  string
	GroupBy string // none | day | week
}

// TimesheetUseCase: выгрузка табеля в PDF
type TimesheetUseCase interface {
	ExportTimesheet(ctx context.Context, input TimesheetInput) ([]byte, error)
}
