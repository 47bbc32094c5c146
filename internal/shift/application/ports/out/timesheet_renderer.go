package out

import (
	"context"

	"shifttrack/internal/shift/domain"
)

// TimesheetRenderer превращает табель в документ
type TimesheetRenderer interface {
	Render(ctx context.Context, ts domain.Timesheet) ([]byte, error)
}
