package usecase

import (
	"context"
	"fmt"
	"time"

	"shifttrack/internal/shared/logger"
	in "shifttrack/internal/shift/application/ports/in"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"
)

// TimesheetService собирает табель и отдает его на отрисовку
type TimesheetService struct {
	shifts   out.ShiftRepository
	renderer out.TimesheetRenderer
	log      *logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

var _ in.TimesheetUseCase = (*TimesheetService)(nil)

func NewTimesheetService(shifts out.ShiftRepository, renderer out.TimesheetRenderer, log *logger.Logger, timeout time.Duration, now func() time.Time) *TimesheetService {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &TimesheetService{shifts: shifts, renderer: renderer, log: log, timeout: timeout, now: now}
}

func (s *TimesheetService) ExportTimesheet(ctx context.Context, input in.TimesheetInput) ([]byte, error) {
	groupBy := input.GroupBy
	if groupBy == "" {
		groupBy = domain.GroupByNone
	}
	if !domain.IsValidGroupBy(groupBy) {
		return nil, fmt.Errorf("%w: groupBy must be none, day or week", domain.ErrValidation)
	}
	if !input.From.IsZero() && !input.To.IsZero() && !input.From.Before(input.To) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrValidation)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	shifts, err := s.shifts.ListShiftsBetween(storeCtx, input.From.UTC(), input.To.UTC(), input.UserID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("timesheet shifts: %w: %w", domain.ErrPersistenceUnavailable, err)
	}

	ts := domain.Timesheet{
		From:        input.From.UTC(),
		To:          input.To.UTC(),
		GeneratedAt: s.now().UTC(),
		GroupBy:     groupBy,
		Groups:      domain.GroupShifts(shifts, groupBy),
	}

	doc, err := s.renderer.Render(ctx, ts)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:  "timesheet_render_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("render timesheet: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "timesheet_exported",
		Message: "timesheet generated",
		Additional: map[string]any{
			"shifts":   len(shifts),
			"group_by": groupBy,
			"user_id":  input.UserID,
			"bytes":    len(doc),
		},
	})
	return doc, nil
}
