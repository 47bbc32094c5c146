package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/metrics"
	"shifttrack/internal/shared/utils"
	in "shifttrack/internal/shift/application/ports/in"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"
)

const (
	defaultStoreTimeout    = 5 * time.Second
	defaultAnnounceTimeout = 3 * time.Second
	defaultNoteMaxLength   = 500
)

// LedgerOptions: настройки ledger; нулевые значения заменяются значениями по умолчанию
type LedgerOptions struct {
	StoreTimeout time.Duration
	// AnnounceTimeout: предел на публикацию события после сохранения смены
	AnnounceTimeout time.Duration
	NoteMaxLength   int
	Now             func() time.Time
	NewID           func() string
}

// Ledger реализует ShiftLedger
type Ledger struct {
	shifts     out.ShiftRepository
	perimeters out.PerimeterRepository
	events     out.EventPublisher
	notifier   out.ShiftNotifier
	log        *logger.Logger

	locks           *userLocks
	timeout         time.Duration
	announceTimeout time.Duration
	noteMax         int
	now             func() time.Time
	newID           func() string
}

var _ in.ShiftLedger = (*Ledger)(nil)

// NewLedger создает ledger. events и notifier могут быть nil.
func NewLedger(
	shifts out.ShiftRepository,
	perimeters out.PerimeterRepository,
	events out.EventPublisher,
	notifier out.ShiftNotifier,
	log *logger.Logger,
	opts LedgerOptions,
) *Ledger {
	l := &Ledger{
		shifts:     shifts,
		perimeters: perimeters,
		events:     events,
		notifier:   notifier,
		log:        log,
		locks:           newUserLocks(),
		timeout:         opts.StoreTimeout,
		announceTimeout: opts.AnnounceTimeout,
		noteMax:         opts.NoteMaxLength,
		now:             opts.Now,
		newID:           opts.NewID,
	}
	if l.timeout <= 0 {
		l.timeout = defaultStoreTimeout
	}
	if l.announceTimeout <= 0 {
		l.announceTimeout = defaultAnnounceTimeout
	}
	if l.noteMax <= 0 {
		l.noteMax = defaultNoteMaxLength
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = utils.NewOrderedID
	}
	return l
}

// ClockIn открывает смену, если точка внутри периметра и открытой смены нет
func (l *Ledger) ClockIn(ctx context.Context, input in.ClockInInput) (*domain.Shift, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, l.reject("clock_in", "validation", fmt.Errorf("%w: userId is required", domain.ErrValidation))
	}
	if input.Location == nil {
		return nil, l.reject("clock_in", "validation", fmt.Errorf("%w: location is required", domain.ErrValidation))
	}
	loc := *input.Location
	if err := loc.Validate(); err != nil {
		return nil, l.reject("clock_in", "validation", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}
	note, err := domain.NormalizeNote(input.Note, l.noteMax)
	if err != nil {
		return nil, l.reject("clock_in", "validation", err)
	}

	var perimeter geofence.Perimeter
	err = l.call(ctx, "get_current_perimeter", func(ctx context.Context) error {
		var err error
		perimeter, err = l.perimeters.GetCurrentPerimeter(ctx)
		return err
	})
	if err != nil {
		return nil, l.reject("clock_in", "persistence", err)
	}

	if !geofence.IsWithinPerimeter(loc, perimeter) {
		distance := geofence.Distance(loc, perimeter.Center())
		l.log.Warn(logger.Entry{
			Action:  "clock_in_outside_geofence",
			Message: "location is outside the perimeter",
			Additional: map[string]any{
				"user_id":         userID,
				"distance_meters": distance,
				"radius_meters":   perimeter.Radius,
			},
		})
		return nil, l.reject("clock_in", "outside_geofence",
			fmt.Errorf("%w: %.0fm from center, radius %.0fm", domain.ErrOutsideGeofence, distance, perimeter.Radius))
	}

	shift, err := l.openShift(ctx, userID, strings.TrimSpace(input.Username), loc, note)
	if err != nil {
		return nil, err
	}

	l.announce(ctx, out.NotificationShiftClockedIn, shift)
	return shift, nil
}

// openShift: проверка и вставка под блокировкой пользователя
func (l *Ledger) openShift(ctx context.Context, userID, username string, loc domain.Location, note *string) (*domain.Shift, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	var open *domain.Shift
	err := l.call(ctx, "find_open_shift", func(ctx context.Context) error {
		var err error
		open, err = l.shifts.FindOpenShift(ctx, userID)
		return err
	})
	if err != nil {
		return nil, l.reject("clock_in", "persistence", err)
	}
	if open != nil {
		l.log.Warn(logger.Entry{
			Action:  "clock_in_duplicate_open_shift",
			Message: "user already has an open shift",
			ShiftID: open.ID,
			Additional: map[string]any{
				"user_id": userID,
			},
		})
		return nil, l.reject("clock_in", "duplicate_open_shift", domain.ErrDuplicateOpenShift)
	}

	shift := domain.NewShift(l.newID(), userID, username, l.clock(), loc, note)

	err = l.call(ctx, "insert_shift", func(ctx context.Context) error {
		return l.shifts.InsertShift(ctx, shift)
	})
	if err != nil {
		// ограничение хранилища сработало раньше нашей проверки (другой процесс)
		if errors.Is(err, domain.ErrDuplicateOpenShift) {
			return nil, l.reject("clock_in", "duplicate_open_shift", err)
		}
		l.log.Error(logger.Entry{
			Action:  "clock_in_insert_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			ShiftID: shift.ID,
			Additional: map[string]any{
				"user_id": userID,
			},
		})
		return nil, l.reject("clock_in", "persistence", err)
	}

	metrics.ClockInsTotal.Inc()
	metrics.OpenShifts.Inc()

	l.log.Info(logger.Entry{
		Action:  "shift_clocked_in",
		Message: "shift opened",
		ShiftID: shift.ID,
		Additional: map[string]any{
			"user_id":  shift.UserID,
			"username": shift.Username,
		},
	})
	return shift, nil
}

// ClockOut закрывает открытую смену пользователя
func (l *Ledger) ClockOut(ctx context.Context, input in.ClockOutInput) (*domain.Shift, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, l.reject("clock_out", "validation", fmt.Errorf("%w: userId is required", domain.ErrValidation))
	}
	if input.Location == nil {
		return nil, l.reject("clock_out", "validation", fmt.Errorf("%w: location is required", domain.ErrValidation))
	}
	loc := *input.Location
	if err := loc.Validate(); err != nil {
		return nil, l.reject("clock_out", "validation", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}
	note, err := domain.NormalizeNote(input.Note, l.noteMax)
	if err != nil {
		return nil, l.reject("clock_out", "validation", err)
	}

	closed, err := l.closeShift(ctx, userID, loc, note)
	if err != nil {
		return nil, err
	}

	l.announce(ctx, out.NotificationShiftClockedOut, closed)
	return closed, nil
}

// closeShift: поиск и закрытие открытой смены под блокировкой пользователя
func (l *Ledger) closeShift(ctx context.Context, userID string, loc domain.Location, note *string) (*domain.Shift, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	var open *domain.Shift
	err := l.call(ctx, "find_open_shift", func(ctx context.Context) error {
		var err error
		open, err = l.shifts.FindOpenShift(ctx, userID)
		return err
	})
	if err != nil {
		return nil, l.reject("clock_out", "persistence", err)
	}
	if open == nil {
		return nil, l.reject("clock_out", "no_open_shift", domain.ErrNoOpenShift)
	}

	now := l.clock()
	at := domain.ClampClockOut(open.ClockInTime, now)
	if !at.Equal(now) {
		l.log.Warn(logger.Entry{
			Action:  "clock_out_clamped",
			Message: "local clock is behind clock-in time, clock-out set to clock-in",
			ShiftID: open.ID,
			Additional: map[string]any{
				"now":           now.Format(time.RFC3339Nano),
				"clock_in_time": open.ClockInTime.Format(time.RFC3339Nano),
			},
		})
	}
	patch := domain.ClockOutPatch{
		ClockOutTime:     at,
		ClockOutLocation: loc,
		ClockOutNote:     note,
	}

	err = l.call(ctx, "update_shift", func(ctx context.Context) error {
		return l.shifts.UpdateShift(ctx, open.ID, patch)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoOpenShift) {
			return nil, l.reject("clock_out", "no_open_shift", err)
		}
		l.log.Error(logger.Entry{
			Action:  "clock_out_update_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			ShiftID: open.ID,
		})
		return nil, l.reject("clock_out", "persistence", err)
	}

	closed := open.Clone()
	if err := closed.Close(patch); err != nil {
		return nil, err
	}

	metrics.ClockOutsTotal.Inc()
	metrics.OpenShifts.Dec()

	l.log.Info(logger.Entry{
		Action:  "shift_clocked_out",
		Message: "shift closed",
		ShiftID: closed.ID,
		Additional: map[string]any{
			"user_id":        closed.UserID,
			"duration_hours": closed.Duration(at).Hours(),
		},
	})
	return closed, nil
}

// GetOpenShift возвращает открытую смену пользователя или nil
func (l *Ledger) GetOpenShift(ctx context.Context, userID string) (*domain.Shift, error) {
	var shift *domain.Shift
	err := l.call(ctx, "find_open_shift", func(ctx context.Context) error {
		var err error
		shift, err = l.shifts.FindOpenShift(ctx, userID)
		return err
	})
	return shift, err
}

func (l *Ledger) GetShiftsForUser(ctx context.Context, userID string) ([]*domain.Shift, error) {
	return l.list(ctx, "list_shifts_for_user", func(ctx context.Context) ([]*domain.Shift, error) {
		return l.shifts.ListShiftsForUser(ctx, userID)
	})
}

func (l *Ledger) GetAllShifts(ctx context.Context) ([]*domain.Shift, error) {
	return l.list(ctx, "list_all_shifts", l.shifts.ListAllShifts)
}

func (l *Ledger) GetAllOpenShifts(ctx context.Context) ([]*domain.Shift, error) {
	return l.list(ctx, "list_open_shifts", l.shifts.ListOpenShifts)
}

// GetShiftsBetween: смены с clock-in в [From, To)
func (l *Ledger) GetShiftsBetween(ctx context.Context, q in.ShiftQuery) ([]*domain.Shift, error) {
	if !q.From.IsZero() && !q.To.IsZero() && !q.From.Before(q.To) {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrValidation)
	}
	return l.list(ctx, "list_shifts_between", func(ctx context.Context) ([]*domain.Shift, error) {
		return l.shifts.ListShiftsBetween(ctx, q.From, q.To, q.UserID)
	})
}

// SyncOpenShiftsGauge выставляет gauge открытых смен по данным хранилища (при старте)
func (l *Ledger) SyncOpenShiftsGauge(ctx context.Context) error {
	open, err := l.GetAllOpenShifts(ctx)
	if err != nil {
		return err
	}
	metrics.OpenShifts.Set(float64(len(open)))
	return nil
}

func (l *Ledger) list(ctx context.Context, op string, fn func(context.Context) ([]*domain.Shift, error)) ([]*domain.Shift, error) {
	var shifts []*domain.Shift
	err := l.call(ctx, op, func(ctx context.Context) error {
		var err error
		shifts, err = fn(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if shifts == nil {
		shifts = []*domain.Shift{}
	}
	return shifts, nil
}

// call выполняет обращение к хранилищу с таймаутом.
// Все, что не является доменной ошибкой, превращается в ErrPersistenceUnavailable.
func (l *Ledger) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	timer := metrics.NewTimer()
	err := fn(ctx)
	timer.ObserveDuration(metrics.StoreOperationDuration.WithLabelValues(op))

	if err == nil || domain.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceUnavailable, err)
}

// clock: текущее время в UTC с точностью до микросекунд, как в Postgres
func (l *Ledger) clock() time.Time {
	return l.now().UTC().Truncate(time.Microsecond)
}

func (l *Ledger) reject(op, reason string, err error) error {
	metrics.ClockRejectionsTotal.WithLabelValues(op, reason).Inc()
	return err
}

// announce: событие в брокер и live-ленту; ошибки только логируются, смена уже сохранена.
// Отмена запроса на публикацию не влияет.
func (l *Ledger) announce(ctx context.Context, kind string, shift *domain.Shift) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.announceTimeout)
	defer cancel()

	if l.events != nil {
		var err error
		switch kind {
		case out.NotificationShiftClockedIn:
			err = l.events.PublishShiftClockedIn(ctx, shift)
		case out.NotificationShiftClockedOut:
			err = l.events.PublishShiftClockedOut(ctx, shift)
		}
		if err != nil {
			l.log.Error(logger.Entry{
				Action:  "shift_event_publish_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
				ShiftID: shift.ID,
				Additional: map[string]any{
					"kind": kind,
				},
			})
		}
	}

	if l.notifier != nil {
		if err := l.notifier.NotifyShift(ctx, kind, shift); err != nil {
			l.log.Warn(logger.Entry{
				Action:  "shift_notify_failed",
				Message: err.Error(),
				ShiftID: shift.ID,
			})
		}
	}
}
