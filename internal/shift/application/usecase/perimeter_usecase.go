package usecase

import (
	"context"
	"fmt"
	"time"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/metrics"
	in "shifttrack/internal/shift/application/ports/in"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"
)

// PerimeterService реализует PerimeterUseCase
type PerimeterService struct {
	repo     out.PerimeterRepository
	events   out.EventPublisher
	notifier out.ShiftNotifier
	log      *logger.Logger
	timeout  time.Duration
}

var _ in.PerimeterUseCase = (*PerimeterService)(nil)

// NewPerimeterService создает сервис периметра. events и notifier могут быть nil.
func NewPerimeterService(
	repo out.PerimeterRepository,
	events out.EventPublisher,
	notifier out.ShiftNotifier,
	log *logger.Logger,
	timeout time.Duration,
) *PerimeterService {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &PerimeterService{
		repo:     repo,
		events:   events,
		notifier: notifier,
		log:      log,
		timeout:  timeout,
	}
}

func (s *PerimeterService) GetPerimeter(ctx context.Context) (geofence.Perimeter, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.repo.GetCurrentPerimeter(ctx)
	if err != nil {
		return geofence.Perimeter{}, fmt.Errorf("get perimeter: %w: %w", domain.ErrPersistenceUnavailable, err)
	}
	return p, nil
}

// SetPerimeter заменяет периметр целиком
func (s *PerimeterService) SetPerimeter(ctx context.Context, p geofence.Perimeter) (geofence.Perimeter, error) {
	if err := p.Validate(); err != nil {
		return geofence.Perimeter{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.SetPerimeter(storeCtx, p); err != nil {
		s.log.Error(logger.Entry{
			Action:  "set_perimeter_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return geofence.Perimeter{}, fmt.Errorf("set perimeter: %w: %w", domain.ErrPersistenceUnavailable, err)
	}

	metrics.PerimeterUpdatesTotal.Inc()
	s.log.Info(logger.Entry{
		Action:  "perimeter_updated",
		Message: "work perimeter replaced",
		Additional: map[string]any{
			"latitude":  p.Latitude,
			"longitude": p.Longitude,
			"radius":    p.Radius,
		},
	})

	if s.events != nil {
		if err := s.events.PublishPerimeterUpdated(ctx, p); err != nil {
			s.log.Error(logger.Entry{
				Action:  "perimeter_event_publish_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyPerimeter(ctx, p); err != nil {
			s.log.Warn(logger.Entry{
				Action:  "perimeter_notify_failed",
				Message: err.Error(),
			})
		}
	}

	return p, nil
}

// CheckLocation: подсказка клиенту до clock-in; окончательную проверку делает ClockIn
func (s *PerimeterService) CheckLocation(ctx context.Context, loc domain.Location) (*in.PerimeterCheckOutput, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	p, err := s.GetPerimeter(ctx)
	if err != nil {
		return nil, err
	}
	return &in.PerimeterCheckOutput{
		Within:         geofence.IsWithinPerimeter(loc, p),
		DistanceMeters: geofence.Distance(loc, p.Center()),
		Perimeter:      p,
	}, nil
}
