package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shifttrack/internal/geofence"
	"shifttrack/internal/shared/logger"
	"shifttrack/internal/shared/metrics"
	"shifttrack/internal/shared/mq"
	"shifttrack/internal/shift/adapters/view"
	out "shifttrack/internal/shift/application/ports/out"
	"shifttrack/internal/shift/domain"
)

// Broker: то, что нужно публикатору от подключения к RabbitMQ
type Broker interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

type eventPublisher struct {
	broker Broker
	log    *logger.Logger
	now    func() time.Time
}

func NewEventPublisher(broker Broker, log *logger.Logger) out.EventPublisher {
	return &eventPublisher{broker: broker, log: log, now: time.Now}
}

// Event: конверт сообщения в shift_topic
type Event struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

func (p *eventPublisher) PublishShiftClockedIn(ctx context.Context, shift *domain.Shift) error {
	return p.publish(ctx, mq.RoutingShiftClockedIn, shift.ID, view.FromShift(shift))
}

func (p *eventPublisher) PublishShiftClockedOut(ctx context.Context, shift *domain.Shift) error {
	return p.publish(ctx, mq.RoutingShiftClockedOut, shift.ID, view.FromShift(shift))
}

func (p *eventPublisher) PublishPerimeterUpdated(ctx context.Context, perimeter geofence.Perimeter) error {
	return p.publish(ctx, mq.RoutingPerimeterUpdated, "", view.Perimeter(perimeter))
}

func (p *eventPublisher) publish(ctx context.Context, routingKey, shiftID string, data any) error {
	body, err := json.Marshal(Event{
		Type:      routingKey,
		Timestamp: view.FormatTime(p.now()),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	if err := p.broker.Publish(ctx, mq.ShiftExchange, routingKey, body); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(routingKey, "error").Inc()
		p.log.Error(logger.Entry{
			Action:  "publish_event_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			ShiftID: shiftID,
			Additional: map[string]any{
				"routing_key": routingKey,
			},
		})
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(routingKey, "ok").Inc()
	p.log.Debug(logger.Entry{
		Action:  "event_published",
		Message: routingKey,
		ShiftID: shiftID,
	})
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher: публикатор для запуска без RabbitMQ
func NewNoopPublisher() out.EventPublisher { return noopPublisher{} }

func (noopPublisher) PublishShiftClockedIn(context.Context, *domain.Shift) error { return nil }
func (noopPublisher) PublishShiftClockedOut(context.Context, *domain.Shift) error { return nil }
func (noopPublisher) PublishPerimeterUpdated(context.Context, geofence.Perimeter) error { return nil }
