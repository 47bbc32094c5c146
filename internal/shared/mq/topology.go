package mq

import (
	"context"
	"fmt"

	"shifttrack/internal/shared/logger"
)

// Exchange и ключи маршрутизации событий смен
const (
	ShiftExchange = "shift_topic"

	RoutingShiftClockedIn   = "shift.clocked_in"
	RoutingShiftClockedOut  = "shift.clocked_out"
	RoutingPerimeterUpdated = "perimeter.updated"
)

// RoutingKeys: все ключи; для каждого заводится очередь с тем же именем
var RoutingKeys = []string{
	RoutingShiftClockedIn,
	RoutingShiftClockedOut,
	RoutingPerimeterUpdated,
}

// SetupTopology объявляет exchange, очереди и привязки
func SetupTopology(ctx context.Context, mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return ErrChannelUnavailable
	}

	if err := ch.ExchangeDeclare(
		ShiftExchange, // name
		"topic",       // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // args
	); err != nil {
		return fmt.Errorf("declare %s: %w", ShiftExchange, err)
	}

	for _, q := range RoutingKeys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, q, ShiftExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	log.Info(logger.Entry{
		Action:  "topology_setup_complete",
		Message: "shift exchange and queues declared",
		Additional: map[string]any{
			"exchange": ShiftExchange,
			"queues":   RoutingKeys,
		},
	})

	return nil
}
