package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shifttrack/internal/shared/config"
	"shifttrack/internal/shared/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrChannelUnavailable: канал еще не открыт или уже закрыт
var ErrChannelUnavailable = errors.New("rabbitmq channel not available")

// RabbitMQ: подключение к RabbitMQ с повторными попытками при старте
type RabbitMQ struct {
	url    string
	conn   *amqp.Connection
	ch     *amqp.Channel
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// NewRabbitMQ подключается с экспоненциальной задержкой, не больше maxRetries попыток
func NewRabbitMQ(ctx context.Context, cfg config.MQConfig, maxRetries int, log *logger.Logger) (*RabbitMQ, error) {
	if maxRetries <= 0 {
		maxRetries = 1
	}

	mq := &RabbitMQ{
		url: cfg.AMQPURL(),
		log: log,
	}

	retryDelay := 1 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Info(logger.Entry{
			Action:  "rabbitmq_connection_attempt",
			Message: fmt.Sprintf("attempt %d/%d", attempt, maxRetries),
			Additional: map[string]any{
				"host": cfg.Host,
				"port": cfg.Port,
			},
		})

		err := mq.connect()
		if err == nil {
			log.Info(logger.Entry{
				Action:  "rabbitmq_connected",
				Message: fmt.Sprintf("connected to %s:%d", cfg.Host, cfg.Port),
				Additional: map[string]any{
					"attempt": attempt,
				},
			})
			return mq, nil
		}

		log.Error(logger.Entry{
			Action:  "rabbitmq_connection_attempt_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"attempt":      attempt,
				"max_retries":  maxRetries,
				"retry_in_sec": retryDelay.Seconds(),
			},
		})

		if attempt == maxRetries {
			return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
			retryDelay = nextDelay(retryDelay)
		}
	}

	return nil, errors.New("rabbitmq: retry loop exited without result")
}

// nextDelay: множитель 1.5, потолок 30 секунд
func nextDelay(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * 1.5)
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

func (mq *RabbitMQ) connect() error {
	conn, err := amqp.Dial(mq.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	mq.mu.Lock()
	mq.conn = conn
	mq.ch = ch
	mq.mu.Unlock()

	return nil
}

// Channel возвращает активный канал
func (mq *RabbitMQ) Channel() *amqp.Channel {
	mq.mu.RLock()
	defer mq.mu.RUnlock()
	return mq.ch
}

// Publish публикует JSON-сообщение в exchange
func (mq *RabbitMQ) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	mq.mu.RLock()
	ch := mq.ch
	closed := mq.closed
	mq.mu.RUnlock()

	if ch == nil || closed {
		return ErrChannelUnavailable
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(
		publishCtx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

// Close закрывает канал и подключение; повторный вызов ничего не делает
func (mq *RabbitMQ) Close() {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if mq.closed {
		return
	}
	mq.closed = true

	if mq.ch != nil {
		_ = mq.ch.Close()
	}
	if mq.conn != nil {
		_ = mq.conn.Close()
	}

	mq.log.Info(logger.Entry{Action: "rabbitmq_closed", Message: "connection closed"})
}
