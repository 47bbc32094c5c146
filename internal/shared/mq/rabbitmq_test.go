package mq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shifttrack/internal/shared/logger"
)

func TestNextDelayCapped(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, nextDelay(time.Second))
	assert.Equal(t, 30*time.Second, nextDelay(25*time.Second))
}

func TestPublishWithoutChannel(t *testing.T) {
	mq := &RabbitMQ{log: logger.Nop()}
	err := mq.Publish(context.Background(), ShiftExchange, RoutingShiftClockedIn, []byte(`{}`))
	assert.ErrorIs(t, err, ErrChannelUnavailable)

	mq.Close()
	mq.Close()
	assert.True(t, mq.closed)
}

func TestRoutingKeysMatchQueues(t *testing.T) {
	assert.ElementsMatch(t, []string{"shift.clocked_in", "shift.clocked_out", "perimeter.updated"}, RoutingKeys)
}
