//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
	"github.com/joao-fontenele/coffeeshop/internal/testutil"
)

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer func() { _ = ctrl.Close() }()

	require.NoError(t, ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func TestProducerConsumer_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	brokers := testutil.SetupKafka(ctx, t)
	const topic = "order.events"
	createTopic(t, brokers[0], topic)

	producer := NewProducer(brokers, topic)
	defer func() { _ = producer.Close() }()

	sent := domain.OrderEvent{
		EventID:    "evt-1",
		Type:       domain.OrderEventConfirmed,
		OrderID:    1,
		Email:      "a@x.com",
		ItemIDs:    []int64{1, 3},
		TotalPrice: 270,
		Timestamp:  time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, producer.Publish(ctx, sent.Email, sent))

	consumer := NewConsumer(brokers, topic, "notifier-test", WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()

	var got domain.OrderEvent
	err := consumer.Consume(consumeCtx, func(_ context.Context, payload []byte) error {
		if err := json.Unmarshal(payload, &got); err != nil {
			return err
		}
		stop()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, sent.EventID, got.EventID)
	assert.Equal(t, sent.Type, got.Type)
	assert.Equal(t, sent.ItemIDs, got.ItemIDs)
	assert.Equal(t, sent.TotalPrice, got.TotalPrice)
	assert.True(t, sent.Timestamp.Equal(got.Timestamp))
}
