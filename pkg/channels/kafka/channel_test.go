package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/trainflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092,"))
	assert.Empty(t, ParseBrokers(""))
}

func TestPartitionByWorkflow(t *testing.T) {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	msg.Metadata.Set(events.EventMetadataKey, "wf-1")

	key, err := partitionByWorkflow(events.Topic, msg)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", key)
}

func TestCreateChannel_NoBrokers(t *testing.T) {
	_, _, err := CreateChannel(watermill.NopLogger{}, nil, "trainflow-test")
	require.ErrorIs(t, err, ErrNoBrokers)
}

func TestCreateChannel_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	logger := watermill.NewSlogLogger(slog.Default())

	publisher, subscriber, err := CreateChannel(logger, brokers, "trainflow-test")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = publisher.Close()
		_ = subscriber.Close()
	})

	topic := "trainflow.events.test"

	// publish first so the topic exists before the consumer group joins
	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"id":"1"}`))
	msg.Metadata.Set("event_type", "workflow.saved")
	require.NoError(t, publisher.Publish(topic, msg))

	messages, err := subscriber.Subscribe(ctx, topic)
	require.NoError(t, err)

	select {
	case received := <-messages:
		assert.JSONEq(t, `{"id":"1"}`, string(received.Payload))
		assert.Equal(t, "workflow.saved", received.Metadata.Get("event_type"))
		received.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
