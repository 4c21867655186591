package events

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
)

type capturedMessage struct {
	topic string
	msg   *gcppubsub.Message
}

type stubPublisher struct {
	topic    string
	captured *[]capturedMessage
	err      error
}

func (s *stubPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	*s.captured = append(*s.captured, capturedMessage{topic: s.topic, msg: msg})
	return &stubResult{err: s.err}
}

type stubResult struct {
	err error
}

func (r *stubResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}

func testTopics() config.PubSubConfig {
	return config.PubSubConfig{
		PaymentsTopic:  "payments",
		VendorOpsTopic: "vendor-ops",
		ShippingTopic:  "shipping",
		CustomerTopic:  "customer",
	}
}

func newTestPublisher(t *testing.T, captured *[]capturedMessage) *Publisher {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "events-test", Output: io.Discard})
	pub, err := NewPublisher(PublisherParams{
		Config: testTopics(),
		Logger: logg,
		Factory: func(topic string) publisher {
			return &stubPublisher{topic: topic, captured: captured}
		},
	})
	require.NoError(t, err)
	return pub
}

func TestNewPublisherRequiresTopics(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "events-test", Output: io.Discard})
	cfg := testTopics()
	cfg.ShippingTopic = ""
	_, err := NewPublisher(PublisherParams{
		Config: cfg,
		Logger: logg,
		Factory: func(string) publisher {
			return nil
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shipping topic")
}

func TestTopicRouting(t *testing.T) {
	var captured []capturedMessage
	pub := newTestPublisher(t, &captured)

	cases := map[enums.EventType]string{
		enums.EventPaymentSplitRequested:          "payments",
		enums.EventVendorOrderNotification:        "vendor-ops",
		enums.EventVendorInventoryAllocation:      "vendor-ops",
		enums.EventVendorFulfillmentRequested:     "vendor-ops",
		enums.EventMultiVendorShippingRequested:   "shipping",
		enums.EventCustomerMultiVendorOrderNotice: "customer",
	}
	for eventType, want := range cases {
		topic, ok := pub.Topic(eventType)
		require.True(t, ok, "event type %s has no topic", eventType)
		assert.Equal(t, want, topic)
	}
}

func TestPublishWrapsPayloadInEnvelope(t *testing.T) {
	var captured []capturedMessage
	pub := newTestPublisher(t, &captured)

	payload := VendorOrderNotificationEvent{
		OrderID:       uuid.New(),
		VendorID:      uuid.New(),
		ItemCount:     2,
		SubtotalCents: 4500,
	}
	err := pub.Publish(context.Background(), enums.EventVendorOrderNotification, payload)
	require.NoError(t, err)
	require.Len(t, captured, 1)

	got := captured[0]
	assert.Equal(t, "vendor-ops", got.topic)
	assert.Equal(t, string(enums.EventVendorOrderNotification), got.msg.Attributes["event_type"])
	assert.NotEmpty(t, got.msg.Attributes["event_id"])

	var envelope Envelope
	require.NoError(t, json.Unmarshal(got.msg.Data, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.Equal(t, got.msg.Attributes["event_id"], envelope.EventID)
	assert.False(t, envelope.OccurredAt.IsZero())

	var decoded VendorOrderNotificationEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestPublishUnknownEventType(t *testing.T) {
	var captured []capturedMessage
	pub := newTestPublisher(t, &captured)

	err := pub.Publish(context.Background(), enums.EventType("UNKNOWN"), struct{}{})
	require.Error(t, err)
	assert.Empty(t, captured)
}

func TestPublishSurfacesAckErrors(t *testing.T) {
	var captured []capturedMessage
	logg := logger.New(logger.Options{ServiceName: "events-test", Output: io.Discard})
	pub, err := NewPublisher(PublisherParams{
		Config: testTopics(),
		Logger: logg,
		Factory: func(topic string) publisher {
			return &stubPublisher{topic: topic, captured: &captured, err: assert.AnError}
		},
	})
	require.NoError(t, err)

	err = pub.Publish(context.Background(), enums.EventPaymentSplitRequested, PaymentSplitRequestedEvent{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
