package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
)

const (
	envelopeVersion       = 1
	defaultPublishTimeout = 15 * time.Second
)

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PublisherFactory returns a publisher handle for a topic name.
type PublisherFactory func(topic string) publisher

type pubSubClient interface {
	Publisher(name string) *gcppubsub.Publisher
}

// Publisher routes typed coordination events to their configured topics.
type Publisher struct {
	topics  map[enums.EventType]string
	factory PublisherFactory
	logg    *logger.Logger
}

// PublisherParams wires a Publisher.
type PublisherParams struct {
	Config  config.PubSubConfig
	Logger  *logger.Logger
	PubSub  pubSubClient
	Factory PublisherFactory
}

// NewPublisher builds the event type to topic registry and validates that every
// routed topic is configured.
func NewPublisher(params PublisherParams) (*Publisher, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	factory := params.Factory
	if factory == nil {
		if params.PubSub == nil {
			return nil, errors.New("pubsub client is required")
		}
		client := params.PubSub
		factory = func(topic string) publisher {
			pub := client.Publisher(topic)
			if pub == nil {
				return nil
			}
			return &gcpPublisher{Publisher: pub}
		}
	}

	cfg := params.Config
	for name, topic := range map[string]string{
		"payments":   cfg.PaymentsTopic,
		"vendor ops": cfg.VendorOpsTopic,
		"shipping":   cfg.ShippingTopic,
		"customer":   cfg.CustomerTopic,
	} {
		if topic == "" {
			return nil, fmt.Errorf("%s topic is required", name)
		}
	}

	topics := map[enums.EventType]string{
		enums.EventPaymentSplitRequested:          cfg.PaymentsTopic,
		enums.EventVendorOrderNotification:        cfg.VendorOpsTopic,
		enums.EventVendorInventoryAllocation:      cfg.VendorOpsTopic,
		enums.EventVendorFulfillmentRequested:     cfg.VendorOpsTopic,
		enums.EventMultiVendorShippingRequested:   cfg.ShippingTopic,
		enums.EventCustomerMultiVendorOrderNotice: cfg.CustomerTopic,
	}

	return &Publisher{
		topics:  topics,
		factory: factory,
		logg:    params.Logger,
	}, nil
}

// Topic returns the topic an event type routes to.
func (p *Publisher) Topic(eventType enums.EventType) (string, bool) {
	topic, ok := p.topics[eventType]
	return topic, ok
}

// Publish wraps the payload in an envelope and publishes it to the event's
// topic, waiting for the server ack.
func (p *Publisher) Publish(ctx context.Context, eventType enums.EventType, payload any) error {
	topic, ok := p.topics[eventType]
	if !ok {
		return fmt.Errorf("no topic registered for event type %s", eventType)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}

	envelope := Envelope{
		Version:    envelopeVersion,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	pub := p.factory(topic)
	if pub == nil {
		return fmt.Errorf("publisher not configured for topic %s", topic)
	}

	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_id":   envelope.EventID,
			"event_type": string(eventType),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for topic %s", topic)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publishing %s: %w", eventType, err)
	}

	fields := map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
		"topic":      topic,
	}
	p.logg.Info(p.logg.WithFields(ctx, fields), "coordination event published")
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
