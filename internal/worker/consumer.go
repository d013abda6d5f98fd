package worker

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/algobros/terminal-backend/pkg/enums"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/metrics"
	"github.com/algobros/terminal-backend/pkg/outbox"
	"github.com/algobros/terminal-backend/pkg/outbox/idempotency"
	"github.com/algobros/terminal-backend/pkg/outbox/payloads"
)

const domainConsumer = "terminal-worker"

type paymentActivatedHandler interface {
	HandlePaymentActivated(ctx context.Context, event payloads.PaymentActivatedEvent) error
}

type knowledgeSubmittedHandler interface {
	HandleSubmitted(ctx context.Context, event payloads.KnowledgeSubmittedEvent) error
}

// Consumer drains the domain subscription and dispatches events to the
// worker-side handlers. One subscription carries every event type; anything
// without a handler is acked and dropped.
type Consumer struct {
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	payments     paymentActivatedHandler
	knowledge    knowledgeSubmittedHandler
	stats        *metrics.OutboxMetrics
	logg         *logger.Logger
}

// NewConsumer builds the domain event consumer.
func NewConsumer(
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	payments paymentActivatedHandler,
	knowledge knowledgeSubmittedHandler,
	stats *metrics.OutboxMetrics,
	logg *logger.Logger,
) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment handler required")
	}
	if knowledge == nil {
		return nil, fmt.Errorf("knowledge handler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		idempotency:  manager,
		payments:     payments,
		knowledge:    knowledge,
		stats:        stats,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	parsed, err := enums.ParseOutboxEventType(eventType)
	if err != nil || !c.handles(parsed) {
		c.logg.Debug(logCtx, "skipping unhandled event type")
		c.stats.IncConsumed(eventType, "skipped")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		c.stats.IncConsumed(eventType, "malformed")
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		c.stats.IncConsumed(eventType, "malformed")
		return processResult{ack: true}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		c.stats.IncConsumed(eventType, "duplicate")
		return processResult{ack: true}
	}

	if err := c.dispatch(ctx, parsed, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "event handling failed", err)
		c.stats.IncConsumed(eventType, "error")
		_ = c.idempotency.Delete(ctx, domainConsumer, eventID)
		return processResult{nack: true}
	}

	c.stats.IncConsumed(eventType, "ok")
	return processResult{ack: true}
}

func (c *Consumer) handles(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventPaymentActivated, enums.EventKnowledgeSubmitted:
		return true
	default:
		return false
	}
}

func (c *Consumer) dispatch(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventPaymentActivated:
		var payload payloads.PaymentActivatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parsing payment payload: %w", err)
		}
		return c.payments.HandlePaymentActivated(ctx, payload)
	case enums.EventKnowledgeSubmitted:
		var payload payloads.KnowledgeSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parsing knowledge payload: %w", err)
		}
		return c.knowledge.HandleSubmitted(ctx, payload)
	default:
		c.logg.Debug(logCtx, "event type not handled")
		return nil
	}
}
