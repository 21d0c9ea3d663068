// Package service holds the glue between handlers and infrastructure:
// event publishing and listing-to-market mapping.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-pricing/internal/config"
	"github.com/iliyamo/rental-pricing/internal/queue"
)

// Publisher sends pricing events to RabbitMQ. Each publish dials its own
// connection; publishing is infrequent and this keeps the request path free
// of shared connection state. Errors are logged and returned so callers can
// ignore them without failing the request.
type Publisher struct {
	url    string
	queue  string
	logger zerolog.Logger
}

func NewPublisher(cfg config.QueueConfig, logger zerolog.Logger) *Publisher {
	return &Publisher{
		url:    cfg.URL,
		queue:  cfg.Queue,
		logger: logger.With().Str("component", "publisher").Logger(),
	}
}

// PublishCalendarGenerated stamps ev with an event ID and timestamp when
// missing and publishes it as a persistent message.
func (p *Publisher) PublishCalendarGenerated(ctx context.Context, ev queue.PricingCalendarGenerated) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.GeneratedAt.IsZero() {
		ev.GeneratedAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error().Err(err).Msg("marshal event failed")
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn().Err(err).Msg("dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn().Err(err).Msg("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.logger.Warn().Err(err).Msg("queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         queue.EventPricingCalendarGenerated,
		Timestamp:    ev.GeneratedAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.Warn().Err(err).Msg("publish failed")
		return err
	}
	p.logger.Debug().Str("event_id", ev.EventID).Uint64("property_id", ev.PropertyID).Msg("event published")
	return nil
}

// NopPublisher drops events. It is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishCalendarGenerated(context.Context, queue.PricingCalendarGenerated) error {
	return nil
}
