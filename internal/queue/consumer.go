package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-pricing/internal/config"
)

const pricingLogFile = "pricing.log"

// pricingLog appends one line per event to <dir>/pricing.log.
type pricingLog struct {
	mu  sync.Mutex
	dir string
}

func (p *pricingLog) handleMessage(body []byte) error {
	var ev PricingCalendarGenerated
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.EventID == "" || ev.Days <= 0 {
		return errors.New("incomplete event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", p.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(p.dir, pricingLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev PricingCalendarGenerated) string {
	return fmt.Sprintf("[%s] Pricing calendar generated | event_id=%s | property_id=%d | owner_id=%d | area=%s | base=%.2f | days=%d (%s..%s) | min=%.2f | max=%.2f | avg=%.2f | peak_days=%d | tables=%s\n",
		ev.GeneratedAt.UTC().Format(time.RFC3339), ev.EventID, ev.PropertyID, ev.OwnerID, ev.Area, ev.BaseRate,
		ev.Days, ev.From, ev.To, ev.MinPrice, ev.MaxPrice, ev.AvgPrice, ev.PeakDays, ev.TablesVer)
}

// StartPricingConsumer consumes cfg.Queue and appends every event to the
// pricing log under cfg.LogDir. Broker failures are retried with
// exponential backoff; it returns only when ctx is cancelled.
func StartPricingConsumer(ctx context.Context, cfg config.QueueConfig, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "pricing-consumer").Str("queue", cfg.Queue).Logger()
	sink := &pricingLog{dir: cfg.LogDir}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // never give up

	run := func() error {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			return fmt.Errorf("dial broker: %w", err)
		}
		defer func() { _ = conn.Close() }()
		logger.Info().Msg("connected to broker")
		b.Reset()
		return consumeLoop(ctx, conn, cfg.Queue, sink, logger)
	}
	notify := func(err error, next time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", next).Msg("consumer interrupted")
	}

	err := backoff.RetryNotify(func() error {
		if err := run(); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx), notify)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Info().Msg("consumer stopped")
		return nil
	}
	return err
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, sink *pricingLog, logger zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := sink.handleMessage(d.Body); err != nil {
				logger.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false) // reject without requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}
