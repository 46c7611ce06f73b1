package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

const maxConsumerBackoff = 30 * time.Second

// ActivityConsumer drains the activity queue and emits one structured log
// line per audit event. It runs a reconnect loop with exponential backoff and
// only stops when its context is cancelled. A message that cannot be decoded
// is rejected without requeue so a poison message never loops.
type ActivityConsumer struct {
	url string
	log zerolog.Logger
}

func NewActivityConsumer(url string, log zerolog.Logger) *ActivityConsumer {
	return &ActivityConsumer{
		url: url,
		log: log.With().Str("component", "activity_consumer").Logger(),
	}
}

// Run blocks until ctx is cancelled.
func (c *ActivityConsumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("backoff", backoff).Msg("broker dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxConsumerBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			_ = conn.Close()
			if ctx.Err() != nil {
				return
			}
			c.log.Warn().Err(err).Msg("consume loop ended, reconnecting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func (c *ActivityConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set qos failed")
	}

	if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ActivityQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.log.Info().Str("queue", ActivityQueueName).Msg("consuming activity events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			var event domain.ActivityEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				c.log.Error().Err(err).Msg("undecodable activity event")
				_ = d.Nack(false, false)
				continue
			}
			c.log.Info().
				Str("actor", event.Actor).
				Str("action", event.Action).
				Str("subject", event.Subject).
				Str("detail", event.Detail).
				Time("at", event.Timestamp).
				Msg("activity")
			_ = d.Ack(false)
		}
	}
}
