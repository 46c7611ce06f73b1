package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// ActivityQueueName is the durable queue carrying audit events to downstream
// consumers.
const ActivityQueueName = "gallery.activity"

// AMQPPublisher pushes activity events to RabbitMQ. The channel is re-opened
// lazily after a broker hiccup; publishing is safe for concurrent use.
type AMQPPublisher struct {
	url string
	log zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string, log zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url: url,
		log: log.With().Str("component", "activity_publisher").Logger(),
	}
}

// Publish marshals the event and delivers it to the activity queue with
// persistent delivery mode.
func (p *AMQPPublisher) Publish(ctx context.Context, event domain.ActivityEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", ActivityQueueName, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish activity event: %w", err)
	}
	return nil
}

// Ping verifies broker connectivity, dialing lazily the same way Publish
// does.
func (p *AMQPPublisher) Ping() error {
	_, err := p.channel()
	return err
}

// Close tears down the broker connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare activity queue: %w", err)
	}

	p.conn = conn
	p.ch = ch
	p.log.Info().Str("queue", ActivityQueueName).Msg("broker channel established")
	return p.ch, nil
}

func (p *AMQPPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
