package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const contentTypeJSON = "application/json"

// Envelope сообщение с метаданными AMQP.
// Type совпадает с ключом маршрутизации события, MessageID служит ключом идемпотентности у потребителя.
type Envelope struct {
	MessageID  string
	Type       string
	OccurredAt time.Time
	Headers    map[string]any
	Body       any
}

// Publisher публикует события в topic exchange RabbitMQ
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish публикует конверт с ключом маршрутизации key
func (p *Publisher) Publish(ctx context.Context, key string, env Envelope) error {
	msg, err := buildPublishing(env)
	if err != nil {
		return err
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", env.MessageID, key, err)
	}
	return nil
}

// buildPublishing собирает persistent JSON-сообщение из конверта
func buildPublishing(env Envelope) (amqp.Publishing, error) {
	if env.MessageID == "" {
		return amqp.Publishing{}, errors.New("mq: message id is required")
	}

	body, err := json.Marshal(env.Body)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message %s: %w", env.MessageID, err)
	}

	var headers amqp.Table
	if len(env.Headers) > 0 {
		headers = amqp.Table(env.Headers)
		if err := headers.Validate(); err != nil {
			return amqp.Publishing{}, fmt.Errorf("headers of message %s: %w", env.MessageID, err)
		}
	}

	ts := env.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return amqp.Publishing{
		Headers:      headers,
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    env.MessageID,
		Type:         env.Type,
		Timestamp:    ts.UTC(),
		Body:         body,
	}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
