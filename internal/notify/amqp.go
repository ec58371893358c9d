package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/popodpiske/checkout-gateway/internal/config"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
)

// QueueName очередь, в которую маршрутизируются уведомления шлюза.
const QueueName = "notifications.checkout"

// Publisher публикует уведомления в обменник RabbitMQ.
type Publisher struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
	log        *slog.Logger
	mu         sync.Mutex
}

// Connect подключается к RabbitMQ с повторами.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "notify.Connect"
	var conn *amqp.Connection
	var err error

	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel объявляет обменник direct и очередь уведомлений, привязанную по routingKey.
func SetupChannel(conn *amqp.Connection, exchange, routingKey string) (*amqp.Channel, error) {
	const op = "notify.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.QueueBind(QueueName, routingKey, exchange, false, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, QueueName, routingKey, err)
	}
	return ch, nil
}

// NewPublisher подключается к RabbitMQ и готовит канал.
func NewPublisher(cfg config.RabbitMQ, log *slog.Logger) (*Publisher, error) {
	const op = "notify.NewPublisher"
	conn, err := Connect(cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := SetupChannel(conn, cfg.Exchange, cfg.RoutingKey)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{
		conn:       conn,
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		log:        log,
	}, nil
}

// Publish публикует сообщение в формате JSON.
func (p *Publisher) Publish(message any) error {
	const op = "notify.Publish"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.Publish(
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Notify реализует Notifier.
func (p *Publisher) Notify(_ context.Context, n Notification) {
	if err := p.Publish(n); err != nil {
		p.log.Error("failed to publish notification", sl.Err(err), sl.Session(n.SessionID))
	}
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	const op = "notify.Publisher.Close"
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
