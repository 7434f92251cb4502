package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "practice.events"

type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
	logger   *log.Logger
}

// NewAMQPPublisher connects and declares the exchange. An empty URI yields a
// publisher that drops every event.
func NewAMQPPublisher(uri, exchange string, logger *log.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = log.Default()
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if uri == "" {
		logger.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &AMQPPublisher{exchange: exchange, logger: logger}, nil
	}

	conn, err := amqp091.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Printf("Event publisher initialized with exchange: %s", exchange)
	return &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
		logger:   logger,
	}, nil
}

func (p *AMQPPublisher) Enabled() bool { return p.enabled }

func (p *AMQPPublisher) Publish(ctx context.Context, event *Event) error {
	if !p.enabled {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,              // exchange
		string(event.EventType), // routing key
		false,                   // mandatory
		false,                   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp091.Table{
				"event_type": string(event.EventType),
				"user_id":    event.UserID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}

// MockPublisher records events in memory.
type MockPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{events: make([]Event, 0)}
}

func (m *MockPublisher) Publish(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func (m *MockPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
