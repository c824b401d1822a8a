package event

import (
	"encoding/json"
	"fmt"
	"log"

	"progress-service/internal/models"

	"github.com/streadway/amqp"
)

type Publisher interface {
	PublishProgressEvent(event *models.ProgressEvent) error
	Close() error
}

// EventPublisher emits progress events on a durable topic exchange, routed
// by event type. When RabbitMQ is not configured the publisher runs
// disabled and every publish is a logged no-op, so the service keeps
// working without the broker.
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	if amqpURL == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{exchange: exchange, enabled: false}, nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Printf("Event publisher initialized with exchange: %s", exchange)
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange, enabled: true}, nil
}

func (p *EventPublisher) PublishProgressEvent(event *models.ProgressEvent) error {
	if !p.enabled {
		log.Printf("Event publishing disabled, skipping event: %s", event.EventType)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.Publish(
		p.exchange,
		string(event.EventType), // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
			Headers: amqp.Table{
				"event_type": string(event.EventType),
				"user_id":    event.UserID,
				"course_id":  event.CourseID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s for user %s", event.EventType, event.UserID)
	return nil
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}

// MockPublisher collects events in memory for tests.
type MockPublisher struct {
	Events []models.ProgressEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]models.ProgressEvent, 0)}
}

func (m *MockPublisher) PublishProgressEvent(event *models.ProgressEvent) error {
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }
