package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange receives notification events.
const DefaultExchange = "storefront.notifications"

// publisher is the subset of *amqp.Channel the AMQP sender uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSender publishes notifications to a topic exchange for a mail
// worker to deliver. The routing key is "notify.<kind>".
type AMQPSender struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  publisher
	exchange string
}

// DialAMQP connects to url and declares exchange.
func DialAMQP(url string, exchange string) (*AMQPSender, error) {
	exchange = strings.TrimSpace(exchange)
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPSender{conn: conn, channel: ch, exchange: exchange}, nil
}

// Send publishes msg as a persistent JSON message.
func (s *AMQPSender) Send(ctx context.Context, msg Message) error {
	body, err := encode(msg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel == nil {
		return fmt.Errorf("amqp sender is closed")
	}
	return s.channel.PublishWithContext(
		ctx,
		s.exchange,
		"notify."+msg.Kind,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.CreatedAt,
			Type:         msg.Kind,
			Body:         body,
		},
	)
}

// Close closes the channel and connection.
func (s *AMQPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			firstErr = err
		}
		s.channel = nil
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.conn = nil
	}
	return firstErr
}
