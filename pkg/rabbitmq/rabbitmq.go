package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clothshop/internal/models"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// OrderQueue receives one message per placed order.
	OrderQueue = "order_events"
	// OrderPlacedType is the "type" property of order placed messages.
	OrderPlacedType = "order.placed"
)

// channel is the part of *amqp.Channel the client uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the order queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c, err := newClient(conn, ch)
	if err != nil {
		conn.Close()
		return nil, err
	}
	zap.S().Infof("RabbitMQ client connected and %s declared.", OrderQueue)
	return c, nil
}

func newClient(conn *amqp.Connection, ch channel) (*Client, error) {
	if _, err := ch.QueueDeclare(OrderQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", OrderQueue, err)
	}
	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishOrderPlaced publishes the index summary of a new order to OrderQueue.
func (c *Client) PublishOrderPlaced(entry models.OrderIndexEntry) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = c.channel.Publish(
		"",         // default exchange
		OrderQueue, // routing key: the queue name
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         OrderPlacedType,
			MessageId:    entry.OrderID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	zap.S().Debugf("Sent order event: %s", body)
	return nil
}

// ConsumeOrderEvents delivers messages from OrderQueue to handler in a
// goroutine. Messages are acked when handler returns nil and requeued otherwise.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		OrderQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				zap.S().Errorf("Error processing message %d: %v", msg.DeliveryTag, err)
				// Requeue; a handler that always fails will loop.
				if nackErr := msg.Nack(false, true); nackErr != nil {
					zap.S().Errorf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				zap.S().Errorf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}

// LogOrderEvent is a consumer handler that logs each placed order.
func LogOrderEvent(msg amqp.Delivery) error {
	var entry models.OrderIndexEntry
	if err := json.Unmarshal(msg.Body, &entry); err != nil {
		// Redelivering a malformed message will not fix it.
		zap.S().Warnf("Dropping malformed order event %d: %v", msg.DeliveryTag, err)
		return nil
	}
	zap.S().Infow("Order event received", "order_id", entry.OrderID, "user", entry.User, "total", entry.Total, "count", entry.Count)
	return nil
}
