package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"shelflife/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// ProductEventsQueue receives every committed product change.
const ProductEventsQueue = "product_events"

// Client holds the RabbitMQ connection and publishing channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the product
// events queue.
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

	if err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logrus.WithField("queue", ProductEventsQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		ProductEventsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", ProductEventsQueue, err)
	}
	return nil
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
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishProductEvent sends event as a persistent JSON message.
func (c *Client) PublishProductEvent(event models.ProductEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",                 // default exchange
		ProductEventsQueue, // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"type":       event.Type,
		"product_id": event.ProductID,
	}).Debug("Product event published")
	return nil
}

// ConsumeProductEvents delivers messages from the product events queue to
// handler on a separate channel until the client is closed. A handler error
// requeues the message.
func (c *Client) ConsumeProductEvents(handler func(msg amqp.Delivery) error) error {
	if c.conn == nil {
		return fmt.Errorf("RabbitMQ connection is not available for consumption")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := declareQueue(ch); err != nil {
		ch.Close()
		return err
	}

	msgs, err := ch.Consume(
		ProductEventsQueue, // queue
		"",                 // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logrus.WithField("queue", ProductEventsQueue).Info("Waiting for product events")

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
		logrus.Info("Product event consumer stopped")
	}()

	return nil
}

func handleDelivery(msg amqp.Delivery, handler func(msg amqp.Delivery) error) {
	if err := handler(msg); err != nil {
		logrus.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Error("Error processing message")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			logrus.WithError(nackErr).WithField("delivery_tag", msg.DeliveryTag).Error("Error nacking message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		logrus.WithError(ackErr).WithField("delivery_tag", msg.DeliveryTag).Error("Error acking message")
	}
}

// DecodeProductEvent parses a message body produced by PublishProductEvent.
func DecodeProductEvent(body []byte) (models.ProductEvent, error) {
	var event models.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("failed to decode product event: %w", err)
	}
	if event.Type == "" || event.ProductID == "" {
		return event, fmt.Errorf("product event is missing type or product_id")
	}
	return event, nil
}

// AuditProductEvent logs each product event. Malformed messages are logged
// and dropped.
func AuditProductEvent(msg amqp.Delivery) error {
	event, err := DecodeProductEvent(msg.Body)
	if err != nil {
		logrus.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Warn("Dropping malformed product event")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"type":        event.Type,
		"product_id":  event.ProductID,
		"name":        event.Name,
		"expiry_date": event.ExpiryDate,
		"occurred_at": event.OccurredAt.Format(time.RFC3339),
	}).Info("Product event")
	return nil
}
