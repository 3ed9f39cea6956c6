// internal/events/amqp.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"listing-service/internal/common/logger"

	"github.com/streadway/amqp"
)

const exchangeKind = "topic"

// publishChannel is the part of *amqp.Channel the publisher uses.
type publishChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events to a topic exchange, routed by event type.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       publishChannel
	exchange string
}

// DialAMQP connects to url and declares the durable exchange.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func newAMQPPublisher(ch publishChannel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.Publish(p.exchange, string(e.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Handler reacts to one event.
type Handler func(ctx context.Context, e Event) error

// consumeChannel is the part of *amqp.Channel the consumer uses.
type consumeChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Consumer binds a durable queue to every listing event on the exchange and
// hands each delivery to a Handler.
type Consumer struct {
	ch       consumeChannel
	queue    string
	exchange string
	handler  Handler
	logger   logger.Logger
}

// NewAMQPConsumer opens a channel on the publisher's connection.
func NewAMQPConsumer(p *AMQPPublisher, queue string, handler Handler, log logger.Logger) (*Consumer, error) {
	if p.conn == nil {
		return nil, fmt.Errorf("publisher has no broker connection")
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return newConsumer(ch, queue, p.exchange, handler, log), nil
}

func newConsumer(ch consumeChannel, queue, exchange string, handler Handler, log logger.Logger) *Consumer {
	return &Consumer{
		ch:       ch,
		queue:    queue,
		exchange: exchange,
		handler:  handler,
		logger:   log.WithFields(map[string]interface{}{"queue": queue}),
	}
}

// Run consumes until ctx ends or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.ch.Close()

	if err := c.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if _, err := c.ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := c.ch.QueueBind(c.queue, "listing.*", c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consuming listing events", nil)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	e, err := Decode(d.Body)
	if err != nil {
		c.logger.Warn("Dropping malformed event", map[string]interface{}{"error": err.Error()})
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler(ctx, e); err != nil {
		// one redelivery, then drop
		requeue := !d.Redelivered
		c.logger.Error("Event handler failed", map[string]interface{}{
			"type":      string(e.Type),
			"listingId": e.ListingID,
			"requeue":   requeue,
			"error":     err.Error(),
		})
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}
