package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex
}

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Connected reports whether the broker connection is still open.
func (c *Client) Connected() bool {
	return c != nil && c.conn != nil && !c.conn.IsClosed()
}

func (c *Client) EnsureExchange(name string, kind string) error {
	if kind == "" {
		kind = "topic"
	}
	return c.ch.ExchangeDeclare(name, kind, true, false, false, false, nil)
}

func (c *Client) EnsureQueue(name string, args amqp.Table) (amqp.Queue, error) {
	return c.ch.QueueDeclare(name, true, false, false, false, args)
}

func (c *Client) BindQueue(queueName, exchange, routingKey string) error {
	return c.ch.QueueBind(queueName, routingKey, exchange, false, nil)
}

func (c *Client) PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error {
	return c.publish(ctx, exchange, routingKey, payload, 0)
}

// PublishExpiring publishes a message the broker drops once ttl elapses.
func (c *Client) PublishExpiring(ctx context.Context, exchange, routingKey string, payload any, ttl time.Duration) error {
	return c.publish(ctx, exchange, routingKey, payload, ttl)
}

func (c *Client) publish(ctx context.Context, exchange, routingKey string, payload any, ttl time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	}
	if ttl > 0 {
		msg.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
}
