package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeWithRetry feeds deliveries to handler until ctx ends. Failed
// messages are republished with an x-retry-count header and dead-lettered
// after maxRetries.
func (c *Client) ConsumeWithRetry(ctx context.Context, queue string, handler HandlerFunc, maxRetries int, retryDelay time.Duration, logger *zap.Logger) error {
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		var msg amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok = <-msgs:
			if !ok {
				return errors.New("consumer closed")
			}
		}

		err := handler(ctx, msg.Body)
		if err == nil {
			_ = msg.Ack(false)
			continue
		}

		retryCount := getRetryCount(msg.Headers)
		if retryCount >= maxRetries {
			logger.Warn("job dead-lettered", zap.String("queue", queue), zap.Int("retries", retryCount), zap.Error(err))
			_ = msg.Nack(false, false)
			continue
		}

		headers := msg.Headers
		if headers == nil {
			headers = amqp.Table{}
		}
		headers["x-retry-count"] = int32(retryCount + 1)

		select {
		case <-ctx.Done():
			_ = msg.Nack(false, true)
			return ctx.Err()
		case <-time.After(retryDelay):
		}

		c.mu.Lock()
		pubErr := c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
			Timestamp:   time.Now(),
		})
		c.mu.Unlock()
		if pubErr != nil {
			_ = msg.Nack(false, true)
			continue
		}
		_ = msg.Ack(false)
	}
}

func getRetryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	if v, ok := headers["x-retry-count"]; ok {
		switch t := v.(type) {
		case int32:
			return int(t)
		case int64:
			return int(t)
		case int:
			return t
		}
	}
	return 0
}
