package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/notify"
	"foodtruck-order-service/internal/receipt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "foodtruck.events"
	EventsQueue    = "foodtruck.events.translate"

	NotificationJobsExchange = "foodtruck.notification_jobs"
	NotificationJobsQueue    = "foodtruck.notification_jobs.process"
	NotificationJobsDLQ      = "foodtruck.notification_jobs.dlq"
	NotificationJobsRK       = "process"
	NotificationJobsDeadRK   = "dead"

	CustomerEmailExchange = "foodtruck.customer_email"
	CustomerEmailQueue    = "foodtruck.customer_email.send"
	CustomerEmailDLQ      = "foodtruck.customer_email.dlq"
	CustomerEmailRK       = "send"
	CustomerEmailDeadRK   = "dead"

	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status.updated"
	EventContactCreated     = "contact.created"
)

type Event struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EnsureTopology declares the events exchange and the two job pipelines,
// each with its own dead-letter queue.
func EnsureTopology(ctx context.Context, qc *Client) error {
	if qc == nil {
		return nil
	}
	if err := qc.EnsureExchange(EventsExchange, "topic"); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(EventsQueue, nil); err != nil {
		return err
	}
	// '#' also matches multi-segment keys such as order.status.updated.
	for _, key := range []string{"order.#", "contact.#"} {
		if err := qc.BindQueue(EventsQueue, EventsExchange, key); err != nil {
			return err
		}
	}
	if err := ensureJobPipeline(qc, NotificationJobsExchange, NotificationJobsQueue, NotificationJobsDLQ, NotificationJobsRK, NotificationJobsDeadRK); err != nil {
		return err
	}
	return ensureJobPipeline(qc, CustomerEmailExchange, CustomerEmailQueue, CustomerEmailDLQ, CustomerEmailRK, CustomerEmailDeadRK)
}

func ensureJobPipeline(qc *Client, exchange, queue, dlq, rk, deadRK string) error {
	if err := qc.EnsureExchange(exchange, "direct"); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(dlq, nil); err != nil {
		return err
	}
	if err := qc.BindQueue(dlq, exchange, deadRK); err != nil {
		return err
	}
	_, err := qc.EnsureQueue(queue, amqp.Table{
		"x-dead-letter-exchange":    exchange,
		"x-dead-letter-routing-key": deadRK,
	})
	if err != nil {
		return err
	}
	return qc.BindQueue(queue, exchange, rk)
}

func PublishEvent(ctx context.Context, qc *Client, evt Event) error {
	if qc == nil {
		return nil
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	return qc.PublishJSON(ctx, EventsExchange, evt.Type, evt)
}

type OrderReader interface {
	Get(ctx context.Context, id string) (domain.Order, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error
}

// Translator turns domain events into customer email jobs for the mail worker.
type Translator struct {
	Orders   OrderReader
	Queue    Publisher
	Currency string
}

func (t *Translator) Process(ctx context.Context, body []byte) error {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}

	var kind string
	switch {
	case evt.Type == EventOrderCreated:
		kind = "order_confirmation"
	case evt.Type == EventOrderStatusUpdated && evt.Status == string(domain.StatusReady):
		kind = "order_ready"
	default:
		return nil
	}

	order, err := t.Orders.Get(ctx, evt.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	toEmail := strings.TrimSpace(order.Customer.Email)
	if toEmail == "" {
		return nil
	}

	summary := receipt.FromOrder(order, domain.Stop{Name: order.StopName}, t.Currency)
	job := map[string]any{
		"kind":          kind,
		"orderId":       order.ID,
		"orderNumber":   order.OrderNumber,
		"customerEmail": toEmail,
		"customerName":  order.Customer.FullName(),
		"subject":       emailSubject(kind, order.OrderNumber),
		"text":          receipt.Text(summary),
		"createdAt":     time.Now().UTC().Format(time.RFC3339),
		"attempt":       1,
	}
	return t.Queue.PublishJSON(ctx, CustomerEmailExchange, CustomerEmailRK, job)
}

func emailSubject(kind, orderNumber string) string {
	if kind == "order_ready" {
		return "Your order #" + orderNumber + " is ready"
	}
	return "Order confirmation #" + orderNumber
}

// PushChannel is the background delivery channel: an admin alert job the
// push worker delivers even when no admin page is open.
type PushChannel struct {
	Client *Client
}

func (p *PushChannel) Name() string {
	return "push"
}

func (p *PushChannel) TryNotify(ctx context.Context, n notify.Notification) bool {
	if !p.Client.Connected() {
		return false
	}
	job := map[string]any{
		"kind": "push.admin_alert",
		"payload": map[string]any{
			"title":              n.Title,
			"body":               n.Body,
			"tag":                n.Tag,
			"requireInteraction": n.RequireInteraction,
			"sound":              n.Sound,
			"dismissAfterMs":     n.DismissAfterMs(),
		},
		"createdAt": n.CreatedAt.UTC().Format(time.RFC3339),
		"attempt":   1,
	}
	return p.Client.PublishExpiring(ctx, NotificationJobsExchange, NotificationJobsRK, job, n.DismissAfter) == nil
}

// Publish lets a client be passed where an event publisher is expected. A
// nil client drops events.
func (c *Client) Publish(ctx context.Context, evt Event) error {
	return PublishEvent(ctx, c, evt)
}
