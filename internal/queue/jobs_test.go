package queue

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/notify"

	amqp "github.com/rabbitmq/amqp091-go"
)

type stubOrderReader map[string]domain.Order

func (s stubOrderReader) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := s[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

type publishedJob struct {
	exchange string
	key      string
	payload  map[string]any
}

type recordingQueue struct {
	jobs []publishedJob
}

func (r *recordingQueue) PublishJSON(_ context.Context, exchange, routingKey string, payload any) error {
	r.jobs = append(r.jobs, publishedJob{exchange: exchange, key: routingKey, payload: payload.(map[string]any)})
	return nil
}

func eventBody(t *testing.T, evt Event) []byte {
	t.Helper()
	raw, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestTranslatorProcess(t *testing.T) {
	withEmail := domain.Order{
		ID:          "o1",
		OrderNumber: "AB12CD34",
		Customer:    domain.Customer{FirstName: "Alice", LastName: "Martin", Email: "alice@example.com"},
		PickupDate:  "2026-10-23",
		PickupTime:  "19:15",
		Status:      domain.StatusPending,
		Total:       1350,
	}
	noEmail := withEmail
	noEmail.ID = "o2"
	noEmail.Customer.Email = ""

	tests := []struct {
		name     string
		evt      Event
		wantKind string
	}{
		{"created sends confirmation", Event{Type: EventOrderCreated, ID: "o1"}, "order_confirmation"},
		{"ready sends ready email", Event{Type: EventOrderStatusUpdated, ID: "o1", Status: "ready"}, "order_ready"},
		{"preparing is silent", Event{Type: EventOrderStatusUpdated, ID: "o1", Status: "preparing"}, ""},
		{"contact is silent", Event{Type: EventContactCreated, ID: "c1"}, ""},
		{"no email is silent", Event{Type: EventOrderCreated, ID: "o2"}, ""},
		{"deleted order is silent", Event{Type: EventOrderCreated, ID: "gone"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &recordingQueue{}
			tr := &Translator{Orders: stubOrderReader{"o1": withEmail, "o2": noEmail}, Queue: q, Currency: "EUR"}

			if err := tr.Process(context.Background(), eventBody(t, tt.evt)); err != nil {
				t.Fatalf("process: %v", err)
			}
			if tt.wantKind == "" {
				if len(q.jobs) != 0 {
					t.Fatalf("expected no job, got %#v", q.jobs)
				}
				return
			}
			if len(q.jobs) != 1 {
				t.Fatalf("expected one job, got %d", len(q.jobs))
			}
			job := q.jobs[0]
			if job.exchange != CustomerEmailExchange || job.key != CustomerEmailRK {
				t.Fatalf("unexpected route %s/%s", job.exchange, job.key)
			}
			if job.payload["kind"] != tt.wantKind || job.payload["customerEmail"] != "alice@example.com" {
				t.Fatalf("unexpected payload %#v", job.payload)
			}
			if !strings.Contains(job.payload["text"].(string), "AB12CD34") {
				t.Fatalf("expected recap text to mention the order number")
			}
		})
	}
}

func TestTranslatorRejectsMalformedBody(t *testing.T) {
	tr := &Translator{Orders: stubOrderReader{}, Queue: &recordingQueue{}}
	if err := tr.Process(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPushChannelWithoutBroker(t *testing.T) {
	var ch notify.Channel = &PushChannel{}
	if ch.TryNotify(context.Background(), notify.Notification{Title: "x"}) {
		t.Fatalf("expected failure without a broker connection")
	}
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		headers amqp.Table
		want    int
	}{
		{nil, 0},
		{amqp.Table{"x-retry-count": int32(2)}, 2},
		{amqp.Table{"x-retry-count": int64(4)}, 4},
		{amqp.Table{"x-retry-count": "bad"}, 0},
	}
	for _, tt := range tests {
		if got := getRetryCount(tt.headers); got != tt.want {
			t.Fatalf("headers %#v: got %d, want %d", tt.headers, got, tt.want)
		}
	}
}
