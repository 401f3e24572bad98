package receipt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"foodtruck-order-service/internal/domain"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID:          "3f2a9c1e-0000-0000-0000-000000000001",
		OrderNumber: "3F2A9C1E",
		StopName:    "Place du marché",
		Customer:    domain.Customer{FirstName: "Alice", LastName: "Martin", Phone: "0612345678", Email: "alice@example.com"},
		PickupDate:  "2026-10-27",
		PickupTime:  "18:15",
		Status:      domain.StatusPending,
		Total:       1650,
		CreatedAt:   time.Date(2026, 10, 21, 14, 10, 0, 0, time.UTC),
		Lines: []domain.OrderLine{
			{ItemName: "Burger", Quantity: 3, UnitPrice: 450},
			{ItemName: "Frites", Quantity: 1, UnitPrice: 300},
		},
	}
}

func TestTextRecapCarriesEveryField(t *testing.T) {
	s := FromOrder(sampleOrder(), domain.Stop{Name: "Place du marché", Address: "1 rue du Port"}, "EUR")
	text := Text(s)

	for _, want := range []string{
		"Order #3F2A9C1E",
		"Alice Martin",
		"0612345678",
		"alice@example.com",
		"Place du marché, 1 rue du Port",
		"Mardi 2026-10-27 at 18:15",
		"3 x Burger @ 4.50 EUR = 13.50 EUR",
		"1 x Frites @ 3.00 EUR = 3.00 EUR",
		"Total: 16.50 EUR",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("recap missing %q:\n%s", want, text)
		}
	}
}

func TestFromOrderFallsBackToJoinedStopName(t *testing.T) {
	s := FromOrder(sampleOrder(), domain.Stop{}, "EUR")
	if s.StopName != "Place du marché" {
		t.Fatalf("expected joined stop name, got %q", s.StopName)
	}
}

func TestHTMLEscapesCustomerInput(t *testing.T) {
	order := sampleOrder()
	order.Customer.FirstName = "<script>"
	out, err := HTML(FromOrder(order, domain.Stop{}, "EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Contains(out, []byte("<script>")) {
		t.Fatalf("expected customer input escaped")
	}
	if !bytes.Contains(out, []byte("Order #3F2A9C1E")) {
		t.Fatalf("expected order number in html")
	}
}

func TestPDFPaginatesLongOrders(t *testing.T) {
	order := sampleOrder()
	order.Lines = nil
	for i := 0; i < 120; i++ {
		order.Lines = append(order.Lines, domain.OrderLine{ItemName: "Crêpe", Quantity: 1, UnitPrice: 350})
	}
	out, err := PDF(FromOrder(order, domain.Stop{}, "EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a pdf document")
	}
	if pages := bytes.Count(out, []byte("/Type /Page\n")); pages < 2 {
		t.Fatalf("expected several pages, got %d", pages)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(Summary{OrderNumber: "3F2A9C1E"}, "pdf"); got != "order_3F2A9C1E.pdf" {
		t.Fatalf("unexpected filename %s", got)
	}
	if got := Filename(Summary{OrderNumber: "../../x"}, ".txt"); got != "order_x.txt" {
		t.Fatalf("unexpected sanitized filename %s", got)
	}
}

type memoryPutter struct {
	keys []string
	err  error
}

func (m *memoryPutter) PutObject(_ context.Context, key string, body []byte, contentType string, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if contentType != "application/pdf" || len(body) == 0 {
		return "", errors.New("unexpected upload")
	}
	m.keys = append(m.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func TestArchiver(t *testing.T) {
	store := &memoryPutter{}
	a := &Archiver{Store: store, Now: func() time.Time { return time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC) }}

	url, err := a.Archive(context.Background(), FromOrder(sampleOrder(), domain.Stop{}, "EUR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.com/receipts/2026/order_3F2A9C1E.pdf" {
		t.Fatalf("unexpected url %s", url)
	}

	var disabled *Archiver
	if _, err := disabled.Archive(context.Background(), Summary{}); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}
