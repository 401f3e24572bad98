package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"foodtruck-order-service/internal/changes"
	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/notify"
	"foodtruck-order-service/internal/queue"
	"foodtruck-order-service/internal/store"

	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	fail     bool
	stalled  bool
	closed   bool
	deadline time.Time
	sent     []map[string]any
}

// errWriteTimeout mirrors the timeout a real socket reports once its write
// deadline passes while the peer is not reading.
var errWriteTimeout = errors.New("i/o timeout")

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadline = t
	return nil
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	if f.stalled {
		deadline := f.deadline
		f.mu.Unlock()
		if deadline.IsZero() {
			select {}
		}
		time.Sleep(time.Until(deadline))
		return errWriteTimeout
	}
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	f.sent = append(f.sent, decoded)
	return nil
}

func (f *fakeConn) WriteControl(int, []byte, time.Time) error {
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m["type"].(string))
	}
	return out
}

type stubOrders struct {
	active []domain.Order
	byID   map[string]domain.Order
	lists  int
}

func (s *stubOrders) List(_ context.Context, filter store.OrderFilter) ([]domain.Order, error) {
	s.lists++
	if len(filter.Statuses) != len(domain.ActiveStatuses) {
		return nil, errors.New("expected active statuses filter")
	}
	return s.active, nil
}

func (s *stubOrders) CountByStatus(context.Context) (map[domain.OrderStatus]int, error) {
	return map[domain.OrderStatus]int{domain.StatusPending: len(s.active)}, nil
}

func (s *stubOrders) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := s.byID[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

type stubContacts map[string]domain.ContactRequest

func (s stubContacts) Get(_ context.Context, id string) (domain.ContactRequest, error) {
	c, ok := s[id]
	if !ok {
		return domain.ContactRequest{}, domain.ErrNotFound
	}
	return c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

type captureChannel chan notify.Notification

func (c captureChannel) Name() string { return "capture" }

func (c captureChannel) TryNotify(_ context.Context, n notify.Notification) bool {
	select {
	case c <- n:
	default:
	}
	return true
}

type memoryPermissions map[string]notify.Permission

func (m memoryPermissions) Get(_ context.Context, adminID string) (notify.Permission, error) {
	if p, ok := m[adminID]; ok {
		return p, nil
	}
	return notify.PermissionUnrequested, nil
}

func (m memoryPermissions) Set(_ context.Context, adminID string, state notify.Permission) error {
	m[adminID] = state
	return nil
}

func TestBroadcastDropsFailingClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.subscribe(&realtimeClient{conn: good})
	hub.subscribe(&realtimeClient{conn: bad})

	if got := hub.Broadcast(map[string]any{"type": "ping"}); got != 1 {
		t.Fatalf("expected 1 delivery, got %d", got)
	}
	if hub.Len() != 1 {
		t.Fatalf("expected failing client removed, %d left", hub.Len())
	}
	if !bad.closed {
		t.Fatalf("expected failing client closed")
	}
}

func TestBroadcastDropsStalledClientAfterWriteDeadline(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.WriteWait = 50 * time.Millisecond
	good := &fakeConn{}
	stalled := &fakeConn{stalled: true}
	hub.subscribe(&realtimeClient{conn: stalled})
	hub.subscribe(&realtimeClient{conn: good})

	done := make(chan int, 1)
	go func() { done <- hub.Broadcast(map[string]any{"type": "orders.refresh"}) }()

	select {
	case got := <-done:
		if got != 1 {
			t.Fatalf("expected 1 delivery, got %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast blocked by a socket that stopped reading")
	}
	if hub.Len() != 1 || !stalled.closed {
		t.Fatalf("expected stalled client closed and dropped, %d left", hub.Len())
	}
	if got := good.types(); len(got) != 1 || got[0] != "orders.refresh" {
		t.Fatalf("expected healthy client to receive the refresh, got %v", got)
	}
}

func TestNotificationChannelNeedsAConnectedAdmin(t *testing.T) {
	hub := NewHub(nil)
	ch := &NotificationChannel{Hub: hub}
	n := notify.Notification{Title: "New order #AB12CD34", Tag: notify.TagNewOrder, DismissAfter: 12 * time.Second}

	if ch.TryNotify(context.Background(), n) {
		t.Fatalf("expected failure with no admin connected")
	}

	conn := &fakeConn{}
	hub.subscribe(&realtimeClient{conn: conn})
	if !ch.TryNotify(context.Background(), n) {
		t.Fatalf("expected delivery")
	}
	data := conn.sent[0]["data"].(map[string]any)
	if conn.sent[0]["type"] != "notification.show" || data["dismissAfterMs"] != float64(12000) {
		t.Fatalf("unexpected message %#v", conn.sent[0])
	}
}

func TestReloadSkipsQueryWithoutClients(t *testing.T) {
	orders := &stubOrders{}
	r := &Refresher{Orders: orders, Hub: NewHub(nil)}

	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if orders.lists != 0 {
		t.Fatalf("expected no query, got %d", orders.lists)
	}
}

func TestHandleOrderInsertRefreshesAndAnnounces(t *testing.T) {
	order := domain.Order{
		ID:          "11111111-2222-3333-4444-555555555555",
		OrderNumber: "11111111",
		Customer:    domain.Customer{FirstName: "Alice", LastName: "Martin"},
		Status:      domain.StatusPending,
		Total:       1350,
	}
	orders := &stubOrders{active: []domain.Order{order}, byID: map[string]domain.Order{order.ID: order}}
	hub := NewHub(nil)
	conn := &fakeConn{}
	hub.subscribe(&realtimeClient{conn: conn})

	captured := make(captureChannel, 1)
	events := &recordingPublisher{}
	r := &Refresher{
		Orders:   orders,
		Hub:      hub,
		Fanout:   notify.NewFanout(12*time.Second, nil, captured),
		Events:   events,
		Currency: "EUR",
	}

	r.HandleChange(context.Background(), changes.Event{Collection: "orders", Type: changes.Insert, ID: order.ID})

	if got := conn.types(); len(got) != 1 || got[0] != "orders.state" {
		t.Fatalf("expected one orders.state push, got %v", got)
	}
	select {
	case n := <-captured:
		if n.Tag != notify.TagNewOrder || n.Title != "New order #11111111" {
			t.Fatalf("unexpected notification %#v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a notification")
	}
	if len(events.events) != 1 || events.events[0].Type != queue.EventOrderCreated {
		t.Fatalf("expected order.created event, got %#v", events.events)
	}
}

func TestHandleOrderUpdateOnlyRefreshes(t *testing.T) {
	orders := &stubOrders{byID: map[string]domain.Order{}}
	hub := NewHub(nil)
	hub.subscribe(&realtimeClient{conn: &fakeConn{}})
	events := &recordingPublisher{}
	r := &Refresher{Orders: orders, Hub: hub, Events: events}

	r.HandleChange(context.Background(), changes.Event{Collection: "orders", Type: changes.Update, ID: "x"})

	if orders.lists != 1 {
		t.Fatalf("expected one reload, got %d", orders.lists)
	}
	if len(events.events) != 0 {
		t.Fatalf("updates must not announce, got %#v", events.events)
	}
}

func TestRunPushHandlesContactInsert(t *testing.T) {
	contact := domain.ContactRequest{ID: "c1", Name: "Bea", EventType: "Mariage", Status: domain.ContactNew}
	listener := changes.NewListener(nil, nil)
	captured := make(captureChannel, 1)
	events := &recordingPublisher{}
	r := &Refresher{
		Orders:   &stubOrders{},
		Contacts: stubContacts{"c1": contact},
		Hub:      NewHub(nil),
		Fanout:   notify.NewFanout(10*time.Second, nil, captured),
		Events:   events,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunPush(ctx, listener)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		listener.Publish(changes.Event{Collection: "contact_requests", Type: changes.Insert, ID: "c1"})
		select {
		case n := <-captured:
			if n.Tag != notify.TagNewContact {
				t.Fatalf("unexpected notification %#v", n)
			}
			cancel()
			<-done
			return
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			cancel()
			t.Fatalf("contact notification not dispatched")
		}
	}
}

func TestHandleClientMessagePermission(t *testing.T) {
	perms := memoryPermissions{}
	s := &Server{Permissions: perms}
	ctx := context.Background()

	reply := s.handleClientMessage(ctx, "a1", []byte(`{"type":"notification.permission","state":"granted"}`))
	if perms["a1"] != notify.PermissionGranted {
		t.Fatalf("expected granted, got %q", perms["a1"])
	}
	if reply == nil {
		t.Fatalf("expected a reply")
	}

	s.handleClientMessage(ctx, "a1", []byte(`{"type":"notification.permission","state":"denied"}`))
	if perms["a1"] != notify.PermissionGranted {
		t.Fatalf("answered permission must not change, got %q", perms["a1"])
	}

	if reply := s.handleClientMessage(ctx, "a1", []byte(`not json`)); reply != nil {
		t.Fatalf("expected malformed message ignored")
	}
}
