package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"foodtruck-order-service/internal/db"
	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/migrate"
	"foodtruck-order-service/internal/notify"

	"github.com/google/uuid"
)

// openTestStore connects to TEST_DB_DSN, applies migrations and empties the
// tables. Tests skip when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	_, err = pool.Exec(ctx, `truncate order_lines, orders, menu_items, menu_categories, stops, schedule,
		contact_requests, notification_permissions, admin_sessions, admins cascade`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return New(pool)
}

func TestOrdersRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	stop := domain.Stop{Name: "Place du Marché", Weekday: "Mardi", OpensAt: "18:00", ClosesAt: "22:00", Active: true}
	if err := st.Stops.Create(ctx, &stop); err != nil {
		t.Fatalf("create stop: %v", err)
	}
	item := domain.MenuItem{Name: "Burger", Price: 650, Available: true}
	if err := st.Menu.CreateItem(ctx, &item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	id := uuid.NewString()
	order := domain.Order{
		ID:          id,
		OrderNumber: domain.OrderNumberFromID(id),
		StopID:      stop.ID,
		Customer:    domain.Customer{FirstName: "Ana", LastName: "Diaz", Phone: "0600000000"},
		PickupDate:  "2024-05-14",
		PickupTime:  "18:30",
		Status:      domain.StatusPending,
		Total:       1300,
	}
	if err := st.Orders.InsertOrder(ctx, &order); err != nil {
		t.Fatalf("insert order: %v", err)
	}
	lines := []domain.OrderLine{{ID: uuid.NewString(), OrderID: id, MenuItemID: item.ID, ItemName: "Burger", Quantity: 2, UnitPrice: 650}}
	if err := st.Orders.InsertLines(ctx, lines); err != nil {
		t.Fatalf("insert lines: %v", err)
	}

	got, err := st.Orders.GetByNumber(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if got.StopName != stop.Name || len(got.Lines) != 1 || got.Lines[0].Subtotal() != 1300 {
		t.Fatalf("unexpected order %+v", got)
	}

	updated, err := st.Orders.UpdateStatus(ctx, id, domain.StatusPreparing)
	if err != nil || updated.Status != domain.StatusPreparing {
		t.Fatalf("update status: %v %+v", err, updated)
	}
	if _, err := st.Orders.UpdateStatus(ctx, id, domain.StatusPending); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	counts, err := st.Orders.CountByStatus(ctx)
	if err != nil || counts[domain.StatusPreparing] != 1 {
		t.Fatalf("unexpected counts %v %v", counts, err)
	}

	if err := st.Orders.DeleteOrder(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Orders.Get(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestScheduleUpsertAndLookup(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	entry := domain.ScheduleEntry{Weekday: time.Tuesday, OpensAt: "11:30", ClosesAt: "14:00", Active: true}
	if err := st.Schedule.Upsert(ctx, &entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	entry.ClosesAt = "15:00"
	if err := st.Schedule.Upsert(ctx, &entry); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, ok, err := st.Schedule.ScheduleFor(ctx, time.Tuesday)
	if err != nil || !ok || got.ClosesAt != "15:00" {
		t.Fatalf("unexpected schedule %+v ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := st.Schedule.ScheduleFor(ctx, time.Sunday); ok {
		t.Fatalf("expected no schedule on sunday")
	}
}

func TestContactStatusFlow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	req := domain.ContactRequest{Name: "Lea", Email: "lea@example.com", EventType: "Mariage", Status: domain.ContactNew}
	if err := st.Contacts.Create(ctx, &req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.Contacts.UpdateStatus(ctx, req.ID, domain.ContactHandled); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if _, err := st.Contacts.UpdateStatus(ctx, req.ID, domain.ContactNew); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	handled, err := st.Contacts.List(ctx, domain.ContactHandled)
	if err != nil || len(handled) != 1 {
		t.Fatalf("unexpected list %v %v", handled, err)
	}
}

func TestNotificationPermissions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	admin, err := st.Admins.Create(ctx, "owner@example.com", "hash")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if got := st.Permissions.Current(ctx); got != notify.PermissionUnrequested {
		t.Fatalf("expected unrequested, got %s", got)
	}
	if err := st.Permissions.Set(ctx, admin.ID, notify.PermissionGranted); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := st.Permissions.Current(ctx); got != notify.PermissionGranted {
		t.Fatalf("expected granted, got %s", got)
	}
}
