package handlers

import (
	"context"
	"time"

	"foodtruck-order-service/internal/auth"
	"foodtruck-order-service/internal/config"
	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/notify"
	"foodtruck-order-service/internal/ordering"
	"foodtruck-order-service/internal/queue"
	"foodtruck-order-service/internal/receipt"
	"foodtruck-order-service/internal/slots"
	"foodtruck-order-service/internal/store"

	"go.uber.org/zap"
)

type MenuStore interface {
	ListCategories(ctx context.Context) ([]domain.MenuCategory, error)
	CreateCategory(ctx context.Context, c *domain.MenuCategory) error
	UpdateCategory(ctx context.Context, c domain.MenuCategory) error
	DeleteCategory(ctx context.Context, id string) error
	ListItems(ctx context.Context, onlyAvailable bool) ([]domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (domain.MenuItem, error)
	Catalog(ctx context.Context) (map[string]domain.MenuItem, error)
	CreateItem(ctx context.Context, item *domain.MenuItem) error
	UpdateItem(ctx context.Context, item domain.MenuItem) error
	SetItemPhoto(ctx context.Context, id, url string) error
	DeleteItem(ctx context.Context, id string) error
}

type StopStore interface {
	List(ctx context.Context, onlyActive bool) ([]domain.Stop, error)
	GetStop(ctx context.Context, id string) (domain.Stop, error)
	Create(ctx context.Context, stop *domain.Stop) error
	Update(ctx context.Context, stop domain.Stop) error
	Delete(ctx context.Context, id string) error
}

type ScheduleStore interface {
	List(ctx context.Context) ([]domain.ScheduleEntry, error)
	Upsert(ctx context.Context, e *domain.ScheduleEntry) error
}

type OrderStore interface {
	List(ctx context.Context, filter store.OrderFilter) ([]domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (domain.Order, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
	UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type ContactStore interface {
	Create(ctx context.Context, req *domain.ContactRequest) error
	List(ctx context.Context, status domain.ContactStatus) ([]domain.ContactRequest, error)
	UpdateStatus(ctx context.Context, id string, next domain.ContactStatus) (domain.ContactRequest, error)
	Delete(ctx context.Context, id string) error
}

type PermissionStore interface {
	Get(ctx context.Context, adminID string) (notify.Permission, error)
	Set(ctx context.Context, adminID string, state notify.Permission) error
	Current(ctx context.Context) notify.Permission
}

type Submitter interface {
	Submit(ctx context.Context, req ordering.SubmitRequest) (ordering.Receipt, error)
}

type SlotLister interface {
	Slots(ctx context.Context, stop domain.Stop) (slots.Availability, error)
}

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (auth.Session, string, error)
	SignOut(ctx context.Context, sessionID string) error
}

type ToastLister interface {
	Active() []notify.Toast
}

type PhotoStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) (string, error)
	DeleteURL(ctx context.Context, raw string) error
}

type ReceiptArchiver interface {
	Archive(ctx context.Context, s receipt.Summary) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, evt queue.Event) error
}

// Handler carries the dependencies shared by every endpoint. Photos,
// Archiver and Events are optional.
type Handler struct {
	Logger *zap.Logger
	Config config.Config

	Menu        MenuStore
	Stops       StopStore
	Schedule    ScheduleStore
	Orders      OrderStore
	Contacts    ContactStore
	Permissions PermissionStore

	Ordering Submitter
	Slots    SlotLister
	Auth     Authenticator
	Toasts   ToastLister
	Photos   PhotoStore
	Archiver ReceiptArchiver
	Events   EventPublisher

	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
