package ws

import (
	"context"
	"time"

	"foodtruck-order-service/internal/changes"
	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/notify"
	"foodtruck-order-service/internal/queue"
	"foodtruck-order-service/internal/store"

	"go.uber.org/zap"
)

const (
	collectionOrders   = "orders"
	collectionContacts = "contact_requests"
)

type OrderSource interface {
	List(ctx context.Context, filter store.OrderFilter) ([]domain.Order, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
	Get(ctx context.Context, id string) (domain.Order, error)
}

type ContactSource interface {
	Get(ctx context.Context, id string) (domain.ContactRequest, error)
}

type Feed interface {
	Subscribe(collection string, events ...changes.EventType) (<-chan changes.Event, func())
}

type EventPublisher interface {
	Publish(ctx context.Context, evt queue.Event) error
}

type Snapshot struct {
	Orders    []domain.Order             `json:"orders"`
	Counts    map[domain.OrderStatus]int `json:"counts"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// Refresher keeps admin pages in sync with the orders table, either on a
// timer or from the change feed.
type Refresher struct {
	Orders   OrderSource
	Contacts ContactSource
	Hub      *Hub
	Fanout   *notify.Fanout
	Events   EventPublisher
	Currency string
	Timeout  time.Duration
	Logger   *zap.Logger
}

func (r *Refresher) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Refresher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return context.WithTimeout(ctx, 10*time.Second)
	}
	return context.WithTimeout(ctx, r.Timeout)
}

// Snapshot loads the active orders and the per-status counts.
func (r *Refresher) Snapshot(ctx context.Context) (Snapshot, error) {
	ctx, cancel := r.callContext(ctx)
	defer cancel()

	orders, err := r.Orders.List(ctx, store.OrderFilter{Statuses: domain.ActiveStatuses})
	if err != nil {
		return Snapshot{}, err
	}
	counts, err := r.Orders.CountByStatus(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	updatedAt := time.Now().UTC()
	if len(orders) > 0 {
		updatedAt = orders[0].UpdatedAt
	}
	return Snapshot{Orders: orders, Counts: counts, UpdatedAt: updatedAt}, nil
}

// Reload broadcasts a fresh snapshot. It skips the query when nobody is
// listening.
func (r *Refresher) Reload(ctx context.Context) error {
	if r.Hub == nil || r.Hub.Len() == 0 {
		return nil
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		r.Hub.Broadcast(map[string]any{"type": "orders.refresh", "updatedAt": time.Now().UTC()})
		return err
	}
	r.Hub.Broadcast(map[string]any{"type": "orders.state", "data": snap})
	return nil
}

func (r *Refresher) RunPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil && ctx.Err() == nil {
				r.logger().Warn("admin poll refresh failed", zap.Error(err))
			}
		}
	}
}

// RunPush reacts to order and contact changes until ctx is done.
func (r *Refresher) RunPush(ctx context.Context, feed Feed) {
	orderEvents, stopOrders := feed.Subscribe(collectionOrders)
	defer stopOrders()
	contactEvents, stopContacts := feed.Subscribe(collectionContacts, changes.Insert)
	defer stopContacts()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-orderEvents:
			if !ok {
				return
			}
			r.HandleChange(ctx, evt)
		case evt, ok := <-contactEvents:
			if !ok {
				return
			}
			r.HandleChange(ctx, evt)
		}
	}
}

func (r *Refresher) HandleChange(ctx context.Context, evt changes.Event) {
	log := r.logger().With(zap.String("collection", evt.Collection), zap.String("event", string(evt.Type)), zap.String("id", evt.ID))

	switch evt.Collection {
	case collectionOrders:
		if err := r.Reload(ctx); err != nil {
			log.Warn("admin push refresh failed", zap.Error(err))
		}
		if evt.Type == changes.Insert {
			r.announceOrder(ctx, evt.ID, log)
		}
	case collectionContacts:
		if evt.Type == changes.Insert {
			r.announceContact(ctx, evt.ID, log)
		}
	}
}

func (r *Refresher) announceOrder(ctx context.Context, id string, log *zap.Logger) {
	callCtx, cancel := r.callContext(ctx)
	order, err := r.Orders.Get(callCtx, id)
	cancel()
	if err != nil {
		log.Warn("new order not loaded", zap.Error(err))
		return
	}
	if r.Fanout != nil {
		r.Fanout.Dispatch(notify.NewOrderNotification(order, r.Currency))
	}
	r.publish(ctx, queue.Event{Type: queue.EventOrderCreated, ID: order.ID, Status: string(order.Status)}, log)
}

func (r *Refresher) announceContact(ctx context.Context, id string, log *zap.Logger) {
	if r.Contacts == nil {
		return
	}
	callCtx, cancel := r.callContext(ctx)
	contact, err := r.Contacts.Get(callCtx, id)
	cancel()
	if err != nil {
		log.Warn("new contact request not loaded", zap.Error(err))
		return
	}
	if r.Fanout != nil {
		r.Fanout.Dispatch(notify.NewContactNotification(contact))
	}
	r.publish(ctx, queue.Event{Type: queue.EventContactCreated, ID: contact.ID, Status: string(contact.Status)}, log)
}

func (r *Refresher) publish(ctx context.Context, evt queue.Event, log *zap.Logger) {
	if r.Events == nil {
		return
	}
	if err := r.Events.Publish(ctx, evt); err != nil {
		log.Warn("event publish failed", zap.String("type", evt.Type), zap.Error(err))
	}
}
