// Package notify alerts the admin about new orders and contact requests,
// trying each delivery channel in turn until one accepts.
package notify

import (
	"context"
	"fmt"
	"time"

	"foodtruck-order-service/internal/domain"

	"go.uber.org/zap"
)

const (
	MinDismissAfter = 10 * time.Second
	MaxDismissAfter = 15 * time.Second

	TagNewOrder   = "new-order"
	TagNewContact = "new-contact"
)

type Notification struct {
	Title              string        `json:"title"`
	Body               string        `json:"body"`
	Tag                string        `json:"tag"`
	RequireInteraction bool          `json:"requireInteraction"`
	Sound              bool          `json:"sound"`
	DismissAfter       time.Duration `json:"-"`
	CreatedAt          time.Time     `json:"createdAt"`
}

func (n Notification) DismissAfterMs() int64 {
	return n.DismissAfter.Milliseconds()
}

// Channel is one delivery strategy. TryNotify reports whether the
// notification was handed over.
type Channel interface {
	Name() string
	TryNotify(ctx context.Context, n Notification) bool
}

type Fanout struct {
	Channels     []Channel
	DismissAfter time.Duration
	Timeout      time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewFanout(dismissAfter time.Duration, logger *zap.Logger, channels ...Channel) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{
		Channels:     channels,
		DismissAfter: ClampDismiss(dismissAfter),
		Timeout:      5 * time.Second,
		Logger:       logger,
		Now:          time.Now,
	}
}

func ClampDismiss(d time.Duration) time.Duration {
	switch {
	case d < MinDismissAfter:
		return MinDismissAfter
	case d > MaxDismissAfter:
		return MaxDismissAfter
	}
	return d
}

// Notify tries channels in order and returns the first that accepted.
func (f *Fanout) Notify(ctx context.Context, n Notification) (string, bool) {
	n = f.prepare(n)
	for _, ch := range f.Channels {
		if f.try(ctx, ch, n) {
			f.Logger.Debug("notification delivered", zap.String("channel", ch.Name()), zap.String("tag", n.Tag))
			return ch.Name(), true
		}
	}
	f.Logger.Warn("notification unavailable",
		zap.String("tag", n.Tag),
		zap.String("title", n.Title),
		zap.Int("channels", len(f.Channels)),
	)
	return "", false
}

// Dispatch notifies in the background; callers never wait on delivery.
func (f *Fanout) Dispatch(n Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout())
		defer cancel()
		f.Notify(ctx, n)
	}()
}

func (f *Fanout) try(ctx context.Context, ch Channel, n Notification) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			f.Logger.Error("notification channel panicked", zap.String("channel", ch.Name()), zap.Any("panic", r))
			ok = false
		}
	}()
	return ch.TryNotify(ctx, n)
}

func (f *Fanout) prepare(n Notification) Notification {
	if n.DismissAfter <= 0 {
		n.DismissAfter = f.DismissAfter
	}
	n.DismissAfter = ClampDismiss(n.DismissAfter)
	if n.CreatedAt.IsZero() {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		n.CreatedAt = now()
	}
	return n
}

func (f *Fanout) timeout() time.Duration {
	if f.Timeout <= 0 {
		return 5 * time.Second
	}
	return f.Timeout
}

func NewOrderNotification(order domain.Order, currency string) Notification {
	body := fmt.Sprintf("%s ordered %s for %s at %s",
		order.Customer.FullName(), order.Total.Format(currency), order.PickupDate, order.PickupTime)
	if order.StopName != "" {
		body += " (" + order.StopName + ")"
	}
	return Notification{
		Title:              "New order #" + order.OrderNumber,
		Body:               body,
		Tag:                TagNewOrder,
		RequireInteraction: true,
		Sound:              true,
	}
}

func NewContactNotification(contact domain.ContactRequest) Notification {
	body := contact.Name + " - " + contact.EventType
	if contact.EventDate != "" {
		body += " on " + contact.EventDate
	}
	return Notification{
		Title:              "New contact request",
		Body:               body,
		Tag:                TagNewContact,
		RequireInteraction: true,
		Sound:              true,
	}
}
