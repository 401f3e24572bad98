package notify

import (
	"context"
	"sync"
	"time"
)

const toastFeedSize = 50

type Toast struct {
	Notification
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToastFeed is the in-page fallback channel. It always accepts and keeps the
// most recent toasts until they expire.
type ToastFeed struct {
	mu     sync.Mutex
	toasts []Toast
	now    func() time.Time
}

func NewToastFeed() *ToastFeed {
	return &ToastFeed{now: time.Now}
}

func (t *ToastFeed) Name() string {
	return "toast"
}

func (t *ToastFeed) TryNotify(_ context.Context, n Notification) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	created := n.CreatedAt
	if created.IsZero() {
		created = t.now()
	}
	t.toasts = append(t.toasts, Toast{Notification: n, ExpiresAt: created.Add(n.DismissAfter)})
	if len(t.toasts) > toastFeedSize {
		t.toasts = append([]Toast(nil), t.toasts[len(t.toasts)-toastFeedSize:]...)
	}
	return true
}

// Active returns unexpired toasts, oldest first, and drops expired ones.
func (t *ToastFeed) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if now.Before(toast.ExpiresAt) {
			kept = append(kept, toast)
		}
	}
	t.toasts = kept
	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}
