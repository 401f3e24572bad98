// Package changes turns Postgres NOTIFY messages on the foodtruck_changes
// channel into typed events for in-process subscribers.
package changes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	Channel = "foodtruck_changes"

	subscriberBuffer = 32
	maxBackoff       = 30 * time.Second
)

type EventType string

const (
	Insert EventType = "insert"
	Update EventType = "update"
	Delete EventType = "delete"
)

type Event struct {
	Collection string    `json:"collection"`
	Type       EventType `json:"event"`
	ID         string    `json:"id"`
}

// ParsePayload decodes a trigger payload. Event names are case-insensitive.
func ParsePayload(payload string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return Event{}, err
	}
	evt.Collection = strings.TrimSpace(evt.Collection)
	evt.Type = EventType(strings.ToLower(strings.TrimSpace(string(evt.Type))))
	evt.ID = strings.TrimSpace(evt.ID)
	if evt.Collection == "" {
		return Event{}, errors.New("change payload without collection")
	}
	switch evt.Type {
	case Insert, Update, Delete:
	default:
		return Event{}, errors.New("unknown change event " + string(evt.Type))
	}
	return evt, nil
}

type subscriber struct {
	collection string
	events     map[EventType]struct{}
	ch         chan Event
}

func (s *subscriber) wants(evt Event) bool {
	if s.collection != evt.Collection {
		return false
	}
	if len(s.events) == 0 {
		return true
	}
	_, ok := s.events[evt.Type]
	return ok
}

type Listener struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewListener(pool *pgxpool.Pool, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{pool: pool, logger: logger, subs: make(map[*subscriber]struct{})}
}

// Subscribe registers for changes on one collection, optionally narrowed to
// some event types. The returned func unsubscribes and closes the channel.
func (l *Listener) Subscribe(collection string, events ...EventType) (<-chan Event, func()) {
	sub := &subscriber{
		collection: strings.TrimSpace(collection),
		ch:         make(chan Event, subscriberBuffer),
	}
	if len(events) > 0 {
		sub.events = make(map[EventType]struct{}, len(events))
		for _, e := range events {
			sub.events[e] = struct{}{}
		}
	}

	l.mu.Lock()
	l.subs[sub] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, sub)
			l.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Publish delivers evt to every matching subscriber without blocking.
func (l *Listener) Publish(evt Event) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for sub := range l.subs {
		if !sub.wants(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			l.logger.Warn("change subscriber is slow, event dropped",
				zap.String("collection", evt.Collection),
				zap.String("event", string(evt.Type)),
				zap.String("id", evt.ID),
			)
		}
	}
}

// Run holds one connection listening on the change channel until ctx is
// done, reconnecting with exponential backoff.
func (l *Listener) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		err := l.listen(ctx, func() { backoff = time.Second })
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn("change feed disconnected", zap.Error(err), zap.Duration("retryIn", backoff))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff = minDuration(backoff*2, maxBackoff)
	}
}

func (l *Listener) listen(ctx context.Context, connected func()) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "listen "+Channel); err != nil {
		return err
	}
	connected()
	l.logger.Info("change feed listening", zap.String("channel", Channel))

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		evt, err := ParsePayload(n.Payload)
		if err != nil {
			l.logger.Warn("change payload ignored", zap.String("payload", n.Payload), zap.Error(err))
			continue
		}
		l.Publish(evt)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
