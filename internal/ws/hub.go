package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"foodtruck-order-service/internal/notify"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// conn is the part of *websocket.Conn the hub writes to.
type conn interface {
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// DefaultWriteWait bounds a single write to an admin socket.
const DefaultWriteWait = 5 * time.Second

type realtimeClient struct {
	conn      conn
	adminID   string
	writeWait time.Duration
	writeMu   sync.Mutex
}

func (c *realtimeClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	wait := c.writeWait
	if wait <= 0 {
		wait = DefaultWriteWait
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(value)
}

func (c *realtimeClient) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// Hub tracks connected admin sockets. WriteWait applies to clients
// subscribed after it is set.
type Hub struct {
	WriteWait time.Duration

	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*realtimeClient]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{WriteWait: DefaultWriteWait, logger: logger, clients: make(map[*realtimeClient]struct{})}
}

func (h *Hub) subscribe(client *realtimeClient) (unsubscribe func()) {
	if client.writeWait <= 0 {
		client.writeWait = h.WriteWait
	}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast writes message to every client concurrently and returns how
// many accepted it. Clients whose write fails or times out are closed and
// dropped.
func (h *Hub) Broadcast(message any) int {
	h.mu.RLock()
	clients := make([]*realtimeClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var (
		wg        sync.WaitGroup
		delivered atomic.Int64
	)
	for _, c := range clients {
		wg.Add(1)
		go func(c *realtimeClient) {
			defer wg.Done()
			if err := c.writeJSON(message); err != nil {
				h.drop(c, err)
				return
			}
			delivered.Add(1)
		}(c)
	}
	wg.Wait()
	return int(delivered.Load())
}

func (h *Hub) drop(c *realtimeClient, cause error) {
	_ = c.conn.Close()
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	h.logger.Debug("admin socket dropped", zap.String("adminId", c.adminID), zap.Error(cause))
}

// NotificationChannel shows a system notification through the admin pages
// that are currently open.
type NotificationChannel struct {
	Hub *Hub
}

func (n *NotificationChannel) Name() string {
	return "system"
}

func (n *NotificationChannel) TryNotify(_ context.Context, note notify.Notification) bool {
	if n.Hub == nil || n.Hub.Len() == 0 {
		return false
	}
	return n.Hub.Broadcast(map[string]any{
		"type": "notification.show",
		"data": map[string]any{
			"title":              note.Title,
			"body":               note.Body,
			"tag":                note.Tag,
			"requireInteraction": note.RequireInteraction,
			"sound":              note.Sound,
			"dismissAfterMs":     note.DismissAfterMs(),
		},
	}) > 0
}
