// Package ws serves the admin realtime socket: order board snapshots and
// system notifications.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"foodtruck-order-service/internal/auth"
	"foodtruck-order-service/internal/notify"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type SessionResolver interface {
	Current(ctx context.Context, token string) (auth.Session, error)
}

type PermissionStore interface {
	Get(ctx context.Context, adminID string) (notify.Permission, error)
	Set(ctx context.Context, adminID string, state notify.Permission) error
}

type Server struct {
	Hub         *Hub
	Refresher   *Refresher
	Sessions    SessionResolver
	Permissions PermissionStore
	Heartbeat   time.Duration
	Logger      *zap.Logger
}

type clientMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// AdminSocket authenticates with the token query parameter, sends the
// current board and then keeps the socket open for pushes.
func (s *Server) AdminSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = auth.ParseBearerToken(r.Header.Get("Authorization"))
	}
	session, err := s.Sessions.Current(r.Context(), token)
	if err != nil {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	ctx := r.Context()
	client := &realtimeClient{conn: conn, adminID: session.AdminID}
	unsubscribe := s.Hub.subscribe(client)
	defer unsubscribe()

	if s.Refresher != nil {
		if snap, err := s.Refresher.Snapshot(ctx); err == nil {
			_ = client.writeJSON(map[string]any{"type": "orders.state", "data": snap})
		} else {
			_ = client.writeJSON(map[string]any{"type": "orders.refresh", "updatedAt": time.Now().UTC()})
		}
	}
	if s.Permissions != nil {
		if state, err := s.Permissions.Get(ctx, session.AdminID); err == nil {
			_ = client.writeJSON(permissionMessage(state))
		}
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			_, data, readErr := conn.ReadMessage()
			if readErr != nil {
				return
			}
			if reply := s.handleClientMessage(ctx, session.AdminID, data); reply != nil {
				_ = client.writeJSON(reply)
			}
		}
	}()

	heartbeat := s.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.ping(); err != nil {
				return
			}
		}
	}
}

// handleClientMessage records the admin's answer to the browser
// notification prompt and returns the message to send back, if any.
func (s *Server) handleClientMessage(ctx context.Context, adminID string, data []byte) any {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil
	}
	if msg.Type != "notification.permission" || s.Permissions == nil {
		return nil
	}

	answer, ok := notify.ParsePermission(strings.TrimSpace(msg.State))
	if !ok {
		return map[string]any{"type": "error", "message": "unknown permission state"}
	}
	current, err := s.Permissions.Get(ctx, adminID)
	if err != nil {
		s.logger().Warn("notification permission lookup failed", zap.String("adminId", adminID), zap.Error(err))
		return nil
	}
	next, err := current.Answer(answer)
	if err != nil {
		if errors.Is(err, notify.ErrPermissionAnswered) {
			return permissionMessage(current)
		}
		return map[string]any{"type": "error", "message": err.Error()}
	}
	if err := s.Permissions.Set(ctx, adminID, next); err != nil {
		s.logger().Warn("notification permission not saved", zap.String("adminId", adminID), zap.Error(err))
		return nil
	}
	s.logger().Info("notification permission answered", zap.String("adminId", adminID), zap.String("state", string(next)))
	return permissionMessage(next)
}

func permissionMessage(state notify.Permission) map[string]any {
	return map[string]any{"type": "notification.permission", "data": map[string]any{"state": state}}
}
