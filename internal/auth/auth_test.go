package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/store"
)

type memoryAdmins struct {
	admins   map[string]store.Admin
	sessions map[string]store.AdminSession
	nextID   int
}

func newMemoryAdmins() *memoryAdmins {
	return &memoryAdmins{admins: map[string]store.Admin{}, sessions: map[string]store.AdminSession{}}
}

func (m *memoryAdmins) id() string {
	m.nextID++
	return "id-" + string(rune('a'+m.nextID))
}

func (m *memoryAdmins) FindByEmail(_ context.Context, email string) (store.Admin, error) {
	a, ok := m.admins[strings.ToLower(email)]
	if !ok {
		return store.Admin{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *memoryAdmins) Count(context.Context) (int, error) {
	return len(m.admins), nil
}

func (m *memoryAdmins) Create(_ context.Context, email, hash string) (store.Admin, error) {
	a := store.Admin{ID: m.id(), Email: strings.ToLower(email), PasswordHash: hash}
	m.admins[a.Email] = a
	return a, nil
}

func (m *memoryAdmins) CreateSession(_ context.Context, adminID string, expiresAt time.Time) (store.AdminSession, error) {
	s := store.AdminSession{ID: m.id(), AdminID: adminID, ExpiresAt: expiresAt}
	for _, a := range m.admins {
		if a.ID == adminID {
			s.Email = a.Email
		}
	}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memoryAdmins) GetSession(_ context.Context, id string) (store.AdminSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return store.AdminSession{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memoryAdmins) RevokeSession(_ context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok || s.RevokedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	m.sessions[id] = s
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryAdmins) {
	t.Helper()
	admins := newMemoryAdmins()
	svc := NewService(admins, "test-secret", time.Hour, nil)
	if err := svc.Bootstrap(context.Background(), "Chef@Example.com", "s3cret!"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return svc, admins
}

func TestSignInAndCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, token, err := svc.SignIn(ctx, "chef@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if token == "" || session.Email != "chef@example.com" {
		t.Fatalf("unexpected session %#v", session)
	}

	current, err := svc.Current(ctx, token)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != session.ID {
		t.Fatalf("expected session %s, got %s", session.ID, current.ID)
	}

	if err := svc.SignOut(ctx, session.ID); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := svc.Current(ctx, token); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("expected inactive session after sign out, got %v", err)
	}
	if err := svc.SignOut(ctx, session.ID); err != nil {
		t.Fatalf("second sign out should be a no-op, got %v", err)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "chef@example.com", "nope"},
		{"unknown email", "who@example.com", "s3cret!"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.SignIn(context.Background(), tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}
}

func TestCurrentRejectsExpiredSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, token, err := svc.SignIn(ctx, "chef@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	svc.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Current(ctx, token); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("expected inactive session, got %v", err)
	}
}

func TestBootstrapOnlyOnce(t *testing.T) {
	svc, admins := newTestService(t)
	if err := svc.Bootstrap(context.Background(), "other@example.com", "pw"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(admins.admins) != 1 {
		t.Fatalf("expected a single admin, got %d", len(admins.admins))
	}
}

func TestVerifyAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := SignAccessToken(Claims{AdminID: "a", SessionID: "s"}, "one", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyAccessToken(token, "two"); err == nil {
		t.Fatalf("expected signature failure")
	}
	claims, err := VerifyAccessToken(token, "one")
	if err != nil || claims.SessionID != "s" {
		t.Fatalf("expected valid claims, got %#v %v", claims, err)
	}
}

func TestParseBearerToken(t *testing.T) {
	if got := ParseBearerToken("Bearer abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := ParseBearerToken("abc"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestOrderTrackingToken(t *testing.T) {
	token := CreateOrderTrackingToken("secret", "ab12cd34")

	if !VerifyOrderTrackingToken("secret", token, "AB12CD34") {
		t.Fatalf("expected token to verify")
	}
	if VerifyOrderTrackingToken("secret", token, "ZZ12CD34") {
		t.Fatalf("token must be bound to the order number")
	}
	if VerifyOrderTrackingToken("other", token, "AB12CD34") {
		t.Fatalf("token must be bound to the secret")
	}
	if VerifyOrderTrackingToken("secret", "garbage", "AB12CD34") {
		t.Fatalf("malformed token must fail")
	}
}
