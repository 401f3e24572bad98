package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionInactive    = errors.New("session expired or revoked")
)

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (store.Admin, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, email, passwordHash string) (store.Admin, error)
	CreateSession(ctx context.Context, adminID string, expiresAt time.Time) (store.AdminSession, error)
	GetSession(ctx context.Context, id string) (store.AdminSession, error)
	RevokeSession(ctx context.Context, id string) error
}

type Session struct {
	ID        string    `json:"sessionId"`
	AdminID   string    `json:"adminId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	Admins AdminStore
	Secret string
	TTL    time.Duration
	Logger *zap.Logger
	Now    func() time.Time
}

func NewService(admins AdminStore, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{Admins: admins, Secret: secret, TTL: ttl, Logger: logger, Now: time.Now}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// SignIn checks the credentials, opens a session row and returns a signed
// token bound to it.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, "", ErrInvalidCredentials
	}

	admin, err := s.Admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, "", ErrInvalidCredentials
		}
		return Session{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.Logger.Info("admin sign-in rejected", zap.String("email", admin.Email))
		return Session{}, "", ErrInvalidCredentials
	}

	now := s.Now()
	row, err := s.Admins.CreateSession(ctx, admin.ID, now.Add(s.TTL))
	if err != nil {
		return Session{}, "", err
	}

	session := Session{ID: row.ID, AdminID: admin.ID, Email: admin.Email, ExpiresAt: row.ExpiresAt}
	token, err := SignAccessToken(Claims{AdminID: admin.ID, SessionID: row.ID, Email: admin.Email}, s.Secret, now, s.TTL)
	if err != nil {
		return Session{}, "", err
	}
	return session, token, nil
}

func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	err := s.Admins.RevokeSession(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// Current resolves a token to its live session. Revoked or expired sessions
// are rejected even when the token itself is still valid.
func (s *Service) Current(ctx context.Context, token string) (Session, error) {
	claims, err := VerifyAccessToken(token, s.Secret)
	if err != nil {
		return Session{}, err
	}
	row, err := s.Admins.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, ErrSessionInactive
		}
		return Session{}, err
	}
	if row.AdminID != claims.AdminID || !row.ActiveAt(s.Now()) {
		return Session{}, ErrSessionInactive
	}
	return Session{ID: row.ID, AdminID: row.AdminID, Email: row.Email, ExpiresAt: row.ExpiresAt}, nil
}

// Bootstrap creates the first admin from configuration when none exists.
func (s *Service) Bootstrap(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	count, err := s.Admins.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	admin, err := s.Admins.Create(ctx, email, hashed)
	if err != nil {
		return err
	}
	s.Logger.Info("bootstrap admin created", zap.String("email", admin.Email))
	return nil
}
