package store

import (
	"context"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type AdminSession struct {
	ID        string
	AdminID   string
	Email     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (s AdminSession) ActiveAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type Admins struct {
	db DBTX
}

func NewAdmins(db DBTX) *Admins {
	return &Admins{db: db}
}

func (a *Admins) FindByEmail(ctx context.Context, email string) (Admin, error) {
	var admin Admin
	err := a.db.QueryRow(ctx, `
		select id, email, password_hash, created_at
		from admins
		where lower(email) = lower($1)
	`, strings.TrimSpace(email)).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		return Admin{}, notFound("get", "admins", err)
	}
	return admin, nil
}

func (a *Admins) Count(ctx context.Context) (int, error) {
	var count int
	err := a.db.QueryRow(ctx, `select count(*) from admins`).Scan(&count)
	return count, domain.Persist("count", "admins", err)
}

func (a *Admins) Create(ctx context.Context, email, passwordHash string) (Admin, error) {
	admin := Admin{Email: strings.ToLower(strings.TrimSpace(email)), PasswordHash: passwordHash}
	err := a.db.QueryRow(ctx, `
		insert into admins (email, password_hash) values ($1, $2)
		returning id, created_at
	`, admin.Email, passwordHash).Scan(&admin.ID, &admin.CreatedAt)
	return admin, domain.Persist("insert", "admins", err)
}

func (a *Admins) CreateSession(ctx context.Context, adminID string, expiresAt time.Time) (AdminSession, error) {
	session := AdminSession{AdminID: adminID, ExpiresAt: expiresAt}
	err := a.db.QueryRow(ctx, `
		insert into admin_sessions (admin_id, expires_at) values ($1, $2)
		returning id, created_at
	`, adminID, expiresAt).Scan(&session.ID, &session.CreatedAt)
	return session, domain.Persist("insert", "admin_sessions", err)
}

func (a *Admins) GetSession(ctx context.Context, id string) (AdminSession, error) {
	if !validID(id) {
		return AdminSession{}, domain.ErrNotFound
	}
	var (
		session AdminSession
		revoked pgtype.Timestamptz
	)
	err := a.db.QueryRow(ctx, `
		select s.id, s.admin_id, a.email, s.expires_at, s.revoked_at, s.created_at
		from admin_sessions s
		join admins a on a.id = s.admin_id
		where s.id = $1
	`, id).Scan(&session.ID, &session.AdminID, &session.Email, &session.ExpiresAt, &revoked, &session.CreatedAt)
	if err != nil {
		return AdminSession{}, notFound("get", "admin_sessions", err)
	}
	if revoked.Valid {
		t := revoked.Time
		session.RevokedAt = &t
	}
	return session, nil
}

func (a *Admins) RevokeSession(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := a.db.Exec(ctx, `
		update admin_sessions set revoked_at = now()
		where id = $1 and revoked_at is null
	`, id)
	return requireAffected(tag, err, "update", "admin_sessions")
}
