// Package store holds the Postgres repositories behind every collection
// the service reads and writes.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both a pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store bundles the repositories sharing one pool.
type Store struct {
	Menu        *Menu
	Stops       *Stops
	Schedule    *Schedule
	Orders      *Orders
	Contacts    *Contacts
	Admins      *Admins
	Permissions *NotificationPermissions
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Menu:        &Menu{db: pool},
		Stops:       &Stops{db: pool},
		Schedule:    &Schedule{db: pool},
		Orders:      NewOrders(pool),
		Contacts:    &Contacts{db: pool},
		Admins:      &Admins{db: pool},
		Permissions: &NotificationPermissions{db: pool},
	}
}

func notFound(op, collection string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return domain.Persist(op, collection, err)
}

func requireAffected(tag pgconn.CommandTag, err error, op, collection string) error {
	if err != nil {
		return domain.Persist(op, collection, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullText(value string) pgtype.Text {
	value = strings.TrimSpace(value)
	return pgtype.Text{String: value, Valid: value != ""}
}

func textValue(value pgtype.Text) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

func nullFloat(value *float64) pgtype.Float8 {
	if value == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *value, Valid: true}
}

func floatPtr(value pgtype.Float8) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func nullDate(value string) (pgtype.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

func dateValue(value pgtype.Date) string {
	if !value.Valid {
		return ""
	}
	return value.Time.Format("2006-01-02")
}
