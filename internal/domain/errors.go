package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// ValidationError reports a rejected input field before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type PersistenceKind string

const (
	PersistenceNetwork    PersistenceKind = "network"
	PersistenceConstraint PersistenceKind = "constraint"
	PersistenceNotFound   PersistenceKind = "not_found"
	PersistenceTimeout    PersistenceKind = "timeout"
	PersistenceUnknown    PersistenceKind = "unknown"
)

// PersistenceError wraps a failed backend call.
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Kind classifies the underlying failure.
func (e *PersistenceError) Kind() PersistenceKind {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return PersistenceTimeout
	case errors.Is(e.Err, pgx.ErrNoRows), errors.Is(e.Err, ErrNotFound):
		return PersistenceNotFound
	case errors.As(e.Err, &pgErr):
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
			return PersistenceConstraint
		}
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return PersistenceNetwork
		}
		return PersistenceUnknown
	case pgconn.SafeToRetry(e.Err):
		return PersistenceNetwork
	}
	return PersistenceUnknown
}

// IsUniqueViolation reports whether err is a unique-constraint failure,
// optionally on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Persist wraps err as a PersistenceError unless it is nil.
func Persist(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var existing *PersistenceError
	if errors.As(err, &existing) {
		return err
	}
	return &PersistenceError{Op: op, Collection: collection, Err: err}
}
