package notify

import (
	"context"
	"errors"
)

type Permission string

const (
	PermissionUnrequested Permission = "unrequested"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
)

var ErrPermissionAnswered = errors.New("notification permission already answered")

func ParsePermission(value string) (Permission, bool) {
	switch Permission(value) {
	case PermissionUnrequested, PermissionGranted, PermissionDenied:
		return Permission(value), true
	}
	return "", false
}

// Answer moves an unrequested permission to the given answer. An answered
// permission is final.
func (p Permission) Answer(answer Permission) (Permission, error) {
	if answer != PermissionGranted && answer != PermissionDenied {
		return p, errors.New("answer must be granted or denied")
	}
	if p != PermissionUnrequested && p != "" {
		return p, ErrPermissionAnswered
	}
	return answer, nil
}

// Combine folds several admins' answers into one state.
func Combine(states []Permission) Permission {
	result := PermissionUnrequested
	for _, s := range states {
		switch s {
		case PermissionGranted:
			return PermissionGranted
		case PermissionDenied:
			result = PermissionDenied
		}
	}
	return result
}

// PermissionSource is read on every notification attempt.
type PermissionSource interface {
	Current(ctx context.Context) Permission
}

type StaticPermission Permission

func (s StaticPermission) Current(context.Context) Permission {
	return Permission(s)
}

// Gated wraps a channel that may only deliver once permission is granted.
// The permission is read again on every attempt.
type Gated struct {
	Source  PermissionSource
	Channel Channel
}

func RequirePermission(source PermissionSource, ch Channel) *Gated {
	return &Gated{Source: source, Channel: ch}
}

func (g *Gated) Name() string {
	return g.Channel.Name()
}

func (g *Gated) TryNotify(ctx context.Context, n Notification) bool {
	if g.Source == nil || g.Source.Current(ctx) != PermissionGranted {
		return false
	}
	return g.Channel.TryNotify(ctx, n)
}
