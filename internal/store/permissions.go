package store

import (
	"context"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/notify"
)

// NotificationPermissions persists each admin's answer to the notification
// permission prompt.
type NotificationPermissions struct {
	db DBTX
}

func NewNotificationPermissions(db DBTX) *NotificationPermissions {
	return &NotificationPermissions{db: db}
}

func (p *NotificationPermissions) Get(ctx context.Context, adminID string) (notify.Permission, error) {
	if !validID(adminID) {
		return notify.PermissionUnrequested, nil
	}
	var state string
	err := p.db.QueryRow(ctx, `select state from notification_permissions where admin_id = $1`, adminID).Scan(&state)
	if err != nil {
		if notFound("get", "notification_permissions", err) == domain.ErrNotFound {
			return notify.PermissionUnrequested, nil
		}
		return notify.PermissionUnrequested, domain.Persist("get", "notification_permissions", err)
	}
	return notify.Permission(state), nil
}

func (p *NotificationPermissions) Set(ctx context.Context, adminID string, state notify.Permission) error {
	_, err := p.db.Exec(ctx, `
		insert into notification_permissions (admin_id, state)
		values ($1, $2)
		on conflict (admin_id) do update set state = excluded.state, updated_at = now()
	`, adminID, string(state))
	return domain.Persist("upsert", "notification_permissions", err)
}

// Current reports granted when any admin granted, denied when every answer
// was a refusal, unrequested otherwise.
func (p *NotificationPermissions) Current(ctx context.Context) notify.Permission {
	rows, err := p.db.Query(ctx, `select state from notification_permissions`)
	if err != nil {
		return notify.PermissionUnrequested
	}
	defer rows.Close()

	states := make([]notify.Permission, 0)
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return notify.PermissionUnrequested
		}
		states = append(states, notify.Permission(state))
	}
	return notify.Combine(states)
}
