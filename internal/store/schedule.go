package store

import (
	"context"
	"time"

	"foodtruck-order-service/internal/domain"
)

type Schedule struct {
	db DBTX
}

func NewSchedule(db DBTX) *Schedule {
	return &Schedule{db: db}
}

func (s *Schedule) List(ctx context.Context) ([]domain.ScheduleEntry, error) {
	rows, err := s.db.Query(ctx, `
		select id, weekday, opens_at, closes_at, active, updated_at
		from schedule
		order by weekday asc
	`)
	if err != nil {
		return nil, domain.Persist("list", "schedule", err)
	}
	defer rows.Close()

	out := make([]domain.ScheduleEntry, 0, 7)
	for rows.Next() {
		var (
			e   domain.ScheduleEntry
			day int16
		)
		if err := rows.Scan(&e.ID, &day, &e.OpensAt, &e.ClosesAt, &e.Active, &e.UpdatedAt); err != nil {
			return nil, domain.Persist("list", "schedule", err)
		}
		e.Weekday = time.Weekday(day)
		out = append(out, e)
	}
	return out, domain.Persist("list", "schedule", rows.Err())
}

func (s *Schedule) ScheduleFor(ctx context.Context, day time.Weekday) (domain.ScheduleEntry, bool, error) {
	var e domain.ScheduleEntry
	err := s.db.QueryRow(ctx, `
		select id, opens_at, closes_at, active, updated_at
		from schedule
		where weekday = $1
	`, int16(day)).Scan(&e.ID, &e.OpensAt, &e.ClosesAt, &e.Active, &e.UpdatedAt)
	if err != nil {
		if notFound("get", "schedule", err) == domain.ErrNotFound {
			return domain.ScheduleEntry{}, false, nil
		}
		return domain.ScheduleEntry{}, false, domain.Persist("get", "schedule", err)
	}
	e.Weekday = day
	return e, true, nil
}

// Upsert writes the opening window for one weekday.
func (s *Schedule) Upsert(ctx context.Context, e *domain.ScheduleEntry) error {
	err := s.db.QueryRow(ctx, `
		insert into schedule (weekday, opens_at, closes_at, active)
		values ($1, $2, $3, $4)
		on conflict (weekday) do update
		set opens_at = excluded.opens_at,
		    closes_at = excluded.closes_at,
		    active = excluded.active,
		    updated_at = now()
		returning id, updated_at
	`, int16(e.Weekday), e.OpensAt, e.ClosesAt, e.Active).Scan(&e.ID, &e.UpdatedAt)
	return domain.Persist("upsert", "schedule", err)
}
