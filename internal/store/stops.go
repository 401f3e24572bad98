package store

import (
	"context"

	"foodtruck-order-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Stops struct {
	db DBTX
}

func NewStops(db DBTX) *Stops {
	return &Stops{db: db}
}

const stopColumns = `id, name, address, latitude, longitude, weekday, opens_at, closes_at, active, created_at, updated_at`

func scanStop(row pgx.Row) (domain.Stop, error) {
	var (
		s         domain.Stop
		latitude  pgtype.Float8
		longitude pgtype.Float8
		opensAt   pgtype.Text
		closesAt  pgtype.Text
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Address, &latitude, &longitude, &s.Weekday, &opensAt, &closesAt, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.Stop{}, err
	}
	s.Latitude = floatPtr(latitude)
	s.Longitude = floatPtr(longitude)
	s.OpensAt = textValue(opensAt)
	s.ClosesAt = textValue(closesAt)
	return s, nil
}

func (s *Stops) List(ctx context.Context, onlyActive bool) ([]domain.Stop, error) {
	rows, err := s.db.Query(ctx, `
		select `+stopColumns+`
		from stops
		where ($1::boolean = false or active = true)
		order by name asc, created_at asc
	`, onlyActive)
	if err != nil {
		return nil, domain.Persist("list", "stops", err)
	}
	defer rows.Close()

	out := make([]domain.Stop, 0)
	for rows.Next() {
		stop, err := scanStop(rows)
		if err != nil {
			return nil, domain.Persist("list", "stops", err)
		}
		out = append(out, stop)
	}
	return out, domain.Persist("list", "stops", rows.Err())
}

func (s *Stops) GetStop(ctx context.Context, id string) (domain.Stop, error) {
	if !validID(id) {
		return domain.Stop{}, domain.ErrNotFound
	}
	stop, err := scanStop(s.db.QueryRow(ctx, `select `+stopColumns+` from stops where id = $1`, id))
	if err != nil {
		return domain.Stop{}, notFound("get", "stops", err)
	}
	return stop, nil
}

func (s *Stops) Create(ctx context.Context, stop *domain.Stop) error {
	err := s.db.QueryRow(ctx, `
		insert into stops (name, address, latitude, longitude, weekday, opens_at, closes_at, active)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id, created_at, updated_at
	`, stop.Name, stop.Address, nullFloat(stop.Latitude), nullFloat(stop.Longitude), stop.Weekday,
		nullText(stop.OpensAt), nullText(stop.ClosesAt), stop.Active).
		Scan(&stop.ID, &stop.CreatedAt, &stop.UpdatedAt)
	return domain.Persist("insert", "stops", err)
}

func (s *Stops) Update(ctx context.Context, stop domain.Stop) error {
	if !validID(stop.ID) {
		return domain.ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `
		update stops
		set name = $1, address = $2, latitude = $3, longitude = $4, weekday = $5,
		    opens_at = $6, closes_at = $7, active = $8, updated_at = now()
		where id = $9
	`, stop.Name, stop.Address, nullFloat(stop.Latitude), nullFloat(stop.Longitude), stop.Weekday,
		nullText(stop.OpensAt), nullText(stop.ClosesAt), stop.Active, stop.ID)
	return requireAffected(tag, err, "update", "stops")
}

func (s *Stops) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `delete from stops where id = $1`, id)
	return requireAffected(tag, err, "delete", "stops")
}
