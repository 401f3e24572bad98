package store

import (
	"context"
	"fmt"

	"foodtruck-order-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Contacts struct {
	db DBTX
}

func NewContacts(db DBTX) *Contacts {
	return &Contacts{db: db}
}

const contactColumns = `id, name, email, phone, event_type, event_date, headcount, venue, message, status, created_at, updated_at`

func scanContact(row pgx.Row) (domain.ContactRequest, error) {
	var (
		c         domain.ContactRequest
		email     pgtype.Text
		phone     pgtype.Text
		eventDate pgtype.Date
		headcount pgtype.Int4
		venue     pgtype.Text
		status    string
	)
	if err := row.Scan(&c.ID, &c.Name, &email, &phone, &c.EventType, &eventDate, &headcount, &venue, &c.Message, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.ContactRequest{}, err
	}
	c.Email = textValue(email)
	c.Phone = textValue(phone)
	c.EventDate = dateValue(eventDate)
	c.Venue = textValue(venue)
	c.Status = domain.ContactStatus(status)
	if headcount.Valid {
		n := int(headcount.Int32)
		c.Headcount = &n
	}
	return c, nil
}

func (c *Contacts) Create(ctx context.Context, req *domain.ContactRequest) error {
	eventDate, err := nullDate(req.EventDate)
	if err != nil {
		return domain.Invalid("eventDate", "expected YYYY-MM-DD")
	}
	var headcount pgtype.Int4
	if req.Headcount != nil {
		headcount = pgtype.Int4{Int32: int32(*req.Headcount), Valid: true}
	}
	if req.Status == "" {
		req.Status = domain.ContactNew
	}
	err = c.db.QueryRow(ctx, `
		insert into contact_requests (name, email, phone, event_type, event_date, headcount, venue, message, status)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning id, created_at, updated_at
	`, req.Name, nullText(req.Email), nullText(req.Phone), req.EventType, eventDate, headcount, nullText(req.Venue), req.Message, string(req.Status)).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	return domain.Persist("insert", "contact_requests", err)
}

// List returns requests newest first; an empty status lists all.
func (c *Contacts) List(ctx context.Context, status domain.ContactStatus) ([]domain.ContactRequest, error) {
	rows, err := c.db.Query(ctx, `
		select `+contactColumns+`
		from contact_requests
		where ($1 = '' or status = $1)
		order by created_at desc
	`, string(status))
	if err != nil {
		return nil, domain.Persist("list", "contact_requests", err)
	}
	defer rows.Close()

	out := make([]domain.ContactRequest, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, domain.Persist("list", "contact_requests", err)
		}
		out = append(out, contact)
	}
	return out, domain.Persist("list", "contact_requests", rows.Err())
}

func (c *Contacts) Get(ctx context.Context, id string) (domain.ContactRequest, error) {
	if !validID(id) {
		return domain.ContactRequest{}, domain.ErrNotFound
	}
	contact, err := scanContact(c.db.QueryRow(ctx, `select `+contactColumns+` from contact_requests where id = $1`, id))
	if err != nil {
		return domain.ContactRequest{}, notFound("get", "contact_requests", err)
	}
	return contact, nil
}

func (c *Contacts) UpdateStatus(ctx context.Context, id string, next domain.ContactStatus) (domain.ContactRequest, error) {
	current, err := c.Get(ctx, id)
	if err != nil {
		return domain.ContactRequest{}, err
	}
	if current.Status == next {
		return current, nil
	}
	if !current.Status.CanTransitionTo(next) {
		return domain.ContactRequest{}, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current.Status, next)
	}
	tag, err := c.db.Exec(ctx, `
		update contact_requests set status = $1, updated_at = now()
		where id = $2 and status = $3
	`, string(next), id, string(current.Status))
	if err := requireAffected(tag, err, "update", "contact_requests"); err != nil {
		return domain.ContactRequest{}, err
	}
	return c.Get(ctx, id)
}

func (c *Contacts) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := c.db.Exec(ctx, `delete from contact_requests where id = $1`, id)
	return requireAffected(tag, err, "delete", "contact_requests")
}
