package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/ordering"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Orders struct {
	db   DBTX
	pool *pgxpool.Pool
}

func NewOrders(pool *pgxpool.Pool) *Orders {
	return &Orders{db: pool, pool: pool}
}

type OrderFilter struct {
	Statuses []domain.OrderStatus
	Since    *time.Time
	Limit    int
}

func (o *Orders) InsertOrder(ctx context.Context, order *domain.Order) error {
	pickup, err := nullDate(order.PickupDate)
	if err != nil {
		return fmt.Errorf("pickup date: %w", err)
	}
	return o.db.QueryRow(ctx, `
		insert into orders (
			id, order_number, stop_id, customer_first_name, customer_last_name,
			customer_phone, customer_email, pickup_date, pickup_time, status, total_cents
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		returning created_at, updated_at
	`,
		order.ID,
		order.OrderNumber,
		order.StopID,
		order.Customer.FirstName,
		order.Customer.LastName,
		order.Customer.Phone,
		nullText(order.Customer.Email),
		pickup,
		order.PickupTime,
		string(order.Status),
		int64(order.Total),
	).Scan(&order.CreatedAt, &order.UpdatedAt)
}

func (o *Orders) InsertLines(ctx context.Context, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, line := range lines {
		batch.Queue(`
			insert into order_lines (id, order_id, menu_item_id, item_name, position, quantity, unit_price_cents)
			values ($1, $2, $3, $4, $5, $6, $7)
		`, line.ID, line.OrderID, nullUUID(line.MenuItemID), line.ItemName, i, line.Quantity, int64(line.UnitPrice))
	}
	results := o.db.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

func (o *Orders) DeleteOrder(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := o.db.Exec(ctx, `delete from orders where id = $1`, id)
	return requireAffected(tag, err, "delete", "orders")
}

// InTx runs fn with a writer bound to a single transaction.
func (o *Orders) InTx(ctx context.Context, fn func(w ordering.OrderWriter) error) error {
	if o.pool == nil {
		return fn(o)
	}
	return pgx.BeginFunc(ctx, o.pool, func(tx pgx.Tx) error {
		return fn(&Orders{db: tx})
	})
}

const orderSelect = `
	select o.id, o.order_number, o.stop_id, coalesce(s.name, ''),
	       o.customer_first_name, o.customer_last_name, o.customer_phone, o.customer_email,
	       o.pickup_date, o.pickup_time, o.status, o.total_cents, o.created_at, o.updated_at
	from orders o
	left join stops s on s.id = o.stop_id
`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		order  domain.Order
		email  pgtype.Text
		pickup pgtype.Date
		status string
		total  int64
	)
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.StopID, &order.StopName,
		&order.Customer.FirstName, &order.Customer.LastName, &order.Customer.Phone, &email,
		&pickup, &order.PickupTime, &status, &total, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Customer.Email = textValue(email)
	order.PickupDate = dateValue(pickup)
	order.Status = domain.OrderStatus(status)
	order.Total = domain.Money(total)
	return order, nil
}

// List returns orders newest first with their stop name and lines.
func (o *Orders) List(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	var (
		clauses []string
		args    []any
	)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("o.status = any($%d)", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		clauses = append(clauses, fmt.Sprintf("o.created_at >= $%d", len(args)))
	}

	query := orderSelect
	if len(clauses) > 0 {
		query += " where " + strings.Join(clauses, " and ")
	}
	query += " order by o.created_at desc"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" limit $%d", len(args))
	}

	rows, err := o.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Persist("list", "orders", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Persist("list", "orders", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persist("list", "orders", err)
	}
	rows.Close()

	lines, err := o.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (o *Orders) linesFor(ctx context.Context, orderIDs []string) (map[string][]domain.OrderLine, error) {
	out := make(map[string][]domain.OrderLine, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := o.db.Query(ctx, `
		select l.id, l.order_id, l.menu_item_id, coalesce(m.name, l.item_name), l.quantity, l.unit_price_cents
		from order_lines l
		left join menu_items m on m.id = l.menu_item_id
		where l.order_id = any($1::uuid[])
		order by l.order_id, l.position
	`, orderIDs)
	if err != nil {
		return nil, domain.Persist("list", "order_lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line   domain.OrderLine
			itemID pgtype.UUID
			price  int64
		)
		if err := rows.Scan(&line.ID, &line.OrderID, &itemID, &line.ItemName, &line.Quantity, &price); err != nil {
			return nil, domain.Persist("list", "order_lines", err)
		}
		line.MenuItemID = uuidString(itemID)
		line.UnitPrice = domain.Money(price)
		out[line.OrderID] = append(out[line.OrderID], line)
	}
	return out, domain.Persist("list", "order_lines", rows.Err())
}

func (o *Orders) Get(ctx context.Context, id string) (domain.Order, error) {
	if !validID(id) {
		return domain.Order{}, domain.ErrNotFound
	}
	return o.getWhere(ctx, "o.id = $1", id)
}

func (o *Orders) GetByNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	return o.getWhere(ctx, "o.order_number = $1", strings.ToUpper(strings.TrimSpace(orderNumber)))
}

func (o *Orders) getWhere(ctx context.Context, clause string, arg any) (domain.Order, error) {
	order, err := scanOrder(o.db.QueryRow(ctx, orderSelect+" where "+clause, arg))
	if err != nil {
		return domain.Order{}, notFound("get", "orders", err)
	}
	lines, err := o.linesFor(ctx, []string{order.ID})
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines[order.ID]
	return order, nil
}

// UpdateStatus moves an order along the status workflow, rejecting
// transitions the workflow does not allow.
func (o *Orders) UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (domain.Order, error) {
	if !validID(id) {
		return domain.Order{}, domain.ErrNotFound
	}
	err := o.inTx(ctx, func(db DBTX) error {
		var current string
		if err := db.QueryRow(ctx, `select status from orders where id = $1 for update`, id).Scan(&current); err != nil {
			return notFound("get", "orders", err)
		}
		if !domain.OrderStatus(current).CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current, next)
		}
		_, err := db.Exec(ctx, `update orders set status = $1, updated_at = now() where id = $2`, string(next), id)
		return domain.Persist("update", "orders", err)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return o.Get(ctx, id)
}

func (o *Orders) inTx(ctx context.Context, fn func(db DBTX) error) error {
	if o.pool == nil {
		return fn(o.db)
	}
	return pgx.BeginFunc(ctx, o.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

func (o *Orders) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := o.db.Query(ctx, `select status, count(*) from orders group by status`)
	if err != nil {
		return nil, domain.Persist("count", "orders", err)
	}
	defer rows.Close()

	out := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		out[s] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.Persist("count", "orders", err)
		}
		out[domain.OrderStatus(status)] = count
	}
	return out, domain.Persist("count", "orders", rows.Err())
}
