package store

import (
	"context"

	"foodtruck-order-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Menu struct {
	db DBTX
}

func NewMenu(db DBTX) *Menu {
	return &Menu{db: db}
}

func (m *Menu) ListCategories(ctx context.Context) ([]domain.MenuCategory, error) {
	rows, err := m.db.Query(ctx, `
		select id, name, display_order, created_at
		from menu_categories
		order by display_order asc, name asc
	`)
	if err != nil {
		return nil, domain.Persist("list", "menu_categories", err)
	}
	defer rows.Close()

	out := make([]domain.MenuCategory, 0)
	for rows.Next() {
		var c domain.MenuCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.CreatedAt); err != nil {
			return nil, domain.Persist("list", "menu_categories", err)
		}
		out = append(out, c)
	}
	return out, domain.Persist("list", "menu_categories", rows.Err())
}

func (m *Menu) CreateCategory(ctx context.Context, c *domain.MenuCategory) error {
	err := m.db.QueryRow(ctx, `
		insert into menu_categories (name, display_order)
		values ($1, $2)
		returning id, created_at
	`, c.Name, c.DisplayOrder).Scan(&c.ID, &c.CreatedAt)
	return domain.Persist("insert", "menu_categories", err)
}

func (m *Menu) UpdateCategory(ctx context.Context, c domain.MenuCategory) error {
	tag, err := m.db.Exec(ctx, `
		update menu_categories set name = $1, display_order = $2 where id = $3
	`, c.Name, c.DisplayOrder, c.ID)
	return requireAffected(tag, err, "update", "menu_categories")
}

func (m *Menu) DeleteCategory(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := m.db.Exec(ctx, `delete from menu_categories where id = $1`, id)
	return requireAffected(tag, err, "delete", "menu_categories")
}

const menuItemColumns = `id, category_id, name, description, price_cents, available, display_order, photo_url, created_at, updated_at`

func scanMenuItem(row pgx.Row) (domain.MenuItem, error) {
	var (
		item       domain.MenuItem
		categoryID pgtype.UUID
		photoURL   pgtype.Text
		price      int64
	)
	err := row.Scan(&item.ID, &categoryID, &item.Name, &item.Description, &price, &item.Available, &item.DisplayOrder, &photoURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.Price = domain.Money(price)
	item.PhotoURL = textValue(photoURL)
	if categoryID.Valid {
		item.CategoryID = uuidString(categoryID)
	}
	return item, nil
}

// ListItems returns menu items in display order, optionally only those
// currently offered.
func (m *Menu) ListItems(ctx context.Context, onlyAvailable bool) ([]domain.MenuItem, error) {
	rows, err := m.db.Query(ctx, `
		select `+menuItemColumns+`
		from menu_items
		where ($1::boolean = false or available = true)
		order by display_order asc, name asc
	`, onlyAvailable)
	if err != nil {
		return nil, domain.Persist("list", "menu_items", err)
	}
	defer rows.Close()

	out := make([]domain.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, domain.Persist("list", "menu_items", err)
		}
		out = append(out, item)
	}
	return out, domain.Persist("list", "menu_items", rows.Err())
}

func (m *Menu) GetItem(ctx context.Context, id string) (domain.MenuItem, error) {
	if !validID(id) {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	item, err := scanMenuItem(m.db.QueryRow(ctx, `select `+menuItemColumns+` from menu_items where id = $1`, id))
	if err != nil {
		return domain.MenuItem{}, notFound("get", "menu_items", err)
	}
	return item, nil
}

// Catalog indexes every menu item by id for cart rebuilding.
func (m *Menu) Catalog(ctx context.Context) (map[string]domain.MenuItem, error) {
	items, err := m.ListItems(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.MenuItem, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

func (m *Menu) CreateItem(ctx context.Context, item *domain.MenuItem) error {
	err := m.db.QueryRow(ctx, `
		insert into menu_items (category_id, name, description, price_cents, available, display_order, photo_url)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id, created_at, updated_at
	`, nullUUID(item.CategoryID), item.Name, item.Description, int64(item.Price), item.Available, item.DisplayOrder, nullText(item.PhotoURL)).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return domain.Persist("insert", "menu_items", err)
}

func (m *Menu) UpdateItem(ctx context.Context, item domain.MenuItem) error {
	tag, err := m.db.Exec(ctx, `
		update menu_items
		set category_id = $1, name = $2, description = $3, price_cents = $4,
		    available = $5, display_order = $6, updated_at = now()
		where id = $7
	`, nullUUID(item.CategoryID), item.Name, item.Description, int64(item.Price), item.Available, item.DisplayOrder, item.ID)
	return requireAffected(tag, err, "update", "menu_items")
}

func (m *Menu) SetItemPhoto(ctx context.Context, id, url string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := m.db.Exec(ctx, `update menu_items set photo_url = $1, updated_at = now() where id = $2`, nullText(url), id)
	return requireAffected(tag, err, "update", "menu_items")
}

func (m *Menu) DeleteItem(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := m.db.Exec(ctx, `delete from menu_items where id = $1`, id)
	return requireAffected(tag, err, "delete", "menu_items")
}
