package domain

import "time"

type MenuCategory struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

type MenuItem struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"categoryId,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        Money     `json:"priceCents"`
	Available    bool      `json:"available"`
	DisplayOrder int       `json:"displayOrder"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (m MenuItem) Validate() error {
	if m.Name == "" {
		return Invalid("name", "is required")
	}
	if m.Price < 0 {
		return Invalid("price", "must not be negative")
	}
	return nil
}
