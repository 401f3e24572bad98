package handlers

import (
	"net/http"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/pkg/response"
)

type menuSection struct {
	Category *domain.MenuCategory `json:"category"`
	Items    []domain.MenuItem    `json:"items"`
}

// groupMenu keeps category display order and appends uncategorised items
// last. Empty categories are left out.
func groupMenu(categories []domain.MenuCategory, items []domain.MenuItem) []menuSection {
	byCategory := make(map[string][]domain.MenuItem, len(categories))
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	var loose []domain.MenuItem
	for _, item := range items {
		if item.CategoryID != "" && known[item.CategoryID] {
			byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
			continue
		}
		loose = append(loose, item)
	}

	sections := make([]menuSection, 0, len(categories)+1)
	for i := range categories {
		if list := byCategory[categories[i].ID]; len(list) > 0 {
			sections = append(sections, menuSection{Category: &categories[i], Items: list})
		}
	}
	if len(loose) > 0 {
		sections = append(sections, menuSection{Items: loose})
	}
	return sections
}

func (h *Handler) PublicMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.Menu.ListCategories(ctx)
	if err != nil {
		h.writeError(w, err, "public menu categories", "Failed to load menu")
		return
	}
	items, err := h.Menu.ListItems(ctx, true)
	if err != nil {
		h.writeError(w, err, "public menu items", "Failed to load menu")
		return
	}
	response.Success(w, map[string]any{
		"currency": h.Config.Currency,
		"sections": groupMenu(categories, items),
	})
}
