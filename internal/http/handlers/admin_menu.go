package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/imageproc"
	"foodtruck-order-service/internal/storage"
	"foodtruck-order-service/pkg/response"

	"go.uber.org/zap"
)

type categoryPayload struct {
	Name         *string `json:"name"`
	DisplayOrder *int    `json:"displayOrder"`
}

type menuItemPayload struct {
	CategoryID   *string  `json:"categoryId"`
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	PriceCents   *int64   `json:"priceCents"`
	Available    *bool    `json:"available"`
	DisplayOrder *int     `json:"displayOrder"`
}

// apply copies the fields present in the payload onto item.
func (p menuItemPayload) apply(item *domain.MenuItem) error {
	if p.CategoryID != nil {
		item.CategoryID = strings.TrimSpace(*p.CategoryID)
	}
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		item.Description = strings.TrimSpace(*p.Description)
	}
	switch {
	case p.PriceCents != nil:
		if *p.PriceCents < 0 {
			return domain.Invalid("price", "must not be negative")
		}
		item.Price = domain.Money(*p.PriceCents)
	case p.Price != nil:
		price, err := domain.MoneyFromFloat(*p.Price)
		if err != nil {
			return domain.Invalid("price", "must not be negative")
		}
		item.Price = price
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if p.DisplayOrder != nil {
		item.DisplayOrder = *p.DisplayOrder
	}
	return item.Validate()
}

func (h *Handler) AdminCategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Menu.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, err, "admin categories list", "Failed to load categories")
		return
	}
	response.Success(w, categories)
}

func (h *Handler) AdminCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	category := domain.MenuCategory{}
	if payload.Name != nil {
		category.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.DisplayOrder != nil {
		category.DisplayOrder = *payload.DisplayOrder
	}
	if category.Name == "" {
		validationError(w, "name", "Category name is required")
		return
	}
	if err := h.Menu.CreateCategory(r.Context(), &category); err != nil {
		h.writeError(w, err, "admin category create", "Failed to create category")
		return
	}
	response.Created(w, category)
}

func (h *Handler) AdminCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	category := domain.MenuCategory{ID: readPathString(r, "id")}
	if payload.Name != nil {
		category.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.DisplayOrder != nil {
		category.DisplayOrder = *payload.DisplayOrder
	}
	if category.Name == "" {
		validationError(w, "name", "Category name is required")
		return
	}
	if err := h.Menu.UpdateCategory(r.Context(), category); err != nil {
		h.writeError(w, err, "admin category update", "Failed to update category")
		return
	}
	response.Success(w, category)
}

func (h *Handler) AdminCategoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Menu.DeleteCategory(r.Context(), readPathString(r, "id")); err != nil {
		h.writeError(w, err, "admin category delete", "Failed to delete category")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}

func (h *Handler) AdminMenuItemsList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Menu.ListItems(r.Context(), queryBool(r, "available"))
	if err != nil {
		h.writeError(w, err, "admin menu list", "Failed to load menu items")
		return
	}
	response.Success(w, items)
}

func (h *Handler) AdminMenuItemCreate(w http.ResponseWriter, r *http.Request) {
	var payload menuItemPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	item := domain.MenuItem{Available: true}
	if payload.Price == nil && payload.PriceCents == nil {
		validationError(w, "price", "Price is required")
		return
	}
	if err := payload.apply(&item); err != nil {
		h.writeError(w, err, "admin menu create", "Invalid menu item")
		return
	}
	if err := h.Menu.CreateItem(r.Context(), &item); err != nil {
		h.writeError(w, err, "admin menu create", "Failed to create menu item")
		return
	}
	response.Created(w, item)
}

func (h *Handler) AdminMenuItemUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload menuItemPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	item, err := h.Menu.GetItem(ctx, readPathString(r, "id"))
	if err != nil {
		h.writeError(w, err, "admin menu update", "Failed to load menu item")
		return
	}
	if err := payload.apply(&item); err != nil {
		h.writeError(w, err, "admin menu update", "Invalid menu item")
		return
	}
	if err := h.Menu.UpdateItem(ctx, item); err != nil {
		h.writeError(w, err, "admin menu update", "Failed to update menu item")
		return
	}
	response.Success(w, item)
}

func (h *Handler) AdminMenuItemDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := readPathString(r, "id")
	item, err := h.Menu.GetItem(ctx, id)
	if err != nil {
		h.writeError(w, err, "admin menu delete", "Failed to load menu item")
		return
	}
	if err := h.Menu.DeleteItem(ctx, id); err != nil {
		h.writeError(w, err, "admin menu delete", "Failed to delete menu item")
		return
	}
	h.deletePhoto(r, item.PhotoURL)
	response.Success(w, map[string]any{"deleted": true})
}

// AdminMenuItemPhoto accepts a multipart "file" field, re-encodes it and
// replaces the item's photo.
func (h *Handler) AdminMenuItemPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Photos == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Photo storage is not configured")
		return
	}
	item, err := h.Menu.GetItem(ctx, readPathString(r, "id"))
	if err != nil {
		h.writeError(w, err, "admin menu photo", "Failed to load menu item")
		return
	}

	limit := h.Config.MaxFileSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1024*1024)
	if err := r.ParseMultipartForm(limit); err != nil {
		validationError(w, "file", "Invalid upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		validationError(w, "file", "File is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		validationError(w, "file", "Invalid upload")
		return
	}

	photo, meta, err := imageproc.PrepareMenuPhoto(data, limit)
	if err != nil {
		var tooLarge *imageproc.TooLargeError
		if errors.As(err, &tooLarge) {
			validationError(w, "file", "File is too large")
			return
		}
		validationError(w, "file", "Unsupported or unreadable image")
		return
	}

	url, err := h.Photos.PutObject(ctx, storage.MenuPhotoKey(item.ID), photo, "image/jpeg", "")
	if err != nil {
		h.writeError(w, err, "admin menu photo upload", "Failed to upload photo")
		return
	}
	if err := h.Menu.SetItemPhoto(ctx, item.ID, url); err != nil {
		h.deletePhoto(r, url)
		h.writeError(w, err, "admin menu photo", "Failed to save photo")
		return
	}
	h.deletePhoto(r, item.PhotoURL)

	response.Success(w, map[string]any{"photoUrl": url, "source": meta})
}

func (h *Handler) deletePhoto(r *http.Request, url string) {
	if h.Photos == nil || strings.TrimSpace(url) == "" {
		return
	}
	if err := h.Photos.DeleteURL(r.Context(), url); err != nil {
		h.logger().Warn("menu photo cleanup failed", zap.String("url", url), zapError(err))
	}
}
