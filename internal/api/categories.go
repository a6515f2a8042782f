package api

import (
	"net/http"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/store"
)

// --- Category Handlers ---

// CategoryInput defines the expected input for creating or renaming a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=255"` // Max length from DB schema
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	created, err := h.categoryStore.CreateCategory(r.Context(), &domain.Category{Name: input.Name})
	if err != nil {
		h.respondWithServiceError(w, r, "CreateCategory", err, "Failed to create category")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)

	categories, totalCount, err := h.categoryStore.ListCategories(r.Context(), store.ListCategoriesParams{Limit: limit, Offset: offset})
	if err != nil {
		h.respondWithServiceError(w, r, "ListCategories", err, "Failed to retrieve categories")
		return
	}

	respondWithJSON(w, http.StatusOK, newListResponse(categories, page, limit, totalCount))
}

func (h *HTTPHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId", "category")
	if !ok {
		return
	}

	category, err := h.categoryStore.GetCategoryByID(r.Context(), categoryID)
	if err != nil {
		h.respondWithServiceError(w, r, "GetCategoryByID", err, "Failed to retrieve category")
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId", "category")
	if !ok {
		return
	}

	var input CategoryInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	updated, err := h.categoryStore.UpdateCategory(r.Context(), &domain.Category{ID: categoryID, Name: input.Name})
	if err != nil {
		h.respondWithServiceError(w, r, "UpdateCategory", err, "Failed to update category")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteCategory refuses to delete a category that still has products (409).
func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId", "category")
	if !ok {
		return
	}

	if err := h.categoryStore.DeleteCategory(r.Context(), categoryID); err != nil {
		h.respondWithServiceError(w, r, "DeleteCategory", err, "Failed to delete category")
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
