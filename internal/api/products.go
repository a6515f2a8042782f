package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/store"
)

// --- Product Handlers ---

// ProductInput defines the expected input for creating or updating a product.
// The category is given by name, as the dashboard does, or by id.
type ProductInput struct {
	Name       string           `json:"name" validate:"required,max=255"`
	Category   string           `json:"category" validate:"required_without=CategoryID,max=255"`
	CategoryID *int64           `json:"category_id" validate:"omitempty,gt=0"`
	Quantity   *int             `json:"quantity" validate:"required,gte=0"`
	Price      *decimal.Decimal `json:"price" validate:"required"`
	ImagePath  *string          `json:"image_path" validate:"omitempty,max=2048"` // nil keeps the current image on update
}

// StockAdjustmentInput is a signed change to a product's stock.
type StockAdjustmentInput struct {
	Delta int `json:"delta" validate:"required"`
}

// StockAdjustmentResponse reports the stock level after an adjustment.
type StockAdjustmentResponse struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

var allowedProductSortFields = map[string]bool{"id": true, "name": true, "price": true, "quantity": true, "": true} // "" for default

// productFromInput resolves the category and builds the product to store. It writes the
// error response itself and reports whether the caller may continue.
func (h *HTTPHandler) productFromInput(w http.ResponseWriter, r *http.Request, input ProductInput) (*domain.Product, bool) {
	if input.Price.IsNegative() {
		respondWithError(w, http.StatusBadRequest, "Validation failed: price cannot be negative")
		return nil, false
	}

	categoryID := int64(0)
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
	} else {
		category, err := h.categoryStore.GetCategoryByName(r.Context(), input.Category)
		if err != nil {
			if errors.Is(err, store.ErrCategoryNotFound) {
				respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid category: %q does not exist.", input.Category))
			} else {
				h.respondWithServiceError(w, r, "GetCategoryByName", err, "Failed to resolve category")
			}
			return nil, false
		}
		categoryID = category.ID
	}

	return &domain.Product{
		Name:       input.Name,
		CategoryID: categoryID,
		Quantity:   *input.Quantity,
		Price:      *input.Price,
		ImagePath:  input.ImagePath,
	}, true
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	product, ok := h.productFromInput(w, r, input)
	if !ok {
		return
	}

	created, err := h.productStore.CreateProduct(r.Context(), product)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) { // If category_id FK fails
			respondWithError(w, http.StatusBadRequest, "Invalid category_id: category does not exist.")
			return
		}
		h.respondWithServiceError(w, r, "CreateProduct", err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()
	page, limit, offset := pageParams(r)

	params := store.ListProductsParams{Limit: limit, Offset: offset}

	if q := qParams.Get("q"); q != "" {
		params.SearchQuery = &q
	}
	if idStr := qParams.Get("category_id"); idStr != "" {
		id, err := parsePositiveID(idStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid category_id format")
			return
		}
		params.CategoryID = &id
	}

	params.SortBy = strings.ToLower(qParams.Get("sort_by"))
	params.SortOrder = strings.ToLower(qParams.Get("sort_order"))
	if !allowedProductSortFields[params.SortBy] {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid sort_by field. Allowed: %v", getMapKeys(allowedProductSortFields)))
		return
	}
	if params.SortOrder != "" && params.SortOrder != "asc" && params.SortOrder != "desc" {
		respondWithError(w, http.StatusBadRequest, "Invalid sort_order value. Allowed: asc, desc")
		return
	}

	products, totalCount, err := h.productStore.ListProducts(r.Context(), params)
	if err != nil {
		h.respondWithServiceError(w, r, "ListProducts", err, "Failed to retrieve products")
		return
	}

	respondWithJSON(w, http.StatusOK, newListResponse(products, page, limit, totalCount))
}

// Helper to get keys from a map for error messages
func getMapKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "" { // Don't list empty string default in error message
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", "product")
	if !ok {
		return
	}

	product, err := h.productStore.GetProductByID(r.Context(), productID)
	if err != nil {
		h.respondWithServiceError(w, r, "GetProductByID", err, "Failed to retrieve product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// UpdateProduct replaces the product's fields. Setting quantity here is a direct admin
// edit; it does not touch any order.
func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", "product")
	if !ok {
		return
	}

	var input ProductInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	// Existence check first so an unknown product is a 404 rather than a silent no-op.
	if _, err := h.productStore.GetProductByID(r.Context(), productID); err != nil {
		h.respondWithServiceError(w, r, "GetProductByID", err, "Error checking product existence")
		return
	}

	product, ok := h.productFromInput(w, r, input)
	if !ok {
		return
	}
	product.ID = productID

	updated, err := h.productStore.UpdateProduct(r.Context(), product)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			respondWithError(w, http.StatusBadRequest, "Invalid category_id: category does not exist.")
			return
		}
		h.respondWithServiceError(w, r, "UpdateProduct", err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteProduct removes the product. Its orders stay, detached from it.
func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", "product")
	if !ok {
		return
	}

	if err := h.productStore.DeleteProduct(r.Context(), productID); err != nil {
		h.respondWithServiceError(w, r, "DeleteProduct", err, "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

// AdjustStock restocks (positive delta) or writes off (negative delta) a product.
func (h *HTTPHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", "product")
	if !ok {
		return
	}

	var input StockAdjustmentInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	quantity, err := h.inventory.AdjustStock(r.Context(), productID, input.Delta)
	if err != nil {
		h.respondWithServiceError(w, r, "AdjustStock", err, "Failed to adjust stock")
		return
	}

	respondWithJSON(w, http.StatusOK, StockAdjustmentResponse{ProductID: productID, Quantity: quantity})
}
