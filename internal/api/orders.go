package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/inventory"
	"inventory-sales-service/internal/store"
)

// --- Sales Order Handlers ---

// OrderInput defines the expected input for creating or updating a sales order.
// OrderDate accepts RFC 3339, "2006-01-02 15:04:05" or "2006-01-02"; it is optional on
// create (defaults to now) and required on update.
type OrderInput struct {
	ProductID    int64            `json:"product_id" validate:"required,gt=0"`
	QuantitySold int              `json:"quantity_sold" validate:"required,gt=0"`
	TotalPrice   *decimal.Decimal `json:"total_price" validate:"required"`
	OrderDate    *string          `json:"order_date" validate:"omitempty"`
}

// OrderUpdateResponse is returned by a successful update.
type OrderUpdateResponse struct {
	Message string             `json:"message"`
	Order   *domain.SalesOrder `json:"order"`
}

var orderDateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseOrderDate(s string) (time.Time, error) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid order_date %q", s)
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input OrderInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	in := inventory.CreateOrderInput{
		ProductID:    input.ProductID,
		QuantitySold: input.QuantitySold,
		TotalPrice:   *input.TotalPrice,
	}
	if input.OrderDate != nil && *input.OrderDate != "" {
		date, err := parseOrderDate(*input.OrderDate)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
			return
		}
		in.OrderDate = &date
	}

	order, err := h.inventory.CreateOrder(r.Context(), in)
	if err != nil {
		h.respondWithServiceError(w, r, "CreateOrder", err, "Failed to create sales order")
		return
	}

	respondWithJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	params := store.ListOrdersParams{Limit: limit, Offset: offset}

	if idStr := r.URL.Query().Get("product_id"); idStr != "" {
		id, err := parsePositiveID(idStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid product_id format")
			return
		}
		params.ProductID = &id
	}

	orders, totalCount, err := h.orderStore.ListOrders(r.Context(), params)
	if err != nil {
		h.respondWithServiceError(w, r, "ListOrders", err, "Failed to retrieve sales orders")
		return
	}

	respondWithJSON(w, http.StatusOK, newListResponse(orders, page, limit, totalCount))
}

func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderId", "order")
	if !ok {
		return
	}

	order, err := h.orderStore.GetOrderByID(r.Context(), orderID)
	if err != nil {
		h.respondWithServiceError(w, r, "GetOrderByID", err, "Failed to retrieve sales order")
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderId", "order")
	if !ok {
		return
	}

	var input OrderInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	if input.OrderDate == nil || *input.OrderDate == "" {
		respondWithError(w, http.StatusBadRequest, "Validation failed: order_date is required")
		return
	}
	date, err := parseOrderDate(*input.OrderDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	order, err := h.inventory.UpdateOrder(r.Context(), orderID, inventory.UpdateOrderInput{
		ProductID:    input.ProductID,
		QuantitySold: input.QuantitySold,
		TotalPrice:   *input.TotalPrice,
		OrderDate:    date,
	})
	if err != nil {
		h.respondWithServiceError(w, r, "UpdateOrder", err, "Failed to update sales order")
		return
	}

	respondWithJSON(w, http.StatusOK, OrderUpdateResponse{Message: "Sales order updated successfully.", Order: order})
}

func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "orderId", "order")
	if !ok {
		return
	}

	if err := h.inventory.DeleteOrder(r.Context(), orderID); err != nil {
		h.respondWithServiceError(w, r, "DeleteOrder", err, "Failed to delete sales order")
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Sales order deleted successfully."})
}
