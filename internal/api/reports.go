package api

import (
	"net/http"
	"strconv"

	"inventory-sales-service/internal/report"
	"inventory-sales-service/internal/store"
)

// --- Report Handlers ---

func (h *HTTPHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.BestSellers(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, "BestSellers", err, "Failed to retrieve best sellers")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.LowStock(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, "LowStock", err, "Failed to retrieve low stock products")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SalesTrend takes ?range=7d|30d|90d|this_year, defaulting to 90d.
func (h *HTTPHandler) SalesTrend(w http.ResponseWriter, r *http.Request) {
	rng, err := report.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, clientMessage(err))
		return
	}

	result, err := h.reports.SalesTrend(r.Context(), rng)
	if err != nil {
		h.respondWithServiceError(w, r, "SalesTrend", err, "Failed to retrieve sales trend")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) StockByCategory(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.StockByCategory(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, "StockByCategory", err, "Failed to retrieve stock by category")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.Summary(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, "Summary", err, "Failed to retrieve dashboard summary")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ProductReport takes optional ?category=<name>&product_ids=1,2,3.
func (h *HTTPHandler) ProductReport(w http.ResponseWriter, r *http.Request) {
	var params store.ProductReportParams
	if c := r.URL.Query().Get("category"); c != "" {
		params.CategoryName = &c
	}
	ids, err := splitList(r.URL.Query().Get("product_ids"), parsePositiveID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product_ids: "+err.Error())
		return
	}
	params.ProductIDs = ids

	result, err := h.reports.ProductReport(r.Context(), params)
	if err != nil {
		h.respondWithServiceError(w, r, "ProductReport", err, "Failed to build product report")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SalesReport takes optional ?years=2024,2025&order_ids=1,2.
func (h *HTTPHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	years, err := splitList(r.URL.Query().Get("years"), parseYear)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid years: "+err.Error())
		return
	}
	ids, err := splitList(r.URL.Query().Get("order_ids"), parsePositiveID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order_ids: "+err.Error())
		return
	}

	result, err := h.reports.SalesReport(r.Context(), store.SalesReportParams{Years: years, OrderIDs: ids})
	if err != nil {
		h.respondWithServiceError(w, r, "SalesReport", err, "Failed to build sales report")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 || y > 9999 {
		return 0, strconv.ErrSyntax
	}
	return y, nil
}
