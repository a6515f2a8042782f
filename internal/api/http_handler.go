package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/inventory"
	"inventory-sales-service/internal/report"
	"inventory-sales-service/internal/store"
)

// InventoryService is the write side for orders and stock levels.
type InventoryService interface {
	AdjustStock(ctx context.Context, productID int64, delta int) (int, error)
	CreateOrder(ctx context.Context, in inventory.CreateOrderInput) (*domain.SalesOrder, error)
	UpdateOrder(ctx context.Context, orderID int64, in inventory.UpdateOrderInput) (*domain.SalesOrder, error)
	DeleteOrder(ctx context.Context, orderID int64) error
}

// ReportService serves the dashboard widgets and export rows.
type ReportService interface {
	BestSellers(ctx context.Context) ([]domain.BestSeller, error)
	LowStock(ctx context.Context) ([]domain.LowStockItem, error)
	SalesTrend(ctx context.Context, r report.Range) ([]domain.TrendPoint, error)
	StockByCategory(ctx context.Context) ([]domain.CategoryStock, error)
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
	ProductReport(ctx context.Context, params store.ProductReportParams) ([]domain.ProductReportRow, error)
	SalesReport(ctx context.Context, params store.SalesReportParams) ([]domain.SalesReportRow, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups what the HTTP handlers need. Logger may be nil.
type Dependencies struct {
	Categories store.CategoryStorer
	Products   store.ProductStorer
	Orders     store.OrderStorer
	Inventory  InventoryService
	Reports    ReportService
	DB         Pinger
	Logger     *zap.Logger
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	categoryStore store.CategoryStorer
	productStore  store.ProductStorer
	orderStore    store.OrderStorer
	inventory     InventoryService
	reports       ReportService
	db            Pinger
	logger        *zap.Logger
	validate      *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(deps Dependencies) *HTTPHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		categoryStore: deps.Categories,
		productStore:  deps.Products,
		orderStore:    deps.Orders,
		inventory:     deps.Inventory,
		reports:       deps.Reports,
		db:            deps.DB,
		logger:        logger,
		validate:      validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by writes that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// Pagination matches the pagination block of every list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ListResponse wraps one page of results.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newListResponse[T any](data []T, page, limit, totalCount int) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}
	return ListResponse[T]{
		Data: data,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: totalCount,
			TotalPages: totalPages,
		},
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// Headers are already written; all that is left is to record the failure.
			zap.L().Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

// statusFor maps domain errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrInvalidOrder),
		errors.Is(err, inventory.ErrInvalidAdjustment),
		errors.Is(err, report.ErrUnknownRange):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrOrphanedReference),
		errors.Is(err, store.ErrCategoryNameExists),
		errors.Is(err, store.ErrCategoryInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes err as a JSON error. Business errors are echoed to the
// client; storage errors are logged and replaced by fallback.
func (h *HTTPHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, op string, err error, fallback string) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
		respondWithError(w, status, fallback)
		return
	}
	h.logger.Info("request rejected", append(fields, zap.Int("status", status))...)
	respondWithError(w, status, clientMessage(err))
}

var errorPrefixes = []string{"store: ", "inventory: ", "report: "}

// clientMessage drops the package prefix of a domain error and capitalizes the rest.
func clientMessage(err error) string {
	msg := err.Error()
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(msg, prefix) {
			msg = msg[len(prefix):]
			break
		}
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, input interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// pathID parses a positive numeric URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid "+label+" ID format")
		return 0, false
	}
	return id, true
}

// pageParams reads page and limit with the usual defaults (page 1, 10 per page, at most 100).
func pageParams(r *http.Request) (page, limit, offset int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}
	if limit > 100 { // Max limit
		limit = 100
	}
	page, err = strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1 // Default page
	}
	return page, limit, (page - 1) * limit
}

// splitList parses a comma separated query value ("1,2,3") with parse.
func splitList[T any](raw string, parse func(string) (T, error)) ([]T, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]T, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := parse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parsePositiveID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id " + strconv.Quote(s))
	}
	return id, nil
}

// Healthz reports liveness and database reachability.
func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check: database unreachable", zap.Error(err))
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service. writeLimit, when not nil, wraps
// every mutating route.
func (h *HTTPHandler) RegisterRoutes(r chi.Router, writeLimit func(http.Handler) http.Handler) {
	if writeLimit == nil {
		writeLimit = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/api/v1/healthz", h.Healthz)

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.With(writeLimit).Post("/", h.CreateCategory)
		r.Route("/{categoryId}", func(r chi.Router) {
			r.Get("/", h.GetCategoryByID)
			r.With(writeLimit).Put("/", h.UpdateCategory)
			r.With(writeLimit).Delete("/", h.DeleteCategory)
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.With(writeLimit).Post("/", h.CreateProduct)
		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)
			r.With(writeLimit).Put("/", h.UpdateProduct)
			r.With(writeLimit).Delete("/", h.DeleteProduct)
			r.With(writeLimit).Post("/stock-adjustments", h.AdjustStock)
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.With(writeLimit).Post("/", h.CreateOrder)
		r.Route("/{orderId}", func(r chi.Router) {
			r.Get("/", h.GetOrderByID)
			r.With(writeLimit).Put("/", h.UpdateOrder)
			r.With(writeLimit).Delete("/", h.DeleteOrder)
		})
	})

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/bestsellers", h.BestSellers)
		r.Get("/lowstock", h.LowStock)
		r.Get("/sales-trend", h.SalesTrend)
		r.Get("/stock-by-category", h.StockByCategory)
		r.Get("/summary", h.Summary)
		r.Get("/products", h.ProductReport)
		r.Get("/sales", h.SalesReport)
	})
}
