package store

import (
	"context"
	"time"

	"inventory-sales-service/internal/domain"
)

// ListCategoriesParams holds parameters for listing categories (e.g., for pagination).
type ListCategoriesParams struct {
	Limit  int
	Offset int
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error) // Returns categories and total count for pagination
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// ListProductsParams holds parameters for listing products (for pagination, filtering, sorting).
type ListProductsParams struct {
	Limit       int
	Offset      int
	SearchQuery *string // Matched against the product name
	CategoryID  *int64
	SortBy      string // "name", "price", "quantity" or "id"
	SortOrder   string // "asc" or "desc"
}

// ProductStorer defines the database operations for products.
// UpdateProduct sets the quantity directly; stock changes driven by orders go through
// the inventory service instead.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ListOrdersParams holds parameters for listing sales orders.
type ListOrdersParams struct {
	Limit     int
	Offset    int
	ProductID *int64
}

// OrderStorer defines the read side of sales orders.
type OrderStorer interface {
	ListOrders(ctx context.Context, params ListOrdersParams) ([]domain.SalesOrder, int, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.SalesOrder, error)
}

// OrderTx is the set of statements available inside an order transaction.
// The ForUpdate reads take row locks that are held until the transaction ends.
type OrderTx interface {
	GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	SetProductQuantity(ctx context.Context, id int64, quantity int) error
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.SalesOrder, error)
	GetOrder(ctx context.Context, id int64) (*domain.SalesOrder, error)
	SalesIDExists(ctx context.Context, salesID string) (bool, error)
	InsertOrder(ctx context.Context, order *domain.SalesOrder) (int64, error)
	UpdateOrder(ctx context.Context, order *domain.SalesOrder) error
	DeleteOrder(ctx context.Context, id int64) error
}

// TxRunner runs fn inside one transaction, committing only when fn returns nil.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx OrderTx) error) error
}

// ProductReportParams filters the product export.
type ProductReportParams struct {
	CategoryName *string
	ProductIDs   []int64
}

// SalesReportParams filters the sales export.
type SalesReportParams struct {
	Years    []int
	OrderIDs []int64
}

// ReportStorer defines the read-only aggregate queries behind the dashboard.
type ReportStorer interface {
	BestSellers(ctx context.Context, limit int) ([]domain.BestSeller, error)
	LowStock(ctx context.Context, threshold int) ([]domain.LowStockItem, error)
	SalesByDay(ctx context.Context, since time.Time) ([]domain.SalesBucket, error)
	SalesByYear(ctx context.Context) ([]domain.SalesBucket, error)
	StockByCategory(ctx context.Context) ([]domain.CategoryStock, error)
	Summary(ctx context.Context, threshold int, monthStart, monthEnd time.Time) (*domain.DashboardSummary, error)
	ProductReport(ctx context.Context, params ProductReportParams) ([]domain.ProductReportRow, error)
	SalesReport(ctx context.Context, params SalesReportParams) ([]domain.SalesReportRow, error)
}
