package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/inventory"
	"inventory-sales-service/internal/report"
	"inventory-sales-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// MockCategoryStorer is a mock implementation of store.CategoryStorer
type MockCategoryStorer struct {
	mock.Mock
}

func (m *MockCategoryStorer) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) ListCategories(ctx context.Context, params store.ListCategoriesParams) ([]domain.Category, int, error) {
	args := m.Called(ctx, params)
	var categories []domain.Category
	if arg0 := args.Get(0); arg0 != nil {
		categories = arg0.([]domain.Category)
	}
	return categories, args.Int(1), args.Error(2)
}

func (m *MockCategoryStorer) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) DeleteCategory(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductStorer is a mock implementation of store.ProductStorer
type MockProductStorer struct {
	mock.Mock
}

func (m *MockProductStorer) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductStorer) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductStorer) ListProducts(ctx context.Context, params store.ListProductsParams) ([]domain.Product, int, error) {
	args := m.Called(ctx, params)
	var products []domain.Product
	if arg0 := args.Get(0); arg0 != nil {
		products = arg0.([]domain.Product)
	}
	return products, args.Int(1), args.Error(2)
}

func (m *MockProductStorer) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductStorer) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderStorer is a mock implementation of store.OrderStorer
type MockOrderStorer struct {
	mock.Mock
}

func (m *MockOrderStorer) ListOrders(ctx context.Context, params store.ListOrdersParams) ([]domain.SalesOrder, int, error) {
	args := m.Called(ctx, params)
	var orders []domain.SalesOrder
	if arg0 := args.Get(0); arg0 != nil {
		orders = arg0.([]domain.SalesOrder)
	}
	return orders, args.Int(1), args.Error(2)
}

func (m *MockOrderStorer) GetOrderByID(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrder), args.Error(1)
}

// MockInventoryService is a mock implementation of InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) AdjustStock(ctx context.Context, productID int64, delta int) (int, error) {
	args := m.Called(ctx, productID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryService) CreateOrder(ctx context.Context, in inventory.CreateOrderInput) (*domain.SalesOrder, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrder), args.Error(1)
}

func (m *MockInventoryService) UpdateOrder(ctx context.Context, orderID int64, in inventory.UpdateOrderInput) (*domain.SalesOrder, error) {
	args := m.Called(ctx, orderID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrder), args.Error(1)
}

func (m *MockInventoryService) DeleteOrder(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) BestSellers(ctx context.Context) ([]domain.BestSeller, error) {
	args := m.Called(ctx)
	var result []domain.BestSeller
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.BestSeller)
	}
	return result, args.Error(1)
}

func (m *MockReportService) LowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	args := m.Called(ctx)
	var result []domain.LowStockItem
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.LowStockItem)
	}
	return result, args.Error(1)
}

func (m *MockReportService) SalesTrend(ctx context.Context, r report.Range) ([]domain.TrendPoint, error) {
	args := m.Called(ctx, r)
	var result []domain.TrendPoint
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.TrendPoint)
	}
	return result, args.Error(1)
}

func (m *MockReportService) StockByCategory(ctx context.Context) ([]domain.CategoryStock, error) {
	args := m.Called(ctx)
	var result []domain.CategoryStock
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.CategoryStock)
	}
	return result, args.Error(1)
}

func (m *MockReportService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardSummary), args.Error(1)
}

func (m *MockReportService) ProductReport(ctx context.Context, params store.ProductReportParams) ([]domain.ProductReportRow, error) {
	args := m.Called(ctx, params)
	var result []domain.ProductReportRow
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.ProductReportRow)
	}
	return result, args.Error(1)
}

func (m *MockReportService) SalesReport(ctx context.Context, params store.SalesReportParams) ([]domain.SalesReportRow, error) {
	args := m.Called(ctx, params)
	var result []domain.SalesReportRow
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.SalesReportRow)
	}
	return result, args.Error(1)
}

// testMocks bundles the mocks behind one test server.
type testMocks struct {
	categories *MockCategoryStorer
	products   *MockProductStorer
	orders     *MockOrderStorer
	inventory  *MockInventoryService
	reports    *MockReportService
}

func (m *testMocks) assertExpectations(t *testing.T) {
	m.categories.AssertExpectations(t)
	m.products.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.inventory.AssertExpectations(t)
	m.reports.AssertExpectations(t)
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T) (*httptest.Server, *testMocks) {
	t.Helper()
	mocks := &testMocks{
		categories: new(MockCategoryStorer),
		products:   new(MockProductStorer),
		orders:     new(MockOrderStorer),
		inventory:  new(MockInventoryService),
		reports:    new(MockReportService),
	}
	handler := NewHTTPHandler(Dependencies{
		Categories: mocks.categories,
		Products:   mocks.products,
		Orders:     mocks.orders,
		Inventory:  mocks.inventory,
		Reports:    mocks.reports,
	})
	router := chi.NewRouter()
	handler.RegisterRoutes(router, nil)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, mocks
}

// Helper function to get a pointer (useful for optional fields in domain structs)
func PtrTo[T any](v T) *T {
	return &v
}
