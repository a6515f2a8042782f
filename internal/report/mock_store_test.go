package report

import (
	"context"
	"time"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/store"

	"github.com/stretchr/testify/mock"
)

// MockReportStorer is a mock implementation of store.ReportStorer
type MockReportStorer struct {
	mock.Mock
}

func (m *MockReportStorer) BestSellers(ctx context.Context, limit int) ([]domain.BestSeller, error) {
	args := m.Called(ctx, limit)
	var result []domain.BestSeller
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.BestSeller)
	}
	return result, args.Error(1)
}

func (m *MockReportStorer) LowStock(ctx context.Context, threshold int) ([]domain.LowStockItem, error) {
	args := m.Called(ctx, threshold)
	var result []domain.LowStockItem
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.LowStockItem)
	}
	return result, args.Error(1)
}

func (m *MockReportStorer) SalesByDay(ctx context.Context, since time.Time) ([]domain.SalesBucket, error) {
	args := m.Called(ctx, since)
	var result []domain.SalesBucket
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.SalesBucket)
	}
	return result, args.Error(1)
}

func (m *MockReportStorer) SalesByYear(ctx context.Context) ([]domain.SalesBucket, error) {
	args := m.Called(ctx)
	var result []domain.SalesBucket
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.SalesBucket)
	}
	return result, args.Error(1)
}

func (m *MockReportStorer) StockByCategory(ctx context.Context) ([]domain.CategoryStock, error) {
	args := m.Called(ctx)
	var result []domain.CategoryStock
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.CategoryStock)
	}
	return result, args.Error(1)
}

func (m *MockReportStorer) Summary(ctx context.Context, threshold int, monthStart, monthEnd time.Time) (*domain.DashboardSummary, error) {
	args := m.Called(ctx, threshold, monthStart, monthEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardSummary), args.Error(1)
}

func (m *MockReportStorer) ProductReport(ctx context.Context, params store.ProductReportParams) ([]domain.ProductReportRow, error) {
	args := m.Called(ctx, params)
	var result []domain.ProductReportRow
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.ProductReportRow)
	}
	return result, args.Error(1)
}

func (m *MockReportStorer) SalesReport(ctx context.Context, params store.SalesReportParams) ([]domain.SalesReportRow, error) {
	args := m.Called(ctx, params)
	var result []domain.SalesReportRow
	if arg0 := args.Get(0); arg0 != nil {
		result = arg0.([]domain.SalesReportRow)
	}
	return result, args.Error(1)
}
