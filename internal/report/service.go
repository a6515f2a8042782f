// Package report builds the dashboard widgets and export rows from read-only store
// aggregates.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/store"
)

var ErrUnknownRange = errors.New("report: unknown sales trend range")

// Range selects the window of the sales trend.
type Range string

const (
	Range7Days    Range = "7d"
	Range30Days   Range = "30d"
	Range90Days   Range = "90d"
	RangeThisYear Range = "this_year"

	DefaultRange = Range90Days
)

var rangeDays = map[Range]int{
	Range7Days:  7,
	Range30Days: 30,
	Range90Days: 90,
}

const (
	DefaultLowStockThreshold = 10
	bestSellerLimit          = 5

	dayLayout  = "2006-01-02"
	yearLayout = "2006"
)

// ParseRange accepts the range names used by the dashboard. An empty string selects
// DefaultRange.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return DefaultRange, nil
	}
	if _, ok := rangeDays[r]; ok || r == RangeThisYear {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q (use 7d, 30d, 90d or this_year)", ErrUnknownRange, s)
}

// Service answers the reporting queries.
type Service struct {
	store             store.ReportStorer
	lowStockThreshold int
	now               func() time.Time
}

type Option func(*Service)

// WithLowStockThreshold sets the inclusive quantity at or below which a product counts as
// low on stock.
func WithLowStockThreshold(threshold int) Option {
	return func(s *Service) { s.lowStockThreshold = threshold }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(s store.ReportStorer, opts ...Option) *Service {
	svc := &Service{
		store:             s,
		lowStockThreshold: DefaultLowStockThreshold,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) BestSellers(ctx context.Context) ([]domain.BestSeller, error) {
	return s.store.BestSellers(ctx, bestSellerLimit)
}

func (s *Service) LowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	return s.store.LowStock(ctx, s.lowStockThreshold)
}

func (s *Service) StockByCategory(ctx context.Context) ([]domain.CategoryStock, error) {
	return s.store.StockByCategory(ctx)
}

// Summary reports sales for the current calendar month (UTC).
func (s *Service) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	today := s.today()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.store.Summary(ctx, s.lowStockThreshold, monthStart, monthStart.AddDate(0, 1, 0))
}

func (s *Service) ProductReport(ctx context.Context, params store.ProductReportParams) ([]domain.ProductReportRow, error) {
	return s.store.ProductReport(ctx, params)
}

func (s *Service) SalesReport(ctx context.Context, params store.SalesReportParams) ([]domain.SalesReportRow, error) {
	return s.store.SalesReport(ctx, params)
}

// SalesTrend returns a gap-free series for the range. Day ranges always hold exactly one
// point per day ending today; this_year holds one point per year from the first year
// with orders to the current one.
func (s *Service) SalesTrend(ctx context.Context, r Range) ([]domain.TrendPoint, error) {
	if r == RangeThisYear {
		return s.yearlyTrend(ctx)
	}
	days, ok := rangeDays[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRange, r)
	}
	return s.dailyTrend(ctx, days)
}

func (s *Service) dailyTrend(ctx context.Context, days int) ([]domain.TrendPoint, error) {
	today := s.today()
	start := today.AddDate(0, 0, -(days - 1))

	buckets, err := s.store.SalesByDay(ctx, start)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]domain.SalesBucket, len(buckets))
	for _, b := range buckets {
		byDay[b.Start.Format(dayLayout)] = b
	}

	points := make([]domain.TrendPoint, 0, days)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		points = append(points, point(key, byDay[key]))
	}
	return points, nil
}

func (s *Service) yearlyTrend(ctx context.Context) ([]domain.TrendPoint, error) {
	buckets, err := s.store.SalesByYear(ctx)
	if err != nil {
		return nil, err
	}

	// Orders dated after the current year fall outside the series, as in dailyTrend.
	first, last := s.today().Year(), s.today().Year()
	byYear := make(map[int]domain.SalesBucket, len(buckets))
	for _, b := range buckets {
		y := b.Start.Year()
		byYear[y] = b
		if y < first {
			first = y
		}
	}

	points := make([]domain.TrendPoint, 0, last-first+1)
	for y := first; y <= last; y++ {
		label := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Format(yearLayout)
		points = append(points, point(label, byYear[y]))
	}
	return points, nil
}

// point converts a bucket; a missing bucket yields zero sums.
func point(period string, b domain.SalesBucket) domain.TrendPoint {
	return domain.TrendPoint{Period: period, TotalSales: b.TotalSales, ItemsSold: b.ItemsSold}
}
