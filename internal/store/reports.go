package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory-sales-service/internal/domain"
)

// --- ReportStorer Implementation ---

// BestSellers aggregates by product id first and joins afterwards so the query stays
// valid under ONLY_FULL_GROUP_BY. Orders of deleted products are left out.
func (s *Store) BestSellers(ctx context.Context, limit int) ([]domain.BestSeller, error) {
	query := `
		SELECT p.id, p.name, p.image_path, totals.total_quantity_sold, totals.total_sales
		FROM products p
		JOIN (
			SELECT product_id, SUM(quantity_sold) AS total_quantity_sold, SUM(total_price) AS total_sales
			FROM sales_orders
			WHERE product_id IS NOT NULL
			GROUP BY product_id
		) totals ON totals.product_id = p.id
		ORDER BY totals.total_quantity_sold DESC, p.id ASC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, s.q(query), limit)
	if err != nil {
		return nil, fmt.Errorf("store: BestSellers failed to query: %w", err)
	}
	defer rows.Close()

	result := make([]domain.BestSeller, 0, limit)
	for rows.Next() {
		var b domain.BestSeller
		if err := rows.Scan(&b.ProductID, &b.ProductName, &b.ImagePath, &b.TotalQuantitySold, &b.TotalSales); err != nil {
			return nil, fmt.Errorf("store: BestSellers failed to scan row: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: BestSellers iteration error: %w", err)
	}
	return result, nil
}

func (s *Store) LowStock(ctx context.Context, threshold int) ([]domain.LowStockItem, error) {
	query := `
		SELECT id, name, quantity, image_path
		FROM products
		WHERE quantity <= ?
		ORDER BY quantity ASC, name ASC
	`
	rows, err := s.db.QueryContext(ctx, s.q(query), threshold)
	if err != nil {
		return nil, fmt.Errorf("store: LowStock failed to query: %w", err)
	}
	defer rows.Close()

	result := []domain.LowStockItem{}
	for rows.Next() {
		var item domain.LowStockItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.ImagePath); err != nil {
			return nil, fmt.Errorf("store: LowStock failed to scan row: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: LowStock iteration error: %w", err)
	}
	return result, nil
}

// SalesByDay returns one bucket per calendar day that has orders on or after since.
// Days without orders are absent; filling them is up to the caller.
func (s *Store) SalesByDay(ctx context.Context, since time.Time) ([]domain.SalesBucket, error) {
	query := `
		SELECT DATE(order_date) AS order_day,
			COALESCE(SUM(total_price), 0) AS total_sales,
			COALESCE(SUM(quantity_sold), 0) AS total_items_sold
		FROM sales_orders
		WHERE order_date >= ?
		GROUP BY order_day
		ORDER BY order_day
	`
	rows, err := s.db.QueryContext(ctx, s.q(query), since)
	if err != nil {
		return nil, fmt.Errorf("store: SalesByDay failed to query: %w", err)
	}
	defer rows.Close()

	result := []domain.SalesBucket{}
	for rows.Next() {
		var b domain.SalesBucket
		if err := rows.Scan(&b.Start, &b.TotalSales, &b.ItemsSold); err != nil {
			return nil, fmt.Errorf("store: SalesByDay failed to scan row: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: SalesByDay iteration error: %w", err)
	}
	return result, nil
}

// SalesByYear returns one bucket per calendar year that has orders.
func (s *Store) SalesByYear(ctx context.Context) ([]domain.SalesBucket, error) {
	query := `
		SELECT EXTRACT(YEAR FROM order_date) AS order_year,
			COALESCE(SUM(total_price), 0) AS total_sales,
			COALESCE(SUM(quantity_sold), 0) AS total_items_sold
		FROM sales_orders
		WHERE order_date IS NOT NULL
		GROUP BY order_year
		ORDER BY order_year
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: SalesByYear failed to query: %w", err)
	}
	defer rows.Close()

	result := []domain.SalesBucket{}
	for rows.Next() {
		var year int
		var b domain.SalesBucket
		if err := rows.Scan(&year, &b.TotalSales, &b.ItemsSold); err != nil {
			return nil, fmt.Errorf("store: SalesByYear failed to scan row: %w", err)
		}
		b.Start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: SalesByYear iteration error: %w", err)
	}
	return result, nil
}

func (s *Store) StockByCategory(ctx context.Context) ([]domain.CategoryStock, error) {
	query := `
		SELECT c.name AS category_name, SUM(p.quantity) AS total_quantity
		FROM products p
		JOIN categories c ON p.category_id = c.id
		GROUP BY c.name
		ORDER BY c.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: StockByCategory failed to query: %w", err)
	}
	defer rows.Close()

	result := []domain.CategoryStock{}
	for rows.Next() {
		var cs domain.CategoryStock
		if err := rows.Scan(&cs.CategoryName, &cs.TotalQuantity); err != nil {
			return nil, fmt.Errorf("store: StockByCategory failed to scan row: %w", err)
		}
		result = append(result, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: StockByCategory iteration error: %w", err)
	}
	return result, nil
}

// Summary computes the dashboard cards. Sales are summed over [monthStart, monthEnd).
func (s *Store) Summary(ctx context.Context, threshold int, monthStart, monthEnd time.Time) (*domain.DashboardSummary, error) {
	var summary domain.DashboardSummary

	stockQuery := `
		SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(price * quantity), 0)
		FROM products
	`
	if err := s.db.QueryRowContext(ctx, stockQuery).Scan(&summary.TotalQuantity, &summary.InventoryValue); err != nil {
		return nil, fmt.Errorf("store: Summary failed to read stock totals: %w", err)
	}

	salesQuery := `
		SELECT COALESCE(SUM(total_price), 0)
		FROM sales_orders
		WHERE order_date >= ? AND order_date < ?
	`
	if err := s.db.QueryRowContext(ctx, s.q(salesQuery), monthStart, monthEnd).Scan(&summary.SalesThisMonth); err != nil {
		return nil, fmt.Errorf("store: Summary failed to read monthly sales: %w", err)
	}

	lowStockQuery := `SELECT COUNT(*) FROM products WHERE quantity <= ?`
	if err := s.db.QueryRowContext(ctx, s.q(lowStockQuery), threshold).Scan(&summary.LowStockCount); err != nil {
		return nil, fmt.Errorf("store: Summary failed to count low stock products: %w", err)
	}

	return &summary, nil
}

func (s *Store) ProductReport(ctx context.Context, params ProductReportParams) ([]domain.ProductReportRow, error) {
	var conditions []string
	var args []any
	if params.CategoryName != nil {
		conditions = append(conditions, "c.name = ?")
		args = append(args, *params.CategoryName)
	}
	if len(params.ProductIDs) > 0 {
		conditions = append(conditions, "p.id IN ("+placeholders(len(params.ProductIDs))+")")
		for _, id := range params.ProductIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT p.id, p.name, c.name, p.quantity, p.price
		FROM products p
		JOIN categories c ON p.category_id = c.id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.id ASC"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: ProductReport failed to query: %w", err)
	}
	defer rows.Close()

	result := []domain.ProductReportRow{}
	for rows.Next() {
		var r domain.ProductReportRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.Quantity, &r.Price); err != nil {
			return nil, fmt.Errorf("store: ProductReport failed to scan row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ProductReport iteration error: %w", err)
	}
	return result, nil
}

// SalesReport lists orders newest first using the name stored at sale time, so orders of
// deleted products are still exported.
func (s *Store) SalesReport(ctx context.Context, params SalesReportParams) ([]domain.SalesReportRow, error) {
	var conditions []string
	var args []any
	if len(params.Years) > 0 {
		conditions = append(conditions, "EXTRACT(YEAR FROM order_date) IN ("+placeholders(len(params.Years))+")")
		for _, y := range params.Years {
			args = append(args, y)
		}
	}
	if len(params.OrderIDs) > 0 {
		conditions = append(conditions, "id IN ("+placeholders(len(params.OrderIDs))+")")
		for _, id := range params.OrderIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT id, sales_id, product_name, quantity_sold, total_price, order_date
		FROM sales_orders
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY order_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: SalesReport failed to query: %w", err)
	}
	defer rows.Close()

	result := []domain.SalesReportRow{}
	for rows.Next() {
		var r domain.SalesReportRow
		if err := rows.Scan(&r.OrderID, &r.SalesID, &r.ProductName, &r.QuantitySold, &r.TotalPrice, &r.OrderDate); err != nil {
			return nil, fmt.Errorf("store: SalesReport failed to scan row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: SalesReport iteration error: %w", err)
	}
	return result, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
