package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BestSeller is one row of the best-selling products widget.
type BestSeller struct {
	ProductID         int64           `json:"id"`
	ProductName       string          `json:"product_name"`
	ImagePath         *string         `json:"image_path"`
	TotalQuantitySold int             `json:"total_quantity_sold"`
	TotalSales        decimal.Decimal `json:"total_sales"`
}

// LowStockItem is a product at or below the low stock threshold.
type LowStockItem struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	ImagePath *string `json:"image_path"`
}

// SalesBucket is the raw aggregate for one period as read from the store.
// Start is the first instant of the bucket (midnight for days, January 1st for years).
type SalesBucket struct {
	Start      time.Time
	TotalSales decimal.Decimal
	ItemsSold  int
}

// TrendPoint is one entry of the sales trend series returned to clients.
type TrendPoint struct {
	Period     string          `json:"order_day"`
	TotalSales decimal.Decimal `json:"total_sales"`
	ItemsSold  int             `json:"items_sold"`
}

// CategoryStock is the summed stock level of one category.
type CategoryStock struct {
	CategoryName  string `json:"category_name"`
	TotalQuantity int    `json:"total_quantity"`
}

// DashboardSummary holds the headline numbers shown on the dashboard cards.
type DashboardSummary struct {
	TotalQuantity  int             `json:"total_quantity"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	SalesThisMonth decimal.Decimal `json:"sales_this_month"`
	LowStockCount  int             `json:"low_stock_count"`
}

// ProductReportRow is one line of the product export.
type ProductReportRow struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// SalesReportRow is one line of the sales export.
type SalesReportRow struct {
	OrderID      int64           `json:"order_id"`
	SalesID      string          `json:"sales_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	OrderDate    time.Time       `json:"order_date"`
}
