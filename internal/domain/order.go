package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder is a single sale of one product.
//
// ProductNameAtSale is captured when the order is written and is not kept in sync with
// later renames. CurrentProductName is the product's live name, joined in on every read;
// it is nil when the product has since been deleted (ProductID is nil too in that case).
type SalesOrder struct {
	ID                 int64           `json:"id"`
	SalesID            string          `json:"sales_id"`
	ProductID          *int64          `json:"product_id"`
	ProductNameAtSale  string          `json:"product_name_at_sale"`
	CurrentProductName *string         `json:"current_product_name"`
	QuantitySold       int             `json:"quantity_sold"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	OrderDate          time.Time       `json:"order_date"`
}

// IsOrphaned reports whether the product the order was placed against no longer exists.
func (o *SalesOrder) IsOrphaned() bool {
	return o.ProductID == nil
}
