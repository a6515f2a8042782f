// Package inventory keeps product stock consistent with the sales orders placed against it.
//
// Every stock change caused by an order goes through adjust, inside the same transaction
// as the order row it belongs to.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-sales-service/internal/domain"
	"inventory-sales-service/internal/store"
)

var (
	ErrInvalidOrder      = errors.New("inventory: invalid order")
	ErrInvalidAdjustment = errors.New("inventory: invalid stock adjustment")
	ErrSalesIDExhausted  = errors.New("inventory: could not allocate a unique sales id")
	ErrUnknownPolicy     = errors.New("inventory: unknown orphaned order policy")
)

// OrphanPolicy decides what happens when an order is updated or deleted after its
// product was removed.
type OrphanPolicy string

const (
	// OrphanSkip skips the stock revert and lets the operation continue.
	OrphanSkip OrphanPolicy = "skip"
	// OrphanFail rejects the operation with store.ErrOrphanedReference.
	OrphanFail OrphanPolicy = "fail"
)

// ParseOrphanPolicy validates a policy name from configuration.
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch p := OrphanPolicy(s); p {
	case OrphanSkip, OrphanFail:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// CreateOrderInput holds the fields of a new order. A nil OrderDate means now; dates are
// stored in UTC.
type CreateOrderInput struct {
	ProductID    int64
	QuantitySold int
	TotalPrice   decimal.Decimal
	OrderDate    *time.Time
}

// UpdateOrderInput replaces every editable field of an order.
type UpdateOrderInput struct {
	ProductID    int64
	QuantitySold int
	TotalPrice   decimal.Decimal
	OrderDate    time.Time
}

// Service runs order writes and stock adjustments as single transactions.
type Service struct {
	tx            store.TxRunner
	logger        *zap.Logger
	orphanPolicy  OrphanPolicy
	salesIDPrefix string
	now           func() time.Time
	newCode       func(length int) (string, error)
}

// Option configures a Service.
type Option func(*Service)

func WithOrphanPolicy(p OrphanPolicy) Option {
	return func(s *Service) { s.orphanPolicy = p }
}

func WithSalesIDPrefix(prefix string) Option {
	return func(s *Service) { s.salesIDPrefix = prefix }
}

// WithClock replaces time.Now for default order dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator replaces RandomCode for sales ids.
func WithCodeGenerator(gen func(length int) (string, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

// NewService creates a Service. The defaults are the skip policy, the "SO-" prefix,
// the wall clock and RandomCode.
func NewService(runner store.TxRunner, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		tx:            runner,
		logger:        logger,
		orphanPolicy:  OrphanSkip,
		salesIDPrefix: "SO-",
		now:           time.Now,
		newCode:       RandomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// adjust applies a signed delta to a product's stock and returns the new quantity.
// It must run inside tx together with the order write it belongs to.
func adjust(ctx context.Context, tx store.OrderTx, productID int64, delta int) (int, error) {
	product, err := tx.GetProductForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	newQuantity := product.Quantity + delta
	if newQuantity < 0 {
		return 0, insufficientStock(product, -delta)
	}
	if err := tx.SetProductQuantity(ctx, productID, newQuantity); err != nil {
		return 0, err
	}
	return newQuantity, nil
}

func insufficientStock(product *domain.Product, requested int) error {
	return fmt.Errorf("%w: %q has %d available, %d requested",
		store.ErrInsufficientStock, product.Name, product.Quantity, requested)
}

// AdjustStock applies delta to one product in its own transaction (restock or write-off).
func (s *Service) AdjustStock(ctx context.Context, productID int64, delta int) (int, error) {
	if productID <= 0 {
		return 0, fmt.Errorf("%w: product id must be positive", ErrInvalidAdjustment)
	}
	if delta == 0 {
		return 0, fmt.Errorf("%w: delta must not be zero", ErrInvalidAdjustment)
	}

	var newQuantity int
	err := s.tx.WithTx(ctx, func(tx store.OrderTx) error {
		var err error
		newQuantity, err = adjust(ctx, tx, productID, delta)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stock adjusted",
		zap.Int64("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("new_quantity", newQuantity))
	return newQuantity, nil
}

func validateOrder(productID int64, quantitySold int, totalPrice decimal.Decimal) error {
	switch {
	case productID <= 0:
		return fmt.Errorf("%w: product id must be positive", ErrInvalidOrder)
	case quantitySold <= 0:
		return fmt.Errorf("%w: quantity sold must be positive", ErrInvalidOrder)
	case totalPrice.IsNegative():
		return fmt.Errorf("%w: total price cannot be negative", ErrInvalidOrder)
	}
	return nil
}

// CreateOrder deducts stock and records the order atomically.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.SalesOrder, error) {
	if err := validateOrder(in.ProductID, in.QuantitySold, in.TotalPrice); err != nil {
		return nil, err
	}
	orderDate := s.now().UTC().Truncate(time.Second)
	if in.OrderDate != nil {
		orderDate = in.OrderDate.UTC()
	}

	var created *domain.SalesOrder
	err := s.tx.WithTx(ctx, func(tx store.OrderTx) error {
		product, err := tx.GetProductForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product.Quantity < in.QuantitySold {
			return insufficientStock(product, in.QuantitySold)
		}
		if _, err := adjust(ctx, tx, product.ID, -in.QuantitySold); err != nil {
			return err
		}

		salesID, err := s.allocateSalesID(ctx, tx)
		if err != nil {
			return err
		}

		productID := product.ID
		id, err := tx.InsertOrder(ctx, &domain.SalesOrder{
			SalesID:           salesID,
			ProductID:         &productID,
			ProductNameAtSale: product.Name,
			QuantitySold:      in.QuantitySold,
			TotalPrice:        in.TotalPrice,
			OrderDate:         orderDate,
		})
		if err != nil {
			return err
		}

		created, err = tx.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order created",
		zap.Int64("order_id", created.ID),
		zap.String("sales_id", created.SalesID),
		zap.Int64("product_id", in.ProductID),
		zap.Int("quantity_sold", in.QuantitySold))
	return created, nil
}

// UpdateOrder reverts the order's original deduction and applies the new one, which may
// target a different product.
func (s *Service) UpdateOrder(ctx context.Context, orderID int64, in UpdateOrderInput) (*domain.SalesOrder, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: order id must be positive", ErrInvalidOrder)
	}
	if err := validateOrder(in.ProductID, in.QuantitySold, in.TotalPrice); err != nil {
		return nil, err
	}
	if in.OrderDate.IsZero() {
		return nil, fmt.Errorf("%w: order date is required", ErrInvalidOrder)
	}

	var updated *domain.SalesOrder
	err := s.tx.WithTx(ctx, func(tx store.OrderTx) error {
		original, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := lockProducts(ctx, tx, original.ProductID, in.ProductID); err != nil {
			return err
		}
		if err := s.revert(ctx, tx, original); err != nil {
			return err
		}

		product, err := tx.GetProductForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product.Quantity < in.QuantitySold {
			return insufficientStock(product, in.QuantitySold)
		}
		if _, err := adjust(ctx, tx, product.ID, -in.QuantitySold); err != nil {
			return err
		}

		productID := product.ID
		err = tx.UpdateOrder(ctx, &domain.SalesOrder{
			ID:                original.ID,
			SalesID:           original.SalesID,
			ProductID:         &productID,
			ProductNameAtSale: product.Name,
			QuantitySold:      in.QuantitySold,
			TotalPrice:        in.TotalPrice,
			OrderDate:         in.OrderDate.UTC(),
		})
		if err != nil {
			return err
		}

		updated, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order updated",
		zap.Int64("order_id", orderID),
		zap.Int64("product_id", in.ProductID),
		zap.Int("quantity_sold", in.QuantitySold))
	return updated, nil
}

// DeleteOrder restores the order's quantity to its product and removes the order.
func (s *Service) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return fmt.Errorf("%w: order id must be positive", ErrInvalidOrder)
	}

	err := s.tx.WithTx(ctx, func(tx store.OrderTx) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.revert(ctx, tx, order); err != nil {
			return err
		}
		return tx.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("sales order deleted", zap.Int64("order_id", orderID))
	return nil
}

// revert gives the order's quantity back to its product. When the product is gone the
// orphan policy decides between skipping and failing.
func (s *Service) revert(ctx context.Context, tx store.OrderTx, order *domain.SalesOrder) error {
	if order.ProductID != nil {
		_, err := adjust(ctx, tx, *order.ProductID, order.QuantitySold)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrProductNotFound) {
			return err
		}
	}

	if s.orphanPolicy == OrphanFail {
		return fmt.Errorf("%w: order %s", store.ErrOrphanedReference, order.SalesID)
	}
	s.logger.Warn("product of sales order no longer exists, skipping stock revert",
		zap.Int64("order_id", order.ID),
		zap.String("sales_id", order.SalesID),
		zap.Int("quantity_sold", order.QuantitySold))
	return nil
}

// lockProducts takes the row locks for the products an update touches in ascending id
// order, so two updates moving stock between the same pair cannot deadlock. A missing
// original product is left to revert.
func lockProducts(ctx context.Context, tx store.OrderTx, originalID *int64, newID int64) error {
	ids := []int64{newID}
	if originalID != nil && *originalID != newID {
		ids = append(ids, *originalID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		_, err := tx.GetProductForUpdate(ctx, id)
		if err == nil {
			continue
		}
		if errors.Is(err, store.ErrProductNotFound) && id != newID {
			continue
		}
		return err
	}
	return nil
}
