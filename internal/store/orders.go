package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-sales-service/internal/domain"
)

// orderSelect joins the live product name next to the stored snapshot. Orders whose
// product was deleted come back with a NULL product_id and a NULL live name.
const orderSelect = `
		SELECT so.id, so.sales_id, so.product_id, so.product_name, p.name,
			so.quantity_sold, so.total_price, so.order_date
		FROM sales_orders so
		LEFT JOIN products p ON p.id = so.product_id
	`

func scanOrder(row rowScanner) (*domain.SalesOrder, error) {
	var o domain.SalesOrder
	err := row.Scan(
		&o.ID, &o.SalesID, &o.ProductID, &o.ProductNameAtSale, &o.CurrentProductName,
		&o.QuantitySold, &o.TotalPrice, &o.OrderDate,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func getOrder(ctx context.Context, q DBTX, d Dialect, id int64) (*domain.SalesOrder, error) {
	order, err := scanOrder(q.QueryRowContext(ctx, d.Rebind(orderSelect+" WHERE so.id = ?"), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("store: GetOrder failed to scan row: %w", err)
	}
	return order, nil
}

// --- OrderStorer Implementation ---

// ListOrders returns orders newest first.
func (s *Store) ListOrders(ctx context.Context, params ListOrdersParams) ([]domain.SalesOrder, int, error) {
	whereCondition := ""
	var queryArgs []any
	if params.ProductID != nil {
		whereCondition = " WHERE so.product_id = ?"
		queryArgs = append(queryArgs, *params.ProductID)
	}

	countQuery := "SELECT COUNT(*) FROM sales_orders so" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, s.q(countQuery), queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders failed to count orders: %w", err)
	}

	if totalCount == 0 {
		return []domain.SalesOrder{}, 0, nil
	}

	dataQuery := orderSelect + whereCondition + " ORDER BY so.order_date DESC, so.id DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, s.q(dataQuery), append(queryArgs, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.SalesOrder, 0, params.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: ListOrders failed to scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders iteration error: %w", err)
	}

	return orders, totalCount, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	return getOrder(ctx, s.db, s.dialect, id)
}

// --- OrderTx Implementation ---

type orderTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *orderTx) q(query string) string {
	return t.dialect.Rebind(query)
}

func (t *orderTx) GetProductForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, category_id, quantity, price, image_path
		FROM products
		WHERE id = ?
		FOR UPDATE
	`
	var p domain.Product
	err := t.tx.QueryRowContext(ctx, t.q(query), id).Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.Quantity, &p.Price, &p.ImagePath,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductForUpdate failed to scan row: %w", err)
	}
	return &p, nil
}

// SetProductQuantity writes an absolute quantity. The caller must hold the row lock.
func (t *orderTx) SetProductQuantity(ctx context.Context, id int64, quantity int) error {
	query := `UPDATE products SET quantity = ? WHERE id = ?`
	if _, err := t.tx.ExecContext(ctx, t.q(query), quantity, id); err != nil {
		return fmt.Errorf("store: SetProductQuantity failed to execute update: %w", err)
	}
	return nil
}

func (t *orderTx) GetOrderForUpdate(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	query := `
		SELECT id, sales_id, product_id, product_name, quantity_sold, total_price, order_date
		FROM sales_orders
		WHERE id = ?
		FOR UPDATE
	`
	var o domain.SalesOrder
	err := t.tx.QueryRowContext(ctx, t.q(query), id).Scan(
		&o.ID, &o.SalesID, &o.ProductID, &o.ProductNameAtSale, &o.QuantitySold, &o.TotalPrice, &o.OrderDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("store: GetOrderForUpdate failed to scan row: %w", err)
	}
	return &o, nil
}

func (t *orderTx) GetOrder(ctx context.Context, id int64) (*domain.SalesOrder, error) {
	return getOrder(ctx, t.tx, t.dialect, id)
}

func (t *orderTx) SalesIDExists(ctx context.Context, salesID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sales_orders WHERE sales_id = ?)`
	var exists bool
	if err := t.tx.QueryRowContext(ctx, t.q(query), salesID).Scan(&exists); err != nil {
		return false, fmt.Errorf("store: SalesIDExists failed to scan row: %w", err)
	}
	return exists, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, order *domain.SalesOrder) (int64, error) {
	query := `
		INSERT INTO sales_orders (sales_id, product_id, product_name, quantity_sold, total_price, order_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := t.dialect.InsertID(ctx, t.tx, query,
		order.SalesID, order.ProductID, order.ProductNameAtSale, order.QuantitySold, order.TotalPrice, order.OrderDate,
	)
	if err != nil {
		if t.dialect.IsUniqueViolation(err) {
			return 0, ErrSalesIDExists
		}
		return 0, fmt.Errorf("store: InsertOrder failed to insert row: %w", err)
	}
	return id, nil
}

func (t *orderTx) UpdateOrder(ctx context.Context, order *domain.SalesOrder) error {
	query := `
		UPDATE sales_orders
		SET product_id = ?, product_name = ?, quantity_sold = ?, total_price = ?, order_date = ?
		WHERE id = ?
	`
	_, err := t.tx.ExecContext(ctx, t.q(query),
		order.ProductID, order.ProductNameAtSale, order.QuantitySold, order.TotalPrice, order.OrderDate, order.ID,
	)
	if err != nil {
		return fmt.Errorf("store: UpdateOrder failed to execute update: %w", err)
	}
	return nil
}

func (t *orderTx) DeleteOrder(ctx context.Context, id int64) error {
	query := `DELETE FROM sales_orders WHERE id = ?`
	result, err := t.tx.ExecContext(ctx, t.q(query), id)
	if err != nil {
		return fmt.Errorf("store: DeleteOrder failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteOrder failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
