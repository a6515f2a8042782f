package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"inventory-sales-service/internal/domain"
)

const productSelect = `
		SELECT p.id, p.name, p.category_id, c.name, p.quantity, p.price, p.image_path
		FROM products p
		JOIN categories c ON c.id = p.category_id
	`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Category, &p.Quantity, &p.Price, &p.ImagePath); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- ProductStorer Implementation ---

func (s *Store) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, category_id, quantity, price, image_path)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := s.dialect.InsertID(ctx, s.db, query,
		product.Name, product.CategoryID, product.Quantity, product.Price, product.ImagePath,
	)
	if err != nil {
		if s.dialect.IsForeignKeyViolation(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: CreateProduct failed to insert row: %w", err)
	}
	return s.GetProductByID(ctx, id)
}

func (s *Store) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) {
	var queryArgs []any
	var whereClauses []string

	if params.SearchQuery != nil && *params.SearchQuery != "" {
		whereClauses = append(whereClauses, "LOWER(p.name) LIKE LOWER(?)")
		queryArgs = append(queryArgs, "%"+*params.SearchQuery+"%")
	}
	if params.CategoryID != nil {
		whereClauses = append(whereClauses, "p.category_id = ?")
		queryArgs = append(queryArgs, *params.CategoryID)
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM products p" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, s.q(countQuery), queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to count products: %w", err)
	}

	if totalCount == 0 {
		return []domain.Product{}, 0, nil
	}

	sortColumn := "p.id" // Default sort
	allowedSortColumns := map[string]string{
		"id":       "p.id",
		"name":     "p.name",
		"price":    "p.price",
		"quantity": "p.quantity",
	}
	if col, ok := allowedSortColumns[strings.ToLower(params.SortBy)]; ok {
		sortColumn = col
	}

	sortOrder := "ASC" // Default order
	if strings.ToUpper(params.SortOrder) == "DESC" {
		sortOrder = "DESC"
	}

	dataQuery := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT ? OFFSET ?",
		productSelect, whereCondition, sortColumn, sortOrder)
	finalQueryArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, s.q(dataQuery), finalQueryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}

	return products, totalCount, nil
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := productSelect + " WHERE p.id = ?"
	product, err := scanProduct(s.db.QueryRowContext(ctx, s.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return product, nil
}

// UpdateProduct overwrites name, category, quantity and price. A nil ImagePath keeps the
// stored image.
func (s *Store) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = ?, category_id = ?, quantity = ?, price = ?, image_path = COALESCE(?, image_path)
		WHERE id = ?
	`
	_, err := s.db.ExecContext(ctx, s.q(query),
		product.Name, product.CategoryID, product.Quantity, product.Price, product.ImagePath, product.ID,
	)
	if err != nil {
		if s.dialect.IsForeignKeyViolation(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to execute update: %w", err)
	}
	return s.GetProductByID(ctx, product.ID)
}

// DeleteProduct removes the product. Orders placed against it keep their snapshot name
// and lose the reference (ON DELETE SET NULL); their stock is not corrected.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = ?`
	result, err := s.db.ExecContext(ctx, s.q(query), id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
