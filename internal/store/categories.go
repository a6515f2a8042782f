package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-sales-service/internal/domain"
)

// --- CategoryStorer Implementation ---

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `INSERT INTO categories (name) VALUES (?)`
	id, err := s.dialect.InsertID(ctx, s.db, query, category.Name)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		return nil, fmt.Errorf("store: CreateCategory failed to insert row: %w", err)
	}
	return &domain.Category{ID: id, Name: category.Name}, nil
}

// ListCategories retrieves a paginated list of categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error) {
	countQuery := `SELECT COUNT(*) FROM categories`
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to count categories: %w", err)
	}

	if totalCount == 0 {
		return []domain.Category{}, 0, nil
	}

	query := `
		SELECT id, name
		FROM categories
		ORDER BY name ASC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, s.q(query), params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, params.Limit)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, 0, fmt.Errorf("store: ListCategories failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories iteration error: %w", err)
	}

	return categories, totalCount, nil
}

func (s *Store) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name FROM categories WHERE id = ?`
	var category domain.Category
	err := s.db.QueryRowContext(ctx, s.q(query), id).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByID failed to scan row: %w", err)
	}
	return &category, nil
}

// GetCategoryByName resolves a category by its unique name. Product writes use it to
// turn the category name sent by the dashboard into a category id.
func (s *Store) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT id, name FROM categories WHERE name = ?`
	var category domain.Category
	err := s.db.QueryRowContext(ctx, s.q(query), name).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByName failed to scan row: %w", err)
	}
	return &category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `UPDATE categories SET name = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, s.q(query), category.Name, category.ID); err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		return nil, fmt.Errorf("store: UpdateCategory failed to execute update: %w", err)
	}
	// MySQL reports 0 affected rows for a no-op rename, so existence is checked by re-reading.
	return s.GetCategoryByID(ctx, category.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	query := `DELETE FROM categories WHERE id = ?`
	result, err := s.db.ExecContext(ctx, s.q(query), id)
	if err != nil {
		if s.dialect.IsForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("store: DeleteCategory failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteCategory failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
