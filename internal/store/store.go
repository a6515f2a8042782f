package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Predefined errors for store operations
var (
	ErrCategoryNotFound   = errors.New("store: category not found")
	ErrCategoryNameExists = errors.New("store: category name already exists")
	ErrCategoryInUse      = errors.New("store: category is still referenced by products")
	ErrProductNotFound    = errors.New("store: product not found")
	ErrOrderNotFound      = errors.New("store: sales order not found")
	ErrSalesIDExists      = errors.New("store: sales id already exists")
	ErrInsufficientStock  = errors.New("store: insufficient stock")
	ErrOrphanedReference  = errors.New("store: sales order references a product that no longer exists")
	ErrUnsupportedDriver  = errors.New("store: unsupported database driver")
)

// Store implements the storer interfaces on top of database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a new Store instance.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

// Ping verifies the connection pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn in a transaction. fn's error is returned unchanged after rollback so
// callers can match it with errors.Is. A panic inside fn rolls back and is re-raised.
func (s *Store) WithTx(ctx context.Context, fn func(tx OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: WithTx failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&orderTx{tx: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: WithTx rollback failed (%v) after: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: WithTx failed to commit: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: failed to close database connection pool: %w", err)
	}
	return nil
}
