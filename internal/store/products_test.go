package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"inventory-sales-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{"id", "name", "category_id", "category", "quantity", "price", "image_path"}

func TestStore_CreateProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	product := &domain.Product{
		Name:       "Cola",
		CategoryID: 2,
		Quantity:   24,
		Price:      decimal.RequireFromString("1.50"),
		ImagePath:  PtrTo("uploads/cola.png"),
	}

	insertQuery := regexp.QuoteMeta(`INSERT INTO products (name, category_id, quantity, price, image_path) VALUES (?, ?, ?, ?, ?)`)
	mock.ExpectExec(insertQuery).
		WithArgs("Cola", int64(2), 24, sqlmock.AnyArg(), "uploads/cola.png").
		WillReturnResult(sqlmock.NewResult(10, 1))

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN categories c ON c.id = p.category_id WHERE p.id = ?`)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(int64(10), "Cola", int64(2), "Beverages", 24, "1.50", "uploads/cola.png"))

	created, err := store.CreateProduct(context.Background(), product)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(10), created.ID)
	assert.Equal(t, "Beverages", created.Category)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("1.5")))
	require.NotNil(t, created.ImagePath)
	assert.Equal(t, "uploads/cola.png", *created.ImagePath)

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestStore_CreateProduct_UnknownCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	created, err := store.CreateProduct(context.Background(), &domain.Product{Name: "Cola", CategoryID: 42})

	assert.True(t, errors.Is(err, ErrCategoryNotFound), "Error should be ErrCategoryNotFound")
	assert.Nil(t, created)
	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestStore_GetProductByID_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = ?`)).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	product, err := store.GetProductByID(context.Background(), 7)

	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
	assert.Nil(t, product)
	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestStore_ListProducts_WithFiltersAndSorting(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	params := ListProductsParams{
		Limit:       5,
		Offset:      5,
		SearchQuery: PtrTo("co"),
		CategoryID:  PtrTo(int64(2)),
		SortBy:      "price",
		SortOrder:   "desc",
	}

	countQuery := regexp.QuoteMeta(`SELECT COUNT(*) FROM products p WHERE LOWER(p.name) LIKE LOWER(?) AND p.category_id = ?`)
	mock.ExpectQuery(countQuery).
		WithArgs("%co%", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	dataQuery := regexp.QuoteMeta(`WHERE LOWER(p.name) LIKE LOWER(?) AND p.category_id = ? ORDER BY p.price DESC LIMIT ? OFFSET ?`)
	mock.ExpectQuery(dataQuery).
		WithArgs("%co%", int64(2), 5, 5).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(int64(1), "Cocoa", int64(2), "Beverages", 3, "4.00", nil))

	products, total, err := store.ListProducts(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Cocoa", products[0].Name)
	assert.Nil(t, products[0].ImagePath)
	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestStore_ListProducts_UnknownSortFallsBackToID(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY p.id ASC LIMIT ? OFFSET ?`)).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(int64(1), "Chips", int64(1), "Snacks", 8, "2.25", nil))

	products, _, err := store.ListProducts(context.Background(), ListProductsParams{Limit: 20, SortBy: "1; DROP TABLE products"})

	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestStore_UpdateProduct_KeepsImageWhenNil(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`image_path = COALESCE(?, image_path) WHERE id = ?`)).
		WithArgs("Chips XL", int64(1), 12, sqlmock.AnyArg(), nil, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = ?`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(int64(4), "Chips XL", int64(1), "Snacks", 12, "3.10", "uploads/chips.png"))

	updated, err := store.UpdateProduct(context.Background(), &domain.Product{
		ID: 4, Name: "Chips XL", CategoryID: 1, Quantity: 12, Price: decimal.RequireFromString("3.10"),
	})

	require.NoError(t, err)
	require.NotNil(t, updated.ImagePath)
	assert.Equal(t, "uploads/chips.png", *updated.ImagePath)
	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestStore_DeleteProduct(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`DELETE FROM products WHERE id = ?`)
	mock.ExpectExec(query).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteProduct(context.Background(), 4))
	err := store.DeleteProduct(context.Background(), 5)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}
