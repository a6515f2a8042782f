package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Supported driver names, as registered with database/sql.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect hides the few places where MySQL and PostgreSQL differ for this store.
// Queries are written with '?' placeholders and rebound before execution.
type Dialect interface {
	Name() string
	Rebind(query string) string
	// InsertID runs an INSERT and returns the generated primary key.
	InsertID(ctx context.Context, q DBTX, query string, args ...any) (int64, error)
	IsUniqueViolation(err error) bool
	IsForeignKeyViolation(err error) bool
}

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverMySQL:
		return MySQLDialect{}, nil
	case DriverPostgres:
		return PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// MySQLDialect targets go-sql-driver/mysql.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return DriverMySQL }

func (MySQLDialect) Rebind(query string) string { return query }

func (MySQLDialect) InsertID(ctx context.Context, q DBTX, query string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (MySQLDialect) IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062 // ER_DUP_ENTRY
}

func (MySQLDialect) IsForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	// 1451: parent row still referenced, 1452: referenced parent row missing
	return errors.As(err, &myErr) && (myErr.Number == 1451 || myErr.Number == 1452)
}

// PostgresDialect targets lib/pq.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return DriverPostgres }

// Rebind turns '?' placeholders into $1, $2, ...
func (PostgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d PostgresDialect) InsertID(ctx context.Context, q DBTX, query string, args ...any) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, d.Rebind(strings.TrimRight(strings.TrimSpace(query), ";")+" RETURNING id"), args...).Scan(&id)
	return id, err
}

func (PostgresDialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (PostgresDialect) IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
