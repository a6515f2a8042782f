package store

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Schema returns the DDL statements for the store's dialect.
func (s *Store) Schema() ([]string, error) {
	raw, err := schemaFS.ReadFile("schema/" + s.dialect.Name() + ".sql")
	if err != nil {
		return nil, fmt.Errorf("store: no schema for dialect %s: %w", s.dialect.Name(), err)
	}
	var statements []string
	for _, stmt := range strings.Split(string(raw), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}

// Migrate creates any missing tables. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	statements, err := s.Schema()
	if err != nil {
		return err
	}
	for i, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: Migrate failed at statement %d: %w", i+1, err)
		}
	}
	return nil
}
