package schema

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenFunc opens a database handle for one fetch. Overridable for tests.
type OpenFunc func(dsn string) (*sql.DB, error)

// Provider fetches the live schema from the Postgres catalog. Each Fetch
// opens its own connection and releases it before returning; there is no
// pooling or caching across calls.
type Provider struct {
	dsn    string
	logger *slog.Logger
	open   OpenFunc
}

func NewProvider(dsn string, logger *slog.Logger) *Provider {
	return &Provider{
		dsn:    dsn,
		logger: logger,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("pgx", dsn)
		},
	}
}

// Fetch never fails: any connectivity or catalog error is logged and the
// built-in fallback descriptor is returned instead. The Source tag tells the
// caller which one it got.
func (p *Provider) Fetch(ctx context.Context) Result {
	if p.dsn == "" {
		p.warn("database url not configured, using built-in schema", nil)
		return Result{Descriptor: Fallback(), Source: SourceFallback}
	}

	descriptor, err := p.fetchLive(ctx)
	if err != nil {
		p.warn("failed to fetch live schema, using built-in schema", err)
		return Result{Descriptor: Fallback(), Source: SourceFallback}
	}
	return Result{Descriptor: descriptor, Source: SourceLive}
}

func (p *Provider) fetchLive(ctx context.Context) (Descriptor, error) {
	db, err := p.open(p.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}

	descriptor := make(Descriptor, 0, len(tables))
	for _, name := range tables {
		columns, err := listColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		descriptor = append(descriptor, Table{Name: name, Columns: columns})
	}
	return descriptor, nil
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
SELECT tablename FROM pg_catalog.pg_tables
WHERE schemaname = 'public'`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}
	return names, nil
}

func listColumns(ctx context.Context, db *sql.DB, tableName string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, `
SELECT column_name, data_type, is_nullable
FROM information_schema.columns
WHERE table_name = $1`, tableName)
	if err != nil {
		return nil, fmt.Errorf("list columns for %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	columns := make([]Column, 0)
	for rows.Next() {
		var column Column
		var nullable string
		if err := rows.Scan(&column.Name, &column.Type, &nullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		column.Nullable = nullable == "YES"
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}

func (p *Provider) warn(msg string, err error) {
	if p.logger == nil {
		return
	}
	if err != nil {
		p.logger.Warn(msg, slog.Any("error", err))
		return
	}
	p.logger.Warn(msg)
}
