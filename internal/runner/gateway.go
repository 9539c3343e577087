// Package runner executes SQL against the target Postgres database and
// classifies failures so the HTTP boundary can distinguish statement-level
// problems from connectivity problems.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotConfigured reports a missing database connection string.
var ErrNotConfigured = errors.New("database connection not configured")

type Kind string

const (
	KindSyntax     Kind = "syntax_error"
	KindConstraint Kind = "constraint_violation"
	KindConnection Kind = "connection_error"
	KindOther      Kind = "other"
)

// QueryError is a classified execution failure.
type QueryError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query execution error (%s): %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

type Request struct {
	SQL    string
	Params map[string]any
}

type Result struct {
	Rows     []map[string]any
	Columns  []string
	RowCount int
	Duration time.Duration
}

// OpenFunc opens a database handle for one execution. Overridable for tests.
type OpenFunc func(dsn string) (*sql.DB, error)

// Gateway runs one statement per call. The connection it opens is released
// before Execute returns on every path; there is no pooling across requests.
type Gateway struct {
	dsn  string
	open OpenFunc
}

func NewGateway(dsn string) *Gateway {
	return &Gateway{
		dsn: dsn,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("pgx", dsn)
		},
	}
}

// Execute runs the statement with params bound positionally. The SQL text is
// passed through as a single parameterized statement; values are never
// interpolated into it.
func (g *Gateway) Execute(ctx context.Context, req Request) (Result, error) {
	if g.dsn == "" {
		return Result{}, ErrNotConfigured
	}
	if strings.TrimSpace(req.SQL) == "" {
		return Result{}, &QueryError{Kind: KindSyntax, Message: "empty statement"}
	}

	db, err := g.open(g.dsn)
	if err != nil {
		return Result{}, classify(fmt.Errorf("open database: %w", err))
	}
	defer func() { _ = db.Close() }()

	start := time.Now()
	rows, err := db.QueryContext(ctx, req.SQL, queryArgs(req.Params)...)
	if err != nil {
		return Result{}, classify(err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, classify(err)
	}

	results := make([]map[string]any, 0)
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return Result{}, classify(err)
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = normalizeValue(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, classify(err)
	}

	return Result{
		Rows:     results,
		Columns:  columns,
		RowCount: len(results),
		Duration: time.Since(start),
	}, nil
}

// queryArgs binds the params mapping as pgx named arguments (@name
// placeholders). The statement text itself is never rewritten here.
func queryArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	return []any{pgx.NamedArgs(params)}
}

// normalizeValue makes driver values JSON-friendly; byte slices become
// strings.
func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}

func classify(err error) *QueryError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &QueryError{
			Kind:    kindForSQLState(pgErr.Code),
			Message: pgErr.Message,
			Err:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &QueryError{Kind: KindConnection, Message: err.Error(), Err: err}
	}

	return &QueryError{Kind: KindOther, Message: err.Error(), Err: err}
}

func kindForSQLState(code string) Kind {
	switch {
	case strings.HasPrefix(code, "42"):
		return KindSyntax
	case strings.HasPrefix(code, "23"):
		return KindConstraint
	case strings.HasPrefix(code, "08"):
		return KindConnection
	default:
		return KindOther
	}
}
