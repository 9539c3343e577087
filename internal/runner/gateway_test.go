package runner

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func mockGateway(db *sql.DB) *Gateway {
	g := NewGateway("postgres://mock")
	g.open = func(string) (*sql.DB, error) { return db, nil }
	return g
}

func TestExecuteReturnsRowsAndMetadata(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery("SELECT model, hp FROM cars").
		WillReturnRows(sqlmock.NewRows([]string{"model", "hp"}).
			AddRow("Datsun 710", int64(93)).
			AddRow("Maserati Bora", int64(335)))
	mock.ExpectClose()

	result, err := mockGateway(db).Execute(context.Background(), Request{SQL: "SELECT model, hp FROM cars"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !reflect.DeepEqual(result.Columns, []string{"model", "hp"}) {
		t.Fatalf("Columns = %#v", result.Columns)
	}
	if result.RowCount != 2 {
		t.Fatalf("RowCount = %d", result.RowCount)
	}
	if result.Rows[0]["model"] != "Datsun 710" {
		t.Fatalf("Rows[0][model] = %#v", result.Rows[0]["model"])
	}
	if result.Rows[1]["hp"] != int64(335) {
		t.Fatalf("Rows[1][hp] = %#v", result.Rows[1]["hp"])
	}
	if result.Duration < 0 {
		t.Fatalf("Duration = %v", result.Duration)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestExecuteNormalizesByteSlices(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery("SELECT model FROM cars").
		WillReturnRows(sqlmock.NewRows([]string{"model"}).AddRow([]byte("Volvo 142E")))
	mock.ExpectClose()

	result, err := mockGateway(db).Execute(context.Background(), Request{SQL: "SELECT model FROM cars"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Rows[0]["model"] != "Volvo 142E" {
		t.Fatalf("Rows[0][model] = %#v", result.Rows[0]["model"])
	}
}

func TestQueryArgsWrapsParamsAsNamedArgs(t *testing.T) {
	if got := queryArgs(nil); got != nil {
		t.Fatalf("queryArgs(nil) = %#v", got)
	}
	if got := queryArgs(map[string]any{}); got != nil {
		t.Fatalf("queryArgs(empty) = %#v", got)
	}

	args := queryArgs(map[string]any{"min_hp": 200})
	if len(args) != 1 {
		t.Fatalf("args = %#v", args)
	}
	named, ok := args[0].(pgx.NamedArgs)
	if !ok {
		t.Fatalf("args[0] = %T", args[0])
	}
	if named["min_hp"] != 200 {
		t.Fatalf("named[min_hp] = %#v", named["min_hp"])
	}
}

func TestExecuteClassifiesSQLStates(t *testing.T) {
	cases := []struct {
		code string
		want Kind
	}{
		{"42601", KindSyntax},
		{"42P01", KindSyntax},
		{"23505", KindConstraint},
		{"08006", KindConnection},
		{"57014", KindOther},
	}

	for _, tc := range cases {
		db, mock := newSQLMock(t)
		mock.ExpectQuery("SELECT").
			WillReturnError(&pgconn.PgError{Code: tc.code, Message: "boom"})
		mock.ExpectClose()

		_, err := mockGateway(db).Execute(context.Background(), Request{SQL: "SELECT broken"})
		var queryErr *QueryError
		if !errors.As(err, &queryErr) {
			t.Fatalf("code %s: error = %v, want QueryError", tc.code, err)
		}
		if queryErr.Kind != tc.want {
			t.Fatalf("code %s: Kind = %q, want %q", tc.code, queryErr.Kind, tc.want)
		}
	}
}

func TestExecuteClassifiesUnknownErrorsAsOther(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("mystery failure"))
	mock.ExpectClose()

	_, err := mockGateway(db).Execute(context.Background(), Request{SQL: "SELECT 1"})
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error = %v, want QueryError", err)
	}
	if queryErr.Kind != KindOther {
		t.Fatalf("Kind = %q", queryErr.Kind)
	}
}

func TestExecuteWithoutDSNReturnsNotConfigured(t *testing.T) {
	g := NewGateway("")
	_, err := g.Execute(context.Background(), Request{SQL: "SELECT 1"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestExecuteRejectsEmptyStatement(t *testing.T) {
	g := NewGateway("postgres://mock")
	_, err := g.Execute(context.Background(), Request{SQL: "   "})
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error = %v, want QueryError", err)
	}
	if queryErr.Kind != KindSyntax {
		t.Fatalf("Kind = %q", queryErr.Kind)
	}
}
