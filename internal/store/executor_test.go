package store

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestExecutorRunScansRowMaps(t *testing.T) {
	db, mock := newSQLMock(t)
	exec := NewExecutor(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM flight_prices`).
		WillReturnRows(sqlmock.NewRows([]string{"flight_number", "base_price"}).
			AddRow("GA123", []byte("1250000.00")).
			AddRow("QZ77", []byte("890000.00")))
	mock.ExpectCommit()

	rows, err := exec.Run(context.Background(), "SELECT * FROM flight_prices;")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["flight_number"] != "GA123" {
		t.Errorf(`rows[0]["flight_number"] = %v`, rows[0]["flight_number"])
	}
	if rows[0]["base_price"] != "1250000.00" {
		t.Errorf("byte column not converted to string: %v", rows[0]["base_price"])
	}
	assertSQLMock(t, mock)
}

func TestExecutorRunEmptyResult(t *testing.T) {
	db, mock := newSQLMock(t)
	exec := NewExecutor(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"flight_number"}))
	mock.ExpectCommit()

	rows, err := exec.Run(context.Background(), "SELECT flight_number FROM flight_prices WHERE origin_code = 'XXX';")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("rows = %v, want empty non-nil slice", rows)
	}
	assertSQLMock(t, mock)
}

func TestExecutorRunRollsBackOnDatabaseError(t *testing.T) {
	db, mock := newSQLMock(t)
	exec := NewExecutor(db, nil)

	pgErr := &pgconn.PgError{Code: "42703", Message: `column "presiden" does not exist`}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT presiden`).WillReturnError(pgErr)
	mock.ExpectRollback()

	_, err := exec.Run(context.Background(), "SELECT presiden FROM negara;")
	if err == nil {
		t.Fatal("expected error")
	}

	var sqlErr *SQLError
	if !errors.As(err, &sqlErr) {
		t.Fatalf("error %v is not *SQLError", err)
	}
	if sqlErr.Code != "42703" {
		t.Errorf("Code = %q, want 42703", sqlErr.Code)
	}
	assertSQLMock(t, mock)
}

func TestExecutorRunInfrastructureErrorNotSQLError(t *testing.T) {
	db, mock := newSQLMock(t)
	exec := NewExecutor(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	_, err := exec.Run(context.Background(), "SELECT 1;")
	if err == nil {
		t.Fatal("expected error")
	}
	var sqlErr *SQLError
	if errors.As(err, &sqlErr) {
		t.Fatalf("infrastructure error misclassified as SQLError: %v", err)
	}
	assertSQLMock(t, mock)
}
