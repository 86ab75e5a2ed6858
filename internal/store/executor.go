package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gogoair/flightchat/internal/metrics"
)

// SQLError is a database rejection of a generated statement (unknown column
// or table, syntax error, type mismatch). The chat pipeline branches on this
// type: it triggers the error-explanation report instead of a hard failure.
type SQLError struct {
	Code    string
	Message string
	cause   error
}

func (e *SQLError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sql error %s: %s", e.Code, e.Message)
	}
	return "sql error: " + e.Message
}

func (e *SQLError) Unwrap() error {
	return e.cause
}

// Executor runs generated SQL statements, one transaction per call.
type Executor struct {
	db      *sql.DB
	metrics *metrics.Collector
}

// NewExecutor creates an executor on an open connection pool.
func NewExecutor(db *sql.DB, mc *metrics.Collector) *Executor {
	return &Executor{db: db, metrics: mc}
}

// Run executes one statement and returns its rows as ordered column→value
// maps. The statement runs in its own transaction: committed on success,
// rolled back before returning on any database error. No retries.
func (e *Executor) Run(ctx context.Context, statement string) ([]map[string]any, error) {
	start := time.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	rows, err := tx.QueryContext(ctx, statement)
	if err != nil {
		_ = tx.Rollback()
		return nil, classifySQLError(err)
	}

	results, scanErr := scanRows(rows)
	_ = rows.Close()
	if scanErr != nil {
		_ = tx.Rollback()
		return nil, classifySQLError(scanErr)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if e.metrics != nil {
		e.metrics.RecordTiming(metrics.OpSQLExecute, time.Since(start))
	}
	return results, nil
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// classifySQLError wraps database rejections in *SQLError so callers can
// branch with errors.As. Infrastructure failures pass through wrapped.
func classifySQLError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &SQLError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			cause:   err,
		}
	}
	return fmt.Errorf("execute query: %w", err)
}
