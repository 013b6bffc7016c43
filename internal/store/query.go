package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/querysql"
)

// Result holds the rows of one execution.
type Result struct {
	// ID is the query id the execution was logged under.
	ID      string
	Columns []string
	Rows    [][]any
}

// Maps returns each row keyed by column name. Later columns win when a
// name repeats.
func (r *Result) Maps() []map[string]any {
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			m[col] = row[j]
		}
		out[i] = m
	}
	return out
}

// QueryError is a failed execution.
type QueryError struct {
	ID   string
	Text string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.ID, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Compile compiles col in the store's dialect.
func (s *Store) Compile(col operator.Collection) (*querysql.Query, error) {
	return querysql.Compile(col, querysql.WithDialect(s.dialect))
}

// Fetch compiles col and returns the page of rows its cursor selects.
func (s *Store) Fetch(ctx context.Context, col operator.Collection) (*Result, error) {
	q, err := s.Compile(col)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, q)
}

// Run executes a compiled query. q must have been compiled in the store's
// dialect.
func (s *Store) Run(ctx context.Context, q *querysql.Query) (*Result, error) {
	if q.Dialect != s.dialect {
		return nil, fmt.Errorf("query compiled for %s, store expects %s", q.Dialect, s.dialect)
	}

	text, args, err := q.Paged()
	if err != nil {
		return nil, err
	}

	id := s.ids.Generate()
	start := time.Now()
	s.logger.Debug("running query", "query_id", id, "dialect", s.dialect.String(), "sql", text)

	rows, err := s.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, s.failed(id, text, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, s.failed(id, text, fmt.Errorf("read columns: %w", err))
	}

	res := &Result{ID: id, Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.failed(id, text, fmt.Errorf("scan row: %w", err))
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, s.failed(id, text, fmt.Errorf("iterate rows: %w", err))
	}

	s.logger.Info("query executed",
		"query_id", id,
		"rows", len(res.Rows),
		"duration", time.Since(start),
	)
	return res, nil
}

// Count compiles col and returns how many rows it yields, ignoring its
// cursor. For grouped collections this is the number of groups.
func (s *Store) Count(ctx context.Context, col operator.Collection) (int64, error) {
	q, err := s.Compile(col)
	if err != nil {
		return 0, err
	}

	text, args, err := q.Count()
	if err != nil {
		return 0, err
	}

	id := s.ids.Generate()
	s.logger.Debug("counting query", "query_id", id, "dialect", s.dialect.String(), "sql", text)

	var n int64
	if err := s.db.QueryRowContext(ctx, text, args...).Scan(&n); err != nil {
		return 0, s.failed(id, text, err)
	}

	s.logger.Info("query counted", "query_id", id, "count", n)
	return n, nil
}

func (s *Store) failed(id, text string, err error) error {
	s.logger.Error("query failed", "query_id", id, "error", err)
	return &QueryError{ID: id, Text: text, Err: err}
}
