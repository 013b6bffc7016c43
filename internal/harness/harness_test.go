package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Passes(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "checks.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Cases, 3)

	assert.Equal(t, map[string]any{"filter0_min_age": 40}, result.Cases[0].Params)
	assert.Equal(t, [][]any{{int64(3), "chen", nil, int64(52)}}, result.Cases[0].Rows)
	assert.Contains(t, result.Cases[2].Error, `no column "height"`)
	assert.Empty(t, result.Cases[2].SQL)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	path := writeScenario(t, `
name: failing
description: Every expectation is wrong
catalog: shop
queries: queries.yaml
schema: schema.sql
cases:
  - query: adults
    expect:
      sql: SELECT 1
      params: {filter0_min_age: 21, filter0_max_age: 1}
      columns: [id]
      rows:
        - {name: brian}
        - {name: chen}
      count: 3
  - query: adults
    expect:
      row_count: 5
  - query: adults
    expect:
      error: boom
  - query: broken
    expect:
      sql: SELECT 1
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, firstLine(e))
	}
	assert.Equal(t, []string{
		"cases[0] adults: sql mismatch",
		"cases[0] adults: params.filter0_max_age mismatch",
		"cases[0] adults: params.filter0_min_age mismatch",
		"cases[0] adults: columns mismatch",
		"cases[0] adults: rows[0] mismatch",
		"cases[0] adults: count mismatch",
		"cases[1] adults: row_count mismatch",
		"cases[2] adults: error mismatch",
		"cases[3] broken: error mismatch",
	}, fields)
	assert.Contains(t, result.Errors[0], "  Expected: SELECT 1\n  Actual: SELECT * FROM users")
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func TestRun_WithoutSchemaOnlyCompiles(t *testing.T) {
	path := writeScenario(t, `
name: compile-only
description: No database
catalog: shop
queries: queries.yaml
cases:
  - query: spend
    expect:
      sql: "SELECT orders.user_id, SUM(orders.total) AS spent FROM orders ORDER BY spent DESC GROUP BY orders.user_id"
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Nil(t, result.Cases[0].Rows)
	assert.Nil(t, result.Cases[0].Count)
}

func TestRun_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		cases   string
		wantErr string
	}{
		{"unknown query", "  - query: nope\n", `cases[0]: no query named "nope"`},
		{"unknown dialect", "  - query: adults\n    dialect: oracle\n", `unknown dialect "oracle"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScenario(t, "name: x\ndescription: d\ncatalog: shop\nqueries: queries.yaml\ncases:\n"+tc.cases)
			s, err := LoadScenario(path)
			require.NoError(t, err)

			_, err = Run(context.Background(), s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValuesEqual(t *testing.T) {
	testCases := []struct {
		expected, actual any
		want             bool
	}{
		{nil, nil, true},
		{nil, int64(0), false},
		{1, int64(1), true},
		{1, 1.0, true},
		{170, 170.0, true},
		{40.5, int64(40), false},
		{int64(2), 2, true},
		{true, int64(1), true},
		{false, int64(1), false},
		{true, true, true},
		{"ada", "ada", true},
		{"1", int64(1), false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, valuesEqual(tc.expected, tc.actual), "%v vs %v", tc.expected, tc.actual)
	}
}
