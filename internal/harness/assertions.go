package harness

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// AssertionError is a failed expectation of a case.
type AssertionError struct {
	Case     int    // index in Scenario.Cases
	Query    string // definition name
	Field    string // expectation that failed, e.g. "sql" or "rows[1]"
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "cases[%d] %s: %s mismatch\n", e.Case, e.Query, e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkCase evaluates the expectations of the index-th case against what
// it produced.
func checkCase(index int, c Case, r *CaseResult) []error {
	fail := func(field, expected, actual string) error {
		return &AssertionError{Case: index, Query: c.Query, Field: field, Expected: expected, Actual: actual}
	}
	exp := c.Expect

	if exp.Error != "" {
		switch {
		case r.Error == "":
			return []error{fail("error", fmt.Sprintf("error containing %q", exp.Error), "no error")}
		case !strings.Contains(r.Error, exp.Error):
			return []error{fail("error", fmt.Sprintf("error containing %q", exp.Error), r.Error)}
		}
		return nil
	}
	if r.Error != "" {
		return []error{fail("error", "no error", r.Error)}
	}

	var errs []error
	if exp.SQL != "" && exp.SQL != r.SQL {
		errs = append(errs, fail("sql", exp.SQL, r.SQL))
	}

	names := make([]string, 0, len(exp.Params))
	for name := range exp.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		actual, ok := r.Params[name]
		if !ok {
			errs = append(errs, fail("params."+name, fmt.Sprintf("%v", exp.Params[name]), "no such parameter"))
			continue
		}
		if !valuesEqual(exp.Params[name], actual) {
			errs = append(errs, fail("params."+name, fmt.Sprintf("%v", exp.Params[name]), fmt.Sprintf("%v", actual)))
		}
	}

	if exp.Columns != nil && !slices.Equal(exp.Columns, r.Columns) {
		errs = append(errs, fail("columns", fmt.Sprintf("%v", exp.Columns), fmt.Sprintf("%v", r.Columns)))
	}
	if exp.RowCount != nil && *exp.RowCount != len(r.Rows) {
		errs = append(errs, fail("row_count", fmt.Sprint(*exp.RowCount), fmt.Sprint(len(r.Rows))))
	}
	if exp.Rows != nil {
		if len(exp.Rows) != len(r.Rows) {
			errs = append(errs, fail("rows", fmt.Sprintf("%d row(s)", len(exp.Rows)), fmt.Sprintf("%d row(s)", len(r.Rows))))
		} else {
			for i, want := range exp.Rows {
				if got := r.row(i); !matchRow(got, want) {
					errs = append(errs, fail(fmt.Sprintf("rows[%d]", i), fmt.Sprintf("%v", want), fmt.Sprintf("%v", got)))
				}
			}
		}
	}
	if exp.Count != nil {
		switch {
		case r.Count == nil:
			errs = append(errs, fail("count", fmt.Sprint(*exp.Count), "not counted"))
		case *exp.Count != *r.Count:
			errs = append(errs, fail("count", fmt.Sprint(*exp.Count), fmt.Sprint(*r.Count)))
		}
	}
	return errs
}

// matchRow checks if actual contains all expected columns (subset match).
func matchRow(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesEqual(want, got) {
			return false
		}
	}
	return true
}

// valuesEqual compares an expected YAML value with a value produced by the
// compiler or the database. Numbers compare by value and booleans match
// SQLite's 0/1 integers.
func valuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch exp := expected.(type) {
	case int:
		return numberEqual(float64(exp), actual)
	case int64:
		return numberEqual(float64(exp), actual)
	case float64:
		return numberEqual(exp, actual)
	case bool:
		switch act := actual.(type) {
		case bool:
			return exp == act
		case int64:
			return exp == (act != 0)
		}
		return false
	}
	return reflect.DeepEqual(expected, actual)
}

func numberEqual(expected float64, actual any) bool {
	switch act := actual.(type) {
	case int:
		return expected == float64(act)
	case int64:
		return expected == float64(act)
	case float64:
		return expected == act
	}
	return false
}
