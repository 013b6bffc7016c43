package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"

	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/querydef"
	"github.com/roach88/collections/internal/querysql"
	"github.com/roach88/collections/internal/store"
	"github.com/roach88/collections/internal/testutil"
)

// Harness runs the cases of one scenario.
type Harness struct {
	catalog *catalog.Catalog
	defs    []*querydef.Definition
	store   *store.Store // nil without a schema
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario with a schema runs in a fresh in-memory database with
// sequential query ids. Failed expectations are reported in the result;
// the error is for scenarios that cannot run at all.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cat, err := catalog.LoadCUE(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	defs, err := querydef.Load(scenario.Queries)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}

	h := &Harness{
		catalog: cat,
		defs:    defs,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if scenario.Schema != "" {
		script, err := os.ReadFile(scenario.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
		st, err := store.Open(store.DriverSQLite, ":memory:",
			store.WithIDGenerator(&testutil.SequenceIDs{}),
			store.WithLogger(h.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		if err := st.Exec(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		h.store = st
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		r, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("cases[%d]: %w", i, err)
		}
		result.Cases = append(result.Cases, *r)

		errs := checkCase(i, c, r)
		for _, err := range errs {
			result.AddError(err.Error())
		}
		h.logger.Info("case completed", "case", i, "query", c.Query, "failures", len(errs))
	}
	return result, nil
}

// runCase builds, compiles and, with a database, executes one case. Build,
// compile and execution failures are recorded in the case result.
func (h *Harness) runCase(ctx context.Context, c Case) (*CaseResult, error) {
	def, ok := querydef.Find(h.defs, c.Query)
	if !ok {
		return nil, fmt.Errorf("no query named %q", c.Query)
	}
	dialect, err := querysql.ParseDialect(c.Dialect)
	if err != nil {
		return nil, err
	}

	r := &CaseResult{Query: c.Query}

	plan, err := querydef.Build(def, h.catalog, c.Params)
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	col := plan.Collection()

	q, err := querysql.Compile(col, querysql.WithDialect(dialect))
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	r.SQL = q.Text
	r.Params = maps.Clone(q.Params)

	if h.store == nil {
		return r, nil
	}

	res, err := h.store.Fetch(ctx, col)
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	r.Columns, r.Rows = res.Columns, res.Rows

	n, err := h.store.Count(ctx, col)
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	r.Count = &n
	return r, nil
}
