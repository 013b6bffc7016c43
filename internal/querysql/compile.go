package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/collections/internal/expr"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
)

// Compiler renders a collection's accumulated state into a query.
//
// Clause order is fixed:
//
//	SELECT <select> FROM <from> [<joins>] [WHERE <predicate>] [ORDER BY <ordering>] [GROUP BY <grouping>]
//
// Parameter names are namespaced per clause element so that the same name
// may appear in several filters: filter<N>_<name>, where N is the filter's
// index among the collection's filters. Selections, joins, orderings and
// groupings use select<N>_, join<N>_, order<N>_ and group<N>_.
//
// A Compiler holds scratch buffers and must not be used by two
// compilations at once. Compile is the single-use form.
type Compiler struct {
	dialect Dialect
	exprs   *ExpressionCompiler
	builder strings.Builder
	params  map[string]any
	names   []string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithDialect selects the marker and identifier dialect.
func WithDialect(d Dialect) Option {
	return func(c *Compiler) { c.dialect = d }
}

// NewCompiler creates a Compiler. The default dialect is Named.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{dialect: Named}
	for _, opt := range opts {
		opt(c)
	}
	c.exprs = NewExpressionCompiler(c.dialect)
	return c
}

// Compile compiles col with a fresh Compiler.
func Compile(col operator.Collection, opts ...Option) (*Query, error) {
	return NewCompiler(opts...).Compile(col)
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() Dialect { return c.dialect }

// clause is rendered text with "?" markers and the parameter name behind
// each marker.
type clause struct {
	text    string
	markers []string
}

func (cl clause) empty() bool { return cl.text == "" }

// Compile renders col.
func (c *Compiler) Compile(col operator.Collection) (*Query, error) {
	if col == nil {
		return nil, fmt.Errorf("cannot compile nil collection")
	}
	c.params = make(map[string]any)
	c.names = nil
	defer func() {
		c.params = nil
		c.names = nil
	}()

	var (
		q   = &Query{Dialect: c.dialect, Cursor: cursorOf(col), Aggregated: isAggregated(col)}
		err error
	)
	if q.clauses.sel, err = c.selectClause(col); err != nil {
		return nil, fmt.Errorf("compile select: %w", err)
	}
	if q.clauses.from, err = c.fromClause(col); err != nil {
		return nil, fmt.Errorf("compile from: %w", err)
	}
	if q.clauses.where, err = c.whereClause(col); err != nil {
		return nil, fmt.Errorf("compile where: %w", err)
	}
	if q.clauses.order, err = c.orderingClause(col); err != nil {
		return nil, fmt.Errorf("compile ordering: %w", err)
	}
	if q.clauses.group, err = c.groupingClause(col); err != nil {
		return nil, fmt.Errorf("compile grouping: %w", err)
	}

	q.Params = c.params
	q.Names = c.names

	text, markers := q.clauses.statement()
	if q.Text, q.Args, err = c.dialect.finalize(text, markers, q.Params); err != nil {
		return nil, err
	}
	return q, nil
}

// SelectClause renders the select list of col.
func (c *Compiler) SelectClause(col operator.Collection) (string, error) {
	return c.standalone(col, c.selectClause)
}

// FromClause renders the from clause of col, joins included.
func (c *Compiler) FromClause(col operator.Collection) (string, error) {
	return c.standalone(col, c.fromClause)
}

// WhereClause renders the filter predicate of col, or "" without filters.
func (c *Compiler) WhereClause(col operator.Collection) (string, error) {
	return c.standalone(col, c.whereClause)
}

// OrderingClause renders the ordering of col, or "" when unordered.
func (c *Compiler) OrderingClause(col operator.Collection) (string, error) {
	return c.standalone(col, c.orderingClause)
}

// GroupingClause renders the grouping of col, or "" when ungrouped.
func (c *Compiler) GroupingClause(col operator.Collection) (string, error) {
	return c.standalone(col, c.groupingClause)
}

func (c *Compiler) standalone(col operator.Collection, render func(operator.Collection) (clause, error)) (string, error) {
	c.params = make(map[string]any)
	c.names = nil
	defer func() {
		c.params = nil
		c.names = nil
	}()

	cl, err := render(col)
	if err != nil {
		return "", err
	}
	text, _, err := c.dialect.finalize(cl.text, cl.markers, c.params)
	return text, err
}

func (c *Compiler) bind(name string, value any) error {
	if existing, ok := c.params[name]; ok {
		if !expr.EqualValues(existing, value) {
			return &ParameterConflictError{Name: name}
		}
		return nil
	}
	c.params[name] = value
	c.names = append(c.names, name)
	return nil
}

func (c *Compiler) expression(src source.Source, e expr.Expression, prefix string) (string, []string, error) {
	return c.exprs.Compile(src, e, prefix, c.bind)
}

// list renders expressions separated by commas, each suffixed by the
// matching entry of suffixes when given.
func (c *Compiler) list(src source.Source, exprs []expr.Expression, suffixes []string, prefix string) (clause, error) {
	defer c.builder.Reset()
	c.builder.Reset()

	var markers []string
	for i, e := range exprs {
		text, m, err := c.expression(src, e, prefix+strconv.Itoa(i)+"_")
		if err != nil {
			return clause{}, err
		}
		if i > 0 {
			c.builder.WriteString(", ")
		}
		c.builder.WriteString(text)
		if suffixes != nil && suffixes[i] != "" {
			c.builder.WriteString(suffixes[i])
		}
		markers = append(markers, m...)
	}
	return clause{text: c.builder.String(), markers: markers}, nil
}

func (c *Compiler) selectClause(col operator.Collection) (clause, error) {
	src := col.Source()

	if s, ok := operator.As[operator.Selectable](col, operator.CanSelect); ok && s.IsSelected() {
		sels := s.Selections()
		exprs := make([]expr.Expression, len(sels))
		suffixes := make([]string, len(sels))
		for i, sel := range sels {
			exprs[i] = sel.Expression()
			if sel.Name() != "" {
				suffixes[i] = " AS " + c.dialect.Ident(sel.Name())
			}
		}
		return c.list(src, exprs, suffixes, "select")
	}

	if isAggregated(col) {
		var exprs []expr.Expression
		for _, g := range groupsOf(col) {
			exprs = append(exprs, g.Expression())
		}
		for _, a := range aggregatesOf(col) {
			exprs = append(exprs, a.Expression())
		}
		return c.list(src, exprs, nil, "select")
	}

	return clause{text: "*"}, nil
}

func (c *Compiler) fromClause(col operator.Collection) (clause, error) {
	defer c.builder.Reset()
	c.builder.Reset()

	outer := col.Source()
	var markers []string
	joinIndex := 0

	for i, src := range source.Chain(outer) {
		if i == 0 {
			c.builder.WriteString(c.tableRef(src.Table().Name(), src.Name()))
			continue
		}

		j, ok := src.(*source.JoinSource)
		if !ok {
			return clause{}, fmt.Errorf("source %s is not a join", src.Name())
		}
		if j.Kind() == source.Embedded {
			continue
		}

		c.builder.WriteString(" ")
		c.builder.WriteString(j.Kind().Keyword())
		c.builder.WriteString(" JOIN ")
		c.builder.WriteString(c.tableRef(j.Table().Name(), j.Name()))

		if pred := j.Predicate(); pred != nil {
			text, m, err := c.expression(outer, pred, "join"+strconv.Itoa(joinIndex)+"_")
			if err != nil {
				return clause{}, fmt.Errorf("join %s: %w", j.Name(), err)
			}
			c.builder.WriteString(" ON ")
			c.builder.WriteString(text)
			markers = append(markers, m...)
		}
		joinIndex++
	}

	return clause{text: c.builder.String(), markers: markers}, nil
}

// tableRef renders "<table>" or "<table> AS <alias>" when the alias is not
// the table's own name.
func (c *Compiler) tableRef(table, alias string) string {
	if alias == table {
		return c.dialect.Ident(table)
	}
	return c.dialect.Ident(table) + " AS " + c.dialect.Ident(alias)
}

func (c *Compiler) whereClause(col operator.Collection) (clause, error) {
	defer c.builder.Reset()
	c.builder.Reset()

	f, ok := operator.As[operator.Filterable](col, operator.CanFilter)
	if !ok || !f.IsFiltered() {
		return clause{}, nil
	}

	filters := f.Filters()
	var markers []string
	for i, filter := range filters {
		text, m, err := c.expression(col.Source(), filter.Expression(), "filter"+strconv.Itoa(i)+"_")
		if err != nil {
			return clause{}, fmt.Errorf("filter %d: %w", i, err)
		}
		if len(filters) == 1 {
			return clause{text: text, markers: m}, nil
		}
		if i > 0 {
			c.builder.WriteString(" AND ")
		}
		c.builder.WriteString("(")
		c.builder.WriteString(text)
		c.builder.WriteString(")")
		markers = append(markers, m...)
	}
	return clause{text: c.builder.String(), markers: markers}, nil
}

func (c *Compiler) orderingClause(col operator.Collection) (clause, error) {
	o, ok := operator.As[operator.Orderable](col, operator.CanOrder)
	if !ok || !o.IsOrdered() {
		return clause{}, nil
	}

	orders := o.Orders()
	exprs := make([]expr.Expression, len(orders))
	suffixes := make([]string, len(orders))
	for i, order := range orders {
		exprs[i] = order.Expression()
		suffixes[i] = " " + order.Direction().Keyword()
	}
	return c.list(col.Source(), exprs, suffixes, "order")
}

func (c *Compiler) groupingClause(col operator.Collection) (clause, error) {
	groups := groupsOf(col)
	if len(groups) == 0 {
		return clause{}, nil
	}

	exprs := make([]expr.Expression, len(groups))
	for i, g := range groups {
		exprs[i] = g.Expression()
	}
	return c.list(col.Source(), exprs, nil, "group")
}

func groupsOf(col operator.Collection) []*operator.Group {
	if g, ok := operator.As[operator.Groupable](col, operator.CanGroup); ok {
		return g.Groups()
	}
	return nil
}

func aggregatesOf(col operator.Collection) []*operator.Aggregate {
	if a, ok := operator.As[operator.Aggregable](col, operator.CanAggregate); ok {
		return a.Aggregates()
	}
	return nil
}

func isAggregated(col operator.Collection) bool {
	return len(groupsOf(col)) > 0 || len(aggregatesOf(col)) > 0
}

func cursorOf(col operator.Collection) operator.Cursor {
	if cc, ok := operator.As[operator.Cursorable](col, operator.CanCursor); ok {
		return cc.Cursor()
	}
	return operator.All
}
