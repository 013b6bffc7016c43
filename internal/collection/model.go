package collection

import (
	"github.com/roach88/collections/internal/catalog"
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
)

// modelCapabilities excludes explicit selections: a model row is always a
// whole entity.
const modelCapabilities = operator.AllCapabilities &^ operator.CanSelect

var (
	_ operator.Filterable = (*Model)(nil)
	_ operator.Groupable  = (*Model)(nil)
	_ operator.Aggregable = (*Model)(nil)
	_ operator.Joinable   = (*Model)(nil)
	_ operator.Cursorable = (*Model)(nil)
	_ operator.Orderable  = (*Aggregation)(nil)
	_ operator.Groupable  = (*Aggregation)(nil)
	_ operator.Aggregable = (*Aggregation)(nil)
	_ operator.Cursorable = (*Aggregation)(nil)
)

// Model is a collection of entity rows of one table.
type Model struct {
	graph *Graph
}

// NewModel sources table under its entity alias.
func NewModel(table *catalog.Table) *Model {
	return ModelOf(source.NewTable(table))
}

// ModelOf wraps an existing table source.
func ModelOf(src *source.TableSource) *Model {
	return &Model{graph: New(src, WithCapabilities(modelCapabilities))}
}

// Graph exposes the underlying state.
func (m *Model) Graph() *Graph { return m.graph }

func (m *Model) wrap(next *Graph) operator.Collection {
	if next == m.graph {
		return m
	}
	if next.IsGrouped() || next.IsAggregated() {
		return &Aggregation{graph: next, base: m}
	}
	return &Model{graph: next}
}

func (m *Model) Capabilities() operator.Capability { return m.graph.caps }
func (m *Model) Source() source.Source { return m.graph.src }

func (m *Model) Filters() []*operator.Filter { return m.graph.filters }
func (m *Model) Orders() []*operator.Order { return m.graph.orders }
func (m *Model) Groups() []*operator.Group { return nil }
func (m *Model) Aggregates() []*operator.Aggregate { return nil }
func (m *Model) Joins() []*operator.Join { return m.graph.joins }
func (m *Model) Cursor() operator.Cursor { return m.graph.cursor }

func (m *Model) IsFiltered() bool { return m.graph.IsFiltered() }
func (m *Model) IsOrdered() bool { return m.graph.IsOrdered() }
func (m *Model) IsGrouped() bool { return false }
func (m *Model) IsAggregated() bool { return false }
func (m *Model) IsJoined() bool { return m.graph.IsJoined() }

func (m *Model) WithFilter(f *operator.Filter) operator.Collection { return m.wrap(m.graph.Filter(f)) }
func (m *Model) WithoutFilter(f *operator.Filter) operator.Collection { return m.wrap(m.graph.Unfilter(f)) }
func (m *Model) WithOrder(o *operator.Order) operator.Collection { return m.wrap(m.graph.OrderBy(o)) }
func (m *Model) WithoutOrder(o *operator.Order) operator.Collection { return m.wrap(m.graph.Unorder(o)) }
func (m *Model) WithJoin(j *operator.Join) operator.Collection { return m.wrap(m.graph.Join(j)) }
func (m *Model) WithoutJoin(j *operator.Join) operator.Collection { return m.wrap(m.graph.Disjoin(j)) }
func (m *Model) WithCursor(c operator.Cursor) operator.Collection { return m.wrap(m.graph.Paginate(c)) }

// WithGroup returns an *Aggregation grouped by g.
func (m *Model) WithGroup(g *operator.Group) operator.Collection { return m.wrap(m.graph.GroupBy(g)) }

// WithoutGroup returns m: a model has no groups.
func (m *Model) WithoutGroup(*operator.Group) operator.Collection { return m }

// WithAggregate returns an *Aggregation computing a.
func (m *Model) WithAggregate(a *operator.Aggregate) operator.Collection {
	return m.wrap(m.graph.Aggregate(a))
}

// WithoutAggregate returns m: a model has no aggregates.
func (m *Model) WithoutAggregate(*operator.Aggregate) operator.Collection { return m }

// Aggregation is a grouped or aggregated Model. Its rows are groups.
type Aggregation struct {
	graph *Graph

	// base is the model this aggregation was derived from by group and
	// aggregate changes only; nil once any other state changed.
	base *Model
}

// Graph exposes the underlying state.
func (a *Aggregation) Graph() *Graph { return a.graph }

func (a *Aggregation) wrap(next *Graph, keepBase bool) operator.Collection {
	if next == a.graph {
		return a
	}
	base := a.base
	if !keepBase {
		base = nil
	}
	if next.IsGrouped() || next.IsAggregated() {
		return &Aggregation{graph: next, base: base}
	}
	if base != nil {
		return base
	}
	return &Model{graph: next}
}

func (a *Aggregation) Capabilities() operator.Capability { return a.graph.caps }
func (a *Aggregation) Source() source.Source { return a.graph.src }

func (a *Aggregation) Filters() []*operator.Filter { return a.graph.filters }
func (a *Aggregation) Orders() []*operator.Order { return a.graph.orders }
func (a *Aggregation) Groups() []*operator.Group { return a.graph.groups }
func (a *Aggregation) Aggregates() []*operator.Aggregate { return a.graph.aggregates }
func (a *Aggregation) Joins() []*operator.Join { return a.graph.joins }
func (a *Aggregation) Cursor() operator.Cursor { return a.graph.cursor }

func (a *Aggregation) IsFiltered() bool { return a.graph.IsFiltered() }
func (a *Aggregation) IsOrdered() bool { return a.graph.IsOrdered() }
func (a *Aggregation) IsGrouped() bool { return a.graph.IsGrouped() }
func (a *Aggregation) IsAggregated() bool { return a.graph.IsAggregated() }
func (a *Aggregation) IsJoined() bool { return a.graph.IsJoined() }

func (a *Aggregation) WithFilter(f *operator.Filter) operator.Collection {
	return a.wrap(a.graph.Filter(f), false)
}

func (a *Aggregation) WithoutFilter(f *operator.Filter) operator.Collection {
	return a.wrap(a.graph.Unfilter(f), false)
}

func (a *Aggregation) WithOrder(o *operator.Order) operator.Collection {
	return a.wrap(a.graph.OrderBy(o), false)
}

func (a *Aggregation) WithoutOrder(o *operator.Order) operator.Collection {
	return a.wrap(a.graph.Unorder(o), false)
}

func (a *Aggregation) WithJoin(j *operator.Join) operator.Collection {
	return a.wrap(a.graph.Join(j), false)
}

func (a *Aggregation) WithoutJoin(j *operator.Join) operator.Collection {
	return a.wrap(a.graph.Disjoin(j), false)
}

func (a *Aggregation) WithCursor(c operator.Cursor) operator.Collection {
	return a.wrap(a.graph.Paginate(c), false)
}

func (a *Aggregation) WithGroup(g *operator.Group) operator.Collection {
	return a.wrap(a.graph.GroupBy(g), true)
}

// WithoutGroup removes g. Removing the last group of an aggregation
// without aggregates returns a Model.
func (a *Aggregation) WithoutGroup(g *operator.Group) operator.Collection {
	return a.wrap(a.graph.Ungroup(g), true)
}

func (a *Aggregation) WithAggregate(ag *operator.Aggregate) operator.Collection {
	return a.wrap(a.graph.Aggregate(ag), true)
}

// WithoutAggregate removes ag. Removing the last aggregate of an
// aggregation without groups returns a Model.
func (a *Aggregation) WithoutAggregate(ag *operator.Aggregate) operator.Collection {
	return a.wrap(a.graph.Disaggregate(ag), true)
}
