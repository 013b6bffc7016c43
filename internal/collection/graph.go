// Package collection implements the immutable collections operators act on.
//
// Graph is the general, source-driven collection. Model and Aggregation
// are thin adapters over a Graph bound to one entity table: grouping or
// aggregating a Model yields an Aggregation, and discarding the last group
// and aggregate of an Aggregation yields a Model again.
//
// Every mutator returns a new value. A mutation that changes nothing
// returns the receiver itself, so callers can detect no-ops with ==.
package collection

import (
	"github.com/roach88/collections/internal/operator"
	"github.com/roach88/collections/internal/source"
)

// Graph accumulates operator state over a source. The zero value is not
// usable; build graphs with New.
type Graph struct {
	caps operator.Capability

	// root is the source without joins; src is root with every join
	// applied in order.
	root source.Source
	src  source.Source

	cursor     operator.Cursor
	filters    []*operator.Filter
	orders     []*operator.Order
	groups     []*operator.Group
	aggregates []*operator.Aggregate
	selections []*operator.Select
	joins      []*operator.Join
}

var (
	_ operator.Filterable = (*Graph)(nil)
	_ operator.Orderable  = (*Graph)(nil)
	_ operator.Groupable  = (*Graph)(nil)
	_ operator.Aggregable = (*Graph)(nil)
	_ operator.Joinable   = (*Graph)(nil)
	_ operator.Cursorable = (*Graph)(nil)
	_ operator.Selectable = (*Graph)(nil)
)

// Option configures a Graph at construction.
type Option func(*Graph)

// WithCapabilities restricts the operator families the graph accepts.
func WithCapabilities(c operator.Capability) Option {
	return func(g *Graph) { g.caps = c }
}

// WithCursor sets the initial cursor.
func WithCursor(c operator.Cursor) Option {
	return func(g *Graph) { g.cursor = c }
}

// New returns an empty graph over src supporting every capability.
func New(src source.Source, opts ...Option) *Graph {
	g := &Graph{
		caps:   operator.AllCapabilities,
		root:   src,
		src:    src,
		cursor: operator.All,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Graph) clone() *Graph {
	c := *g
	return &c
}

func (g *Graph) can(c operator.Capability) bool { return g.caps.Has(c) }

func (g *Graph) Capabilities() operator.Capability { return g.caps }

// Source returns the root source with every join applied.
func (g *Graph) Source() source.Source { return g.src }

// Root returns the source the graph was built over.
func (g *Graph) Root() source.Source { return g.root }

// Apply runs op against the graph.
func (g *Graph) Apply(op operator.Operator) operator.Collection { return op.Apply(g) }

func (g *Graph) Filters() []*operator.Filter { return g.filters }
func (g *Graph) Orders() []*operator.Order { return g.orders }
func (g *Graph) Groups() []*operator.Group { return g.groups }
func (g *Graph) Aggregates() []*operator.Aggregate { return g.aggregates }
func (g *Graph) Selections() []*operator.Select { return g.selections }
func (g *Graph) Joins() []*operator.Join { return g.joins }
func (g *Graph) Cursor() operator.Cursor { return g.cursor }

func (g *Graph) IsFiltered() bool { return len(g.filters) > 0 }
func (g *Graph) IsOrdered() bool { return len(g.orders) > 0 }
func (g *Graph) IsGrouped() bool { return len(g.groups) > 0 }
func (g *Graph) IsAggregated() bool { return len(g.aggregates) > 0 }
func (g *Graph) IsSelected() bool { return len(g.selections) > 0 }
func (g *Graph) IsJoined() bool { return len(g.joins) > 0 }

// Filter adds f unless an equal filter is present.
func (g *Graph) Filter(f *operator.Filter) *Graph {
	if !g.can(operator.CanFilter) {
		return g
	}
	next, changed := with(g.filters, f)
	if !changed {
		return g
	}
	c := g.clone()
	c.filters = next
	return c
}

// Unfilter removes the filter equal to f.
func (g *Graph) Unfilter(f *operator.Filter) *Graph {
	next, changed := without(g.filters, f)
	if !changed {
		return g
	}
	c := g.clone()
	c.filters = next
	return c
}

// OrderBy appends o unless an equal order is present.
func (g *Graph) OrderBy(o *operator.Order) *Graph {
	if !g.can(operator.CanOrder) {
		return g
	}
	next, changed := with(g.orders, o)
	if !changed {
		return g
	}
	c := g.clone()
	c.orders = next
	return c
}

// Unorder removes the order equal to o.
func (g *Graph) Unorder(o *operator.Order) *Graph {
	next, changed := without(g.orders, o)
	if !changed {
		return g
	}
	c := g.clone()
	c.orders = next
	return c
}

// GroupBy appends gr unless an equal group is present.
func (g *Graph) GroupBy(gr *operator.Group) *Graph {
	if !g.can(operator.CanGroup) {
		return g
	}
	next, changed := with(g.groups, gr)
	if !changed {
		return g
	}
	c := g.clone()
	c.groups = next
	return c
}

// Ungroup removes the group equal to gr.
func (g *Graph) Ungroup(gr *operator.Group) *Graph {
	next, changed := without(g.groups, gr)
	if !changed {
		return g
	}
	c := g.clone()
	c.groups = next
	return c
}

// Aggregate adds a unless an equal aggregate is present.
func (g *Graph) Aggregate(a *operator.Aggregate) *Graph {
	if !g.can(operator.CanAggregate) {
		return g
	}
	next, changed := with(g.aggregates, a)
	if !changed {
		return g
	}
	c := g.clone()
	c.aggregates = next
	return c
}

// Disaggregate removes the aggregate equal to a.
func (g *Graph) Disaggregate(a *operator.Aggregate) *Graph {
	next, changed := without(g.aggregates, a)
	if !changed {
		return g
	}
	c := g.clone()
	c.aggregates = next
	return c
}

// Select appends s unless an equal selection is present.
func (g *Graph) Select(s *operator.Select) *Graph {
	if !g.can(operator.CanSelect) {
		return g
	}
	next, changed := with(g.selections, s)
	if !changed {
		return g
	}
	c := g.clone()
	c.selections = next
	return c
}

// Deselect removes the selection equal to s.
func (g *Graph) Deselect(s *operator.Select) *Graph {
	next, changed := without(g.selections, s)
	if !changed {
		return g
	}
	c := g.clone()
	c.selections = next
	return c
}

// Paginate replaces the cursor.
func (g *Graph) Paginate(cursor operator.Cursor) *Graph {
	if !g.can(operator.CanCursor) || g.cursor == cursor {
		return g
	}
	c := g.clone()
	c.cursor = cursor
	return c
}

func (g *Graph) WithFilter(f *operator.Filter) operator.Collection { return g.Filter(f) }
func (g *Graph) WithoutFilter(f *operator.Filter) operator.Collection { return g.Unfilter(f) }
func (g *Graph) WithOrder(o *operator.Order) operator.Collection { return g.OrderBy(o) }
func (g *Graph) WithoutOrder(o *operator.Order) operator.Collection { return g.Unorder(o) }
func (g *Graph) WithGroup(gr *operator.Group) operator.Collection { return g.GroupBy(gr) }
func (g *Graph) WithoutGroup(gr *operator.Group) operator.Collection { return g.Ungroup(gr) }
func (g *Graph) WithAggregate(a *operator.Aggregate) operator.Collection { return g.Aggregate(a) }
func (g *Graph) WithoutAggregate(a *operator.Aggregate) operator.Collection { return g.Disaggregate(a) }
func (g *Graph) WithSelect(s *operator.Select) operator.Collection { return g.Select(s) }
func (g *Graph) WithoutSelect(s *operator.Select) operator.Collection { return g.Deselect(s) }
func (g *Graph) WithJoin(j *operator.Join) operator.Collection { return g.Join(j) }
func (g *Graph) WithoutJoin(j *operator.Join) operator.Collection { return g.Disjoin(j) }
func (g *Graph) WithCursor(c operator.Cursor) operator.Collection { return g.Paginate(c) }

type equaler[T any] interface {
	Equal(T) bool
}

func indexOf[T equaler[T]](list []T, item T) int {
	for i, existing := range list {
		if existing.Equal(item) {
			return i
		}
	}
	return -1
}

// with returns a copy of list with item appended, or list itself when an
// equal item is present.
func with[T equaler[T]](list []T, item T) ([]T, bool) {
	if indexOf(list, item) >= 0 {
		return list, false
	}
	next := make([]T, len(list), len(list)+1)
	copy(next, list)
	return append(next, item), true
}

// without returns a copy of list minus the item equal to item, or list
// itself when none is.
func without[T equaler[T]](list []T, item T) ([]T, bool) {
	i := indexOf(list, item)
	if i < 0 {
		return list, false
	}
	next := make([]T, 0, len(list)-1)
	next = append(next, list[:i]...)
	return append(next, list[i+1:]...), true
}
