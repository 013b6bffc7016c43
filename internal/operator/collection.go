package operator

import (
	"strings"

	"github.com/roach88/collections/internal/source"
)

// Capability is a set of operator families a collection supports.
type Capability uint16

const (
	CanFilter Capability = 1 << iota
	CanOrder
	CanGroup
	CanAggregate
	CanJoin
	CanCursor
	CanSelect

	AllCapabilities = CanFilter | CanOrder | CanGroup | CanAggregate | CanJoin | CanCursor | CanSelect
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CanFilter, "filter"},
	{CanOrder, "order"},
	{CanGroup, "group"},
	{CanAggregate, "aggregate"},
	{CanJoin, "join"},
	{CanCursor, "cursor"},
	{CanSelect, "select"},
}

// Has reports whether every capability of other is in c.
func (c Capability) Has(other Capability) bool { return c&other == other }

func (c Capability) String() string {
	var names []string
	for _, n := range capabilityNames {
		if c.Has(n.c) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Collection is an immutable description of what to query.
type Collection interface {
	Capabilities() Capability

	// Source is the origin the collection reads, including its joins.
	Source() source.Source
}

// Filterable collections accumulate a set of filters.
type Filterable interface {
	Collection
	Filters() []*Filter
	IsFiltered() bool
	WithFilter(f *Filter) Collection
	WithoutFilter(f *Filter) Collection
}

// Orderable collections accumulate an ordered, duplicate-free list of
// orderings.
type Orderable interface {
	Collection
	Orders() []*Order
	IsOrdered() bool
	WithOrder(o *Order) Collection
	WithoutOrder(o *Order) Collection
}

// Groupable collections accumulate an ordered, duplicate-free list of
// groupings.
type Groupable interface {
	Collection
	Groups() []*Group
	IsGrouped() bool
	WithGroup(g *Group) Collection
	WithoutGroup(g *Group) Collection
}

// Aggregable collections accumulate a set of aggregates.
type Aggregable interface {
	Collection
	Aggregates() []*Aggregate
	IsAggregated() bool
	WithAggregate(a *Aggregate) Collection
	WithoutAggregate(a *Aggregate) Collection
}

// Joinable collections accumulate name-keyed joins.
type Joinable interface {
	Collection
	Joins() []*Join
	IsJoined() bool
	WithJoin(j *Join) Collection
	WithoutJoin(j *Join) Collection
}

// Cursorable collections carry a window over their rows.
type Cursorable interface {
	Collection
	Cursor() Cursor
	WithCursor(c Cursor) Collection
}

// Selectable collections carry explicit output columns.
type Selectable interface {
	Collection
	Selections() []*Select
	IsSelected() bool
	WithSelect(s *Select) Collection
	WithoutSelect(s *Select) Collection
}

// As returns c as T when c advertises capability and implements T.
func As[T Collection](c Collection, capability Capability) (T, bool) {
	var zero T
	if c == nil || !c.Capabilities().Has(capability) {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}
