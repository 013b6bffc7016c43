package operator

import "github.com/roach88/collections/internal/expr"

// Group partitions rows by an expression.
type Group struct {
	expression expr.Expression
}

func NewGroup(e expr.Expression) *Group { return &Group{expression: e} }

func (g *Group) Expression() expr.Expression { return g.expression }

func (g *Group) Apply(c Collection) Collection {
	if gc, ok := As[Groupable](c, CanGroup); ok {
		return gc.WithGroup(g)
	}
	return c
}

func (g *Group) Equal(other *Group) bool {
	if g == other {
		return true
	}
	if g == nil || other == nil {
		return false
	}
	return expr.Equal(g.expression, other.expression)
}

// Aggregate adds an aggregated expression (COUNT, SUM, ...) to the
// collection's output.
type Aggregate struct {
	expression expr.Expression
}

func NewAggregate(e expr.Expression) *Aggregate { return &Aggregate{expression: e} }

func (a *Aggregate) Expression() expr.Expression { return a.expression }

func (a *Aggregate) Apply(c Collection) Collection {
	if ac, ok := As[Aggregable](c, CanAggregate); ok {
		return ac.WithAggregate(a)
	}
	return c
}

func (a *Aggregate) Equal(other *Aggregate) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil {
		return false
	}
	return expr.Equal(a.expression, other.expression)
}
