package operator

import "github.com/roach88/collections/internal/expr"

// Direction is the sort direction of an Order.
type Direction int

const (
	DirectionAsc Direction = iota
	DirectionDesc
)

// Keyword returns ASC or DESC.
func (d Direction) Keyword() string {
	if d == DirectionDesc {
		return "DESC"
	}
	return "ASC"
}

// Order sorts rows by an expression.
type Order struct {
	expression expr.Expression
	direction  Direction
}

func NewOrder(e expr.Expression, d Direction) *Order {
	return &Order{expression: e, direction: d}
}

// Asc sorts by e, smallest first.
func Asc(e expr.Expression) *Order { return NewOrder(e, DirectionAsc) }

// Desc sorts by e, largest first.
func Desc(e expr.Expression) *Order { return NewOrder(e, DirectionDesc) }

func (o *Order) Expression() expr.Expression { return o.expression }
func (o *Order) Direction() Direction { return o.direction }

// Ascending returns the order sorting in ascending direction, o itself if
// it already does.
func (o *Order) Ascending() *Order { return o.withDirection(DirectionAsc) }

// Descending returns the order sorting in descending direction, o itself
// if it already does.
func (o *Order) Descending() *Order { return o.withDirection(DirectionDesc) }

func (o *Order) withDirection(d Direction) *Order {
	if o.direction == d {
		return o
	}
	return &Order{expression: o.expression, direction: d}
}

func (o *Order) Apply(c Collection) Collection {
	if oc, ok := As[Orderable](c, CanOrder); ok {
		return oc.WithOrder(o)
	}
	return c
}

func (o *Order) Equal(other *Order) bool {
	if o == other {
		return true
	}
	if o == nil || other == nil {
		return false
	}
	return o.direction == other.direction && expr.Equal(o.expression, other.expression)
}
