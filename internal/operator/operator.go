package operator

// Operator transforms a collection. Apply must be total: an operator that
// cannot act on its input returns the input.
type Operator interface {
	Apply(c Collection) Collection
}

// Func adapts a function to an Operator.
type Func func(Collection) Collection

func (f Func) Apply(c Collection) Collection { return f(c) }

type identity struct{}

func (identity) Apply(c Collection) Collection { return c }

// Identity returns its input.
var Identity Operator = identity{}

// Composition applies a flattened sequence of operators, last first.
type Composition struct {
	ops []Operator
}

// Compose combines operators so that Compose(a, b).Apply(c) equals
// a.Apply(b.Apply(c)). Nested compositions are flattened and Identity
// operands dropped. Composing nothing yields Identity and composing a
// single operator yields that operator.
func Compose(ops ...Operator) Operator {
	flat := make([]Operator, 0, len(ops))
	for _, op := range ops {
		switch o := op.(type) {
		case nil, identity:
		case *Composition:
			flat = append(flat, o.ops...)
		default:
			flat = append(flat, op)
		}
	}

	switch len(flat) {
	case 0:
		return Identity
	case 1:
		return flat[0]
	default:
		return &Composition{ops: flat}
	}
}

// Apply runs the operators from the last index to the first.
func (c *Composition) Apply(input Collection) Collection {
	for i := len(c.ops) - 1; i >= 0; i-- {
		input = c.ops[i].Apply(input)
	}
	return input
}

// Len returns the number of operators.
func (c *Composition) Len() int { return len(c.ops) }

// At returns the operator at index i.
func (c *Composition) At(i int) Operator { return c.ops[i] }

// Operators returns a copy of the operator sequence.
func (c *Composition) Operators() []Operator {
	return append([]Operator(nil), c.ops...)
}

// Via joins first and then applies ops, so that ops may reference the
// joined table.
func Via(join Joiner, ops ...Operator) Operator {
	all := make([]Operator, 0, len(ops)+1)
	all = append(all, ops...)
	return Compose(append(all, join)...)
}

// Without returns an operator removing what op adds. Removing state the
// collection does not carry returns the collection unchanged. A cursor is
// removed by resetting the collection to All.
func Without(op Operator) Operator {
	if c, ok := op.(*Composition); ok {
		removals := make([]Operator, len(c.ops))
		for i, inner := range c.ops {
			removals[len(c.ops)-1-i] = Without(inner)
		}
		return Compose(removals...)
	}
	return removal{op: op}
}

type removal struct {
	op Operator
}

func (r removal) Apply(c Collection) Collection {
	switch o := r.op.(type) {
	case *Filter:
		if f, ok := As[Filterable](c, CanFilter); ok {
			return f.WithoutFilter(o)
		}
	case *Order:
		if f, ok := As[Orderable](c, CanOrder); ok {
			return f.WithoutOrder(o)
		}
	case *Group:
		if f, ok := As[Groupable](c, CanGroup); ok {
			return f.WithoutGroup(o)
		}
	case *Aggregate:
		if f, ok := As[Aggregable](c, CanAggregate); ok {
			return f.WithoutAggregate(o)
		}
	case *Select:
		if f, ok := As[Selectable](c, CanSelect); ok {
			return f.WithoutSelect(o)
		}
	case *Join:
		if f, ok := As[Joinable](c, CanJoin); ok {
			return f.WithoutJoin(o)
		}
	case *DeepJoin:
		steps := o.Steps()
		for i := len(steps) - 1; i >= 0; i-- {
			c = removal{op: steps[i]}.Apply(c)
		}
	case Cursor:
		if f, ok := As[Cursorable](c, CanCursor); ok && f.Cursor() == o {
			return f.WithCursor(All)
		}
	}
	return c
}
