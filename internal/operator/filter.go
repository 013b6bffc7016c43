package operator

import (
	"github.com/roach88/collections/internal/expr"
)

// Filter keeps the rows for which a boolean expression holds.
type Filter struct {
	expression expr.Expression
}

// NewFilter wraps a boolean expression.
func NewFilter(e expr.Expression) *Filter {
	return &Filter{expression: e}
}

// Where is shorthand for NewFilter(expr.And(conditions...)) that avoids the
// conjunction for a single condition.
func Where(conditions ...expr.Expression) *Filter {
	if len(conditions) == 1 {
		return NewFilter(conditions[0])
	}
	return NewFilter(expr.And(conditions...))
}

func (f *Filter) Expression() expr.Expression { return f.expression }

func (f *Filter) Apply(c Collection) Collection {
	if fc, ok := As[Filterable](c, CanFilter); ok {
		return fc.WithFilter(f)
	}
	return c
}

// Equal compares filters structurally.
func (f *Filter) Equal(other *Filter) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	return expr.Equal(f.expression, other.expression)
}

// Parameters returns the named parameters of the filter in the order they
// first appear.
func (f *Filter) Parameters() []*expr.Parameter {
	return parametersOf(f.expression)
}

// Parameter returns the first parameter with the given name.
func (f *Filter) Parameter(name string) (*expr.Parameter, bool) {
	for _, p := range f.Parameters() {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// WithParameter rebinds every parameter called name. It returns f itself
// when no parameter changes.
func (f *Filter) WithParameter(name string, value any) *Filter {
	rebound := expr.Transform(f.expression, func(e expr.Expression) expr.Expression {
		p, ok := e.(*expr.Parameter)
		if !ok || p.Name() != name {
			return e
		}
		if next := p.Bind(value); !expr.Equal(p, next) {
			return next
		}
		return p
	})
	if rebound == f.expression {
		return f
	}
	return &Filter{expression: rebound}
}

func parametersOf(e expr.Expression) []*expr.Parameter {
	var params []*expr.Parameter
	seen := make(map[*expr.Parameter]bool)
	expr.Walk(e, func(node expr.Expression) {
		if p, ok := node.(*expr.Parameter); ok && !seen[p] {
			seen[p] = true
			params = append(params, p)
		}
	}, nil)
	return params
}
